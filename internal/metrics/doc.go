// Package metrics provides build, stage and job metrics for docweb.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection never requires nil checks:
//
//	eng := engine.New(engine.WithRecorder(metrics.NoopRecorder{}))
//
// When the CLI is given --metrics-file, a PrometheusRecorder backed by a
// private registry is injected instead and the registry is written to the
// file in the text exposition format once the build finishes (see
// WriteTextfile), ready for a node_exporter textfile collector.
package metrics
