package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	registry      *prom.Registry
	stageDuration *prom.HistogramVec
	stageResults  *prom.CounterVec
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
	jobDuration   *prom.HistogramVec
	batches       *prom.CounterVec
	serialRetries prom.Counter
	poolSize      prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docweb",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docweb",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docweb",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docweb",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.jobDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docweb",
			Name:      "job_duration_seconds",
			Help:      "Duration of external compiler invocations",
			Buckets:   prom.ExponentialBuckets(0.05, 2, 12),
		}, []string{"strategy", "result"})
		pr.batches = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docweb",
			Name:      "batches_total",
			Help:      "Executed job batches by strategy and result",
		}, []string{"strategy", "result"})
		pr.serialRetries = prom.NewCounter(prom.CounterOpts{
			Namespace: "docweb",
			Name:      "serial_retries_total",
			Help:      "Concurrent batches re-executed serially after a failure",
		})
		pr.poolSize = prom.NewGauge(prom.GaugeOpts{
			Namespace: "docweb",
			Name:      "worker_pool_size",
			Help:      "Worker pool size used for the last concurrent batch",
		})
		reg.MustRegister(pr.stageDuration, pr.stageResults, pr.buildDuration, pr.buildOutcome,
			pr.jobDuration, pr.batches, pr.serialRetries, pr.poolSize)
	})
	return pr
}

// Registry returns the registry the metrics are registered with.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.registry
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveJobDuration(strategy string, d time.Duration, success bool) {
	if p == nil || p.jobDuration == nil {
		return
	}
	p.jobDuration.WithLabelValues(strategy, resultLabel(success)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBatch(strategy string, success bool) {
	if p == nil || p.batches == nil {
		return
	}
	p.batches.WithLabelValues(strategy, resultLabel(success)).Inc()
}

func (p *PrometheusRecorder) IncSerialRetry() {
	if p == nil || p.serialRetries == nil {
		return
	}
	p.serialRetries.Inc()
}

func (p *PrometheusRecorder) SetWorkerPoolSize(n int) {
	if p == nil || p.poolSize == nil {
		return
	}
	p.poolSize.Set(float64(n))
}
