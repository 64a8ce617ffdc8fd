package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultWarning ResultLabel = "warning"
	ResultFatal   ResultLabel = "fatal"
)

// BuildOutcomeLabel is the final status of a whole build.
type BuildOutcomeLabel string

const (
	BuildOutcomeSuccess  BuildOutcomeLabel = "success"
	BuildOutcomeFailed   BuildOutcomeLabel = "failed"
	BuildOutcomeCanceled BuildOutcomeLabel = "canceled"
)

// Batch strategies reported by the execution engine.
const (
	StrategySerial     = "serial"
	StrategyConcurrent = "concurrent"
	StrategyRetry      = "serial_retry"
)

// Recorder defines observability hooks for build, stage and job metrics.
// Implementations must be safe for concurrent use by engine workers.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	ObserveJobDuration(strategy string, d time.Duration, success bool)
	IncBatch(strategy string, success bool)
	IncSerialRetry()
	SetWorkerPoolSize(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)           {}
func (NoopRecorder) IncStageResult(string, ResultLabel)                   {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)                   {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)                    {}
func (NoopRecorder) ObserveJobDuration(string, time.Duration, bool)       {}
func (NoopRecorder) IncBatch(string, bool)                                {}
func (NoopRecorder) IncSerialRetry()                                      {}
func (NoopRecorder) SetWorkerPoolSize(int)                                {}
