// Package engine executes batches of independent external commands, either
// strictly in sequence or on a bounded worker pool. A concurrent batch in
// which any job fails is re-executed sequentially from the start so the
// failing command's diagnostics are reproduced without interleaving.
package engine

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	derrors "git.home.luguber.info/inful/docweb/internal/errors"
	"git.home.luguber.info/inful/docweb/internal/logfields"
	"git.home.luguber.info/inful/docweb/internal/metrics"
)

// Outcome is the structured result of one executed job.
type Outcome struct {
	Index    int
	Command  string
	ExitCode int
	Output   []byte
	Duration time.Duration
	Err      error
}

// Failed reports whether the job did not complete successfully.
func (o Outcome) Failed() bool { return o.Err != nil }

// Report describes a finished batch. Outcomes holds the last attempt of
// every job that ran, in batch order; after a serial retry these are the
// retry's outcomes.
type Report struct {
	Outcomes   []Outcome
	Concurrent bool
	Retried    bool
}

// Engine runs command batches. It is safe for sequential reuse.
type Engine struct {
	runner   Runner
	out      io.Writer
	recorder metrics.Recorder
	logger   *slog.Logger

	outMu sync.Mutex
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithRunner replaces the process runner (tests inject fakes here).
func WithRunner(r Runner) Option {
	return func(e *Engine) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithOutput sets the writer receiving job output; defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) {
		if w != nil {
			e.out = w
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithLogger sets the logger; defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine running commands through the platform shell.
func New(opts ...Option) *Engine {
	e := &Engine{
		runner:   ShellRunner{},
		out:      os.Stdout,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes commands as one batch. With workers < 2 the commands run in
// order and the first failure aborts the batch. Otherwise up to workers
// commands run at once; every job is allowed to finish, and if any failed
// the whole batch is run again sequentially. The returned error is a job
// failure naming the command, or a runtime error when ctx is canceled.
func (e *Engine) Run(ctx context.Context, commands []string, workers int) (Report, error) {
	if len(commands) == 0 {
		return Report{}, nil
	}
	if workers < 2 {
		return e.runSerial(ctx, commands, metrics.StrategySerial)
	}

	report, failed := e.runConcurrent(ctx, commands, workers)
	if err := ctx.Err(); err != nil {
		return report, canceled(err)
	}
	if failed == 0 {
		return report, nil
	}

	e.logger.Warn("External program failed, retrying batch serially for logs",
		slog.Int("failed", failed), logfields.Jobs(len(commands)))
	e.recorder.IncSerialRetry()

	retry, err := e.runSerial(ctx, commands, metrics.StrategyRetry)
	retry.Concurrent = true
	retry.Retried = true
	return retry, err
}

func (e *Engine) runSerial(ctx context.Context, commands []string, strategy string) (Report, error) {
	report := Report{Outcomes: make([]Outcome, 0, len(commands))}
	for i, command := range commands {
		if err := ctx.Err(); err != nil {
			e.recorder.IncBatch(strategy, false)
			return report, canceled(err)
		}
		e.logger.Info("Running", logfields.Command(command))

		var buf bytes.Buffer
		o := e.runOne(ctx, i, command, io.MultiWriter(e.streamWriter(), &buf), strategy)
		o.Output = buf.Bytes()
		report.Outcomes = append(report.Outcomes, o)

		if o.Failed() {
			e.recorder.IncBatch(strategy, false)
			if err := ctx.Err(); err != nil {
				return report, canceled(err)
			}
			e.logger.Error("External command failed",
				logfields.Command(command), logfields.ExitCode(o.ExitCode), logfields.Error(o.Err))
			return report, derrors.JobFailed(command, o.ExitCode, o.Err)
		}
	}
	e.recorder.IncBatch(strategy, true)
	return report, nil
}

func (e *Engine) runConcurrent(ctx context.Context, commands []string, workers int) (Report, int) {
	e.recorder.SetWorkerPoolSize(workers)
	e.logger.Debug("Running batch on worker pool", logfields.Jobs(len(commands)), logfields.Workers(workers))

	outcomes := make([]Outcome, len(commands))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, command := range commands {
		i, command := i, command
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i] = Outcome{Index: i, Command: command, ExitCode: -1, Err: err}
				return nil
			}
			var buf bytes.Buffer
			o := e.runOne(ctx, i, command, &buf, metrics.StrategyConcurrent)
			o.Output = buf.Bytes()
			outcomes[i] = o
			e.flush(command, o.Output)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, o := range outcomes {
		if o.Failed() {
			failed++
			e.logger.Debug("Job failed in concurrent batch",
				logfields.JobIndex(o.Index), logfields.Command(o.Command), logfields.ExitCode(o.ExitCode))
		}
	}
	e.recorder.IncBatch(metrics.StrategyConcurrent, failed == 0)
	return Report{Outcomes: outcomes, Concurrent: true}, failed
}

func (e *Engine) runOne(ctx context.Context, index int, command string, out io.Writer, strategy string) Outcome {
	start := time.Now()
	err := e.runner.Run(ctx, command, out)
	d := time.Since(start)
	e.recorder.ObserveJobDuration(strategy, d, err == nil)
	return Outcome{
		Index:    index,
		Command:  command,
		ExitCode: ExitCode(err),
		Duration: d,
		Err:      err,
	}
}

// flush writes one finished job's output to the shared writer as a block.
func (e *Engine) flush(command string, output []byte) {
	e.outMu.Lock()
	defer e.outMu.Unlock()
	_, _ = io.WriteString(e.out, command+"\n")
	_, _ = e.out.Write(output)
}

// streamWriter serializes writes to the shared output for serial runs.
func (e *Engine) streamWriter() io.Writer {
	return writerFunc(func(p []byte) (int, error) {
		e.outMu.Lock()
		defer e.outMu.Unlock()
		return e.out.Write(p)
	})
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

func canceled(err error) error {
	return derrors.Wrap(err, derrors.CategoryRuntime, derrors.SeverityFatal, "build canceled")
}
