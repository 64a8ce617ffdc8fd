package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/docweb/internal/errors"
	"git.home.luguber.info/inful/docweb/internal/metrics"
)

type exitError int

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", int(e)) }
func (e exitError) ExitCode() int { return int(e) }

// fakeRunner records invocations and fails commands listed in fail.
type fakeRunner struct {
	mu       sync.Mutex
	calls    []string
	fail     map[string]int
	failOnce map[string]bool
	delay    time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeRunner) Run(_ context.Context, command string, out io.Writer) error {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		cur := f.maxInFlight.Load()
		if n <= cur || f.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, command)
	code, fails := f.fail[command]
	if f.failOnce[command] {
		delete(f.fail, command)
		delete(f.failOnce, command)
	}
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	_, _ = fmt.Fprintf(out, "out:%s\n", command)
	if fails {
		return exitError(code)
	}
	return nil
}

func (f *fakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type countingRecorder struct {
	metrics.NoopRecorder
	retries atomic.Int32
	jobs    atomic.Int32
}

func (c *countingRecorder) IncSerialRetry() { c.retries.Add(1) }
func (c *countingRecorder) ObserveJobDuration(string, time.Duration, bool) {
	c.jobs.Add(1)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(r Runner, out io.Writer, rec metrics.Recorder) *Engine {
	return New(WithRunner(r), WithOutput(out), WithRecorder(rec), WithLogger(quietLogger()))
}

func TestRun_EmptyBatch(t *testing.T) {
	r := &fakeRunner{}
	report, err := newTestEngine(r, io.Discard, nil).Run(context.Background(), nil, 4)
	require.NoError(t, err)
	assert.Empty(t, report.Outcomes)
	assert.Empty(t, r.Calls())
}

func TestRun_SerialRunsInOrder(t *testing.T) {
	r := &fakeRunner{}
	var out bytes.Buffer
	cmds := []string{"a", "b", "c"}

	report, err := newTestEngine(r, &out, nil).Run(context.Background(), cmds, 1)
	require.NoError(t, err)

	assert.Equal(t, cmds, r.Calls())
	assert.False(t, report.Concurrent)
	assert.False(t, report.Retried)
	require.Len(t, report.Outcomes, 3)
	assert.Equal(t, "out:b\n", string(report.Outcomes[1].Output))
	assert.Equal(t, "out:a\nout:b\nout:c\n", out.String())
}

func TestRun_SerialFailFast(t *testing.T) {
	r := &fakeRunner{fail: map[string]int{"bad": 3}}
	report, err := newTestEngine(r, io.Discard, nil).Run(context.Background(), []string{"a", "bad", "c"}, 0)

	require.Error(t, err)
	assert.Equal(t, []string{"a", "bad"}, r.Calls(), "commands after the failure must not run")
	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, 3, report.Outcomes[1].ExitCode)

	dwe, ok := derrors.As(err)
	require.True(t, ok)
	assert.Equal(t, derrors.CategoryJob, dwe.Category)
	assert.Equal(t, "bad", dwe.Context["command"])
	assert.Equal(t, 3, dwe.Context["exit_code"])
}

func TestRun_ConcurrentSuccess(t *testing.T) {
	r := &fakeRunner{}
	var out bytes.Buffer
	rec := &countingRecorder{}
	cmds := []string{"a", "b", "c", "d", "e"}

	report, err := newTestEngine(r, &out, rec).Run(context.Background(), cmds, 3)
	require.NoError(t, err)

	assert.True(t, report.Concurrent)
	assert.False(t, report.Retried)
	assert.ElementsMatch(t, cmds, r.Calls())
	require.Len(t, report.Outcomes, 5)
	for i, o := range report.Outcomes {
		assert.Equal(t, i, o.Index)
		assert.Equal(t, cmds[i], o.Command)
		assert.False(t, o.Failed())
	}
	for _, c := range cmds {
		assert.Contains(t, out.String(), c+"\nout:"+c+"\n", "job output is flushed as one block")
	}
	assert.EqualValues(t, 5, rec.jobs.Load())
	assert.EqualValues(t, 0, rec.retries.Load())
}

func TestRun_ConcurrencyIsBounded(t *testing.T) {
	r := &fakeRunner{delay: 20 * time.Millisecond}
	cmds := make([]string, 12)
	for i := range cmds {
		cmds[i] = fmt.Sprintf("job-%d", i)
	}

	_, err := newTestEngine(r, io.Discard, nil).Run(context.Background(), cmds, 3)
	require.NoError(t, err)

	assert.LessOrEqual(t, r.maxInFlight.Load(), int32(3))
	assert.Len(t, r.Calls(), 12)
}

func TestRun_ConcurrentFailureRetriesWholeBatchSerially(t *testing.T) {
	cmds := []string{"a", "bad", "c", "d"}

	serialRunner := &fakeRunner{fail: map[string]int{"bad": 1}}
	_, serialErr := newTestEngine(serialRunner, io.Discard, nil).Run(context.Background(), cmds, 1)
	require.Error(t, serialErr)

	r := &fakeRunner{fail: map[string]int{"bad": 1}}
	rec := &countingRecorder{}
	report, err := newTestEngine(r, io.Discard, rec).Run(context.Background(), cmds, 4)
	require.Error(t, err)

	calls := r.Calls()
	require.Len(t, calls, 6)
	assert.ElementsMatch(t, cmds, calls[:4], "every job runs in the concurrent pass")
	assert.Equal(t, []string{"a", "bad"}, calls[4:], "retry restarts from the first command")

	assert.True(t, report.Concurrent)
	assert.True(t, report.Retried)
	assert.Equal(t, serialErr.Error(), err.Error(), "retry reports the same failure as a serial run")
	assert.EqualValues(t, 1, rec.retries.Load())
}

func TestRun_ConcurrentFailureDoesNotCancelSiblings(t *testing.T) {
	r := &fakeRunner{fail: map[string]int{"bad": 1}, failOnce: map[string]bool{"bad": true}, delay: 10 * time.Millisecond}
	cmds := []string{"bad", "slow-1", "slow-2"}

	report, err := newTestEngine(r, io.Discard, nil).Run(context.Background(), cmds, 3)
	require.NoError(t, err, "a failure that does not recur in the serial retry is not fatal")

	assert.True(t, report.Retried)
	assert.Len(t, r.Calls(), 6)
	for _, o := range report.Outcomes {
		assert.False(t, o.Failed())
	}
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &fakeRunner{}
	_, err := newTestEngine(r, io.Discard, nil).Run(ctx, []string{"a", "b"}, 1)
	require.Error(t, err)
	assert.True(t, derrors.IsCategory(err, derrors.CategoryRuntime))
	assert.Empty(t, r.Calls())

	_, err = newTestEngine(r, io.Discard, nil).Run(ctx, []string{"a", "b"}, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, r.Calls())
}

func TestShellRunner(t *testing.T) {
	var out bytes.Buffer
	err := ShellRunner{}.Run(context.Background(), "echo hello", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello", strings.TrimSpace(out.String()))

	err = ShellRunner{}.Run(context.Background(), "exit 4", io.Discard)
	require.Error(t, err)
	assert.Equal(t, 4, ExitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(fmt.Errorf("wrapped: %w", exitError(2))))
	assert.Equal(t, -1, ExitCode(errors.New("not started")))
}
