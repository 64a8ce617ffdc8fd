package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("docs", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult("docs", ResultSuccess)
	pr.IncBuildOutcome(BuildOutcomeSuccess)
	pr.ObserveJobDuration(StrategyConcurrent, 80*time.Millisecond, false)
	pr.IncBatch(StrategyConcurrent, false)
	pr.IncSerialRetry()
	pr.SetWorkerPoolSize(8)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)

	assert.InDelta(t, 1, testutil.ToFloat64(pr.serialRetries), 0)
	assert.InDelta(t, 8, testutil.ToFloat64(pr.poolSize), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.batches.WithLabelValues(StrategyConcurrent, "failed")), 0)
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncSerialRetry()

	path := filepath.Join(t.TempDir(), "docweb.prom")
	require.NoError(t, WriteTextfile(path, pr.Registry()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "docweb_serial_retries_total 1"))
}
