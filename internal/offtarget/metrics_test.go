package offtarget

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_observeToolRun(t *testing.T) {
	before := testutil.ToFloat64(toolRuns.WithLabelValues("bowtie2-test", "error"))
	observeToolRun("bowtie2-test", time.Now(), errors.New("exit status 1"))
	assert.Equal(t, before+1, testutil.ToFloat64(toolRuns.WithLabelValues("bowtie2-test", "error")))
}

func Test_WriteMetrics(t *testing.T) {
	observeToolRun("bowtie2-build", time.Now(), nil)

	path := filepath.Join(t.TempDir(), "offtarget.prom")
	require.NoError(t, WriteMetrics(path))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(contents), `offtarget_tool_runs_total{outcome="ok",tool="bowtie2-build"}`)
	assert.Contains(t, string(contents), "offtarget_tool_duration_seconds_bucket")
}
