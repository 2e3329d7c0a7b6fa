package profiler

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordDuration(t *testing.T) {
	p := New(Options{})

	p.RecordDuration(StageDiff, 10*time.Millisecond)
	p.RecordDuration(StageDiff, 30*time.Millisecond)
	p.RecordDuration(StageLoad, 5*time.Millisecond)

	snap := p.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, StageDiff, snap[0].Name)
	assert.Equal(t, int64(2), snap[0].Count)
	assert.Equal(t, 20*time.Millisecond, snap[0].Avg)
	assert.Equal(t, 10*time.Millisecond, snap[0].Min)
	assert.Equal(t, 30*time.Millisecond, snap[0].Max)
	assert.Equal(t, StageLoad, snap[1].Name)

	assert.Equal(t, 2, testutil.CollectAndCount(p.durations))
}

func TestMaxSamplesWindow(t *testing.T) {
	p := New(Options{MaxSamples: 2})

	p.RecordDuration("op", 100*time.Millisecond)
	p.RecordDuration("op", 2*time.Millisecond)
	p.RecordDuration("op", 4*time.Millisecond)

	snap := p.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, int64(3), snap[0].Count)
	assert.Equal(t, 3*time.Millisecond, snap[0].Avg)
	assert.Equal(t, 100*time.Millisecond, snap[0].Max)
}

func TestStartOperation(t *testing.T) {
	p := New(Options{})
	done := p.StartOperation(StageRender)
	done()

	snap := p.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, int64(1), snap[0].Count)
}

func TestRecordPairConcurrent(t *testing.T) {
	p := New(Options{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%4 == 0 {
				p.RecordPair("error", 0)
				return
			}
			p.RecordPair("success", float64(i))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, map[string]int64{"success": 15, "error": 5}, p.Pairs())
	assert.InDelta(t, 15, testutil.ToFloat64(p.outcomes.WithLabelValues("success")), 1e-9)
	assert.InDelta(t, 5, testutil.ToFloat64(p.outcomes.WithLabelValues("error")), 1e-9)
}

func TestWriteReport(t *testing.T) {
	p := New(Options{})
	p.RecordDuration(StageSave, time.Millisecond)
	p.RecordPair("success", 1.5)

	var buf bytes.Buffer
	require.NoError(t, p.WriteReport(&buf))
	out := buf.String()

	assert.Contains(t, out, "MEMORY USAGE")
	assert.Contains(t, out, "success: 1")
	assert.Contains(t, out, "save: avg=1ms")
}

func TestWriteTextfile(t *testing.T) {
	p := New(Options{Namespace: "test"})
	p.RecordDuration(StagePair, 3*time.Millisecond)
	p.RecordPair("success", 12)

	path := filepath.Join(t.TempDir(), "imgdiff.prom")
	require.NoError(t, p.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `test_pairs_total{status="success"} 1`)
	assert.Contains(t, string(data), `test_operation_duration_seconds_count{operation="pair"} 1`)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2*1024*1024))
}

func TestRegistryGather(t *testing.T) {
	p := New(Options{})
	p.RecordPair("success", 2.5)

	families, err := p.Registry().Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "imgdiff_pairs_total")
	assert.Contains(t, names, "imgdiff_diff_percentage")
}
