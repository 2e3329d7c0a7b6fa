package batch

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nvr-ai/go-imgdiff/profiler"
	"github.com/nvr-ai/go-imgdiff/report"
	"github.com/nvr-ai/go-imgdiff/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, path string, w, h int, changed image.Rectangle) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(img, changed, &image.Uniform{C: color.Black}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func fixturePairs(t *testing.T) []util.ImagePair {
	t.Helper()
	dir := t.TempDir()
	base := filepath.Join(dir, "base.png")
	writeImage(t, base, 80, 60, image.Rectangle{})

	var pairs []util.ImagePair
	for i, size := range []int{0, 10, 20, 30, 40} {
		other := filepath.Join(dir, "other"+string(rune('a'+i))+".png")
		writeImage(t, other, 80, 60, image.Rect(0, 0, size, size))
		pairs = append(pairs, util.ImagePair{RowNumber: i + 2, Name: "pair " + string(rune('a'+i)), Image1: base, Image2: other})
	}
	pairs = append(pairs, util.ImagePair{RowNumber: 7, Name: "missing", Image1: base, Image2: filepath.Join(dir, "nope.png")})

	return pairs
}

func TestRunOrderAndStatuses(t *testing.T) {
	pairs := fixturePairs(t)
	out := t.TempDir()
	prof := profiler.New(profiler.Options{})

	var (
		mu   sync.Mutex
		seen []int
	)
	var logs bytes.Buffer
	runner := &Runner{
		Workers:   3,
		OutputDir: out,
		Options:   report.DefaultOptions(),
		Profiler:  prof,
		Logger:    log.New(&logs, "", 0),
		OnResult: func(r Result) {
			mu.Lock()
			seen = append(seen, r.RowNumber)
			mu.Unlock()
		},
	}

	results := runner.Run(context.Background(), pairs)
	require.Len(t, results, len(pairs))

	for i, res := range results {
		assert.Equal(t, pairs[i].RowNumber, res.RowNumber)
	}
	assert.Equal(t, []int{2, 3, 4, 5, 6, 7}, seen)

	assert.Equal(t, report.StatusSuccess, results[0].Status)
	assert.Zero(t, results[0].DiffPercentage)
	for i := 1; i < 5; i++ {
		assert.Equal(t, report.StatusSuccess, results[i].Status)
		assert.Greater(t, results[i].DiffPercentage, results[i-1].DiffPercentage)
	}
	assert.Equal(t, 1, results[4].RegionCount)

	assert.Equal(t, report.StatusError, results[5].Status)
	assert.Contains(t, results[5].ErrorMessage, "nope.png")
	assert.Contains(t, logs.String(), "row 7")

	dir := filepath.Join(out, "row_3_pair_b")
	assert.FileExists(t, filepath.Join(dir, report.PairDiffFile))
	assert.FileExists(t, filepath.Join(dir, report.SideBySideFile))
	assert.FileExists(t, filepath.Join(dir, report.ReportFile))
	assert.NoDirExists(t, filepath.Join(out, "row_7_missing"))

	assert.Equal(t, map[string]int64{"success": 5, "error": 1}, prof.Pairs())
}

func TestRunWithoutOutput(t *testing.T) {
	pairs := fixturePairs(t)[:3]

	results := (&Runner{Workers: 2, Options: report.DefaultOptions()}).Run(context.Background(), pairs)
	require.Len(t, results, 3)
	for _, res := range results {
		assert.Equal(t, report.StatusSuccess, res.Status)
		assert.Empty(t, res.OutputDir)
	}
}

func TestRunCancelled(t *testing.T) {
	pairs := fixturePairs(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := (&Runner{Workers: 2, Options: report.DefaultOptions()}).Run(ctx, pairs)
	require.Len(t, results, len(pairs))
	for i, res := range results {
		assert.Equal(t, report.StatusSkipped, res.Status)
		assert.Equal(t, pairs[i].Name, res.Name)
	}
}

func TestRunEmpty(t *testing.T) {
	results := (&Runner{}).Run(context.Background(), nil)
	assert.Empty(t, results)
}
