package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvr-ai/go-imgdiff/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, path string, changed image.Rectangle) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(img, changed, &image.Uniform{C: color.Black}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestRunCSV(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")
	writeImage(t, a, image.Rectangle{})
	writeImage(t, b, image.Rect(0, 0, 20, 20))

	manifest := strings.Join([]string{
		"image1,image2,name,description",
		a + "," + b + ",changed,square added",
		a + "," + filepath.Join(dir, "missing.png") + ",broken",
		"incomplete",
	}, "\n")
	csvPath := filepath.Join(dir, "pairs.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(manifest), 0o644))

	out := filepath.Join(dir, "out")
	metrics := filepath.Join(dir, "metrics.prom")
	code := run([]string{"--csv", csvPath, "--output-dir", out, "--workers", "2", "--progress=false", "--metrics-file", metrics})
	require.Equal(t, 0, code)

	data, err := os.ReadFile(filepath.Join(out, summaryJSONFile))
	require.NoError(t, err)
	var summary report.Summary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, report.StatusSuccess, summary.Results[0].Status)

	assert.FileExists(t, filepath.Join(out, summaryCSVFile))
	assert.FileExists(t, filepath.Join(out, summaryHTMLFile))
	assert.FileExists(t, filepath.Join(out, "row_2_changed", report.PairDiffFile))
	assert.FileExists(t, metrics)
}

func TestRunDirectories(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	writeImage(t, filepath.Join(dirA, "home.png"), image.Rectangle{})
	writeImage(t, filepath.Join(dirB, "home.png"), image.Rect(5, 5, 15, 15))

	out := filepath.Join(t.TempDir(), "out")
	require.Equal(t, 0, run([]string{"--dir-a", dirA, "--dir-b", dirB, "--output-dir", out, "--progress=false"}))
	assert.DirExists(t, filepath.Join(out, "row_2_home"))
}

func TestLoadPairsArguments(t *testing.T) {
	_, err := loadPairs("", "", "")
	assert.Error(t, err)
	_, err = loadPairs("x.csv", "a", "")
	assert.Error(t, err)
	_, err = loadPairs("", "a", "")
	assert.Error(t, err)
}
