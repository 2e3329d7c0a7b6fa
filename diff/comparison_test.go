package diff

import (
	"bytes"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nvr-ai/go-imgdiff/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestOpenIdenticalSolid(t *testing.T) {
	dir := t.TempDir()
	img := solid(400, 300, red)
	pathA := writePNG(t, dir, "a.png", img)
	pathB := writePNG(t, dir, "b.png", img)

	cmp, err := Open(pathA, pathB)
	require.NoError(t, err)
	assert.False(t, cmp.Resampled())
	assert.Nil(t, cmp.Warning())

	res := cmp.Compare()
	assert.Zero(t, res.Raw.DiffPercentage)
	assert.Zero(t, res.Raw.ChangedPercentage)
	assert.Equal(t, DefaultStatsThreshold, res.Raw.Threshold)
	assert.Zero(t, res.Processed.ChangedPercentage)
	assert.Equal(t, DefaultMaskParams(), res.Processed.Params)

	regions, err := cmp.Regions(DefaultThreshold, DefaultMinArea, 0)
	require.NoError(t, err)
	assert.Empty(t, regions)
}

func TestOpenMissingFile(t *testing.T) {
	dir := t.TempDir()
	pathA := writePNG(t, dir, "a.png", solid(4, 4, white))

	_, err := Open(pathA, filepath.Join(dir, "missing.png"))
	var loadErr *images.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Source, "missing.png")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFromSourcesCorruptData(t *testing.T) {
	_, err := FromSources(images.Source{Data: []byte("not an image")}, images.Source{Data: []byte{0x89}})
	var loadErr *images.LoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestFromImagesResamplesWithWarning(t *testing.T) {
	var (
		logs     bytes.Buffer
		received []DimensionMismatchWarning
	)
	a := solid(200, 100, white)
	b := solid(100, 50, white)

	cmp, err := FromImages(a, b,
		WithLogger(log.New(&logs, "", 0)),
		WithWarningHandler(func(w DimensionMismatchWarning) { received = append(received, w) }),
	)
	require.NoError(t, err)

	assert.True(t, cmp.Resampled())
	assert.Equal(t, image.Pt(200, 100), cmp.Size())
	assert.Equal(t, image.Pt(200, 100), cmp.ImageB().Rect.Size())
	require.Len(t, received, 1)
	assert.Equal(t, image.Pt(100, 50), received[0].SizeB)
	assert.Equal(t, received[0], *cmp.Warning())
	assert.Contains(t, logs.String(), "100x50")

	// Both images are plain white, so resampling introduces no difference.
	assert.Less(t, cmp.Compare().Raw.ChangedPercentage, 1.0)
}

func TestComparisonRenderAndRegions(t *testing.T) {
	without := solid(800, 600, white)
	with := withCircle(without, 400, 300, 50, red)

	cmp, err := FromImages(with, without)
	require.NoError(t, err)

	res := cmp.Compare()
	assert.Greater(t, res.Raw.ChangedPercentage, 0.0)
	assert.Equal(t, res.Raw.ChangedPixels, cmp.Statistics(DefaultThreshold).ChangedPixels)

	for _, mode := range Modes {
		out, err := cmp.Render(mode, DefaultMaskParams())
		require.NoError(t, err, mode)
		assert.Equal(t, image.Rect(0, 0, 800, 600), out.Rect)
	}

	regions, err := cmp.Regions(DefaultThreshold, DefaultMinArea, 0)
	require.NoError(t, err)
	require.Len(t, regions, 1)

	overlay := cmp.RegionOverlay(regions)
	assert.Equal(t, cmp.ImageA().Rect, overlay.Rect)

	processed, err := cmp.ProcessedStatistics(MaskParams{Threshold: DefaultThreshold, MorphKernelSize: 3, BlurKernelSize: 5})
	require.NoError(t, err)
	assert.Greater(t, processed.ChangedPixels, 0)

	sbs, err := cmp.SideBySide(DefaultMaskParams())
	require.NoError(t, err)
	assert.Greater(t, sbs.Rect.Dx(), 4*800)
}

func TestComparisonConcurrentReaders(t *testing.T) {
	a := solid(120, 90, white)
	b := withRects(a, red, image.Rect(10, 10, 60, 60))
	cmp, err := FromImages(a, b)
	require.NoError(t, err)

	want := cmp.Compare()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, cmp.Compare())
			_, err := cmp.Regions(DefaultThreshold, DefaultMinArea, 3)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
