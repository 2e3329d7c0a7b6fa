package diff

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdMask(t *testing.T) {
	a := solid(10, 10, black)
	b := withRects(a, red, image.Rect(2, 2, 4, 4))

	mask := ThresholdMask(mustCompute(a, b), DefaultThreshold)
	assert.Equal(t, 4, mask.Count())
	assert.True(t, mask.At(3, 3))
	assert.False(t, mask.At(4, 4))
}

func TestBuildMaskWithoutProcessingMatchesThreshold(t *testing.T) {
	a := solid(40, 30, white)
	b := noisy(withRects(a, black, image.Rect(5, 5, 25, 25)), 7, black)
	arr := mustCompute(a, b)

	mask, err := BuildMask(arr, DefaultMaskParams())
	require.NoError(t, err)
	assert.Equal(t, ThresholdMask(arr, DefaultThreshold).Pix, mask.Pix)
}

func TestBuildMaskOpeningNeverAdds(t *testing.T) {
	a := solid(100, 100, white)
	b := noisy(withRects(a, black, image.Rect(20, 20, 60, 60), image.Rect(70, 10, 72, 90)), 7, black)
	arr := mustCompute(a, b)
	base := ThresholdMask(arr, DefaultThreshold)

	for _, k := range []int{1, 3, 5, 9} {
		opened, err := BuildMask(arr, MaskParams{Threshold: DefaultThreshold, MorphKernelSize: k})
		require.NoError(t, err)

		assert.LessOrEqual(t, opened.Count(), base.Count(), "kernel %d", k)
		for i, on := range opened.Pix {
			if on {
				require.True(t, base.Pix[i], "opening added pixel %d with kernel %d", i, k)
			}
		}
	}

	opened, err := BuildMask(arr, MaskParams{Threshold: DefaultThreshold, MorphKernelSize: 3})
	require.NoError(t, err)
	// Specks and the two-pixel strand are gone, the block interior survives.
	assert.False(t, opened.At(71, 50))
	assert.True(t, opened.At(40, 40))
	assert.Less(t, opened.Count(), base.Count())
}

func TestBuildMaskSmoothing(t *testing.T) {
	a := solid(60, 60, white)
	b := withRects(a, black, image.Rect(10, 10, 40, 40), image.Rect(50, 50, 51, 51))
	arr := mustCompute(a, b)

	smoothed, err := BuildMask(arr, MaskParams{Threshold: DefaultThreshold, BlurKernelSize: 5})
	require.NoError(t, err)
	assert.False(t, smoothed.At(50, 50), "isolated pixel should fall below 0.5 after blurring")
	assert.True(t, smoothed.At(25, 25))

	// Even kernel sizes are bumped to the next odd size.
	even, err := BuildMask(arr, MaskParams{Threshold: DefaultThreshold, BlurKernelSize: 4})
	require.NoError(t, err)
	assert.Equal(t, smoothed.Pix, even.Pix)
}

func TestBuildMaskInvalidParams(t *testing.T) {
	arr := mustCompute(solid(4, 4, white), solid(4, 4, white))

	for _, params := range []MaskParams{
		{Threshold: -1},
		{Threshold: 20, MorphKernelSize: -3},
		{Threshold: 20, BlurKernelSize: -1},
	} {
		_, err := BuildMask(arr, params)
		assert.Error(t, err, "%+v", params)
	}
}

func TestProcessedStatisticsFollowMask(t *testing.T) {
	a := solid(50, 50, white)
	b := noisy(withRects(a, black, image.Rect(10, 10, 30, 30)), 7, black)
	arr := mustCompute(a, b)

	params := MaskParams{Threshold: DefaultThreshold, MorphKernelSize: 3}
	mask, err := BuildMask(arr, params)
	require.NoError(t, err)

	processed := ComputeProcessedStatistics(arr, mask, params)
	raw := ComputeStatistics(arr, DefaultThreshold)

	assert.Equal(t, mask.Count(), processed.ChangedPixels)
	assert.Less(t, processed.ChangedPixels, raw.ChangedPixels)
	assert.LessOrEqual(t, processed.DiffPercentage, raw.DiffPercentage)
	assert.Equal(t, params, processed.Params)
}
