package diff

// maxChannelValue is the largest possible per-channel difference.
const maxChannelValue = 255

// ChannelStats holds one value per color channel.
type ChannelStats struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// ChannelMax holds the per-channel maximum difference.
type ChannelMax struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Statistics is the "raw" aggregate of a difference array: the changed-pixel
// count uses a plain threshold mask with no morphology or smoothing.
type Statistics struct {
	// TotalPixels is width * height.
	TotalPixels int `json:"total_pixels"`
	// DiffPercentage is the sum of all channel differences over the maximum
	// possible sum, in percent. It measures signal energy, not area.
	DiffPercentage float64 `json:"diff_percentage"`
	// ChangedPixels counts pixels with any channel difference above Threshold.
	ChangedPixels int `json:"changed_pixels"`
	// ChangedPercentage is ChangedPixels over TotalPixels, in percent.
	ChangedPercentage float64 `json:"changed_percentage"`
	// MeanDiff is the per-channel mean of the unfiltered differences.
	MeanDiff ChannelStats `json:"mean_diff"`
	// MaxDiff is the per-channel maximum of the unfiltered differences.
	MaxDiff ChannelMax `json:"max_diff"`
	// Threshold is the threshold the changed-pixel count was taken at.
	Threshold int `json:"threshold"`
}

// ProcessedStatistics is derived from the final change mask (after opening and
// smoothing), so it agrees with what the highlight render shows.
type ProcessedStatistics struct {
	TotalPixels       int     `json:"total_pixels"`
	ChangedPixels     int     `json:"changed_pixels"`
	ChangedPercentage float64 `json:"changed_percentage"`
	// DiffPercentage sums the original differences inside the mask footprint
	// only, normalized by the same constant as Statistics.DiffPercentage.
	DiffPercentage float64 `json:"diff_percentage"`
	// Params are the mask parameters that produced these numbers.
	Params MaskParams `json:"processing_applied"`
}

// ComputeStatistics derives the raw statistics of arr at threshold.
//
// Arguments:
//   - arr: The difference array.
//   - threshold: A pixel is changed when any channel difference exceeds it.
//
// Returns:
//   - Statistics: The aggregate record. Zero-size arrays yield all zeros.
func ComputeStatistics(arr *Array, threshold int) Statistics {
	total := arr.TotalPixels()
	stats := Statistics{TotalPixels: total, Threshold: threshold}
	if total == 0 {
		return stats
	}

	var (
		sums    [Channels]int64
		maxes   [Channels]int16
		changed int
	)
	for i := 0; i < total; i++ {
		p := arr.Pix[i*Channels : i*Channels+Channels]
		above := false
		for c, v := range p {
			sums[c] += int64(v)
			if v > maxes[c] {
				maxes[c] = v
			}
			if int(v) > threshold {
				above = true
			}
		}
		if above {
			changed++
		}
	}

	stats.DiffPercentage = percentOfMaxEnergy(sums[0]+sums[1]+sums[2], total)
	stats.ChangedPixels = changed
	stats.ChangedPercentage = percent(changed, total)
	stats.MeanDiff = ChannelStats{
		R: float64(sums[0]) / float64(total),
		G: float64(sums[1]) / float64(total),
		B: float64(sums[2]) / float64(total),
	}
	stats.MaxDiff = ChannelMax{R: int(maxes[0]), G: int(maxes[1]), B: int(maxes[2])}

	return stats
}

// ComputeProcessedStatistics derives statistics from an already built mask.
//
// Arguments:
//   - arr: The difference array the mask was built from.
//   - mask: The final change mask.
//   - params: The parameters that produced mask, recorded in the result.
//
// Returns:
//   - ProcessedStatistics: Counts and energy restricted to the mask footprint.
func ComputeProcessedStatistics(arr *Array, mask *Mask, params MaskParams) ProcessedStatistics {
	total := arr.TotalPixels()
	stats := ProcessedStatistics{TotalPixels: total, Params: params}
	if total == 0 {
		return stats
	}

	var energy int64
	changed := 0
	for i, on := range mask.Pix {
		if !on {
			continue
		}
		changed++
		energy += arr.PixelSum(i)
	}

	stats.ChangedPixels = changed
	stats.ChangedPercentage = percent(changed, total)
	stats.DiffPercentage = percentOfMaxEnergy(energy, total)

	return stats
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// percentOfMaxEnergy divides sum by total*255*3; a zero denominator yields 0.
func percentOfMaxEnergy(sum int64, total int) float64 {
	maxSum := int64(total) * maxChannelValue * Channels
	if maxSum == 0 {
		return 0
	}
	return float64(sum) / float64(maxSum) * 100
}
