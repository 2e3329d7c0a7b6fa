package report

// Verdict thresholds on the overall difference percentage.
const (
	AlmostIdenticalBelow  = 1.0
	SlightDifferenceBelow = 5.0
)

// Row shading thresholds of the HTML summary.
const (
	lowShadeBelow    = 5.0
	mediumShadeBelow = 20.0
)

// Verdict classifies an overall difference percentage.
//
// Returns:
//   - string: "almost identical" below 1%, "slight difference" below 5%,
//     otherwise "large difference".
func Verdict(diffPercentage float64) string {
	switch {
	case diffPercentage < AlmostIdenticalBelow:
		return "almost identical"
	case diffPercentage < SlightDifferenceBelow:
		return "slight difference"
	default:
		return "large difference"
	}
}

// shadeClass maps a difference percentage to the CSS row class used by the
// HTML summary.
func shadeClass(diffPercentage float64) string {
	switch {
	case diffPercentage < lowShadeBelow:
		return "diff-low"
	case diffPercentage < mediumShadeBelow:
		return "diff-medium"
	default:
		return "diff-high"
	}
}
