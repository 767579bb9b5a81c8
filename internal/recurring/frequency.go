package recurring

import (
	"math"

	"github.com/centsible/centsible/internal/model"
)

// frequencyBand defines the acceptance window for one cadence: the mean gap
// must fall inside [minMean, maxMean], and every individual gap must sit
// within tolerance days of the mean.
type frequencyBand struct {
	frequency model.Frequency
	minMean   float64
	maxMean   float64
	tolerance float64
}

var frequencyBands = []frequencyBand{
	{frequency: model.FrequencyWeekly, minMean: 4, maxMean: 10, tolerance: 3},
	{frequency: model.FrequencyBiweekly, minMean: 11, maxMean: 17, tolerance: 5},
	{frequency: model.FrequencyMonthly, minMean: 25, maxMean: 35, tolerance: 7},
}

// classifyFrequency maps the day gaps between consecutive charges to a
// cadence and a rounded mean interval. It returns false when the mean gap
// fits no band, or fits a band's range but the individual gaps are too
// irregular; a group that fails its matching band is not retried against
// another.
func classifyFrequency(gaps []int) (model.Frequency, int, bool) {
	if len(gaps) == 0 {
		return "", 0, false
	}

	sum := 0
	for _, gap := range gaps {
		sum += gap
	}
	mean := float64(sum) / float64(len(gaps))

	for _, band := range frequencyBands {
		if mean < band.minMean || mean > band.maxMean {
			continue
		}
		for _, gap := range gaps {
			if math.Abs(float64(gap)-mean) > band.tolerance {
				return "", 0, false
			}
		}
		return band.frequency, int(math.Round(mean)), true
	}

	return "", 0, false
}
