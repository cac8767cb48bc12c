package indicators

import "math"

// RollingMean returns the trailing mean over window observations. Missing
// (non-finite) values are skipped; a position with fewer than minPeriods
// present values is NaN.
func RollingMean(values []float64, window, minPeriods int) []float64 {
	out := make([]float64, len(values))
	if window <= 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	if minPeriods < 1 {
		minPeriods = 1
	}

	var sum float64
	var count int
	for i, v := range values {
		if finite(v) {
			sum += v
			count++
		}
		if j := i - window; j >= 0 && finite(values[j]) {
			sum -= values[j]
			count--
		}

		if count >= minPeriods {
			out[i] = sum / float64(count)
		} else {
			out[i] = math.NaN()
		}
	}

	return out
}

// dropMissing returns the finite values, in order
func dropMissing(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if finite(v) {
			out = append(out, v)
		}
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}
