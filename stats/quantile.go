package stats

import "math"

// NormalQuantile returns the standard normal z-value for probability p using
// the Abramowitz-Stegun rational approximation (|error| < 4.5e-4).
func NormalQuantile(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}
	if p < 0.5 {
		return -NormalQuantile(1 - p)
	}

	t := math.Sqrt(-2 * math.Log(1-p))
	c0, c1, c2 := 2.515517, 0.802853, 0.010328
	d1, d2, d3 := 1.432788, 0.189269, 0.001308

	return t - (c0+c1*t+c2*t*t)/(1+d1*t+d2*t*t+d3*t*t*t)
}

// TwoSidedZ returns the z multiplier for a symmetric interval at the given
// confidence level, e.g. about 1.96 for 0.95.
func TwoSidedZ(confidence float64) float64 {
	return NormalQuantile((1 + confidence) / 2)
}
