package valueobject

import "math"

// ClampUnit bounds v to the closed interval [0,1]. NaN is treated as 0.
func ClampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
