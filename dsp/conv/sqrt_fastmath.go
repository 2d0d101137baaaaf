//go:build fastmath

package conv

import "github.com/meko-christian/algo-approx"

// mathSqrt computes sqrt(x) using a fast approximation, for the
// SquareRootMixer's per-sample gain calculation.
func mathSqrt(x float64) float64 {
	return approx.FastSqrt(x)
}
