//go:build !fastmath

package harmonics

import "github.com/cwbudde/algo-wasabi/dsp/core"

// ratioToDB maps non-positive ratios to -Inf.
func ratioToDB(v float64) float64 {
	return core.LinearToDB(max(v, 0))
}
