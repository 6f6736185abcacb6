//go:build fastmath

package harmonics

import (
	"math"

	"github.com/meko-christian/algo-approx"
)

func ratioToDB(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20 / math.Ln10 * approx.FastLog(v)
}
