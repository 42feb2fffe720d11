package tplib

import (
	"math"

	"github.com/paulmach/orb"
)

// resampleIndices picks a stride-spaced subset of fix indices to drive path
// construction when cfg.ResamplingDistance is set, trading positional
// resolution for fewer beam-search steps on long, densely sampled traces.
// The final projection step always re-projects every original fix
// regardless of this subset (output cardinality is never reduced).
//
// stride = max(1, round(r / s)), where s is the mean inter-fix spacing:
// computed from odometer deltas when every fix carries one, otherwise from
// geometric distance between consecutive fixes in the network CRS.
func resampleIndices(strat geometryStrategy, fixes []GnssFix, pointsInCRS []orb.Point, resamplingDistance *float64) []int {
	n := len(fixes)
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	if resamplingDistance == nil || n < 3 {
		return all
	}

	s := meanSpacing(strat, fixes, pointsInCRS)
	if s <= 0 {
		return all
	}
	stride := int(math.Round(*resamplingDistance / s))
	if stride < 1 {
		stride = 1
	}
	if stride == 1 {
		return all
	}

	subset := make([]int, 0, n/stride+2)
	for i := 0; i < n; i += stride {
		subset = append(subset, i)
	}
	if subset[len(subset)-1] != n-1 {
		subset = append(subset, n-1)
	}
	return subset
}

func meanSpacing(strat geometryStrategy, fixes []GnssFix, pointsInCRS []orb.Point) float64 {
	n := len(fixes)
	if n < 2 {
		return 0
	}
	haveOdometer := true
	for _, f := range fixes {
		if f.Distance == nil {
			haveOdometer = false
			break
		}
	}

	total := 0.0
	if haveOdometer {
		for i := 1; i < n; i++ {
			total += math.Abs(*fixes[i].Distance - *fixes[i-1].Distance)
		}
	} else {
		for i := 1; i < n; i++ {
			total += strat.distance(pointsInCRS[i-1], pointsInCRS[i])
		}
	}
	return total / float64(n-1)
}
