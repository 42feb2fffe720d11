package tplib

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// distanceProbability scores how likely a perpendicular distance is to
// represent genuine GNSS noise rather than a wrong-track match: it decays
// exponentially with distance, controlled by distanceScale.
func distanceProbability(perpDistance, distanceScale float64) float64 {
	return math.Exp(-perpDistance / distanceScale)
}

// headingProbability scores agreement between the fix's sensor heading and
// a candidate segment's local heading. A fix with no heading reading is
// heading-agnostic (probability 1); headingDelta already folds the 180
// degree ambiguity that bidirectional single track introduces, so opposite
// travel direction on the same physical track never counts against a
// candidate.
func headingProbability(fixHeading *float64, segmentHeading, headingScale, headingCutoff float64) float64 {
	if fixHeading == nil {
		return 1
	}
	delta := headingDelta(*fixHeading, segmentHeading)
	if delta > headingCutoff {
		return 0
	}
	return math.Exp(-delta / headingScale)
}

// linkProbability is the combined per-candidate probability P_link.
func linkProbability(fixHeading *float64, link candidateLink, cfg Config) float64 {
	pDist := distanceProbability(link.PerpendicularDistance, cfg.DistanceScale)
	segHeading := 0.0
	if link.Heading != nil {
		segHeading = *link.Heading
	}
	pHead := headingProbability(fixHeading, segHeading, cfg.HeadingScale, cfg.HeadingCutoff)
	return pDist * pHead
}

// elementScore is the aggregated, coverage-corrected probability of one
// netelement across every fix that produced a candidate on it.
type elementScore struct {
	ElementID   string
	AverageLink float64
	Coverage    float64
	Combined    float64
}

// scoredFix pairs a fix index with its P_link on one netelement.
type scoredFix struct {
	fixIndex int
	linkProb float64
}

// scoreElements computes P(e) = P_avg(e) * C_distance(e) for every
// netelement that appears in at least one fix's candidate set.
//
// P_avg(e) is the mean P_link across all candidates on e. C_distance(e) is
// the sum of consecutive-fix travelled distance, over maximal runs of
// fixes whose candidate sets both contain e, divided by e's polyline
// length, clamped to 1 — a partial match of a long segment scores lower
// than a full traversal of a short one.
func scoreElements(strat geometryStrategy, graph *Graph, fixes []fixCandidates, fixHeadings []*float64, cfg Config) map[string]elementScore {
	linksByElement := make(map[string][]scoredFix)
	pointByFixIndex := make(map[int]orb.Point, len(fixes))
	distanceByFixIndex := make(map[int]*float64, len(fixes))

	for _, fc := range fixes {
		pointByFixIndex[fc.FixIndex] = fc.PointInCRS
		distanceByFixIndex[fc.FixIndex] = fc.Distance
		var heading *float64
		if fc.FixIndex >= 0 && fc.FixIndex < len(fixHeadings) {
			heading = fixHeadings[fc.FixIndex]
		}
		for _, link := range fc.Links {
			p := linkProbability(heading, link, cfg)
			linksByElement[link.ElementID] = append(linksByElement[link.ElementID], scoredFix{
				fixIndex: fc.FixIndex,
				linkProb: p,
			})
		}
	}

	scores := make(map[string]elementScore, len(linksByElement))
	for elementID, entries := range linksByElement {
		sum := 0.0
		for _, e := range entries {
			sum += e.linkProb
		}
		avg := sum / float64(len(entries))
		coverage := coverageFor(strat, graph, elementID, entries, pointByFixIndex, distanceByFixIndex)
		scores[elementID] = elementScore{
			ElementID:   elementID,
			AverageLink: avg,
			Coverage:    coverage,
			Combined:    avg * coverage,
		}
	}
	return scores
}

// coverageFor computes C_distance(e): the fraction of e's length actually
// travelled by contiguous runs of matched fixes, clamped to 1. The distance
// between two consecutive fixes uses their odometer delta when both carry a
// Distance reading, falling back to geometric distance in the network CRS
// otherwise.
func coverageFor(strat geometryStrategy, graph *Graph, elementID string, entries []scoredFix, pointByFixIndex map[int]orb.Point, distanceByFixIndex map[int]*float64) float64 {
	el, ok := graph.Element(elementID)
	if !ok || len(el.Geometry) < 2 {
		return 0
	}
	length := lineLength(strat, el.Geometry)
	if length <= 0 {
		return 0
	}

	seen := make(map[int]bool, len(entries))
	indices := make([]int, 0, len(entries))
	for _, e := range entries {
		if !seen[e.fixIndex] {
			seen[e.fixIndex] = true
			indices = append(indices, e.fixIndex)
		}
	}
	sort.Ints(indices)

	traveled := 0.0
	for i := 1; i < len(indices); i++ {
		if indices[i] != indices[i-1]+1 {
			continue // gap: breaks the contiguous run
		}
		distA, okDistA := distanceByFixIndex[indices[i-1]]
		distB, okDistB := distanceByFixIndex[indices[i]]
		if okDistA && okDistB && distA != nil && distB != nil {
			traveled += math.Abs(*distB - *distA)
			continue
		}
		a, okA := pointByFixIndex[indices[i-1]]
		b, okB := pointByFixIndex[indices[i]]
		if !okA || !okB {
			continue
		}
		traveled += strat.distance(a, b)
	}

	coverage := traveled / length
	if coverage > 1 {
		coverage = 1
	}
	return coverage
}
