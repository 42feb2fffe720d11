package tplib

import (
	"sort"

	"github.com/paulmach/orb"
)

// oversampleFactor is how many more neighbors the spatial index is asked
// for than MaxCandidates actually needs, to survive bounding-box distance
// ordering disagreeing with true perpendicular distance near the cutoff.
const oversampleFactor = 2

// fixCandidates is the set of scored netelement candidates found for one
// GNSS fix, plus the fix's own position already transformed into the
// network's declared CRS.
type fixCandidates struct {
	FixIndex   int
	PointInCRS orb.Point
	Distance   *float64
	Links      []candidateLink
}

// buildCandidates finds, for one GNSS fix, up to cfg.MaxCandidates
// netelements within cfg.CutoffDistance, each scored by true perpendicular
// distance and annotated with the element's local heading at the
// projection point. pt must already be in the network's CRS. distance is
// the fix's own odometer reading, carried through unchanged for later
// coverage computation.
func buildCandidates(
	strat geometryStrategy,
	idx *SpatialIndex,
	graph *Graph,
	fixIndex int,
	pt orb.Point,
	distance *float64,
	cfg Config,
) fixCandidates {
	hits := idx.NearestWithin(pt, cfg.CutoffDistance, cfg.MaxCandidates*oversampleFactor)

	links := make([]candidateLink, 0, len(hits))
	for _, h := range hits {
		el, ok := graph.Element(h.ElementID)
		if !ok {
			continue
		}
		proj, err := projectPointOntoLine(strat, el.Geometry, pt)
		if err != nil {
			continue
		}
		if proj.PerpendicularDistance > cfg.CutoffDistance {
			continue
		}
		segHeading := headingAtMeasure(strat, el.Geometry, proj.Measure)
		links = append(links, candidateLink{
			ElementID:             el.ID,
			FixIndex:              fixIndex,
			Intrinsic:             proj.Intrinsic,
			PerpendicularDistance: proj.PerpendicularDistance,
			Heading:               &segHeading,
		})
	}

	sort.SliceStable(links, func(i, j int) bool {
		if links[i].PerpendicularDistance != links[j].PerpendicularDistance {
			return links[i].PerpendicularDistance < links[j].PerpendicularDistance
		}
		return links[i].ElementID < links[j].ElementID
	})
	if len(links) > cfg.MaxCandidates {
		links = links[:cfg.MaxCandidates]
	}
	return fixCandidates{FixIndex: fixIndex, PointInCRS: pt, Distance: distance, Links: links}
}
