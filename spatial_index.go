package tplib

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

const rtreeDimensions = 2

// metersPerDegree is the approximate conversion used only to size the
// coarse bounding-box query window for geographic networks; the true
// distance used to rank and filter candidates always comes from the
// network's geometryStrategy, never from this approximation.
const metersPerDegree = 111320.0

// spatialElement adapts a NetElement's bounding box to rtreego.Spatial.
type spatialElement struct {
	elementID string
	rect      *rtreego.Rect
	insertion int
}

func (s spatialElement) Bounds() *rtreego.Rect {
	return s.rect
}

// SpatialIndex answers "which netelements pass near this point" queries
// through an R-tree over element bounding boxes, backing the candidate
// builder's per-fix search.
type SpatialIndex struct {
	tree       *rtreego.Rtree
	strat      geometryStrategy
	elements   map[string]orb.LineString
	geographic bool
}

// NewSpatialIndex builds an R-tree over the bounding boxes of elements.
// Returns ErrEmptyNetwork if elements is empty.
func NewSpatialIndex(elements []NetElement, strat geometryStrategy, geographic bool) (*SpatialIndex, error) {
	if len(elements) == 0 {
		return nil, newErr(ErrEmptyNetwork, "network has no net elements")
	}
	idx := &SpatialIndex{
		tree:       rtreego.NewTree(rtreeDimensions, 4, 16),
		strat:      strat,
		elements:   make(map[string]orb.LineString, len(elements)),
		geographic: geographic,
	}
	for i, el := range elements {
		if len(el.Geometry) < 2 {
			continue
		}
		idx.elements[el.ID] = el.Geometry
		rect, err := boundsOf(el.Geometry)
		if err != nil {
			continue
		}
		idx.tree.Insert(spatialElement{elementID: el.ID, rect: rect, insertion: i})
	}
	return idx, nil
}

func boundsOf(line orb.LineString) (*rtreego.Rect, error) {
	bound := line.Bound()
	minX, minY := bound.Min[0], bound.Min[1]
	width := bound.Max[0] - minX
	height := bound.Max[1] - minY
	const eps = 1e-9
	if width < eps {
		width = eps
	}
	if height < eps {
		height = eps
	}
	return rtreego.NewRect(rtreego.Point{minX, minY}, []float64{width, height})
}

// Geometry returns the linestring backing elementID, if it is in the index.
func (idx *SpatialIndex) Geometry(elementID string) (orb.LineString, bool) {
	line, ok := idx.elements[elementID]
	return line, ok
}

// nearestHit is one result of a NearestWithin query: the candidate element
// and its true perpendicular distance to the query point.
type nearestHit struct {
	ElementID string
	Distance  float64
}

// NearestWithin returns up to k elements within cutoff distance of pt,
// ordered by non-decreasing true distance, ties broken by insertion order
// (i.e. the order elements were passed to NewSpatialIndex).
func (idx *SpatialIndex) NearestWithin(pt orb.Point, cutoff float64, k int) []nearestHit {
	margin := cutoff
	if idx.geographic {
		margin = cutoff / metersPerDegree
	}
	queryRect, err := rtreego.NewRect(
		rtreego.Point{pt[0] - margin, pt[1] - margin},
		[]float64{2 * margin, 2 * margin},
	)
	if err != nil {
		return nil
	}
	hits := idx.tree.SearchIntersect(queryRect)

	type scored struct {
		hit       nearestHit
		insertion int
	}
	var scoredHits []scored
	for _, h := range hits {
		se := h.(spatialElement)
		line := idx.elements[se.elementID]
		proj, err := projectPointOntoLine(idx.strat, line, pt)
		if err != nil {
			continue
		}
		if proj.PerpendicularDistance > cutoff {
			continue
		}
		scoredHits = append(scoredHits, scored{
			hit:       nearestHit{ElementID: se.elementID, Distance: proj.PerpendicularDistance},
			insertion: se.insertion,
		})
	}
	sort.SliceStable(scoredHits, func(i, j int) bool {
		if scoredHits[i].hit.Distance != scoredHits[j].hit.Distance {
			return scoredHits[i].hit.Distance < scoredHits[j].hit.Distance
		}
		return scoredHits[i].insertion < scoredHits[j].insertion
	})
	if len(scoredHits) > k {
		scoredHits = scoredHits[:k]
	}
	out := make([]nearestHit, len(scoredHits))
	for i, s := range scoredHits {
		out[i] = s.hit
	}
	return out
}
