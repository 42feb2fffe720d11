package tplib

import "github.com/paulmach/orb"

// buildAssociatedElements converts a walk's raw element sequence into the
// AssociatedElement spans a TrainPath exposes, deriving each element's
// intrinsic-coordinate window from the side it was entered on. Begin/end
// fix indices are filled in later by projectFixesOntoPath; they default to
// -1 (unassigned) here.
func buildAssociatedElements(scores map[string]elementScore, walk []walkElement) []AssociatedElement {
	out := make([]AssociatedElement, len(walk))
	for i, w := range walk {
		begin, end := 0.0, 1.0
		if w.EntrySide == 1 {
			begin, end = 1.0, 0.0
		}
		out[i] = AssociatedElement{
			ElementID:      w.ElementID,
			BeginIntrinsic: begin,
			EndIntrinsic:   end,
			Probability:    scores[w.ElementID].Combined,
			BeginFixIndex:  -1,
			EndFixIndex:    -1,
		}
	}
	return out
}

// pathDirectionProbability is P_direction: the arc-length-weighted mean of
// P(e) across a path's elements.
func pathDirectionProbability(strat geometryStrategy, graph *Graph, elements []AssociatedElement) float64 {
	totalLength := 0.0
	weighted := 0.0
	for _, e := range elements {
		el, ok := graph.Element(e.ElementID)
		if !ok {
			continue
		}
		length := lineLength(strat, el.Geometry)
		totalLength += length
		weighted += length * e.Probability
	}
	if totalLength == 0 {
		return 0
	}
	return weighted / totalLength
}

func sameElementSequence(a, b []AssociatedElement) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ElementID != b[i].ElementID {
			return false
		}
	}
	return true
}

// pathCandidate is one fully-built candidate TrainPath competing for
// selection, tagged with the forward/backward probabilities that produced
// its combined score.
type pathCandidate struct {
	elements []AssociatedElement
	prob     float64
	meta     PathMetadata
}

// selectPath builds the forward and (reversed) backward walks into
// candidate paths, scores each with the bidirectional-agreement rule, and
// returns the highest-scoring one. A unidirectional candidate (only one
// walk succeeded, or the two walks disagree) is scored at half its
// direction probability, matching the "missing direction contributes 0"
// rule applied to (P_forward+P_backward)/2. Returns ErrPathCalculationFailed
// if no candidate exists or every candidate scores zero.
func selectPath(strat geometryStrategy, graph *Graph, scores map[string]elementScore, forward, backward walkResult, candidateCount int) (TrainPath, error) {
	var forwardElements, backwardElements []AssociatedElement
	var pDirF, pDirB float64
	forwardOK := !forward.TerminatedEarly && len(forward.Elements) > 0
	backwardOK := !backward.TerminatedEarly && len(backward.Elements) > 0

	if forwardOK {
		forwardElements = buildAssociatedElements(scores, forward.Elements)
		pDirF = pathDirectionProbability(strat, graph, forwardElements)
	}
	if backwardOK {
		reversed := reverseWalkElements(backward.Elements)
		backwardElements = buildAssociatedElements(scores, reversed)
		pDirB = pathDirectionProbability(strat, graph, backwardElements)
	}

	var candidates []pathCandidate
	agree := forwardOK && backwardOK && sameElementSequence(forwardElements, backwardElements)

	switch {
	case forwardOK && agree:
		candidates = append(candidates, pathCandidate{
			elements: forwardElements,
			prob:     (pDirF + pDirB) / 2,
			meta:     PathMetadata{ForwardProbability: pDirF, BackwardProbability: pDirB, CandidateCount: candidateCount},
		})
	default:
		if forwardOK {
			candidates = append(candidates, pathCandidate{
				elements: forwardElements,
				prob:     pDirF / 2,
				meta:     PathMetadata{ForwardProbability: pDirF, CandidateCount: candidateCount},
			})
		}
		if backwardOK {
			candidates = append(candidates, pathCandidate{
				elements: backwardElements,
				prob:     pDirB / 2,
				meta:     PathMetadata{BackwardProbability: pDirB, CandidateCount: candidateCount},
			})
		}
	}

	if len(candidates) == 0 {
		return TrainPath{}, newErr(ErrPathCalculationFailed, "no surviving forward or backward walk")
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.prob > best.prob {
			best = c
		}
	}
	if best.prob <= 0 {
		return TrainPath{}, newErr(ErrPathCalculationFailed, "every candidate path scored zero probability")
	}

	return TrainPath{
		Elements:    best.elements,
		Probability: best.prob,
		Mode:        ModeTopology,
		Metadata:    best.meta,
	}, nil
}

// projectFixesOntoPath re-projects every original fix onto the selected
// path, restricting each fix's search to the path's own elements (rather
// than the full candidate set), and fills in each AssociatedElement's
// begin/end fix index range from the fixes actually assigned to it.
func projectFixesOntoPath(strat geometryStrategy, graph *Graph, path *TrainPath, fixes []GnssFix, pointsInCRS []orb.Point, networkCRS string) []ProjectedFix {
	elementOffset := make([]float64, len(path.Elements))
	cumulative := 0.0
	for i, ae := range path.Elements {
		elementOffset[i] = cumulative
		if el, ok := graph.Element(ae.ElementID); ok {
			cumulative += lineLength(strat, el.Geometry)
		}
	}

	out := make([]ProjectedFix, len(fixes))
	for i, fix := range fixes {
		bestElemIdx := -1
		best := projection{PerpendicularDistance: -1}
		for ei, ae := range path.Elements {
			el, ok := graph.Element(ae.ElementID)
			if !ok {
				continue
			}
			proj, err := projectPointOntoLine(strat, el.Geometry, pointsInCRS[i])
			if err != nil {
				continue
			}
			if best.PerpendicularDistance < 0 || proj.PerpendicularDistance < best.PerpendicularDistance {
				best = proj
				bestElemIdx = ei
			}
		}
		if bestElemIdx < 0 {
			out[i] = ProjectedFix{Original: fix, CRS: networkCRS}
			continue
		}
		ae := &path.Elements[bestElemIdx]
		if ae.BeginFixIndex == -1 || i < ae.BeginFixIndex {
			ae.BeginFixIndex = i
		}
		if ae.EndFixIndex == -1 || i > ae.EndFixIndex {
			ae.EndFixIndex = i
		}
		globalMeasure := elementOffset[bestElemIdx] + best.Measure
		out[i] = ProjectedFix{
			Original:              fix,
			Point:                 best.Point,
			ElementID:             ae.ElementID,
			Measure:               globalMeasure,
			PerpendicularDistance: best.PerpendicularDistance,
			CRS:                   networkCRS,
			Intrinsic:             best.Intrinsic,
		}
	}
	return out
}

// projectFixesIndependently is the fallback projector: each fix is
// projected onto its own single nearest netelement, ignoring topology and
// the probability threshold entirely.
func projectFixesIndependently(strat geometryStrategy, idx *SpatialIndex, fixes []GnssFix, pointsInCRS []orb.Point, cutoff float64, networkCRS string) []ProjectedFix {
	out := make([]ProjectedFix, len(fixes))
	for i, fix := range fixes {
		hits := idx.NearestWithin(pointsInCRS[i], cutoff, 1)
		if len(hits) == 0 {
			out[i] = ProjectedFix{Original: fix, CRS: networkCRS}
			continue
		}
		geometry, ok := idx.Geometry(hits[0].ElementID)
		if !ok {
			out[i] = ProjectedFix{Original: fix, CRS: networkCRS}
			continue
		}
		proj, err := projectPointOntoLine(strat, geometry, pointsInCRS[i])
		if err != nil {
			out[i] = ProjectedFix{Original: fix, CRS: networkCRS}
			continue
		}
		out[i] = ProjectedFix{
			Original:              fix,
			Point:                 proj.Point,
			ElementID:             hits[0].ElementID,
			Measure:               proj.Measure,
			PerpendicularDistance: proj.PerpendicularDistance,
			CRS:                   networkCRS,
			Intrinsic:             proj.Intrinsic,
		}
	}
	return out
}
