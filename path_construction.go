package tplib

import "sort"

// maxWalkSteps bounds how many elements a single walk may visit, guarding
// against a topology cycle turning construction into an infinite loop.
const maxWalkSteps = 1000

// walkElement is one element visited by a forward or backward walk, in
// visitation order, before any intrinsic-coordinate bookkeeping is applied.
type walkElement struct {
	ElementID string
	EntrySide uint8 // the side the walk entered this element from
	Score     float64
}

// walkResult is the outcome of constructing one direction's walk.
type walkResult struct {
	Elements        []walkElement
	TerminatedEarly bool
	CumulativeScore float64
}

// elementFixIndex indexes, per element, the sorted set of fix indices that
// produced at least one candidate on it — used to test admissibility
// condition (c): does a candidate element have support at or beyond the
// walk's current position in the fix sequence.
func elementFixIndex(fixes []fixCandidates) map[string][]int {
	out := make(map[string][]int)
	for _, fc := range fixes {
		for _, link := range fc.Links {
			out[link.ElementID] = append(out[link.ElementID], fc.FixIndex)
		}
	}
	for k := range out {
		sort.Ints(out[k])
	}
	return out
}

func hasSupportAtOrBeyond(index map[string][]int, elementID string, progress int, forward bool) bool {
	for _, fi := range index[elementID] {
		if forward && fi >= progress {
			return true
		}
		if !forward && fi <= progress {
			return true
		}
	}
	return false
}

type partialWalk struct {
	elements   []walkElement
	lastSide   SegmentSide
	progress   int
	cumulative float64
	terminated bool
	complete   bool
}

// constructWalk runs a bounded-beam best-first search from startSide,
// walking the topology graph in the given direction (forward: fix index
// increases toward len(fixes)-1; backward: fix index decreases toward 0)
// until every fix in the sequence has support, or no admissible neighbor
// remains.
func constructWalk(
	graph *Graph,
	scores map[string]elementScore,
	fixes []fixCandidates,
	startSide SegmentSide,
	startProgress int,
	forward bool,
	cfg Config,
) walkResult {
	index := elementFixIndex(fixes)
	targetProgress := len(fixes) - 1
	if !forward {
		targetProgress = 0
	}

	startScore := scores[startSide.ElementID].Combined
	// The start element's own coverage can extend past the single fix it
	// was chosen from; advance progress to the furthest fix it supports
	// before evaluating any neighbor's admissibility against it.
	initialProgress := advanceProgress(index, startSide.ElementID, startProgress, forward)
	beam := []partialWalk{{
		elements:   []walkElement{{ElementID: startSide.ElementID, EntrySide: startSide.Side, Score: startScore}},
		lastSide:   OppositeSide(startSide),
		progress:   initialProgress,
		cumulative: startScore,
		complete:   reachedTarget(initialProgress, targetProgress, forward),
	}}

	for step := 0; step < maxWalkSteps; step++ {
		allDone := true
		for _, w := range beam {
			if !w.terminated && !w.complete {
				allDone = false
				break
			}
		}
		if allDone {
			break
		}

		var next []partialWalk
		for _, w := range beam {
			if w.terminated || w.complete {
				next = append(next, w)
				continue
			}
			neighbors := graph.Neighbors(w.lastSide)
			var candidates []SegmentSide
			for _, n := range neighbors {
				if n.ElementID == w.elements[len(w.elements)-1].ElementID {
					continue // internal edge back to this element's own entry
				}
				if hasSupportAtOrBeyond(index, n.ElementID, w.progress, forward) {
					candidates = append(candidates, n)
				}
			}
			if len(candidates) == 0 {
				w.terminated = true
				next = append(next, w)
				continue
			}
			if len(candidates) > 1 {
				var above []SegmentSide
				for _, c := range candidates {
					if scores[c.ElementID].Combined >= cfg.ProbabilityThreshold {
						above = append(above, c)
					}
				}
				if len(above) == 0 {
					w.terminated = true
					next = append(next, w)
					continue
				}
				candidates = above
			}
			for _, c := range candidates {
				branch := w.clone()
				s := scores[c.ElementID].Combined
				branch.elements = append(branch.elements, walkElement{ElementID: c.ElementID, EntrySide: c.Side, Score: s})
				branch.lastSide = OppositeSide(c)
				branch.cumulative += s
				branch.progress = advanceProgress(index, c.ElementID, w.progress, forward)
				branch.complete = reachedTarget(branch.progress, targetProgress, forward)
				next = append(next, branch)
			}
		}

		sort.SliceStable(next, func(i, j int) bool { return next[i].cumulative > next[j].cumulative })
		if len(next) > cfg.BeamWidth {
			next = next[:cfg.BeamWidth]
		}
		beam = next
	}

	best := selectBestWalk(beam)
	return walkResult{
		Elements:        best.elements,
		TerminatedEarly: best.terminated && !best.complete,
		CumulativeScore: best.cumulative,
	}
}

func (w partialWalk) clone() partialWalk {
	elements := make([]walkElement, len(w.elements))
	copy(elements, w.elements)
	return partialWalk{
		elements:   elements,
		lastSide:   w.lastSide,
		progress:   w.progress,
		cumulative: w.cumulative,
	}
}

func advanceProgress(index map[string][]int, elementID string, progress int, forward bool) int {
	best := progress
	for _, fi := range index[elementID] {
		if forward && fi >= progress && fi > best {
			best = fi
		}
		if !forward && fi <= progress && (fi < best || best == progress) {
			best = fi
		}
	}
	return best
}

func reachedTarget(progress, target int, forward bool) bool {
	if forward {
		return progress >= target
	}
	return progress <= target
}

func selectBestWalk(beam []partialWalk) partialWalk {
	var best partialWalk
	found := false
	for _, w := range beam {
		if !found {
			best = w
			found = true
			continue
		}
		if w.complete && !best.complete {
			best = w
			continue
		}
		if w.complete == best.complete && w.cumulative > best.cumulative {
			best = w
		}
	}
	return best
}

// entrySideForIntrinsic picks the topology-graph node a walk starts from:
// a fix whose projection lies in the first half of the element enters from
// side 0, otherwise from side 1.
func entrySideForIntrinsic(elementID string, intrinsic float64) SegmentSide {
	if intrinsic < 0.5 {
		return SegmentSide{ElementID: elementID, Side: 0}
	}
	return SegmentSide{ElementID: elementID, Side: 1}
}

// reverseWalkElements reverses a walk's element order and swaps each
// element's entry side, turning a backward-direction walk into the same
// forward-oriented representation a forward walk produces.
func reverseWalkElements(elements []walkElement) []walkElement {
	out := make([]walkElement, len(elements))
	n := len(elements)
	for i, e := range elements {
		out[n-1-i] = walkElement{
			ElementID: e.ElementID,
			EntrySide: 1 - e.EntrySide,
			Score:     e.Score,
		}
	}
	return out
}
