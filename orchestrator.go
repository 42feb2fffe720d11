package tplib

import (
	"log"
	"time"

	"github.com/paulmach/orb"
)

// matchOptions holds the optional knobs Match accepts beyond the required
// fixes/network/config triple, set via functional options.
type matchOptions struct {
	verbose bool
}

// MatchOption configures an optional aspect of a Match call.
type MatchOption func(*matchOptions)

// WithVerbose turns on stage-by-stage timing logs, in the same spirit as a
// CLI tool's -verbose flag: useful while tuning Config against a batch of
// real traces, noisy otherwise.
func WithVerbose(v bool) MatchOption {
	return func(o *matchOptions) { o.verbose = v }
}

// Match projects an ordered GNSS trace onto network, returning the matched
// path and every fix's linear-reference projection. It never returns an
// error for a trace it can fall back on: fallback to independent per-fix
// projection is itself a successful, if degraded, outcome, flagged via
// PathResult.Mode and PathResult.Warnings. Match returns an error only for
// input that cannot be processed at all (empty network, invalid
// coordinates, unknown CRS, and similar fatal conditions).
func Match(fixes []GnssFix, network Network, cfg Config, opts ...MatchOption) (PathResult, error) {
	options := matchOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	trace := func(stage string, start time.Time) {
		if options.verbose {
			log.Printf("tplib: %s done in %v", stage, time.Since(start))
		}
	}

	if err := cfg.Validate(); err != nil {
		return PathResult{}, err
	}
	st := time.Now()
	if err := validateFixes(fixes); err != nil {
		return PathResult{}, err
	}
	if err := validateNetwork(network); err != nil {
		return PathResult{}, err
	}
	trace("validate", st)

	strat := strategyFor(network.CRS)
	_, geographic := strat.(geographicStrategy)

	st = time.Now()
	transformer := NewTransformer()
	pointsInCRS := make([]orb.Point, len(fixes))
	for i, f := range fixes {
		pt, err := transformer.Transform(f.Point(), f.CRS, network.CRS)
		if err != nil {
			return PathResult{}, err
		}
		pointsInCRS[i] = pt
	}
	trace("transform", st)

	idx, err := NewSpatialIndex(network.Elements, strat, geographic)
	if err != nil {
		return PathResult{}, err
	}

	warnings := &warningCollector{}
	graph, topoWarnings, graphErr := BuildTopologyGraph(network.Elements, network.Relations)
	if graphErr != nil && !IsKind(graphErr, ErrNoNetRelations) {
		return PathResult{}, graphErr
	}
	warnings.addAll(topoWarnings)

	if graphErr != nil {
		warnings.add("falling back to independent projection: %v", graphErr)
		return fallback(strat, idx, fixes, pointsInCRS, cfg, network.CRS, warnings), nil
	}

	st = time.Now()
	indices := resampleIndices(strat, fixes, pointsInCRS, cfg.ResamplingDistance)
	resampled := len(indices) != len(fixes)
	workingFixes := make([]GnssFix, len(indices))
	workingPoints := make([]orb.Point, len(indices))
	for i, fi := range indices {
		workingFixes[i] = fixes[fi]
		workingPoints[i] = pointsInCRS[fi]
	}
	trace("resample", st)

	st = time.Now()
	candidates := make([]fixCandidates, len(workingFixes))
	headings := make([]*float64, len(workingFixes))
	for i := range workingFixes {
		candidates[i] = buildCandidates(strat, idx, graph, i, workingPoints[i], workingFixes[i].Distance, cfg)
		headings[i] = workingFixes[i].Heading
	}
	trace("candidates", st)

	candidateCount := 0
	for _, c := range candidates {
		candidateCount += len(c.Links)
	}
	if len(candidates[0].Links) == 0 && len(candidates[len(candidates)-1].Links) == 0 {
		warnings.add("no navigable path: neither first nor last fix has a candidate net element")
		return fallback(strat, idx, fixes, pointsInCRS, cfg, network.CRS, warnings), nil
	}

	st = time.Now()
	scores := scoreElements(strat, graph, candidates, headings, cfg)
	trace("probabilities", st)

	st = time.Now()
	forwardResult := startWalk(graph, scores, candidates, true, cfg)
	backwardResult := startWalk(graph, scores, candidates, false, cfg)
	trace("constructing", st)

	st = time.Now()
	path, selectErr := selectPath(strat, graph, scores, forwardResult, backwardResult, candidateCount)
	trace("selecting", st)
	if selectErr != nil {
		warnings.add("falling back to independent projection: %v", selectErr)
		return fallback(strat, idx, fixes, pointsInCRS, cfg, network.CRS, warnings), nil
	}
	path.Metadata.Resampled = resampled

	st = time.Now()
	projected := projectFixesOntoPath(strat, graph, &path, fixes, pointsInCRS, network.CRS)
	trace("projecting", st)

	return PathResult{
		Path:     &path,
		Mode:     ModeTopology,
		Fixes:    projected,
		Warnings: warnings.messages,
	}, nil
}

// startWalk builds one direction's walk from the best candidate of the
// sequence's first (forward) or last (backward) working fix. It returns
// an already-terminated walkResult when that fix has no candidates at all,
// so the caller can uniformly hand both directions to selectPath.
func startWalk(graph *Graph, scores map[string]elementScore, candidates []fixCandidates, forward bool, cfg Config) walkResult {
	var start fixCandidates
	var startProgress int
	if forward {
		start = candidates[0]
		startProgress = 0
	} else {
		start = candidates[len(candidates)-1]
		startProgress = len(candidates) - 1
	}
	if len(start.Links) == 0 {
		return walkResult{TerminatedEarly: true}
	}

	best := start.Links[0]
	for _, l := range start.Links[1:] {
		if scores[l.ElementID].Combined > scores[best.ElementID].Combined {
			best = l
		}
	}
	startSide := entrySideForIntrinsic(best.ElementID, best.Intrinsic)
	return constructWalk(graph, scores, candidates, startSide, startProgress, forward, cfg)
}

// fallback runs independent per-fix projection, ignoring topology and the
// probability threshold entirely, and always returns a successful
// PathResult in fallback mode.
func fallback(strat geometryStrategy, idx *SpatialIndex, fixes []GnssFix, pointsInCRS []orb.Point, cfg Config, networkCRS string, warnings *warningCollector) PathResult {
	projected := projectFixesIndependently(strat, idx, fixes, pointsInCRS, cfg.CutoffDistance, networkCRS)
	return PathResult{
		Path:     nil,
		Mode:     ModeFallbackIndependent,
		Fixes:    projected,
		Warnings: warnings.messages,
	}
}
