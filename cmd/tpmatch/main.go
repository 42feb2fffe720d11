package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	tplib "github.com/Matdata-eu/tp-lib"
)

var (
	verbose   = flag.Bool("verbose", false, "Print stage timings while matching")
	beamWidth = flag.Int("beam-width", 0, "Override the default beam width (0 keeps the default)")
	threshold = flag.Float64("threshold", 0, "Override the probability threshold (0 keeps the default)")
)

// main runs a tiny built-in demo trace against a tiny built-in two-segment
// network. It exists to exercise the library end to end; reading a real
// network or trace from a file is outside this package's scope.
func main() {
	flag.Parse()
	runID := uuid.New().String()

	network := demoNetwork()
	fixes := demoFixes()

	cfg := tplib.DefaultConfig()
	if *beamWidth > 0 {
		cfg.BeamWidth = *beamWidth
	}
	if *threshold > 0 {
		cfg.ProbabilityThreshold = *threshold
	}

	st := time.Now()
	result, err := tplib.Match(fixes, network, cfg, tplib.WithVerbose(*verbose))
	if err != nil {
		fmt.Println(errors.Wrap(err, "run "+runID))
		return
	}

	fmt.Printf("run %s: matched %d fixes in %v, mode=%s\n", runID, len(result.Fixes), time.Since(st), result.Mode)
	if result.Path != nil {
		fmt.Printf("  path probability=%.4f, %d elements\n", result.Path.Probability, len(result.Path.Elements))
		for _, el := range result.Path.Elements {
			fmt.Printf("    %s [%.2f -> %.2f] fixes %d..%d p=%.3f\n", el.ElementID, el.BeginIntrinsic, el.EndIntrinsic, el.BeginFixIndex, el.EndFixIndex, el.Probability)
		}
	}
	for _, w := range result.Warnings {
		fmt.Println("  warning:", w)
	}
}

// demoNetwork builds a two-segment track meeting end to end, navigable in
// both directions, in WGS84.
func demoNetwork() tplib.Network {
	elements := []tplib.NetElement{
		{
			ID:  "E1",
			CRS: "EPSG:4326",
			Geometry: orb.LineString{
				{13.3888, 52.5170},
				{13.3988, 52.5170},
			},
		},
		{
			ID:  "E2",
			CRS: "EPSG:4326",
			Geometry: orb.LineString{
				{13.3988, 52.5170},
				{13.4088, 52.5170},
			},
		},
	}
	relations := []tplib.NetRelation{
		{
			ID:           "R1",
			ElementA:     "E1",
			ElementB:     "E2",
			PositionOnA:  1,
			PositionOnB:  0,
			Navigability: tplib.NavBoth,
		},
	}
	return tplib.Network{Elements: elements, Relations: relations, CRS: "EPSG:4326"}
}

// demoFixes walks straight along the demo network from E1's start to E2's
// end, five fixes apart.
func demoFixes() []tplib.GnssFix {
	lons := []float64{13.3888, 13.3938, 13.3988, 13.4038, 13.4088}
	base := time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC)
	fixes := make([]tplib.GnssFix, len(lons))
	for i, lon := range lons {
		fixes[i] = tplib.GnssFix{
			Lat:       52.5170,
			Lon:       lon,
			Timestamp: base.Add(time.Duration(i) * 10 * time.Second),
			CRS:       "EPSG:4326",
		}
	}
	return fixes
}
