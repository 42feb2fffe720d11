package tplib

import (
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

func fixAt(lon, lat float64, t time.Time) GnssFix {
	return GnssFix{Lat: lat, Lon: lon, Timestamp: t, CRS: "EPSG:4326"}
}

func baseTime() time.Time {
	return time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC)
}

// Scenario: straight segment. A trace running along a single netelement
// matches it end to end with every original fix re-projected.
func TestScenarioStraightSegment(t *testing.T) {
	network := Network{
		CRS: "EPSG:4326",
		Elements: []NetElement{
			{ID: "E1", CRS: "EPSG:4326", Geometry: orb.LineString{{0, 0}, {0.01, 0}}},
			{ID: "SPUR", CRS: "EPSG:4326", Geometry: orb.LineString{{5, 5}, {5.01, 5}}},
		},
		Relations: []NetRelation{
			{ID: "R1", ElementA: "E1", ElementB: "SPUR", PositionOnA: 1, PositionOnB: 0, Navigability: NavNone},
		},
	}
	fixes := []GnssFix{
		fixAt(0, 0, baseTime()),
		fixAt(0.0025, 0, baseTime().Add(10*time.Second)),
		fixAt(0.005, 0, baseTime().Add(20*time.Second)),
		fixAt(0.01, 0, baseTime().Add(30*time.Second)),
	}

	result, err := Match(fixes, network, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, ModeTopology, result.Mode)
	require.Len(t, result.Fixes, len(fixes))
	require.NotNil(t, result.Path)
	require.Len(t, result.Path.Elements, 1)
	require.Equal(t, "E1", result.Path.Elements[0].ElementID)
}

// Scenario: fallback on topology gap. Two netelements separated by a real
// gap, declared non-navigable between each other, cannot support a
// continuous walk across both; Match degrades to independent projection
// rather than failing outright.
func TestScenarioFallbackOnTopologyGap(t *testing.T) {
	network := Network{
		CRS: "EPSG:4326",
		Elements: []NetElement{
			{ID: "E1", CRS: "EPSG:4326", Geometry: orb.LineString{{0, 0}, {0.01, 0}}},
			{ID: "E2", CRS: "EPSG:4326", Geometry: orb.LineString{{0.02, 0}, {0.03, 0}}},
		},
		Relations: []NetRelation{
			{ID: "R1", ElementA: "E1", ElementB: "E2", PositionOnA: 1, PositionOnB: 0, Navigability: NavNone},
		},
	}
	fixes := []GnssFix{
		fixAt(0, 0, baseTime()),
		fixAt(0.01, 0, baseTime().Add(10*time.Second)),
		fixAt(0.02, 0, baseTime().Add(20*time.Second)),
		fixAt(0.03, 0, baseTime().Add(30*time.Second)),
	}

	result, err := Match(fixes, network, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, ModeFallbackIndependent, result.Mode)
	require.Nil(t, result.Path)
	require.Len(t, result.Fixes, len(fixes))
	require.NotEmpty(t, result.Warnings)
}

// Scenario: invalid relation skipped. A relation referencing an unknown
// element id is dropped with a warning, not a fatal error, and matching
// otherwise proceeds normally.
func TestScenarioInvalidNetRelationSkipped(t *testing.T) {
	network := Network{
		CRS: "EPSG:4326",
		Elements: []NetElement{
			{ID: "E1", CRS: "EPSG:4326", Geometry: orb.LineString{{0, 0}, {0.01, 0}}},
		},
		Relations: []NetRelation{
			{ID: "R1", ElementA: "E1", ElementB: "GHOST", PositionOnA: 1, PositionOnB: 0, Navigability: NavBoth},
		},
	}
	fixes := []GnssFix{
		fixAt(0, 0, baseTime()),
		fixAt(0.01, 0, baseTime().Add(10*time.Second)),
	}

	result, err := Match(fixes, network, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, ModeTopology, result.Mode)
	require.NotEmpty(t, result.Warnings)
}

// Scenario: resampling preserves cardinality. Even when construction walks
// a resampled subset of fixes, the final result re-projects every original
// fix.
func TestScenarioResamplingPreservesCardinality(t *testing.T) {
	network := Network{
		CRS: "EPSG:4326",
		Elements: []NetElement{
			{ID: "E1", CRS: "EPSG:4326", Geometry: orb.LineString{{0, 0}, {0.05, 0}}},
		},
		Relations: []NetRelation{
			{ID: "R1", ElementA: "E1", ElementB: "E1", PositionOnA: 0, PositionOnB: 1, Navigability: NavBoth},
		},
	}
	n := 20
	fixes := make([]GnssFix, n)
	for i := 0; i < n; i++ {
		lon := 0.05 * float64(i) / float64(n-1)
		fixes[i] = fixAt(lon, 0, baseTime().Add(time.Duration(i)*time.Second))
	}
	cfg := DefaultConfig()
	resampling := 1000.0
	cfg.ResamplingDistance = &resampling

	result, err := Match(fixes, network, cfg)
	require.NoError(t, err)
	require.Len(t, result.Fixes, n)
	if result.Path != nil {
		require.True(t, result.Path.Metadata.Resampled)
	}
}

// Scenario: no navigable path at all yields fallback, not an error.
func TestScenarioNoNetRelationsFallsBack(t *testing.T) {
	network := Network{
		CRS: "EPSG:4326",
		Elements: []NetElement{
			{ID: "E1", CRS: "EPSG:4326", Geometry: orb.LineString{{0, 0}, {0.01, 0}}},
		},
		Relations: nil,
	}
	fixes := []GnssFix{
		fixAt(0, 0, baseTime()),
		fixAt(0.01, 0, baseTime().Add(10*time.Second)),
	}

	result, err := Match(fixes, network, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, ModeFallbackIndependent, result.Mode)
}

// Scenario: a relation with a position outside {0,1} is skipped with a
// warning, not rejected as a fatal input error, matching the default
// validation policy for malformed net relations.
func TestScenarioOutOfRangePositionSkipped(t *testing.T) {
	network := Network{
		CRS: "EPSG:4326",
		Elements: []NetElement{
			{ID: "E1", CRS: "EPSG:4326", Geometry: orb.LineString{{0, 0}, {0.01, 0}}},
		},
		Relations: []NetRelation{
			{ID: "R1", ElementA: "E1", ElementB: "E1", PositionOnA: 0, PositionOnB: 9, Navigability: NavBoth},
		},
	}
	fixes := []GnssFix{
		fixAt(0, 0, baseTime()),
		fixAt(0.01, 0, baseTime().Add(10*time.Second)),
	}

	result, err := Match(fixes, network, DefaultConfig())
	require.NoError(t, err)
	require.NotEmpty(t, result.Warnings)
}

func TestMatchRejectsEmptyNetwork(t *testing.T) {
	_, err := Match([]GnssFix{fixAt(0, 0, baseTime())}, Network{CRS: "EPSG:4326"}, DefaultConfig())
	require.Error(t, err)
	require.True(t, IsKind(err, ErrEmptyNetwork))
}

// Scenario: Y-junction selection. A trace arriving at a junction continues
// down one of two diverging branches. The other branch also gathers
// candidates from the fixes near the junction, but its short coverage keeps
// its score below the default probability threshold, so only the followed
// branch is admitted as the next element.
func TestScenarioYJunctionSelection(t *testing.T) {
	network := Network{
		CRS: "PROJ",
		Elements: []NetElement{
			{ID: "TRUNK", CRS: "PROJ", Geometry: orb.LineString{{0, 0}, {100, 0}}},
			{ID: "BRANCH_A", CRS: "PROJ", Geometry: orb.LineString{{100, 0}, {200, 0}}},
			{ID: "BRANCH_B", CRS: "PROJ", Geometry: orb.LineString{{100, 0}, {100, 100}}},
		},
		Relations: []NetRelation{
			{ID: "R1", ElementA: "TRUNK", ElementB: "BRANCH_A", PositionOnA: 1, PositionOnB: 0, Navigability: NavBoth},
			{ID: "R2", ElementA: "TRUNK", ElementB: "BRANCH_B", PositionOnA: 1, PositionOnB: 0, Navigability: NavBoth},
		},
	}
	fixes := []GnssFix{
		{Lat: 0, Lon: 0, CRS: "PROJ", Timestamp: baseTime()},
		{Lat: 0, Lon: 60, CRS: "PROJ", Timestamp: baseTime().Add(10 * time.Second)},
		{Lat: 0, Lon: 100, CRS: "PROJ", Timestamp: baseTime().Add(20 * time.Second)},
		{Lat: 0, Lon: 160, CRS: "PROJ", Timestamp: baseTime().Add(30 * time.Second)},
	}
	// NOTE: GnssFix.Lat/Lon feed Point() as (Lon, Lat); for a "PROJ" CRS
	// these are just the planar x/y coordinates, not real lon/lat degrees.

	result, err := Match(fixes, network, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, ModeTopology, result.Mode)
	require.NotNil(t, result.Path)
	ids := make([]string, len(result.Path.Elements))
	for i, e := range result.Path.Elements {
		ids[i] = e.ElementID
	}
	require.Contains(t, ids, "TRUNK")
	require.Contains(t, ids, "BRANCH_A")
	require.NotContains(t, ids, "BRANCH_B")
}

// Scenario: heading disambiguates diverging tracks. Two netelements leave a
// shared origin 45 degrees apart and every fix lies closer to VERTICAL;
// only heading, not distance alone, makes VERTICAL implausible.
func TestScenarioHeadingDisambiguatesDivergingTracks(t *testing.T) {
	heading := 45.0
	network := Network{
		CRS: "PROJ",
		Elements: []NetElement{
			{ID: "DIAGONAL", CRS: "PROJ", Geometry: orb.LineString{{0, 0}, {100, 100}}},
			{ID: "VERTICAL", CRS: "PROJ", Geometry: orb.LineString{{0, 0}, {0, 100}}},
		},
		Relations: []NetRelation{
			{ID: "R1", ElementA: "DIAGONAL", ElementB: "DIAGONAL", PositionOnA: 0, PositionOnB: 1, Navigability: NavBoth},
		},
	}
	fixes := []GnssFix{
		{Lat: 12, Lon: 2, CRS: "PROJ", Timestamp: baseTime(), Heading: &heading},
		{Lat: 30, Lon: 5, CRS: "PROJ", Timestamp: baseTime().Add(10 * time.Second), Heading: &heading},
	}

	result, err := Match(fixes, network, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, ModeTopology, result.Mode)
	require.NotNil(t, result.Path)
	for _, f := range result.Fixes {
		require.Equal(t, "DIAGONAL", f.ElementID)
	}
}

func TestMatchRejectsMissingTimestamp(t *testing.T) {
	network := Network{
		CRS: "EPSG:4326",
		Elements: []NetElement{
			{ID: "E1", CRS: "EPSG:4326", Geometry: orb.LineString{{0, 0}, {0.01, 0}}},
		},
		Relations: []NetRelation{
			{ID: "R1", ElementA: "E1", ElementB: "E1", PositionOnA: 0, PositionOnB: 1, Navigability: NavBoth},
		},
	}
	fixes := []GnssFix{{Lat: 0, Lon: 0, CRS: "EPSG:4326"}}
	_, err := Match(fixes, network, DefaultConfig())
	require.Error(t, err)
	require.True(t, IsKind(err, ErrMissingTimezone))
}
