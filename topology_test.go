package tplib

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

func twoElementNetwork() []NetElement {
	return []NetElement{
		{ID: "E1", CRS: "EPSG:4326", Geometry: orb.LineString{{0, 0}, {1, 0}}},
		{ID: "E2", CRS: "EPSG:4326", Geometry: orb.LineString{{1, 0}, {2, 0}}},
	}
}

func TestBuildTopologyGraphInternalEdges(t *testing.T) {
	g, warnings, err := BuildTopologyGraph(twoElementNetwork(), []NetRelation{
		{ID: "R1", ElementA: "E1", ElementB: "E2", PositionOnA: 1, PositionOnB: 0, Navigability: NavBoth},
	})
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.True(t, g.Connected(SegmentSide{ElementID: "E1", Side: 0}, SegmentSide{ElementID: "E1", Side: 1}))
	require.True(t, g.Connected(SegmentSide{ElementID: "E1", Side: 1}, SegmentSide{ElementID: "E2", Side: 0}))
	require.True(t, g.Connected(SegmentSide{ElementID: "E2", Side: 0}, SegmentSide{ElementID: "E1", Side: 1}))
}

func TestBuildTopologyGraphDirectionalNavigability(t *testing.T) {
	g, _, err := BuildTopologyGraph(twoElementNetwork(), []NetRelation{
		{ID: "R1", ElementA: "E1", ElementB: "E2", PositionOnA: 1, PositionOnB: 0, Navigability: NavAB},
	})
	require.NoError(t, err)
	require.True(t, g.Connected(SegmentSide{ElementID: "E1", Side: 1}, SegmentSide{ElementID: "E2", Side: 0}))
	require.False(t, g.Connected(SegmentSide{ElementID: "E2", Side: 0}, SegmentSide{ElementID: "E1", Side: 1}))
}

func TestBuildTopologyGraphSkipsInvalidRelationAsWarning(t *testing.T) {
	g, warnings, err := BuildTopologyGraph(twoElementNetwork(), []NetRelation{
		{ID: "R1", ElementA: "E1", ElementB: "unknown", PositionOnA: 1, PositionOnB: 0, Navigability: NavBoth},
	})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.NotNil(t, g)
}

func TestBuildTopologyGraphSkipsOutOfRangePositionAsWarning(t *testing.T) {
	g, warnings, err := BuildTopologyGraph(twoElementNetwork(), []NetRelation{
		{ID: "R1", ElementA: "E1", ElementB: "E2", PositionOnA: 7, PositionOnB: 0, Navigability: NavBoth},
	})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.NotNil(t, g)
	require.False(t, g.Connected(SegmentSide{ElementID: "E1", Side: 1}, SegmentSide{ElementID: "E2", Side: 0}))
}

func TestBuildTopologyGraphNoRelationsIsFatal(t *testing.T) {
	_, _, err := BuildTopologyGraph(twoElementNetwork(), nil)
	require.Error(t, err)
	require.True(t, IsKind(err, ErrNoNetRelations))
}

func TestBuildTopologyGraphEmptyNetworkIsFatal(t *testing.T) {
	_, _, err := BuildTopologyGraph(nil, nil)
	require.Error(t, err)
	require.True(t, IsKind(err, ErrEmptyNetwork))
}
