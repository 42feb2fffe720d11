package tplib

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistanceProbabilityMonotonicallyDecreasing(t *testing.T) {
	near := distanceProbability(1, 10)
	far := distanceProbability(20, 10)
	require.Greater(t, near, far)
	require.Equal(t, 1.0, distanceProbability(0, 10))
}

func TestHeadingProbabilityNoHeadingIsNeutral(t *testing.T) {
	require.Equal(t, 1.0, headingProbability(nil, 90, 2, 5))
}

func TestHeadingProbabilityBeyondCutoffIsZero(t *testing.T) {
	heading := 100.0
	require.Equal(t, 0.0, headingProbability(&heading, 0, 2, 5))
}

func TestHeadingProbabilityWithinCutoffDecaysWithDelta(t *testing.T) {
	fixHeading := 92.0
	close := headingProbability(&fixHeading, 90, 2, 5)
	fixHeading2 := 94.0
	far := headingProbability(&fixHeading2, 90, 2, 5)
	require.Greater(t, close, far)
}

func TestHeadingProbabilityToleratesOppositeTravelDirection(t *testing.T) {
	fixHeading := 270.0
	require.Equal(t, 1.0, headingProbability(&fixHeading, 90, 2, 5))
	oppositeHeading := 90.0
	require.Equal(t,
		headingProbability(&fixHeading, 270, 2, 5),
		headingProbability(&oppositeHeading, 90, 2, 5),
	)
}

func TestLinkProbabilityCombinesDistanceAndHeading(t *testing.T) {
	heading := 90.0
	link := candidateLink{PerpendicularDistance: 0, Heading: &heading}
	cfg := DefaultConfig()
	got := linkProbability(&heading, link, cfg)
	require.Equal(t, 1.0, round(got, 6))
}
