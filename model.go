package tplib

import (
	"time"

	"github.com/paulmach/orb"
)

// GnssFix is a single timestamped position report from a train's GNSS
// receiver, optionally enriched with heading and odometer distance.
type GnssFix struct {
	Lat       float64           `validate:"gte=-90,lte=90"`
	Lon       float64           `validate:"gte=-180,lte=180"`
	Timestamp time.Time         `validate:"required"`
	CRS       string            `validate:"required"`
	Heading   *float64          `validate:"omitempty,gte=0,lt=360"`
	Distance  *float64          `validate:"omitempty,gte=0"`
	Metadata  map[string]string `validate:"-"`
}

// Point returns the fix's position as an orb.Point (lon, lat order).
func (f GnssFix) Point() orb.Point {
	return orb.Point{f.Lon, f.Lat}
}

// Navigability describes which directions traffic may cross a NetRelation.
type Navigability uint8

const (
	NavBoth = Navigability(iota + 1)
	NavAB
	NavBA
	NavNone
)

func (n Navigability) String() string {
	return [...]string{"unknown", "both", "ab", "ba", "none"}[n]
}

// NetElement is one directed track segment of the rail network, carrying
// its own linear geometry in its own declared CRS.
type NetElement struct {
	ID       string `validate:"required"`
	Geometry orb.LineString
	CRS      string `validate:"required"`
}

// NetRelation declares whether trains may cross between two netelements at
// the given end positions (0 = element's first point, 1 = element's last
// point).
type NetRelation struct {
	ID           string `validate:"required"`
	ElementA     string `validate:"required"`
	ElementB     string `validate:"required"`
	PositionOnA  uint8
	PositionOnB  uint8
	Navigability Navigability
}

// SegmentSide identifies one of the two synthetic topology-graph nodes a
// netelement contributes: side 0 is the element's first point, side 1 its
// last point.
type SegmentSide struct {
	ElementID string
	Side      uint8
}

// Network bundles the parsed, already-validated rail topology Match
// operates over.
type Network struct {
	Elements  []NetElement
	Relations []NetRelation
	CRS       string `validate:"required"`
}

// candidateLink is a transient per-fix, per-element scored projection used
// only while constructing a path; it never escapes the package boundary.
type candidateLink struct {
	ElementID             string
	FixIndex              int
	Intrinsic             float64
	PerpendicularDistance float64
	Heading               *float64
}

// AssociatedElement is one netelement span of a matched TrainPath, carrying
// the intrinsic-coordinate window and fix-index range it covers.
type AssociatedElement struct {
	ElementID      string
	BeginIntrinsic float64
	EndIntrinsic   float64
	Probability    float64
	BeginFixIndex  int
	EndFixIndex    int
}

// CalculationMode records whether a TrainPath came from topology-constrained
// construction or from independent per-fix fallback projection.
type CalculationMode uint8

const (
	ModeTopology = CalculationMode(iota + 1)
	ModeFallbackIndependent
)

func (m CalculationMode) String() string {
	return [...]string{"unknown", "topology", "fallback-independent"}[m]
}

// PathMetadata carries diagnostic information about how a TrainPath was
// built, useful for debugging a match without re-running it.
type PathMetadata struct {
	ForwardProbability  float64
	BackwardProbability float64
	CandidateCount      int
	Resampled           bool
}

// TrainPath is the selected sequence of netelement spans a GNSS trace was
// matched onto.
type TrainPath struct {
	Elements    []AssociatedElement
	Probability float64
	Mode        CalculationMode
	Metadata    PathMetadata
}

// ProjectedFix is one GNSS fix re-projected onto its matched TrainPath (or,
// in fallback mode, onto its own nearest netelement).
type ProjectedFix struct {
	Original              GnssFix
	Point                 orb.Point
	ElementID             string
	Measure               float64
	PerpendicularDistance float64
	CRS                   string
	Intrinsic             float64
}

// PathResult is the outcome of a Match call: the selected path (nil in
// fallback mode), the per-fix projections, and any accumulated warnings.
type PathResult struct {
	Path     *TrainPath
	Mode     CalculationMode
	Fixes    []ProjectedFix
	Warnings []string
}
