package tplib

import "fmt"

// validateFixes checks each fix's coordinates and timestamp. A fix whose
// Timestamp is the zero value is rejected as missing a timezone-qualified
// time: Go's time.Time always reports a Location (defaulting to UTC), so
// an accidentally-unset timestamp cannot be distinguished from an
// explicit UTC one by type alone; IsZero is the boundary check instead.
func validateFixes(fixes []GnssFix) error {
	if len(fixes) == 0 {
		return newErr(ErrInvalidCoordinate, "no fixes supplied")
	}
	for i, f := range fixes {
		if f.Timestamp.IsZero() {
			return newErr(ErrMissingTimezone, fmt.Sprintf("fix %d has no timestamp", i))
		}
		if err := structValidator.Struct(f); err != nil {
			return wrapErr(ErrInvalidCoordinate, fmt.Sprintf("fix %d", i), err)
		}
	}
	return nil
}

// validateNetwork checks structural validity of every net element and net
// relation before topology construction begins. It intentionally does not
// reject a relation with an unknown element id, a degenerate self-reference,
// or a position outside {0,1}: BuildTopologyGraph skips those non-fatally
// with a warning instead, per the default validation policy. This pass
// exists to reject the fatal cases early: an empty element set, geometry
// too short to project onto, a net element missing its id or CRS, and a net
// relation whose id or either element id is empty.
func validateNetwork(network Network) error {
	if len(network.Elements) == 0 {
		return newErr(ErrEmptyNetwork, "network has no net elements")
	}
	for _, el := range network.Elements {
		if err := structValidator.Struct(el); err != nil {
			return wrapErr(ErrInvalidGeometry, "net element "+el.ID, err)
		}
		if len(el.Geometry) < 2 {
			return newErr(ErrInvalidGeometry, "net element "+el.ID+" has fewer than two points")
		}
	}
	for _, rel := range network.Relations {
		if err := structValidator.Struct(rel); err != nil {
			return wrapErr(ErrInvalidNetRelation, "net relation "+rel.ID, err)
		}
	}
	return nil
}
