package tplib

import "github.com/pkg/errors"

// ErrorKind classifies the failure modes a Match call can report.
type ErrorKind uint16

const (
	ErrInvalidCoordinate = ErrorKind(iota + 1)
	ErrMissingTimezone
	ErrInvalidCrs
	ErrTransformFailed
	ErrEmptyNetwork
	ErrNoNetRelations
	ErrInvalidNetRelation
	ErrInvalidGeometry
	ErrNoNavigablePath
	ErrBelowProbabilityThreshold
	ErrPathCalculationFailed
)

func (k ErrorKind) String() string {
	return [...]string{
		"unknown",
		"invalid coordinate",
		"missing timezone",
		"invalid crs",
		"transform failed",
		"empty network",
		"no net relations",
		"invalid net relation",
		"invalid geometry",
		"no navigable path",
		"below probability threshold",
		"path calculation failed",
	}[k]
}

// ProjectionError is the typed error every fatal failure in this package
// surfaces as. Non-fatal conditions are never returned to the caller as an
// error; they are formatted into PathResult.Warnings instead (see
// warnings.go).
type ProjectionError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *ProjectionError) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Msg + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Msg
}

func (e *ProjectionError) Unwrap() error {
	return e.Err
}

func newErr(kind ErrorKind, msg string) error {
	return &ProjectionError{Kind: kind, Msg: msg}
}

func wrapErr(kind ErrorKind, msg string, cause error) error {
	return &ProjectionError{Kind: kind, Msg: msg, Err: errors.Wrap(cause, msg)}
}

// IsKind reports whether err is a *ProjectionError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	pe, ok := err.(*ProjectionError)
	if !ok {
		return false
	}
	return pe.Kind == kind
}
