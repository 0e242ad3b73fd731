package filter

import "errors"

var (
	// ErrFieldNotFound is returned when a field, or the relationship segment
	// of a dotted field, does not exist on the resolved model.
	ErrFieldNotFound = errors.New("field not found")
	// ErrBadQuery is returned when the query holds no models.
	ErrBadQuery = errors.New("bad query")
	// ErrBadSpec is returned when a filter names a model missing from the
	// query, or when a filter is ambiguous.
	ErrBadSpec = errors.New("bad filter spec")
)
