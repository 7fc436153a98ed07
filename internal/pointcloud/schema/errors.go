package schema

import "errors"

var (
	// ErrUnknownAttribute is returned when a field key or name has no
	// descriptor in the catalog.
	ErrUnknownAttribute = errors.New("unknown point attribute")

	// ErrInvalidVersion is returned for version strings that are not
	// "<major>[.<minor>]" with non-negative integer parts.
	ErrInvalidVersion = errors.New("invalid schema version")
)
