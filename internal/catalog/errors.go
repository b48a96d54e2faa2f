package catalog

import "errors"

var (
	// ErrInvalidCatalog is returned when a catalog breaks one of its invariants:
	// it must be non-empty and every record needs a name, a confidence within
	// 0..100, at least one treatment step and a known status.
	ErrInvalidCatalog = errors.New("invalid catalog")

	// ErrCatalogNotFound is returned by LoadFile when the file does not exist.
	ErrCatalogNotFound = errors.New("catalog file not found")

	// ErrUnknownCondition is returned when a name matches no catalog record.
	ErrUnknownCondition = errors.New("unknown condition")
)
