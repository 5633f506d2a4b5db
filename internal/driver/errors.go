package driver

import "errors"

// Domain errors for the driver package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, driver.ErrDriverExists) {
//	    // handle duplicate case
//	}
var (
	// ErrMalformedEntry is returned when an add input does not match the
	// expected KEY NAME... PLATE shape.
	ErrMalformedEntry = errors.New("driver: malformed entry, expected KEY NAME... PLATE")

	// ErrDriverExists is returned when adding a key that is already
	// registered, active or closed. The existing record is returned
	// alongside so callers can show it.
	ErrDriverExists = errors.New("driver: already exists")

	// ErrDriverNotFound is returned when a key is not in the active set.
	ErrDriverNotFound = errors.New("driver: not found")

	// ErrInvalidQueryLength is returned when a search query is neither a
	// plate (7 characters) nor an LH key (13 characters).
	ErrInvalidQueryLength = errors.New("driver: invalid query, expected a plate (7 characters) or an LH (13 characters)")
)
