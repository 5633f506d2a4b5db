package ownership

import "errors"

// Domain errors for the ownership package.
var (
	// ErrAlreadyAuthenticated is returned when an operator logs in twice.
	ErrAlreadyAuthenticated = errors.New("ownership: operator already authenticated")
)
