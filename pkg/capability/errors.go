package capability

import "errors"

// Errors returned by the capability package.
var (
	// ErrOutOfRange is returned when a requested capability is not
	// advertised, or when a non-application capability is offered for
	// reconfiguration.
	ErrOutOfRange = errors.New("capability: out of range")
)
