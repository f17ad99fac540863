package signaling

import "errors"

// Errors returned by the signaling package.
var (
	// ErrInvalidID is returned when a stream endpoint identifier is outside
	// the range [MinStreamEndpointID, MaxStreamEndpointID].
	ErrInvalidID = errors.New("signaling: invalid stream endpoint id")
)
