package signaling

import "context"

// Peer is the signaling connection to the remote device.
type Peer interface {
	// Abort sends an Abort command for the remote stream endpoint and blocks
	// until the peer replies, the command times out or ctx is done.
	Abort(ctx context.Context, remote StreamEndpointID) error
}

// Responder answers exactly one pending signaling request.
// Implementations should treat any call after the first as a no-op error.
type Responder interface {
	// Send replies with an empty accept response.
	Send() error

	// Reject replies with a reject response carrying code.
	Reject(code ErrorCode) error
}
