// Package stream implements the lifecycle of a single AVDTP stream endpoint.
//
// A StreamEndpoint walks the AVDTP stream state machine:
//
//	Idle --Configure--> Configured --Establish--> Opening --ReceiveChannel--> Open --Start--> Streaming
//	Streaming --Suspend--> Open
//	Open/Streaming --Release--> Closing --(peer closes in time)--> Idle
//	Closing --(timeout)--> Aborting --(peer acks)--> Idle
//	(any state) --Abort--> Idle
//
// Once open, the media transport channel can be handed to one consumer at a
// time through TakeTransport. The returned MediaStream does not keep the
// channel alive: when the endpoint returns to Idle or is closed, reads on the
// stream report io.EOF and writes fail with ErrConnectionAborted.
//
// A StreamEndpoint is not safe for concurrent use. Callers sharing one across
// goroutines must serialize access themselves. A MediaStream may be used from
// a different goroutine than its endpoint.
//
// AVDTP references:
//   - Section 9.1: Stream End Point state machine
//   - Section 8.10-8.16: Open, Start, Close, Suspend, Reconfigure, Abort
package stream

// StreamState is the AVDTP state of a stream endpoint.
type StreamState int

const (
	// StreamStateIdle is the initial state. No configuration is held.
	StreamStateIdle StreamState = iota

	// StreamStateConfigured means a configuration was accepted for a remote endpoint.
	StreamStateConfigured

	// StreamStateOpening means the open procedure started and the transport
	// channel is awaited.
	StreamStateOpening

	// StreamStateOpen means the transport channel is bound; media is not flowing.
	StreamStateOpen

	// StreamStateStreaming means media is flowing on the transport channel.
	StreamStateStreaming

	// StreamStateClosing means a release was accepted and the peer is
	// expected to close the transport channel.
	StreamStateClosing

	// StreamStateAborting means an Abort was sent and the reply is awaited.
	StreamStateAborting
)

// String returns a human-readable name for the state.
func (s StreamState) String() string {
	switch s {
	case StreamStateIdle:
		return "Idle"
	case StreamStateConfigured:
		return "Configured"
	case StreamStateOpening:
		return "Opening"
	case StreamStateOpen:
		return "Open"
	case StreamStateStreaming:
		return "Streaming"
	case StreamStateClosing:
		return "Closing"
	case StreamStateAborting:
		return "Aborting"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the state is a defined value.
func (s StreamState) IsValid() bool {
	return s >= StreamStateIdle && s <= StreamStateAborting
}

// HasConfiguration returns true if a configuration can be read in this state.
func (s StreamState) HasConfiguration() bool {
	switch s {
	case StreamStateConfigured, StreamStateOpening, StreamStateOpen, StreamStateStreaming:
		return true
	default:
		return false
	}
}

// CanRelease returns true if a Release request is accepted in this state.
func (s StreamState) CanRelease() bool {
	return s == StreamStateOpen || s == StreamStateStreaming
}
