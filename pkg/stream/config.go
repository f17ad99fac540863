package stream

import (
	"context"
	"time"

	"github.com/backkem/avdtp/pkg/capability"
	"github.com/backkem/avdtp/pkg/signaling"
	"github.com/pion/logging"
)

// DefaultReleaseTimeout is how long Release waits for the peer to close the
// transport channel before escalating to Abort.
const DefaultReleaseTimeout = 3 * time.Second

// Channel is the media transport channel bound to an open stream.
// *transport.Channel implements it.
type Channel interface {
	// ReadPacket returns the next inbound packet, or io.EOF once closed.
	ReadPacket(ctx context.Context) ([]byte, error)

	// Write sends p as one packet. Once the channel is closed it fails
	// with an error matching transport.ErrClosed.
	Write(p []byte) (int, error)

	// Closed is closed once the peer has closed the channel.
	Closed() <-chan struct{}

	// Close closes the channel.
	Close() error
}

// UpdateObserver is notified after every state-affecting operation on an
// endpoint. It runs synchronously before the operation returns and must not
// call mutating methods on the endpoint it receives.
type UpdateObserver interface {
	OnStreamUpdate(ep *StreamEndpoint)
}

// UpdateFunc adapts a function to UpdateObserver.
type UpdateFunc func(ep *StreamEndpoint)

// OnStreamUpdate calls f(ep).
func (f UpdateFunc) OnStreamUpdate(ep *StreamEndpoint) {
	f(ep)
}

// EndpointConfig is used to create a new StreamEndpoint.
type EndpointConfig struct {
	// ID is the local stream endpoint identifier. Required.
	ID signaling.StreamEndpointID

	// MediaType is the media type advertised for this endpoint.
	MediaType signaling.MediaType

	// EndpointType is Source or Sink.
	EndpointType signaling.EndpointType

	// Capabilities is the advertised capability set. Configure only accepts
	// capabilities whose category appears here.
	Capabilities []capability.Capability

	// ReleaseTimeout bounds the wait for the peer to close the transport
	// channel after a Release.
	// Default: DefaultReleaseTimeout
	ReleaseTimeout time.Duration

	// Observer is notified after every mutation. Optional.
	Observer UpdateObserver

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}
