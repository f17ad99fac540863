package stream

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/backkem/avdtp/pkg/capability"
	"github.com/backkem/avdtp/pkg/signaling"
	"github.com/pion/logging"
)

// StreamEndpoint is one local AVDTP stream endpoint.
type StreamEndpoint struct {
	config EndpointConfig

	id             signaling.StreamEndpointID
	mediaType      signaling.MediaType
	endpointType   signaling.EndpointType
	capabilities   []capability.Capability
	categories     []capability.Category
	releaseTimeout time.Duration
	observer       UpdateObserver
	log            logging.LeveledLogger

	state         StreamState
	configuration []capability.Capability

	// remoteID is meaningful only while hasRemote is set.
	remoteID  signaling.StreamEndpointID
	hasRemote bool

	// binding holds the transport channel. It outlives individual channels
	// so that MediaStreams can detect when theirs is gone.
	binding *channelBinding

	// inUse is the exclusivity flag shared with the live MediaStream.
	// A fresh flag is created for every bound channel.
	inUse *atomic.Bool
}

// NewStreamEndpoint creates an Idle stream endpoint.
func NewStreamEndpoint(config EndpointConfig) (*StreamEndpoint, error) {
	if !config.ID.IsValid() {
		return nil, fmt.Errorf("%w: 0x%02x", signaling.ErrInvalidID, uint8(config.ID))
	}
	if !config.MediaType.IsValid() {
		return nil, fmt.Errorf("%w: media type %d", ErrInvalidConfig, config.MediaType)
	}
	if !config.EndpointType.IsValid() {
		return nil, fmt.Errorf("%w: endpoint type %d", ErrInvalidConfig, config.EndpointType)
	}
	if config.ReleaseTimeout <= 0 {
		config.ReleaseTimeout = DefaultReleaseTimeout
	}
	config.Capabilities = capability.Clone(config.Capabilities)

	e := &StreamEndpoint{
		config:         config,
		id:             config.ID,
		mediaType:      config.MediaType,
		endpointType:   config.EndpointType,
		capabilities:   config.Capabilities,
		categories:     capability.Categories(config.Capabilities),
		releaseTimeout: config.ReleaseTimeout,
		observer:       config.Observer,
		state:          StreamStateIdle,
		binding:        &channelBinding{},
	}

	if config.LoggerFactory != nil {
		e.log = config.LoggerFactory.NewLogger("avdtp-stream")
	}

	return e, nil
}

// AsNew returns a fresh Idle endpoint with the same identity, advertised
// capabilities, observer and settings as e.
func (e *StreamEndpoint) AsNew() *StreamEndpoint {
	// The stored config already passed validation.
	n, _ := NewStreamEndpoint(e.config)
	n.observer = e.observer
	return n
}

// SetObserver replaces the update observer. A nil observer disables notifications.
func (e *StreamEndpoint) SetObserver(o UpdateObserver) {
	e.observer = o
}

// LocalID returns the local stream endpoint identifier.
func (e *StreamEndpoint) LocalID() signaling.StreamEndpointID {
	return e.id
}

// RemoteID returns the remote endpoint this endpoint is configured with.
// ok is false when the endpoint is not configured.
func (e *StreamEndpoint) RemoteID() (id signaling.StreamEndpointID, ok bool) {
	return e.remoteID, e.hasRemote
}

// State returns the current stream state.
func (e *StreamEndpoint) State() StreamState {
	return e.state
}

// MediaType returns the advertised media type.
func (e *StreamEndpoint) MediaType() signaling.MediaType {
	return e.mediaType
}

// EndpointType returns whether this is a Source or Sink endpoint.
func (e *StreamEndpoint) EndpointType() signaling.EndpointType {
	return e.endpointType
}

// Capabilities returns a copy of the advertised capabilities.
func (e *StreamEndpoint) Capabilities() []capability.Capability {
	return capability.Clone(e.capabilities)
}

// CodecType returns the codec of the configured media codec capability,
// falling back to the advertised one. ok is false if neither has a codec.
func (e *StreamEndpoint) CodecType() (t capability.CodecType, ok bool) {
	for _, caps := range [][]capability.Capability{e.configuration, e.capabilities} {
		for _, c := range caps {
			if mc, isCodec := c.(capability.MediaCodec); isCodec {
				return mc.CodecType, true
			}
		}
	}
	return 0, false
}

// Information returns the record advertised for this endpoint in a
// Discover response.
func (e *StreamEndpoint) Information() signaling.StreamInformation {
	return signaling.StreamInformation{
		ID:           e.id,
		InUse:        e.state != StreamStateIdle,
		MediaType:    e.mediaType,
		EndpointType: e.endpointType,
	}
}

// Configure accepts a Set Configuration request from remote.
// Only allowed in Idle. Every capability's category must be advertised.
func (e *StreamEndpoint) Configure(remote signaling.StreamEndpointID, caps []capability.Capability) error {
	if e.state != StreamStateIdle {
		return e.invalidState("configure")
	}
	if !remote.IsValid() {
		return fmt.Errorf("%w: remote 0x%02x", signaling.ErrInvalidID, uint8(remote))
	}
	if err := capability.ValidateConfigure(e.categories, caps); err != nil {
		return err
	}

	e.remoteID = remote
	e.hasRemote = true
	e.configuration = capability.Clone(caps)
	e.setState(StreamStateConfigured)
	e.notify()
	return nil
}

// Reconfigure merges application capabilities into the configuration.
// Only allowed in Open. Entries whose category appears in caps are replaced;
// other entries are kept.
func (e *StreamEndpoint) Reconfigure(caps []capability.Capability) error {
	if e.state != StreamStateOpen {
		return e.invalidState("reconfigure")
	}
	if err := capability.ValidateReconfigure(caps); err != nil {
		return err
	}

	e.configuration = capability.Merge(e.configuration, caps)
	if e.log != nil {
		e.log.Debugf("%s reconfigured: %d capabilities", e.id, len(e.configuration))
	}
	e.notify()
	return nil
}

// Configuration returns a copy of the configuration in effect.
// Only allowed in Configured, Opening, Open and Streaming.
func (e *StreamEndpoint) Configuration() ([]capability.Capability, error) {
	if !e.state.HasConfiguration() {
		return nil, e.invalidState("get configuration")
	}
	return capability.Clone(e.configuration), nil
}

// Establish starts the open procedure. The transport channel is delivered
// later through ReceiveChannel.
func (e *StreamEndpoint) Establish() error {
	if e.state != StreamStateConfigured || e.binding.bound() {
		return e.invalidState("establish")
	}

	e.setState(StreamStateOpening)
	e.notify()
	return nil
}

// ReceiveChannel binds the transport channel to an Opening endpoint and
// moves it to Open. The returned bool reports whether more channels are
// expected; reporting and recovery channels are not supported so it is
// always false.
//
// A nil ch is rejected with ErrInvalidState. On error the endpoint does not
// take ownership of ch; the caller must close it.
func (e *StreamEndpoint) ReceiveChannel(ch Channel) (bool, error) {
	if e.state != StreamStateOpening || e.binding.bound() {
		return false, e.invalidState("receive channel")
	}
	if ch == nil {
		return false, fmt.Errorf("%w: nil channel", ErrInvalidState)
	}

	e.binding.bind(ch)
	e.inUse = new(atomic.Bool)
	e.setState(StreamStateOpen)
	e.notify()
	return false, nil
}

// Start moves an Open endpoint to Streaming.
func (e *StreamEndpoint) Start() error {
	if e.state != StreamStateOpen {
		return e.invalidState("start")
	}

	e.setState(StreamStateStreaming)
	e.notify()
	return nil
}

// Suspend moves a Streaming endpoint back to Open.
func (e *StreamEndpoint) Suspend() error {
	if e.state != StreamStateStreaming {
		return e.invalidState("suspend")
	}

	e.setState(StreamStateOpen)
	e.notify()
	return nil
}

// Close releases the endpoint's resources: the transport channel is closed
// and any live MediaStream is invalidated. State is not changed and no
// update is fired. An in-flight Release or Abort is not cancelled.
func (e *StreamEndpoint) Close() error {
	if ch := e.binding.unbind(); ch != nil {
		return ch.Close()
	}
	return nil
}

// reset clears everything tied to the current remote and returns to Idle.
func (e *StreamEndpoint) reset() {
	e.configuration = nil
	e.remoteID = 0
	e.hasRemote = false
	if ch := e.binding.unbind(); ch != nil {
		ch.Close()
	}
	e.setState(StreamStateIdle)
}

func (e *StreamEndpoint) setState(s StreamState) {
	if e.log != nil {
		e.log.Debugf("%s state %s -> %s", e.id, e.state, s)
	}
	e.state = s
}

func (e *StreamEndpoint) notify() {
	if e.observer != nil {
		e.observer.OnStreamUpdate(e)
	}
}

func (e *StreamEndpoint) invalidState(op string) error {
	return fmt.Errorf("%w: %s in %s", ErrInvalidState, op, e.state)
}
