package stream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/backkem/avdtp/pkg/capability"
	"github.com/backkem/avdtp/pkg/signaling"
	"github.com/backkem/avdtp/pkg/transport"
)

const (
	localID  signaling.StreamEndpointID = 0x01
	remoteID signaling.StreamEndpointID = 0x01
)

func sbc(info ...byte) capability.MediaCodec {
	return capability.MediaCodec{
		MediaType: signaling.MediaTypeAudio,
		CodecType: 0x40,
		CodecInfo: info,
	}
}

func advertised() []capability.Capability {
	return []capability.Capability{
		capability.MediaTransport{},
		sbc(0xDE, 0xAD, 0xBE, 0xEF),
	}
}

func requested() []capability.Capability {
	return []capability.Capability{
		capability.MediaTransport{},
		sbc(0x0C, 0x0D, 0x02, 0x51),
	}
}

// recordingObserver records the endpoint state at every notification.
type recordingObserver struct {
	states []StreamState
}

func (o *recordingObserver) OnStreamUpdate(ep *StreamEndpoint) {
	o.states = append(o.states, ep.State())
}

// mockResponder records the reply sent for one request.
type mockResponder struct {
	sent     int
	rejected []signaling.ErrorCode
	sendErr  error
	onSend   func()
}

func (r *mockResponder) Send() error {
	r.sent++
	if r.onSend != nil {
		r.onSend()
	}
	return r.sendErr
}

func (r *mockResponder) Reject(code signaling.ErrorCode) error {
	r.rejected = append(r.rejected, code)
	return nil
}

// mockPeer records Abort commands.
type mockPeer struct {
	mu      sync.Mutex
	aborts  []signaling.StreamEndpointID
	err     error
	onAbort func()
}

func (p *mockPeer) Abort(ctx context.Context, remote signaling.StreamEndpointID) error {
	p.mu.Lock()
	p.aborts = append(p.aborts, remote)
	p.mu.Unlock()
	if p.onAbort != nil {
		p.onAbort()
	}
	return p.err
}

func (p *mockPeer) abortCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.aborts)
}

// fixture is an endpoint plus the remote side of its transport channel.
type fixture struct {
	ep     *StreamEndpoint
	obs    *recordingObserver
	local  *transport.Channel
	remote *transport.Channel
}

func newFixture(t *testing.T, timeout time.Duration) *fixture {
	t.Helper()
	obs := &recordingObserver{}
	ep, err := NewStreamEndpoint(EndpointConfig{
		ID:             localID,
		MediaType:      signaling.MediaTypeAudio,
		EndpointType:   signaling.EndpointTypeSink,
		Capabilities:   advertised(),
		ReleaseTimeout: timeout,
		Observer:       obs,
	})
	if err != nil {
		t.Fatalf("NewStreamEndpoint() error = %v", err)
	}
	f := &fixture{ep: ep, obs: obs}
	t.Cleanup(func() {
		if f.remote != nil {
			f.remote.Close()
		}
		ep.Close()
	})
	return f
}

// driveTo moves the fixture's endpoint to state. Closing is reached by
// abandoning a Release; Aborting is not reachable as a resting state.
func (f *fixture) driveTo(t *testing.T, state StreamState) {
	t.Helper()
	if state == StreamStateIdle {
		return
	}
	if err := f.ep.Configure(remoteID, requested()); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if state == StreamStateConfigured {
		return
	}
	if err := f.ep.Establish(); err != nil {
		t.Fatalf("Establish() error = %v", err)
	}
	if state == StreamStateOpening {
		return
	}
	f.local, f.remote, _ = transport.NewChannelPair(transport.ChannelConfig{})
	if more, err := f.ep.ReceiveChannel(f.local); err != nil || more {
		t.Fatalf("ReceiveChannel() = %v, %v; want false, nil", more, err)
	}
	if state == StreamStateOpen {
		return
	}
	if state == StreamStateClosing {
		ctx, cancel := context.WithCancel(context.Background())
		resp := &mockResponder{onSend: cancel}
		if err := f.ep.Release(ctx, resp, &mockPeer{}); !errors.Is(err, context.Canceled) {
			t.Fatalf("Release() error = %v, want context.Canceled", err)
		}
		return
	}
	if err := f.ep.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if state != StreamStateStreaming {
		t.Fatalf("driveTo(%s) unsupported", state)
	}
}

func assertState(t *testing.T, ep *StreamEndpoint, want StreamState) {
	t.Helper()
	if got := ep.State(); got != want {
		t.Fatalf("State() = %s, want %s", got, want)
	}
}

func assertIdleCleared(t *testing.T, ep *StreamEndpoint) {
	t.Helper()
	assertState(t, ep, StreamStateIdle)
	if _, ok := ep.RemoteID(); ok {
		t.Error("RemoteID() ok = true after returning to Idle")
	}
	if ep.configuration != nil {
		t.Errorf("configuration = %v, want nil", ep.configuration)
	}
	if ep.binding.bound() {
		t.Error("transport channel still bound in Idle")
	}
}

var restingStates = []StreamState{
	StreamStateIdle,
	StreamStateConfigured,
	StreamStateOpening,
	StreamStateOpen,
	StreamStateStreaming,
	StreamStateClosing,
}
