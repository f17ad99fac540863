package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/backkem/avdtp/pkg/transport"
)

// channelBinding is the slot holding an endpoint's transport channel.
// Every bind and unbind bumps gen, so a MediaStream created for one channel
// never reaches a later one.
type channelBinding struct {
	mu  sync.Mutex
	ch  Channel
	gen uint64
}

func (b *channelBinding) bind(ch Channel) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	b.ch = ch
}

// unbind empties the slot and returns the channel that was bound, if any.
func (b *channelBinding) unbind() Channel {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := b.ch
	if ch != nil {
		b.gen++
		b.ch = nil
	}
	return ch
}

func (b *channelBinding) bound() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ch != nil
}

func (b *channelBinding) current() (Channel, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ch, b.gen
}

// lookup returns the channel if it is still the one bound at generation gen.
func (b *channelBinding) lookup(gen uint64) Channel {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gen != gen {
		return nil
	}
	return b.ch
}

// MediaStream is the single-owner handle to an endpoint's transport channel.
// It does not keep the channel alive: once the endpoint unbinds the channel
// (return to Idle, or Close), reads report io.EOF and writes fail with
// ErrConnectionAborted.
//
// Close must be called when done so that TakeTransport succeeds again.
// A MediaStream that is dropped without Close releases its claim when it is
// garbage collected.
type MediaStream struct {
	binding *channelBinding
	gen     uint64
	inUse   *atomic.Bool
	cleanup runtime.Cleanup

	closeOnce sync.Once
	closed    atomic.Bool
}

// TakeTransport hands out the bound transport channel as a MediaStream.
// It fails with ErrInvalidState when no channel is bound or another
// MediaStream for this channel is still live.
//
// The channel stays bound while a Release waits for the peer to close it,
// so TakeTransport also succeeds in Closing. That stream ends with io.EOF
// once the release completes.
//
// The claim is advisory: it stops a second MediaStream from being created
// but does not prevent other access to the underlying channel.
func (e *StreamEndpoint) TakeTransport() (*MediaStream, error) {
	ch, gen := e.binding.current()
	if ch == nil || e.inUse == nil {
		return nil, e.invalidState("take transport")
	}
	if !e.inUse.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: transport already taken", ErrInvalidState)
	}

	s := &MediaStream{
		binding: e.binding,
		gen:     gen,
		inUse:   e.inUse,
	}
	s.cleanup = runtime.AddCleanup(s, func(flag *atomic.Bool) { flag.Store(false) }, e.inUse)

	if e.log != nil {
		e.log.Tracef("%s transport taken", e.id)
	}
	return s, nil
}

func (s *MediaStream) channel() (Channel, error) {
	if s.closed.Load() {
		return nil, ErrStreamClosed
	}
	return s.binding.lookup(s.gen), nil
}

// ReadPacket returns the next inbound packet. It returns io.EOF once the
// channel is closed or no longer bound to the endpoint.
func (s *MediaStream) ReadPacket(ctx context.Context) ([]byte, error) {
	ch, err := s.channel()
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, io.EOF
	}
	return ch.ReadPacket(ctx)
}

// Read implements io.Reader. Each call consumes one packet; if p is too
// small the packet is truncated and io.ErrShortBuffer is returned.
func (s *MediaStream) Read(p []byte) (int, error) {
	pkt, err := s.ReadPacket(context.Background())
	if err != nil {
		return 0, err
	}
	n := copy(p, pkt)
	if n < len(pkt) {
		return n, io.ErrShortBuffer
	}
	return n, nil
}

// Write sends p as one packet. It fails with ErrConnectionAborted once the
// channel is gone.
func (s *MediaStream) Write(p []byte) (int, error) {
	ch, err := s.channel()
	if err != nil {
		return 0, err
	}
	if ch == nil {
		return 0, ErrConnectionAborted
	}
	select {
	case <-ch.Closed():
		return 0, ErrConnectionAborted
	default:
	}

	n, err := ch.Write(p)
	if errors.Is(err, transport.ErrClosed) {
		return n, ErrConnectionAborted
	}
	return n, err
}

// Close releases the claim on the transport. It does not close the channel,
// which stays owned by the endpoint. The claim is released even if the
// channel is already gone.
func (s *MediaStream) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.cleanup.Stop()
		s.inUse.Store(false)
	})
	return nil
}

var _ io.ReadWriteCloser = (*MediaStream)(nil)
