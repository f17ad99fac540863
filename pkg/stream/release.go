package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/backkem/avdtp/pkg/signaling"
)

// Release handles a Close request from the peer (AVDTP Section 8.14).
//
// Outside Open and Streaming the request is rejected with BAD_STATE through
// responder and the endpoint is left unchanged; the result of the reject is
// returned. Otherwise the endpoint moves to Closing, accepts the request,
// and waits up to the release timeout for the peer to close the transport
// channel. If the peer closes in time the endpoint returns to Idle. If the
// timeout elapses first, Release escalates to Abort(ctx, peer) and returns
// its result.
//
// A failure to send the accept is returned immediately and leaves the
// endpoint in Closing. If ctx is done while waiting, Release returns
// ctx.Err() and the endpoint stays in Closing.
func (e *StreamEndpoint) Release(ctx context.Context, responder signaling.Responder, peer signaling.Peer) error {
	if !e.state.CanRelease() {
		if e.log != nil {
			e.log.Debugf("%s rejecting release in %s", e.id, e.state)
		}
		return responder.Reject(signaling.ErrorCodeBadState)
	}

	e.setState(StreamStateClosing)
	e.notify()

	// The peer closes its end only after it sees the accept.
	if err := responder.Send(); err != nil {
		return fmt.Errorf("stream: release accept: %w", err)
	}

	if ch, _ := e.binding.current(); ch != nil {
		timer := time.NewTimer(e.releaseTimeout)
		defer timer.Stop()

		select {
		case <-ch.Closed():
		case <-timer.C:
			if e.log != nil {
				e.log.Warnf("%s peer did not close transport within %v, aborting", e.id, e.releaseTimeout)
			}
			return e.Abort(ctx, peer)
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	e.reset()
	e.notify()
	return nil
}

// Abort tears the stream down from any state and always succeeds.
//
// When peer is non-nil and the endpoint is configured with a remote, the
// endpoint moves to Aborting and sends an Abort command, waiting for the
// reply. Failures of that command are logged and otherwise ignored. The
// configuration, remote and transport channel are then cleared and the
// endpoint returns to Idle.
func (e *StreamEndpoint) Abort(ctx context.Context, peer signaling.Peer) error {
	if peer != nil && e.hasRemote {
		e.setState(StreamStateAborting)
		e.notify()

		if err := peer.Abort(ctx, e.remoteID); err != nil && e.log != nil {
			e.log.Warnf("%s abort to %s failed: %v", e.id, e.remoteID, err)
		}
	}

	e.reset()
	e.notify()
	return nil
}
