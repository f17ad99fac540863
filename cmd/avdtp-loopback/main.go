// avdtp-loopback runs one sink stream endpoint against a simulated peer over
// an in-memory transport channel, printing every state change.
//
// Usage:
//
//	avdtp-loopback [options]
//
// Example:
//
//	avdtp-loopback -peer-closes=false -release-timeout 500ms -log-level debug
//	avdtp-loopback -link-delay 20ms -link-jitter 10ms
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/backkem/avdtp/pkg/capability"
	"github.com/backkem/avdtp/pkg/signaling"
	"github.com/backkem/avdtp/pkg/stream"
	"github.com/backkem/avdtp/pkg/transport"
	"github.com/pion/logging"
)

func main() {
	opts := ParseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		log.Fatalf("loopback failed: %v", err)
	}
}

// loopbackPeer stands in for the remote signaling entity.
type loopbackPeer struct {
	log logging.LeveledLogger
}

func (p *loopbackPeer) Abort(ctx context.Context, remote signaling.StreamEndpointID) error {
	p.log.Infof("peer: abort %s accepted", remote)
	return nil
}

// loopbackResponder answers one request and optionally runs a follow-up.
type loopbackResponder struct {
	log    logging.LeveledLogger
	onSend func()
}

func (r *loopbackResponder) Send() error {
	r.log.Info("peer: request accepted")
	if r.onSend != nil {
		r.onSend()
	}
	return nil
}

func (r *loopbackResponder) Reject(code signaling.ErrorCode) error {
	r.log.Infof("peer: request rejected with %s", code)
	return nil
}

func run(ctx context.Context, opts Options) error {
	loggerFactory := logging.NewDefaultLoggerFactory()
	loggerFactory.DefaultLogLevel = opts.LogLevel
	loggerFactory.Writer = os.Stderr
	appLog := loggerFactory.NewLogger("loopback")

	ep, err := stream.NewStreamEndpoint(stream.EndpointConfig{
		ID:           0x01,
		MediaType:    signaling.MediaTypeAudio,
		EndpointType: signaling.EndpointTypeSink,
		Capabilities: []capability.Capability{
			capability.MediaTransport{},
			capability.MediaCodec{
				MediaType: signaling.MediaTypeAudio,
				CodecType: capability.CodecTypeSBC,
				CodecInfo: []byte{0xFF, 0xFF, 0x02, 0x35},
			},
		},
		ReleaseTimeout: opts.ReleaseTimeout,
		Observer: stream.UpdateFunc(func(ep *stream.StreamEndpoint) {
			fmt.Printf("%s -> %s\n", ep.LocalID(), ep.State())
		}),
		LoggerFactory: loggerFactory,
	})
	if err != nil {
		return fmt.Errorf("create endpoint: %w", err)
	}
	defer ep.Close()

	remoteID, err := signaling.NewStreamEndpointID(0x02)
	if err != nil {
		return err
	}

	err = ep.Configure(remoteID, []capability.Capability{
		capability.MediaTransport{},
		capability.MediaCodec{
			MediaType: signaling.MediaTypeAudio,
			CodecType: capability.CodecTypeSBC,
			CodecInfo: []byte{0x21, 0x15, 0x02, 0x35},
		},
	})
	if err != nil {
		return fmt.Errorf("configure: %w", err)
	}
	if err := ep.Establish(); err != nil {
		return fmt.Errorf("establish: %w", err)
	}

	local, remote, link := transport.NewChannelPair(transport.ChannelConfig{LoggerFactory: loggerFactory})
	defer remote.Close()
	if opts.LinkDelay > 0 || opts.LinkJitter > 0 {
		link.SetCondition(transport.NetworkCondition{
			DelayMin: opts.LinkDelay,
			DelayMax: opts.LinkDelay + opts.LinkJitter,
		})
	}

	if _, err := ep.ReceiveChannel(local); err != nil {
		local.Close()
		return fmt.Errorf("receive channel: %w", err)
	}
	if err := ep.Start(); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	media, err := ep.TakeTransport()
	if err != nil {
		return fmt.Errorf("take transport: %w", err)
	}
	for i := 0; i < opts.Packets; i++ {
		if _, err := remote.Write([]byte{0x80, 0x60, 0x00, byte(i)}); err != nil {
			return fmt.Errorf("peer write: %w", err)
		}
		pkt, err := media.ReadPacket(ctx)
		if err != nil {
			return fmt.Errorf("read media: %w", err)
		}
		appLog.Infof("received media packet %d: % x", i, pkt)
	}
	media.Close()

	if err := ep.Suspend(); err != nil {
		return fmt.Errorf("suspend: %w", err)
	}

	resp := &loopbackResponder{log: appLog}
	if opts.PeerCloses {
		resp.onSend = func() { go remote.Close() }
	}
	if err := ep.Release(ctx, resp, &loopbackPeer{log: appLog}); err != nil {
		return fmt.Errorf("release: %w", err)
	}

	info := ep.Information()
	appLog.Infof("done: %s in use=%v state=%s", info.ID, info.InUse, ep.State())
	return nil
}
