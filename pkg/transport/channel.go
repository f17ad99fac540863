// Package transport provides the media transport channel a stream endpoint
// binds once the stream is opened, plus an in-memory pipe for tests and
// loopback setups.
//
// A Channel wraps any message-preserving net.Conn (an L2CAP socket, or one
// end of a Pipe). It runs a read loop that queues whole inbound packets and
// exposes a Closed signal that fires once the peer closes its end or the
// channel is closed locally.
package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/pion/logging"
)

const (
	// DefaultMTU is the L2CAP default signaling MTU, used when ChannelConfig.MTU is zero.
	DefaultMTU = 672

	// DefaultQueueSize is the number of inbound packets buffered before the
	// read loop stops pulling from the connection.
	DefaultQueueSize = 64
)

// ChannelConfig configures a Channel.
type ChannelConfig struct {
	// MTU is the largest packet the channel reads or writes.
	// Default: DefaultMTU
	MTU int

	// QueueSize is the inbound packet queue depth.
	// Default: DefaultQueueSize
	QueueSize int

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Channel is a bidirectional packet channel carrying media for one stream.
// It is safe for concurrent use.
type Channel struct {
	conn    net.Conn
	mtu     int
	inbound chan []byte
	closeCh chan struct{}
	once    sync.Once
	log     logging.LeveledLogger
}

// NewChannel wraps conn and starts its read loop.
// The Channel takes ownership of conn and closes it on Close.
func NewChannel(conn net.Conn, config ChannelConfig) *Channel {
	if config.MTU <= 0 {
		config.MTU = DefaultMTU
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultQueueSize
	}

	c := &Channel{
		conn:    conn,
		mtu:     config.MTU,
		inbound: make(chan []byte, config.QueueSize),
		closeCh: make(chan struct{}),
	}
	if config.LoggerFactory != nil {
		c.log = config.LoggerFactory.NewLogger("avdtp-transport")
	}

	if c.log != nil {
		c.log.Infof("channel open: local=%v remote=%v mtu=%d", conn.LocalAddr(), conn.RemoteAddr(), c.mtu)
	}

	go c.readLoop()

	return c
}

func (c *Channel) readLoop() {
	for {
		buf := make([]byte, c.mtu)
		n, err := c.conn.Read(buf)
		if err != nil {
			if c.log != nil && !c.IsClosed() {
				c.log.Debugf("channel read ended: %v", err)
			}
			c.shutdown()
			return
		}

		select {
		case c.inbound <- buf[:n]:
		case <-c.closeCh:
			return
		}
	}
}

// shutdown fires the closed signal and closes the connection exactly once.
func (c *Channel) shutdown() {
	c.once.Do(func() {
		close(c.closeCh)
		// Unblock a pending Read before closing.
		c.conn.SetReadDeadline(time.Now())
		c.conn.Close()
		if c.log != nil {
			c.log.Info("channel closed")
		}
	})
}

// MTU returns the largest packet size the channel carries.
func (c *Channel) MTU() int {
	return c.mtu
}

// Closed returns a channel that is closed once the peer has closed its end
// or Close has been called.
func (c *Channel) Closed() <-chan struct{} {
	return c.closeCh
}

// IsClosed returns true once the closed signal has fired.
func (c *Channel) IsClosed() bool {
	select {
	case <-c.closeCh:
		return true
	default:
		return false
	}
}

// ReadPacket returns the next inbound packet. Packets queued before the
// channel closed are still delivered; after that it returns io.EOF.
func (c *Channel) ReadPacket(ctx context.Context) ([]byte, error) {
	select {
	case pkt := <-c.inbound:
		return pkt, nil
	case <-c.closeCh:
		select {
		case pkt := <-c.inbound:
			return pkt, nil
		default:
			return nil, io.EOF
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Write sends p as one packet.
func (c *Channel) Write(p []byte) (int, error) {
	if c.IsClosed() {
		return 0, ErrClosed
	}
	if len(p) > c.mtu {
		return 0, ErrPacketTooLarge
	}

	n, err := c.conn.Write(p)
	if err != nil {
		if c.log != nil {
			c.log.Warnf("channel write failed: %v", err)
		}
		if c.IsClosed() || errors.Is(err, net.ErrClosed) {
			return n, ErrClosed
		}
		return n, err
	}
	if c.log != nil {
		c.log.Tracef("sent %d bytes", n)
	}
	return n, nil
}

// Close closes the channel. The read loop exits once the pending read on
// the connection returns. Closing an already closed channel is a no-op.
func (c *Channel) Close() error {
	c.shutdown()
	return nil
}
