package transport

import (
	"fmt"
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/pion/transport/v3/test"
)

// NetworkCondition configures network behavior simulation.
// Use this to test stream behavior under adverse link conditions.
type NetworkCondition struct {
	// DropRate is the probability of dropping a packet (0.0 - 1.0).
	DropRate float64

	// DelayMin is the minimum delay to add to each packet.
	DelayMin time.Duration

	// DelayMax is the maximum delay to add to each packet.
	// Actual delay is uniformly distributed between DelayMin and DelayMax.
	DelayMax time.Duration
}

// PipeConfig configures a Pipe.
type PipeConfig struct {
	// AutoProcess enables automatic packet delivery in a background goroutine.
	// Default: true
	AutoProcess bool

	// ProcessInterval is how often the auto-processor delivers packets.
	// Default: 1ms
	ProcessInterval time.Duration
}

// DefaultPipeConfig returns the default pipe configuration.
func DefaultPipeConfig() PipeConfig {
	return PipeConfig{
		AutoProcess:     true,
		ProcessInterval: 1 * time.Millisecond,
	}
}

// Pipe is an in-memory, message-preserving link between two endpoints.
// It wraps pion's test.Bridge and adds network condition simulation.
//
// Closing either end closes the whole pipe, so the other end observes the
// peer close the same way it would on a real L2CAP channel.
type Pipe struct {
	bridge *test.Bridge
	ends   [2]*pipeConn

	mu              sync.RWMutex
	condition       NetworkCondition
	closed          bool
	rng             *rand.Rand
	autoProcess     bool
	processInterval time.Duration
	stopCh          chan struct{}
	wg              sync.WaitGroup
}

// NewPipe creates a new pipe with auto-processing enabled.
func NewPipe() *Pipe {
	return NewPipeWithConfig(DefaultPipeConfig())
}

// NewPipeWithConfig creates a new pipe with the given configuration.
func NewPipeWithConfig(config PipeConfig) *Pipe {
	p := &Pipe{
		bridge:          test.NewBridge(),
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
		autoProcess:     config.AutoProcess,
		processInterval: config.ProcessInterval,
		stopCh:          make(chan struct{}),
	}

	if config.ProcessInterval == 0 {
		p.processInterval = 1 * time.Millisecond
	}

	p.ends[0] = &pipeConn{Conn: p.bridge.GetConn0(), pipe: p, id: 0}
	p.ends[1] = &pipeConn{Conn: p.bridge.GetConn1(), pipe: p, id: 1}

	if p.autoProcess {
		p.startAutoProcess()
	}

	return p
}

func (p *Pipe) startAutoProcess() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.processInterval)
		defer ticker.Stop()

		for {
			select {
			case <-p.stopCh:
				return
			case <-ticker.C:
				p.bridge.Tick()
			}
		}
	}()
}

// SetAutoProcess enables or disables automatic packet delivery.
// When disabled, you must call Tick() or Process() manually.
func (p *Pipe) SetAutoProcess(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.autoProcess == enabled {
		return
	}

	p.autoProcess = enabled

	if enabled {
		p.stopCh = make(chan struct{})
		p.startAutoProcess()
	} else {
		close(p.stopCh)
		p.wg.Wait()
	}
}

// AutoProcess returns whether auto-processing is enabled.
func (p *Pipe) AutoProcess() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.autoProcess
}

// SetCondition configures network condition simulation for both directions.
func (p *Pipe) SetCondition(cond NetworkCondition) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.condition = cond
}

// Conn0 returns the connection for endpoint 0.
func (p *Pipe) Conn0() net.Conn {
	return p.ends[0]
}

// Conn1 returns the connection for endpoint 1.
func (p *Pipe) Conn1() net.Conn {
	return p.ends[1]
}

// Tick delivers one packet in each direction (if available).
// Returns the number of packets delivered (0, 1, or 2).
func (p *Pipe) Tick() int {
	return p.bridge.Tick()
}

// Process delivers all queued packets and returns how many were delivered.
func (p *Pipe) Process() int {
	count := 0
	for {
		n := p.Tick()
		if n == 0 {
			break
		}
		count += n
	}
	return count
}

// IsClosed returns true once either end has been closed.
func (p *Pipe) IsClosed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

// Close closes both ends of the pipe and stops auto-processing.
func (p *Pipe) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	if p.autoProcess {
		close(p.stopCh)
	}
	p.mu.Unlock()

	p.wg.Wait()

	var firstErr error
	for _, end := range p.ends {
		end.Conn.SetReadDeadline(time.Now())
		if err := end.Conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// PipeAddr implements net.Addr for pipe endpoints.
type PipeAddr struct {
	ID int // Endpoint ID (0 or 1)
}

// Network returns "pipe".
func (a PipeAddr) Network() string { return "pipe" }

// String returns a string representation of the address.
func (a PipeAddr) String() string { return fmt.Sprintf("pipe:%d", a.ID) }

// pipeConn is one end of a Pipe. Close tears down the whole pipe.
type pipeConn struct {
	net.Conn
	pipe *Pipe
	id   int
}

func (c *pipeConn) Write(b []byte) (int, error) {
	p := c.pipe
	p.mu.RLock()
	cond := p.condition
	closed := p.closed
	p.mu.RUnlock()

	if closed {
		return 0, net.ErrClosed
	}

	if cond.DropRate > 0 {
		p.mu.Lock()
		drop := p.rng.Float64() < cond.DropRate
		p.mu.Unlock()
		if drop {
			return len(b), nil
		}
	}

	if cond.DelayMax > 0 {
		delay := cond.DelayMin
		if cond.DelayMax > cond.DelayMin {
			p.mu.Lock()
			delay += time.Duration(p.rng.Int63n(int64(cond.DelayMax - cond.DelayMin)))
			p.mu.Unlock()
		}
		if delay > 0 {
			time.Sleep(delay)
		}
	}

	return c.Conn.Write(b)
}

func (c *pipeConn) Close() error {
	return c.pipe.Close()
}

func (c *pipeConn) LocalAddr() net.Addr {
	return PipeAddr{ID: c.id}
}

func (c *pipeConn) RemoteAddr() net.Addr {
	return PipeAddr{ID: 1 - c.id}
}

// Verify pipeConn implements net.Conn.
var _ net.Conn = (*pipeConn)(nil)

// NewChannelPair returns two Channels connected by a new auto-processing
// Pipe. Closing either Channel is observed as a peer close by the other.
func NewChannelPair(config ChannelConfig) (*Channel, *Channel, *Pipe) {
	p := NewPipe()
	return NewChannel(p.Conn0(), config), NewChannel(p.Conn1(), config), p
}
