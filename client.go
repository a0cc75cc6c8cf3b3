package lora

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	readChunk   = 1024
	readBackoff = 10 * time.Millisecond
	joinTimeout = time.Second
)

// ErrNotOpen is returned by SendText and Messages when the client has
// no open session.
var ErrNotOpen = errors.New("client not open")

// Config holds the public configuration surface of the client. An
// empty Port triggers auto-detection; a zero BaudRate defaults to
// 115200.
type Config struct {
	Port     string
	BaudRate int
}

// Client is a host-side LoRa modem client. It owns one Transport per
// open session, runs a single reader goroutine that assembles protocol
// frames off the wire, and delivers inbound payloads through Messages
// and the optional callbacks. Safe for concurrent use by multiple
// goroutines.
//
// Callbacks run on the reader goroutine and must be fast and
// non-blocking, or they stall frame assembly. Set them before Open.
type Client struct {
	// OnMessage, when set, receives every inbound payload in addition
	// to the Messages channel.
	OnMessage func(payload string)
	// OnTxDone, when set, receives transmit-completion telemetry.
	OnTxDone func(info TxDoneInfo)
	// OnLog, when set, receives diagnostic lines; otherwise they go to
	// standard output.
	OnLog func(line string)

	cfg Config

	mu        sync.Mutex // guards the session state below
	transport Transport
	queue     *deliveryQueue
	stop      chan struct{}
	loopDone  chan struct{}

	sendMu sync.Mutex // serializes writes to the transport
}

// NewClient returns an unopened client for the given configuration.
func NewClient(cfg Config) *Client {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = 115200
	}
	return &Client{cfg: cfg}
}

// Open acquires a transport and starts the reader goroutine. Calling
// Open on an already open client is a no-op.
func (c *Client) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transport != nil {
		return nil
	}

	t, port, err := openTransportFn(c.cfg.Port, c.cfg.BaudRate)
	if err != nil {
		return err
	}
	c.cfg.Port = port
	c.logf("[info] opened %s:%s", t.Kind(), port)

	c.transport = t
	c.queue = newDeliveryQueue()
	c.stop = make(chan struct{})
	c.loopDone = make(chan struct{})
	go c.readLoop(t, c.queue, c.stop, c.loopDone)
	return nil
}

// Close stops the reader goroutine, closes the transport and resets
// all session state so a subsequent Open starts clean. Idempotent;
// never returns an error beyond nil.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transport == nil {
		return nil
	}

	close(c.stop)
	select {
	case <-c.loopDone:
	case <-time.After(joinTimeout):
		// Proceed anyway; the transport close below unblocks the loop.
	}

	_ = c.transport.Close()
	c.queue.close()

	c.transport = nil
	c.queue = nil
	c.stop = nil
	c.loopDone = nil
	c.logf("[info] closed")
	return nil
}

// SendText frames one payload and writes it to the transport. Safe to
// call concurrently; each call's bytes appear contiguously on the
// wire. Write failures surface to the caller and are not retried.
func (c *Client) SendText(text string) error {
	c.mu.Lock()
	t := c.transport
	c.mu.Unlock()
	if t == nil {
		return ErrNotOpen
	}

	frame := frameMessage(text)
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if _, err := t.Write(frame); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// Messages returns the channel of inbound payloads for the current
// session, in arrival order. The channel closes when the session ends,
// whether by Close or by a reader failure; after a reopen, Messages
// returns a fresh channel. Undelivered payloads are discarded on
// close.
func (c *Client) Messages() (<-chan string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.queue == nil {
		return nil, ErrNotOpen
	}
	return c.queue.out, nil
}

// readLoop owns the transport's read side for one session. It exits on
// stop request or on the first read error; a read error also closes
// the delivery queue so consumers observe end-of-stream.
func (c *Client) readLoop(t Transport, q *deliveryQueue, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	var asm frameAssembler
	buf := make([]byte, readChunk)
	for {
		select {
		case <-stop:
			return
		default:
		}

		n, err := t.Read(buf)
		if err != nil {
			c.logf("[error] reader loop: %v", err)
			q.close()
			return
		}
		if n == 0 {
			time.Sleep(readBackoff)
			continue
		}
		asm.feed(buf[:n], func(line string) {
			c.handleLine(line, q)
		})
	}
}

// handleLine scans one completed line for both frame kinds. Lines
// carrying neither are transport noise and are dropped silently.
func (c *Client) handleLine(line string, q *deliveryQueue) {
	if payload, ok := extractFrame(line, msgOpen, msgClose); ok {
		q.push(payload)
		if c.OnMessage != nil {
			c.invoke(func() { c.OnMessage(payload) })
		}
	}

	if raw, ok := extractFrame(line, txOpen, txClose); ok {
		if c.OnTxDone != nil {
			info := parseTxDone(raw)
			c.invoke(func() { c.OnTxDone(info) })
		}
	}
}

// invoke runs a callback with panic isolation so a misbehaving
// observer cannot kill the reader goroutine.
func (c *Client) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.logf("[error] callback panic: %v", r)
		}
	}()
	fn()
}

func (c *Client) logf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if c.OnLog != nil && c.tryLog(line) {
		return
	}
	fmt.Println(line)
}

func (c *Client) tryLog(line string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	c.OnLog(line)
	return true
}
