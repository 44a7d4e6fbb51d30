// Package scan runs barcode/RFID resolution as a background task and hands
// each outcome back to the foreground dispatch loop. One scan may be in
// flight per coordinator; a second request is rejected rather than queued.
package scan

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/stocktrack/stocktrack-backend/internal/inventory/service"
	"github.com/stocktrack/stocktrack-backend/pkg/dispatch"
	"github.com/stocktrack/stocktrack-backend/pkg/errors"
	"github.com/stocktrack/stocktrack-backend/pkg/logger"
)

// State is the coordinator's position in its lifecycle
type State int

const (
	StateIdle State = iota
	StateScanning
	StateResolved
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Outcome is the all-or-nothing result of one scan
type Outcome struct {
	State State                 `json:"state"`
	Tag   string                `json:"tag,omitempty"`
	Item  *service.ItemSnapshot `json:"item,omitempty"`
	Err   error                 `json:"-"`
	At    time.Time             `json:"at"`
}

// Resolver turns a decoded tag into an item snapshot
type Resolver interface {
	ResolveTag(ctx context.Context, tag string) (*service.ItemSnapshot, error)
}

// Handler receives each delivered outcome. It is invoked on the dispatch
// loop, so it may use repositories directly; it must not submit work back
// to the loop synchronously.
type Handler func(ctx context.Context, o Outcome)

// Coordinator owns the Idle → Scanning → {Resolved, Failed} → Idle state
// machine. The generation counter lets a cancelled scan's late result be
// recognized and discarded.
type Coordinator struct {
	loop     *dispatch.Loop
	resolver Resolver
	decoder  Decoder
	reader   RFIDReader
	timeout  time.Duration
	handler  Handler
	logger   *logger.Logger

	mu    sync.Mutex
	state State
	gen   uint64
	last  Outcome
}

// NewCoordinator creates a scan coordinator
func NewCoordinator(
	loop *dispatch.Loop,
	resolver Resolver,
	decoder Decoder,
	reader RFIDReader,
	timeout time.Duration,
	handler Handler,
	log *logger.Logger,
) *Coordinator {
	return &Coordinator{
		loop:     loop,
		resolver: resolver,
		decoder:  decoder,
		reader:   reader,
		timeout:  timeout,
		handler:  handler,
		logger:   log.WithComponent("scan"),
	}
}

// State returns the current state
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Last returns the most recently delivered outcome
func (c *Coordinator) Last() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// StartBarcode launches a barcode decode without blocking the caller
func (c *Coordinator) StartBarcode(image io.Reader) error {
	if c.decoder == nil {
		return errors.InvalidInput("no barcode decoder configured")
	}
	return c.start(func(ctx context.Context) (string, error) {
		return c.decoder.Decode(ctx, image)
	})
}

// StartRFID launches an RFID read without blocking the caller
func (c *Coordinator) StartRFID() error {
	if c.reader == nil {
		return errors.InvalidInput("no RFID reader configured")
	}
	return c.start(c.reader.Read)
}

func (c *Coordinator) start(read func(context.Context) (string, error)) error {
	c.mu.Lock()
	if c.state == StateScanning {
		c.mu.Unlock()
		return errors.Busy("scan already in flight")
	}
	c.state = StateScanning
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	go c.run(gen, read)
	return nil
}

// Cancel abandons an in-flight scan. A late-arriving result for the
// cancelled generation is discarded.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateScanning {
		c.gen++
		c.state = StateIdle
		c.logger.Info().Msg("scan cancelled")
	}
}

// run executes the blocking read on a background goroutine. It never
// touches the store; the outcome is posted to the dispatch loop, which
// resolves the tag and performs any resulting mutation.
func (c *Coordinator) run(gen uint64, read func(context.Context) (string, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	tag, err := read(ctx)
	if err != nil {
		if ctx.Err() != nil {
			err = errors.Timeout("scan did not resolve within " + c.timeout.String())
		}
		c.complete(gen, Outcome{State: StateFailed, Err: err})
		return
	}

	c.complete(gen, Outcome{State: StateResolved, Tag: tag})
}

func (c *Coordinator) complete(gen uint64, o Outcome) {
	c.mu.Lock()
	if gen != c.gen || c.state != StateScanning {
		// cancelled while the read was in flight
		c.mu.Unlock()
		return
	}
	c.state = o.State
	c.mu.Unlock()

	c.loop.Post(func() {
		c.deliver(gen, o)
	})
}

// deliver runs on the dispatch loop: resolve the tag against the registry,
// record the outcome, hand it to the consumer, and return to idle.
func (c *Coordinator) deliver(gen uint64, o Outcome) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	o.At = time.Now().UTC()

	if o.Err == nil && c.resolver != nil {
		item, err := c.resolver.ResolveTag(context.Background(), o.Tag)
		if err != nil {
			o.State = StateFailed
			o.Err = err
		} else {
			o.Item = item
		}
	}

	if o.Err != nil {
		c.logger.Warn().Err(o.Err).Str("tag", o.Tag).Msg("scan failed")
	} else {
		c.logger.Info().Str("tag", o.Tag).Msg("scan resolved")
	}

	c.mu.Lock()
	c.state = o.State
	c.last = o
	c.mu.Unlock()

	if c.handler != nil {
		c.handler(context.Background(), o)
	}

	c.mu.Lock()
	if gen == c.gen && (c.state == StateResolved || c.state == StateFailed) {
		c.state = StateIdle
	}
	c.mu.Unlock()
}
