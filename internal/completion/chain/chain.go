package chain

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dshills/popcomplete/internal/completion"
	"github.com/dshills/popcomplete/internal/logging"
)

// Transform produces the next model from the previous one. A nil input
// means no model exists yet, or the previous step dismissed the session.
type Transform func(ctx context.Context, m *completion.Model) (*completion.Model, error)

// Update reports a completed job to the notifier.
type Update struct {
	Model *completion.Model
	// Seq is the job's position in the chain, starting at 1.
	Seq uint64
	// Initial is set for the candidate computation job.
	Initial bool
	// Err is the error the transformation failed with, if any.
	Err error
}

// Pending is a queued job.
type Pending struct {
	seq     uint64
	fn      Transform
	notify  bool
	initial bool
	done    chan struct{}

	model *completion.Model
	err   error
}

// Seq returns the job's position in the chain.
func (p *Pending) Seq() uint64 { return p.seq }

// Done is closed when the job has completed.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Result returns the job's model and error. It is only meaningful after
// Done is closed.
func (p *Pending) Result() (*completion.Model, error) {
	select {
	case <-p.done:
		return p.model, p.err
	default:
		return nil, nil
	}
}

// Option configures a Chain.
type Option func(*Chain)

// WithNotifier sets the function called after each notifying job completes.
// It runs on the worker goroutine and must not block.
func WithNotifier(fn func(Update)) Option {
	return func(c *Chain) {
		c.notifier = fn
	}
}

// WithLogger sets the logger for transform failures.
func WithLogger(l *log.Logger) Option {
	return func(c *Chain) {
		c.logger = l
	}
}

// WithContext sets the parent context for transformations.
func WithContext(ctx context.Context) Option {
	return func(c *Chain) {
		c.parent = ctx
	}
}

// Chain runs transformations one at a time in enqueue order.
type Chain struct {
	parent   context.Context
	ctx      context.Context
	cancel   context.CancelFunc
	notifier func(Update)
	logger   *log.Logger

	mu         sync.Mutex
	queue      []*Pending
	tail       *Pending
	seq        uint64
	pending    int
	current    *completion.Model
	unfiltered *completion.Model
	stopped    bool

	signal chan struct{}
	exited chan struct{}
}

// New creates a chain and starts its worker.
func New(opts ...Option) *Chain {
	c := &Chain{
		parent: context.Background(),
		signal: make(chan struct{}, 1),
		exited: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	c.ctx, c.cancel = context.WithCancel(c.parent)

	go c.run()
	return c
}

// Enqueue appends fn to the chain. fn runs after every job enqueued before
// it and receives the model the previous job produced.
func (c *Chain) Enqueue(fn Transform, notify bool) *Pending {
	return c.enqueue(fn, notify, false)
}

// EnqueueInitial appends the candidate computation job. Its result is
// remembered as the unfiltered model.
func (c *Chain) EnqueueInitial(fn Transform) *Pending {
	return c.enqueue(fn, true, true)
}

func (c *Chain) enqueue(fn Transform, notify, initial bool) *Pending {
	p := &Pending{fn: fn, notify: notify, initial: initial, done: make(chan struct{})}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		p.err = ErrStopped
		close(p.done)
		return p
	}
	c.seq++
	p.seq = c.seq
	c.queue = append(c.queue, p)
	c.tail = p
	c.pending++
	c.mu.Unlock()

	c.wake()
	return p
}

// Current returns the most recently completed model. ok is false while
// jobs are still queued or running.
func (c *Chain) Current() (m *completion.Model, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.pending == 0
}

// CurrentUnfilteredModel returns the result of the initial job, or nil if
// it has not completed.
func (c *Chain) CurrentUnfilteredModel() *completion.Model {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unfiltered
}

// Pending reports how many jobs have not completed.
func (c *Chain) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// WaitForLatest blocks until the last enqueued job completes and returns
// its model. ctx bounds the wait.
func (c *Chain) WaitForLatest(ctx context.Context) (*completion.Model, error) {
	c.mu.Lock()
	tail, stopped, current := c.tail, c.stopped, c.current
	c.mu.Unlock()

	if stopped {
		return nil, ErrStopped
	}
	if tail == nil {
		return current, nil
	}

	select {
	case <-tail.done:
		if errors.Is(tail.err, ErrStopped) {
			return nil, ErrStopped
		}
		return tail.model, nil
	case <-c.ctx.Done():
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrWaitTimeout, ctx.Err())
	}
}

// Stop cancels the chain. Queued jobs are drained without running and no
// further updates are published. Stop is idempotent.
func (c *Chain) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.mu.Unlock()

	c.cancel()
	c.wake()
}

// Stopped reports whether Stop has been called.
func (c *Chain) Stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

// Exited is closed when the worker has drained the queue after Stop.
func (c *Chain) Exited() <-chan struct{} {
	return c.exited
}

func (c *Chain) wake() {
	select {
	case c.signal <- struct{}{}:
	default:
	}
}

// run is the worker loop.
func (c *Chain) run() {
	defer close(c.exited)

	var model *completion.Model
	for {
		p, ok := c.next()
		if !ok {
			return
		}
		out, err := c.execute(p, model)
		model = out
		c.complete(p, out, err)
	}
}

// next blocks until a job is queued. It returns false once the chain is
// stopped and the queue is empty.
func (c *Chain) next() (*Pending, bool) {
	for {
		c.mu.Lock()
		if len(c.queue) > 0 {
			p := c.queue[0]
			c.queue[0] = nil
			c.queue = c.queue[1:]
			c.mu.Unlock()
			return p, true
		}
		stopped := c.stopped
		c.mu.Unlock()

		if stopped {
			return nil, false
		}
		<-c.signal
	}
}

// execute runs one transformation, converting errors and panics into a
// nil model.
func (c *Chain) execute(p *Pending, in *completion.Model) (out *completion.Model, err error) {
	if c.ctx.Err() != nil {
		return nil, ErrStopped
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("transform panicked", "seq", p.seq, "panic", r, "stack", string(debug.Stack()))
			out, err = nil, fmt.Errorf("%w: %v", ErrTransformPanic, r)
		}
	}()

	out, err = p.fn(c.ctx, in)
	if err != nil {
		if c.ctx.Err() == nil {
			c.logger.Warn("transform failed", "seq", p.seq, "err", err)
		}
		return nil, err
	}
	return out, nil
}

func (c *Chain) complete(p *Pending, out *completion.Model, err error) {
	c.mu.Lock()
	p.model, p.err = out, err
	c.pending--
	stopped := c.stopped
	if !stopped {
		c.current = out
		if p.initial {
			c.unfiltered = out
		}
	}
	c.mu.Unlock()

	// Notify before releasing waiters so an update is always queued by the
	// time WaitForLatest returns.
	if p.notify && !stopped && c.notifier != nil {
		c.notifier(Update{Model: out, Seq: p.seq, Initial: p.initial, Err: err})
	}
	close(p.done)
}
