package event

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/dshills/popcomplete/internal/logging"
)

// Handler receives events.
type Handler func(ctx context.Context, env Envelope) error

type subscription struct {
	id      uint64
	pattern Topic
	handler Handler
}

// Stats are delivery counters.
type Stats struct {
	Published uint64
	Delivered uint64
	Errors    uint64
	Panics    uint64
}

// Bus delivers events to subscribers whose pattern matches the topic.
// It is safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	subs   []*subscription
	nextID uint64
	logger *log.Logger

	published atomic.Uint64
	delivered atomic.Uint64
	errs      atomic.Uint64
	panics    atomic.Uint64
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithLogger sets the logger used for handler failures.
func WithLogger(l *log.Logger) BusOption {
	return func(b *Bus) {
		b.logger = l
	}
}

// NewBus creates an empty bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = logging.Discard()
	}
	return b
}

// Subscribe registers handler for topics matching pattern. The returned
// function removes the subscription.
func (b *Bus) Subscribe(pattern Topic, handler Handler) (func(), error) {
	if !pattern.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTopic, pattern)
	}
	if handler == nil {
		return nil, ErrNilHandler
	}

	b.mu.Lock()
	b.nextID++
	sub := &subscription{id: b.nextID, pattern: pattern, handler: handler}
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(sub.id) })
	}, nil
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Count returns the number of subscriptions.
func (b *Bus) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish delivers env to every matching subscriber in subscription order.
// Handler errors and panics are joined into the returned error.
func (b *Bus) Publish(ctx context.Context, env Envelope) error {
	if !env.Topic.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTopic, env.Topic)
	}
	b.published.Add(1)

	b.mu.RLock()
	var targets []*subscription
	for _, s := range b.subs {
		if env.Topic.Matches(s.pattern) {
			targets = append(targets, s)
		}
	}
	b.mu.RUnlock()

	var errs []error
	for _, s := range targets {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := b.deliver(ctx, s, env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) deliver(ctx context.Context, s *subscription, env Envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
			b.logger.Warn("event handler panicked", "topic", env.Topic, "pattern", s.pattern, "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()

	b.delivered.Add(1)
	if err = s.handler(ctx, env); err != nil {
		b.errs.Add(1)
		b.logger.Debug("event handler failed", "topic", env.Topic, "err", err)
	}
	return err
}

// Stats returns the delivery counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Published: b.published.Load(),
		Delivered: b.delivered.Load(),
		Errors:    b.errs.Load(),
		Panics:    b.panics.Load(),
	}
}

// Publish is a typed convenience wrapper around Bus.Publish.
func Publish[T any](ctx context.Context, b *Bus, e Event[T]) error {
	if b == nil {
		return nil
	}
	return b.Publish(ctx, e.Envelope())
}
