// Package multi merges several completion providers into one.
package multi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/popcomplete/internal/completion"
	"github.com/dshills/popcomplete/internal/logging"
	"github.com/dshills/popcomplete/internal/text"
)

// DefaultTimeout bounds each provider's share of a request.
const DefaultTimeout = 500 * time.Millisecond

// maxConcurrent limits parallel provider calls.
const maxConcurrent = 8

// ErrUnknownItem is returned by GetChange for an item that no provider
// produced in the latest request.
var ErrUnknownItem = errors.New("multi: item not from the latest request")

// Provider fans a request out to its providers and merges the results in
// provider order. A failing provider is skipped; the request fails only
// when every provider does.
type Provider struct {
	providers []completion.Provider
	timeout   time.Duration
	logger    *log.Logger

	mu     sync.Mutex
	owners map[*completion.Item]completion.Provider
}

// Option configures a Provider.
type Option func(*Provider)

// WithTimeout bounds each provider call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Provider) {
		p.logger = logging.Component(l, "multi")
	}
}

// New combines providers. Nil entries are ignored.
func New(providers []completion.Provider, opts ...Option) *Provider {
	p := &Provider{
		timeout: DefaultTimeout,
		logger:  logging.Discard(),
		owners:  make(map[*completion.Item]completion.Provider),
	}
	for _, opt := range opts {
		opt(p)
	}
	for _, sub := range providers {
		if sub != nil {
			p.providers = append(p.providers, sub)
		}
	}
	return p
}

// Len returns the number of providers.
func (p *Provider) Len() int {
	return len(p.providers)
}

type result struct {
	list *completion.CandidateList
	err  error
}

// GetCandidates queries every provider concurrently.
//
// The default span and builder come from the first provider that answers.
// Suggestion mode is on when any provider asks for it; dismiss-if-empty
// only when all of them do. Items whose provider used a different default
// span are copied with that span made explicit.
func (p *Provider) GetCandidates(ctx context.Context, snap text.Snapshot, caret int, trigger completion.Trigger) (*completion.CandidateList, error) {
	results := make([]result, len(p.providers))

	var g errgroup.Group
	g.SetLimit(maxConcurrent)
	for i, sub := range p.providers {
		i, sub := i, sub
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i].err = ctx.Err()
				return nil
			}
			results[i] = p.query(ctx, sub, snap, caret, trigger)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	owners := make(map[*completion.Item]completion.Provider)
	var merged *completion.CandidateList
	var errs []error
	for i, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		if r.list == nil {
			continue
		}
		if merged == nil {
			merged = &completion.CandidateList{
				DefaultSpan:    r.list.DefaultSpan,
				Builder:        r.list.Builder,
				DismissIfEmpty: true,
			}
			if r.list.Builder != nil {
				owners[r.list.Builder] = p.providers[i]
			}
		}
		merged.UseSuggestionMode = merged.UseSuggestionMode || r.list.UseSuggestionMode
		merged.DismissIfEmpty = merged.DismissIfEmpty && r.list.DismissIfEmpty

		for _, it := range r.list.Items {
			if it == nil {
				continue
			}
			if it.Span == nil && r.list.DefaultSpan != merged.DefaultSpan {
				span := r.list.DefaultSpan
				cp := *it
				cp.Span = &span
				it = &cp
			}
			owners[it] = p.providers[i]
			merged.Items = append(merged.Items, it)
		}
	}

	if len(errs) > 0 && len(errs) == len(p.providers) {
		return nil, fmt.Errorf("all providers failed: %w", errors.Join(errs...))
	}

	p.mu.Lock()
	p.owners = owners
	p.mu.Unlock()

	return merged, nil
}

func (p *Provider) query(ctx context.Context, sub completion.Provider, snap text.Snapshot, caret int, trigger completion.Trigger) (r result) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	defer func() {
		if v := recover(); v != nil {
			r = result{err: fmt.Errorf("provider panic: %v", v)}
		}
		if r.err != nil {
			p.logger.Warn("provider failed", "provider", fmt.Sprintf("%T", sub), "error", r.err)
		}
	}()
	list, err := sub.GetCandidates(ctx, snap, caret, trigger)
	return result{list: list, err: err}
}

// GetChange asks the provider that produced item.
func (p *Provider) GetChange(ctx context.Context, snap text.Snapshot, item *completion.Item, span text.Span, commitChar rune) (completion.TextChange, error) {
	p.mu.Lock()
	owner, ok := p.owners[item]
	p.mu.Unlock()
	if !ok {
		return completion.TextChange{}, fmt.Errorf("%w: %q", ErrUnknownItem, item.DisplayText)
	}
	return owner.GetChange(ctx, snap, item, span, commitChar)
}
