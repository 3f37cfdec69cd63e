package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/dshills/popcomplete/internal/completion"
	"github.com/dshills/popcomplete/internal/completion/chain"
	"github.com/dshills/popcomplete/internal/completion/match"
	"github.com/dshills/popcomplete/internal/logging"
)

// Config holds a session's collaborators.
type Config struct {
	Provider completion.Provider
	View     completion.TextView
	// Recent returns recently committed display texts, most recent last.
	Recent func() []string
	// FilterState seeds the categorical filter state of the first model.
	FilterState completion.FilterState
	Logger      *log.Logger
	// Notify is called on the chain worker after each notifying job.
	Notify func(s *Session, u chain.Update)
}

// FilterOptions tune a single filter request.
type FilterOptions struct {
	DismissIfEmptyAllowed         bool
	RecheckCaretPosition          bool
	DismissIfLastCharacterDeleted bool
	// FilterState replaces the model's categorical filter state when
	// SetFilterState is true.
	FilterState    completion.FilterState
	SetFilterState bool
}

// Selector picks an item from a model.
type Selector func(m *completion.Model) *completion.Item

// Session is one completion popup lifetime.
type Session struct {
	id       string
	provider completion.Provider
	view     completion.TextView
	recent   func() []string
	initial  completion.FilterState
	logger   *log.Logger
	chain    *chain.Chain

	filterRequestID atomic.Uint64
	started         bool
	trigger         completion.Trigger

	cleanupMu sync.Mutex
	cleanups  []func()
	stopOnce  sync.Once
}

// New creates a session and its chain.
func New(cfg Config) (*Session, error) {
	if cfg.Provider == nil {
		return nil, completion.ErrNoProvider
	}
	if cfg.View == nil {
		return nil, ErrNoView
	}

	s := &Session{
		id:       uuid.NewString(),
		provider: cfg.Provider,
		view:     cfg.View,
		recent:   cfg.Recent,
		initial:  cfg.FilterState,
	}
	if s.recent == nil {
		s.recent = func() []string { return nil }
	}
	s.logger = logging.Component(cfg.Logger, "session").With("session", s.id[:8])

	opts := []chain.Option{chain.WithLogger(s.logger)}
	if cfg.Notify != nil {
		notify := cfg.Notify
		opts = append(opts, chain.WithNotifier(func(u chain.Update) { notify(s, u) }))
	}
	s.chain = chain.New(opts...)
	return s, nil
}

// ID returns the session's correlation id.
func (s *Session) ID() string { return s.id }

// Trigger returns the trigger the computation was started with.
func (s *Session) Trigger() completion.Trigger { return s.trigger }

// Started reports whether StartComputation has queued the provider call.
func (s *Session) Started() bool { return s.started }

// StartComputation queues the provider call for trigger. It reports false
// and does nothing when a computation was already started.
func (s *Session) StartComputation(trigger completion.Trigger) bool {
	if s.started {
		return false
	}
	s.started = true
	s.trigger = trigger

	snap, caret := s.view.Snapshot(), s.view.Caret()
	provider, fs := s.provider, s.initial.Clone()
	s.logger.Debug("computing candidates", "trigger", trigger.Kind, "caret", caret)

	s.chain.EnqueueInitial(func(ctx context.Context, m *completion.Model) (*completion.Model, error) {
		if m != nil {
			return m, nil
		}
		list, err := provider.GetCandidates(ctx, snap, caret, trigger)
		if err != nil {
			return nil, err
		}
		if list == nil || len(list.Items) == 0 {
			return nil, nil
		}
		return completion.NewModel(completion.ModelParams{
			Items:             list.Items,
			Builder:           list.Builder,
			Snapshot:          snap,
			DefaultSpan:       list.DefaultSpan,
			Trigger:           trigger,
			UseSuggestionMode: list.UseSuggestionMode,
			DismissIfEmpty:    list.DismissIfEmpty,
			FilterState:       fs,
		})
	})
	return true
}

// Filter queues a match pass for reason against the current buffer state.
func (s *Session) Filter(reason completion.FilterReason, opts FilterOptions) {
	s.enqueueFilter(reason, opts, false)
}

// IdentifyBestMatchAndFilterToAllItems queues a match pass that keeps its
// selection but shows every item again. Used when committing a unique item.
func (s *Session) IdentifyBestMatchAndFilterToAllItems(reason completion.FilterReason, opts FilterOptions) {
	s.enqueueFilter(reason, opts, true)
}

func (s *Session) enqueueFilter(reason completion.FilterReason, opts FilterOptions, widen bool) {
	id := s.filterRequestID.Add(1)
	req := match.Request{
		Snapshot:                      s.view.Snapshot(),
		Caret:                         s.view.Caret(),
		Reason:                        reason,
		RecheckCaretPosition:          opts.RecheckCaretPosition,
		DismissIfEmptyAllowed:         opts.DismissIfEmptyAllowed,
		DismissIfLastCharacterDeleted: opts.DismissIfLastCharacterDeleted,
		Recent:                        s.recent(),
	}
	fs := opts.FilterState.Clone()

	s.chain.Enqueue(func(ctx context.Context, m *completion.Model) (*completion.Model, error) {
		if m == nil {
			return nil, nil
		}
		r := req
		r.Superseded = func() bool {
			return ctx.Err() != nil || s.filterRequestID.Load() != id
		}
		if opts.SetFilterState {
			m = m.WithFilterState(fs)
		}
		out := match.Filter(m, r)
		if widen && out != nil && !r.Superseded() {
			out = out.WithFilteredItems(out.TotalItems())
		}
		return out, nil
	}, true)
}

// SetSelectedItem queues a job selecting the item chosen by selector. An
// item outside the visible set makes every item visible again.
func (s *Session) SetSelectedItem(selector Selector) {
	s.chain.Enqueue(func(ctx context.Context, m *completion.Model) (*completion.Model, error) {
		if m == nil {
			return nil, nil
		}
		item := selector(m)
		if item == nil {
			return m, nil
		}
		if item != m.Builder() && !contains(m.FilteredItems(), item) {
			if !contains(m.TotalItems(), item) {
				return m, nil
			}
			m = m.WithFilteredItems(m.TotalItems())
		}
		return m.WithSelectedItem(item).WithHardSelection(true), nil
	}, true)
}

// Enqueue queues an arbitrary transformation.
func (s *Session) Enqueue(fn chain.Transform, notify bool) *chain.Pending {
	return s.chain.Enqueue(fn, notify)
}

// WaitForModel blocks until every queued job has completed.
func (s *Session) WaitForModel(ctx context.Context) (*completion.Model, error) {
	return s.chain.WaitForLatest(ctx)
}

// CurrentModel returns the latest model; ok is false while work is queued.
func (s *Session) CurrentModel() (*completion.Model, bool) {
	return s.chain.Current()
}

// CurrentUnfilteredModel returns the provider's model, or nil if it is not ready.
func (s *Session) CurrentUnfilteredModel() *completion.Model {
	return s.chain.CurrentUnfilteredModel()
}

// FilterRequestID returns the id of the newest filter request.
func (s *Session) FilterRequestID() uint64 {
	return s.filterRequestID.Load()
}

// AddCleanup registers fn to run when the session stops.
func (s *Session) AddCleanup(fn func()) {
	s.cleanupMu.Lock()
	s.cleanups = append(s.cleanups, fn)
	s.cleanupMu.Unlock()
}

// Stop runs the cleanups and abandons the chain. Stop is idempotent.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.cleanupMu.Lock()
		cleanups := s.cleanups
		s.cleanups = nil
		s.cleanupMu.Unlock()
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
		s.chain.Stop()
		s.logger.Debug("session stopped")
	})
}

// Stopped reports whether Stop has been called.
func (s *Session) Stopped() bool {
	return s.chain.Stopped()
}

func contains(items []*completion.Item, item *completion.Item) bool {
	for _, it := range items {
		if it == item {
			return true
		}
	}
	return false
}
