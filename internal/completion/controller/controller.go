package controller

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dshills/popcomplete/internal/completion"
	"github.com/dshills/popcomplete/internal/completion/chain"
	"github.com/dshills/popcomplete/internal/completion/session"
	"github.com/dshills/popcomplete/internal/event"
	"github.com/dshills/popcomplete/internal/logging"
	"github.com/dshills/popcomplete/internal/text"
)

// ErrNoView is returned when a controller is created without a text view.
var ErrNoView = errors.New("controller: no text view")

// State is the controller state.
type State uint8

const (
	// StateIdle means no session exists.
	StateIdle State = iota
	// StateActive means a session exists; its model may still be computing.
	StateActive
)

// String returns the state name.
func (s State) String() string {
	if s == StateActive {
		return "Active"
	}
	return "Idle"
}

// Config holds the controller's collaborators.
type Config struct {
	View      completion.TextView
	Provider  completion.Provider
	Presenter completion.Presenter
	// Formatter is optional.
	Formatter completion.Formatter
	// Bus receives lifecycle events. Optional.
	Bus     *event.Bus
	Logger  *log.Logger
	Options Options
}

// Controller is the completion state machine for one view.
type Controller struct {
	view      completion.TextView
	provider  completion.Provider
	presenter completion.Presenter
	formatter completion.Formatter
	bus       *event.Bus
	logger    *log.Logger
	opts      Options
	mru       *MRU

	session     *session.Session
	filterState completion.FilterState
	unsubscribe []func()

	mbMu    sync.Mutex
	mailbox []func()
	wake    chan struct{}
}

// New creates an idle controller.
func New(cfg Config) (*Controller, error) {
	if cfg.View == nil {
		return nil, ErrNoView
	}
	if cfg.Provider == nil {
		return nil, completion.ErrNoProvider
	}
	opts := cfg.Options.withDefaults()
	c := &Controller{
		view:      cfg.View,
		provider:  cfg.Provider,
		presenter: cfg.Presenter,
		formatter: cfg.Formatter,
		bus:       cfg.Bus,
		logger:    logging.Component(cfg.Logger, "controller"),
		opts:      opts,
		mru:       NewMRU(opts.MRUCapacity),
		wake:      make(chan struct{}, 1),
	}
	if c.presenter == nil {
		c.presenter = nopPresenter{}
	}
	return c, nil
}

// State returns the current state.
func (c *Controller) State() State {
	if c.session != nil {
		return StateActive
	}
	return StateIdle
}

// SessionID returns the active session's id, or "".
func (c *Controller) SessionID() string {
	if c.session == nil {
		return ""
	}
	return c.session.ID()
}

// Recent returns the recently committed display texts, most recent last.
func (c *Controller) Recent() []string {
	return c.mru.Items()
}

// Options returns the options in effect.
func (c *Controller) Options() Options {
	return c.opts
}

// SetOptions replaces the options. The MRU keeps its entries but adopts a
// new capacity on the next commit.
func (c *Controller) SetOptions(opts Options) {
	opts = opts.withDefaults()
	if opts.MRUCapacity != c.opts.MRUCapacity {
		old := c.mru.Items()
		c.mru = NewMRU(opts.MRUCapacity)
		for _, n := range old {
			c.mru.Add(n)
		}
	}
	c.opts = opts
}

// Model returns the active session's latest model and whether it is
// current. It never blocks.
func (c *Controller) Model() (*completion.Model, bool) {
	if c.session == nil {
		return nil, false
	}
	return c.session.CurrentModel()
}

// Wake signals that Pump has work to do.
func (c *Controller) Wake() <-chan struct{} {
	return c.wake
}

// Pump runs everything posted to the mailbox. Call it from the
// interactive goroutine after Wake fires.
func (c *Controller) Pump() {
	for {
		c.mbMu.Lock()
		msgs := c.mailbox
		c.mailbox = nil
		c.mbMu.Unlock()
		if len(msgs) == 0 {
			return
		}
		for _, fn := range msgs {
			fn()
		}
	}
}

// Sync waits for the active session to finish queued work and pumps the
// results. Replay mode and tests use it to make each step deterministic.
func (c *Controller) Sync(ctx context.Context) error {
	c.Pump()
	if s := c.session; s != nil {
		if _, err := s.WaitForModel(ctx); err != nil && !errors.Is(err, chain.ErrStopped) {
			return err
		}
	}
	c.Pump()
	return nil
}

// Close dismisses any active session.
func (c *Controller) Close() {
	c.dismiss("closed")
}

// post queues fn for the interactive goroutine. It never blocks.
func (c *Controller) post(fn func()) {
	c.mbMu.Lock()
	c.mailbox = append(c.mailbox, fn)
	c.mbMu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// start creates a session for trigger and queues the provider call.
func (c *Controller) start(trigger completion.Trigger) *session.Session {
	s, err := session.New(session.Config{
		Provider:    c.provider,
		View:        c.view,
		Recent:      c.Recent,
		FilterState: c.filterState,
		Logger:      c.logger,
		Notify: func(s *session.Session, u chain.Update) {
			c.post(func() { c.onUpdate(s, u) })
		},
	})
	if err != nil {
		c.logger.Warn("cannot start session", "err", err)
		return nil
	}
	c.session = s
	c.connect()
	s.AddCleanup(c.disconnect)
	s.StartComputation(trigger)

	caret := c.view.Caret()
	c.logger.Debug("session started", "session", s.ID(), "trigger", trigger.Kind, "caret", caret)
	publishEvent(c, event.New(event.TopicSessionStarted, event.SessionStarted{
		SessionID: s.ID(),
		Trigger:   trigger.Kind.String(),
		Caret:     caret,
	}, "controller").WithCorrelation(s.ID()))
	return s
}

// dismiss stops the active session and hides the popup.
func (c *Controller) dismiss(reason string) {
	s := c.session
	if s == nil {
		return
	}
	c.session = nil
	s.Stop()
	c.presenter.Dismiss()

	c.logger.Debug("session dismissed", "session", s.ID(), "reason", reason)
	publishEvent(c, event.New(event.TopicSessionDismissed, event.SessionDismissed{
		SessionID: s.ID(),
		Reason:    reason,
	}, "controller").WithCorrelation(s.ID()))
}

// onUpdate handles a completed chain job on the interactive goroutine.
func (c *Controller) onUpdate(s *session.Session, _ chain.Update) {
	if s != c.session {
		return
	}
	m, ok := s.CurrentModel()
	if !ok {
		// Newer work is queued; its update will follow.
		return
	}
	if m == nil {
		c.dismiss("no model")
		return
	}
	c.present(m)
}

func (c *Controller) present(m *completion.Model) {
	snap := c.view.Snapshot()
	caret := c.view.Caret()

	span := m.ApplicableSpan(snap)
	if sel := m.SelectedItem(); sel != nil {
		span = m.TrackingSpan(sel).Span(snap)
	}
	filterEnd := span.End
	if caret < filterEnd && caret >= span.Start {
		filterEnd = caret
	}

	c.presenter.Present(completion.View{
		Span:              span,
		Items:             m.FilteredItems(),
		Selected:          m.SelectedItem(),
		Builder:           m.Builder(),
		UseSuggestionMode: m.UseSuggestionMode(),
		SoftSelection:     !m.IsHardSelection(),
		FilterState:       m.FilterState(),
		FilterText:        snap.Slice(text.NewSpan(span.Start, filterEnd)),
	})

	selected := ""
	if sel := m.SelectedItem(); sel != nil {
		selected = sel.DisplayText
	}
	id := c.SessionID()
	publishEvent(c, event.New(event.TopicModelUpdated, event.ModelUpdated{
		SessionID:     id,
		Visible:       len(m.FilteredItems()),
		Total:         len(m.TotalItems()),
		Selected:      selected,
		HardSelection: m.IsHardSelection(),
		Unique:        m.IsUnique(),
	}, "controller").WithCorrelation(id))
}

// waitForModel blocks for the active session's latest model. A timeout or
// a missing model dismisses the session and returns nil.
func (c *Controller) waitForModel() *completion.Model {
	s := c.session
	if s == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.WaitTimeout)
	defer cancel()

	m, err := s.WaitForModel(ctx)
	if err != nil {
		c.logger.Warn("waiting for completion model failed", "session", s.ID(), "err", err)
		c.dismiss("wait failed")
		return nil
	}
	if m == nil {
		c.dismiss("no model")
		return nil
	}
	return m
}

// filter forwards a filter request to the active session.
func (c *Controller) filter(reason completion.FilterReason, opts session.FilterOptions) {
	if c.session == nil {
		return
	}
	c.session.Filter(reason, opts)
}

// connect subscribes to caret and text changes made outside the
// controller's own commands.
func (c *Controller) connect() {
	if len(c.unsubscribe) > 0 {
		return
	}
	c.unsubscribe = append(c.unsubscribe,
		c.view.OnCaretMoved(c.onCaretMoved),
		c.view.OnTextChanged(c.onTextChanged),
	)
}

func (c *Controller) disconnect() {
	for _, fn := range c.unsubscribe {
		fn()
	}
	c.unsubscribe = nil
}

// withoutListeners runs fn with the view listeners disconnected.
func (c *Controller) withoutListeners(fn func()) {
	if fn == nil {
		return
	}
	connected := len(c.unsubscribe) > 0
	if connected {
		c.disconnect()
	}
	fn()
	if connected && c.session != nil {
		c.connect()
	}
}

func (c *Controller) onCaretMoved(ev text.CaretEvent) {
	if c.session == nil || ev.ByEdit {
		return
	}
	c.filter(completion.FilterCaretPositionChanged, session.FilterOptions{RecheckCaretPosition: true})
}

func (c *Controller) onTextChanged(text.ChangeEvent) {
	if c.session == nil {
		return
	}
	c.filter(completion.FilterOther, session.FilterOptions{RecheckCaretPosition: true})
}

func publishEvent[T any](c *Controller, e event.Event[T]) {
	if c.bus == nil {
		return
	}
	if err := event.Publish(context.Background(), c.bus, e); err != nil {
		c.logger.Debug("event delivery failed", "topic", e.Topic, "err", err)
	}
}

type nopPresenter struct{}

func (nopPresenter) Present(completion.View) {}

func (nopPresenter) Navigate(completion.NavKey) bool { return false }

func (nopPresenter) Dismiss() {}
