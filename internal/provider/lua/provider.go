package lua

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/popcomplete/internal/completion"
	"github.com/dshills/popcomplete/internal/logging"
	"github.com/dshills/popcomplete/internal/provider"
	"github.com/dshills/popcomplete/internal/text"
)

// DefaultTimeout bounds a single complete call.
const DefaultTimeout = 250 * time.Millisecond

// completeFunc is the global the script must define.
const completeFunc = "complete"

// Provider completes from a Lua script. Calls are serialized on the
// script's state.
type Provider struct {
	name    string
	state   *State
	timeout time.Duration
	logger  *log.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithTimeout bounds each complete call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.timeout = d
	}
}

// WithName sets the default filter category of the script's items.
func WithName(name string) Option {
	return func(p *Provider) {
		p.name = name
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Provider) {
		p.logger = logging.Component(l, "lua")
	}
}

// New runs script and returns a provider calling its complete function.
func New(script string, opts ...Option) (*Provider, error) {
	p := &Provider{
		name:    "script",
		timeout: DefaultTimeout,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.state = NewState()
	if err := p.state.DoString(script); err != nil {
		p.state.Close()
		return nil, fmt.Errorf("failed to load script %s: %w", p.name, err)
	}
	if !p.state.HasFunction(completeFunc) {
		p.state.Close()
		return nil, fmt.Errorf("%w: %s", ErrNoComplete, p.name)
	}
	return p, nil
}

// Open loads the script at path. The provider is named after the file
// unless WithName says otherwise.
func Open(path string, opts ...Option) (*Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}
	base := filepath.Base(path)
	opts = append([]Option{WithName(strings.TrimSuffix(base, filepath.Ext(base)))}, opts...)
	return New(string(data), opts...)
}

// Name returns the provider's category name.
func (p *Provider) Name() string {
	return p.name
}

// Close releases the Lua state.
func (p *Provider) Close() error {
	return p.state.Close()
}

// GetCandidates calls complete(prefix, trigger, buffer).
func (p *Provider) GetCandidates(ctx context.Context, snap text.Snapshot, caret int, trigger completion.Trigger) (*completion.CandidateList, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	list := &completion.CandidateList{
		DefaultSpan:    provider.WordSpan(snap, caret),
		DismissIfEmpty: true,
	}
	err := p.state.Do(ctx, func(L *lua.LState) error {
		results, err := Call(L, completeFunc,
			lua.LString(provider.Prefix(snap, caret)),
			triggerTable(L, trigger),
			bufferTable(L, snap, caret),
		)
		if err != nil {
			return err
		}
		if len(results) == 0 || results[0] == lua.LNil {
			return nil
		}
		if list.Items, err = p.toItems(results[0]); err != nil {
			return err
		}
		if len(results) > 1 {
			if opts, ok := results[1].(*lua.LTable); ok {
				p.applyOptions(list, opts)
			}
		}
		return nil
	})
	if err != nil {
		if !isContextError(err) {
			p.logger.Warn("complete failed", "script", p.name, "error", err)
		}
		return nil, err
	}
	return list, nil
}

// GetChange inserts the item over its span.
func (p *Provider) GetChange(_ context.Context, _ text.Snapshot, item *completion.Item, span text.Span, _ rune) (completion.TextChange, error) {
	return completion.DefaultChange(item, span), nil
}

func triggerTable(L *lua.LState, trigger completion.Trigger) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("kind", lua.LString(trigger.Kind.String()))
	if trigger.Char != 0 {
		t.RawSetString("char", lua.LString(string(trigger.Char)))
	}
	return t
}

func bufferTable(L *lua.LState, snap text.Snapshot, caret int) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("text", lua.LString(snap.Text()))
	t.RawSetString("caret", lua.LNumber(caret))
	return t
}

func (p *Provider) toItems(v lua.LValue) ([]*completion.Item, error) {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w: expected a list, got %s", ErrBadResult, v.Type())
	}
	items := make([]*completion.Item, 0, tbl.Len())
	for i := 1; i <= tbl.Len(); i++ {
		it, err := p.toItem(tbl.RawGetInt(i))
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, it)
	}
	return items, nil
}

func (p *Provider) toItem(v lua.LValue) (*completion.Item, error) {
	switch v := v.(type) {
	case lua.LString:
		if v == "" {
			return nil, fmt.Errorf("%w: empty label", ErrBadResult)
		}
		return &completion.Item{DisplayText: string(v), Filters: []string{p.name}}, nil
	case *lua.LTable:
		label := lua.LVAsString(v.RawGetString("label"))
		if label == "" {
			return nil, fmt.Errorf("%w: item without label", ErrBadResult)
		}
		it := &completion.Item{
			DisplayText: label,
			InsertText:  lua.LVAsString(v.RawGetString("insert")),
			FilterText:  lua.LVAsString(v.RawGetString("filter")),
			SortText:    lua.LVAsString(v.RawGetString("sort")),
			Detail:      lua.LVAsString(v.RawGetString("detail")),
			Filters:     []string{p.name},
		}
		if kind := lua.LVAsString(v.RawGetString("kind")); kind != "" {
			k, ok := completion.ParseKind(kind)
			if !ok {
				p.logger.Warn("unknown item kind", "label", label, "kind", kind)
			}
			it.Kind = k
		}
		if category := lua.LVAsString(v.RawGetString("category")); category != "" {
			it.Filters = []string{category}
		}
		if n, ok := v.RawGetString("priority").(lua.LNumber); ok {
			it.Rules.MatchPriority = int(n)
		}
		if commit, ok := v.RawGetString("commit").(lua.LString); ok {
			it.Rules.CommitCharacters = []rune(string(commit))
		}
		return it, nil
	default:
		return nil, fmt.Errorf("%w: unexpected %s", ErrBadResult, v.Type())
	}
}

func (p *Provider) applyOptions(list *completion.CandidateList, opts *lua.LTable) {
	list.UseSuggestionMode = lua.LVAsBool(opts.RawGetString("suggestion_mode"))
	if b := lua.LVAsString(opts.RawGetString("builder")); b != "" {
		list.Builder = &completion.Item{DisplayText: b, Filters: []string{p.name}}
	}
	if v, ok := opts.RawGetString("dismiss_if_empty").(lua.LBool); ok {
		list.DismissIfEmpty = bool(v)
	}
}
