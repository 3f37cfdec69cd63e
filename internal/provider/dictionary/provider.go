package dictionary

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/dshills/popcomplete/internal/completion"
	"github.com/dshills/popcomplete/internal/logging"
	"github.com/dshills/popcomplete/internal/provider"
	"github.com/dshills/popcomplete/internal/text"
)

// DefaultMaxItems caps the candidates returned per request.
const DefaultMaxItems = 1000

// ranked pairs an item with its dictionary rank for ordering.
type ranked struct {
	item *completion.Item
	rank int
}

// Provider completes words from one or more dictionaries. It is immutable
// after New and safe for concurrent use.
type Provider struct {
	trie     *patricia.Trie
	count    int
	maxItems int
	logger   *log.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithMaxItems caps the candidates returned per request.
func WithMaxItems(n int) Option {
	return func(p *Provider) {
		if n > 0 {
			p.maxItems = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Provider) {
		p.logger = logging.Component(l, "dictionary")
	}
}

// New indexes dicts.
func New(dicts []*Dictionary, opts ...Option) *Provider {
	p := &Provider{
		trie:     patricia.NewTrie(),
		maxItems: DefaultMaxItems,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	for _, d := range dicts {
		for _, e := range d.Entries {
			p.add(d.Name, e)
		}
		p.logger.Debug("dictionary indexed", "name", d.Name, "entries", len(d.Entries))
	}
	return p
}

// Open loads every path and indexes the dictionaries.
func Open(paths []string, opts ...Option) (*Provider, error) {
	dicts := make([]*Dictionary, 0, len(paths))
	for _, path := range paths {
		d, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		dicts = append(dicts, d)
	}
	return New(dicts, opts...), nil
}

// Len returns the number of indexed entries.
func (p *Provider) Len() int {
	return p.count
}

func (p *Provider) add(category string, e Entry) {
	kind := completion.KindText
	if e.Kind != "" {
		if k, ok := completion.ParseKind(e.Kind); ok {
			kind = k
		} else {
			p.logger.Warn("unknown item kind", "word", e.Word, "kind", e.Kind)
		}
	}
	it := &completion.Item{
		DisplayText: e.Word,
		InsertText:  e.Insert,
		Detail:      e.Detail,
		Kind:        kind,
		Filters:     []string{category},
	}
	if e.Rank > 0 {
		it.SortText = fmt.Sprintf("%08d", e.Rank)
	}

	key := patricia.Prefix(strings.ToLower(e.Word))
	r := ranked{item: it, rank: e.Rank}
	if v := p.trie.Get(key); v != nil {
		p.trie.Set(key, append(v.([]ranked), r))
	} else {
		p.trie.Insert(key, []ranked{r})
	}
	p.count++
}

// GetCandidates returns entries sharing the first letter of the word at
// caret, or every entry when nothing has been typed. Ranked entries come
// first.
func (p *Provider) GetCandidates(ctx context.Context, snap text.Snapshot, caret int, _ completion.Trigger) (*completion.CandidateList, error) {
	key := ""
	if prefix := provider.Prefix(snap, caret); prefix != "" {
		key = string([]rune(strings.ToLower(prefix))[:1])
	}

	var found []ranked
	err := provider.VisitPrefix(p.trie, key, func(_ patricia.Prefix, item patricia.Item) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		found = append(found, item.([]ranked)...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(found, func(i, j int) bool {
		a, b := found[i], found[j]
		if (a.rank > 0) != (b.rank > 0) {
			return a.rank > 0
		}
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		return a.item.DisplayText < b.item.DisplayText
	})
	if len(found) > p.maxItems {
		found = found[:p.maxItems]
	}

	list := &completion.CandidateList{
		DefaultSpan:    provider.WordSpan(snap, caret),
		DismissIfEmpty: true,
		Items:          make([]*completion.Item, 0, len(found)),
	}
	for _, r := range found {
		list.Items = append(list.Items, r.item)
	}
	return list, nil
}

// GetChange inserts the entry over its span.
func (p *Provider) GetChange(_ context.Context, _ text.Snapshot, item *completion.Item, span text.Span, _ rune) (completion.TextChange, error) {
	return completion.DefaultChange(item, span), nil
}
