// Package words offers the identifiers already present in the buffer.
package words

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/dshills/popcomplete/internal/completion"
	"github.com/dshills/popcomplete/internal/logging"
	"github.com/dshills/popcomplete/internal/provider"
	"github.com/dshills/popcomplete/internal/text"
)

// Category is the filter category of buffer words.
const Category = "words"

// Defaults.
const (
	DefaultMinLength = 3
	DefaultMaxItems  = 500
)

// entry is the trie value: every spelling of one case-folded word.
type entry struct {
	forms map[string]int
}

// Provider completes identifiers found in the buffer. The index is rebuilt
// once per snapshot version.
type Provider struct {
	minLength int
	maxItems  int
	logger    *log.Logger

	mu      sync.Mutex
	version int
	trie    *patricia.Trie
	indexed bool
	items   map[string]*completion.Item
}

// Option configures a Provider.
type Option func(*Provider)

// WithMinLength skips words shorter than n runes.
func WithMinLength(n int) Option {
	return func(p *Provider) {
		if n > 0 {
			p.minLength = n
		}
	}
}

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
		p.logger = logging.Component(l, "words")
	}
}

// New creates a buffer word provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		minLength: DefaultMinLength,
		maxItems:  DefaultMaxItems,
		logger:    logging.Discard(),
		items:     make(map[string]*completion.Item),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetCandidates returns buffer words sharing the first letter of the word
// at caret, or every word when nothing has been typed. The word being
// typed is left out unless it also appears elsewhere.
func (p *Provider) GetCandidates(ctx context.Context, snap text.Snapshot, caret int, _ completion.Trigger) (*completion.CandidateList, error) {
	span := provider.WordSpan(snap, caret)
	typed := snap.Slice(span)

	trie, err := p.index(ctx, snap)
	if err != nil {
		return nil, err
	}

	key := ""
	if prefix := provider.Prefix(snap, caret); prefix != "" {
		r := []rune(strings.ToLower(prefix))
		key = string(r[:1])
	}

	type found struct {
		word  string
		count int
	}
	var words []found
	err = provider.VisitPrefix(trie, key, func(_ patricia.Prefix, item patricia.Item) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		e := item.(*entry)
		for form, n := range e.forms {
			if form == typed {
				n--
			}
			if n > 0 {
				words = append(words, found{form, n})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(words, func(i, j int) bool {
		if words[i].count != words[j].count {
			return words[i].count > words[j].count
		}
		return words[i].word < words[j].word
	})
	if len(words) > p.maxItems {
		words = words[:p.maxItems]
	}

	list := &completion.CandidateList{DefaultSpan: span, DismissIfEmpty: true}
	p.mu.Lock()
	for _, w := range words {
		list.Items = append(list.Items, p.item(w.word))
	}
	p.mu.Unlock()
	p.logger.Debug("buffer words", "prefix", key, "candidates", len(list.Items))
	return list, nil
}

// GetChange inserts the word over its span.
func (p *Provider) GetChange(_ context.Context, _ text.Snapshot, item *completion.Item, span text.Span, _ rune) (completion.TextChange, error) {
	return completion.DefaultChange(item, span), nil
}

// item returns the shared item for word. Callers hold p.mu.
func (p *Provider) item(word string) *completion.Item {
	it, ok := p.items[word]
	if !ok {
		it = &completion.Item{
			DisplayText: word,
			Kind:        completion.KindText,
			Detail:      "buffer",
			Filters:     []string{Category},
		}
		p.items[word] = it
	}
	return it
}

// index returns the trie for snap, building it when the version changed.
func (p *Provider) index(ctx context.Context, snap text.Snapshot) (*patricia.Trie, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.indexed && p.version == snap.Version() {
		return p.trie, nil
	}

	trie := patricia.NewTrie()
	var err error
	n := 0
	provider.Words(snap.Text(), func(word string, _ int) bool {
		n++
		if n%1024 == 0 {
			if err = ctx.Err(); err != nil {
				return false
			}
		}
		if len([]rune(word)) < p.minLength {
			return true
		}
		key := patricia.Prefix(strings.ToLower(word))
		if v := trie.Get(key); v != nil {
			v.(*entry).forms[word]++
			return true
		}
		trie.Insert(key, &entry{forms: map[string]int{word: 1}})
		return true
	})
	if err != nil {
		return nil, err
	}

	for word := range p.items {
		v := trie.Get(patricia.Prefix(strings.ToLower(word)))
		if v == nil || v.(*entry).forms[word] == 0 {
			delete(p.items, word)
		}
	}
	p.trie, p.version, p.indexed = trie, snap.Version(), true
	p.logger.Debug("buffer indexed", "version", snap.Version(), "words", n)
	return trie, nil
}
