package multi

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dshills/popcomplete/internal/completion"
	"github.com/dshills/popcomplete/internal/text"
)

type stubProvider struct {
	items      []*completion.Item
	span       text.Span
	builder    *completion.Item
	suggestion bool
	keepEmpty  bool
	delay      time.Duration
	err        error
	panics     bool
	insert     string
}

func stub(span text.Span, names ...string) *stubProvider {
	s := &stubProvider{span: span}
	for _, n := range names {
		s.items = append(s.items, &completion.Item{DisplayText: n})
	}
	return s
}

func (s *stubProvider) GetCandidates(ctx context.Context, _ text.Snapshot, _ int, _ completion.Trigger) (*completion.CandidateList, error) {
	if s.panics {
		panic("boom")
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &completion.CandidateList{
		Items:             s.items,
		DefaultSpan:       s.span,
		Builder:           s.builder,
		UseSuggestionMode: s.suggestion,
		DismissIfEmpty:    !s.keepEmpty,
	}, nil
}

func (s *stubProvider) GetChange(_ context.Context, _ text.Snapshot, item *completion.Item, span text.Span, _ rune) (completion.TextChange, error) {
	change := completion.DefaultChange(item, span)
	if s.insert != "" {
		change.NewText = s.insert
	}
	return change, nil
}

func names(items []*completion.Item) string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.DisplayText
	}
	return strings.Join(out, ",")
}

func get(t *testing.T, p *Provider) (*completion.CandidateList, error) {
	t.Helper()
	snap := text.NewSnapshot("hello wo")
	return p.GetCandidates(context.Background(), snap, snap.Len(), completion.InvokeTrigger())
}

func TestMergeOrder(t *testing.T) {
	span := text.NewSpan(6, 8)
	slow := stub(span, "world", "worm")
	slow.delay = 30 * time.Millisecond
	fast := stub(span, "word")

	p := New([]completion.Provider{slow, nil, fast})
	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}
	list, err := get(t, p)
	if err != nil {
		t.Fatalf("GetCandidates() error = %v", err)
	}
	if got := names(list.Items); got != "world,worm,word" {
		t.Errorf("items = %q, want provider order", got)
	}
	if list.DefaultSpan != span {
		t.Errorf("DefaultSpan = %v, want %v", list.DefaultSpan, span)
	}
	if list.Items[0] != slow.items[0] {
		t.Error("items with the shared default span should keep their identity")
	}
}

func TestMergeFlags(t *testing.T) {
	span := text.NewSpan(6, 8)
	builder := &completion.Item{DisplayText: "<new>"}

	a := stub(span, "a")
	a.builder = builder
	b := stub(span, "b")
	b.suggestion = true
	b.keepEmpty = true
	c := stub(span, "c")
	c.builder = &completion.Item{DisplayText: "<other>"}

	list, err := get(t, New([]completion.Provider{a, b, c}))
	if err != nil {
		t.Fatalf("GetCandidates() error = %v", err)
	}
	if list.Builder != builder {
		t.Errorf("Builder = %v, want the first provider's", list.Builder)
	}
	if !list.UseSuggestionMode {
		t.Error("UseSuggestionMode should be on when any provider asks")
	}
	if list.DismissIfEmpty {
		t.Error("DismissIfEmpty should be off unless every provider allows it")
	}
}

func TestDifferentDefaultSpan(t *testing.T) {
	first := stub(text.NewSpan(6, 8), "word")
	other := stub(text.NewSpan(8, 8), "suffix")

	list, err := get(t, New([]completion.Provider{first, other}))
	if err != nil {
		t.Fatalf("GetCandidates() error = %v", err)
	}
	moved := list.Items[1]
	if moved == other.items[0] {
		t.Fatal("item with a foreign default span should be copied")
	}
	if moved.Span == nil || *moved.Span != text.NewSpan(8, 8) {
		t.Errorf("Span = %v, want [8,8)", moved.Span)
	}
	if other.items[0].Span != nil {
		t.Error("the provider's own item must not be modified")
	}
	if list.Items[0].Span != nil {
		t.Error("items on the merged default span should stay implicit")
	}
}

func TestFailures(t *testing.T) {
	span := text.NewSpan(6, 8)
	broken := &stubProvider{err: errors.New("offline")}
	panicky := &stubProvider{panics: true}
	slow := stub(span, "late")
	slow.delay = time.Second

	t.Run("one failure is tolerated", func(t *testing.T) {
		list, err := get(t, New([]completion.Provider{broken, panicky, stub(span, "ok")}))
		if err != nil {
			t.Fatalf("GetCandidates() error = %v", err)
		}
		if got := names(list.Items); got != "ok" {
			t.Errorf("items = %q, want ok", got)
		}
	})

	t.Run("all failing", func(t *testing.T) {
		_, err := get(t, New([]completion.Provider{broken, panicky}))
		if err == nil || !strings.Contains(err.Error(), "offline") {
			t.Errorf("GetCandidates() error = %v, want joined errors", err)
		}
	})

	t.Run("timeout skips slow provider", func(t *testing.T) {
		p := New([]completion.Provider{slow, stub(span, "quick")}, WithTimeout(20*time.Millisecond))
		list, err := get(t, p)
		if err != nil {
			t.Fatalf("GetCandidates() error = %v", err)
		}
		if got := names(list.Items); got != "quick" {
			t.Errorf("items = %q, want quick", got)
		}
	})

	t.Run("cancelled request", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		snap := text.NewSnapshot("")
		_, err := New([]completion.Provider{stub(span, "x")}).GetCandidates(ctx, snap, 0, completion.InvokeTrigger())
		if !errors.Is(err, context.Canceled) {
			t.Errorf("GetCandidates() error = %v, want Canceled", err)
		}
	})
}

func TestGetChangeRoutesToOwner(t *testing.T) {
	span := text.NewSpan(6, 8)
	a := stub(span, "alpha")
	a.insert = "from-a"
	b := stub(span, "beta")
	b.insert = "from-b"

	p := New([]completion.Provider{a, b})
	list, err := get(t, p)
	if err != nil {
		t.Fatalf("GetCandidates() error = %v", err)
	}
	snap := text.NewSnapshot("hello wo")
	for i, want := range []string{"from-a", "from-b"} {
		change, err := p.GetChange(context.Background(), snap, list.Items[i], span, 0)
		if err != nil {
			t.Fatalf("GetChange() error = %v", err)
		}
		if change.NewText != want {
			t.Errorf("GetChange(%s) = %q, want %q", list.Items[i].DisplayText, change.NewText, want)
		}
	}

	stranger := &completion.Item{DisplayText: "stranger"}
	if _, err := p.GetChange(context.Background(), snap, stranger, span, 0); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("GetChange() error = %v, want ErrUnknownItem", err)
	}
}
