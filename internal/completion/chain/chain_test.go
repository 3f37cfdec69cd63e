package chain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dshills/popcomplete/internal/completion"
	"github.com/dshills/popcomplete/internal/text"
)

func model(t *testing.T, names ...string) *completion.Model {
	t.Helper()
	items := make([]*completion.Item, len(names))
	for i, n := range names {
		items[i] = &completion.Item{DisplayText: n}
	}
	m, err := completion.NewModel(completion.ModelParams{Items: items, Snapshot: text.NewSnapshot("")})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestChainOrdering(t *testing.T) {
	c := New()
	defer c.Stop()

	base := model(t, "a", "b", "c", "d", "e")
	c.EnqueueInitial(func(ctx context.Context, _ *completion.Model) (*completion.Model, error) {
		return base, nil
	})

	// Each step narrows the filtered list by one; step k must see step k-1's output.
	const steps = 4
	var mu sync.Mutex
	var seen []int
	for k := 1; k <= steps; k++ {
		k := k
		c.Enqueue(func(ctx context.Context, m *completion.Model) (*completion.Model, error) {
			if got := len(m.FilteredItems()); got != 5-(k-1) {
				return nil, fmt.Errorf("step %d saw %d items", k, got)
			}
			time.Sleep(time.Millisecond)
			mu.Lock()
			seen = append(seen, k)
			mu.Unlock()
			return m.WithFilteredItems(m.FilteredItems()[1:]), nil
		}, true)
	}

	got, err := c.WaitForLatest(waitCtx(t))
	if err != nil {
		t.Fatalf("WaitForLatest: %v", err)
	}
	if got == nil || len(got.FilteredItems()) != 1 {
		t.Fatalf("final model = %v", got)
	}
	mu.Lock()
	defer mu.Unlock()
	for i, k := range seen {
		if k != i+1 {
			t.Fatalf("ran out of order: %v", seen)
		}
	}
}

func TestChainCurrentAndUnfiltered(t *testing.T) {
	c := New()
	defer c.Stop()

	if m, ok := c.Current(); m != nil || !ok {
		t.Errorf("empty chain Current = %v, %v", m, ok)
	}
	if c.CurrentUnfilteredModel() != nil {
		t.Error("no unfiltered model before the initial job")
	}

	release := make(chan struct{})
	base := model(t, "a", "b")
	c.EnqueueInitial(func(ctx context.Context, _ *completion.Model) (*completion.Model, error) {
		<-release
		return base, nil
	})
	if _, ok := c.Current(); ok {
		t.Error("Current should report pending work")
	}
	close(release)

	narrowed := c.Enqueue(func(ctx context.Context, m *completion.Model) (*completion.Model, error) {
		return m.WithFilteredItems(m.FilteredItems()[:1]), nil
	}, false)
	<-narrowed.Done()

	if c.CurrentUnfilteredModel() != base {
		t.Error("unfiltered model should be the initial result")
	}
	cur, ok := c.Current()
	if !ok || cur == base || len(cur.FilteredItems()) != 1 {
		t.Errorf("Current = %v, %v", cur, ok)
	}
	if m, _ := narrowed.Result(); m != cur {
		t.Error("Pending.Result should match Current")
	}
}

func TestChainNotifier(t *testing.T) {
	updates := make(chan Update, 8)
	c := New(WithNotifier(func(u Update) { updates <- u }))
	defer c.Stop()

	base := model(t, "a")
	c.EnqueueInitial(func(ctx context.Context, _ *completion.Model) (*completion.Model, error) {
		return base, nil
	})
	c.Enqueue(func(ctx context.Context, m *completion.Model) (*completion.Model, error) { return m, nil }, false)
	last := c.Enqueue(func(ctx context.Context, m *completion.Model) (*completion.Model, error) { return m, nil }, true)
	<-last.Done()

	first := <-updates
	if !first.Initial || first.Seq != 1 || first.Model != base {
		t.Errorf("first update = %+v", first)
	}
	select {
	case u := <-updates:
		if u.Seq != 3 {
			t.Errorf("second update seq = %d, want 3 (job 2 does not notify)", u.Seq)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("missing update")
	}
}

func TestChainRecoversFromPanic(t *testing.T) {
	c := New()
	defer c.Stop()

	c.EnqueueInitial(func(ctx context.Context, _ *completion.Model) (*completion.Model, error) {
		panic("provider exploded")
	})
	p := c.Enqueue(func(ctx context.Context, m *completion.Model) (*completion.Model, error) {
		if m != nil {
			return nil, errors.New("expected nil model after panic")
		}
		return nil, nil
	}, true)
	<-p.Done()

	if _, err := p.Result(); err != nil {
		t.Errorf("job after panic failed: %v", err)
	}

	got, err := c.WaitForLatest(waitCtx(t))
	if err != nil || got != nil {
		t.Errorf("WaitForLatest = %v, %v; want nil model", got, err)
	}

	// The chain keeps working.
	base := model(t, "a")
	c.Enqueue(func(ctx context.Context, _ *completion.Model) (*completion.Model, error) { return base, nil }, true)
	if got, _ := c.WaitForLatest(waitCtx(t)); got != base {
		t.Error("chain did not recover")
	}
}

func TestChainErrorYieldsNilModel(t *testing.T) {
	c := New()
	defer c.Stop()

	boom := errors.New("boom")
	p := c.EnqueueInitial(func(ctx context.Context, _ *completion.Model) (*completion.Model, error) {
		return model(t, "a"), boom
	})
	<-p.Done()
	m, err := p.Result()
	if m != nil || !errors.Is(err, boom) {
		t.Errorf("Result = %v, %v", m, err)
	}
}

func TestChainWaitTimeout(t *testing.T) {
	c := New()
	release := make(chan struct{})
	defer func() {
		close(release)
		c.Stop()
	}()

	c.EnqueueInitial(func(ctx context.Context, _ *completion.Model) (*completion.Model, error) {
		<-release
		return nil, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.WaitForLatest(ctx)
	if !errors.Is(err, ErrWaitTimeout) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want ErrWaitTimeout wrapping DeadlineExceeded", err)
	}
}

func TestChainStop(t *testing.T) {
	var mu sync.Mutex
	notified := 0
	c := New(WithNotifier(func(Update) {
		mu.Lock()
		notified++
		mu.Unlock()
	}))

	started := make(chan struct{})
	release := make(chan struct{})
	c.EnqueueInitial(func(ctx context.Context, _ *completion.Model) (*completion.Model, error) {
		close(started)
		<-release
		return nil, ctx.Err()
	})
	ran := false
	queued := c.Enqueue(func(ctx context.Context, m *completion.Model) (*completion.Model, error) {
		ran = true
		return m, nil
	}, true)

	<-started
	c.Stop()
	c.Stop()
	close(release)

	select {
	case <-c.Exited():
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not exit")
	}

	if ran {
		t.Error("queued job ran after Stop")
	}
	if _, err := queued.Result(); !errors.Is(err, ErrStopped) {
		t.Errorf("queued job err = %v, want ErrStopped", err)
	}
	mu.Lock()
	if notified != 0 {
		t.Errorf("notified %d times after Stop", notified)
	}
	mu.Unlock()

	if _, err := c.WaitForLatest(context.Background()); !errors.Is(err, ErrStopped) {
		t.Errorf("WaitForLatest after Stop = %v", err)
	}
	late := c.Enqueue(func(ctx context.Context, m *completion.Model) (*completion.Model, error) { return m, nil }, true)
	<-late.Done()
	if _, err := late.Result(); !errors.Is(err, ErrStopped) {
		t.Errorf("late job err = %v", err)
	}
	if !c.Stopped() {
		t.Error("Stopped should report true")
	}
}
