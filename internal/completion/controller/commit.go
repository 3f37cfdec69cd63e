package controller

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/popcomplete/internal/completion"
	"github.com/dshills/popcomplete/internal/event"
	"github.com/dshills/popcomplete/internal/text"
)

// commit applies item's edit and ends the session. commitChar is the
// character that caused the commit, '\n' for Enter, or 0.
func (c *Controller) commit(m *completion.Model, item *completion.Item, commitChar rune) {
	s := c.session
	if s == nil || item == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.WaitTimeout)
	defer cancel()

	origin := m.TrackingSpan(item).Origin()
	change, err := c.getChange(ctx, m.TriggerSnapshot(), item, origin, commitChar)
	if err != nil {
		c.logger.Warn("commit failed", "session", s.ID(), "item", item.DisplayText, "err", err)
		c.dismiss("commit failed")
		return
	}

	var inserted string
	c.withoutListeners(func() {
		inserted, err = c.applyCommit(ctx, m, item, change, origin, commitChar)
	})
	if err != nil {
		c.logger.Warn("commit edit failed", "session", s.ID(), "item", item.DisplayText, "err", err)
		c.dismiss("commit failed")
		return
	}

	c.mru.Add(item.DisplayText)
	c.logger.Debug("item committed", "session", s.ID(), "item", item.DisplayText, "commit_char", string(commitChar))
	publishEvent(c, event.New(event.TopicItemCommitted, event.ItemCommitted{
		SessionID:   s.ID(),
		DisplayText: item.DisplayText,
		CommitChar:  commitChar,
		Inserted:    inserted,
	}, "controller").WithCorrelation(s.ID()))
	c.dismiss("committed")
}

// getChange asks the provider for item's edit. A panicking provider is
// reported as an error.
func (c *Controller) getChange(ctx context.Context, snap text.Snapshot, item *completion.Item, span text.Span, commitChar rune) (change completion.TextChange, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()
	return c.provider.GetChange(ctx, snap, item, span, commitChar)
}

// applyCommit maps change into the current snapshot and applies it as one
// undoable edit, followed by formatting as a second one.
func (c *Controller) applyCommit(ctx context.Context, m *completion.Model, item *completion.Item, change completion.TextChange, origin text.Span, commitChar rune) (string, error) {
	snap := c.view.Snapshot()
	caret := c.view.Caret()

	span := commitSpan(m, snap, caret, change, origin, commitChar)
	span.End = swallowSuffix(snap, span.End, change.NewText)
	trackedCaret := text.NewTrackingPoint(snap, caret, text.TrackPositive)

	tx := c.view.BeginTransaction("completion commit")
	if _, err := c.view.ApplyEdit(span, change.NewText); err != nil {
		_ = tx.Cancel()
		return "", err
	}
	insertedEnd := span.Start + len(change.NewText)
	switch {
	case change.CaretOffset >= 0:
		c.view.SetCaret(span.Start + min(change.CaretOffset, len(change.NewText)))
	default:
		c.view.SetCaret(max(trackedCaret.Position(c.view.Snapshot()), insertedEnd))
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}

	if c.formatter != nil && (item.Rules.FormatOnCommit || hasRune(c.opts.FormatOnCommitCharacters, commitChar)) {
		c.format(ctx, text.NewSpan(span.Start, insertedEnd), commitChar)
	}
	return change.NewText, nil
}

// commitSpan maps the provider's span into snap. An edit ending where the
// item's span ended covers everything typed since, except a commit
// character that was already inserted.
func commitSpan(m *completion.Model, snap text.Snapshot, caret int, change completion.TextChange, origin text.Span, commitChar rune) text.Span {
	trigger := m.TriggerSnapshot()
	span := text.NewTrackingSpan(trigger, change.Span, text.EdgeInclusive).Span(snap)
	if change.Span.End == origin.End {
		if end := m.CommitSpanEnd().Position(snap); end >= span.Start {
			span.End = end
		}
	}
	if commitChar != 0 && commitChar != '\n' {
		if r, size := snap.RuneBefore(caret); r == commitChar && span.End >= caret && caret-size >= span.Start {
			span.End = caret - size
		}
	}
	return span
}

// swallowSuffix extends end over text that the edit is about to insert
// again, such as a typed commit character or an auto-closed brace. Only
// punctuation is swallowed.
func swallowSuffix(snap text.Snapshot, end int, newText string) int {
	rest := snap.Slice(text.NewSpan(end, snap.Len()))
	best := 0
	for i := len(newText) - 1; i >= 0; i-- {
		if !utf8.RuneStart(newText[i]) {
			continue
		}
		suffix := newText[i:]
		if !isPunctuation(suffix) {
			break
		}
		if strings.HasPrefix(rest, suffix) {
			best = len(suffix)
		}
	}
	return end + best
}

func isPunctuation(s string) bool {
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return s != ""
}

// format applies the formatter's edits in their own transaction. Failures
// are logged and leave the committed text alone.
func (c *Controller) format(ctx context.Context, span text.Span, commitChar rune) {
	snap := c.view.Snapshot()
	edits, err := c.formatter.FormatEdits(ctx, snap, span, commitChar)
	if err != nil {
		c.logger.Warn("format on commit failed", "err", err)
		return
	}
	if len(edits) == 0 {
		return
	}
	slices.SortStableFunc(edits, func(a, b completion.TextChange) int {
		return b.Span.Start - a.Span.Start
	})

	caret := text.NewTrackingPoint(snap, c.view.Caret(), text.TrackPositive)
	tx := c.view.BeginTransaction("completion format")
	for _, e := range edits {
		if _, err := c.view.ApplyEdit(e.Span, e.NewText); err != nil {
			c.logger.Warn("format edit rejected", "span", e.Span, "err", err)
			_ = tx.Cancel()
			return
		}
	}
	c.view.SetCaret(caret.Position(c.view.Snapshot()))
	if err := tx.Commit(); err != nil {
		c.logger.Warn("format transaction failed", "err", err)
	}
}
