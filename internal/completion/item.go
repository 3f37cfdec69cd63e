package completion

import (
	"strings"

	"github.com/dshills/popcomplete/internal/text"
)

// Kind indicates the type of a completion item.
type Kind int

const (
	KindText Kind = iota
	KindMethod
	KindFunction
	KindConstructor
	KindField
	KindVariable
	KindClass
	KindInterface
	KindModule
	KindProperty
	KindUnit
	KindValue
	KindEnum
	KindKeyword
	KindSnippet
	KindColor
	KindFile
	KindReference
	KindFolder
	KindEnumMember
	KindConstant
	KindStruct
	KindEvent
	KindOperator
	KindTypeParameter
)

var kindNames = [...]string{
	"Text", "Method", "Function", "Constructor", "Field", "Variable", "Class",
	"Interface", "Module", "Property", "Unit", "Value", "Enum", "Keyword",
	"Snippet", "Color", "File", "Reference", "Folder", "EnumMember",
	"Constant", "Struct", "Event", "Operator", "TypeParameter",
}

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// ParseKind looks up a kind by name, ignoring case.
func ParseKind(name string) (Kind, bool) {
	for i, n := range kindNames {
		if strings.EqualFold(n, name) {
			return Kind(i), true
		}
	}
	return KindText, false
}

// Match priorities. Anything above PriorityDefault marks an item the
// provider wants preselected.
const (
	PriorityDefault   = 0
	PriorityPreselect = 1000
)

// SelectionBehavior is an item's request for how it should be selected
// when nothing has been typed yet.
type SelectionBehavior uint8

const (
	SelectionDefault SelectionBehavior = iota
	SelectionHard
	SelectionSoft
)

// EnterRule controls whether Enter is also inserted after committing.
type EnterRule uint8

const (
	// EnterNever swallows the Enter key on commit.
	EnterNever EnterRule = iota
	// EnterAlways inserts a newline after the committed text.
	EnterAlways
	// EnterAfterFullyTypedWord inserts a newline only when the user had
	// already typed the item's whole display text.
	EnterAfterFullyTypedWord
)

// Rules carry per-item matching and commit behavior.
type Rules struct {
	// MatchPriority breaks ties between equally good matches.
	MatchPriority int
	// SelectionBehavior applies when the filter text is empty.
	SelectionBehavior SelectionBehavior
	// CommitCharacters overrides the configured commit characters when non-nil.
	CommitCharacters []rune
	// FilterCharacters are extra characters that keep filtering instead of committing.
	FilterCharacters []rune
	// Enter decides whether Enter passes through after a commit.
	Enter EnterRule
	// FormatOnCommit asks for the formatter to run after this item commits.
	FormatOnCommit bool
}

// Item is a single completion candidate.
type Item struct {
	// DisplayText is shown in the popup and recorded in the MRU list.
	DisplayText string
	// FilterText is matched against what the user typed. Defaults to DisplayText.
	FilterText string
	// SortText orders items for display. Defaults to DisplayText.
	SortText string
	// InsertText replaces the span on commit. Defaults to DisplayText.
	InsertText string
	// Detail is secondary text for the presenter.
	Detail string
	// Kind is the item category shown as an icon.
	Kind Kind
	// Span is the range this item replaces, in the trigger snapshot.
	// Nil uses the provider's default span.
	Span *text.Span
	// Filters lists the filter categories this item belongs to.
	Filters []string
	// Rules carry matching and commit behavior.
	Rules Rules
	// Data is opaque provider data carried through to GetChange.
	Data any
}

// FilterTextOrDisplay returns FilterText, falling back to DisplayText.
func (i *Item) FilterTextOrDisplay() string {
	if i.FilterText != "" {
		return i.FilterText
	}
	return i.DisplayText
}

// SortTextOrDisplay returns SortText, falling back to DisplayText.
func (i *Item) SortTextOrDisplay() string {
	if i.SortText != "" {
		return i.SortText
	}
	return i.DisplayText
}

// InsertTextOrDisplay returns InsertText, falling back to DisplayText.
func (i *Item) InsertTextOrDisplay() string {
	if i.InsertText != "" {
		return i.InsertText
	}
	return i.DisplayText
}

// IsPreselected reports whether the provider asked for the item to be chosen.
func (i *Item) IsPreselected() bool {
	return i.Rules.MatchPriority > PriorityDefault
}

// IsCommitCharacter reports whether r commits this item, using defaults
// when the item has no override.
func (i *Item) IsCommitCharacter(r rune, defaults []rune) bool {
	set := defaults
	if i.Rules.CommitCharacters != nil {
		set = i.Rules.CommitCharacters
	}
	return containsRune(set, r)
}

// IsFilterCharacter reports whether r is an item-specific filter character.
func (i *Item) IsFilterCharacter(r rune) bool {
	return containsRune(i.Rules.FilterCharacters, r)
}

func containsRune(set []rune, r rune) bool {
	for _, c := range set {
		if c == r {
			return true
		}
	}
	return false
}
