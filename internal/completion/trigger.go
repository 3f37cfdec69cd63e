package completion

// TriggerKind is why a session started.
type TriggerKind uint8

const (
	// TriggerInvoke is an explicit request such as Ctrl+Space.
	TriggerInvoke TriggerKind = iota
	// TriggerInsertion is a typed character.
	TriggerInsertion
	// TriggerDeletion is a backspace or delete.
	TriggerDeletion
	// TriggerSnippets is a Tab press asking for snippet shortcuts.
	TriggerSnippets
	// TriggerInvokeAndCommitIfUnique is the commit-unique command.
	TriggerInvokeAndCommitIfUnique
)

var triggerNames = [...]string{"Invoke", "Insertion", "Deletion", "Snippets", "InvokeAndCommitIfUnique"}

// String returns the trigger kind name.
func (k TriggerKind) String() string {
	if int(k) >= len(triggerNames) {
		return "Unknown"
	}
	return triggerNames[k]
}

// Trigger describes how a session started.
type Trigger struct {
	Kind TriggerKind
	// Char is the typed or deleted character for insertion and deletion triggers.
	Char rune
}

// InvokeTrigger returns the explicit-invoke trigger.
func InvokeTrigger() Trigger {
	return Trigger{Kind: TriggerInvoke}
}

// InsertionTrigger returns a trigger for a typed character.
func InsertionTrigger(r rune) Trigger {
	return Trigger{Kind: TriggerInsertion, Char: r}
}

// DeletionTrigger returns a trigger for a deleted character.
func DeletionTrigger(r rune) Trigger {
	return Trigger{Kind: TriggerDeletion, Char: r}
}

// FilterReason is why a filter pass is running.
type FilterReason uint8

const (
	FilterInsertion FilterReason = iota
	FilterDeletion
	FilterCaretPositionChanged
	FilterOther
)

var reasonNames = [...]string{"Insertion", "Deletion", "CaretPositionChanged", "Other"}

// String returns the reason name.
func (r FilterReason) String() string {
	if int(r) >= len(reasonNames) {
		return "Unknown"
	}
	return reasonNames[r]
}
