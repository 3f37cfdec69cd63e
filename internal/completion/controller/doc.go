// Package controller binds completion to one editable view.
//
// The Controller is a two-state machine. While Idle it watches typed
// characters, deletions and explicit requests for a reason to start a
// session; while Active it forwards edits and caret moves to the session,
// commits the selected item on commit keys, and dismisses when the popup
// no longer applies.
//
// Every command and presenter callback must be called from the
// interactive goroutine. Work finished by a session's chain is posted to
// the controller's mailbox; the host selects on Wake and calls Pump to run
// it on the interactive goroutine.
//
// Commands take a next function, the editor's own handling of the key.
// Typed characters are always inserted before they are classified, so the
// undo history holds the keystroke even when it also commits an item.
package controller
