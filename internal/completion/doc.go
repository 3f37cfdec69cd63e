// Package completion defines the state shared by the completion engine:
// candidate items, the immutable Model that snapshots a session at one
// instant, the reasons a session was triggered or re-filtered, and the
// contracts of the collaborators the engine drives (providers, the text
// view, the presenter and an optional formatter).
//
// The moving parts live in subpackages:
//
//   - match: the filtering and ranking pass run on every keystroke
//   - chain: the serialized background pipeline that produces Models
//   - session: one popup lifetime, owning one chain
//   - controller: the per-view state machine that reacts to editor input
//
// A Model is never mutated after it is published. Every With* method
// returns the receiver when nothing changes, or a shallow copy otherwise.
package completion
