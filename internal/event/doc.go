// Package event provides a small topic-based publish/subscribe bus.
//
// Topics are dot-separated names such as "completion.session.started".
// Subscription patterns may use "*" to match exactly one segment and "**"
// to match zero or more segments:
//
//	bus.Subscribe("completion.**", handler)        // every completion event
//	bus.Subscribe("completion.session.*", handler) // session start and dismiss
//
// Delivery is synchronous and in subscription order. A handler that panics
// is recovered and logged; it never prevents delivery to the others.
package event
