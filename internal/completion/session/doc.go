// Package session runs one completion popup lifetime.
//
// A Session owns one chain. StartComputation queues the provider call,
// Filter and friends queue match passes against the model it produced,
// and Stop abandons the chain. Every method is meant to be called from the
// interactive goroutine; buffer state is captured there and handed to the
// worker so passes never read the buffer concurrently with edits.
//
// Each filter request is stamped with the next value of a monotonically
// increasing id. A pass whose id is no longer current stops iterating and
// returns its input, so only the newest request decides what is shown.
package session
