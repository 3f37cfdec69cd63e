// Package chain serializes the transformations that produce completion
// models.
//
// A Chain owns a single worker goroutine and an unbounded FIFO of jobs.
// Each job receives the model produced by the job before it, so results
// always reflect every earlier request, whatever order callers happen to
// wait in. Enqueue never blocks, which keeps the interactive goroutine
// responsive while candidate computation or filtering runs.
//
// Completed jobs are reported through an optional notifier that runs on
// the worker goroutine; it must hand the update off without blocking,
// typically by posting to the controller's mailbox.
//
// Stop cancels the context passed to transformations. Jobs already queued
// are drained without running and nothing is published after Stop.
package chain
