// Package syncer converts a stream of text edits into a rate-limited,
// cancelable sequence of render operations against the render.Adapter.
//
// The controller is a state machine: Idle -> Pending (debounce timer armed)
// -> Rendering -> Idle or Errored. An edit arriving while Pending re-arms
// the timer (latest edit wins, no queueing); at most one render is ever in
// flight; a superseded timer is discarded with no side effects; an in-flight
// render is never preempted, and its result is applied without rolling back
// newer source text. A failed render records the error but keeps the last
// successfully rendered output.
//
// Timing is driven through the Clock interface so tests run against a
// manual clock instead of wall time.
package syncer
