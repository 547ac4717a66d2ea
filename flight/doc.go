// Package flight serializes logical requests over one shared connection and
// carries the per-request timeout budget.
//
// A Deadline is computed once when a request begins; every later suspension
// point converts it to remaining time and fails fast with a phase-tagged
// TimeoutError once it is spent. The Lock is a FIFO ticket mutex: requests
// acquire turns in arrival order and a waiter that gives up (abort, queue
// timeout) still forwards its slot so the queue never wedges.
package flight
