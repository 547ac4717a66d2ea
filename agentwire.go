// Package agentwire is a client-side protocol layer for a remote
// model-inference service. An agent runtime hands it a vendor-neutral
// request (conversation history, tool declarations, output schema, sampling
// settings) and receives back either a single response or a live sequence of
// progress events. Most applications interact with this package by:
//  1. Creating a Client via NewClient (base URL, credentials, timeout budget)
//  2. Calling GetResponse for one-shot request/response generation
//  3. Calling GetStreamedResponse for live progress events over the
//     persistent socket transport
//  4. Calling Close on shutdown to tear down any cached connection
//
// The streaming transport multiplexes one logical request at a time over one
// physical socket: requests against the same connection identity are served
// strictly in arrival order, a single timeout budget is computed per request
// and consulted at every awaited step, and a connection is only reused after
// a fully successful exchange. Item translation lives in the wire package,
// frame encoding/decoding in frame, and connection lifecycle in socket.
package agentwire

import (
	"context"

	"github.com/hupe1980/agentwire/protocol"
)

// Model is the minimal interface the run loop needs to drive generation.
// Client implements it against the remote service; tests substitute fakes.
type Model interface {
	// GetResponse awaits full completion of one request.
	GetResponse(ctx context.Context, req *protocol.Request) (*protocol.Response, error)

	// GetStreamedResponse produces a fresh, finite event sequence per call.
	// The event channel closes after the terminal event; at most one error
	// is delivered on the error channel.
	GetStreamedResponse(ctx context.Context, req *protocol.Request) (<-chan protocol.StreamEvent, <-chan error)

	// Close tears down any cached connection. Idempotent.
	Close(ctx context.Context) error
}
