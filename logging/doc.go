// Package logging provides a minimal logging interface and adapters for agentwire.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the client and its transports use for observability.
// This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - AgentWireLogger with connection-scoped contextual helpers
//
// Usage:
//
//	logger := logging.NewDefaultSlogLogger()
//	client := agentwire.NewClient(func(o *agentwire.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
