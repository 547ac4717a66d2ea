// Package socket owns the streaming transport: one physical websocket per
// connection identity, a frame-at-a-time pull interface over it, and the
// manager that decides when a cached connection may be reused.
//
// Identity is the canonical (url, normalized header set) pair. Different
// header sets never share a socket: credentials must not leak across
// logical clients.
package socket
