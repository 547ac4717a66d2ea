// Package testutil contains helper builders and utilities used across tests
// to reduce boilerplate when scripting the fake streaming service (socket
// server, wire event payloads) and asserting transport behaviors. These
// helpers are intentionally minimal and are not intended for production
// usage.
package testutil
