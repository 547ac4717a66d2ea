// Package protocol defines the vendor-neutral data model exchanged between
// an agent runtime and a model-inference service.
//
// Core goals:
//   - Represent conversation/tool state as a closed tagged union (Item)
//   - Keep request/response shapes minimal and transport independent
//   - Preserve fields the client does not understand (ProviderData bags)
//   - Expose streaming progress as a small set of semantic events
//
// Transports (see the socket and frame packages) translate these types to
// the service wire format; higher layers remain decoupled from it.
package protocol
