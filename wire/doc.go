// Package wire translates between the vendor-neutral protocol types and the
// service wire format. All functions are pure: same input yields the same
// output, no I/O, no state.
//
// Translation is lossless for fields the client does not model: unknown
// top-level keys of a wire item are captured in the item's ProviderData bag
// on decode and merged back on encode, so one encode/decode cycle
// round-trips them unchanged. Canonical fields always win over ProviderData
// keys on encode.
package wire
