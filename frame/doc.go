// Package frame implements the socket frame codec: encoding one outbound
// request frame, decoding inbound frames into structured events, classifying
// terminal event types, and normalizing decoded events into the semantic
// protocol.StreamEvent set.
package frame
