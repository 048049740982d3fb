// Package snapshot defines the serialized shape of a workspace session:
// the chat transcript plus every generated content section and the list of
// final outputs.
//
// The JSON encoding is the canonical storage format for session blobs. Encode
// and Decode round-trip exactly for any normalized snapshot; DecodeLenient
// recovers from corrupt blobs by substituting the canonical empty snapshot so
// callers never have to handle a parse failure. All functions are pure.
//
// Treat this package as the single source of truth for blob semantics; new
// content sections belong here first, then in the stores that carry them.
package snapshot
