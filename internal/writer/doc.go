// Package writer serializes flight recordings: it owns the output type
// dictionary, deduplicates pooled values into constant-pool segments and
// emits chunks whose metadata and checkpoint events mirror what
// internal/reader parses.
//
// The writer is deliberately dumb about semantics. Which types exist, how
// annotations are cloned and what happens to field values is decided by the
// transcoder; this package only guarantees that whatever was registered is
// written out consistently: once a type is sealed its layout never changes,
// and every emitted event is encoded against its registered descriptor.
package writer
