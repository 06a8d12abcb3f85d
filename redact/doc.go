// Package redact rewrites sensitive field values and decides which events
// survive transcoding. The engine scans configured pattern families in a
// fixed priority order, consults the discovered-pattern store last, and
// routes every replacement through the pseudonymizer when one is enabled.
package redact
