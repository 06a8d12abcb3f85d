// Package jfr models the contents of a Java Flight Recorder recording in a
// reader-friendly form: the self-describing type dictionary, recorded events
// and their (possibly nested) field values.
//
// Values are a tagged variant rather than interface{} so traversal code can
// pattern-match instead of reflecting. The byte-level codecs live in
// internal/format; parsing and serialization live in internal/reader and
// internal/writer.
package jfr
