// Package transcode drives the read-decode-register-rewrite-emit loop: it
// streams events out of a recording, lets discovery and redaction see them,
// re-registers every surviving event's type in the output dictionary and
// writes a new recording chunk by chunk.
//
// Type registration is the delicate part. The source type graph may be
// cyclic (Thread referencing Thread), so types being registered are tracked
// on an in-progress set and recursive field resolution picks up the
// already-published handle instead of recursing forever. Once a name is
// registered its layout is frozen; re-registration with missing fields is a
// hard error pointing at corrupt input.
package transcode
