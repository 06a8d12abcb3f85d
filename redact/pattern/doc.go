// Package pattern compiles redaction and discovery policies into matchers
// and maintains the store of literal values learned from data.
//
// Two matcher variants exist: a literal substring matcher for patterns free
// of regex metacharacters, and a compiled regexp for the rest. The
// classification is a cheap character scan; a false negative only costs the
// regexp engine's speed, never correctness.
package pattern
