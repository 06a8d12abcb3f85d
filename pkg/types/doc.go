// Package types defines the shared vocabulary of the redaction toolkit:
// pattern classifications, discovered values, interactive decisions and the
// typed error kinds returned across package boundaries.
//
// Keeping these in a leaf package lets the engine, discovery, transcoding
// and public facade packages exchange data without import cycles.
package types
