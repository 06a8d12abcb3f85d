// Package redact is the public facade of the toolkit. It loads the YAML
// policy file, wires the pattern, pseudonymization, discovery and
// transcoding machinery together and exposes one-call entry points for
// recordings and text logs.
package redact
