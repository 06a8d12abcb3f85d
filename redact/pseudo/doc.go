// Package pseudo maps sensitive values onto stable pseudonyms. Within one
// process run the mapping is a function: equal inputs always produce equal
// outputs, across events and across files sharing the pseudonymizer. Hash
// mode is additionally stable across runs.
//
// Ports have their own counter-based mapper starting at 1000 so rewritten
// recordings keep plausible, unprivileged-looking port numbers.
package pseudo
