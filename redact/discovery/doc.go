// Package discovery learns sensitive literal values from recordings and
// text logs before (or while) redaction runs. Regex extractors work on any
// string; property extractors inspect structured events either directly by
// field name or through key/value pair fields.
//
// Each extractor counts occurrences into its own store; DiscoveredPatterns
// merges the surviving values into one combined, case-insensitive set that
// the redaction engine applies after all configured rules.
package discovery
