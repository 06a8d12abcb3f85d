package redact

import (
	"github.com/parttimenerd/jfr-redact-sub000/redact/pattern"
)

// Family keys of the built-in pattern families.
const (
	FamilyEmail    = "email"
	FamilyIP       = "ip"
	FamilyUUID     = "uuid"
	FamilySSHHosts = "ssh_hosts"
	FamilyHomeDirs = "home_directories"
	FamilyHostname = "hostnames"
	FamilyURLs     = "internal_urls"
)

// FamilyConfig is the policy of one built-in pattern family: its redaction
// patterns plus the knobs for discovery learned from the family's matches.
type FamilyConfig struct {
	Enabled                 bool
	Patterns                []string // empty = the family's defaults
	EnableDiscovery         bool
	DiscoveryCaptureGroup   int
	DiscoveryCaseSensitive  bool
	DiscoveryMinOccurrences int
	DiscoveryWhitelist      []string
	IgnoreExact             []string
	Ignore                  []string // regexes suppressing candidate matches
	IgnoreAfter             []string
}

// Config is the redaction policy tree, immutable after construction.
type Config struct {
	RedactionText  string   // fixed placeholder when pseudonymization is off
	NoRedact       []string // global bypass values, compared ignoring case
	PropertyNames  []string // field-name regexes whose values are wholesale sensitive
	Families       map[string]FamilyConfig
	CustomPatterns []pattern.Config
	Events         EventsConfig
}

// DefaultRedactionText is used when the configuration leaves the
// placeholder empty.
const DefaultRedactionText = "***"

// DefaultConfig enables every built-in family with its default patterns.
func DefaultConfig() Config {
	fams := make(map[string]FamilyConfig, len(pattern.FamilyDefaults))
	for key := range pattern.FamilyDefaults {
		fams[key] = FamilyConfig{Enabled: true, DiscoveryMinOccurrences: 1}
	}
	hostnames := fams[FamilyHostname]
	hostnames.IgnoreExact = []string{"localhost", "localhost.localdomain"}
	fams[FamilyHostname] = hostnames
	return Config{
		RedactionText: DefaultRedactionText,
		PropertyNames: []string{pattern.DefaultPropertyNamePattern},
		Families:      fams,
	}
}

// familyPatterns resolves the effective pattern list of a family.
func familyPatterns(key string, cfg FamilyConfig) []string {
	if len(cfg.Patterns) > 0 {
		return cfg.Patterns
	}
	return pattern.FamilyDefaults[key]
}
