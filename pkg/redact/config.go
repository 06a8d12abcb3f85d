package redact

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/parttimenerd/jfr-redact-sub000/pkg/types"
	"github.com/parttimenerd/jfr-redact-sub000/redact"
	"github.com/parttimenerd/jfr-redact-sub000/redact/discovery"
	"github.com/parttimenerd/jfr-redact-sub000/redact/pattern"
	"github.com/parttimenerd/jfr-redact-sub000/redact/pseudo"
)

// Config is the full declarative policy: discovery, string patterns,
// event filtering and pseudonymization. Immutable after load.
type Config struct {
	General   GeneralConfig   `yaml:"general"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Strings   StringsConfig   `yaml:"strings"`
	Events    EventsYAML      `yaml:"events"`
}

// GeneralConfig holds cross-cutting settings.
type GeneralConfig struct {
	RedactionText    string     `yaml:"redaction_text"`
	NoRedact         []string   `yaml:"no_redact"`
	LogLevel         string     `yaml:"log_level"`
	LogFile          string     `yaml:"log_file"`
	Pseudonymization PseudoYAML `yaml:"pseudonymization"`
}

// PseudoYAML mirrors general.pseudonymization.
type PseudoYAML struct {
	Enabled            bool              `yaml:"enabled"`
	Mode               string            `yaml:"mode"`
	CustomPrefix       string            `yaml:"custom_prefix"`
	CustomSuffix       string            `yaml:"custom_suffix"`
	HashLength         int               `yaml:"hash_length"`
	HashAlgorithm      string            `yaml:"hash_algorithm"`
	Scope              ScopeYAML         `yaml:"scope"`
	CustomReplacements map[string]string `yaml:"custom_replacements"`
	PatternGenerators  map[string]string `yaml:"pattern_generators"`
}

// ScopeYAML toggles pseudonymization per category. Nil pointers default to
// enabled so a sparse config behaves like the full one.
type ScopeYAML struct {
	Properties *bool `yaml:"properties"`
	Strings    *bool `yaml:"strings"`
	Network    *bool `yaml:"network"`
	Paths      *bool `yaml:"paths"`
	Ports      *bool `yaml:"ports"`
}

// DiscoveryConfig mirrors the discovery policy tree.
type DiscoveryConfig struct {
	Mode                string                   `yaml:"mode"`
	PropertyExtractions []PropertyExtractionYAML `yaml:"property_extractions"`
	CustomExtractions   []CustomExtractionYAML   `yaml:"custom_extractions"`
}

// PropertyExtractionYAML is one structured-event extractor.
type PropertyExtractionYAML struct {
	Name                 string   `yaml:"name"`
	KeyPattern           string   `yaml:"key_pattern"`
	KeyPropertyPattern   string   `yaml:"key_property_pattern"`
	ValuePattern         string   `yaml:"value_pattern"`
	ValuePropertyPattern string   `yaml:"value_property_pattern"`
	EventTypeFilter      string   `yaml:"event_type_filter"`
	Type                 string   `yaml:"type"`
	CustomName           string   `yaml:"custom_name"`
	CaseSensitive        bool     `yaml:"case_sensitive"`
	MinOccurrences       int      `yaml:"min_occurrences"`
	Whitelist            []string `yaml:"whitelist"`
	Enabled              *bool    `yaml:"enabled"`
}

// CustomExtractionYAML is one free regex extractor.
type CustomExtractionYAML struct {
	Name           string   `yaml:"name"`
	Pattern        string   `yaml:"pattern"`
	CaptureGroup   int      `yaml:"capture_group"`
	Type           string   `yaml:"type"`
	CustomName     string   `yaml:"custom_name"`
	CaseSensitive  bool     `yaml:"case_sensitive"`
	MinOccurrences int      `yaml:"min_occurrences"`
	Whitelist      []string `yaml:"whitelist"`
	Enabled        *bool    `yaml:"enabled"`
}

// StringsConfig groups the string rewriting policy.
type StringsConfig struct {
	PropertyNames  []string             `yaml:"property_names"`
	CustomPatterns []CustomPatternYAML  `yaml:"custom_patterns"`
	Email          FamilyYAML           `yaml:"email"`
	IP             FamilyYAML           `yaml:"ip"`
	UUID           FamilyYAML           `yaml:"uuid"`
	SSHHosts       FamilyYAML           `yaml:"ssh_hosts"`
	HomeDirs       FamilyYAML           `yaml:"home_directories"`
	Hostnames      FamilyYAML           `yaml:"hostnames"`
	InternalURLs   FamilyYAML           `yaml:"internal_urls"`
}

// CustomPatternYAML is one user-defined redaction pattern.
type CustomPatternYAML struct {
	Name          string   `yaml:"name"`
	Pattern       string   `yaml:"pattern"`
	CaptureGroup  int      `yaml:"capture_group"`
	CaseSensitive bool     `yaml:"case_sensitive"`
	IgnoreExact   []string `yaml:"ignore_exact"`
	Ignore        []string `yaml:"ignore"`
	IgnoreAfter   []string `yaml:"ignore_after"`
	Enabled       *bool    `yaml:"enabled"`
}

// FamilyYAML is the per-family policy of a built-in pattern family.
type FamilyYAML struct {
	Enabled                 *bool    `yaml:"enabled"`
	Patterns                []string `yaml:"patterns"`
	EnableDiscovery         bool     `yaml:"enable_discovery"`
	DiscoveryCaptureGroup   *int     `yaml:"discovery_capture_group"`
	DiscoveryCaseSensitive  bool     `yaml:"discovery_case_sensitive"`
	DiscoveryMinOccurrences int      `yaml:"discovery_min_occurrences"`
	DiscoveryWhitelist      []string `yaml:"discovery_whitelist"`
	IgnoreExact             []string `yaml:"ignore_exact"`
	Ignore                  []string `yaml:"ignore"`
	IgnoreAfter             []string `yaml:"ignore_after"`
}

// EventsYAML mirrors the event removal and filtering policy.
type EventsYAML struct {
	RemoveEnabled bool          `yaml:"remove_enabled"`
	RemovedTypes  []string      `yaml:"removed_types"`
	Filtering     FilteringYAML `yaml:"filtering"`
}

// FilteringYAML holds the include/exclude lists.
type FilteringYAML struct {
	IncludeEvents     []string `yaml:"include_events"`
	ExcludeEvents     []string `yaml:"exclude_events"`
	IncludeCategories []string `yaml:"include_categories"`
	ExcludeCategories []string `yaml:"exclude_categories"`
	IncludeThreads    []string `yaml:"include_threads"`
	ExcludeThreads    []string `yaml:"exclude_threads"`
}

// DefaultConfig returns the policy used when no file is given: every
// built-in family on, two-pass discovery, pseudonymization off.
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			RedactionText: redact.DefaultRedactionText,
			LogLevel:      "info",
		},
		Discovery: DiscoveryConfig{Mode: "TWO_PASS"},
	}
}

// LoadConfig reads and parses the YAML policy file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// engineConfig translates the YAML tree into the redaction engine's policy.
func (c *Config) engineConfig() redact.Config {
	out := redact.Config{
		RedactionText: c.General.RedactionText,
		NoRedact:      c.General.NoRedact,
		PropertyNames: c.Strings.PropertyNames,
		Families:      map[string]redact.FamilyConfig{},
		Events: redact.EventsConfig{
			RemoveEnabled: c.Events.RemoveEnabled,
			RemovedTypes:  c.Events.RemovedTypes,
			Filtering: redact.Filtering{
				IncludeEvents:     c.Events.Filtering.IncludeEvents,
				ExcludeEvents:     c.Events.Filtering.ExcludeEvents,
				IncludeCategories: c.Events.Filtering.IncludeCategories,
				ExcludeCategories: c.Events.Filtering.ExcludeCategories,
				IncludeThreads:    c.Events.Filtering.IncludeThreads,
				ExcludeThreads:    c.Events.Filtering.ExcludeThreads,
			},
		},
	}
	if out.RedactionText == "" {
		out.RedactionText = redact.DefaultRedactionText
	}
	if len(out.PropertyNames) == 0 {
		out.PropertyNames = []string{pattern.DefaultPropertyNamePattern}
	}
	for key, fy := range c.families() {
		out.Families[key] = redact.FamilyConfig{
			Enabled:                 boolOr(fy.Enabled, true),
			Patterns:                fy.Patterns,
			EnableDiscovery:         fy.EnableDiscovery,
			DiscoveryCaptureGroup:   intOr(fy.DiscoveryCaptureGroup, defaultFamilyGroup(key)),
			DiscoveryCaseSensitive:  fy.DiscoveryCaseSensitive,
			DiscoveryMinOccurrences: fy.DiscoveryMinOccurrences,
			DiscoveryWhitelist:      fy.DiscoveryWhitelist,
			IgnoreExact:             familyIgnoreExact(key, fy),
			Ignore:                  fy.Ignore,
			IgnoreAfter:             fy.IgnoreAfter,
		}
	}
	for _, cp := range c.Strings.CustomPatterns {
		out.CustomPatterns = append(out.CustomPatterns, pattern.Config{
			Name:          cp.Name,
			Pattern:       cp.Pattern,
			CaptureGroup:  cp.CaptureGroup,
			Type:          types.PatternCustom,
			CustomName:    cp.Name,
			CaseSensitive: cp.CaseSensitive,
			IgnoreExact:   cp.IgnoreExact,
			IgnoreRegex:   cp.Ignore,
			IgnoreAfter:   cp.IgnoreAfter,
			Enabled:       boolOr(cp.Enabled, true),
		})
	}
	return out
}

func (c *Config) families() map[string]FamilyYAML {
	return map[string]FamilyYAML{
		redact.FamilyEmail:    c.Strings.Email,
		redact.FamilyIP:       c.Strings.IP,
		redact.FamilyUUID:     c.Strings.UUID,
		redact.FamilySSHHosts: c.Strings.SSHHosts,
		redact.FamilyHomeDirs: c.Strings.HomeDirs,
		redact.FamilyHostname: c.Strings.Hostnames,
		redact.FamilyURLs:     c.Strings.InternalURLs,
	}
}

// familyIgnoreExact keeps localhost-style safe hostnames in place even when
// the config omits them.
func familyIgnoreExact(key string, fy FamilyYAML) []string {
	if key != redact.FamilyHostname || len(fy.IgnoreExact) > 0 {
		return fy.IgnoreExact
	}
	return []string{"localhost", "localhost.localdomain"}
}

// defaultFamilyGroup picks the capture group discovery learns from: the
// local part of emails and the user segment of home paths.
func defaultFamilyGroup(key string) int {
	switch key {
	case redact.FamilyEmail, redact.FamilyHomeDirs:
		return 1
	default:
		return 0
	}
}

// familyPatternType classifies what a family's discoveries represent.
func familyPatternType(key string) (types.PatternType, string) {
	switch key {
	case redact.FamilyEmail:
		return types.PatternEmailLocalPart, ""
	case redact.FamilyHomeDirs:
		return types.PatternUsername, ""
	case redact.FamilyHostname:
		return types.PatternHostname, ""
	default:
		return types.PatternCustom, key
	}
}

// discoveryConfig translates the YAML tree into the discovery engine's
// policy. Unknown pattern types are logged and the entry dropped.
func (c *Config) discoveryConfig(log *zap.Logger) discovery.Config {
	if log == nil {
		log = zap.NewNop()
	}
	mode, ok := types.ParseDiscoveryMode(c.Discovery.Mode)
	if !ok {
		log.Warn("unknown discovery mode, discovery disabled", zap.String("mode", c.Discovery.Mode))
	}
	out := discovery.Config{Mode: mode}
	for _, pe := range c.Discovery.PropertyExtractions {
		pt, ok := types.ParsePatternType(pe.Type)
		if !ok {
			log.Warn("skipping property extraction with unknown type",
				zap.String("name", pe.Name), zap.String("type", pe.Type))
			continue
		}
		out.PropertyExtractions = append(out.PropertyExtractions, discovery.PropertyExtraction{
			Name:                 pe.Name,
			KeyPattern:           pe.KeyPattern,
			KeyPropertyPattern:   pe.KeyPropertyPattern,
			ValuePattern:         pe.ValuePattern,
			ValuePropertyPattern: pe.ValuePropertyPattern,
			EventTypeFilter:      pe.EventTypeFilter,
			Type:                 pt,
			CustomName:           customName(pt, pe.CustomName, pe.Name),
			CaseSensitive:        pe.CaseSensitive,
			MinOccurrences:       pe.MinOccurrences,
			Whitelist:            pe.Whitelist,
			Enabled:              boolOr(pe.Enabled, true),
		})
	}
	for _, ce := range c.Discovery.CustomExtractions {
		pt, ok := types.ParsePatternType(ce.Type)
		if !ok {
			log.Warn("skipping custom extraction with unknown type",
				zap.String("name", ce.Name), zap.String("type", ce.Type))
			continue
		}
		out.CustomExtractions = append(out.CustomExtractions, pattern.Config{
			Name:           ce.Name,
			Pattern:        ce.Pattern,
			CaptureGroup:   ce.CaptureGroup,
			Type:           pt,
			CustomName:     customName(pt, ce.CustomName, ce.Name),
			CaseSensitive:  ce.CaseSensitive,
			MinOccurrences: ce.MinOccurrences,
			Whitelist:      ce.Whitelist,
			Enabled:        boolOr(ce.Enabled, true),
		})
	}
	for key, fy := range c.families() {
		if !fy.EnableDiscovery {
			continue
		}
		pt, custom := familyPatternType(key)
		for _, pat := range familyDiscoveryPatterns(key, fy) {
			out.FamilyExtractions = append(out.FamilyExtractions, pattern.Config{
				Name:           "family:" + key,
				Pattern:        pat,
				CaptureGroup:   intOr(fy.DiscoveryCaptureGroup, defaultFamilyGroup(key)),
				Type:           pt,
				CustomName:     custom,
				CaseSensitive:  fy.DiscoveryCaseSensitive,
				MinOccurrences: fy.DiscoveryMinOccurrences,
				Whitelist:      fy.DiscoveryWhitelist,
				IgnoreExact:    familyIgnoreExact(key, fy),
				IgnoreRegex:    fy.Ignore,
				IgnoreAfter:    fy.IgnoreAfter,
				Enabled:        true,
			})
		}
	}
	return out
}

func familyDiscoveryPatterns(key string, fy FamilyYAML) []string {
	if len(fy.Patterns) > 0 {
		return fy.Patterns
	}
	return pattern.FamilyDefaults[key]
}

func customName(pt types.PatternType, explicit, fallback string) string {
	if pt != types.PatternCustom {
		return ""
	}
	if explicit != "" {
		return explicit
	}
	return fallback
}

// pseudoConfig translates general.pseudonymization.
func (c *Config) pseudoConfig(log *zap.Logger) pseudo.Config {
	p := c.General.Pseudonymization
	mode, ok := types.ParsePseudonymMode(p.Mode)
	if !ok && log != nil {
		log.Warn("unknown pseudonymization mode, using HASH", zap.String("mode", p.Mode))
	}
	return pseudo.Config{
		Enabled:       p.Enabled,
		Mode:          mode,
		CustomPrefix:  p.CustomPrefix,
		CustomSuffix:  p.CustomSuffix,
		HashLength:    p.HashLength,
		HashAlgorithm: p.HashAlgorithm,
		Scope: pseudo.Scope{
			Properties: boolOr(p.Scope.Properties, true),
			Strings:    boolOr(p.Scope.Strings, true),
			Network:    boolOr(p.Scope.Network, true),
			Paths:      boolOr(p.Scope.Paths, true),
			Ports:      boolOr(p.Scope.Ports, true),
		},
		CustomReplacements: p.CustomReplacements,
		PatternGenerators:  p.PatternGenerators,
	}
}
