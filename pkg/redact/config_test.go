package redact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parttimenerd/jfr-redact-sub000/pkg/types"
	core "github.com/parttimenerd/jfr-redact-sub000/redact"
)

const sampleYAML = `
general:
  redaction_text: "[X]"
  no_redact: ["localhost"]
  pseudonymization:
    enabled: true
    mode: COUNTER
    scope:
      ports: false
discovery:
  mode: TWO_PASS
  property_extractions:
    - name: sysprops
      key_pattern: "^user\\.name$"
      type: USERNAME
      min_occurrences: 1
    - name: broken
      key_pattern: "^x$"
      type: NO_SUCH_TYPE
  custom_extractions:
    - name: tokens
      pattern: "tok-\\d+"
      type: CUSTOM
strings:
  custom_patterns:
    - name: ticket
      pattern: "TICKET-\\d+"
  hostnames:
    enable_discovery: true
    ignore_exact: ["localhost", "myhost.test"]
  email:
    enabled: false
events:
  remove_enabled: true
  removed_types: ["jdk.OSInformation"]
  filtering:
    include_events: ["jdk.*"]
    exclude_threads: ["GC Thread*"]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "[X]", cfg.General.RedactionText)
	assert.True(t, cfg.General.Pseudonymization.Enabled)
	assert.Equal(t, "COUNTER", cfg.General.Pseudonymization.Mode)
	assert.Equal(t, "TWO_PASS", cfg.Discovery.Mode)
	require.Len(t, cfg.Discovery.PropertyExtractions, 2)
	assert.True(t, cfg.Events.RemoveEnabled)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigMalformed(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "{{ not yaml"))
	assert.Error(t, err)
}

func TestEngineConfigTranslation(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	ec := cfg.engineConfig()

	assert.Equal(t, "[X]", ec.RedactionText)
	assert.Equal(t, []string{"localhost"}, ec.NoRedact)
	assert.False(t, ec.Families[core.FamilyEmail].Enabled, "explicit enabled: false is honored")
	assert.True(t, ec.Families[core.FamilyIP].Enabled, "omitted families default to enabled")
	assert.Equal(t, []string{"localhost", "myhost.test"}, ec.Families[core.FamilyHostname].IgnoreExact)
	require.Len(t, ec.CustomPatterns, 1)
	assert.Equal(t, "ticket", ec.CustomPatterns[0].Name)
	assert.Equal(t, []string{"GC Thread*"}, ec.Events.Filtering.ExcludeThreads)
}

func TestDiscoveryConfigTranslation(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	dc := cfg.discoveryConfig(nil)

	assert.Equal(t, types.DiscoveryTwoPass, dc.Mode)
	require.Len(t, dc.PropertyExtractions, 1, "entries with unknown types are dropped")
	assert.Equal(t, "sysprops", dc.PropertyExtractions[0].Name)
	assert.Equal(t, types.PatternUsername, dc.PropertyExtractions[0].Type)
	require.Len(t, dc.CustomExtractions, 1)
	assert.Equal(t, types.PatternCustom, dc.CustomExtractions[0].Type)
	assert.Equal(t, "tokens", dc.CustomExtractions[0].CustomName)

	// hostnames has enable_discovery: one family extraction per pattern,
	// carrying the ignore_exact whitelist semantics for discovery.
	require.NotEmpty(t, dc.FamilyExtractions)
	assert.Equal(t, types.PatternHostname, dc.FamilyExtractions[0].Type)
	assert.Contains(t, dc.FamilyExtractions[0].IgnoreExact, "myhost.test")
}

func TestPseudoConfigTranslation(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	pc := cfg.pseudoConfig(nil)
	assert.True(t, pc.Enabled)
	assert.Equal(t, types.PseudonymCounter, pc.Mode)
	assert.False(t, pc.Scope.Ports, "explicit false is honored")
	assert.True(t, pc.Scope.Strings, "omitted scope entries default to true")
}

func TestDefaultConfigDefaults(t *testing.T) {
	cfg := DefaultConfig()
	ec := cfg.engineConfig()
	assert.Equal(t, core.DefaultRedactionText, ec.RedactionText)
	for key, fam := range ec.Families {
		assert.True(t, fam.Enabled, "family %s enabled by default", key)
	}
	assert.Contains(t, ec.Families[core.FamilyHostname].IgnoreExact, "localhost")
	dc := cfg.discoveryConfig(nil)
	assert.Equal(t, types.DiscoveryTwoPass, dc.Mode)
}
