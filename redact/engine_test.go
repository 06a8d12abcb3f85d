package redact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parttimenerd/jfr-redact-sub000/jfr"
	"github.com/parttimenerd/jfr-redact-sub000/pkg/types"
	"github.com/parttimenerd/jfr-redact-sub000/redact/pattern"
	"github.com/parttimenerd/jfr-redact-sub000/redact/pseudo"
)

func newTestEngine(t *testing.T, mutate func(*Config)) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg, nil, NewStats(), nil)
}

func TestPropertyNameReplacesWholeValue(t *testing.T) {
	e := newTestEngine(t, nil)
	assert.Equal(t, "***", e.RedactString("password", "hunter2"))
	assert.Equal(t, "***", e.RedactString("apiKeySecret", "abc"))
	assert.NotEqual(t, "***", e.RedactString("message", "plain text"))
}

func TestHomeDirectoryCaptureGroupPreservesPath(t *testing.T) {
	e := newTestEngine(t, nil)
	in := "File: /Users/alice/project/src/Main.java:42"
	out := e.RedactString("path", in)
	assert.Equal(t, "File: /Users/***USER***/project/src/Main.java:42", out)
	assert.NotContains(t, out, "alice")
}

func TestInternalURLWinsOverHostname(t *testing.T) {
	e := newTestEngine(t, nil)
	in := "fetched https://artifactory.corp.example.com/pkg today"
	out := e.RedactString("msg", in)
	assert.NotContains(t, out, "artifactory.corp.example.com")
	// The whole URL is consumed, not just the hostname inside it.
	assert.NotContains(t, out, "https://")
	assert.Contains(t, out, "fetched ")
	assert.Contains(t, out, " today")
}

func TestHostnameOnlyConfigReplacesHostInsideURL(t *testing.T) {
	e := newTestEngine(t, func(c *Config) {
		urls := c.Families[FamilyURLs]
		urls.Enabled = false
		c.Families[FamilyURLs] = urls
	})
	in := "fetched https://artifactory.corp.example.com/pkg today"
	out := e.RedactString("msg", in)
	assert.NotContains(t, out, "artifactory.corp.example.com")
	assert.Contains(t, out, "https://")
	assert.Contains(t, out, "/pkg")
}

func TestIPRedactionAndSafeAddresses(t *testing.T) {
	e := newTestEngine(t, nil)
	out := e.RedactString("msg", "peer 10.1.2.3:8080 connected")
	assert.NotContains(t, out, "10.1.2.3")

	out = e.RedactString("msg", "listening on 127.0.0.1:8080")
	assert.Contains(t, out, "127.0.0.1", "loopback addresses stay in the clear")

	out = e.RedactString("msg", "v6 loopback ::1 stays")
	assert.Contains(t, out, "::1")
}

func TestSafeHostnamesFromIgnoreExact(t *testing.T) {
	e := newTestEngine(t, nil)
	out := e.RedactString("msg", "db at localhost.localdomain responded")
	assert.Contains(t, out, "localhost.localdomain")
}

func TestEmailRedaction(t *testing.T) {
	e := newTestEngine(t, nil)
	out := e.RedactString("msg", "contact alice@example.com now")
	assert.NotContains(t, out, "alice@example.com")
}

func TestUUIDValidatedBeforeRedaction(t *testing.T) {
	e := newTestEngine(t, nil)
	out := e.RedactString("msg", "id 123e4567-e89b-12d3-a456-426614174000 done")
	assert.NotContains(t, out, "123e4567")
}

func TestNoRedactBypassesEverything(t *testing.T) {
	e := newTestEngine(t, func(c *Config) {
		c.NoRedact = []string{"alice@example.com"}
	})
	out := e.RedactString("msg", "contact alice@example.com now")
	assert.Contains(t, out, "alice@example.com")
}

func TestDiscoveredLowestPriority(t *testing.T) {
	e := newTestEngine(t, nil)
	e.InstallDiscovered(&types.DiscoveredPatterns{Values: []types.DiscoveredValue{
		{Value: "F5N", Type: types.PatternHostname, Occurrences: 3},
	}})

	out := e.RedactString("msg", "uname: Darwin f5n 22.6.0")
	assert.Equal(t, "uname: Darwin ***HOST*** 22.6.0", out)

	// A string already rewritten by a configured pattern is left alone.
	out = e.RedactString("msg", "mail f5n@example.com")
	assert.NotContains(t, out, "@example.com")
	assert.Contains(t, out, "***")
}

func TestDiscoveredLongestFirst(t *testing.T) {
	e := newTestEngine(t, nil)
	dp := &types.DiscoveredPatterns{Values: []types.DiscoveredValue{
		{Value: "alice", Type: types.PatternUsername, Occurrences: 1},
		{Value: "alicebob", Type: types.PatternUsername, Occurrences: 1},
	}}
	e.InstallDiscovered(dp)
	out := e.RedactString("msg", "pair alicebob and alice")
	assert.Equal(t, "pair ***USER*** and ***USER***", out)
}

func TestCustomPatternBeforeDiscovered(t *testing.T) {
	e := newTestEngine(t, func(c *Config) {
		c.CustomPatterns = []pattern.Config{{
			Name:    "ticket",
			Pattern: `TICKET-\d+`,
			Type:    types.PatternCustom,
			Enabled: true,
		}}
	})
	e.InstallDiscovered(&types.DiscoveredPatterns{Values: []types.DiscoveredValue{
		{Value: "1234", Type: types.PatternCustom, CustomName: "num", Occurrences: 1},
	}})
	out := e.RedactString("msg", "see TICKET-1234")
	assert.Equal(t, "see ***", out)
}

func TestPortFieldDetection(t *testing.T) {
	assert.True(t, IsPortField("port"))
	assert.True(t, IsPortField("remotePort"))
	assert.True(t, IsPortField("P"))
	assert.True(t, IsPortField("sourcePort"))
	assert.True(t, IsPortField("support"), `any name containing "port" counts`)
	assert.False(t, IsPortField("payloadSize"))
	assert.False(t, IsPortField("size"))
}

func TestPortPseudonymization(t *testing.T) {
	ps := pseudo.New(pseudo.Config{Enabled: true, Scope: pseudo.EverythingScope}, nil)
	e := New(DefaultConfig(), ps, NewStats(), nil)
	assert.Equal(t, int64(1000), e.RedactInt("port", 8080))
	assert.Equal(t, int64(1000), e.RedactInt("port", 8080))
	assert.Equal(t, int64(1001), e.RedactInt("port", 443))
	assert.Equal(t, int64(8080), e.RedactInt("payloadSize", 8080))
}

func TestRedactValueDispatch(t *testing.T) {
	e := newTestEngine(t, nil)
	v := e.RedactValue("password", jfr.String("s3cret"))
	assert.Equal(t, "***", v.S)

	arr := e.RedactValue("password", jfr.ArrayOf([]jfr.Value{jfr.String("a"), jfr.String("b")}))
	require.Equal(t, jfr.KindArray, arr.Kind)
	assert.Equal(t, "***", arr.Elems[0].S)

	b := e.RedactValue("flag", jfr.Bool(true))
	assert.True(t, b.AsBool())
}

func TestPseudonymizedReplacement(t *testing.T) {
	ps := pseudo.New(pseudo.Config{Enabled: true, HashLength: 8, Scope: pseudo.EverythingScope}, nil)
	e := New(DefaultConfig(), ps, NewStats(), nil)
	out := e.RedactString("msg", "contact alice@example.com now")
	assert.NotContains(t, out, "alice@example.com")
	assert.Contains(t, out, "<hash:")

	// Same input, same pseudonym.
	again := e.RedactString("msg", "contact alice@example.com now")
	assert.Equal(t, out, again)
}

func TestNoneEngineIsIdentity(t *testing.T) {
	e := None()
	assert.True(t, e.IsNone())
	assert.Equal(t, "secret@example.com", e.RedactString("password", "secret@example.com"))
	assert.Equal(t, int64(8080), e.RedactInt("port", 8080))
	assert.False(t, e.ShouldRemoveEventType("anything"))
}

func TestStatsCount(t *testing.T) {
	e := newTestEngine(t, nil)
	e.RedactString("password", "hunter2")
	e.RedactString("msg", "contact alice@example.com now")
	snap := e.Stats().Snapshot()
	assert.Equal(t, int64(2), snap.FieldsRedacted)
	cats := map[string]int64{}
	for _, c := range snap.ByCategory {
		cats[c.Key] = c.Count
	}
	assert.Equal(t, int64(1), cats["property"])
	assert.Equal(t, int64(1), cats["email"])
}

func TestIgnoreAfterSuppressesFamilyMatch(t *testing.T) {
	e := newTestEngine(t, func(c *Config) {
		ip := c.Families[FamilyIP]
		ip.IgnoreAfter = []string{"gateway "}
		c.Families[FamilyIP] = ip
	})
	out := e.RedactString("msg", "gateway 10.0.0.1 and host 10.0.0.2")
	assert.Contains(t, out, "10.0.0.1")
	assert.NotContains(t, out, "10.0.0.2")
}

func TestRedactionTextConfigurable(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.RedactionText = "[GONE]" })
	out := e.RedactString("msg", "contact alice@example.com now")
	assert.True(t, strings.Contains(out, "[GONE]"))
}
