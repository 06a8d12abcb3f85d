package redact

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/parttimenerd/jfr-redact-sub000/jfr"
	"github.com/parttimenerd/jfr-redact-sub000/pkg/types"
	"github.com/parttimenerd/jfr-redact-sub000/redact/pattern"
	"github.com/parttimenerd/jfr-redact-sub000/redact/pseudo"
)

// Engine is the per-field value rewriter and event-level filter.
type Engine struct {
	none bool

	cfg      Config
	log      *zap.Logger
	ps       *pseudo.Pseudonymizer
	stats    *Stats
	props    []*regexp.Regexp
	families []*family
	custom   []*pattern.Extractor

	discovered []discoveredMatcher
}

type discoveredMatcher struct {
	value       types.DiscoveredValue
	matcher     *pattern.StringMatcher
	placeholder string
}

// New builds an engine from the policy. A nil pseudonymizer disables
// pseudonym generation; replacements then use the fixed redaction text.
func New(cfg Config, ps *pseudo.Pseudonymizer, stats *Stats, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if stats == nil {
		stats = NewStats()
	}
	if ps == nil {
		ps = pseudo.New(pseudo.Config{}, log)
	}
	if cfg.RedactionText == "" {
		cfg.RedactionText = DefaultRedactionText
	}
	e := &Engine{cfg: cfg, log: log, ps: ps, stats: stats}
	for _, p := range cfg.PropertyNames {
		re, err := regexp.Compile(p)
		if err != nil {
			log.Warn("skipping invalid property-name pattern", zap.String("pattern", p), zap.Error(err))
			continue
		}
		e.props = append(e.props, re)
	}
	e.compileFamilies()
	e.custom = pattern.CompileExtractors(cfg.CustomPatterns, log)
	return e
}

// None returns the distinguished no-op engine: every operation returns its
// input and its own rewriting never touches statistics. The stats handle is
// still valid so callers may count events against it.
func None() *Engine {
	return &Engine{none: true, stats: NewStats()}
}

// IsNone reports whether the engine is the no-op variant.
func (e *Engine) IsNone() bool { return e.none }

// Stats exposes the engine's counters.
func (e *Engine) Stats() *Stats { return e.stats }

// Pseudonymizer exposes the engine's value mapper.
func (e *Engine) Pseudonymizer() *pseudo.Pseudonymizer { return e.ps }

// InstallDiscovered replaces the engine's discovered-pattern set. Values
// are applied longest-first; DiscoveredPatterns guarantees that order.
func (e *Engine) InstallDiscovered(dp *types.DiscoveredPatterns) {
	if e.none || dp == nil {
		return
	}
	dp.Sort()
	e.discovered = e.discovered[:0]
	for _, v := range dp.Values {
		e.discovered = append(e.discovered, discoveredMatcher{
			value:       v,
			matcher:     pattern.NewStringMatcher(v.Value, true),
			placeholder: discoveredPlaceholder(v),
		})
	}
}

// discoveredPlaceholder picks the typed placeholder used when
// pseudonymization is off.
func discoveredPlaceholder(v types.DiscoveredValue) string {
	switch v.Type {
	case types.PatternUsername:
		return "***USER***"
	case types.PatternHostname:
		return "***HOST***"
	case types.PatternEmailLocalPart:
		return "***EMAIL***"
	default:
		name := v.CustomName
		if name == "" {
			name = "CUSTOM"
		}
		return "***" + strings.ToUpper(name) + "***"
	}
}

// bypassed implements the global no_redact list.
func (e *Engine) bypassed(candidate string) bool {
	for _, v := range e.cfg.NoRedact {
		if strings.EqualFold(candidate, v) {
			return true
		}
	}
	return false
}

// matchesPropertyName reports whether the field's name alone marks its
// value as sensitive.
func (e *Engine) matchesPropertyName(field string) bool {
	for _, re := range e.props {
		if re.MatchString(field) {
			return true
		}
	}
	return false
}

// RedactString rewrites one string field value.
func (e *Engine) RedactString(field, value string) string {
	if e.none || value == "" {
		return value
	}
	if e.matchesPropertyName(field) {
		if e.bypassed(value) {
			return value
		}
		out := e.replacementFor(value, "property", func(s pseudo.Scope) bool { return s.Properties })
		if out != value {
			e.stats.CountRedaction(field, "property")
		}
		return out
	}
	out := value
	changed := false
	for _, fam := range e.families {
		var c bool
		out, c = e.applyFamily(fam, field, out)
		changed = changed || c
	}
	for _, ex := range e.custom {
		var c bool
		out, c = e.applyExtractor(ex, field, out, "custom", ex.Name, func(s pseudo.Scope) bool { return s.Strings })
		changed = changed || c
	}
	// Discovered values are the lowest priority: configured rules already
	// rewrote the string, so they take precedence.
	if !changed {
		out = e.applyDiscovered(field, out)
	}
	return out
}

func (e *Engine) applyDiscovered(field, s string) string {
	for _, d := range e.discovered {
		ms := d.matcher.Matches(s, 0)
		if len(ms) == 0 {
			continue
		}
		var b strings.Builder
		last := 0
		hit := false
		for _, m := range ms {
			candidate := s[m.Start:m.End]
			if e.bypassed(candidate) {
				continue
			}
			repl := d.placeholder
			if e.ps.InScope(func(sc pseudo.Scope) bool { return sc.Strings }) {
				repl = e.ps.Pseudonymize(strings.ToLower(candidate), d.placeholder)
			}
			b.WriteString(s[last:m.Start])
			b.WriteString(repl)
			last = m.End
			hit = true
		}
		if hit {
			b.WriteString(s[last:])
			s = b.String()
			e.stats.CountRedaction(field, "discovered")
		}
	}
	return s
}

// replacementFor routes a candidate through the pseudonymizer when the
// category's scope allows it, else the fixed redaction text.
func (e *Engine) replacementFor(candidate, patternName string, pick func(pseudo.Scope) bool) string {
	if e.ps.InScope(pick) {
		return e.ps.PseudonymizeWithPattern(candidate, patternName, e.cfg.RedactionText)
	}
	return e.cfg.RedactionText
}

// portFieldNames are the exact names treated as ports besides any name
// containing "port".
var portFieldNames = map[string]bool{"p": true, "sourceport": true, "destinationport": true}

// IsPortField classifies integer field names that carry port numbers.
func IsPortField(field string) bool {
	f := strings.ToLower(field)
	return strings.Contains(f, "port") || portFieldNames[f]
}

// RedactInt rewrites integer fields: port-like fields are mapped through
// the port pseudonymizer, everything else passes through unchanged.
func (e *Engine) RedactInt(field string, v int64) int64 {
	if e.none || !IsPortField(field) {
		return v
	}
	if e.ps != nil && !e.ps.InScope(func(s pseudo.Scope) bool { return s.Ports }) && e.ps.Enabled() {
		return v
	}
	out := e.ps.PseudonymizePort(v)
	if out != v {
		e.stats.CountRedaction(field, "port")
	}
	return out
}

// RedactValue dispatches on the value's kind: strings and integers are
// rewritten, arrays recurse element-wise, every other primitive is
// identity. Structured objects are returned untouched; the transcoder
// walks into them with their own field names.
func (e *Engine) RedactValue(field string, v jfr.Value) jfr.Value {
	if e.none {
		return v
	}
	switch v.Kind {
	case jfr.KindString:
		out := e.RedactString(field, v.S)
		if out != v.S {
			return jfr.String(out)
		}
		return v
	case jfr.KindInt, jfr.KindLong, jfr.KindShort:
		out := e.RedactInt(field, v.I)
		if out != v.I {
			return jfr.Integral(v.Kind, out)
		}
		return v
	case jfr.KindArray:
		for i := range v.Elems {
			v.Elems[i] = e.RedactValue(field, v.Elems[i])
		}
		return v
	default:
		return v
	}
}
