package redact

import (
	"net"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parttimenerd/jfr-redact-sub000/redact/pattern"
	"github.com/parttimenerd/jfr-redact-sub000/redact/pseudo"
)

// family is one compiled built-in pattern family with its redaction
// behavior: which capture group to replace, the stats category, the
// pseudonymization scope and the candidate validators.
type family struct {
	key         string
	category    string
	group       int // capture group replaced; 0 = whole match
	placeholder string
	scope       func(pseudo.Scope) bool
	safeIP      bool
	checkUUID   bool
	extractors  []*pattern.Extractor
}

// familyOrder fixes the priority: IP before URLs so addresses inside URLs
// fire first, home directories before hostnames so the captured user wins,
// discovered values last of all (handled by the engine).
var familyOrder = []family{
	{key: FamilyIP, category: "ip", safeIP: true, scope: func(s pseudo.Scope) bool { return s.Network }},
	{key: FamilyEmail, category: "email", scope: func(s pseudo.Scope) bool { return s.Strings }},
	{key: FamilyHomeDirs, category: "home_directory", group: 1, placeholder: "***USER***", scope: func(s pseudo.Scope) bool { return s.Paths }},
	{key: FamilyURLs, category: "internal_url", scope: func(s pseudo.Scope) bool { return s.Network }},
	{key: FamilyHostname, category: "hostname", scope: func(s pseudo.Scope) bool { return s.Network }},
	{key: FamilyUUID, category: "uuid", checkUUID: true, scope: func(s pseudo.Scope) bool { return s.Strings }},
	{key: FamilySSHHosts, category: "ssh_host", scope: func(s pseudo.Scope) bool { return s.Network }},
}

func (e *Engine) compileFamilies() {
	for _, spec := range familyOrder {
		cfg, ok := e.cfg.Families[spec.key]
		if !ok || !cfg.Enabled {
			continue
		}
		fam := spec
		for _, pat := range familyPatterns(spec.key, cfg) {
			ex, err := pattern.CompileExtractor(pattern.Config{
				Name:        spec.key,
				Pattern:     pat,
				Enabled:     true,
				IgnoreExact: cfg.IgnoreExact,
				IgnoreRegex: cfg.Ignore,
				IgnoreAfter: cfg.IgnoreAfter,
			})
			if err != nil {
				e.log.Warn("skipping invalid family pattern",
					zap.String("family", spec.key),
					zap.String("pattern", pat),
					zap.Error(err))
				continue
			}
			fam.extractors = append(fam.extractors, ex)
		}
		if len(fam.extractors) > 0 {
			e.families = append(e.families, &fam)
		}
	}
}

// applyFamily rewrites every surviving match of the family in s.
func (e *Engine) applyFamily(fam *family, field, s string) (string, bool) {
	changed := false
	for _, ex := range fam.extractors {
		group := fam.group
		if group > 0 {
			if rm, ok := ex.Matcher.(*pattern.RegexMatcher); !ok || rm.Regexp.NumSubexp() < group {
				group = 0
			}
		}
		out, c := e.rewrite(ex, field, s, group, fam.category, fam.placeholder, fam.scope, func(candidate string) bool {
			if fam.safeIP && isSafeAddress(candidate) {
				return false
			}
			if fam.checkUUID && !isValidUUID(candidate) {
				return false
			}
			return true
		})
		s = out
		changed = changed || c
	}
	return s, changed
}

// applyExtractor applies one custom pattern; the whole match (or its
// configured capture group) is replaced.
func (e *Engine) applyExtractor(ex *pattern.Extractor, field, s, category, patternName string, scope func(pseudo.Scope) bool) (string, bool) {
	return e.rewrite(ex, field, s, ex.CaptureGroup, category, "", scope, nil)
}

// rewrite is the shared replacement walk: it keeps the text around each
// surviving match and splices the replacement over the match's group span,
// which is what preserves path structure for capture-group patterns.
func (e *Engine) rewrite(ex *pattern.Extractor, field, s string, group int, category, placeholder string, scope func(pseudo.Scope) bool, accept func(string) bool) (string, bool) {
	ms := ex.Matcher.Matches(s, group)
	if len(ms) == 0 {
		return s, false
	}
	var b strings.Builder
	last := 0
	changed := false
	for _, m := range ms {
		if m.GroupStart < last {
			continue
		}
		candidate := s[m.GroupStart:m.GroupEnd]
		if candidate == "" {
			continue
		}
		if e.bypassed(candidate) || ex.Ignored(candidate, s, m.GroupStart) {
			continue
		}
		if accept != nil && !accept(candidate) {
			continue
		}
		repl := placeholder
		if repl == "" {
			repl = e.cfg.RedactionText
		}
		if e.ps.InScope(scope) {
			repl = e.ps.PseudonymizeWithPattern(candidate, ex.Name, repl)
		}
		b.WriteString(s[last:m.GroupStart])
		b.WriteString(repl)
		last = m.GroupEnd
		changed = true
		e.stats.CountRedaction(field, category)
	}
	if !changed {
		return s, false
	}
	b.WriteString(s[last:])
	return b.String(), true
}

// isSafeAddress recognizes loopback addresses that stay in the clear:
// 127.0.0.0/8 and ::1.
func isSafeAddress(candidate string) bool {
	host := candidate
	if h, _, err := net.SplitHostPort(candidate); err == nil {
		host = h
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback()
}

// isValidUUID confirms a candidate before replacement to cut false
// positives from hex-ish strings.
func isValidUUID(candidate string) bool {
	_, err := uuid.Parse(candidate)
	return err == nil
}
