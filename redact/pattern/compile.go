package pattern

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/parttimenerd/jfr-redact-sub000/pkg/types"
)

// Config is the per-extractor policy: one pattern plus the knobs governing
// what it may learn.
type Config struct {
	Name           string
	Pattern        string
	CaptureGroup   int // 0 = whole match
	Type           types.PatternType
	CustomName     string // bucket key for PatternCustom
	CaseSensitive  bool
	MinOccurrences int
	Whitelist      []string
	IgnoreExact    []string
	IgnoreRegex    []string
	IgnoreAfter    []string
	Enabled        bool
}

// Extractor is a compiled pattern bundled with its policy and its private
// discovery store.
type Extractor struct {
	Config
	Matcher Matcher
	Store   *Store

	ignoreRes []*regexp.Regexp
}

// CompileExtractors compiles every enabled config. A pattern that fails to
// compile is logged with the offending entry's name and skipped; compilation
// is never fatal.
func CompileExtractors(cfgs []Config, log *zap.Logger) []*Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	out := make([]*Extractor, 0, len(cfgs))
	for _, cfg := range cfgs {
		if !cfg.Enabled {
			continue
		}
		e, err := CompileExtractor(cfg)
		if err != nil {
			log.Warn("skipping extractor with invalid pattern",
				zap.String("name", cfg.Name),
				zap.String("pattern", cfg.Pattern),
				zap.Error(err))
			continue
		}
		out = append(out, e)
	}
	return out
}

// CompileExtractor compiles a single config.
func CompileExtractor(cfg Config) (*Extractor, error) {
	if cfg.MinOccurrences < 1 {
		cfg.MinOccurrences = 1
	}
	m, err := Compile(cfg.Pattern, cfg.CaseSensitive)
	if err != nil {
		return nil, err
	}
	e := &Extractor{
		Config:  cfg,
		Matcher: m,
		Store:   NewStore(cfg.CaseSensitive, cfg.Whitelist),
	}
	for _, pat := range cfg.IgnoreRegex {
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, err
		}
		e.ignoreRes = append(e.ignoreRes, re)
	}
	return e, nil
}

// Ignored reports whether a candidate match must be suppressed: it equals an
// ignore_exact entry (case-insensitive), matches an ignore regex, or is
// directly preceded in the surrounding text by an ignore_after prefix.
func (e *Extractor) Ignored(candidate, context string, pos int) bool {
	for _, ig := range e.IgnoreExact {
		if strings.EqualFold(candidate, ig) {
			return true
		}
	}
	for _, re := range e.ignoreRes {
		if re.MatchString(candidate) {
			return true
		}
	}
	for _, prefix := range e.IgnoreAfter {
		if prefix == "" {
			continue
		}
		if pos >= len(prefix) && strings.HasSuffix(context[:pos], prefix) {
			return true
		}
	}
	return false
}

// ExtractLine runs the extractor over a text line and records every
// surviving capture into its store.
func (e *Extractor) ExtractLine(line string) {
	for _, m := range e.Matcher.Matches(line, e.CaptureGroup) {
		candidate := line[m.GroupStart:m.GroupEnd]
		if candidate == "" {
			continue
		}
		if e.Ignored(candidate, line, m.GroupStart) {
			continue
		}
		e.Store.Add(candidate, e.Type, e.CustomName)
	}
}
