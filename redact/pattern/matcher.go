package pattern

import (
	"regexp"
	"strings"
)

// Match is one occurrence of a pattern in a subject string. Group spans the
// configured capture group (the whole match for group 0 or literal patterns).
type Match struct {
	Start, End           int
	GroupStart, GroupEnd int
}

// Matcher is the common contract of literal and regex patterns.
type Matcher interface {
	// Find reports whether the subject contains at least one occurrence.
	Find(s string) bool
	// Matches returns all non-overlapping occurrences with the spans of the
	// given capture group. Group indexes beyond the pattern's groups yield
	// no matches.
	Matches(s string, group int) []Match
}

// regexMetachars is the set whose absence marks a pattern as a plain literal.
const regexMetachars = `.*+?[](){}^$|\`

// IsLiteral reports whether the pattern contains no regex metacharacters and
// can be matched by substring search.
func IsLiteral(pattern string) bool {
	return !strings.ContainsAny(pattern, regexMetachars)
}

// StringMatcher finds a literal substring, optionally case-folded.
type StringMatcher struct {
	Substring string
	Fold      bool

	folded string
}

// NewStringMatcher builds a literal matcher.
func NewStringMatcher(substring string, fold bool) *StringMatcher {
	m := &StringMatcher{Substring: substring, Fold: fold}
	if fold {
		m.folded = strings.ToLower(substring)
	}
	return m
}

func (m *StringMatcher) subject(s string) (subject, needle string) {
	if m.Fold {
		return strings.ToLower(s), m.folded
	}
	return s, m.Substring
}

// Find reports whether the substring occurs in s.
func (m *StringMatcher) Find(s string) bool {
	subject, needle := m.subject(s)
	return needle != "" && strings.Contains(subject, needle)
}

// Matches returns all non-overlapping occurrences. Only group 0 exists for
// literals; other groups match nothing.
func (m *StringMatcher) Matches(s string, group int) []Match {
	if group != 0 {
		return nil
	}
	subject, needle := m.subject(s)
	if needle == "" {
		return nil
	}
	var out []Match
	for off := 0; ; {
		i := strings.Index(subject[off:], needle)
		if i < 0 {
			return out
		}
		start := off + i
		end := start + len(needle)
		out = append(out, Match{Start: start, End: end, GroupStart: start, GroupEnd: end})
		off = end
	}
}

// RegexMatcher wraps a compiled regular expression.
type RegexMatcher struct {
	Regexp *regexp.Regexp
}

// Find reports whether the pattern occurs in s.
func (m *RegexMatcher) Find(s string) bool {
	return m.Regexp.MatchString(s)
}

// Matches returns all non-overlapping occurrences with group spans.
func (m *RegexMatcher) Matches(s string, group int) []Match {
	idx := m.Regexp.FindAllStringSubmatchIndex(s, -1)
	if idx == nil {
		return nil
	}
	out := make([]Match, 0, len(idx))
	for _, loc := range idx {
		g := 2 * group
		if g+1 >= len(loc) || loc[g] < 0 {
			continue
		}
		out = append(out, Match{Start: loc[0], End: loc[1], GroupStart: loc[g], GroupEnd: loc[g+1]})
	}
	return out
}

// Compile classifies the pattern and builds the right matcher variant.
// Case-insensitive regexes are compiled with the (?i) flag.
func Compile(pat string, caseSensitive bool) (Matcher, error) {
	if IsLiteral(pat) {
		return NewStringMatcher(pat, !caseSensitive), nil
	}
	expr := pat
	if !caseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &RegexMatcher{Regexp: re}, nil
}
