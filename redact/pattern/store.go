package pattern

import (
	"strings"

	"github.com/parttimenerd/jfr-redact-sub000/pkg/types"
)

// Store collects discovered literal values for one extractor. Keys are
// normalized by case iff the owning extractor is case-insensitive; counting
// is per insertion, so re-adding an existing key bumps its occurrence count.
type Store struct {
	caseSensitive bool
	whitelist     map[string]struct{} // lowercased entries
	entries       map[storeKey]*types.DiscoveredValue
}

type storeKey struct {
	value  string
	typ    types.PatternType
	custom string
}

// NewStore builds an empty store. Whitelisted values are never recorded;
// comparison ignores case.
func NewStore(caseSensitive bool, whitelist []string) *Store {
	s := &Store{
		caseSensitive: caseSensitive,
		whitelist:     make(map[string]struct{}, len(whitelist)),
		entries:       make(map[storeKey]*types.DiscoveredValue),
	}
	for _, w := range whitelist {
		s.whitelist[strings.ToLower(w)] = struct{}{}
	}
	return s
}

// CaseSensitive reports the store's normalization mode.
func (s *Store) CaseSensitive() bool { return s.caseSensitive }

func (s *Store) normalize(v string) string {
	if s.caseSensitive {
		return v
	}
	return strings.ToLower(v)
}

// Add records one occurrence of value. Empty and whitelisted values are
// dropped silently.
func (s *Store) Add(value string, typ types.PatternType, custom string) {
	if value == "" {
		return
	}
	if _, ok := s.whitelist[strings.ToLower(value)]; ok {
		return
	}
	key := storeKey{value: s.normalize(value), typ: typ, custom: custom}
	if e, ok := s.entries[key]; ok {
		e.Occurrences++
		return
	}
	s.entries[key] = &types.DiscoveredValue{
		Value:       value,
		Type:        typ,
		CustomName:  custom,
		Occurrences: 1,
	}
}

// AddN records value n times in one step; used when merging stores so
// occurrence counts survive.
func (s *Store) AddN(value string, typ types.PatternType, custom string, n int) {
	for i := 0; i < n; i++ {
		s.Add(value, typ, custom)
	}
}

// Get returns the discovered value whose normalized form matches value.
func (s *Store) Get(value string) (types.DiscoveredValue, bool) {
	norm := s.normalize(value)
	for key, e := range s.entries {
		if key.value == norm {
			return *e, true
		}
	}
	return types.DiscoveredValue{}, false
}

// Len returns the number of distinct values recorded.
func (s *Store) Len() int { return len(s.entries) }

// Clear drops all recorded values; used between independent input files.
func (s *Store) Clear() {
	s.entries = make(map[storeKey]*types.DiscoveredValue)
}

// Values returns the recorded values with at least minOccurrences, ordered
// longest-first (ties by type, then lexicographically). The ordering is the
// safety contract that keeps a short value from being replaced inside a
// longer one that contains it.
func (s *Store) Values(minOccurrences int) []types.DiscoveredValue {
	out := make([]types.DiscoveredValue, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Occurrences >= minOccurrences {
			out = append(out, *e)
		}
	}
	d := types.DiscoveredPatterns{Values: out}
	d.Sort()
	return d.Values
}
