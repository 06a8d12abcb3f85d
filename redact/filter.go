package redact

import (
	"strings"

	"github.com/parttimenerd/jfr-redact-sub000/jfr"
)

// Filtering holds the include/exclude lists for events, categories and
// threads. Patterns support '*' and '?' wildcards; matching ignores case.
type Filtering struct {
	IncludeEvents     []string
	ExcludeEvents     []string
	IncludeCategories []string
	ExcludeCategories []string
	IncludeThreads    []string
	ExcludeThreads    []string
}

// EventsConfig is the event-removal policy.
type EventsConfig struct {
	RemoveEnabled bool
	RemovedTypes  []string
	Filtering     Filtering
}

// matchWildcard matches s against a pattern with '*' (any run) and '?'
// (any single byte), case-insensitively.
func matchWildcard(pattern, s string) bool {
	return matchFold(strings.ToLower(pattern), strings.ToLower(s))
}

func matchFold(p, s string) bool {
	// Iterative glob with single backtrack point.
	pi, si := 0, 0
	star, mark := -1, 0
	for si < len(s) {
		switch {
		case pi < len(p) && (p[pi] == '?' || p[pi] == s[si]):
			pi++
			si++
		case pi < len(p) && p[pi] == '*':
			star, mark = pi, si
			pi++
		case star >= 0:
			mark++
			pi, si = star+1, mark
		default:
			return false
		}
	}
	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}

func matchAny(patterns []string, s string) bool {
	for _, p := range patterns {
		if matchWildcard(p, s) {
			return true
		}
	}
	return false
}

// ShouldRemoveEventType consults the per-type removal list.
func (e *Engine) ShouldRemoveEventType(eventType string) bool {
	if e.none || !e.cfg.Events.RemoveEnabled {
		return false
	}
	return matchAny(e.cfg.Events.RemovedTypes, eventType)
}

// ShouldRemoveEvent applies the composite policy: removed types, then
// thread rules, then event-name rules, then category rules. Thread rules
// are evaluated first and independently: an event whose thread fails the
// thread include list or matches the thread exclude list is removed no
// matter what the event and category rules say. True means remove.
func (e *Engine) ShouldRemoveEvent(ev *jfr.Event) bool {
	if e.none || ev == nil || ev.Type == nil {
		return false
	}
	name := ev.Type.Name
	if e.ShouldRemoveEventType(name) {
		return true
	}
	f := &e.cfg.Events.Filtering
	for _, thread := range []string{jfr.ThreadName(ev.Thread()), jfr.ThreadName(ev.SampledThread())} {
		if thread == "" {
			continue
		}
		if len(f.IncludeThreads) > 0 && !matchAny(f.IncludeThreads, thread) {
			return true
		}
		if matchAny(f.ExcludeThreads, thread) {
			return true
		}
	}
	if len(f.IncludeEvents) > 0 && !matchAny(f.IncludeEvents, name) {
		return true
	}
	if matchAny(f.ExcludeEvents, name) {
		return true
	}
	cats := ev.Categories()
	if len(f.IncludeCategories) > 0 {
		any := false
		for _, c := range cats {
			if matchAny(f.IncludeCategories, c) {
				any = true
				break
			}
		}
		if !any {
			return true
		}
	}
	for _, c := range cats {
		if matchAny(f.ExcludeCategories, c) {
			return true
		}
	}
	return false
}
