package pseudo

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
)

// Realistic mode swaps values for plausible-looking ones instead of opaque
// tokens, preserving the shape of emails, home paths and plain usernames so
// downstream tooling keeps parsing the recording.

var namePool = []string{
	"alex", "bailey", "casey", "dana", "eli", "frankie", "glen", "harper",
	"indra", "jordan", "kai", "logan", "morgan", "noel", "oakley", "parker",
	"quinn", "riley", "sam", "taylor", "uma", "val", "winter", "xia",
	"yuri", "zion", "arden", "blake", "cameron", "devon", "emery", "finley",
}

var companyPool = []string{
	"acme", "globex", "initech", "umbrella", "hooli", "stark", "wayne",
	"wonka", "tyrell", "cyberdyne", "aperture", "vandelay",
}

// realisticState keeps one cache per sub-domain (names, emails, paths and
// user folders) so a username reused inside an email and inside a path still
// maps consistently within each shape.
type realisticState struct {
	order []string // pool permutation, seeded by the formatter strings

	names       map[string]string
	emails      map[string]string
	paths       map[string]string
	userFolders map[string]string
	assigned    int
}

// newRealisticState seeds the pool permutation deterministically from the
// formatter strings so a fixed configuration yields a fixed assignment order.
func newRealisticState(prefix, suffix string) *realisticState {
	seed := xxh3.HashString(prefix + "\x00" + suffix)
	order := make([]string, len(namePool))
	copy(order, namePool)
	// Fisher-Yates with a splitmix-style stream derived from the seed.
	s := seed
	for i := len(order) - 1; i > 0; i-- {
		s = xxh3.HashString(fmt.Sprintf("%x", s))
		j := int(s % uint64(i+1))
		order[i], order[j] = order[j], order[i]
	}
	return &realisticState{
		order:       order,
		names:       make(map[string]string),
		emails:      make(map[string]string),
		paths:       make(map[string]string),
		userFolders: make(map[string]string),
	}
}

// nextName hands out pool names in permutation order; only after the pool is
// exhausted does it fall back to combination pairs.
func (r *realisticState) nextName() string {
	n := r.assigned
	r.assigned++
	if n < len(r.order) {
		return r.order[n]
	}
	n -= len(r.order)
	first := r.order[n%len(r.order)]
	second := r.order[(n/len(r.order))%len(r.order)]
	return first + "." + second
}

func (r *realisticState) name(value string) string {
	if out, ok := r.names[value]; ok {
		return out
	}
	out := r.nextName()
	r.names[value] = out
	return out
}

func (r *realisticState) company(value string) string {
	h := xxh3.HashString(value)
	return companyPool[h%uint64(len(companyPool))]
}

// replacement picks a format-preserving substitute for value.
func (r *realisticState) replacement(value string) string {
	if at := strings.IndexByte(value, '@'); at > 0 && at < len(value)-1 && !strings.ContainsAny(value, " \t") {
		if out, ok := r.emails[value]; ok {
			return out
		}
		local := r.name(value[:at])
		out := local + "@" + r.company(value[at+1:]) + ".com"
		r.emails[value] = out
		return out
	}
	if prefix, user, rest, ok := splitHomePath(value); ok {
		if out, ok := r.paths[value]; ok {
			return out
		}
		folder, seen := r.userFolders[user]
		if !seen {
			folder = r.name(user)
			r.userFolders[user] = folder
		}
		out := prefix + folder + rest
		r.paths[value] = out
		return out
	}
	return r.name(value)
}

// splitHomePath recognizes Unix and Windows home directories and isolates
// the user segment.
func splitHomePath(value string) (prefix, user, rest string, ok bool) {
	for _, p := range []string{"/Users/", "/home/"} {
		if strings.HasPrefix(value, p) {
			tail := value[len(p):]
			end := strings.IndexByte(tail, '/')
			if end < 0 {
				return p, tail, "", tail != ""
			}
			return p, tail[:end], tail[end:], end > 0
		}
	}
	if len(value) >= 10 && value[1] == ':' && strings.EqualFold(value[2:9], `\Users\`) {
		p, tail := value[:9], value[9:]
		end := strings.IndexByte(tail, '\\')
		if end < 0 {
			return p, tail, "", tail != ""
		}
		return p, tail[:end], tail[end:], end > 0
	}
	return "", "", "", false
}
