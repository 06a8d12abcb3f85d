package pseudo

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/parttimenerd/jfr-redact-sub000/pkg/types"
)

// Scope toggles pseudonymization per value category.
type Scope struct {
	Properties bool
	Strings    bool
	Network    bool
	Paths      bool
	Ports      bool
}

// Config is the pseudonymization policy.
type Config struct {
	Enabled            bool
	Mode               types.PseudonymMode
	CustomPrefix       string
	CustomSuffix       string
	HashLength         int    // clamped to [6,32]
	HashAlgorithm      string // sha-256 is the only supported algorithm
	Scope              Scope
	CustomReplacements map[string]string
	PatternGenerators  map[string]string // pattern name -> printf template with one %d
}

// EverythingScope enables all categories.
var EverythingScope = Scope{Properties: true, Strings: true, Network: true, Paths: true, Ports: true}

const (
	minHashLength      = 6
	maxHashLength      = 32
	firstPseudonymPort = 1000
)

// Pseudonymizer is the stable value-to-pseudonym mapper. Safe for use from
// multiple goroutines; cache access is serialized.
type Pseudonymizer struct {
	cfg Config
	log *zap.Logger

	mu              sync.Mutex
	cache           map[string]string
	portCache       map[int64]int64
	counter         uint64
	portCounter     int64
	patternCounters map[string]uint64
	realistic       *realisticState
}

// New builds a pseudonymizer from the given policy.
func New(cfg Config, log *zap.Logger) *Pseudonymizer {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.HashLength < minHashLength {
		cfg.HashLength = minHashLength
	}
	if cfg.HashLength > maxHashLength {
		cfg.HashLength = maxHashLength
	}
	if cfg.HashAlgorithm != "" && !strings.EqualFold(cfg.HashAlgorithm, "sha-256") && !strings.EqualFold(cfg.HashAlgorithm, "sha256") {
		log.Warn("unsupported hash algorithm, using SHA-256", zap.String("algorithm", cfg.HashAlgorithm))
	}
	p := &Pseudonymizer{cfg: cfg, log: log}
	p.reset()
	return p
}

func (p *Pseudonymizer) reset() {
	p.cache = make(map[string]string)
	p.portCache = make(map[int64]int64)
	p.counter = 0
	p.portCounter = firstPseudonymPort
	p.patternCounters = make(map[string]uint64)
	p.realistic = newRealisticState(p.cfg.CustomPrefix, p.cfg.CustomSuffix)
}

// Enabled reports whether pseudonyms are generated at all.
func (p *Pseudonymizer) Enabled() bool { return p.cfg.Enabled }

// InScope reports whether the given category is pseudonymized.
func (p *Pseudonymizer) InScope(pick func(Scope) bool) bool {
	return p.cfg.Enabled && pick(p.cfg.Scope)
}

// Pseudonymize returns the stable pseudonym for value. When disabled it
// returns fallback (the fixed redaction text).
func (p *Pseudonymizer) Pseudonymize(value, fallback string) string {
	if !p.cfg.Enabled {
		return fallback
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pseudonymizeLocked(value)
}

func (p *Pseudonymizer) pseudonymizeLocked(value string) string {
	if repl, ok := p.cfg.CustomReplacements[value]; ok {
		return repl
	}
	if repl, ok := p.cfg.CustomReplacements[strings.ToLower(value)]; ok {
		return repl
	}
	if out, ok := p.cache[value]; ok {
		return out
	}
	out := p.generate(value)
	p.cache[value] = out
	return out
}

// PseudonymizeWithPattern prefers a named pattern generator when one is
// configured, falling back to the regular generation modes.
func (p *Pseudonymizer) PseudonymizeWithPattern(value, patternName, fallback string) string {
	if !p.cfg.Enabled {
		return fallback
	}
	tmpl, ok := p.cfg.PatternGenerators[patternName]
	if !ok {
		return p.Pseudonymize(value, fallback)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	key := patternName + "\x00" + value
	if out, ok := p.cache[key]; ok {
		return out
	}
	p.patternCounters[patternName]++
	out := renderPattern(tmpl, p.patternCounters[patternName])
	p.cache[key] = out
	return out
}

// renderPattern applies the template's %d verb; templates without a verb get
// the id appended so distinct values stay distinct.
func renderPattern(tmpl string, id uint64) string {
	if strings.Contains(tmpl, "%") {
		return fmt.Sprintf(tmpl, id)
	}
	return fmt.Sprintf("%s%d", tmpl, id)
}

// PseudonymizePort maps a port onto a stable substitute. Ports are always
// counter-based starting at 1000, regardless of the global mode, and the
// mapping is injective within a run.
func (p *Pseudonymizer) PseudonymizePort(port int64) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if out, ok := p.portCache[port]; ok {
		return out
	}
	out := p.portCounter
	p.portCounter++
	p.portCache[port] = out
	return out
}

// ClearCache wipes both caches and resets the counters.
func (p *Pseudonymizer) ClearCache() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}

func (p *Pseudonymizer) generate(value string) string {
	switch p.cfg.Mode {
	case types.PseudonymCounter:
		p.counter++
		return p.decorate("redacted", fmt.Sprintf("%d", p.counter))
	case types.PseudonymRealistic:
		return p.realistic.replacement(value)
	default: // hash
		sum := sha256.Sum256([]byte(value))
		h := hex.EncodeToString(sum[:])[:p.cfg.HashLength]
		return p.decorate("hash", h)
	}
}

// decorate wraps the generated id with the configured prefix/suffix, falling
// back to the "<kind:id>" form.
func (p *Pseudonymizer) decorate(kind, id string) string {
	prefix, suffix := p.cfg.CustomPrefix, p.cfg.CustomSuffix
	if prefix == "" && suffix == "" {
		return "<" + kind + ":" + id + ">"
	}
	return prefix + id + suffix
}
