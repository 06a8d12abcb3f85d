package discovery

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/parttimenerd/jfr-redact-sub000/pkg/types"
)

// DecisionFile is the persisted form of interactive decisions, keyed by
// lowercased value per category.
type DecisionFile struct {
	Version        int                                  `yaml:"version"`
	Usernames      map[string]types.Decision            `yaml:"usernames,omitempty"`
	Hostnames      map[string]types.Decision            `yaml:"hostnames,omitempty"`
	Folders        map[string]types.Decision            `yaml:"folders,omitempty"`
	CustomPatterns map[string]map[string]types.Decision `yaml:"custom_patterns,omitempty"`
}

// CurrentDecisionVersion is written into new files.
const CurrentDecisionVersion = 1

// NewDecisionFile returns an empty decision set.
func NewDecisionFile() *DecisionFile {
	return &DecisionFile{
		Version:        CurrentDecisionVersion,
		Usernames:      map[string]types.Decision{},
		Hostnames:      map[string]types.Decision{},
		Folders:        map[string]types.Decision{},
		CustomPatterns: map[string]map[string]types.Decision{},
	}
}

// LoadDecisions reads a decision file. A missing file is an empty decision
// set; read errors are logged as warnings and also yield an empty set so
// processing continues.
func LoadDecisions(path string, log *zap.Logger) *DecisionFile {
	if log == nil {
		log = zap.NewNop()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("cannot read decision file", zap.String("path", path), zap.Error(err))
		}
		return NewDecisionFile()
	}
	d := NewDecisionFile()
	if err := yaml.Unmarshal(data, d); err != nil {
		log.Warn("cannot parse decision file", zap.String("path", path), zap.Error(err))
		return NewDecisionFile()
	}
	return d
}

// Save writes the decision file.
func (d *DecisionFile) Save(path string) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("discovery: marshal decisions: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("discovery: write decisions: %w", err)
	}
	return nil
}

// Record stores a decision for the given discovered value.
func (d *DecisionFile) Record(v types.DiscoveredValue, dec types.Decision) {
	if dec.Timestamp.IsZero() {
		dec.Timestamp = time.Now()
	}
	key := strings.ToLower(v.Value)
	switch v.Type {
	case types.PatternHostname:
		d.Hostnames[key] = dec
	case types.PatternCustom:
		name := v.CustomName
		if d.CustomPatterns[name] == nil {
			d.CustomPatterns[name] = map[string]types.Decision{}
		}
		d.CustomPatterns[name][key] = dec
	default:
		d.Usernames[key] = dec
	}
}

// lookup finds the persisted decision for a value, if any.
func (d *DecisionFile) lookup(v types.DiscoveredValue) (types.Decision, bool) {
	key := strings.ToLower(v.Value)
	switch v.Type {
	case types.PatternHostname:
		dec, ok := d.Hostnames[key]
		return dec, ok
	case types.PatternCustom:
		dec, ok := d.CustomPatterns[v.CustomName][key]
		return dec, ok
	default:
		dec, ok := d.Usernames[key]
		return dec, ok
	}
}

// ReplayOracle answers decisions from a persisted file without any
// interaction. Values with no recorded decision default to REDACT: replay
// must never leak a value the user was not asked about.
type ReplayOracle struct {
	File *DecisionFile
	Path string // re-saved here; empty disables saving
}

var _ types.DecisionOracle = (*ReplayOracle)(nil)

// GetDecision returns the persisted decision, defaulting to REDACT.
func (o *ReplayOracle) GetDecision(v types.DiscoveredValue) types.Decision {
	if dec, ok := o.File.lookup(v); ok {
		return dec
	}
	return types.Decision{Action: types.DecisionRedact, Timestamp: time.Now()}
}

// GetFolderDecision returns the persisted folder decision, defaulting to
// REDACT.
func (o *ReplayOracle) GetFolderDecision(path string) types.Decision {
	if dec, ok := o.File.Folders[strings.ToLower(path)]; ok {
		return dec
	}
	return types.Decision{Action: types.DecisionRedact, Timestamp: time.Now()}
}

// Save persists the decision set when a path is configured.
func (o *ReplayOracle) Save() error {
	if o.Path == "" {
		return nil
	}
	return o.File.Save(o.Path)
}
