package redact

import (
	"context"

	"go.uber.org/zap"

	"github.com/parttimenerd/jfr-redact-sub000/pkg/types"
	core "github.com/parttimenerd/jfr-redact-sub000/redact"
	"github.com/parttimenerd/jfr-redact-sub000/redact/discovery"
	"github.com/parttimenerd/jfr-redact-sub000/redact/pseudo"
	"github.com/parttimenerd/jfr-redact-sub000/redact/textfile"
	"github.com/parttimenerd/jfr-redact-sub000/transcode"
)

// Options configures a Processor.
type Options struct {
	Config *Config
	// Oracle is the interactive decision manager; nil means no interaction.
	Oracle types.DecisionOracle
	// DecisionFile, when set and Oracle is nil, replays persisted decisions.
	DecisionFile string
	Log          *zap.Logger
}

// Processor owns one run's engines: the pseudonymization caches live for
// the processor's lifetime so pseudonyms stay stable across every file it
// touches; discovery stores are cleared between independent inputs.
type Processor struct {
	cfg    *Config
	log    *zap.Logger
	ps     *pseudo.Pseudonymizer
	stats  *core.Stats
	engine *core.Engine
	disc   *discovery.Engine
	oracle types.DecisionOracle
}

// NewProcessor wires the engines from the policy.
func NewProcessor(opts Options) *Processor {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	p := &Processor{cfg: cfg, log: log}
	p.ps = pseudo.New(cfg.pseudoConfig(log), log)
	p.stats = core.NewStats()
	p.engine = core.New(cfg.engineConfig(), p.ps, p.stats, log)
	p.disc = discovery.New(cfg.discoveryConfig(log), log)
	p.oracle = opts.Oracle
	if p.oracle == nil && opts.DecisionFile != "" {
		p.oracle = &discovery.ReplayOracle{
			File: discovery.LoadDecisions(opts.DecisionFile, log),
			Path: opts.DecisionFile,
		}
	}
	if p.oracle != nil {
		p.disc.AttachOracle(p.oracle)
	}
	return p
}

// Engine exposes the redaction engine, mainly for tests and tooling.
func (p *Processor) Engine() *core.Engine { return p.engine }

// ProcessRecording transcodes one recording file.
func (p *Processor) ProcessRecording(ctx context.Context, inPath, outPath string) error {
	t := transcode.New(transcode.Options{
		Engine:    p.engine,
		Discovery: p.disc,
		Oracle:    p.oracle,
		Log:       p.log,
	})
	return t.ProcessFile(ctx, inPath, outPath)
}

// ProcessText redacts one UTF-8 text log.
func (p *Processor) ProcessText(ctx context.Context, inPath, outPath string) error {
	r := textfile.New(textfile.Options{
		Engine:    p.engine,
		Discovery: p.disc,
		Oracle:    p.oracle,
		Log:       p.log,
	})
	return r.ProcessFile(ctx, inPath, outPath)
}

// Reset clears the discovery stores between independent input files. The
// pseudonymization caches survive so replacements stay stable across the
// whole run.
func (p *Processor) Reset() {
	p.disc.Clear()
	p.engine.InstallDiscovered(&types.DiscoveredPatterns{})
}

// Stats returns a snapshot of the run's counters.
func (p *Processor) Stats() core.Snapshot { return p.stats.Snapshot() }
