package transcode

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/parttimenerd/jfr-redact-sub000/internal/reader"
	"github.com/parttimenerd/jfr-redact-sub000/internal/writer"
	"github.com/parttimenerd/jfr-redact-sub000/jfr"
	"github.com/parttimenerd/jfr-redact-sub000/pkg/types"
	"github.com/parttimenerd/jfr-redact-sub000/redact"
	"github.com/parttimenerd/jfr-redact-sub000/redact/discovery"
)

// Options wires the collaborating engines into a transcoder.
type Options struct {
	Engine    *redact.Engine    // nil = the no-op engine
	Discovery *discovery.Engine // nil = no discovery
	Oracle    types.DecisionOracle
	Log       *zap.Logger
}

// Transcoder processes one recording at a time. Instances are not safe for
// concurrent use; run one per goroutine when processing files in parallel.
type Transcoder struct {
	engine *redact.Engine
	disc   *discovery.Engine
	oracle types.DecisionOracle
	log    *zap.Logger

	transformed map[*jfr.Object]*jfr.Object
}

// New builds a transcoder.
func New(opts Options) *Transcoder {
	t := &Transcoder{
		engine: opts.Engine,
		disc:   opts.Discovery,
		oracle: opts.Oracle,
		log:    opts.Log,
	}
	if t.engine == nil {
		t.engine = redact.None()
	}
	if t.log == nil {
		t.log = zap.NewNop()
	}
	return t
}

// ProcessFile transcodes inPath into outPath. With two-pass discovery the
// input is traversed twice; the first traversal only feeds the discovery
// engine and, when an oracle is attached, its decisions filter the
// discovered set before redaction starts. Cancellation is honored between
// events.
func (t *Transcoder) ProcessFile(ctx context.Context, inPath, outPath string) error {
	if t.disc != nil && t.disc.Mode() == types.DiscoveryTwoPass && t.disc.Active() {
		if err := t.discoveryPass(ctx, inPath); err != nil {
			return err
		}
	}
	return t.emitPass(ctx, inPath, outPath)
}

func (t *Transcoder) discoveryPass(ctx context.Context, inPath string) error {
	rec, err := reader.Open(inPath)
	if err != nil {
		return err
	}
	defer rec.Close()
	cur := rec.Events()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev, ok, err := cur.Next()
		if err != nil {
			return fmt.Errorf("transcode: discovery pass of %s: %w", inPath, err)
		}
		if !ok {
			break
		}
		if t.engine.ShouldRemoveEvent(ev) {
			continue
		}
		t.disc.ProcessEvent(ev)
	}
	t.installDiscovered(true)
	return nil
}

// installDiscovered moves the discovered set into the redaction engine,
// applying oracle decisions and persisting them when requested.
func (t *Transcoder) installDiscovered(persist bool) {
	dp := t.disc.DiscoveredPatterns()
	if t.oracle != nil {
		dp = t.disc.ApplyInteractiveDecisions(dp)
		if persist {
			if err := t.oracle.Save(); err != nil {
				t.log.Warn("cannot persist decisions", zap.Error(err))
			}
		}
	}
	t.engine.InstallDiscovered(dp)
	t.log.Debug("installed discovered patterns", zap.Int("values", len(dp.Values)))
}

func (t *Transcoder) emitPass(ctx context.Context, inPath, outPath string) error {
	rec, err := reader.Open(inPath)
	if err != nil {
		return err
	}
	defer rec.Close()

	w := writer.New(&writer.FileWriter{Path: outPath})
	stats := t.engine.Stats()
	fast := t.disc != nil && t.disc.Mode() == types.DiscoveryFast && t.disc.Active()
	known := 0
	if fast {
		known = t.disc.DistinctCount()
	}

	for _, ch := range rec.Chunks {
		cw := w.BeginChunk(writer.ChunkMeta{
			Major:          ch.Header.Major,
			Minor:          ch.Header.Minor,
			StartNanos:     ch.Header.StartNanos,
			DurationNanos:  ch.Header.DurationNanos,
			StartTicks:     ch.Header.StartTicks,
			TicksPerSecond: ch.Header.TicksPerSecond,
			Features:       ch.Header.Features,
		})
		reg := newRegistrar(cw, ch.TypeByName, t.log)
		t.resetTransformCache()
		cur := ch.Events()
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			ev, ok, err := cur.Next()
			if err != nil {
				return fmt.Errorf("transcode: %s: %w", inPath, err)
			}
			if !ok {
				break
			}
			stats.CountEvent(ev.Type.Name)
			if t.engine.ShouldRemoveEvent(ev) {
				stats.CountRemoved(ev.Type.Name)
				continue
			}
			if fast {
				t.disc.ProcessEvent(ev)
				if n := t.disc.DistinctCount(); n != known {
					known = n
					t.installDiscovered(false)
					t.resetTransformCache()
				}
			}
			outType, err := reg.registerEvent(ev.Type)
			if err != nil {
				return fmt.Errorf("transcode: %s: event type %s: %w", inPath, ev.Type.Name, err)
			}
			if err := cw.WriteEvent(outType, t.transformObject(ev.Payload)); err != nil {
				return fmt.Errorf("transcode: %s: %w", inPath, err)
			}
			stats.CountWritten()
		}
		if err := cw.Finish(); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("transcode: write %s: %w", outPath, err)
	}
	return nil
}
