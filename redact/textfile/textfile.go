// Package textfile is the streaming line-oriented companion to the
// recording transcoder: it runs discovery and redaction over UTF-8 text
// logs such as HotSpot crash reports, preserving line endings bit-for-bit.
package textfile

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/parttimenerd/jfr-redact-sub000/pkg/types"
	"github.com/parttimenerd/jfr-redact-sub000/redact"
	"github.com/parttimenerd/jfr-redact-sub000/redact/discovery"
)

// Redactor rewrites text logs line by line, reusing the redaction engine's
// string path and the discovery engine's regex extractors.
type Redactor struct {
	engine *redact.Engine
	disc   *discovery.Engine
	oracle types.DecisionOracle
	log    *zap.Logger
}

// Options wires the collaborating engines into a text redactor.
type Options struct {
	Engine    *redact.Engine
	Discovery *discovery.Engine
	Oracle    types.DecisionOracle
	Log       *zap.Logger
}

// New builds a text redactor.
func New(opts Options) *Redactor {
	r := &Redactor{engine: opts.Engine, disc: opts.Discovery, oracle: opts.Oracle, log: opts.Log}
	if r.engine == nil {
		r.engine = redact.None()
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	return r
}

// ProcessFile redacts inPath into outPath.
func (r *Redactor) ProcessFile(ctx context.Context, inPath, outPath string) error {
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("textfile: %w", err)
	}
	defer in.Close()
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("textfile: %w", err)
	}
	defer out.Close()
	w := bufio.NewWriter(out)
	if err := r.Process(ctx, in, w); err != nil {
		return fmt.Errorf("textfile: %s: %w", inPath, err)
	}
	return w.Flush()
}

// Process streams lines from in to out. With two-pass discovery the lines
// are buffered so the whole input informs the discovered set before the
// first line is rewritten; fast mode discovers as it goes, so a value
// applies from the line that reveals it onward and earlier lines are not
// rewritten.
func (r *Redactor) Process(ctx context.Context, in io.Reader, out io.Writer) error {
	mode := types.DiscoveryNone
	if r.disc != nil && r.disc.Active() {
		mode = r.disc.Mode()
	}
	switch mode {
	case types.DiscoveryTwoPass:
		return r.processTwoPass(ctx, in, out)
	default:
		return r.processStreaming(ctx, mode == types.DiscoveryFast, in, out)
	}
}

func (r *Redactor) processStreaming(ctx context.Context, fast bool, in io.Reader, out io.Writer) error {
	br := bufio.NewReader(in)
	known := 0
	if fast {
		known = r.disc.DistinctCount()
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, readErr := br.ReadString('\n')
		if line != "" {
			if fast {
				body, _ := splitEnding(line)
				r.disc.ProcessLine(body)
				if n := r.disc.DistinctCount(); n != known {
					known = n
					r.install()
				}
			}
			if err := r.writeLine(out, line); err != nil {
				return err
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return readErr
		}
	}
}

func (r *Redactor) processTwoPass(ctx context.Context, in io.Reader, out io.Writer) error {
	br := bufio.NewReader(in)
	var lines []string
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, readErr := br.ReadString('\n')
		if line != "" {
			body, _ := splitEnding(line)
			if !utf8.ValidString(body) {
				return fmt.Errorf("textfile: line %d is not valid UTF-8", len(lines)+1)
			}
			r.disc.ProcessLine(body)
			lines = append(lines, line)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return readErr
		}
	}
	r.install()
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.writeLine(out, line); err != nil {
			return err
		}
	}
	return nil
}

func (r *Redactor) install() {
	dp := r.disc.DiscoveredPatterns()
	if r.oracle != nil {
		dp = r.disc.ApplyInteractiveDecisions(dp)
		if err := r.oracle.Save(); err != nil {
			r.log.Warn("cannot persist decisions", zap.Error(err))
		}
	}
	r.engine.InstallDiscovered(dp)
}

// writeLine redacts the line body and re-attaches the original ending
// verbatim.
func (r *Redactor) writeLine(out io.Writer, line string) error {
	body, ending := splitEnding(line)
	if !utf8.ValidString(body) {
		return fmt.Errorf("textfile: invalid UTF-8 input")
	}
	_, err := io.WriteString(out, r.engine.RedactString("", body)+ending)
	return err
}

// splitEnding separates a line from its terminator, handling \n and \r\n.
func splitEnding(line string) (body, ending string) {
	if strings.HasSuffix(line, "\r\n") {
		return line[:len(line)-2], "\r\n"
	}
	if strings.HasSuffix(line, "\n") {
		return line[:len(line)-1], "\n"
	}
	return line, ""
}
