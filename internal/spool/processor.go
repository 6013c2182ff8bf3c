package spool

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/sonarsweep/internal/history"
	"github.com/ppiankov/sonarsweep/internal/notify"
	"github.com/ppiankov/sonarsweep/internal/plan"
	"github.com/ppiankov/sonarsweep/internal/review"
)

// Processor runs one spooled plan through its lifecycle:
// read → validate → submit → archive with a result file.
type Processor struct {
	Dir       string
	Submitter review.Submitter
	Endpoint  string
	History   *history.Store
	NotifyURL string
	Out       io.Writer
}

// DoneDir returns the archive directory for completed plans.
func (p *Processor) DoneDir() string {
	return filepath.Join(p.Dir, "done")
}

// FailedDir returns the archive directory for plans that could not run.
func (p *Processor) FailedDir() string {
	return filepath.Join(p.Dir, "failed")
}

// EnsureDirs creates the archive subdirectories.
func (p *Processor) EnsureDirs() error {
	for _, dir := range []string{p.DoneDir(), p.FailedDir()} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("create spool directory: %w", err)
		}
	}
	return nil
}

// Process handles a single plan file. A plan that fails to load moves to
// failed/; a plan that ran — regardless of how many submissions failed —
// moves to done/ with its tally in a .result file alongside.
func (p *Processor) Process(ctx context.Context, path string) error {
	// Reject symlinks before reading: a link dropped into the spool must
	// not cause an arbitrary file elsewhere to be consumed as a plan.
	fi, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("stat plan file: %w", err)
	}
	if fi.Mode()&os.ModeSymlink != 0 {
		return p.archiveFailed(path, fmt.Sprintf("rejected symlink: %s", filepath.Base(path)))
	}

	pl, err := plan.Load(path)
	if err != nil {
		return p.archiveFailed(path, err.Error())
	}

	fmt.Fprintf(p.Out, "Processing %s (%d entries)...\n", filepath.Base(path), len(pl.Entries))

	started := time.Now()
	runner := &review.Runner{Submitter: p.Submitter, Out: p.Out}
	summary := runner.Run(ctx, pl.Resolve())
	review.WriteReport(p.Out, summary)

	if p.History != nil {
		if _, err := p.History.RecordRun(started, path, p.Endpoint, history.FromSummary(summary)); err != nil {
			fmt.Fprintf(os.Stderr, "warning: record history: %v\n", err)
		}
	}
	if p.NotifyURL != "" {
		if err := notify.Send(p.NotifyURL, notify.FromSummary(path, summary)); err != nil {
			fmt.Fprintf(os.Stderr, "warning: notify webhook: %v\n", err)
		}
	}

	result := fmt.Sprintf("Results: %d/%d succeeded, %d failed\n",
		summary.Succeeded(), summary.Total(), summary.Failed())
	return p.archiveDone(path, result)
}

func (p *Processor) archiveDone(path, result string) error {
	dst := filepath.Join(p.DoneDir(), filepath.Base(path))
	if err := moveFile(path, dst); err != nil {
		return fmt.Errorf("archive plan: %w", err)
	}
	return os.WriteFile(dst+".result", []byte(result), 0640)
}

func (p *Processor) archiveFailed(path, reason string) error {
	fmt.Fprintf(p.Out, "REJECTED %s: %s\n", filepath.Base(path), reason)
	dst := filepath.Join(p.FailedDir(), filepath.Base(path))
	if err := moveFile(path, dst); err != nil {
		return fmt.Errorf("archive rejected plan: %w", err)
	}
	return os.WriteFile(dst+".result", []byte(reason+"\n"), 0640)
}
