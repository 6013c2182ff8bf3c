package review

import (
	"context"
	"fmt"
	"io"

	"github.com/ppiankov/sonarsweep/internal/sonar"
)

// Entry is one hotspot review to submit: an opaque hotspot key, the
// disposition to assign, a justification comment, and a human-readable
// label used only for console output.
type Entry struct {
	Hotspot    string
	Resolution string
	Comment    string
	Label      string
}

// Outcome is the result of one submission attempt. Err is nil on success.
type Outcome struct {
	Entry Entry
	Err   error
}

// OK reports whether the submission succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// Submitter posts one hotspot status change. Implemented by *sonar.Client.
type Submitter interface {
	ChangeStatus(ctx context.Context, hotspot, status, resolution, comment string) error
}

// Runner submits review entries strictly in order, one at a time. Each
// submission fully completes before the next begins, and a failure never
// stops the batch — it becomes a failed Outcome.
type Runner struct {
	Submitter Submitter
	Out       io.Writer
	DryRun    bool
}

// Run submits every entry exactly once, in slice order, writing one
// progress line per entry, and returns the collected outcomes.
func (r *Runner) Run(ctx context.Context, entries []Entry) Summary {
	outcomes := make([]Outcome, 0, len(entries))
	for _, e := range entries {
		outcomes = append(outcomes, r.submit(ctx, e))
	}
	return Summary{Outcomes: outcomes}
}

func (r *Runner) submit(ctx context.Context, e Entry) Outcome {
	if r.DryRun {
		fmt.Fprintf(r.Out, "  SKIP: %s (dry-run)\n", e.Label)
		return Outcome{Entry: e}
	}

	err := r.Submitter.ChangeStatus(ctx, e.Hotspot, sonar.StatusReviewed, e.Resolution, e.Comment)
	if err != nil {
		fmt.Fprintf(r.Out, "  FAIL: %s - %v\n", e.Label, err)
		return Outcome{Entry: e, Err: err}
	}
	fmt.Fprintf(r.Out, "  OK: %s\n", e.Label)
	return Outcome{Entry: e}
}
