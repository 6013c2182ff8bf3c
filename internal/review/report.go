package review

import (
	"fmt"
	"io"
)

// Summary aggregates the outcomes of one batch. Counts are derived from
// the outcome slice rather than kept as running counters, so a summary
// can never disagree with its own entries.
type Summary struct {
	Outcomes []Outcome
}

// Succeeded returns the number of successful submissions.
func (s Summary) Succeeded() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

// Failed returns the number of failed submissions.
func (s Summary) Failed() int {
	return len(s.Outcomes) - s.Succeeded()
}

// Total returns the number of entries attempted.
func (s Summary) Total() int {
	return len(s.Outcomes)
}

// Merge appends another summary's outcomes, preserving order.
func (s Summary) Merge(other Summary) Summary {
	return Summary{Outcomes: append(s.Outcomes, other.Outcomes...)}
}

// WriteReport writes the final tally: a blank line followed by the
// results line, e.g. "Results: 2/3 succeeded, 1 failed".
func WriteReport(w io.Writer, s Summary) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Results: %d/%d succeeded, %d failed\n", s.Succeeded(), s.Total(), s.Failed())
}
