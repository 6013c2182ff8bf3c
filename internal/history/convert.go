package history

import "github.com/ppiankov/sonarsweep/internal/review"

// FromSummary flattens a batch summary into storable outcome rows.
func FromSummary(s review.Summary) []Outcome {
	outcomes := make([]Outcome, 0, len(s.Outcomes))
	for _, o := range s.Outcomes {
		row := Outcome{
			Hotspot:    o.Entry.Hotspot,
			Resolution: o.Entry.Resolution,
			Label:      o.Entry.Label,
			OK:         o.OK(),
		}
		if o.Err != nil {
			row.Error = o.Err.Error()
		}
		outcomes = append(outcomes, row)
	}
	return outcomes
}
