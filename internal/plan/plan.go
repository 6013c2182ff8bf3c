// Package plan loads review plans: YAML documents listing the hotspots to
// mark reviewed, the resolution to assign, and the justification comments.
// Plans replace the literal tables that used to be compiled into one-shot
// review scripts; the same plan can be validated, dry-run, and applied.
package plan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/sonarsweep/internal/review"
)

// DefaultResolution is assigned when neither the entry nor the plan header
// names one.
const DefaultResolution = "SAFE"

// Entry is one hotspot review as written in the plan file. Exactly one of
// Comment and CommentRef must be set.
type Entry struct {
	Hotspot    string `yaml:"hotspot"`
	Resolution string `yaml:"resolution,omitempty"`
	Comment    string `yaml:"comment,omitempty"`
	CommentRef string `yaml:"comment_ref,omitempty"`
	Label      string `yaml:"label,omitempty"`
}

// Plan is a parsed review plan. Comments holds shared justification texts
// that entries reference by name, so a single canned justification is
// written once and reused across findings of the same kind.
type Plan struct {
	Project    string            `yaml:"project,omitempty"`
	Resolution string            `yaml:"resolution,omitempty"`
	Comments   map[string]string `yaml:"comments,omitempty"`
	Entries    []Entry           `yaml:"entries"`
}

// Load reads and validates a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse parses plan YAML and validates every entry.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if len(p.Entries) == 0 {
		return nil, fmt.Errorf("plan has no entries")
	}
	for i, e := range p.Entries {
		if err := p.validateEntry(e); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
	}
	return &p, nil
}

func (p *Plan) validateEntry(e Entry) error {
	if e.Hotspot == "" {
		return fmt.Errorf("missing hotspot key")
	}
	switch {
	case e.Comment != "" && e.CommentRef != "":
		return fmt.Errorf("%s: comment and comment_ref are mutually exclusive", e.Hotspot)
	case e.Comment == "" && e.CommentRef == "":
		return fmt.Errorf("%s: a comment or comment_ref is required", e.Hotspot)
	case e.CommentRef != "":
		text, ok := p.Comments[e.CommentRef]
		if !ok {
			return fmt.Errorf("%s: unknown comment_ref %q", e.Hotspot, e.CommentRef)
		}
		if text == "" {
			return fmt.Errorf("%s: comment_ref %q resolves to an empty comment", e.Hotspot, e.CommentRef)
		}
	}
	return nil
}

// Resolve expands every plan entry into a submission-ready review entry:
// comment references resolved, resolutions defaulted, labels filled from
// the hotspot key when absent. Entry order is preserved.
func (p *Plan) Resolve() []review.Entry {
	entries := make([]review.Entry, 0, len(p.Entries))
	for _, e := range p.Entries {
		entries = append(entries, review.Entry{
			Hotspot:    e.Hotspot,
			Resolution: p.resolution(e),
			Comment:    p.comment(e),
			Label:      p.label(e),
		})
	}
	return entries
}

func (p *Plan) resolution(e Entry) string {
	if e.Resolution != "" {
		return e.Resolution
	}
	if p.Resolution != "" {
		return p.Resolution
	}
	return DefaultResolution
}

func (p *Plan) comment(e Entry) string {
	if e.CommentRef != "" {
		return p.Comments[e.CommentRef]
	}
	return e.Comment
}

func (p *Plan) label(e Entry) string {
	if e.Label != "" {
		return e.Label
	}
	return e.Hotspot
}

// Duplicates returns hotspot keys that appear more than once, in first-seen
// order. Duplicates are legal — each occurrence is submitted independently —
// but validate surfaces them since they usually mean a copy-paste slip.
func (p *Plan) Duplicates() []string {
	seen := make(map[string]int, len(p.Entries))
	var dups []string
	for _, e := range p.Entries {
		seen[e.Hotspot]++
		if seen[e.Hotspot] == 2 {
			dups = append(dups, e.Hotspot)
		}
	}
	return dups
}
