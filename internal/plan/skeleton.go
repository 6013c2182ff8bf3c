package plan

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/sonarsweep/internal/sonar"
)

// Skeleton renders a starter plan for a set of hotspots awaiting triage.
// Comments are left empty on purpose: the plan will not validate until a
// human writes a justification for every entry.
func Skeleton(project string, hotspots []sonar.Hotspot) ([]byte, error) {
	p := Plan{
		Project:    project,
		Resolution: DefaultResolution,
	}
	for _, h := range hotspots {
		p.Entries = append(p.Entries, Entry{
			Hotspot: h.Key,
			Comment: "",
			Label:   h.Location(),
		})
	}

	data, err := yaml.Marshal(&p)
	if err != nil {
		return nil, fmt.Errorf("marshal skeleton plan: %w", err)
	}
	return data, nil
}
