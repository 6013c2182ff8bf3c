package plan

import (
	"strings"
	"testing"

	"github.com/ppiankov/sonarsweep/internal/sonar"
)

func TestSkeleton(t *testing.T) {
	hotspots := []sonar.Hotspot{
		{Key: "h1", Component: "org_proj:src/a.js", Line: 10},
		{Key: "h2", Component: "org_proj:Dockerfile"},
	}

	data, err := Skeleton("org_proj", hotspots)
	if err != nil {
		t.Fatalf("Skeleton: %v", err)
	}

	out := string(data)
	for _, want := range []string{"org_proj", "h1", "h2", "src/a.js:10", "Dockerfile"} {
		if !strings.Contains(out, want) {
			t.Errorf("skeleton missing %q:\n%s", want, out)
		}
	}

	// Empty comments: the skeleton must not validate until filled in.
	if _, err := Parse(data); err == nil {
		t.Error("expected skeleton plan to fail validation (empty comments)")
	}
}
