package sonar

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchHotspotsPaginates(t *testing.T) {
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/hotspots/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("projectKey"); got != "org_proj" {
			t.Errorf("projectKey = %s", got)
		}
		page := r.URL.Query().Get("p")
		pages = append(pages, page)

		switch page {
		case "1":
			fmt.Fprint(w, `{
				"paging": {"pageIndex": 1, "pageSize": 2, "total": 3},
				"hotspots": [
					{"key": "h1", "component": "org_proj:src/a.js", "line": 10,
					 "message": "m1", "status": "TO_REVIEW", "vulnerabilityProbability": "HIGH"},
					{"key": "h2", "component": "org_proj:src/b.js", "line": 20,
					 "message": "m2", "status": "TO_REVIEW", "vulnerabilityProbability": "LOW"}
				]}`)
		case "2":
			fmt.Fprint(w, `{
				"paging": {"pageIndex": 2, "pageSize": 2, "total": 3},
				"hotspots": [
					{"key": "h3", "component": "org_proj:src/c.js", "line": 30,
					 "message": "m3", "status": "TO_REVIEW", "vulnerabilityProbability": "MEDIUM"}
				]}`)
		default:
			t.Errorf("unexpected page request: %s", page)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", 0)
	hotspots, err := c.SearchHotspots(context.Background(), "org_proj", "TO_REVIEW")
	if err != nil {
		t.Fatalf("SearchHotspots: %v", err)
	}

	if len(hotspots) != 3 {
		t.Fatalf("got %d hotspots, want 3", len(hotspots))
	}
	if hotspots[0].Key != "h1" || hotspots[2].Key != "h3" {
		t.Errorf("unexpected order: %v", hotspots)
	}
	if len(pages) != 2 {
		t.Errorf("requested pages %v, want 2 requests", pages)
	}
}

func TestSearchHotspotsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"paging": {"pageIndex": 1, "pageSize": 100, "total": 0}, "hotspots": []}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", 0)
	hotspots, err := c.SearchHotspots(context.Background(), "org_proj", "TO_REVIEW")
	if err != nil {
		t.Fatalf("SearchHotspots: %v", err)
	}
	if len(hotspots) != 0 {
		t.Errorf("got %d hotspots, want 0", len(hotspots))
	}
}

func TestHotspotLocation(t *testing.T) {
	tests := []struct {
		h    Hotspot
		want string
	}{
		{Hotspot{Component: "org_proj:src/a.js", Line: 12}, "src/a.js:12"},
		{Hotspot{Component: "org_proj:Dockerfile"}, "Dockerfile"},
		{Hotspot{Component: "plainfile", Line: 3}, "plainfile:3"},
	}
	for _, tt := range tests {
		if got := tt.h.Location(); got != tt.want {
			t.Errorf("Location(%q,%d) = %q, want %q", tt.h.Component, tt.h.Line, got, tt.want)
		}
	}
}
