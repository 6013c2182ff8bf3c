package sonar

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestChangeStatusRequest(t *testing.T) {
	var got *http.Request
	var gotForm map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		r.ParseForm()
		gotForm = map[string]string{}
		for k := range r.PostForm {
			gotForm[k] = r.PostForm.Get(k)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok123", 0)
	err := c.ChangeStatus(context.Background(), "AZkey", StatusReviewed, "SAFE", "Safe: test fixture.")
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}

	if got.Method != http.MethodPost {
		t.Errorf("method = %s, want POST", got.Method)
	}
	if got.URL.Path != "/api/hotspots/change_status" {
		t.Errorf("path = %s", got.URL.Path)
	}
	if ct := got.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
		t.Errorf("content-type = %s", ct)
	}

	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("tok123:"))
	if auth := got.Header.Get("Authorization"); auth != wantAuth {
		t.Errorf("authorization = %s, want %s", auth, wantAuth)
	}

	want := map[string]string{
		"hotspot":    "AZkey",
		"status":     "REVIEWED",
		"resolution": "SAFE",
		"comment":    "Safe: test fixture.",
	}
	for k, v := range want {
		if gotForm[k] != v {
			t.Errorf("form[%s] = %q, want %q", k, gotForm[k], v)
		}
	}
}

func TestChangeStatusNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errors":[{"msg":"Hotspot 'bogus' does not exist"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", 0)
	err := c.ChangeStatus(context.Background(), "bogus", StatusReviewed, "SAFE", "c")
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !strings.Contains(err.Error(), "HTTP 404") {
		t.Errorf("error = %v, want HTTP 404 mention", err)
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("error = %v, want body snippet", err)
	}
}

func TestChangeStatusConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // closed on purpose

	c := NewClient(srv.URL, "tok", 0)
	err := c.ChangeStatus(context.Background(), "key", StatusReviewed, "SAFE", "c")
	if err == nil {
		t.Fatal("expected error for refused connection")
	}
}

func TestEndpointTrailingSlash(t *testing.T) {
	c := NewClient("https://sonarcloud.io/", "tok", 0)
	if c.Endpoint() != "https://sonarcloud.io" {
		t.Errorf("endpoint = %s", c.Endpoint())
	}
}
