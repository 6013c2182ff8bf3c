// Package notify posts run summaries to a webhook endpoint, for wiring
// batch results into chat or CI without parsing console output.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ppiankov/sonarsweep/internal/review"
)

const (
	requestTimeout = 5 * time.Second
	maxRetries     = 3
)

// retryBackoff is the base delay between attempts; attempt n waits n*backoff.
var retryBackoff = time.Second

var httpClient = &http.Client{Timeout: requestTimeout}

// Payload is the JSON body posted after a run.
type Payload struct {
	Plan    string  `json:"plan"`
	OK      int     `json:"ok"`
	Failed  int     `json:"failed"`
	Total   int     `json:"total"`
	Entries []Entry `json:"entries"`
}

// Entry is one submission outcome within the payload.
type Entry struct {
	Hotspot string `json:"hotspot"`
	Label   string `json:"label"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

// FromSummary builds a payload from a batch summary.
func FromSummary(planPath string, s review.Summary) Payload {
	p := Payload{
		Plan:   planPath,
		OK:     s.Succeeded(),
		Failed: s.Failed(),
		Total:  s.Total(),
	}
	for _, o := range s.Outcomes {
		e := Entry{Hotspot: o.Entry.Hotspot, Label: o.Entry.Label, OK: o.OK()}
		if o.Err != nil {
			e.Error = o.Err.Error()
		}
		p.Entries = append(p.Entries, e)
	}
	return p
}

// Send posts a payload to the webhook with retry on 5xx. A 4xx response
// fails immediately since retrying a rejected payload cannot help.
func Send(url string, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * retryBackoff)
		}

		req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return fmt.Errorf("webhook rejected: HTTP %d", resp.StatusCode)
		}
		// 5xx — retry
		lastErr = fmt.Errorf("webhook server error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("webhook failed after %d attempts: %w", maxRetries, lastErr)
}
