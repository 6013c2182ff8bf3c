package sonar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultEndpoint is the SonarCloud API host.
const DefaultEndpoint = "https://sonarcloud.io"

// StatusReviewed is the target status when marking a hotspot reviewed.
const StatusReviewed = "REVIEWED"

// maxErrorBody bounds how much of an error response body is kept for messages.
const maxErrorBody = 512

// Client talks to the SonarCloud REST API. Authentication is HTTP Basic
// with the token as username and an empty password, which is how Sonar
// expects user tokens to be presented.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// NewClient creates a client for the given endpoint. A zero timeout means
// the underlying http.Client blocks without bound, matching the historical
// behavior of the one-shot review script this tool replaced.
func NewClient(endpoint, token string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    token,
		http:     &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the API host this client targets.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// ChangeStatus transitions a hotspot to the given status with a resolution
// and justification comment. One POST, no retry: callers classify any error
// as a per-item failure.
func (c *Client) ChangeStatus(ctx context.Context, hotspot, status, resolution, comment string) error {
	form := url.Values{
		"hotspot":    {hotspot},
		"status":     {status},
		"resolution": {resolution},
		"comment":    {comment},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+"/api/hotspots/change_status", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.token, "")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, errorBody(resp.Body))
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// errorBody extracts a bounded, single-line snippet from an error response.
func errorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return "no response body"
	}
	s := strings.TrimSpace(string(data))
	return strings.ReplaceAll(s, "\n", " ")
}
