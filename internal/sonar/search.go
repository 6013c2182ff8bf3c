package sonar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// searchPageSize is the page size used for hotspot search. 100 is well
// under the API maximum of 500 and keeps responses small.
const searchPageSize = 100

// Hotspot is one security hotspot as returned by the search API.
type Hotspot struct {
	Key                      string `json:"key"`
	Component                string `json:"component"`
	Line                     int    `json:"line"`
	Message                  string `json:"message"`
	Status                   string `json:"status"`
	VulnerabilityProbability string `json:"vulnerabilityProbability"`
}

// Location renders the component and line the way Sonar shows findings,
// with the project prefix stripped from the component key.
func (h Hotspot) Location() string {
	path := h.Component
	if i := strings.IndexByte(path, ':'); i >= 0 {
		path = path[i+1:]
	}
	if h.Line > 0 {
		return fmt.Sprintf("%s:%d", path, h.Line)
	}
	return path
}

type searchResponse struct {
	Paging struct {
		PageIndex int `json:"pageIndex"`
		PageSize  int `json:"pageSize"`
		Total     int `json:"total"`
	} `json:"paging"`
	Hotspots []Hotspot `json:"hotspots"`
}

// SearchHotspots returns all hotspots for a project in the given review
// status, following paging until the reported total is exhausted.
func (c *Client) SearchHotspots(ctx context.Context, projectKey, status string) ([]Hotspot, error) {
	var all []Hotspot
	for page := 1; ; page++ {
		resp, err := c.searchPage(ctx, projectKey, status, page)
		if err != nil {
			return nil, err
		}
		all = append(all, resp.Hotspots...)
		if len(resp.Hotspots) == 0 || len(all) >= resp.Paging.Total {
			return all, nil
		}
	}
}

func (c *Client) searchPage(ctx context.Context, projectKey, status string, page int) (*searchResponse, error) {
	q := url.Values{
		"projectKey": {projectKey},
		"status":     {status},
		"p":          {strconv.Itoa(page)},
		"ps":         {strconv.Itoa(searchPageSize)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint+"/api/hotspots/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.token, "")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search hotspots: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search hotspots: HTTP %d: %s", resp.StatusCode, errorBody(resp.Body))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &sr, nil
}
