package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// LineInfo is one entry from the agency line-metadata endpoint.
type LineInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// PatternPoint is one coordinate on a line's pattern geometry.
type PatternPoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Pattern is the ordered geometry a line's vehicles travel along.
type Pattern struct {
	Line   string         `json:"line"`
	Points []PatternPoint `json:"points"`
}

// AgencyClient fetches line metadata and per-line pattern geometry from the
// agency REST API.
type AgencyClient struct {
	linesURL   string
	patternURL string
	httpClient *http.Client
}

// NewAgencyClient creates a client for the agency endpoints. The pattern
// endpoint takes the line id as the "line" query parameter.
func NewAgencyClient(linesURL, patternURL string, timeout time.Duration) *AgencyClient {
	return &AgencyClient{
		linesURL:   linesURL,
		patternURL: patternURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchLines returns the upstream line metadata array.
func (c *AgencyClient) FetchLines(ctx context.Context) ([]LineInfo, error) {
	var lines []LineInfo
	if err := c.getJSON(ctx, c.linesURL, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// FetchPattern returns the pattern geometry for one line.
func (c *AgencyClient) FetchPattern(ctx context.Context, lineID string) (*Pattern, error) {
	u, err := url.Parse(c.patternURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	q := u.Query()
	q.Set("line", lineID)
	u.RawQuery = q.Encode()

	var p Pattern
	if err := c.getJSON(ctx, u.String(), &p); err != nil {
		return nil, err
	}
	if p.Line == "" {
		p.Line = lineID
	}
	if len(p.Points) == 0 {
		return nil, fmt.Errorf("%w: pattern for line %s has no points", ErrMalformedPayload, lineID)
	}
	return &p, nil
}

func (c *AgencyClient) getJSON(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: HTTP %d from %s", ErrUpstreamUnavailable, resp.StatusCode, url)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}
