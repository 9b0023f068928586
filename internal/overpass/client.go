// Package overpass fetches building footprints from an Overpass-compatible
// spatial query service and normalizes the graph-style response into flat
// polygon features.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb"
)

// DefaultEndpoint is the public Overpass API interpreter.
const DefaultEndpoint = "https://overpass-api.de/api/interpreter"

// buildingFilter restricts queries to the building uses a floor plan makes
// sense for.
const buildingFilter = `"building"~"^(residential|commercial|office|retail)$"`

// Client issues footprint queries against one endpoint.
type Client struct {
	endpoint     string
	httpc        *http.Client
	queryTimeout int
}

// NewClient builds a client. httpTimeout caps the whole round trip;
// queryTimeoutSec is the server-side [timeout:N] budget.
func NewClient(endpoint string, httpTimeout time.Duration, queryTimeoutSec int) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if httpTimeout <= 0 {
		httpTimeout = 40 * time.Second
	}
	if queryTimeoutSec <= 0 {
		queryTimeoutSec = 25
	}
	return &Client{
		endpoint:     endpoint,
		httpc:        &http.Client{Timeout: httpTimeout},
		queryTimeout: queryTimeoutSec,
	}
}

// BuildQuery renders the Overpass QL for building ways inside b.
// The bbox filter is ordered (south, west, north, east).
func BuildQuery(b orb.Bound, timeoutSec int) string {
	return fmt.Sprintf(
		"[out:json][timeout:%d];(way[%s](%.6f,%.6f,%.6f,%.6f););out geom;",
		timeoutSec, buildingFilter,
		b.Min[1], b.Min[0], b.Max[1], b.Max[0],
	)
}

// FetchFootprints queries footprints intersecting b. A successful query with
// no buildings yields an empty slice; transport and decode failures are
// returned as errors so the caller can keep its previous set.
func (c *Client) FetchFootprints(ctx context.Context, b orb.Bound) ([]Footprint, error) {
	form := url.Values{"data": {BuildQuery(b, c.queryTimeout)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass query: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass query: unexpected status %s", resp.Status)
	}

	var raw response
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("overpass response: %w", err)
	}
	return normalize(raw), nil
}
