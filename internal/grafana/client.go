package grafana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultPageSize is the search page size; Grafana caps limit at 5000.
const DefaultPageSize = 5000

// ErrNoDashboard is returned when a dashboard response has no "dashboard" body.
var ErrNoDashboard = errors.New("response has no dashboard")

// StatusError reports a non-2xx response from the Grafana API.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// API is the subset of the Grafana HTTP API used by the exporter.
type API interface {
	Search(ctx context.Context) ([]Item, error)
	Dashboard(ctx context.Context, uid string) (json.RawMessage, error)
}

// Client talks to a Grafana instance with a bearer token.
type Client struct {
	host     string
	apiKey   string
	http     *http.Client
	pageSize int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithPageSize overrides DefaultPageSize.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// NewClient returns a client for host (trailing slashes are dropped).
func NewClient(host, apiKey string, opts ...Option) *Client {
	c := &Client{
		host:     strings.TrimRight(host, "/"),
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 30 * time.Second},
		pageSize: DefaultPageSize,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Host returns the normalized base URL.
func (c *Client) Host() string { return c.host }

// Search lists every folder and dashboard visible to the token. Hits of other
// types are dropped.
func (c *Client) Search(ctx context.Context) ([]Item, error) {
	var items []Item
	seen := make(map[string]bool)

	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("query", "")
		q.Set("limit", strconv.Itoa(c.pageSize))
		q.Set("page", strconv.Itoa(page))

		var hits []searchHit
		if err := c.getJSON(ctx, "/api/search?"+q.Encode(), &hits); err != nil {
			return nil, fmt.Errorf("search page %d: %w", page, err)
		}

		fresh := 0
		for _, h := range hits {
			key := h.Type + "/" + h.UID
			if seen[key] {
				continue
			}
			seen[key] = true
			fresh++
			if it := h.item(); it != nil {
				items = append(items, it)
			}
		}

		// servers that ignore paging return the same page again
		if len(hits) < c.pageSize || fresh == 0 {
			break
		}
	}
	return items, nil
}

// Dashboard fetches the dashboard model for uid, without the meta block.
func (c *Client) Dashboard(ctx context.Context, uid string) (json.RawMessage, error) {
	var env dashboardEnvelope
	if err := c.getJSON(ctx, "/api/dashboards/uid/"+url.PathEscape(uid), &env); err != nil {
		return nil, err
	}
	if len(env.Dashboard) == 0 || string(env.Dashboard) == "null" {
		return nil, fmt.Errorf("dashboard %s: %w", uid, ErrNoDashboard)
	}
	return env.Dashboard, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{
			Method: req.Method,
			URL:    req.URL.Redacted(),
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
