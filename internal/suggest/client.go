package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MaxResults bounds what the search backend may return to a caller.
const MaxResults = 8

type Suggestion struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Reason   string          `json:"reason"`
	Category string          `json:"category"`
}

// Client talks to the AI product-search backend. Any failure degrades to an
// empty result; search must never block checkout.
type Client struct {
	BaseURL *url.URL
	HTTP    *http.Client
	logger  *zap.Logger
}

// NewClient returns nil when baseURL is empty; a nil *Client always returns no results.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, nil
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid suggest base url %q: %w", baseURL, err)
	}
	return &Client{BaseURL: u, HTTP: &http.Client{Timeout: timeout}, logger: logger}, nil
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type searchResponse struct {
	Results []Suggestion `json:"results"`
}

func (c *Client) Search(ctx context.Context, query string) []Suggestion {
	if c == nil || query == "" {
		return []Suggestion{}
	}

	results, err := c.search(ctx, query)
	if err != nil {
		c.logger.Warn("suggestion search failed", zap.String("query", query), zap.Error(err))
		return []Suggestion{}
	}
	if len(results) > MaxResults {
		results = results[:MaxResults]
	}
	return results
}

func (c *Client) search(ctx context.Context, query string) ([]Suggestion, error) {
	body, err := json.Marshal(searchRequest{Query: query, Limit: MaxResults})
	if err != nil {
		return nil, err
	}

	u := c.BaseURL.ResolveReference(&url.URL{Path: "search"})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Results == nil {
		return []Suggestion{}, nil
	}
	return out.Results, nil
}
