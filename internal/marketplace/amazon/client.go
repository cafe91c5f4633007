package amazon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"brickmatch/internal/marketplace"
	"brickmatch/internal/services"
)

// item models a single entry in the catalog search payload.
type item struct {
	ASIN     string `json:"asin"`
	Title    string `json:"title"`
	Brand    string `json:"brand"`
	ImageURL string `json:"image_url"`
}

// response models the catalog search payload.
type response struct {
	Items []item `json:"items"`
}

// Client provides access to the Amazon catalog search API.
type Client struct {
	apiKey      string
	baseURL     string
	marketplace string
	httpClient  *http.Client
}

var _ marketplace.Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates an Amazon catalog client.
func New(apiKey, baseURL, marketplaceID string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("amazon api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("amazon base url required")
	}
	marketplaceID = strings.TrimSpace(marketplaceID)
	client := &Client{
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		marketplace: marketplaceID,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchByIdentifier looks up catalog items by exact barcode.
func (c *Client) SearchByIdentifier(ctx context.Context, code string, kind marketplace.IdentifierKind) ([]marketplace.Candidate, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.New("identifier must not be empty")
	}
	params := url.Values{}
	params.Set("identifier", code)
	params.Set("identifier_type", strings.ToUpper(string(kind)))
	return c.search(ctx, "/catalog/items", params)
}

// SearchByKeywords performs a free-text catalog search.
func (c *Client) SearchByKeywords(ctx context.Context, query string) ([]marketplace.Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("keywords", query)
	return c.search(ctx, "/catalog/search", params)
}

func (c *Client) search(ctx context.Context, path string, params url.Values) ([]marketplace.Candidate, error) {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("parse amazon url: %w", err)
	}
	if c.marketplace != "" {
		params.Set("marketplace", c.marketplace)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "amazon", "search",
			fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, services.Wrap(services.ErrTransient, "amazon", "search",
			fmt.Sprintf("catalog search returned %d (latency=%v)", resp.StatusCode, latency), nil)
	default:
		return nil, fmt.Errorf("amazon catalog search returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode amazon response: %w", err)
	}

	candidates := make([]marketplace.Candidate, 0, len(payload.Items))
	for _, it := range payload.Items {
		if strings.TrimSpace(it.ASIN) == "" {
			continue
		}
		candidates = append(candidates, marketplace.Candidate{
			ASIN:     it.ASIN,
			Title:    it.Title,
			Brand:    it.Brand,
			ImageURL: it.ImageURL,
		})
	}
	return candidates, nil
}
