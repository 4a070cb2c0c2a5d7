package praktiker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

// Product is a product descriptor parsed from a praktiker.bg search result.
type Product struct {
	SKU     string   `json:"sku"`
	Name    string   `json:"name"`
	URL     string   `json:"url"`
	Barcode string   `json:"barcode,omitempty"`
	Price   *float64 `json:"price,omitempty"`
}

// Client is a minimal HTTP client for the praktiker.bg storefront search.
// It identifies itself with a dedicated User-Agent; keep request volume
// polite and within the site's robots policy.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewClient constructs a praktiker client with the given base URL and
// request timeout.
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		userAgent:  userAgent,
	}
}

// SearchByBarcode looks a product up through the site search. A miss (no
// product card in the result page) returns (nil, nil); only transport or
// HTTP-level problems return an error.
func (c *Client) SearchByBarcode(ctx context.Context, barcode string) (*Product, error) {
	searchURL := fmt.Sprintf("%s/bg/search?query=%s", c.baseURL, url.QueryEscape(barcode))

	body, err := c.fetch(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	product, err := parseSearchResult(body, c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search result: %w", err)
	}
	if product == nil {
		log.Debug().Str("barcode", barcode).Msg("[PRAKTIKER] No product card in search result")
		return nil, nil
	}

	// The search was keyed by barcode; carry it on the descriptor.
	product.Barcode = barcode
	if product.SKU == "" {
		product.SKU = barcode
	}
	return product, nil
}

// fetch performs the GET request and returns the response body reader.
func (c *Client) fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}
	return resp.Body, nil
}
