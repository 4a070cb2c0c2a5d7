package praktiker

import (
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors for the storefront search page. The site markup shifts between
// releases, so each selector lists the known variants.
const (
	cardSelector  = ".product-card, .product, .catalog__product"
	titleSelector = ".title a, .product-title a, a"
	skuSelector   = "[data-sku], .sku, .product-code"
	priceSelector = ".price, .product-price__current"
)

// parseSearchResult extracts the first product card from a search result
// page. Returns (nil, nil) when the page contains no card.
func parseSearchResult(body io.Reader, baseURL string) (*Product, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, err
	}

	card := doc.Find(cardSelector).First()
	if card.Length() == 0 {
		return nil, nil
	}

	p := &Product{}

	title := card.Find(titleSelector).First()
	p.Name = strings.TrimSpace(title.Text())
	if href, ok := title.Attr("href"); ok {
		if strings.HasPrefix(href, "/") {
			href = baseURL + href
		}
		p.URL = href
	}

	sku := card.Find(skuSelector).First()
	if v, ok := sku.Attr("data-sku"); ok && v != "" {
		p.SKU = strings.TrimSpace(v)
	} else {
		p.SKU = strings.TrimSpace(sku.Text())
	}

	if raw := strings.TrimSpace(card.Find(priceSelector).First().Text()); raw != "" {
		if price, ok := parsePrice(raw); ok {
			p.Price = &price
		}
	}

	return p, nil
}

// parsePrice normalizes a display price like "12,99 лв." to a float. Only
// the first numeric run counts; the currency suffix and its period are not
// part of the number.
func parsePrice(raw string) (float64, bool) {
	raw = strings.ReplaceAll(raw, ",", ".")

	start := strings.IndexFunc(raw, func(r rune) bool { return r >= '0' && r <= '9' })
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(raw) && ((raw[end] >= '0' && raw[end] <= '9') || raw[end] == '.') {
		end++
	}

	num := strings.Trim(raw[start:end], ".")
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
