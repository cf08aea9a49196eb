// internal/providers/fetch.go
package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const fetchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// htmlFetcher retrieves marketplace search pages. When a rendering
// proxy is configured, RenderJS fetches are routed through it so
// JavaScript-heavy listings arrive fully populated; otherwise the page
// is fetched directly and extraction works with whatever static markup
// is present.
type htmlFetcher struct {
	client      *http.Client
	proxyURL    string
	proxyAPIKey string
}

func newHTMLFetcher(client *http.Client, proxyURL, proxyAPIKey string) *htmlFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &htmlFetcher{client: client, proxyURL: proxyURL, proxyAPIKey: proxyAPIKey}
}

func (f *htmlFetcher) fetchDocument(ctx context.Context, pageURL string, render RenderMode, countryCode string) (*goquery.Document, error) {
	target := pageURL
	if render == RenderJS && f.proxyURL != "" {
		proxied, err := f.buildProxyURL(pageURL, countryCode)
		if err != nil {
			return nil, err
		}
		target = proxied
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", fetchUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("marketplace returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func (f *htmlFetcher) buildProxyURL(pageURL, countryCode string) (string, error) {
	parsed, err := url.Parse(f.proxyURL)
	if err != nil {
		return "", fmt.Errorf("invalid proxy url: %w", err)
	}

	query := parsed.Query()
	query.Set("api_key", f.proxyAPIKey)
	query.Set("url", pageURL)
	query.Set("render_js", "true")
	if countryCode != "" {
		query.Set("country_code", countryCode)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

var (
	priceExpr  = regexp.MustCompile(`[₹$]\s*([\d,]+(?:\.\d+)?)`)
	ratingExpr = regexp.MustCompile(`(\d\.\d)\s*(?:out of 5|\()`)
	countExpr  = regexp.MustCompile(`\(?([\d,]+)\)?\s*(?:ratings|reviews)?`)
)

// parsePrice extracts the first currency-prefixed number from card
// text. Returns nil when no usable price is present.
func parsePrice(text string) *float64 {
	match := priceExpr.FindStringSubmatch(text)
	if match == nil {
		return nil
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
	if err != nil {
		return nil
	}
	return &value
}

// parseBareNumber parses a price rendered without a currency symbol.
func parseBareNumber(text string) *float64 {
	text = strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	if text == "" {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSuffix(text, "."), 64)
	if err != nil {
		return nil
	}
	return &value
}

// parseRating extracts a star rating like "4.5 out of 5" or "4.5(123)".
func parseRating(text string) *float64 {
	match := ratingExpr.FindStringSubmatch(text)
	if match == nil {
		return nil
	}
	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil || value < 0 || value > 5 {
		return nil
	}
	return &value
}

// parseCount extracts a review count from text such as "(1,234)".
func parseCount(text string) *int {
	match := countExpr.FindStringSubmatch(text)
	if match == nil {
		return nil
	}
	value, err := strconv.Atoi(strings.ReplaceAll(match[1], ",", ""))
	if err != nil {
		return nil
	}
	return &value
}

func absoluteURL(base, href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return strings.TrimSuffix(base, "/") + href
}
