// internal/providers/amazon.go
package providers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"shopper-agents/internal/models"
)

// AmazonProvider extracts products from Amazon search result pages.
// One type serves both hosts; the name, currency and geo hint follow
// the marketplace it was built for.
type AmazonProvider struct {
	fetcher     *htmlFetcher
	name        string
	baseURL     string
	currency    string
	countryCode string
}

// NewAmazonIndiaProvider searches amazon.in.
func NewAmazonIndiaProvider(client *http.Client, proxyURL, proxyAPIKey string) *AmazonProvider {
	return &AmazonProvider{
		fetcher:     newHTMLFetcher(client, proxyURL, proxyAPIKey),
		name:        "amazon.in",
		baseURL:     "https://www.amazon.in",
		currency:    "INR",
		countryCode: "in",
	}
}

// NewAmazonUSProvider searches amazon.com.
func NewAmazonUSProvider(client *http.Client, proxyURL, proxyAPIKey string) *AmazonProvider {
	return &AmazonProvider{
		fetcher:     newHTMLFetcher(client, proxyURL, proxyAPIKey),
		name:        "amazon.com",
		baseURL:     "https://www.amazon.com",
		currency:    "USD",
		countryCode: "us",
	}
}

func (p *AmazonProvider) Name() string {
	return p.name
}

func (p *AmazonProvider) Search(ctx context.Context, query string, maxResults int, render RenderMode) ([]models.Product, error) {
	pageURL := p.baseURL + "/s?k=" + url.QueryEscape(query)
	doc, err := p.fetcher.fetchDocument(ctx, pageURL, render, p.countryCode)
	if err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, maxResults)
	doc.Find("div[data-component-type='s-search-result']").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if len(products) >= maxResults {
			return false
		}

		title := strings.TrimSpace(card.Find("h2").First().Text())
		if title == "" {
			return true
		}

		href, _ := card.Find("h2 a, a.a-link-normal").First().Attr("href")
		if href == "" {
			return true
		}

		price := parseAmazonPrice(card)
		rating := parseRating(card.Find("span.a-icon-alt").First().Text())
		count := parseCount(card.Find("span.a-size-base.s-underline-text").First().Text())

		products = append(products, models.Product{
			Source:       p.name,
			Title:        title,
			URL:          absoluteURL(p.baseURL, href),
			Price:        price,
			Currency:     p.currency,
			Rating:       rating,
			RatingCount:  count,
			Sponsored:    isSponsoredCard(card),
			ThumbnailURL: card.Find("img.s-image").First().AttrOr("src", ""),
		})
		return true
	})

	return products, nil
}

func parseAmazonPrice(card *goquery.Selection) *float64 {
	// a-offscreen carries the full formatted price; the visible
	// a-price-whole span drops the fraction.
	if price := parsePrice(card.Find("span.a-price span.a-offscreen").First().Text()); price != nil {
		return price
	}
	return parseBareNumber(card.Find("span.a-price-whole").First().Text())
}

func isSponsoredCard(card *goquery.Selection) bool {
	if card.Find("span[data-component-type='sp-sponsored-result']").Length() > 0 {
		return true
	}
	label := strings.TrimSpace(card.Find("span.puis-label-popover-default, span.s-label-popover-default").First().Text())
	return strings.EqualFold(label, "sponsored")
}
