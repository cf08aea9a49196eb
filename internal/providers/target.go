// internal/providers/target.go
package providers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"shopper-agents/internal/models"
)

const targetBaseURL = "https://www.target.com"

var targetCardSelectors = []string{
	`[data-test="@web/site-top-of-funnel/ProductCardWrapper"]`,
	`section[data-test*="product"]`,
	`div[data-test="product-grid"] > div`,
	`li[data-test*="list-item"]`,
}

// TargetProvider extracts products from Target search pages.
type TargetProvider struct {
	fetcher *htmlFetcher
	baseURL string
}

func NewTargetProvider(client *http.Client, proxyURL, proxyAPIKey string) *TargetProvider {
	return &TargetProvider{
		fetcher: newHTMLFetcher(client, proxyURL, proxyAPIKey),
		baseURL: targetBaseURL,
	}
}

func (p *TargetProvider) Name() string {
	return "target"
}

func (p *TargetProvider) Search(ctx context.Context, query string, maxResults int, render RenderMode) ([]models.Product, error) {
	pageURL := p.baseURL + "/s?searchTerm=" + url.QueryEscape(query)
	doc, err := p.fetcher.fetchDocument(ctx, pageURL, render, "us")
	if err != nil {
		return nil, err
	}

	cards := selectCards(doc, targetCardSelectors)

	products := make([]models.Product, 0, maxResults)
	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if len(products) >= maxResults {
			return false
		}

		title := strings.TrimSpace(card.Find(`a[data-test="product-title"]`).First().Text())
		if title == "" {
			title = strings.TrimSpace(card.Find(`[data-test="product-title"] a`).First().Text())
		}
		if len(title) < 5 {
			return true
		}

		href, _ := card.Find(`a[href*="/p/"]`).First().Attr("href")
		if href == "" {
			href, _ = card.Find("a").First().Attr("href")
		}
		if href == "" {
			return true
		}

		price := parsePrice(card.Find(`span[data-test="current-price"]`).First().Text())
		if price == nil {
			price = parsePrice(card.Text())
		}

		products = append(products, models.Product{
			Source:       p.Name(),
			Title:        title,
			URL:          absoluteURL(p.baseURL, href),
			Price:        price,
			Currency:     "USD",
			Rating:       parseRating(card.Text()),
			ThumbnailURL: cardThumbnail(card),
		})
		return true
	})

	return products, nil
}
