// internal/providers/walmart.go
package providers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"shopper-agents/internal/models"
)

const walmartBaseURL = "https://www.walmart.com"

// WalmartProvider extracts products from Walmart search pages.
type WalmartProvider struct {
	fetcher *htmlFetcher
	baseURL string
}

func NewWalmartProvider(client *http.Client, proxyURL, proxyAPIKey string) *WalmartProvider {
	return &WalmartProvider{
		fetcher: newHTMLFetcher(client, proxyURL, proxyAPIKey),
		baseURL: walmartBaseURL,
	}
}

func (p *WalmartProvider) Name() string {
	return "walmart"
}

func (p *WalmartProvider) Search(ctx context.Context, query string, maxResults int, render RenderMode) ([]models.Product, error) {
	pageURL := p.baseURL + "/search?q=" + url.QueryEscape(query)
	doc, err := p.fetcher.fetchDocument(ctx, pageURL, render, "us")
	if err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, maxResults)
	doc.Find("[data-item-id]").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if len(products) >= maxResults {
			return false
		}

		title := strings.TrimSpace(card.Find(`a[link-identifier*="product"]`).First().Text())
		if title == "" {
			title = strings.TrimSpace(card.Find("a span").First().Text())
		}
		if len(title) < 5 {
			return true
		}

		href, _ := card.Find(`a[href*="/ip/"]`).First().Attr("href")
		if href == "" {
			href, _ = card.Find("a").First().Attr("href")
		}
		if href == "" {
			return true
		}

		text := card.Text()
		products = append(products, models.Product{
			Source:       p.Name(),
			Title:        title,
			URL:          absoluteURL(p.baseURL, href),
			Price:        parsePrice(text),
			Currency:     "USD",
			Rating:       parseRating(text),
			ThumbnailURL: cardThumbnail(card),
		})
		return true
	})

	return products, nil
}
