// internal/providers/flipkart.go
package providers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"shopper-agents/internal/models"
)

const flipkartBaseURL = "https://www.flipkart.com"

// flipkartCardSelectors cover the layouts Flipkart rotates between;
// the first selector that matches anything wins.
var flipkartCardSelectors = []string{
	"a.CGtC98",
	"a.k7wcnx",
	"div._13oc-S",
	"div._75nlfW",
	"a.rPDeLR",
}

// FlipkartProvider extracts products from Flipkart search pages.
type FlipkartProvider struct {
	fetcher *htmlFetcher
	baseURL string
}

func NewFlipkartProvider(client *http.Client, proxyURL, proxyAPIKey string) *FlipkartProvider {
	return &FlipkartProvider{
		fetcher: newHTMLFetcher(client, proxyURL, proxyAPIKey),
		baseURL: flipkartBaseURL,
	}
}

func (p *FlipkartProvider) Name() string {
	return "flipkart"
}

func (p *FlipkartProvider) Search(ctx context.Context, query string, maxResults int, render RenderMode) ([]models.Product, error) {
	pageURL := p.baseURL + "/search?q=" + url.QueryEscape(query)
	doc, err := p.fetcher.fetchDocument(ctx, pageURL, render, "in")
	if err != nil {
		return nil, err
	}

	cards := selectCards(doc, flipkartCardSelectors)

	products := make([]models.Product, 0, maxResults)
	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if len(products) >= maxResults {
			return false
		}

		href, ok := cardLink(card)
		if !ok || href == "" {
			return true
		}
		prodURL := absoluteURL(p.baseURL, href)
		if prodURL == p.baseURL {
			return true
		}

		text := card.Text()
		title := firstTitleLine(card)
		if len(strings.TrimSpace(title)) < 5 {
			return true
		}

		product := models.Product{
			Source:       p.Name(),
			Title:        title,
			URL:          prodURL,
			Price:        parsePrice(text),
			Currency:     "INR",
			Rating:       parseRating(text),
			ThumbnailURL: cardThumbnail(card),
		}
		products = append(products, product)
		return true
	})

	return products, nil
}

// selectCards returns the first selector's matches that are non-empty.
func selectCards(doc *goquery.Document, selectors []string) *goquery.Selection {
	for _, selector := range selectors {
		if cards := doc.Find(selector); cards.Length() > 0 {
			return cards
		}
	}
	return doc.Find(selectors[0])
}

// cardLink resolves the product link whether the card itself is the
// anchor or wraps one.
func cardLink(card *goquery.Selection) (string, bool) {
	if goquery.NodeName(card) == "a" {
		return card.Attr("href")
	}
	return card.Find("a").First().Attr("href")
}

// firstTitleLine picks the first substantial non-price line of card
// text, which is how these listings lay out the product name.
func firstTitleLine(card *goquery.Selection) string {
	for _, line := range strings.Split(card.Text(), "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 10 && !strings.HasPrefix(line, "₹") && !strings.HasPrefix(line, "$") {
			return line
		}
	}
	if title := strings.TrimSpace(card.Find("img").First().AttrOr("alt", "")); title != "" {
		return title
	}
	return ""
}

func cardThumbnail(card *goquery.Selection) string {
	img := card.Find("img").First()
	if src := img.AttrOr("src", ""); src != "" {
		return src
	}
	return img.AttrOr("data-src", "")
}
