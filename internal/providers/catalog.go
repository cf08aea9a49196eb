// internal/providers/catalog.go
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"shopper-agents/internal/models"
)

// CatalogProvider searches the internal product index. Unlike the
// marketplace providers it never needs rendering; renderMode is
// accepted for interface symmetry and ignored.
type CatalogProvider struct {
	client   *elasticsearch.Client
	index    string
	currency string
}

func NewCatalogProvider(client *elasticsearch.Client, index, currency string) *CatalogProvider {
	return &CatalogProvider{client: client, index: index, currency: currency}
}

func (p *CatalogProvider) Name() string {
	return "catalog"
}

type catalogDocument struct {
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	Price        *float64 `json:"price"`
	Rating       *float64 `json:"rating"`
	RatingCount  *int     `json:"rating_count"`
	ThumbnailURL string   `json:"thumbnail_url"`
}

func (p *CatalogProvider) Search(ctx context.Context, query string, maxResults int, _ RenderMode) ([]models.Product, error) {
	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^3", "description^2", "category"},
				"type":   "best_fields",
			},
		},
	}

	body, _ := json.Marshal(queryBody)
	from := 0

	req := esapi.SearchRequest{
		Index: []string{p.index},
		Body:  strings.NewReader(string(body)),
		From:  &from,
		Size:  &maxResults,
	}

	res, err := req.Do(ctx, p.client)
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("catalog search error: %s", res.Status())
	}

	var response struct {
		Hits struct {
			Hits []struct {
				Source catalogDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}

	products := make([]models.Product, 0, len(response.Hits.Hits))
	for _, hit := range response.Hits.Hits {
		doc := hit.Source
		if doc.Title == "" {
			continue
		}
		products = append(products, models.Product{
			Source:       p.Name(),
			Title:        doc.Title,
			URL:          doc.URL,
			Price:        doc.Price,
			Currency:     p.currency,
			Rating:       doc.Rating,
			RatingCount:  doc.RatingCount,
			ThumbnailURL: doc.ThumbnailURL,
		})
	}

	return products, nil
}
