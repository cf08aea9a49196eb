// pkg/catalog/schema.go
package catalog

// File is a versioned product catalog ready for indexing.
type File struct {
	Version     string    `json:"version"`
	LastUpdated string    `json:"lastUpdated"`
	Products    []Product `json:"products"`
}

// Product is one catalog document. Field names match what the catalog
// search provider reads back out of the index.
type Product struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Category     string   `json:"category,omitempty"`
	URL          string   `json:"url"`
	Price        *float64 `json:"price,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	RatingCount  *int     `json:"rating_count,omitempty"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}
