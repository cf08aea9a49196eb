// internal/models/product.go
package models

// Product is the normalized item representation produced by a discovery
// provider. Immutable once discovered; owned by a single request.
type Product struct {
	Source       string   `json:"source"`
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	Price        *float64 `json:"price,omitempty"`
	Currency     string   `json:"currency"`
	Rating       *float64 `json:"rating,omitempty"`
	RatingCount  *int     `json:"ratingCount,omitempty"`
	Sponsored    bool     `json:"sponsored"`
	ThumbnailURL string   `json:"thumbnailUrl,omitempty"`
}

// PriceValue returns the price or 0 when absent or negative data
// slipped through extraction.
func (p *Product) PriceValue() float64 {
	if p.Price == nil || *p.Price < 0 {
		return 0
	}
	return *p.Price
}

// HasPrice reports whether the product carries a usable positive price.
func (p *Product) HasPrice() bool {
	return p.Price != nil && *p.Price > 0
}

// RatingValue returns the rating or 0 when the product is unrated.
func (p *Product) RatingValue() float64 {
	if p.Rating == nil || *p.Rating < 0 {
		return 0
	}
	return *p.Rating
}

// RatingCountValue returns the review count or 0 when unknown.
func (p *Product) RatingCountValue() int {
	if p.RatingCount == nil || *p.RatingCount < 0 {
		return 0
	}
	return *p.RatingCount
}
