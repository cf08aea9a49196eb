// internal/agents/rank-products/highlights.go
package rankproducts

import (
	"fmt"

	"shopper-agents/internal/models"
)

const (
	maxHighlights = 4
	maxRecLen     = 50
)

// buildHighlights produces at most four short strings per item, in
// priority order: best-deal rank, up to two deal tags, trusted-seller
// badge, first trust recommendation, rating badge.
func buildHighlights(item models.Product, trust models.TrustAssessment, deal models.DealAssessment) []string {
	var highlights []string

	if deal.IsBestDeal && deal.DealRank != nil {
		highlights = append(highlights, fmt.Sprintf("Top %d Best Deal", *deal.DealRank))
	}

	tags := deal.Tags
	if len(tags) > 2 {
		tags = tags[:2]
	}
	highlights = append(highlights, tags...)

	if trust.TrustScore >= 85 {
		highlights = append(highlights, "Trusted Seller")
	}

	if len(trust.Recommendations) > 0 {
		rec := trust.Recommendations[0]
		if len(rec) > maxRecLen {
			rec = rec[:maxRecLen]
		}
		highlights = append(highlights, rec)
	}

	if rating := item.RatingValue(); rating >= 4.5 {
		highlights = append(highlights, fmt.Sprintf("%.1f ⭐ Rating", rating))
	}

	if len(highlights) > maxHighlights {
		highlights = highlights[:maxHighlights]
	}
	return highlights
}
