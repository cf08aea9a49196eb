// internal/agents/seller-reputation/filter.go
package sellerreputation

import "shopper-agents/internal/models"

// FilterResult is a risk-filtered batch with its index remap. Every
// kept item's assessments move with it; Remap records oldIndex →
// newIndex so callers can audit the translation.
type FilterResult struct {
	Items []models.Product
	Trust map[int]models.TrustAssessment
	Deals map[int]models.DealAssessment
	Remap map[int]int
}

// FilterByRisk keeps items whose risk tier is at or below maxTier and
// rebuilds every per-item map under the new contiguous indices. The
// remap table is built once and applied uniformly to items, trust and
// deal assessments so the three stay aligned. Items with no trust
// assessment rank as high risk.
func FilterByRisk(
	items []models.Product,
	trust map[int]models.TrustAssessment,
	deals map[int]models.DealAssessment,
	maxTier models.RiskTier,
) FilterResult {
	remap := make(map[int]int, len(items))
	kept := make([]models.Product, 0, len(items))

	for oldIndex := range items {
		tier := models.RiskTierHigh
		if assessment, ok := trust[oldIndex]; ok {
			tier = assessment.RiskTier
		}
		if !tier.AtMost(maxTier) {
			continue
		}
		remap[oldIndex] = len(kept)
		kept = append(kept, items[oldIndex])
	}

	result := FilterResult{
		Items: kept,
		Trust: make(map[int]models.TrustAssessment, len(kept)),
		Deals: make(map[int]models.DealAssessment, len(kept)),
		Remap: remap,
	}
	for oldIndex, newIndex := range remap {
		if assessment, ok := trust[oldIndex]; ok {
			result.Trust[newIndex] = assessment
		}
		if assessment, ok := deals[oldIndex]; ok {
			result.Deals[newIndex] = assessment
		}
	}
	return result
}
