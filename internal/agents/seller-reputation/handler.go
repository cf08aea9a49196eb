// internal/agents/seller-reputation/handler.go
package sellerreputation

import (
	"shopper-agents/internal/common/logger"
	"shopper-agents/internal/models"
)

const StageName = "seller-reputation"

const (
	flagPriceTooLow   = "Price significantly below market average"
	flagNoRating      = "Product has no customer ratings"
	flagVeryLowRating = "Product rating below 3.0"
	warnFewReviews    = "Less than 5 customer reviews"
	warnAuthenticity  = "Verify product authenticity before purchase"
	warnPriceHigh     = "Price higher than average - check for additional features"
)

type Handler struct {
	table  *ReputationTable
	logger logger.Logger
}

func NewHandler(table *ReputationTable, log logger.Logger) *Handler {
	if table == nil {
		table = DefaultTable()
	}
	return &Handler{
		table:  table,
		logger: log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

// Analyze scores every item in the batch, keyed by discovery-order
// index. Pure local computation over a read-only batch; it cannot
// fail.
func (h *Handler) Analyze(batch []models.Product) map[int]models.TrustAssessment {
	avgPrice := averagePrice(batch)

	assessments := make(map[int]models.TrustAssessment, len(batch))
	for idx, item := range batch {
		assessments[idx] = h.assess(item, avgPrice)
	}
	return assessments
}

func (h *Handler) assess(item models.Product, avgPrice float64) models.TrustAssessment {
	marketplaceScore := h.table.Score(item.Source)
	price := item.PriceValue()
	rating := item.RatingValue()
	ratingCount := item.RatingCountValue()

	anomaly := detectPriceAnomaly(price, avgPrice)

	var redFlags, warnings []string
	if anomaly == models.PriceTooLow {
		redFlags = append(redFlags, flagPriceTooLow)
	}
	if rating == 0 {
		redFlags = append(redFlags, flagNoRating)
	} else if rating < 3.0 {
		redFlags = append(redFlags, flagVeryLowRating)
	}
	if ratingCount > 0 && ratingCount < 5 {
		warnings = append(warnings, warnFewReviews)
	}

	score := marketplaceScore

	if rating > 0 {
		score += (rating - 3.0) * 10
	} else {
		score -= 15
	}

	// Review-count tiers are mutually exclusive: only the highest
	// matching tier applies.
	if ratingCount > 0 {
		switch {
		case ratingCount > 500:
			score += 15
		case ratingCount > 100:
			score += 10
		case ratingCount < 5:
			score -= 10
		}
	}

	switch anomaly {
	case models.PriceTooLow:
		score -= 20
		warnings = append(warnings, warnAuthenticity)
	case models.PriceTooHigh:
		score -= 5
		warnings = append(warnings, warnPriceHigh)
	}

	score = clamp(score, 0, 100)

	return models.TrustAssessment{
		TrustScore:       score,
		MarketplaceScore: marketplaceScore,
		RiskTier:         riskTierFor(score),
		RedFlags:         redFlags,
		Warnings:         warnings,
		Recommendations:  recommendations(marketplaceScore, rating, ratingCount, anomaly),
		PriceStatus:      anomaly,
	}
}

func averagePrice(batch []models.Product) float64 {
	var sum float64
	var count int
	for _, item := range batch {
		if price := item.PriceValue(); price > 0 {
			sum += price
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func detectPriceAnomaly(price, avgPrice float64) models.PriceAnomaly {
	if avgPrice == 0 || price == 0 {
		return models.PriceNormal
	}
	ratio := price / avgPrice
	switch {
	case ratio < 0.5:
		return models.PriceTooLow
	case ratio > 1.5:
		return models.PriceTooHigh
	default:
		return models.PriceNormal
	}
}

func riskTierFor(score float64) models.RiskTier {
	switch {
	case score >= 75:
		return models.RiskTierLow
	case score >= 50:
		return models.RiskTierMedium
	default:
		return models.RiskTierHigh
	}
}

func recommendations(marketplaceScore, rating float64, ratingCount int, anomaly models.PriceAnomaly) []string {
	var recs []string

	if marketplaceScore >= 85 {
		recs = append(recs, "Trusted marketplace with buyer protection")
	}
	if rating >= 4.5 && ratingCount > 100 {
		recs = append(recs, "Highly rated product with substantial reviews")
	}
	if rating > 0 && rating < 3.5 {
		recs = append(recs, "Consider alternative products with better ratings")
	}
	if anomaly == models.PriceTooLow {
		recs = append(recs, "Verify seller authenticity and product details")
	}
	if ratingCount < 10 {
		recs = append(recs, "New product - check for detailed specifications")
	}

	return recs
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
