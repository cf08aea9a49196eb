// internal/agents/deal-detection/handler.go
package dealdetection

import (
	"sort"
	"strings"

	"shopper-agents/internal/common/logger"
	"shopper-agents/internal/models"
)

const StageName = "deal-detection"

const bestDealCount = 3

type Handler struct {
	logger logger.Logger
}

func NewHandler(log logger.Logger) *Handler {
	return &Handler{
		logger: log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

// Analyze classifies every priced item's deal quality against the
// batch's price distribution, keyed by discovery-order index. Items
// without a valid positive price get no assessment.
func (h *Handler) Analyze(batch []models.Product) map[int]models.DealAssessment {
	prices := make([]float64, 0, len(batch))
	for _, item := range batch {
		if price := item.PriceValue(); price > 0 {
			prices = append(prices, price)
		}
	}
	if len(prices) == 0 {
		return map[int]models.DealAssessment{}
	}

	stats := computeStats(prices)

	assessments := make(map[int]models.DealAssessment, len(batch))
	for idx, item := range batch {
		price := item.PriceValue()
		if price <= 0 {
			continue
		}
		assessments[idx] = assessDeal(item.Title, price, item.RatingValue(), stats)
	}

	markBestDeals(assessments)
	return assessments
}

type priceStats struct {
	mean   float64
	median float64
	min    float64
	max    float64
}

func computeStats(prices []float64) priceStats {
	sorted := append([]float64(nil), prices...)
	sort.Float64s(sorted)

	var sum float64
	for _, p := range sorted {
		sum += p
	}

	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}

	return priceStats{
		mean:   sum / float64(len(sorted)),
		median: median,
		min:    sorted[0],
		max:    sorted[len(sorted)-1],
	}
}

func assessDeal(title string, price, rating float64, stats priceStats) models.DealAssessment {
	percentile := pricePercentile(price, stats.min, stats.max)

	savings := stats.mean - price
	savingsPercent := 0.0
	if stats.mean > 0 {
		savingsPercent = savings / stats.mean * 100
	}

	quality := dealQuality(percentile, savingsPercent)
	valueScore := computeValueScore(percentile, rating)
	isLowest := price == stats.min

	return models.DealAssessment{
		PricePercentile:    percentile,
		SavingsVsAverage:   savings,
		SavingsPercent:     savingsPercent,
		DealQuality:        quality,
		ValueScore:         valueScore,
		Tags:               dealTags(percentile, savingsPercent, rating, isLowest),
		IsLowestPrice:      isLowest,
		PricePosition:      pricePosition(percentile),
		HasDiscountKeyword: HasDiscountKeyword(title),
		Recommendation:     dealRecommendation(quality, valueScore, isLowest),
	}
}

// pricePercentile inverts price position in [min,max] so cheaper items
// score higher; a degenerate range is exactly 50.
func pricePercentile(price, min, max float64) float64 {
	if max == min {
		return 50
	}
	return 100 - ((price-min)/(max-min))*100
}

func dealQuality(percentile, savingsPercent float64) models.DealQuality {
	switch {
	case percentile >= 80 || savingsPercent >= 20:
		return models.DealQualityExcellent
	case percentile >= 60 || savingsPercent >= 10:
		return models.DealQualityGood
	case percentile >= 40 || savingsPercent >= 5:
		return models.DealQualityFair
	default:
		return models.DealQualityAverage
	}
}

func computeValueScore(percentile, rating float64) float64 {
	if rating == 0 {
		return percentile * 0.8
	}
	return percentile*0.6 + (rating/5*100)*0.4
}

func dealTags(percentile, savingsPercent, rating float64, isLowest bool) []string {
	var tags []string

	if isLowest {
		tags = append(tags, "Lowest Price")
	}

	switch {
	case savingsPercent >= 30:
		tags = append(tags, "Hot Deal")
	case savingsPercent >= 20:
		tags = append(tags, "Great Deal")
	case savingsPercent >= 10:
		tags = append(tags, "Good Deal")
	}

	switch {
	case percentile >= 80:
		tags = append(tags, "Best Value")
	case percentile >= 60:
		tags = append(tags, "Good Value")
	}

	switch {
	case rating >= 4.5:
		tags = append(tags, "Top Rated")
	case rating >= 4.0:
		tags = append(tags, "Highly Rated")
	}

	if rating >= 4.0 && percentile >= 70 {
		tags = append(tags, "Quality + Price")
	}

	return tags
}

func pricePosition(percentile float64) string {
	switch {
	case percentile >= 80:
		return "Very Low"
	case percentile >= 60:
		return "Below Average"
	case percentile >= 40:
		return "Average"
	case percentile >= 20:
		return "Above Average"
	default:
		return "High"
	}
}

func dealRecommendation(quality models.DealQuality, valueScore float64, isLowest bool) string {
	switch {
	case quality == models.DealQualityExcellent && valueScore >= 80:
		return "Outstanding value - highly recommended"
	case quality == models.DealQualityExcellent:
		return "Excellent price - great deal"
	case quality == models.DealQualityGood && valueScore >= 70:
		return "Good value for money"
	case isLowest:
		return "Lowest price available"
	case quality == models.DealQualityFair:
		return "Fair deal - consider alternatives"
	default:
		return "Compare with other options"
	}
}

// markBestDeals flags the top items by value score with dealRank 1..3.
// Ties break on the lower index to keep the ordering deterministic.
func markBestDeals(assessments map[int]models.DealAssessment) {
	indices := make([]int, 0, len(assessments))
	for idx := range assessments {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool {
		a, b := assessments[indices[i]], assessments[indices[j]]
		if a.ValueScore != b.ValueScore {
			return a.ValueScore > b.ValueScore
		}
		return indices[i] < indices[j]
	})

	count := bestDealCount
	if len(indices) < count {
		count = len(indices)
	}
	for rank := 0; rank < count; rank++ {
		idx := indices[rank]
		assessment := assessments[idx]
		assessment.IsBestDeal = true
		dealRank := rank + 1
		assessment.DealRank = &dealRank
		assessments[idx] = assessment
	}
}

// Summary aggregates the batch's deal statistics.
func (h *Handler) Summary(assessments map[int]models.DealAssessment, batch []models.Product) models.DealSummary {
	if len(assessments) == 0 {
		return models.DealSummary{}
	}

	var savingsSum float64
	var bestDeals int
	distribution := make(map[models.DealQuality]int, 4)

	prices := make([]float64, 0, len(assessments))
	for idx, assessment := range assessments {
		savingsSum += assessment.SavingsPercent
		if assessment.IsBestDeal {
			bestDeals++
		}
		distribution[assessment.DealQuality]++
		if idx < len(batch) {
			if price := batch[idx].PriceValue(); price > 0 {
				prices = append(prices, price)
			}
		}
	}

	summary := models.DealSummary{
		TotalProducts:       len(assessments),
		BestDealsCount:      bestDeals,
		AvgSavingsPercent:   savingsSum / float64(len(assessments)),
		QualityDistribution: distribution,
	}
	if len(prices) > 0 {
		stats := computeStats(prices)
		summary.PriceRange = &models.PriceRange{Min: stats.min, Max: stats.max, Avg: stats.mean}
	}
	return summary
}

// HasDiscountKeyword reports whether a title advertises a discount.
func HasDiscountKeyword(title string) bool {
	lower := strings.ToLower(title)
	for _, word := range []string{"sale", "off", "deal", "discount", "clearance"} {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
