package dealdetection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopper-agents/internal/common/logger"
	"shopper-agents/internal/models"
)

func f(v float64) *float64 { return &v }

func priced(price float64, rating *float64) models.Product {
	return models.Product{Title: "item", Source: "flipkart", Price: f(price), Rating: rating}
}

func newTestHandler() *Handler {
	return NewHandler(logger.NewNoOpLogger())
}

func TestAnalyze_PercentileSymmetry(t *testing.T) {
	t.Run("two items", func(t *testing.T) {
		assessments := newTestHandler().Analyze([]models.Product{
			priced(100, nil),
			priced(200, nil),
		})
		require.Len(t, assessments, 2)
		assert.Equal(t, 100.0, assessments[0].PricePercentile)
		assert.Equal(t, 0.0, assessments[1].PricePercentile)
	})

	t.Run("all prices equal", func(t *testing.T) {
		assessments := newTestHandler().Analyze([]models.Product{
			priced(500, nil),
			priced(500, nil),
			priced(500, nil),
		})
		for idx, assessment := range assessments {
			assert.Equal(t, 50.0, assessment.PricePercentile, "index %d", idx)
		}
	})
}

func TestAnalyze_DealQualityThresholds(t *testing.T) {
	// Prices {100, 400, 700, 1000}: mean 550.
	assessments := newTestHandler().Analyze([]models.Product{
		priced(100, nil),  // percentile 100, savings 81.8% -> excellent
		priced(400, nil),  // percentile 66.7, savings 27.3% -> excellent (savings >= 20)
		priced(700, nil),  // percentile 33.3, savings -27.3% -> average
		priced(1000, nil), // percentile 0 -> average
	})

	assert.Equal(t, models.DealQualityExcellent, assessments[0].DealQuality)
	assert.Equal(t, models.DealQualityExcellent, assessments[1].DealQuality)
	assert.Equal(t, models.DealQualityAverage, assessments[2].DealQuality)
	assert.Equal(t, models.DealQualityAverage, assessments[3].DealQuality)
}

func TestAnalyze_ValueScore(t *testing.T) {
	assessments := newTestHandler().Analyze([]models.Product{
		priced(100, f(4.0)), // percentile 100: 100*0.6 + 80*0.4 = 92
		priced(200, nil),    // percentile 0, unrated: 0*0.8 = 0
	})

	assert.InDelta(t, 92.0, assessments[0].ValueScore, 0.001)
	assert.Equal(t, 0.0, assessments[1].ValueScore)
	for _, assessment := range assessments {
		assert.GreaterOrEqual(t, assessment.ValueScore, 0.0)
		assert.LessOrEqual(t, assessment.ValueScore, 100.0)
	}
}

func TestAnalyze_Tags(t *testing.T) {
	// Prices {1000, 2000, 3000}: mean 2000.
	assessments := newTestHandler().Analyze([]models.Product{
		priced(1000, f(4.6)),
		priced(2000, f(4.1)),
		priced(3000, f(3.0)),
	})

	cheap := assessments[0] // percentile 100, savings 50%
	assert.Contains(t, cheap.Tags, "Lowest Price")
	assert.Contains(t, cheap.Tags, "Hot Deal")
	assert.Contains(t, cheap.Tags, "Best Value")
	assert.Contains(t, cheap.Tags, "Top Rated")
	assert.Contains(t, cheap.Tags, "Quality + Price")

	mid := assessments[1] // percentile 50, savings 0%
	assert.Contains(t, mid.Tags, "Highly Rated")
	assert.NotContains(t, mid.Tags, "Quality + Price")
}

func TestAnalyze_BestDealRanking(t *testing.T) {
	// Value scores descend with price here; four priced items.
	assessments := newTestHandler().Analyze([]models.Product{
		priced(100, f(4.5)),
		priced(200, f(4.0)),
		priced(300, f(3.5)),
		priced(400, f(3.0)),
	})

	require.Len(t, assessments, 4)

	ranked := 0
	for _, assessment := range assessments {
		if assessment.IsBestDeal {
			ranked++
			require.NotNil(t, assessment.DealRank)
			assert.LessOrEqual(t, *assessment.DealRank, 3)
		} else {
			assert.Nil(t, assessment.DealRank)
		}
	}
	assert.Equal(t, 3, ranked)

	require.NotNil(t, assessments[0].DealRank)
	assert.Equal(t, 1, *assessments[0].DealRank)
}

func TestAnalyze_PricelessItemsSkipped(t *testing.T) {
	assessments := newTestHandler().Analyze([]models.Product{
		priced(100, nil),
		{Title: "no price", Source: "flipkart"},
	})

	require.Len(t, assessments, 1)
	_, ok := assessments[1]
	assert.False(t, ok)
}

func TestAnalyze_NoPricedItems(t *testing.T) {
	assessments := newTestHandler().Analyze([]models.Product{
		{Title: "a"}, {Title: "b"},
	})
	assert.Empty(t, assessments)
}

func TestSummary(t *testing.T) {
	handler := newTestHandler()
	batch := []models.Product{
		priced(100, f(4.5)),
		priced(200, f(4.0)),
		priced(300, nil),
	}
	assessments := handler.Analyze(batch)

	summary := handler.Summary(assessments, batch)

	assert.Equal(t, 3, summary.TotalProducts)
	assert.Equal(t, 3, summary.BestDealsCount)
	require.NotNil(t, summary.PriceRange)
	assert.Equal(t, 100.0, summary.PriceRange.Min)
	assert.Equal(t, 300.0, summary.PriceRange.Max)
	assert.InDelta(t, 200.0, summary.PriceRange.Avg, 0.001)

	total := 0
	for _, count := range summary.QualityDistribution {
		total += count
	}
	assert.Equal(t, 3, total)
}

func TestSummary_Empty(t *testing.T) {
	summary := newTestHandler().Summary(map[int]models.DealAssessment{}, nil)
	assert.Equal(t, 0, summary.TotalProducts)
	assert.Nil(t, summary.PriceRange)
}

func TestHasDiscountKeyword(t *testing.T) {
	assert.True(t, HasDiscountKeyword("Headphones MEGA SALE 50% off"))
	assert.False(t, HasDiscountKeyword("Sony WH-1000XM5"))
}

func TestAnalyze_DiscountKeywordFlag(t *testing.T) {
	assessments := newTestHandler().Analyze([]models.Product{
		{Title: "Headphones Clearance Deal", Source: "flipkart", Price: f(100)},
		{Title: "Sony WH-1000XM5", Source: "flipkart", Price: f(200)},
	})

	require.Len(t, assessments, 2)
	assert.True(t, assessments[0].HasDiscountKeyword)
	assert.False(t, assessments[1].HasDiscountKeyword)
}
