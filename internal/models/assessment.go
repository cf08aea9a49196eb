// internal/models/assessment.go
package models

type RiskTier string

const (
	RiskTierLow    RiskTier = "low"
	RiskTierMedium RiskTier = "medium"
	RiskTierHigh   RiskTier = "high"
)

var riskTierOrder = map[RiskTier]int{
	RiskTierLow:    0,
	RiskTierMedium: 1,
	RiskTierHigh:   2,
}

// AtMost reports whether t is at or below max on the low<medium<high
// total order. Unknown tiers rank as high.
func (t RiskTier) AtMost(max RiskTier) bool {
	to, ok := riskTierOrder[t]
	if !ok {
		to = riskTierOrder[RiskTierHigh]
	}
	mo, ok := riskTierOrder[max]
	if !ok {
		mo = riskTierOrder[RiskTierMedium]
	}
	return to <= mo
}

type DealQuality string

const (
	DealQualityAverage   DealQuality = "average"
	DealQualityFair      DealQuality = "fair"
	DealQualityGood      DealQuality = "good"
	DealQualityExcellent DealQuality = "excellent"
)

type ValueAssessment string

const (
	ValuePoor      ValueAssessment = "poor"
	ValueAverage   ValueAssessment = "average"
	ValueGood      ValueAssessment = "good"
	ValueExcellent ValueAssessment = "excellent"
)

type PriceAnomaly string

const (
	PriceNormal  PriceAnomaly = "normal"
	PriceTooLow  PriceAnomaly = "too_low"
	PriceTooHigh PriceAnomaly = "too_high"
)

// TrustAssessment scores a single product's seller/marketplace
// trustworthiness. Keyed by the product's discovery-order index.
type TrustAssessment struct {
	TrustScore       float64      `json:"trustScore"`
	MarketplaceScore float64      `json:"marketplaceScore"`
	RiskTier         RiskTier     `json:"riskTier"`
	RedFlags         []string     `json:"redFlags,omitempty"`
	Warnings         []string     `json:"warnings,omitempty"`
	Recommendations  []string     `json:"recommendations,omitempty"`
	PriceStatus      PriceAnomaly `json:"priceStatus"`
}

// DealAssessment classifies a single product's price relative to its
// batch. Keyed by the product's discovery-order index.
type DealAssessment struct {
	PricePercentile    float64     `json:"pricePercentile"`
	SavingsVsAverage   float64     `json:"savingsVsAverage"`
	SavingsPercent     float64     `json:"savingsPercent"`
	DealQuality        DealQuality `json:"dealQuality"`
	ValueScore         float64     `json:"valueScore"`
	Tags               []string    `json:"tags,omitempty"`
	IsLowestPrice      bool        `json:"isLowestPrice"`
	IsBestDeal         bool        `json:"isBestDeal"`
	DealRank           *int        `json:"dealRank,omitempty"`
	PricePosition      string      `json:"pricePosition,omitempty"`
	HasDiscountKeyword bool        `json:"hasDiscountKeyword"`
	Recommendation     string      `json:"recommendation,omitempty"`
}

// RankedResult is one entry of the final ordering.
type RankedResult struct {
	ItemIndex       int             `json:"itemIndex"`
	Rank            int             `json:"rank"`
	OverallScore    float64         `json:"overallScore"`
	MatchScore      float64         `json:"matchScore"`
	ValueAssessment ValueAssessment `json:"valueAssessment"`
	Reasoning       string          `json:"reasoning,omitempty"`
	Recommendation  string          `json:"recommendation,omitempty"`
	Highlights      []string        `json:"highlights,omitempty"`
}

// PriceRange summarizes the batch price spread.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// DealSummary aggregates deal statistics across the whole batch.
type DealSummary struct {
	TotalProducts       int                 `json:"totalProducts"`
	BestDealsCount      int                 `json:"bestDealsCount"`
	AvgSavingsPercent   float64             `json:"avgSavingsPercent"`
	PriceRange          *PriceRange         `json:"priceRange,omitempty"`
	QualityDistribution map[DealQuality]int `json:"dealQualityDistribution,omitempty"`
}
