// internal/agents/rank-products/models.go
package rankproducts

// itemSummary is the compact per-item view sent to the reasoning
// service, small enough that fifteen of them fit one prompt.
type itemSummary struct {
	Index         int      `json:"index"`
	Title         string   `json:"title"`
	Price         float64  `json:"price"`
	Rating        float64  `json:"rating"`
	Source        string   `json:"source"`
	TrustScore    float64  `json:"seller_trust_score"`
	RiskTier      string   `json:"seller_risk_level"`
	DealQuality   string   `json:"deal_quality"`
	ValueScore    float64  `json:"value_score"`
	IsLowestPrice bool     `json:"is_lowest_price"`
	DealTags      []string `json:"deal_tags"`
	HasWarnings   bool     `json:"has_warnings"`
}

// rankingEntry mirrors one element of the array the reasoning service
// is asked to produce.
type rankingEntry struct {
	ProductIndex    int     `json:"product_index"`
	Rank            int     `json:"rank"`
	OverallScore    float64 `json:"overall_score"`
	MatchScore      float64 `json:"match_score"`
	ValueAssessment string  `json:"value_assessment"`
	Reasoning       string  `json:"reasoning"`
	Recommendation  string  `json:"recommendation"`
}

const rankingSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"properties": {
			"product_index": {"type": "integer"},
			"overall_score": {"type": "number"},
			"match_score": {"type": "number"},
			"value_assessment": {"type": "string"},
			"reasoning": {"type": "string"}
		},
		"required": ["product_index", "overall_score"]
	},
	"minItems": 1
}`
