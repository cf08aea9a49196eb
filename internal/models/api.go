// internal/models/api.go
package models

// SearchRequest is the inbound API payload.
type SearchRequest struct {
	Query               string                `json:"query"`
	RegionOverride      string                `json:"regionOverride,omitempty"`
	MaxRiskTier         RiskTier              `json:"maxRiskTier,omitempty"`
	ConversationHistory []ConversationMessage `json:"conversationHistory,omitempty"`
}

// RankedProduct is the outbound view of one ranked item with its
// analysis metadata flattened in.
type RankedProduct struct {
	Title           string          `json:"title"`
	Price           float64         `json:"price"`
	Currency        string          `json:"currency"`
	URL             string          `json:"url"`
	Source          string          `json:"source"`
	Rating          *float64        `json:"rating,omitempty"`
	ThumbnailURL    string          `json:"imageUrl,omitempty"`
	Rank            int             `json:"rank"`
	OverallScore    float64         `json:"overallScore"`
	Reasoning       string          `json:"reasoning,omitempty"`
	ValueAssessment ValueAssessment `json:"valueAssessment"`
	Recommendation  string          `json:"recommendation,omitempty"`
	Highlights      []string        `json:"highlights,omitempty"`
	TrustScore      float64         `json:"sellerTrustScore"`
	RiskTier        RiskTier        `json:"sellerRiskTier"`
	DealQuality     DealQuality     `json:"dealQuality"`
	DealTags        []string        `json:"dealTags,omitempty"`
	IsBestDeal      bool            `json:"isBestDeal"`
}

// QueryUnderstanding echoes back how the request was interpreted.
type QueryUnderstanding struct {
	OriginalRequest     string `json:"originalRequest"`
	InferredBudgetRange string `json:"inferredBudgetRange,omitempty"`
	Notes               string `json:"notes,omitempty"`
}

// SearchResponse is the outbound API payload.
type SearchResponse struct {
	RequestID           string              `json:"requestId"`
	Action              Action              `json:"action"`
	Products            []RankedProduct     `json:"products"`
	Understanding       *QueryUnderstanding `json:"queryUnderstanding,omitempty"`
	QuickSummary        string              `json:"quickSummary,omitempty"`
	DealSummary         *DealSummary        `json:"dealSummary,omitempty"`
	ClarifyingQuestions []string            `json:"clarifyingQuestions,omitempty"`
	ReplyText           string              `json:"replyText,omitempty"`
	Region              string              `json:"region,omitempty"`
}
