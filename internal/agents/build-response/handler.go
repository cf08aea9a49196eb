// internal/agents/build-response/handler.go
package buildresponse

import (
	"fmt"
	"strings"

	"shopper-agents/internal/common/config"
	apperrors "shopper-agents/internal/common/errors"
	"shopper-agents/internal/common/logger"
	"shopper-agents/internal/models"
)

const StageName = "build-response"

const (
	defaultMaxProducts = 12
	quickSummaryCount  = 3
	quickTitleLen      = 60
)

// Input carries everything the assembler needs from the earlier
// stages. All maps are keyed by the post-filter item index, matching
// the ranking's ItemIndex values.
type Input struct {
	RequestID string
	Query     string
	Region    string
	Decision  *models.IntentDecision
	Items     []models.Product
	Trust     map[int]models.TrustAssessment
	Deals     map[int]models.DealAssessment
	Ranking   []models.RankedResult
	Summary   *models.DealSummary
}

type Handler struct {
	maxProducts int
	logger      logger.Logger
}

func NewHandler(cfg config.RankingConfig, log logger.Logger) *Handler {
	max := cfg.MaxResponseProducts
	if max <= 0 {
		max = defaultMaxProducts
	}
	return &Handler{
		maxProducts: max,
		logger:      log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

// Execute assembles the outbound payload for a completed search.
func (h *Handler) Execute(input *Input) *models.SearchResponse {
	ranking := input.Ranking
	if len(ranking) > h.maxProducts {
		ranking = ranking[:h.maxProducts]
	}

	products := make([]models.RankedProduct, 0, len(ranking))
	for _, entry := range ranking {
		if entry.ItemIndex < 0 || entry.ItemIndex >= len(input.Items) {
			err := apperrors.NewAnalysisDataError("itemIndex", fmt.Errorf("index %d outside batch of %d", entry.ItemIndex, len(input.Items)))
			h.logger.WithError(err).Warn("Dropping ranked entry", map[string]interface{}{
				"request_id": input.RequestID,
			})
			continue
		}
		products = append(products, flatten(input.Items[entry.ItemIndex], entry, input.Trust[entry.ItemIndex], input.Deals[entry.ItemIndex]))
	}

	h.logger.WithFields(map[string]interface{}{
		"request_id": input.RequestID,
		"products":   len(products),
	}).Debug("Assembled search response", nil)

	return &models.SearchResponse{
		RequestID:     input.RequestID,
		Action:        models.ActionSearch,
		Products:      products,
		Understanding: understanding(input.Query, input.Decision, len(products)),
		QuickSummary:  quickSummary(ranking, input.Items),
		DealSummary:   input.Summary,
		ReplyText:     replyText(input.Decision),
		Region:        input.Region,
	}
}

// Ask builds the short-circuit response when the interpreter decided
// to clarify instead of searching.
func (h *Handler) Ask(requestID, region string, decision *models.IntentDecision) *models.SearchResponse {
	return &models.SearchResponse{
		RequestID:           requestID,
		Action:              models.ActionAsk,
		Products:            []models.RankedProduct{},
		ClarifyingQuestions: decision.ClarifyingQuestions,
		ReplyText:           decision.ReplyText,
		Region:              region,
	}
}

// Empty is the terminal response when discovery produced nothing.
func (h *Handler) Empty(requestID, region, query string, decision *models.IntentDecision) *models.SearchResponse {
	return &models.SearchResponse{
		RequestID: requestID,
		Action:    models.ActionSearch,
		Products:  []models.RankedProduct{},
		Understanding: &models.QueryUnderstanding{
			OriginalRequest: query,
			Notes:           "No products found. Try refining your search query.",
		},
		QuickSummary: "No products available. Please try a different search term or location.",
		ReplyText:    replyText(decision),
		Region:       region,
	}
}

func flatten(item models.Product, entry models.RankedResult, trust models.TrustAssessment, deal models.DealAssessment) models.RankedProduct {
	riskTier := trust.RiskTier
	if riskTier == "" {
		riskTier = models.RiskTierMedium
	}
	dealQuality := deal.DealQuality
	if dealQuality == "" {
		dealQuality = models.DealQualityAverage
	}

	return models.RankedProduct{
		Title:           item.Title,
		Price:           item.PriceValue(),
		Currency:        item.Currency,
		URL:             item.URL,
		Source:          item.Source,
		Rating:          item.Rating,
		ThumbnailURL:    item.ThumbnailURL,
		Rank:            entry.Rank,
		OverallScore:    entry.OverallScore,
		Reasoning:       entry.Reasoning,
		ValueAssessment: entry.ValueAssessment,
		Recommendation:  entry.Recommendation,
		Highlights:      entry.Highlights,
		TrustScore:      trust.TrustScore,
		RiskTier:        riskTier,
		DealQuality:     dealQuality,
		DealTags:        deal.Tags,
		IsBestDeal:      deal.IsBestDeal,
	}
}

// quickSummary lists the top three picks, one numbered line each.
func quickSummary(ranking []models.RankedResult, items []models.Product) string {
	if len(ranking) == 0 {
		return "No products found matching criteria."
	}

	top := ranking
	if len(top) > quickSummaryCount {
		top = top[:quickSummaryCount]
	}

	lines := make([]string, 0, len(top))
	for i, entry := range top {
		if entry.ItemIndex < 0 || entry.ItemIndex >= len(items) {
			continue
		}
		title := items[entry.ItemIndex].Title
		if len(title) > quickTitleLen {
			title = title[:quickTitleLen]
		}
		line := fmt.Sprintf("%d. %s...", i+1, title)
		if entry.Reasoning != "" {
			line += " - " + entry.Reasoning
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func understanding(query string, decision *models.IntentDecision, count int) *models.QueryUnderstanding {
	if decision == nil {
		return &models.QueryUnderstanding{OriginalRequest: query}
	}
	intent := decision.Intent

	category := intent.Category
	if category == "" {
		category = "products"
	}

	notes := fmt.Sprintf("Found %d %s", count, category)
	if intent.IsGift {
		notes += " (gift recommendations)"
	}
	notes += "."
	if intent.BudgetMin != nil || intent.BudgetMax != nil {
		notes += fmt.Sprintf(" Budget: %s.", budgetRange(intent))
	}
	notes += " Analyzed for seller reputation, deals, and value."

	return &models.QueryUnderstanding{
		OriginalRequest:     query,
		InferredBudgetRange: budgetRange(intent),
		Notes:               notes,
	}
}

func budgetRange(intent models.Intent) string {
	if intent.BudgetMin == nil && intent.BudgetMax == nil {
		return ""
	}
	min, max := "0", "unlimited"
	if intent.BudgetMin != nil {
		min = fmt.Sprintf("%.0f", *intent.BudgetMin)
	}
	if intent.BudgetMax != nil {
		max = fmt.Sprintf("%.0f", *intent.BudgetMax)
	}
	return min + "-" + max
}

func replyText(decision *models.IntentDecision) string {
	if decision == nil {
		return ""
	}
	return decision.ReplyText
}
