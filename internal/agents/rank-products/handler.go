// internal/agents/rank-products/handler.go
package rankproducts

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"shopper-agents/internal/common/config"
	apperrors "shopper-agents/internal/common/errors"
	"shopper-agents/internal/common/llm"
	"shopper-agents/internal/common/logger"
	"shopper-agents/internal/common/metrics"
	"shopper-agents/internal/models"
)

const StageName = "rank-products"

const maxTitleLen = 100

type Handler struct {
	cfg    config.RankingConfig
	client *llm.Client
	logger logger.Logger
}

func NewHandler(cfg config.RankingConfig, client *llm.Client, log logger.Logger) *Handler {
	return &Handler{
		cfg:    cfg,
		client: client,
		logger: log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

// Execute produces the final ordering. The semantic base ranking from
// the reasoning service is optional; on any failure the deterministic
// scorer takes over. Either base then receives the same boost pass,
// so the adjustment arithmetic is identical on both paths.
func (h *Handler) Execute(
	ctx context.Context,
	items []models.Product,
	intent models.Intent,
	trust map[int]models.TrustAssessment,
	deals map[int]models.DealAssessment,
	currencySymbol string,
) []models.RankedResult {
	if len(items) == 0 {
		return nil
	}

	capped := items
	if h.cfg.MaxItemsForSemantic > 0 && len(capped) > h.cfg.MaxItemsForSemantic {
		capped = capped[:h.cfg.MaxItemsForSemantic]
	}

	summaries := buildSummaries(capped, trust, deals)

	entries, err := h.semanticRanking(ctx, summaries, intent, currencySymbol)
	if err != nil {
		code := apperrors.CodeOf(err)
		metrics.PipelineStageFallbacks.WithLabelValues(StageName, string(code)).Inc()
		h.logger.WithError(err).Warn("Semantic ranking unavailable, scoring deterministically", map[string]interface{}{
			"category": apperrors.GetErrorCategory(code),
		})
		entries = deterministicRanking(summaries)
	}

	entries = applyBoosts(entries, summaries)

	results := make([]models.RankedResult, 0, len(entries))
	for _, entry := range entries {
		results = append(results, models.RankedResult{
			ItemIndex:       entry.ProductIndex,
			Rank:            entry.Rank,
			OverallScore:    entry.OverallScore,
			MatchScore:      entry.MatchScore,
			ValueAssessment: normalizeValueAssessment(entry.ValueAssessment),
			Reasoning:       entry.Reasoning,
			Recommendation:  entry.Recommendation,
			Highlights:      buildHighlights(capped[entry.ProductIndex], trust[entry.ProductIndex], deals[entry.ProductIndex]),
		})
	}
	return results
}

func buildSummaries(items []models.Product, trust map[int]models.TrustAssessment, deals map[int]models.DealAssessment) []itemSummary {
	summaries := make([]itemSummary, len(items))
	for idx, item := range items {
		title := item.Title
		if len(title) > maxTitleLen {
			title = title[:maxTitleLen]
		}

		trustScore, riskTier := 50.0, string(models.RiskTierMedium)
		hasWarnings := false
		if assessment, ok := trust[idx]; ok {
			trustScore = assessment.TrustScore
			riskTier = string(assessment.RiskTier)
			hasWarnings = len(assessment.RedFlags) > 0
		}

		dealQuality, valueScore := string(models.DealQualityAverage), 50.0
		var tags []string
		isLowest := false
		if assessment, ok := deals[idx]; ok {
			dealQuality = string(assessment.DealQuality)
			valueScore = assessment.ValueScore
			tags = assessment.Tags
			isLowest = assessment.IsLowestPrice
		}

		summaries[idx] = itemSummary{
			Index:         idx,
			Title:         title,
			Price:         item.PriceValue(),
			Rating:        item.RatingValue(),
			Source:        item.Source,
			TrustScore:    trustScore,
			RiskTier:      riskTier,
			DealQuality:   dealQuality,
			ValueScore:    valueScore,
			IsLowestPrice: isLowest,
			DealTags:      tags,
			HasWarnings:   hasWarnings,
		}
	}
	return summaries
}

func (h *Handler) semanticRanking(ctx context.Context, summaries []itemSummary, intent models.Intent, currencySymbol string) ([]rankingEntry, error) {
	raw, err := h.client.Complete(ctx, rankingSystemPrompt, []llm.Message{
		{Role: llm.RoleUser, Content: buildRankingContext(summaries, intent, currencySymbol)},
	})
	if err != nil {
		return nil, err
	}

	var entries []rankingEntry
	if err := llm.DecodeValidated(raw, rankingSchema, &entries); err != nil {
		return nil, err
	}

	// Drop entries pointing outside the batch and duplicates; a base
	// ranking that loses every entry is a failure, not an empty order.
	seen := make(map[int]bool, len(entries))
	valid := entries[:0]
	for _, entry := range entries {
		if entry.ProductIndex < 0 || entry.ProductIndex >= len(summaries) || seen[entry.ProductIndex] {
			continue
		}
		seen[entry.ProductIndex] = true
		valid = append(valid, entry)
	}
	if len(valid) == 0 {
		return nil, apperrors.NewReasoningParseError("ranking referenced no valid item indices")
	}
	return valid, nil
}

// deterministicRanking scores items without the reasoning service:
// trust, value, rating and a price factor, each weighted. The price
// factor is clamped to [0,100] before weighting so expensive batches
// cannot push scores negative.
func deterministicRanking(summaries []itemSummary) []rankingEntry {
	entries := make([]rankingEntry, 0, len(summaries))
	for _, summary := range summaries {
		priceFactor := clampScore(100 - summary.Price/50)

		score := summary.TrustScore*0.3 +
			summary.ValueScore*0.3 +
			(summary.Rating/5*100)*0.2 +
			priceFactor*0.2

		entries = append(entries, rankingEntry{
			ProductIndex:    summary.Index,
			OverallScore:    score,
			MatchScore:      50,
			ValueAssessment: string(models.ValueAverage),
			Reasoning:       "Automatically scored based on multiple factors",
			Recommendation:  "Review product details before purchase",
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].OverallScore > entries[j].OverallScore
	})
	return entries
}

// applyBoosts adjusts each base score with the deterministic
// boost/penalty table, clamps, re-sorts descending (stable, so exact
// ties keep their relative order) and reassigns ranks. It is a pure
// function of its inputs.
func applyBoosts(entries []rankingEntry, summaries []itemSummary) []rankingEntry {
	adjusted := make([]rankingEntry, 0, len(entries))
	for _, entry := range entries {
		summary := summaries[entry.ProductIndex]
		score := entry.OverallScore

		if summary.IsLowestPrice {
			score += 5
		}

		if summary.TrustScore >= 85 {
			score += 5
		} else if summary.RiskTier == string(models.RiskTierHigh) {
			score -= 15
		}

		switch summary.DealQuality {
		case string(models.DealQualityExcellent):
			score += 8
		case string(models.DealQualityGood):
			score += 4
		}

		if summary.HasWarnings {
			score -= 10
		}

		entry.OverallScore = clampScore(score)
		adjusted = append(adjusted, entry)
	}

	sort.SliceStable(adjusted, func(i, j int) bool {
		return adjusted[i].OverallScore > adjusted[j].OverallScore
	})
	for i := range adjusted {
		adjusted[i].Rank = i + 1
	}
	return adjusted
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func normalizeValueAssessment(s string) models.ValueAssessment {
	switch models.ValueAssessment(s) {
	case models.ValuePoor, models.ValueGood, models.ValueExcellent:
		return models.ValueAssessment(s)
	default:
		return models.ValueAverage
	}
}

const rankingSystemPrompt = `You are an expert shopping advisor. Rank these products based on user requirements.

For each product, consider:
1. How well it matches user requirements (features, category)
2. Price vs value (deal quality, value score)
3. Seller trustworthiness (trust score, risk level)
4. Product quality (ratings)
5. Overall value proposition

Return ONLY a JSON array ranked from best to worst:
[
  {
    "product_index": original_index,
    "rank": new_rank_1_to_N,
    "overall_score": 0-100,
    "match_score": 0-100,
    "value_assessment": "excellent|good|average|poor",
    "reasoning": "concise 1-2 sentence explanation",
    "recommendation": "brief actionable recommendation"
  }
]

Prioritize:
- Seller trust and safety (avoid high-risk sellers)
- Value for money (good ratings + fair price)
- Match with user requirements
- Deal quality (best deals rank higher)`

func buildRankingContext(summaries []itemSummary, intent models.Intent, currencySymbol string) string {
	budgetMin, budgetMax := "N/A", "unlimited"
	if intent.BudgetMin != nil {
		budgetMin = fmt.Sprintf("%.0f", *intent.BudgetMin)
	}
	if intent.BudgetMax != nil {
		budgetMax = fmt.Sprintf("%.0f", *intent.BudgetMax)
	}

	encoded, _ := json.MarshalIndent(summaries, "", "  ")

	return fmt.Sprintf(`User Requirements:
- Category: %s
- Budget: %s%s - %s%s
- Must Have: %s
- Avoid: %s
- Is Gift: %t
- Urgency: %s

Products to rank:
%s

Rank these products based on overall value, safety, and user requirements.`,
		valueOr(intent.Category, "general"),
		currencySymbol, budgetMin, currencySymbol, budgetMax,
		strings.Join(intent.MustHave, ", "),
		strings.Join(intent.Exclude, ", "),
		intent.IsGift,
		intent.Urgency,
		string(encoded),
	)
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
