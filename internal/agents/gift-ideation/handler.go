// internal/agents/gift-ideation/handler.go
package giftideation

import (
	"context"
	"fmt"
	"strings"

	"shopper-agents/internal/common/llm"
	"shopper-agents/internal/common/logger"
	"shopper-agents/internal/models"
)

const StageName = "gift-ideation"

const maxIdeas = 4

const ideasSchema = `{
	"type": "array",
	"items": {"type": "string"},
	"minItems": 1
}`

type Handler struct {
	client *llm.Client
	logger logger.Logger
}

func NewHandler(client *llm.Client, log logger.Logger) *Handler {
	return &Handler{
		client: client,
		logger: log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

// Execute expands a vague gift request into concrete search phrases.
// Any failure or an empty idea list degrades to the refined query, so
// the result is always at least one usable query.
func (h *Handler) Execute(ctx context.Context, rawQuery string, intent models.Intent, region string) []string {
	raw, err := h.client.Complete(ctx, systemPrompt, []llm.Message{
		{Role: llm.RoleUser, Content: buildContext(rawQuery, intent, region)},
	})
	if err != nil {
		h.logger.WithError(err).Warn("Gift ideation failed, using refined query", map[string]interface{}{
			"query": rawQuery,
		})
		return []string{intent.RefinedQuery}
	}

	var ideas []string
	if err := llm.DecodeValidated(raw, ideasSchema, &ideas); err != nil {
		h.logger.WithError(err).Warn("Gift ideas unparsable, using refined query", map[string]interface{}{
			"query": rawQuery,
		})
		return []string{intent.RefinedQuery}
	}

	cleaned := make([]string, 0, len(ideas))
	for _, idea := range ideas {
		if idea = strings.TrimSpace(idea); idea != "" {
			cleaned = append(cleaned, idea)
		}
	}
	if len(cleaned) == 0 {
		return []string{intent.RefinedQuery}
	}
	if len(cleaned) > maxIdeas {
		cleaned = cleaned[:maxIdeas]
	}

	h.logger.Info("Generated gift ideas", map[string]interface{}{
		"count": len(cleaned),
	})
	return cleaned
}

const systemPrompt = `You are a gift ideation specialist. Generate specific product search queries for gift shopping.

Given the recipient profile and context, suggest 2-4 concrete product ideas that:
1. Match the recipient's interests and style
2. Fit within the budget
3. Are available in the specified region
4. Are thoughtful and meaningful
5. Can be easily found on e-commerce platforms

Return ONLY a JSON array of specific search query strings:
["specific product 1", "specific product 2", "specific product 3"]

Examples:
- Good: "Kindle Paperwhite e-reader", "Yoga mat premium quality", "Coffee subscription gift box"
- Bad: "books", "fitness stuff", "food items"

Make each query specific enough to find actual products.`

func buildContext(rawQuery string, intent models.Intent, region string) string {
	budget := "unlimited"
	if intent.BudgetMax != nil {
		budget = fmt.Sprintf("%.0f", *intent.BudgetMax)
	}
	budgetMin := "N/A"
	if intent.BudgetMin != nil {
		budgetMin = fmt.Sprintf("%.0f", *intent.BudgetMin)
	}

	return fmt.Sprintf(`User Request: %s

Occasion: %s
Budget: %s-%s
Key Interests: %s
Must Have: %s
Avoid: %s
Region: %s

Generate 2-4 specific product search queries for e-commerce.`,
		rawQuery,
		valueOr(intent.Occasion, "General gift"),
		budgetMin, budget,
		strings.Join(intent.NiceToHave, ", "),
		strings.Join(intent.MustHave, ", "),
		strings.Join(intent.Exclude, ", "),
		region,
	)
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
