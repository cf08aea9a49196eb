// internal/agents/analyze-intent/handler.go
package analyzeintent

import (
	"context"
	"fmt"
	"strings"

	"shopper-agents/internal/common/llm"
	"shopper-agents/internal/common/logger"
	"shopper-agents/internal/models"
)

const StageName = "analyze-intent"

const fallbackReply = "Sorry, I had trouble understanding the details of your request, so I searched for it as written."

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

// Execute interprets the request into a routing decision. It cannot
// fail: any reasoning-service or parse error degrades to a direct
// search on the verbatim query text.
func (h *Handler) Execute(ctx context.Context, input *Input) *models.IntentDecision {
	raw, err := h.client.Complete(ctx, h.systemPrompt(input), h.buildMessages(input))
	if err != nil {
		h.logger.WithError(err).Warn("Intent analysis failed, falling back to direct search", map[string]interface{}{
			"query": input.Query,
		})
		return fallbackDecision(input.Query)
	}

	var decision llmDecision
	if err := llm.DecodeValidated(raw, decisionSchema, &decision); err != nil {
		h.logger.WithError(err).Warn("Intent decision unparsable, falling back to direct search", map[string]interface{}{
			"query": input.Query,
		})
		return fallbackDecision(input.Query)
	}

	return h.toDecision(&decision, input)
}

func (h *Handler) systemPrompt(input *Input) string {
	marketplaces := strings.Join(input.Marketplaces, ", ")
	return fmt.Sprintf(`You are a shopping orchestrator that analyzes queries and plans execution.

The shopper is in region %s, where the marketplaces are: %s. Prices use %s (%s).

Analyze the shopping request and extract:
1. Product category and specific requirements
2. Budget constraints (extract numbers, infer if not mentioned)
3. Key features they care about
4. Whether this is a gift or personal purchase
5. Urgency level
6. Query complexity (simple/moderate/complex)

Clarification policy: if the request is under-specified (a bare category with no
distinguishing constraint), set action to "ask" with at most 2 clarifying questions.
A request carrying any concrete constraint (budget, brand, feature, recipient)
goes straight to "search". Never ask more than 2 questions.

Also determine routing:
- needs_gift_ideation: true if query is vague or mentions a gift
- needs_research: true if asking "how to choose" or buying advice
- query_type: "direct_search" | "gift_shopping" | "product_research" | "comparison"

Return ONLY valid JSON:
{
  "action": "search|ask",
  "clarifying_questions": ["question1"],
  "reply_text": "short conversational reply to the shopper",
  "is_comparison": true/false,
  "understanding": {
    "refined_query": "optimized search query for e-commerce",
    "product_category": "category name",
    "budget_min": number or null,
    "budget_max": number or null,
    "must_have": ["feature1"],
    "nice_to_have": ["feature2"],
    "exclude": ["unwanted1"],
    "is_gift": true/false,
    "occasion": "string or null",
    "urgency": "low|medium|high"
  },
  "routing": {
    "needs_gift_ideation": true/false,
    "needs_research": true/false,
    "query_type": "direct_search|gift_shopping|product_research|comparison",
    "complexity": "simple|moderate|complex"
  }
}`, input.Region, marketplaces, input.Currency, input.CurrencySymbol)
}

func (h *Handler) buildMessages(input *Input) []llm.Message {
	messages := make([]llm.Message, 0, len(input.ConversationHistory)+1)
	for _, turn := range input.ConversationHistory {
		role := turn.Role
		if role != llm.RoleAssistant {
			role = llm.RoleUser
		}
		messages = append(messages, llm.Message{Role: role, Content: turn.Content})
	}
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: fmt.Sprintf("User query: %s\nRegion: %s\nCurrency: %s", input.Query, input.Region, input.Currency),
	})
	return messages
}

func (h *Handler) toDecision(d *llmDecision, input *Input) *models.IntentDecision {
	action := models.Action(d.Action)
	if action != models.ActionAsk {
		action = models.ActionSearch
	}

	questions := d.ClarifyingQuestions
	if len(questions) > 2 {
		questions = questions[:2]
	}
	if action == models.ActionAsk && len(questions) == 0 {
		// An ask with nothing to ask is useless; search instead.
		action = models.ActionSearch
	}

	refined := strings.TrimSpace(d.Understanding.RefinedQuery)
	if refined == "" {
		refined = input.Query
	}

	return &models.IntentDecision{
		Action:              action,
		ClarifyingQuestions: questions,
		ReplyText:           d.ReplyText,
		IsComparison:        d.IsComparison,
		Intent: models.Intent{
			RefinedQuery: refined,
			Category:     d.Understanding.ProductCategory,
			BudgetMin:    d.Understanding.BudgetMin,
			BudgetMax:    d.Understanding.BudgetMax,
			MustHave:     d.Understanding.MustHave,
			NiceToHave:   d.Understanding.NiceToHave,
			Exclude:      d.Understanding.Exclude,
			IsGift:       d.Understanding.IsGift,
			Occasion:     d.Understanding.Occasion,
			Urgency:      normalizeUrgency(d.Understanding.Urgency),
		},
		Routing: models.RoutingDecision{
			NeedsGiftIdeation: d.Routing.NeedsGiftIdeation,
			NeedsResearch:     d.Routing.NeedsResearch,
			QueryType:         normalizeQueryType(d.Routing.QueryType),
			Complexity:        normalizeComplexity(d.Routing.Complexity),
		},
	}
}

func fallbackDecision(query string) *models.IntentDecision {
	return &models.IntentDecision{
		Action:    models.ActionSearch,
		ReplyText: fallbackReply,
		Intent: models.Intent{
			RefinedQuery: query,
			Category:     "general",
			Urgency:      models.UrgencyMedium,
		},
		Routing: models.RoutingDecision{
			QueryType:  models.QueryTypeDirectSearch,
			Complexity: models.ComplexitySimple,
		},
	}
}

func normalizeUrgency(s string) models.Urgency {
	switch models.Urgency(s) {
	case models.UrgencyLow, models.UrgencyHigh:
		return models.Urgency(s)
	default:
		return models.UrgencyMedium
	}
}

func normalizeQueryType(s string) models.QueryType {
	switch models.QueryType(s) {
	case models.QueryTypeGiftShopping, models.QueryTypeProductResearch, models.QueryTypeComparison:
		return models.QueryType(s)
	default:
		return models.QueryTypeDirectSearch
	}
}

func normalizeComplexity(s string) models.Complexity {
	switch models.Complexity(s) {
	case models.ComplexityModerate, models.ComplexityComplex:
		return models.Complexity(s)
	default:
		return models.ComplexitySimple
	}
}
