// internal/agents/analyze-intent/models.go
package analyzeintent

import "shopper-agents/internal/models"

type Input struct {
	Query               string                       `json:"query"`
	Region              string                       `json:"region"`
	Currency            string                       `json:"currency"`
	CurrencySymbol      string                       `json:"currencySymbol"`
	Marketplaces        []string                     `json:"marketplaces"`
	ConversationHistory []models.ConversationMessage `json:"conversationHistory,omitempty"`
}

// llmDecision mirrors the JSON shape the reasoning service is asked
// for; it is mapped onto models.IntentDecision after validation.
type llmDecision struct {
	Action              string   `json:"action"`
	ClarifyingQuestions []string `json:"clarifying_questions"`
	ReplyText           string   `json:"reply_text"`
	IsComparison        bool     `json:"is_comparison"`
	Understanding       struct {
		RefinedQuery    string   `json:"refined_query"`
		ProductCategory string   `json:"product_category"`
		BudgetMin       *float64 `json:"budget_min"`
		BudgetMax       *float64 `json:"budget_max"`
		MustHave        []string `json:"must_have"`
		NiceToHave      []string `json:"nice_to_have"`
		Exclude         []string `json:"exclude"`
		IsGift          bool     `json:"is_gift"`
		Occasion        string   `json:"occasion"`
		Urgency         string   `json:"urgency"`
	} `json:"understanding"`
	Routing struct {
		NeedsGiftIdeation bool   `json:"needs_gift_ideation"`
		NeedsResearch     bool   `json:"needs_research"`
		QueryType         string `json:"query_type"`
		Complexity        string `json:"complexity"`
	} `json:"routing"`
}

const decisionSchema = `{
	"type": "object",
	"properties": {
		"action": {"type": "string", "enum": ["search", "ask"]},
		"clarifying_questions": {"type": "array", "items": {"type": "string"}},
		"reply_text": {"type": "string"},
		"is_comparison": {"type": "boolean"},
		"understanding": {
			"type": "object",
			"properties": {
				"refined_query": {"type": "string"}
			},
			"required": ["refined_query"]
		},
		"routing": {
			"type": "object",
			"properties": {
				"needs_gift_ideation": {"type": "boolean"},
				"query_type": {"type": "string"},
				"complexity": {"type": "string"}
			}
		}
	},
	"required": ["action", "understanding"]
}`
