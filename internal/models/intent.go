// internal/models/intent.go
package models

type QueryType string

const (
	QueryTypeDirectSearch    QueryType = "direct_search"
	QueryTypeGiftShopping    QueryType = "gift_shopping"
	QueryTypeProductResearch QueryType = "product_research"
	QueryTypeComparison      QueryType = "comparison"
)

type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Intent is the structured interpretation of a shopping request.
type Intent struct {
	RefinedQuery string   `json:"refinedQuery"`
	Category     string   `json:"category"`
	BudgetMin    *float64 `json:"budgetMin,omitempty"`
	BudgetMax    *float64 `json:"budgetMax,omitempty"`
	MustHave     []string `json:"mustHave,omitempty"`
	NiceToHave   []string `json:"niceToHave,omitempty"`
	Exclude      []string `json:"exclude,omitempty"`
	IsGift       bool     `json:"isGift"`
	Occasion     string   `json:"occasion,omitempty"`
	Urgency      Urgency  `json:"urgency"`
}

// RoutingDecision tells the pipeline which optional stages to run.
type RoutingDecision struct {
	NeedsGiftIdeation bool       `json:"needsGiftIdeation"`
	NeedsResearch     bool       `json:"needsResearch"`
	QueryType         QueryType  `json:"queryType"`
	Complexity        Complexity `json:"complexity"`
}

type Action string

const (
	ActionSearch Action = "search"
	ActionAsk    Action = "ask"
)

// IntentDecision is the full output of the intent interpreter.
type IntentDecision struct {
	Action              Action          `json:"action"`
	ClarifyingQuestions []string        `json:"clarifyingQuestions,omitempty"`
	Intent              Intent          `json:"intent"`
	Routing             RoutingDecision `json:"routing"`
	ReplyText           string          `json:"replyText,omitempty"`
	IsComparison        bool            `json:"isComparison"`
}

// ConversationMessage is one turn of prior dialogue passed back in by
// the caller.
type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
