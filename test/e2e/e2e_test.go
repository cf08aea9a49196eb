// test/e2e/e2e_test.go
//
// Wires the real server, pipeline and analysis stages together and
// drives them through the HTTP boundary. Only the two external
// surfaces are faked: the reasoning service and the marketplace
// providers.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopper-agents/internal/agents/pipeline"
	sellerreputation "shopper-agents/internal/agents/seller-reputation"
	"shopper-agents/internal/common/config"
	"shopper-agents/internal/common/llm"
	"shopper-agents/internal/common/logger"
	"shopper-agents/internal/models"
	"shopper-agents/internal/providers"
	"shopper-agents/internal/server"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

type fakeProvider struct {
	products []models.Product
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Search(context.Context, string, int, providers.RenderMode) ([]models.Product, error) {
	return f.products, nil
}

type fakeSource struct {
	chain []providers.Provider
}

func (f *fakeSource) ForRegion(string) []providers.Provider { return f.chain }

type fakeResolver struct{}

func (fakeResolver) Resolve(context.Context, string) string { return "IN" }

// reasoningServer answers the intent stage and fails everything else,
// so gift ideation and ranking exercise their deterministic fallbacks.
func reasoningServer(t *testing.T, intentDecision string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "shopping orchestrator") {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]interface{}{"content": intentDecision}},
			},
		})
	}))
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Address: ":0"},
		Discovery: config.DiscoveryConfig{
			BatchDeadline:      5000,
			MaxQueries:         2,
			MaxResultsPerQuery: 10,
		},
		Ranking: config.RankingConfig{
			MaxItemsForSemantic: 15,
			MaxResponseProducts: 12,
		},
		Regions: config.RegionsConfig{
			Default: "IN",
			Available: map[string]config.RegionConfig{
				"IN": {
					Currency:       "INR",
					CurrencySymbol: "₹",
					Marketplaces:   []string{"Flipkart", "Amazon India"},
				},
			},
		},
	}
}

func newStack(t *testing.T, intentDecision string, batch []models.Product) *httptest.Server {
	t.Helper()
	reasoning := reasoningServer(t, intentDecision)
	t.Cleanup(reasoning.Close)

	cfg := testConfig()
	pipe := pipeline.New(cfg, pipeline.Deps{
		Client: llm.NewClient(config.ReasoningConfig{
			BaseURL: reasoning.URL,
			Model:   "gpt-4o-mini",
			Timeout: 2000,
		}),
		Providers: &fakeSource{chain: []providers.Provider{&fakeProvider{products: batch}}},
		Table:     sellerreputation.DefaultTable(),
		Logger:    logger.NewNoOpLogger(),
	})

	srv := httptest.NewServer(server.New(cfg.Server, pipe, fakeResolver{}, logger.NewNoOpLogger()).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func search(t *testing.T, url string, req map[string]interface{}) *models.SearchResponse {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)

	resp, err := http.Post(url+"/api/search", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload models.SearchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return &payload
}

const searchDecision = `{
	"action": "search",
	"reply_text": "Searching for headphones now.",
	"understanding": {"refined_query": "wireless headphones", "product_category": "audio", "urgency": "medium"},
	"routing": {"needs_gift_ideation": false, "needs_research": false, "query_type": "direct_search", "complexity": "simple"}
}`

// Three-item batch spanning the analysis axes: a cheap, highly rated
// item on a trusted marketplace; a mid-price average item from an
// unknown seller; and an expensive unrated item that picks up a red
// flag and the too-high price warning.
func threeItemBatch() []models.Product {
	return []models.Product{
		{Source: "Amazon.com", Title: "Sony WH-CH520", URL: "https://a/1", Price: fptr(1000), Currency: "USD", Rating: fptr(4.8), RatingCount: iptr(320)},
		{Source: "AudioHut", Title: "Basic Wired Headset", URL: "https://a/2", Price: fptr(1500), Currency: "USD", Rating: fptr(3.0), RatingCount: iptr(40)},
		{Source: "Amazon.com", Title: "Studio Monitor Pro", URL: "https://a/3", Price: fptr(2000), Currency: "USD"},
	}
}

func TestSearchFlow_ThreeItemScenario(t *testing.T) {
	srv := newStack(t, searchDecision, threeItemBatch())

	resp := search(t, srv.URL, map[string]interface{}{"query": "wireless headphones"})

	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, models.ActionSearch, resp.Action)
	assert.Equal(t, "IN", resp.Region)
	require.Len(t, resp.Products, 3)

	// The cheap, highly rated, trusted item wins.
	first := resp.Products[0]
	assert.Equal(t, 1, first.Rank)
	assert.Equal(t, "Sony WH-CH520", first.Title)
	assert.Equal(t, models.RiskTierLow, first.RiskTier)
	assert.Equal(t, models.DealQualityExcellent, first.DealQuality)
	assert.True(t, first.IsBestDeal)

	// The unrated expensive item carries its trust penalty to the
	// bottom despite the trusted marketplace.
	last := resp.Products[2]
	assert.Equal(t, "Studio Monitor Pro", last.Title)
	assert.Less(t, last.OverallScore, resp.Products[1].OverallScore)

	// Scores strictly ordered, ranks contiguous.
	for i, product := range resp.Products {
		assert.Equal(t, i+1, product.Rank)
	}

	require.NotNil(t, resp.DealSummary)
	assert.Equal(t, 3, resp.DealSummary.TotalProducts)
	assert.NotEmpty(t, resp.QuickSummary)
	require.NotNil(t, resp.Understanding)
	assert.Equal(t, "wireless headphones", resp.Understanding.OriginalRequest)
}

func TestSearchFlow_StrictRiskCeiling(t *testing.T) {
	srv := newStack(t, searchDecision, threeItemBatch())

	resp := search(t, srv.URL, map[string]interface{}{
		"query":       "wireless headphones",
		"maxRiskTier": "low",
	})

	// The unknown-seller item is medium risk and drops out; both
	// trusted-marketplace items stay.
	require.Len(t, resp.Products, 2)
	assert.Equal(t, "Sony WH-CH520", resp.Products[0].Title)
	assert.Equal(t, "Studio Monitor Pro", resp.Products[1].Title)
}

func TestAskFlow(t *testing.T) {
	askDecision := `{
		"action": "ask",
		"clarifying_questions": ["What is your budget?"],
		"reply_text": "One question before I search.",
		"understanding": {"refined_query": "laptop"},
		"routing": {"needs_gift_ideation": false, "needs_research": false, "query_type": "direct_search", "complexity": "simple"}
	}`
	srv := newStack(t, askDecision, threeItemBatch())

	resp := search(t, srv.URL, map[string]interface{}{"query": "laptop"})

	assert.Equal(t, models.ActionAsk, resp.Action)
	assert.Empty(t, resp.Products)
	assert.Equal(t, []string{"What is your budget?"}, resp.ClarifyingQuestions)
	assert.Equal(t, "One question before I search.", resp.ReplyText)
}

func TestEmptyBatchFlow(t *testing.T) {
	srv := newStack(t, searchDecision, nil)

	resp := search(t, srv.URL, map[string]interface{}{"query": "wireless headphones"})

	assert.Equal(t, models.ActionSearch, resp.Action)
	assert.Empty(t, resp.Products)
	assert.Contains(t, resp.QuickSummary, "No products available")
}

func TestHealthz(t *testing.T) {
	srv := newStack(t, searchDecision, nil)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsExposed(t *testing.T) {
	srv := newStack(t, searchDecision, threeItemBatch())
	search(t, srv.URL, map[string]interface{}{"query": "wireless headphones"})

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "pipeline_requests_total")
	assert.Contains(t, string(body), "pipeline_stage_duration_seconds")
}
