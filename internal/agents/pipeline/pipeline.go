// internal/agents/pipeline/pipeline.go
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	analyzeintent "shopper-agents/internal/agents/analyze-intent"
	buildresponse "shopper-agents/internal/agents/build-response"
	dealdetection "shopper-agents/internal/agents/deal-detection"
	discoverproducts "shopper-agents/internal/agents/discover-products"
	giftideation "shopper-agents/internal/agents/gift-ideation"
	rankproducts "shopper-agents/internal/agents/rank-products"
	sellerreputation "shopper-agents/internal/agents/seller-reputation"
	"shopper-agents/internal/common/config"
	"shopper-agents/internal/common/llm"
	"shopper-agents/internal/common/logger"
	"shopper-agents/internal/common/metrics"
	"shopper-agents/internal/models"
	"shopper-agents/internal/providers"
	"shopper-agents/internal/storage"
)

const defaultMaxRiskTier = models.RiskTierMedium

// ProviderSource resolves the provider chain for a region.
type ProviderSource interface {
	ForRegion(region string) []providers.Provider
}

// Deps carries the shared infrastructure the pipeline stages need.
// SearchLog may be nil when persistence is disabled.
type Deps struct {
	Client    *llm.Client
	Providers ProviderSource
	Table     *sellerreputation.ReputationTable
	SearchLog *storage.SearchLog
	Logger    logger.Logger
}

// Pipeline sequences the stages for one shopping request. Stages
// degrade individually; the only terminal outcomes are the ask
// short-circuit and the empty-batch response.
type Pipeline struct {
	cfg       *config.Config
	intent    *analyzeintent.Handler
	gifts     *giftideation.Handler
	discovery *discoverproducts.Handler
	trust     *sellerreputation.Handler
	deals     *dealdetection.Handler
	ranking   *rankproducts.Handler
	response  *buildresponse.Handler
	source    ProviderSource
	searchLog *storage.SearchLog
	logger    logger.Logger
}

func New(cfg *config.Config, deps Deps) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		intent:    analyzeintent.NewHandler(deps.Client, deps.Logger),
		gifts:     giftideation.NewHandler(deps.Client, deps.Logger),
		discovery: discoverproducts.NewHandler(cfg.Discovery, deps.Logger),
		trust:     sellerreputation.NewHandler(deps.Table, deps.Logger),
		deals:     dealdetection.NewHandler(deps.Logger),
		ranking:   rankproducts.NewHandler(cfg.Ranking, deps.Client, deps.Logger),
		response:  buildresponse.NewHandler(cfg.Ranking, deps.Logger),
		source:    deps.Providers,
		searchLog: deps.SearchLog,
		logger:    deps.Logger,
	}
}

// Execute runs one request end to end. The returned response is never
// nil; an error means total construction failure, not a degraded run.
func (p *Pipeline) Execute(ctx context.Context, req *models.SearchRequest, region string) (*models.SearchResponse, error) {
	requestID := uuid.NewString()
	started := time.Now()

	regionKey, regionCfg := config.GetRegion(p.cfg, region)
	log := p.logger.WithFields(map[string]interface{}{
		"request_id": requestID,
		"region":     regionKey,
	})
	log.Info("Processing shopping request", map[string]interface{}{"query": req.Query})

	decision := p.interpretIntent(ctx, req, regionKey, regionCfg)

	if decision.Action == models.ActionAsk {
		metrics.PipelineRequests.WithLabelValues(string(models.ActionAsk), regionKey).Inc()
		log.Info("Asking clarifying questions", map[string]interface{}{
			"questions": len(decision.ClarifyingQuestions),
		})
		return p.response.Ask(requestID, regionKey, decision), nil
	}

	queries := p.planQueries(ctx, req.Query, decision, regionKey)

	items, err := p.discover(ctx, queries, regionKey)
	if err != nil {
		log.WithError(err).Warn("Discovery produced no items", nil)
		p.recordSearch(ctx, requestID, req, decision, regionKey, nil, started)
		metrics.PipelineRequests.WithLabelValues(string(models.ActionSearch), regionKey).Inc()
		return p.response.Empty(requestID, regionKey, req.Query, decision), nil
	}

	trust, deals := p.analyze(items)

	maxTier := req.MaxRiskTier
	if maxTier == "" {
		maxTier = defaultMaxRiskTier
	}
	filtered := sellerreputation.FilterByRisk(items, trust, deals, maxTier)
	if len(filtered.Items) == 0 {
		log.Warn("Risk filter removed every item", map[string]interface{}{
			"discovered": len(items),
			"max_tier":   string(maxTier),
		})
		p.recordSearch(ctx, requestID, req, decision, regionKey, nil, started)
		metrics.PipelineRequests.WithLabelValues(string(models.ActionSearch), regionKey).Inc()
		return p.response.Empty(requestID, regionKey, req.Query, decision), nil
	}

	summary := p.deals.Summary(filtered.Deals, filtered.Items)

	ranked := p.rank(ctx, filtered, decision.Intent, regionCfg.CurrencySymbol)

	resp := p.response.Execute(&buildresponse.Input{
		RequestID: requestID,
		Query:     req.Query,
		Region:    regionKey,
		Decision:  decision,
		Items:     filtered.Items,
		Trust:     filtered.Trust,
		Deals:     filtered.Deals,
		Ranking:   ranked,
		Summary:   &summary,
	})

	metrics.PipelineRequests.WithLabelValues(string(models.ActionSearch), regionKey).Inc()
	p.recordSearch(ctx, requestID, req, decision, regionKey, resp.Products, started)

	log.Info("Request complete", map[string]interface{}{
		"discovered": len(items),
		"kept":       len(filtered.Items),
		"returned":   len(resp.Products),
		"duration":   time.Since(started).String(),
	})
	return resp, nil
}

func (p *Pipeline) interpretIntent(ctx context.Context, req *models.SearchRequest, regionKey string, regionCfg config.RegionConfig) *models.IntentDecision {
	defer observe(analyzeintent.StageName)()
	return p.intent.Execute(ctx, &analyzeintent.Input{
		Query:               req.Query,
		Region:              regionKey,
		Currency:            regionCfg.Currency,
		CurrencySymbol:      regionCfg.CurrencySymbol,
		Marketplaces:        regionCfg.Marketplaces,
		ConversationHistory: req.ConversationHistory,
	})
}

// planQueries returns the search queries for discovery: the refined
// query, or the gift ideation output when routing asks for it.
func (p *Pipeline) planQueries(ctx context.Context, rawQuery string, decision *models.IntentDecision, regionKey string) []string {
	if !decision.Routing.NeedsGiftIdeation {
		return []string{decision.Intent.RefinedQuery}
	}
	defer observe(giftideation.StageName)()
	return p.gifts.Execute(ctx, rawQuery, decision.Intent, regionKey)
}

func (p *Pipeline) discover(ctx context.Context, queries []string, regionKey string) ([]models.Product, error) {
	defer observe(discoverproducts.StageName)()
	return p.discovery.Execute(ctx, queries, p.source.ForRegion(regionKey))
}

// analyze runs trust and deal analysis concurrently over the same
// immutable batch. Each writes only its own result map.
func (p *Pipeline) analyze(items []models.Product) (map[int]models.TrustAssessment, map[int]models.DealAssessment) {
	var (
		wg    sync.WaitGroup
		trust map[int]models.TrustAssessment
		deals map[int]models.DealAssessment
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer observe(sellerreputation.StageName)()
		trust = p.trust.Analyze(items)
	}()
	go func() {
		defer wg.Done()
		defer observe(dealdetection.StageName)()
		deals = p.deals.Analyze(items)
	}()
	wg.Wait()
	return trust, deals
}

func (p *Pipeline) rank(ctx context.Context, filtered sellerreputation.FilterResult, intent models.Intent, currencySymbol string) []models.RankedResult {
	defer observe(rankproducts.StageName)()
	return p.ranking.Execute(ctx, filtered.Items, intent, filtered.Trust, filtered.Deals, currencySymbol)
}

// recordSearch persists the search outcome best-effort; failures are
// already logged and counted inside the store.
func (p *Pipeline) recordSearch(ctx context.Context, requestID string, req *models.SearchRequest, decision *models.IntentDecision, regionKey string, products []models.RankedProduct, started time.Time) {
	if p.searchLog == nil {
		return
	}
	_ = p.searchLog.Record(ctx, storage.Entry{
		RequestID:    requestID,
		Query:        req.Query,
		RefinedQuery: decision.Intent.RefinedQuery,
		Region:       regionKey,
		Action:       string(decision.Action),
		QueryType:    string(decision.Routing.QueryType),
		ProductCount: len(products),
		DurationMS:   time.Since(started).Milliseconds(),
		TopResults:   products,
	})
}

func observe(stage string) func() {
	started := time.Now()
	return func() {
		metrics.PipelineStageDuration.WithLabelValues(stage).Observe(time.Since(started).Seconds())
	}
}
