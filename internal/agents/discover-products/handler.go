// internal/agents/discover-products/handler.go
package discoverproducts

import (
	"context"
	"fmt"
	"time"

	"shopper-agents/internal/common/config"
	apperrors "shopper-agents/internal/common/errors"
	"shopper-agents/internal/common/logger"
	"shopper-agents/internal/common/metrics"
	"shopper-agents/internal/models"
	"shopper-agents/internal/providers"
)

const StageName = "discover-products"

type Handler struct {
	cfg    config.DiscoveryConfig
	logger logger.Logger
}

func NewHandler(cfg config.DiscoveryConfig, log logger.Logger) *Handler {
	return &Handler{
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

type callResult struct {
	slot     int
	provider string
	items    []models.Product
	err      error
}

// Execute fans out every (query, provider) pair into its own goroutine
// under one batch-wide deadline. Late calls are abandoned and
// contribute nothing; per-call errors and panics are logged, never
// fatal. The surviving results concatenate deterministically in
// (query, provider) slot order, which fixes each item's
// discovery-order index. An empty batch is the only error case.
func (h *Handler) Execute(ctx context.Context, queries []string, chain []providers.Provider) ([]models.Product, error) {
	if h.cfg.MaxQueries > 0 && len(queries) > h.cfg.MaxQueries {
		queries = queries[:h.cfg.MaxQueries]
	}
	if len(queries) == 0 || len(chain) == 0 {
		return nil, apperrors.NewEmptyBatchError()
	}

	deadline := config.GetDuration(h.cfg.BatchDeadline)
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	total := len(queries) * len(chain)
	results := make(chan callResult, total)

	started := time.Now()
	for qi, query := range queries {
		for pi, provider := range chain {
			slot := qi*len(chain) + pi
			go h.invoke(ctx, slot, provider, query, results)
		}
	}

	slots := make([][]models.Product, total)
	received := 0

collect:
	for received < total {
		select {
		case result := <-results:
			received++
			if result.err != nil {
				metrics.DiscoveryProviderCalls.WithLabelValues(result.provider, "error").Inc()
				h.logger.WithError(result.err).Warn("Provider call failed", map[string]interface{}{
					"provider": result.provider,
				})
				continue
			}
			metrics.DiscoveryProviderCalls.WithLabelValues(result.provider, "ok").Inc()
			slots[result.slot] = result.items
		case <-ctx.Done():
			timeoutErr := apperrors.NewPipelineTimeoutError(total - received)
			metrics.PipelineStageFallbacks.WithLabelValues(StageName, string(apperrors.CodeOf(timeoutErr))).Inc()
			h.logger.WithError(timeoutErr).Warn("Discovery deadline reached, abandoning outstanding calls", map[string]interface{}{
				"received": received,
				"elapsed":  time.Since(started).String(),
			})
			break collect
		}
	}

	batch := make([]models.Product, 0, 32)
	for _, items := range slots {
		batch = append(batch, items...)
	}
	metrics.DiscoveryBatchSize.Observe(float64(len(batch)))

	if len(batch) == 0 {
		return nil, apperrors.NewEmptyBatchError()
	}

	h.logger.Info("Discovery batch assembled", map[string]interface{}{
		"items":   len(batch),
		"queries": len(queries),
		"elapsed": time.Since(started).String(),
	})
	return batch, nil
}

// invoke runs one provider call in isolation. A panicking provider is
// converted into an error result so it cannot take down the batch.
func (h *Handler) invoke(ctx context.Context, slot int, provider providers.Provider, query string, results chan<- callResult) {
	defer func() {
		if r := recover(); r != nil {
			results <- callResult{
				slot:     slot,
				provider: provider.Name(),
				err:      apperrors.NewDiscoveryProviderError(provider.Name(), fmt.Errorf("provider panic: %v", r)),
			}
		}
	}()

	items, err := provider.Search(ctx, query, h.cfg.MaxResultsPerQuery, providers.RenderJS)
	if err != nil {
		results <- callResult{
			slot:     slot,
			provider: provider.Name(),
			err:      apperrors.NewDiscoveryProviderError(provider.Name(), err),
		}
		return
	}

	results <- callResult{slot: slot, provider: provider.Name(), items: items}
}
