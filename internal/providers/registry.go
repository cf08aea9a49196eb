// internal/providers/registry.go
package providers

import (
	"fmt"
	"net/http"
	"time"

	"shopper-agents/internal/common/config"
	"shopper-agents/internal/common/database"
	"shopper-agents/internal/common/logger"
)

// Registry maps region keys to their ordered provider sets.
type Registry struct {
	regions       map[string][]Provider
	defaultRegion string
}

// RegistryDeps carries the optional infrastructure providers may use.
// Nil ES skips the catalog provider; nil Redis skips result caching.
type RegistryDeps struct {
	HTTPClient *http.Client
	ES         *database.ElasticsearchClient
	Cache      *database.RedisClient
	Logger     logger.Logger
}

// NewRegistry builds every configured region's provider chain. Unknown
// provider names are a configuration error, not a silent skip.
func NewRegistry(cfg *config.Config, deps RegistryDeps) (*Registry, error) {
	registry := &Registry{
		regions:       make(map[string][]Provider, len(cfg.Regions.Available)),
		defaultRegion: cfg.Regions.Default,
	}

	proxyURL := cfg.Discovery.RenderProxyURL
	proxyKey := cfg.Discovery.RenderProxyKey
	cacheTTL := time.Duration(cfg.Discovery.CacheTTL) * time.Second

	for regionKey, regionCfg := range cfg.Regions.Available {
		chain := make([]Provider, 0, len(regionCfg.Providers)+1)

		for _, name := range regionCfg.Providers {
			provider, err := buildProvider(name, deps.HTTPClient, proxyURL, proxyKey)
			if err != nil {
				return nil, fmt.Errorf("region %s: %w", regionKey, err)
			}
			chain = append(chain, provider)
		}

		if cfg.Database.Elasticsearch.Enabled && deps.ES != nil {
			chain = append(chain, NewCatalogProvider(deps.ES.GetClient(), cfg.Database.Elasticsearch.Index, regionCfg.Currency))
		}

		if cfg.Discovery.CacheEnabled && deps.Cache != nil {
			for i, provider := range chain {
				chain[i] = NewCachedProvider(provider, deps.Cache, cacheTTL, deps.Logger)
			}
		}

		registry.regions[regionKey] = chain
	}

	return registry, nil
}

func buildProvider(name string, client *http.Client, proxyURL, proxyKey string) (Provider, error) {
	switch name {
	case "flipkart":
		return NewFlipkartProvider(client, proxyURL, proxyKey), nil
	case "amazon.in":
		return NewAmazonIndiaProvider(client, proxyURL, proxyKey), nil
	case "amazon.com":
		return NewAmazonUSProvider(client, proxyURL, proxyKey), nil
	case "walmart":
		return NewWalmartProvider(client, proxyURL, proxyKey), nil
	case "target":
		return NewTargetProvider(client, proxyURL, proxyKey), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

// ForRegion returns the provider chain for a region, falling back to
// the default region's chain for unknown keys.
func (r *Registry) ForRegion(region string) []Provider {
	if chain, ok := r.regions[region]; ok {
		return chain
	}
	return r.regions[r.defaultRegion]
}

// Regions lists the configured region keys.
func (r *Registry) Regions() []string {
	keys := make([]string, 0, len(r.regions))
	for key := range r.regions {
		keys = append(keys, key)
	}
	return keys
}
