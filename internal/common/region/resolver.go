// internal/common/region/resolver.go
package region

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shopper-agents/internal/common/database"
	"shopper-agents/internal/common/logger"
)

const (
	lookupBaseURL = "http://ip-api.com/json/"
	cacheTTL      = 24 * time.Hour
)

// countryRegions maps geolocation country names to region keys. Any
// country not listed resolves to the configured default region.
var countryRegions = map[string]string{
	"india":         "IN",
	"united states": "US",
}

// Resolver turns a caller IP into a region key. Lookups go through
// ip-api.com with a Redis cache in front; every failure path falls
// back to the default region so resolution can never break a request.
type Resolver struct {
	defaultRegion string
	baseURL       string
	httpClient    *http.Client
	cache         *database.RedisClient
	logger        logger.Logger
}

// NewResolver builds a resolver. cache may be nil when Redis is
// disabled; lookups then go straight to the geolocation service.
func NewResolver(defaultRegion string, cache *database.RedisClient, log logger.Logger) *Resolver {
	return &Resolver{
		defaultRegion: defaultRegion,
		baseURL:       lookupBaseURL,
		httpClient:    &http.Client{Timeout: 3 * time.Second},
		cache:         cache,
		logger:        log,
	}
}

// Resolve returns the region key for the given IP. Localhost and
// private addresses, lookup failures, and unknown countries all yield
// the default region.
func (r *Resolver) Resolve(ctx context.Context, ip string) string {
	ip = strings.TrimSpace(ip)
	if ip == "" || ip == "127.0.0.1" || ip == "::1" || ip == "localhost" {
		return r.defaultRegion
	}

	cacheKey := "region:ip:" + ip
	if r.cache != nil {
		if cached, err := r.cache.Get(ctx, cacheKey); err == nil && cached != "" {
			return cached
		}
	}

	region, err := r.lookup(ctx, ip)
	if err != nil {
		r.logger.WithError(err).WithFields(map[string]interface{}{
			"ip": ip,
		}).Debug("Region lookup failed, using default", nil)
		return r.defaultRegion
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, cacheKey, region, cacheTTL); err != nil {
			r.logger.WithError(err).Debug("Failed to cache region", nil)
		}
	}

	return region
}

func (r *Resolver) lookup(ctx context.Context, ip string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+ip, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geolocation status %d", resp.StatusCode)
	}

	var payload struct {
		Status  string `json:"status"`
		Country string `json:"country"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.Status != "success" {
		return "", fmt.Errorf("geolocation status %q", payload.Status)
	}

	if region, ok := countryRegions[strings.ToLower(payload.Country)]; ok {
		return region, nil
	}
	return r.defaultRegion, nil
}
