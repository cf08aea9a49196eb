// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Reasoning ReasoningConfig `mapstructure:"reasoning"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Ranking   RankingConfig   `mapstructure:"ranking"`
	Regions   RegionsConfig   `mapstructure:"regions"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address        string `mapstructure:"address"`
	MetricsAddress string `mapstructure:"metrics_address"`
	ReadTimeout    int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout   int    `mapstructure:"write_timeout"` // milliseconds
}

// ReasoningConfig holds settings for the external reasoning service.
type ReasoningConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
	MaxRetries  int     `mapstructure:"max_retries"`
}

// DiscoveryConfig bounds the provider fan-out phase.
type DiscoveryConfig struct {
	BatchDeadline      int  `mapstructure:"batch_deadline"` // milliseconds, whole fan-out
	MaxQueries         int  `mapstructure:"max_queries"`
	MaxResultsPerQuery int  `mapstructure:"max_results_per_query"`
	CacheEnabled       bool `mapstructure:"cache_enabled"`
	CacheTTL           int  `mapstructure:"cache_ttl"` // seconds

	// Optional JS-rendering proxy for marketplace pages.
	RenderProxyURL string `mapstructure:"render_proxy_url"`
	RenderProxyKey string `mapstructure:"render_proxy_key"`
}

// RankingConfig bounds the fusion phase.
type RankingConfig struct {
	MaxItemsForSemantic int `mapstructure:"max_items_for_semantic"`
	MaxResponseProducts int `mapstructure:"max_response_products"`
}

// RegionConfig describes one supported region.
type RegionConfig struct {
	Providers      []string `mapstructure:"providers"`
	Currency       string   `mapstructure:"currency"`
	CurrencySymbol string   `mapstructure:"currency_symbol"`
	Marketplaces   []string `mapstructure:"marketplaces"`
}

// RegionsConfig maps region keys to their provider sets.
type RegionsConfig struct {
	Default        string                  `mapstructure:"default"`
	ReputationPath string                  `mapstructure:"reputation_path"`
	Available      map[string]RegionConfig `mapstructure:"available"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
	Enabled        bool   `mapstructure:"enabled"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
	Enabled   bool     `mapstructure:"enabled"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
