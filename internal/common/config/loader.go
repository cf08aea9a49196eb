// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like REASONING_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored if not found
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries .env in the working directory and up toward the
// module root so tests in nested packages pick it up too.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders left in YAML values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig fills secrets from plain environment variables
// when the YAML left them empty.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Reasoning.APIKey == "" {
		if val := os.Getenv("REASONING_API_KEY"); val != "" {
			cfg.Reasoning.APIKey = val
		}
	}
	if cfg.Reasoning.BaseURL == "" {
		if val := os.Getenv("REASONING_BASE_URL"); val != "" {
			cfg.Reasoning.BaseURL = val
		}
	}

	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.MetricsAddress == "" {
		cfg.Server.MetricsAddress = ":9090"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		// Responses wait on the discovery deadline, so this must
		// exceed discovery.batch_deadline.
		cfg.Server.WriteTimeout = 150000
	}

	if cfg.Reasoning.Model == "" {
		cfg.Reasoning.Model = "gpt-4o-mini"
	}
	if cfg.Reasoning.Temperature == 0 {
		cfg.Reasoning.Temperature = 0.2
	}
	if cfg.Reasoning.Timeout == 0 {
		cfg.Reasoning.Timeout = 30000
	}
	if cfg.Reasoning.MaxRetries == 0 {
		cfg.Reasoning.MaxRetries = 2
	}

	if cfg.Discovery.BatchDeadline == 0 {
		cfg.Discovery.BatchDeadline = 90000
	}
	if cfg.Discovery.MaxQueries == 0 {
		cfg.Discovery.MaxQueries = 2
	}
	if cfg.Discovery.MaxResultsPerQuery == 0 {
		cfg.Discovery.MaxResultsPerQuery = 10
	}
	if cfg.Discovery.CacheTTL == 0 {
		cfg.Discovery.CacheTTL = 600
	}

	if cfg.Ranking.MaxItemsForSemantic == 0 {
		cfg.Ranking.MaxItemsForSemantic = 15
	}
	if cfg.Ranking.MaxResponseProducts == 0 {
		cfg.Ranking.MaxResponseProducts = 12
	}

	if cfg.Regions.Default == "" {
		cfg.Regions.Default = "IN"
	}
	if cfg.Regions.Available == nil {
		cfg.Regions.Available = map[string]RegionConfig{
			"IN": {
				Providers:      []string{"flipkart", "amazon.in"},
				Currency:       "INR",
				CurrencySymbol: "₹",
			},
			"US": {
				Providers:      []string{"walmart", "target", "amazon.com"},
				Currency:       "USD",
				CurrencySymbol: "$",
			},
		}
	}

	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.Index == "" {
		cfg.Database.Elasticsearch.Index = "catalog-products"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Reasoning.BaseURL == "" {
		return fmt.Errorf("reasoning.base_url is required")
	}

	if cfg.Discovery.BatchDeadline < 1000 {
		return fmt.Errorf("discovery.batch_deadline must be at least 1000ms")
	}

	if _, ok := cfg.Regions.Available[cfg.Regions.Default]; !ok {
		return fmt.Errorf("regions.default %q has no entry in regions.available", cfg.Regions.Default)
	}

	if cfg.Database.Postgres.Enabled {
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required when postgres is enabled")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required when postgres is enabled")
		}
	}

	if cfg.Database.Redis.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when redis is enabled")
	}

	if cfg.Database.Elasticsearch.Enabled && len(cfg.Database.Elasticsearch.Addresses) == 0 {
		return fmt.Errorf("database.elasticsearch.addresses is required when elasticsearch is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetRegion returns the region entry for key, falling back to the
// default region when the key is unknown.
func GetRegion(cfg *Config, key string) (string, RegionConfig) {
	if rc, ok := cfg.Regions.Available[key]; ok {
		return key, rc
	}
	return cfg.Regions.Default, cfg.Regions.Available[cfg.Regions.Default]
}
