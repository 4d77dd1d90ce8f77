package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Tavily     TavilyConfig     `yaml:"tavily" mapstructure:"tavily"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Search     SearchConfig     `yaml:"search" mapstructure:"search"`
	Verify     VerifyConfig     `yaml:"verify" mapstructure:"verify"`
	Dedup      DedupConfig      `yaml:"dedup" mapstructure:"dedup"`
	Score      ScoreConfig      `yaml:"score" mapstructure:"score"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`

	// WordlistsPath optionally points at a YAML file overriding the
	// compiled-in blocklists, allowlists and domain maps.
	WordlistsPath string `yaml:"wordlists_path" mapstructure:"wordlists_path"`
}

// TavilyConfig holds Tavily search API settings.
type TavilyConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// SearchConfig configures the source aggregator.
type SearchConfig struct {
	MaxResultsPerQuery int    `yaml:"max_results_per_query" mapstructure:"max_results_per_query"`
	SearchDepth        string `yaml:"search_depth" mapstructure:"search_depth"`
	TimeoutSecs        int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxConcurrent      int    `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// VerifyConfig configures the URL verifier.
type VerifyConfig struct {
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxConcurrent int     `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	UserAgent     string  `yaml:"user_agent" mapstructure:"user_agent"`
	RatePerHost   float64 `yaml:"rate_per_host" mapstructure:"rate_per_host"`
}

// DedupConfig configures the deduplication pass.
type DedupConfig struct {
	MaxLeadership int `yaml:"max_leadership" mapstructure:"max_leadership"`
	// YearTolerance is the reporting-window slack applied when grouping
	// regulatory events where one report lacks a specific date.
	YearTolerance int `yaml:"year_tolerance" mapstructure:"year_tolerance"`
}

// ScoreConfig configures the confidence scorer.
type ScoreConfig struct {
	VerifiedBonus       int `yaml:"verified_bonus" mapstructure:"verified_bonus"`
	UntypedPenalty      int `yaml:"untyped_penalty" mapstructure:"untyped_penalty"`
	NonReputablePenalty int `yaml:"non_reputable_penalty" mapstructure:"non_reputable_penalty"`
	UnverifiedThreshold int `yaml:"unverified_threshold" mapstructure:"unverified_threshold"`
}

// StoreConfig configures the report cache and usage ledger backend.
type StoreConfig struct {
	Driver         string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL    string `yaml:"database_url" mapstructure:"database_url"`
	Path           string `yaml:"path" mapstructure:"path"`
	ReportTTLHours int    `yaml:"report_ttl_hours" mapstructure:"report_ttl_hours"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("INTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Secrets default to empty so AutomaticEnv can see their keys;
	// viper only resolves env vars for keys it already knows about.
	v.SetDefault("tavily.key", "")
	v.SetDefault("perplexity.key", "")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("store.database_url", "")
	v.SetDefault("wordlists_path", "")
	v.SetDefault("tavily.base_url", "https://api.tavily.com")
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("search.max_results_per_query", 10)
	v.SetDefault("search.search_depth", "basic")
	v.SetDefault("search.timeout_secs", 15)
	v.SetDefault("search.max_concurrent", 8)
	v.SetDefault("verify.timeout_secs", 8)
	v.SetDefault("verify.max_concurrent", 10)
	v.SetDefault("verify.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("verify.rate_per_host", 2)
	v.SetDefault("dedup.max_leadership", 6)
	v.SetDefault("dedup.year_tolerance", 1)
	v.SetDefault("score.verified_bonus", 15)
	v.SetDefault("score.untyped_penalty", 10)
	v.SetDefault("score.non_reputable_penalty", 10)
	v.SetDefault("score.unverified_threshold", 75)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "intel.db")
	v.SetDefault("store.report_ttl_hours", 24)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
