// Package config defines all configuration for the betting assistant.
// Config is loaded from an optional YAML file (default: configs/config.yaml)
// with every key overridable via GPTM_* environment variables. The two API
// credentials are read from OPENAI_API_KEY and MANIFOLD_API_KEY.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultPath is used when GPT_MANIFOLD_CONFIG is unset.
const DefaultPath = "configs/config.yaml"

// Config is the top-level configuration. Maps directly to the YAML file structure.
type Config struct {
	DryRun   bool           `mapstructure:"dry_run"`
	Manifold ManifoldConfig `mapstructure:"manifold"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Session  SessionConfig  `mapstructure:"session"`
	Risk     RiskConfig     `mapstructure:"risk"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ManifoldConfig holds the Manifold Markets API endpoint and key.
// APIKey is sent as "Authorization: Key <APIKey>" on authenticated calls.
type ManifoldConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// OpenAIConfig holds the completion service credentials and the models the
// operator may choose from. BaseURL is empty for the public OpenAI API.
type OpenAIConfig struct {
	APIKey  string   `mapstructure:"api_key"`
	BaseURL string   `mapstructure:"base_url"`
	Models  []string `mapstructure:"models"`
}

// SessionConfig tunes the interactive session.
//
//   - MaxBetOptions: ceilings offered in the max-bet menu.
//   - PageLimit: markets per page in the recent-markets list.
//   - GroupPoolSize: groups sampled for the autonomous group pick.
//   - MarketPoolSize: markets sampled from the chosen group.
//   - MinGroupMarkets: groups with fewer markets are not offered to the model.
//   - LogDir: where autonomous session logs are written (empty = cwd).
type SessionConfig struct {
	MaxBetOptions   []int  `mapstructure:"max_bet_options"`
	PageLimit       int    `mapstructure:"page_limit"`
	GroupPoolSize   int    `mapstructure:"group_pool_size"`
	MarketPoolSize  int    `mapstructure:"market_pool_size"`
	MinGroupMarkets int    `mapstructure:"min_group_markets"`
	LogDir          string `mapstructure:"log_dir"`
}

// RiskConfig controls how the max-bet ceiling is applied. By default the
// ceiling only appears in the prompt; EnforceMaxBet clamps bets to it.
type RiskConfig struct {
	EnforceMaxBet   bool `mapstructure:"enforce_max_bet"`
	WarnOverBalance bool `mapstructure:"warn_over_balance"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dry_run", false)
	v.SetDefault("manifold.base_url", "https://api.manifold.markets/v0")
	v.SetDefault("manifold.timeout", 30*time.Second)
	v.SetDefault("openai.models", []string{"gpt-3.5-turbo", "gpt-4"})
	v.SetDefault("session.max_bet_options", []int{10, 20, 50, 100})
	v.SetDefault("session.page_limit", 100)
	v.SetDefault("session.group_pool_size", 100)
	v.SetDefault("session.market_pool_size", 100)
	v.SetDefault("session.min_group_markets", 10)
	v.SetDefault("session.log_dir", "")
	v.SetDefault("risk.enforce_max_bet", false)
	v.SetDefault("risk.warn_over_balance", true)
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")
}

// Path returns the config file path, honouring GPT_MANIFOLD_CONFIG.
func Path() string {
	if p := os.Getenv("GPT_MANIFOLD_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads config from a YAML file with env var overrides. A missing file
// is not an error: defaults plus environment are enough to run.
// Credentials use env vars: OPENAI_API_KEY, MANIFOLD_API_KEY.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("GPTM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Credentials always come from the environment
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}
	if key := os.Getenv("MANIFOLD_API_KEY"); key != "" {
		cfg.Manifold.APIKey = key
	}

	return &cfg, nil
}

// Validate checks all required fields and value ranges.
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	if c.Manifold.APIKey == "" {
		return fmt.Errorf("MANIFOLD_API_KEY environment variable not set")
	}
	if c.Manifold.BaseURL == "" {
		return fmt.Errorf("manifold.base_url is required")
	}
	if len(c.OpenAI.Models) == 0 {
		return fmt.Errorf("openai.models must list at least one model")
	}
	if len(c.Session.MaxBetOptions) == 0 {
		return fmt.Errorf("session.max_bet_options must list at least one amount")
	}
	for _, b := range c.Session.MaxBetOptions {
		if b <= 0 {
			return fmt.Errorf("session.max_bet_options must be > 0, got %d", b)
		}
	}
	if c.Session.PageLimit <= 0 || c.Session.PageLimit > 1000 {
		return fmt.Errorf("session.page_limit must be in 1..1000")
	}
	if c.Session.GroupPoolSize <= 0 {
		return fmt.Errorf("session.group_pool_size must be > 0")
	}
	if c.Session.MarketPoolSize <= 0 {
		return fmt.Errorf("session.market_pool_size must be > 0")
	}
	return nil
}
