package store

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"stock-analysis-bot/internal/signal"
	"stock-analysis-bot/internal/ta"
)

type Config struct {
	DataSource string `yaml:"data_source"` // YAHOO, KITE or STATIC
	Exchange   string `yaml:"exchange"`
	Price      struct {
		Period         string `yaml:"period"`
		Interval       string `yaml:"interval"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"price"`
	Kite struct {
		APIKeyEnv      string `yaml:"api_key_env"`
		AccessTokenEnv string `yaml:"access_token_env"`
	} `yaml:"kite"`
	Indicators ta.Config         `yaml:"indicators"`
	Signals    signal.Thresholds `yaml:"signals"`
	LLM        struct {
		Provider    string   `yaml:"provider"` // OPENROUTER or NOOP
		BaseURL     string   `yaml:"base_url"`
		APIKeyEnv   string   `yaml:"api_key_env"`
		Model       string   `yaml:"model"`
		Models      []string `yaml:"models"`
		MaxTokens   int      `yaml:"max_tokens"`
		Temperature float32  `yaml:"temperature"`
		System      string   `yaml:"system"`
	} `yaml:"llm"`
	Sentiment struct {
		Source       string `yaml:"source"` // STATIC, SCRAPE or NONE
		MaxHeadlines int    `yaml:"max_headlines"`
		CacheMinutes int    `yaml:"cache_minutes"`
	} `yaml:"sentiment"`
	Dividends struct {
		URL            string `yaml:"url"`
		Limit          int    `yaml:"limit"`
		CandidatePool  int    `yaml:"candidate_pool"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"dividends"`
	Journal struct {
		Backend        string `yaml:"backend"` // NONE, JSONL or SQLITE
		Dir            string `yaml:"dir"`
		SQLitePath     string `yaml:"sqlite_path"`
		CompressAfterD int    `yaml:"compress_after_days"`
	} `yaml:"journal"`
	Watch struct {
		Symbols  []string `yaml:"symbols"`
		Schedule string   `yaml:"schedule"`
	} `yaml:"watch"`
	Report struct {
		Currency string `yaml:"currency"`
	} `yaml:"report"`
}

// Default returns a configuration usable without a config file.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.DataSource == "" {
		c.DataSource = "YAHOO"
	}
	if c.Exchange == "" {
		c.Exchange = "NSE"
	}
	if c.Price.Period == "" {
		c.Price.Period = "6mo"
	}
	if c.Price.Interval == "" {
		c.Price.Interval = "1d"
	}
	if c.Price.TimeoutSeconds == 0 {
		c.Price.TimeoutSeconds = 15
	}
	if c.Kite.APIKeyEnv == "" {
		c.Kite.APIKeyEnv = "KITE_API_KEY"
	}
	if c.Kite.AccessTokenEnv == "" {
		c.Kite.AccessTokenEnv = "KITE_ACCESS_TOKEN"
	}

	def := ta.DefaultConfig()
	if c.Indicators.MAWindow == 0 {
		c.Indicators.MAWindow = def.MAWindow
	}
	if c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = def.RSIPeriod
	}
	if c.Indicators.RSIMethod == "" {
		c.Indicators.RSIMethod = def.RSIMethod
	}
	if c.Indicators.MACDFast == 0 {
		c.Indicators.MACDFast = def.MACDFast
	}
	if c.Indicators.MACDSlow == 0 {
		c.Indicators.MACDSlow = def.MACDSlow
	}
	if c.Indicators.MACDSignal == 0 {
		c.Indicators.MACDSignal = def.MACDSignal
	}
	if c.Signals == (signal.Thresholds{}) {
		c.Signals = signal.DefaultThresholds()
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = "OPENROUTER"
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://openrouter.ai/api/v1"
	}
	if c.LLM.APIKeyEnv == "" {
		c.LLM.APIKeyEnv = "OPENROUTER_API_KEY"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "openrouter/auto"
	}
	if len(c.LLM.Models) == 0 {
		c.LLM.Models = []string{
			"openrouter/auto",
			"mistralai/mistral-large-2407",
			"mistralai/mixtral-8x22b-instruct",
			"anthropic/claude-3.5-sonnet",
			"openai/gpt-4o-2024-08-06",
		}
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 1024
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.5
	}
	if c.LLM.System == "" {
		c.LLM.System = "You are a helpful financial assistant."
	}

	if c.Sentiment.Source == "" {
		c.Sentiment.Source = "STATIC"
	}
	if c.Sentiment.MaxHeadlines == 0 {
		c.Sentiment.MaxHeadlines = 10
	}
	if c.Sentiment.CacheMinutes == 0 {
		c.Sentiment.CacheMinutes = 60
	}

	if c.Dividends.URL == "" {
		c.Dividends.URL = "https://www.screener.in/screens/3/highest-dividend-yield-shares/"
	}
	if c.Dividends.Limit == 0 {
		c.Dividends.Limit = 5
	}
	if c.Dividends.CandidatePool == 0 {
		c.Dividends.CandidatePool = 25
	}
	if c.Dividends.TimeoutSeconds == 0 {
		c.Dividends.TimeoutSeconds = 10
	}

	if c.Journal.Backend == "" {
		c.Journal.Backend = "NONE"
	}
	if c.Journal.Dir == "" {
		c.Journal.Dir = "logs"
	}
	if c.Journal.SQLitePath == "" {
		c.Journal.SQLitePath = "data/journal.db"
	}
	if c.Journal.CompressAfterD == 0 {
		c.Journal.CompressAfterD = 7
	}
	if len(c.Watch.Symbols) == 0 {
		c.Watch.Symbols = []string{"INFY.NS", "TCS.NS", "RELIANCE.NS"}
	}
	if c.Watch.Schedule == "" {
		// weekdays after the NSE close
		c.Watch.Schedule = "0 45 15 * * 1-5"
	}
	if c.Report.Currency == "" {
		c.Report.Currency = "Rs."
	}
}

// applyEnv lets a few deployment-specific settings be overridden without editing the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("DATA_SOURCE"); v != "" {
		c.DataSource = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("JOURNAL_BACKEND"); v != "" {
		c.Journal.Backend = v
	}
}

func (c *Config) Validate() error {
	c.DataSource = strings.ToUpper(c.DataSource)
	if c.DataSource != "YAHOO" && c.DataSource != "KITE" && c.DataSource != "STATIC" {
		return fmt.Errorf("invalid data_source '%s': must be 'YAHOO', 'KITE' or 'STATIC'", c.DataSource)
	}
	if err := c.Indicators.Validate(); err != nil {
		return fmt.Errorf("indicators: %w", err)
	}
	if err := c.Signals.Validate(); err != nil {
		return fmt.Errorf("signals: %w", err)
	}
	c.LLM.Provider = strings.ToUpper(c.LLM.Provider)
	if c.LLM.Provider != "OPENROUTER" && c.LLM.Provider != "NOOP" {
		return fmt.Errorf("llm.provider must be 'OPENROUTER' or 'NOOP', got '%s'", c.LLM.Provider)
	}
	if c.LLM.MaxTokens < 0 {
		return fmt.Errorf("llm.max_tokens must not be negative, got %d", c.LLM.MaxTokens)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2, got %.2f", c.LLM.Temperature)
	}
	c.Sentiment.Source = strings.ToUpper(c.Sentiment.Source)
	switch c.Sentiment.Source {
	case "STATIC", "SCRAPE", "NONE":
	default:
		return fmt.Errorf("sentiment.source must be 'STATIC', 'SCRAPE' or 'NONE', got '%s'", c.Sentiment.Source)
	}
	if c.Dividends.Limit < 0 {
		return fmt.Errorf("dividends.limit must not be negative, got %d", c.Dividends.Limit)
	}
	c.Journal.Backend = strings.ToUpper(c.Journal.Backend)
	switch c.Journal.Backend {
	case "NONE", "JSONL", "SQLITE":
	default:
		return fmt.Errorf("journal.backend must be 'NONE', 'JSONL' or 'SQLITE', got '%s'", c.Journal.Backend)
	}
	if c.Watch.Schedule == "" {
		return errors.New("watch.schedule cannot be empty")
	}
	return nil
}

// LoadConfig reads a YAML file, fills defaults, applies env overrides and validates.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

// LoadOrDefault falls back to Default when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		c := Default()
		c.applyEnv()
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
		return c, nil
	}
	return LoadConfig(path)
}
