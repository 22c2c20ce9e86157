package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Sources Sources `yaml:"sources"`
	Scrape  Scrape  `yaml:"scrape"`
	AI      AI      `yaml:"ai"`
	Output  Output  `yaml:"output"`
	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
}

type Sources struct {
	Feeds []Feed `yaml:"feeds"`
}

type Feed struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

type Scrape struct {
	MaxArticlesPerSite int    `yaml:"max_articles_per_site"`
	DaysBack           int    `yaml:"days_back"`
	MinArticleDate     string `yaml:"min_article_date"` // YYYY-MM-DD, empty = no floor
	DelayMinMs         int    `yaml:"delay_min_ms"`
	DelayMaxMs         int    `yaml:"delay_max_ms"`
	FetchTimeoutSec    int    `yaml:"fetch_timeout_sec"`
}

type AI struct {
	Enabled                 bool   `yaml:"enabled"`
	Provider                string `yaml:"provider"`
	Model                   string `yaml:"model"`
	OllamaURL               string `yaml:"ollama_url"`
	OpenAIModel             string `yaml:"openai_model"`
	APIKeyEnv               string `yaml:"api_key_env"`
	EnableSummary           bool   `yaml:"enable_summary"`
	EnableGrammarCorrection bool   `yaml:"enable_grammar_correction"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for jobradar.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "jobradar")
}

// DataDir returns the XDG data directory for jobradar.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "jobradar")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/jobradar/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'jobradar init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Scrape: Scrape{
			MaxArticlesPerSite: 20,
			DaysBack:           7,
			DelayMinMs:         500,
			DelayMaxMs:         2000,
			FetchTimeoutSec:    15,
		},
		AI: AI{
			Enabled:     true,
			Provider:    "ollama",
			Model:       "qwen2.5:7b",
			OllamaURL:   "http://localhost:11434",
			OpenAIModel: "gpt-4o-mini",
			APIKeyEnv:   "OPENAI_API_KEY",
		},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// DelayBounds returns the inter-article delay range.
func (c *Config) DelayBounds() (min, max time.Duration) {
	return time.Duration(c.Scrape.DelayMinMs) * time.Millisecond,
		time.Duration(c.Scrape.DelayMaxMs) * time.Millisecond
}

// FetchTimeout returns the per-request fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Scrape.FetchTimeoutSec) * time.Second
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
