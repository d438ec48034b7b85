// Package config loads runtime settings from a JSON or YAML file, an
// optional .env file, and the process environment (highest precedence).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI     = "openai"
	ProviderDeepSeek   = "deepseek"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"

	BackendFile  = "file"
	BackendRedis = "redis"
)

// LLMConfig selects the generation backend.
type LLMConfig struct {
	Provider   string `json:"provider" yaml:"provider"`
	Model      string `json:"model" yaml:"model"`
	APIKey     string `json:"api_key" yaml:"api_key"`
	BaseURL    string `json:"base_url" yaml:"base_url"`
	MaxRetries int    `json:"max_retries" yaml:"max_retries"`
}

// ApifyConfig configures example scraping. An empty token disables it.
type ApifyConfig struct {
	Token               string `json:"token" yaml:"token"`
	BaseURL             string `json:"base_url" yaml:"base_url"`
	LinkedInActor       string `json:"linkedin_actor" yaml:"linkedin_actor"`
	XActor              string `json:"x_actor" yaml:"x_actor"`
	LinkedInLimit       int    `json:"linkedin_limit" yaml:"linkedin_limit"`
	XMaxItems           int    `json:"x_max_items" yaml:"x_max_items"`
	PollIntervalSeconds int    `json:"poll_interval_seconds" yaml:"poll_interval_seconds"`
	TimeoutSeconds      int    `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// PollInterval returns the run polling interval.
func (a ApifyConfig) PollInterval() time.Duration {
	return time.Duration(a.PollIntervalSeconds) * time.Second
}

// Timeout returns the per-request HTTP timeout.
func (a ApifyConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// PostsConfig bounds the per-platform post count.
type PostsConfig struct {
	Min     int `json:"min" yaml:"min"`
	Max     int `json:"max" yaml:"max"`
	Default int `json:"default" yaml:"default"`
}

// RedisConfig is used when Storage.Backend is "redis".
type RedisConfig struct {
	Addr       string `json:"addr" yaml:"addr"`
	Password   string `json:"password" yaml:"password"`
	DB         int    `json:"db" yaml:"db"`
	Prefix     string `json:"prefix" yaml:"prefix"`
	TTLSeconds int    `json:"ttl_seconds" yaml:"ttl_seconds"`
}

// StorageConfig selects where compiled outputs are persisted.
type StorageConfig struct {
	Backend   string      `json:"backend" yaml:"backend"`
	OutputDir string      `json:"output_dir" yaml:"output_dir"`
	Redis     RedisConfig `json:"redis" yaml:"redis"`
}

type Config struct {
	ServerAddr string        `json:"server_addr" yaml:"server_addr"`
	LLM        LLMConfig     `json:"llm" yaml:"llm"`
	Apify      ApifyConfig   `json:"apify" yaml:"apify"`
	Posts      PostsConfig   `json:"posts" yaml:"posts"`
	Storage    StorageConfig `json:"storage" yaml:"storage"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		ServerAddr: ":8080",
		LLM: LLMConfig{
			Provider:   ProviderOpenAI,
			Model:      "gpt-4o",
			MaxRetries: 2,
		},
		Apify: ApifyConfig{
			LinkedInActor:       "supreme_coder/linkedin-post",
			XActor:              "apidojo/tweet-scraper",
			LinkedInLimit:       5,
			XMaxItems:           20,
			PollIntervalSeconds: 3,
			TimeoutSeconds:      300,
		},
		Posts: PostsConfig{Min: 1, Max: 5, Default: 3},
		Storage: StorageConfig{
			Backend:   BackendFile,
			OutputDir: "./outputs",
		},
	}
}

// Load reads path (JSON, or YAML for .yaml/.yml) on top of Default, then
// applies .env and environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := readFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// loadDotEnv never overrides variables that are already set.
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load .env: %w", err)
}

func applyEnv(cfg *Config) {
	setString(&cfg.LLM.APIKey, "OPENAI_API_KEY")
	setString(&cfg.LLM.Model, "OPENAI_MODEL")
	setString(&cfg.LLM.BaseURL, "OPENAI_BASE_URL")
	setString(&cfg.Apify.Token, "APIFY_API_TOKEN")
	setString(&cfg.ServerAddr, "TLW_SERVER_ADDR")
	setString(&cfg.Storage.OutputDir, "TLW_OUTPUT_DIR")
	if v := strings.TrimSpace(os.Getenv("REDIS_ADDR")); v != "" {
		cfg.Storage.Redis.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("TLW_DEFAULT_POSTS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Posts.Default = n
		}
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Validate checks provider, post bounds and storage settings.
func (c Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderMock:
	case ProviderDeepSeek, ProviderOpenRouter:
		if c.LLM.BaseURL == "" {
			return fmt.Errorf("llm provider %q requires llm.base_url", c.LLM.Provider)
		}
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.LLM.Provider != ProviderMock && c.LLM.Model == "" {
		return errors.New("llm.model is required")
	}
	p := c.Posts
	if p.Min < 1 || p.Max < p.Min {
		return fmt.Errorf("invalid posts bounds %d..%d", p.Min, p.Max)
	}
	if p.Default < p.Min || p.Default > p.Max {
		return fmt.Errorf("posts.default %d outside %d..%d", p.Default, p.Min, p.Max)
	}
	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.OutputDir == "" {
			return errors.New("storage.output_dir is required for the file backend")
		}
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return errors.New("storage.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}
