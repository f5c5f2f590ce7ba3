package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Telegram TelegramConfig `yaml:"telegram"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Download DownloadConfig `yaml:"download"`
	Engine   EngineConfig   `yaml:"engine"`
	Worker   WorkerConfig   `yaml:"worker"`
	Events   EventsConfig   `yaml:"events"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port         int           `yaml:"port" envconfig:"SERVER_PORT" default:"8089"`
	APIKey       string        `yaml:"api_key" envconfig:"API_KEY"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT" default:"2m"`
}

// TelegramConfig holds Telegram bot configuration.
type TelegramConfig struct {
	BotToken      string        `yaml:"bot_token" envconfig:"TELEGRAM_BOT_TOKEN"`
	WebhookSecret string        `yaml:"webhook_secret" envconfig:"TELEGRAM_WEBHOOK_SECRET"`
	BaseURL       string        `yaml:"base_url" envconfig:"TELEGRAM_BASE_URL" default:"https://api.telegram.org"`
	Timeout       time.Duration `yaml:"timeout" envconfig:"TELEGRAM_TIMEOUT" default:"60s"`
}

// GeminiConfig holds caption generation (Gemini API) configuration.
type GeminiConfig struct {
	APIKey  string        `yaml:"api_key" envconfig:"GEMINI_API_KEY"`
	BaseURL string        `yaml:"base_url" envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
	Model   string        `yaml:"model" envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash-lite"`
	Timeout time.Duration `yaml:"timeout" envconfig:"GEMINI_TIMEOUT" default:"30s"`
}

// DownloadConfig holds asset download configuration.
type DownloadConfig struct {
	Timeout       time.Duration `yaml:"timeout" envconfig:"DOWNLOAD_TIMEOUT" default:"30s"`
	MaxFileSizeMB int           `yaml:"max_file_size_mb" envconfig:"MAX_FILE_SIZE_MB" default:"50"`
	UserAgent     string        `yaml:"user_agent" envconfig:"DOWNLOAD_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"`
}

// MaxFileSizeBytes returns the size bound in bytes.
func (c DownloadConfig) MaxFileSizeBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

// EngineConfig holds acquisition engine retry configuration.
type EngineConfig struct {
	MaxAttempts int `yaml:"max_attempts" envconfig:"ENGINE_MAX_ATTEMPTS" default:"2"`
	// RetryDelay is the base backoff unit; attempt n waits n * RetryDelay.
	RetryDelay time.Duration `yaml:"retry_delay" envconfig:"ENGINE_RETRY_DELAY" default:"1s"`
	// ResolveTimeout bounds a single resolver/strategy HTTP call.
	ResolveTimeout time.Duration `yaml:"resolve_timeout" envconfig:"ENGINE_RESOLVE_TIMEOUT" default:"15s"`
}

// WorkerConfig holds worker pool configuration.
type WorkerConfig struct {
	Count        int           `yaml:"count" envconfig:"WORKER_COUNT" default:"2"`
	PollInterval time.Duration `yaml:"poll_interval" envconfig:"WORKER_POLL_INTERVAL" default:"500ms"`
	// JobTimeout is the overall deadline for one acquisition job end to end.
	JobTimeout time.Duration `yaml:"job_timeout" envconfig:"WORKER_JOB_TIMEOUT" default:"5m"`
}

// EventsConfig holds event log configuration.
type EventsConfig struct {
	RingBufferSize int    `yaml:"ring_buffer_size" envconfig:"EVENTS_RING_BUFFER_SIZE" default:"1000"`
	Persist        bool   `yaml:"persist" envconfig:"EVENTS_PERSIST" default:"false"`
	SQLitePath     string `yaml:"sqlite_path" envconfig:"EVENTS_SQLITE_PATH"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.Download.MaxFileSizeMB <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE_MB must be a positive number")
	}
	if c.Download.Timeout <= 0 {
		return fmt.Errorf("DOWNLOAD_TIMEOUT must be a positive duration")
	}
	if c.Engine.MaxAttempts <= 0 {
		return fmt.Errorf("ENGINE_MAX_ATTEMPTS must be a positive number")
	}
	if c.Events.Persist && c.Events.SQLitePath == "" {
		return fmt.Errorf("EVENTS_SQLITE_PATH is required when EVENTS_PERSIST is enabled")
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
