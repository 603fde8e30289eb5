package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Logging    LoggingConfig    `yaml:"logging"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Queues     QueueConfig      `yaml:"queues"`
	Hostaway   HostawayConfig   `yaml:"hostaway"`
	Slack      SlackConfig      `yaml:"slack"`
	Sync       SyncConfig       `yaml:"sync"`
	HTTP       HTTPConfig       `yaml:"http"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// QueueConfig selects the inbound queue backend. The backend is chosen once
// at startup so per-queue FIFO ordering holds.
type QueueConfig struct {
	Backend    string `yaml:"backend"` // "memory" or "redis"
	Size       int    `yaml:"size"`
	WebhookKey string `yaml:"webhook_key"`
	CommandKey string `yaml:"command_key"`
}

type HostawayConfig struct {
	BaseURL      string        `yaml:"base_url"`
	AccessToken  string        `yaml:"access_token"`
	AccountID    string        `yaml:"account_id"`
	RateLimitRPS float64       `yaml:"rate_limit_rps"`
	MaxPageSize  int           `yaml:"max_page_size"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	RetryJitter  float64       `yaml:"retry_jitter"`
	Timeout      time.Duration `yaml:"timeout"`
}

type SlackConfig struct {
	BotToken     string  `yaml:"bot_token"`
	ChannelID    string  `yaml:"channel_id"`
	APIURL       string  `yaml:"api_url"`
	RateLimitRPS float64 `yaml:"rate_limit_rps"`
	MaxRetries   int     `yaml:"max_retries"`
}

type SyncConfig struct {
	Enabled      bool   `yaml:"enabled"`
	RunAtStartup bool   `yaml:"run_at_startup"`
	DailyAt      string `yaml:"daily_at"` // wall-clock "HH:MM"
}

type HTTPConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Port      int                 `yaml:"port"`
	RateLimit HTTPRateLimitConfig `yaml:"rate_limit"`
}

type HTTPRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; the environment wins when both are set.
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Expand ${VAR} references before parsing so secrets stay out of YAML.
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Hostaway.BaseURL == "" {
		return errors.New("hostaway base_url is required")
	}
	if c.Hostaway.AccessToken == "" || c.Hostaway.AccessToken == "YOUR_TOKEN_HERE" {
		return errors.New("hostaway access_token is required")
	}
	if c.Hostaway.AccountID == "" {
		return errors.New("hostaway account_id is required")
	}

	switch c.Queues.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown queue backend: %s", c.Queues.Backend)
	}
	if c.Queues.Backend == "redis" && c.Redis.Address == "" {
		return errors.New("redis address is required for the redis queue backend")
	}

	if c.Sync.DailyAt != "" {
		if _, err := time.Parse("15:04", c.Sync.DailyAt); err != nil {
			return fmt.Errorf("sync daily_at must be HH:MM: %w", err)
		}
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "hostsync"
	}

	if c.Queues.Backend == "" {
		c.Queues.Backend = "memory"
	}
	if c.Queues.Size == 0 {
		c.Queues.Size = 1024
	}
	if c.Queues.WebhookKey == "" {
		c.Queues.WebhookKey = "hostsync:webhooks"
	}
	if c.Queues.CommandKey == "" {
		c.Queues.CommandKey = "hostsync:commands"
	}

	if c.Hostaway.RateLimitRPS == 0 {
		c.Hostaway.RateLimitRPS = 2
	}
	if c.Hostaway.MaxPageSize == 0 {
		c.Hostaway.MaxPageSize = 500
	}
	if c.Hostaway.MaxRetries == 0 {
		c.Hostaway.MaxRetries = 3
	}
	if c.Hostaway.RetryBackoff == 0 {
		c.Hostaway.RetryBackoff = time.Second
	}
	if c.Hostaway.RetryJitter == 0 {
		c.Hostaway.RetryJitter = 0.2
	}
	if c.Hostaway.Timeout == 0 {
		c.Hostaway.Timeout = 30 * time.Second
	}

	if c.Slack.RateLimitRPS == 0 {
		c.Slack.RateLimitRPS = 1
	}
	if c.Slack.MaxRetries == 0 {
		c.Slack.MaxRetries = 3
	}

	if c.Sync.DailyAt == "" {
		c.Sync.DailyAt = "00:00"
	}

	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.RateLimit.RPS == 0 {
		c.HTTP.RateLimit.RPS = 10
	}
	if c.HTTP.RateLimit.Burst == 0 {
		c.HTTP.RateLimit.Burst = 20
	}

	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
