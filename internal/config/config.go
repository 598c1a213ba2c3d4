// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type PayMongoConfig struct {
	BaseURL       string `yaml:"base_url"`
	SuccessURL    string `yaml:"success_url"`
	FailedURL     string `yaml:"failed_url"`
	SecretKey     string `yaml:"-"` // Loaded from environment
	WebhookSecret string `yaml:"-"` // Loaded from environment
}

type QueueConfig struct {
	ApprovalTTLHours  int    `yaml:"approval_ttl_hours"`
	ExpirySweepCron   string `yaml:"expiry_sweep_cron"`
	PaymentDueCron    string `yaml:"payment_due_cron"`
	SchedulerDisabled bool   `yaml:"scheduler_disabled"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`
	PayMongo PayMongoConfig `yaml:"paymongo"`
	Queue    QueueConfig    `yaml:"queue"`

	Features struct {
		EnableMetrics bool `yaml:"enable_metrics"`
		EnableDebug   bool `yaml:"enable_debug"`
	} `yaml:"features"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	// Read and parse YAML config
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Load sensitive values from environment
	cfg.PayMongo.SecretKey = os.Getenv("PAYMONGO_SECRET_KEY")
	cfg.PayMongo.WebhookSecret = os.Getenv("PAYMONGO_WEBHOOK_SECRET")

	applyDefaults(&cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Queue.ApprovalTTLHours == 0 {
		cfg.Queue.ApprovalTTLHours = 24
	}
	if cfg.Queue.ExpirySweepCron == "" {
		cfg.Queue.ExpirySweepCron = "*/10 * * * *"
	}
	if cfg.Queue.PaymentDueCron == "" {
		cfg.Queue.PaymentDueCron = "0 * * * *"
	}
	if cfg.PayMongo.BaseURL == "" {
		cfg.PayMongo.BaseURL = "https://api.paymongo.com/v1"
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}
	if c.Database.Driver != "sqlite" {
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Database.Filename == "" {
		return fmt.Errorf("database filename is required for sqlite")
	}
	if c.Queue.ApprovalTTLHours < 0 {
		return fmt.Errorf("approval TTL must not be negative")
	}

	return nil
}
