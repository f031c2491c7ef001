// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	defaultUserHeader             = "X-User-ID"
	defaultMode                   = "light"
	defaultEditorSessionTTL       = 2 * time.Hour
	defaultEditorSweepCron        = "*/10 * * * *"
	defaultGenerationCooldown     = 10 * time.Second
	defaultGenerationMaxPerHour   = 20
	defaultGenerationMaxIPPerHour = 60
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type AuthConfig struct {
	// UserHeader carries the user id set by the upstream authenticating proxy.
	UserHeader string `yaml:"user_header"`
	TrustProxy bool   `yaml:"trust_proxy"`
}

type ThemesConfig struct {
	DefaultMode            string        `yaml:"default_mode"`
	EditorSessionTTL       time.Duration `yaml:"editor_session_ttl"`
	EditorSweepCron        string        `yaml:"editor_sweep_cron"`
	GenerationCooldown     time.Duration `yaml:"generation_cooldown"`
	GenerationMaxPerHour   int           `yaml:"generation_max_per_hour"`
	GenerationMaxIPPerHour int           `yaml:"generation_max_ip_per_hour"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
		LogLevel    string `yaml:"log_level"`
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Themes   ThemesConfig   `yaml:"themes"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// Environment overrides for deployment-specific values
	if filename := os.Getenv("DATABASE_FILENAME"); filename != "" {
		cfg.Database.Filename = filename
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.App.LogLevel = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML configuration and fills defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Auth.UserHeader == "" {
		c.Auth.UserHeader = defaultUserHeader
	}
	if c.Themes.DefaultMode == "" {
		c.Themes.DefaultMode = defaultMode
	}
	if c.Themes.EditorSessionTTL == 0 {
		c.Themes.EditorSessionTTL = defaultEditorSessionTTL
	}
	if c.Themes.EditorSweepCron == "" {
		c.Themes.EditorSweepCron = defaultEditorSweepCron
	}
	if c.Themes.GenerationCooldown == 0 {
		c.Themes.GenerationCooldown = defaultGenerationCooldown
	}
	if c.Themes.GenerationMaxPerHour == 0 {
		c.Themes.GenerationMaxPerHour = defaultGenerationMaxPerHour
	}
	if c.Themes.GenerationMaxIPPerHour == 0 {
		c.Themes.GenerationMaxIPPerHour = defaultGenerationMaxIPPerHour
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

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if strings.TrimSpace(c.Auth.UserHeader) == "" {
		return fmt.Errorf("auth user_header is required")
	}

	switch c.Themes.DefaultMode {
	case "light", "dark":
	default:
		return fmt.Errorf("themes default_mode must be light or dark, got %q", c.Themes.DefaultMode)
	}
	if c.Themes.EditorSessionTTL <= 0 {
		return fmt.Errorf("themes editor_session_ttl must be positive")
	}
	if _, err := cron.ParseStandard(c.Themes.EditorSweepCron); err != nil {
		return fmt.Errorf("themes editor_sweep_cron is invalid: %w", err)
	}
	if c.Themes.GenerationCooldown < 0 {
		return fmt.Errorf("themes generation_cooldown must not be negative")
	}
	if c.Themes.GenerationMaxPerHour < 0 || c.Themes.GenerationMaxIPPerHour < 0 {
		return fmt.Errorf("themes generation limits must not be negative")
	}

	return nil
}
