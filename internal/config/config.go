package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	DatabaseURL             string `yaml:"databaseURL" validate:"required"`
	CacheTTLMinutes         int    `yaml:"cacheTTLMinutes,omitempty" validate:"omitempty,min=1"`
	RecurrenceHorizonMonths int    `yaml:"recurrenceHorizonMonths,omitempty" validate:"omitempty,min=1"`
	DefaultRehearsalRule    string `yaml:"defaultRehearsalRule,omitempty"`
	DefaultBandID           string `yaml:"defaultBandID,omitempty"`
}

const (
	defaultCacheTTLMinutes         = 5
	defaultRecurrenceHorizonMonths = 6
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from backline_config.yaml.
// It looks for the config file in the current directory first, then in the
// user's home directory.
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// Validate validates the configuration struct and checks the rehearsal rule
// syntax when one is configured.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.DefaultRehearsalRule != "" {
		if _, err := rrule.StrToRRule(cfg.DefaultRehearsalRule); err != nil {
			return fmt.Errorf("invalid rrule in defaultRehearsalRule: %w", err)
		}
	}

	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.CacheTTLMinutes == 0 {
		cfg.CacheTTLMinutes = defaultCacheTTLMinutes
	}
	if cfg.RecurrenceHorizonMonths == 0 {
		cfg.RecurrenceHorizonMonths = defaultRecurrenceHorizonMonths
	}
}

// findConfigFile searches for backline_config.yaml in the current directory
// and the home directory.
func findConfigFile() (string, error) {
	configFileName := "backline_config.yaml"

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
