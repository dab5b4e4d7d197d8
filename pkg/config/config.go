package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// FlexibleStringSlice is a []string that also accepts JSON numbers,
// so allow_from can contain both "123" and 123.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	// Try []string first
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}

	// Try []interface{} to handle mixed types
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Polling  PollingConfig  `json:"polling"`
	Dispatch DispatchConfig `json:"dispatch"`
	Logging  LoggingConfig  `json:"logging"`
}

type TelegramConfig struct {
	Token     string              `env:"PICORELAY_TELEGRAM_TOKEN"      json:"token"`
	APIBase   string              `env:"PICORELAY_TELEGRAM_API_BASE"   json:"api_base,omitempty"`
	Username  string              `env:"PICORELAY_TELEGRAM_USERNAME"   json:"username,omitempty"`
	AllowFrom FlexibleStringSlice `env:"PICORELAY_TELEGRAM_ALLOW_FROM" json:"allow_from,omitempty"`
}

type PollingConfig struct {
	Limit       int  `env:"PICORELAY_POLLING_LIMIT"        json:"limit"`
	Timeout     int  `env:"PICORELAY_POLLING_TIMEOUT"      json:"timeout"` // seconds
	DropPending bool `env:"PICORELAY_POLLING_DROP_PENDING" json:"drop_pending"`
}

type DispatchConfig struct {
	QueueSize int `env:"PICORELAY_DISPATCH_QUEUE_SIZE" json:"queue_size"`
}

type LoggingConfig struct {
	Level string `env:"PICORELAY_LOGGING_LEVEL" json:"level"` // debug | info | warn | error
}

func DefaultConfig() *Config {
	return &Config{
		Polling: PollingConfig{
			Limit:   100,
			Timeout: 30,
		},
		Dispatch: DispatchConfig{
			QueueSize: 100,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks the fields required to actually talk to the API.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return errors.New("telegram token is required")
	}
	if c.Polling.Limit < 1 || c.Polling.Limit > 100 {
		return fmt.Errorf("polling limit %d out of range 1..100", c.Polling.Limit)
	}
	return nil
}

// LoadConfig reads the JSON config at path and applies environment
// overrides. A missing file yields the defaults, env still applied.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := env.Parse(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}
