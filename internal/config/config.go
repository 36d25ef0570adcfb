package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultSerialBaud         = 115200
	DefaultReadTimeoutMS      = 1000
	DefaultExchangeDeadlineMS = 5000
	DefaultSettleDelayMS      = 2000
)

// LoggingConfig defines runtime logging behavior.
type LoggingConfig struct {
	Level     string `json:"level" toml:"level"`
	LogToFile bool   `json:"log_to_file" toml:"log_to_file"`
}

// LinkConfig identifies the serial port the device is attached to. There is
// no default port: boards enumerate under different names on every host.
type LinkConfig struct {
	SerialPort string `json:"serial_port" toml:"serial_port"`
	SerialBaud int    `json:"serial_baud" toml:"serial_baud"`
}

// ExchangeConfig holds the exchange timings and flush policy.
type ExchangeConfig struct {
	ReadTimeoutMS      int  `json:"read_timeout_ms" toml:"read_timeout_ms"`
	ExchangeDeadlineMS int  `json:"exchange_deadline_ms" toml:"exchange_deadline_ms"`
	SettleDelayMS      int  `json:"settle_delay_ms" toml:"settle_delay_ms"`
	FlushBefore        bool `json:"flush_before" toml:"flush_before"`
	FlushAfter         bool `json:"flush_after" toml:"flush_after"`
}

// JournalConfig controls the optional sqlite record of exchanges.
type JournalConfig struct {
	Enabled bool   `json:"enabled" toml:"enabled"`
	Path    string `json:"path" toml:"path"`
}

// AppConfig is the root application configuration.
type AppConfig struct {
	Link     LinkConfig     `json:"link" toml:"link"`
	Exchange ExchangeConfig `json:"exchange" toml:"exchange"`
	Logging  LoggingConfig  `json:"logging" toml:"logging"`
	Journal  JournalConfig  `json:"journal" toml:"journal"`
}

func Default() AppConfig {
	return AppConfig{
		Link: LinkConfig{
			SerialPort: "",
			SerialBaud: DefaultSerialBaud,
		},
		Exchange: ExchangeConfig{
			ReadTimeoutMS:      DefaultReadTimeoutMS,
			ExchangeDeadlineMS: DefaultExchangeDeadlineMS,
			SettleDelayMS:      DefaultSettleDelayMS,
			FlushBefore:        true,
			FlushAfter:         true,
		},
		Logging: LoggingConfig{
			Level:     "info",
			LogToFile: false,
		},
		Journal: JournalConfig{
			Enabled: false,
			Path:    "",
		},
	}
}

// Load reads a JSON or TOML (by .toml extension) config file. A missing file
// yields the defaults.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	cleanPath := filepath.Clean(path)
	// #nosec G304 -- path comes from the command line or the user config dir.
	raw, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	if isTOML(cleanPath) {
		if _, err := toml.Decode(string(raw), &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("decode config toml: %w", err)
		}
	} else if err := json.Unmarshal(raw, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config json: %w", err)
	}

	cfg.FillMissingDefaults()

	return cfg, nil
}

func (c *AppConfig) FillMissingDefaults() {
	c.Link.SerialPort = strings.TrimSpace(c.Link.SerialPort)
	if c.Link.SerialBaud <= 0 {
		c.Link.SerialBaud = DefaultSerialBaud
	}
	if c.Exchange.ReadTimeoutMS <= 0 {
		c.Exchange.ReadTimeoutMS = DefaultReadTimeoutMS
	}
	if c.Exchange.ExchangeDeadlineMS <= 0 {
		c.Exchange.ExchangeDeadlineMS = DefaultExchangeDeadlineMS
	}
	if c.Exchange.SettleDelayMS < 0 {
		c.Exchange.SettleDelayMS = DefaultSettleDelayMS
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c AppConfig) Validate() error {
	if strings.TrimSpace(c.Link.SerialPort) == "" {
		return errors.New("serial port is required")
	}
	if c.Link.SerialBaud <= 0 {
		return errors.New("serial baud must be positive")
	}
	if c.Exchange.ReadTimeoutMS <= 0 {
		return errors.New("read timeout must be positive")
	}
	if c.Exchange.ExchangeDeadlineMS <= 0 {
		return errors.New("exchange deadline must be positive")
	}
	if c.Exchange.SettleDelayMS < 0 {
		return errors.New("settle delay must not be negative")
	}
	if c.Journal.Enabled && strings.TrimSpace(c.Journal.Path) == "" {
		return errors.New("journal path is required when the journal is enabled")
	}

	return nil
}

func (c ExchangeConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMS) * time.Millisecond
}

func (c ExchangeConfig) ExchangeDeadline() time.Duration {
	return time.Duration(c.ExchangeDeadlineMS) * time.Millisecond
}

func (c ExchangeConfig) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMS) * time.Millisecond
}

// Save writes the config atomically, as TOML when path ends in .toml and JSON otherwise.
func Save(path string, cfg AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	raw, err := encode(path, cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0o600); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp config: %w", err)
	}

	return nil
}

func encode(path string, cfg AppConfig) ([]byte, error) {
	if !isTOML(path) {
		return json.MarshalIndent(cfg, "", "  ")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
