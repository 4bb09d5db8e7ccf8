// Package config loads the watchdog configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/adarshmishra-tech/monitor-trading-infra/schedule"
	"github.com/adarshmishra-tech/monitor-trading-infra/types"
)

// EnvConfigPath overrides DefaultPath when set.
const EnvConfigPath = "TRADING_MONITOR_CONFIG"

// DefaultPath is read from the working directory.
const DefaultPath = "config.json"

// Config is the watchdog configuration. It is loaded once and not mutated.
type Config struct {
	SMTP               SMTPConfig            `json:"smtp" yaml:"smtp"`
	SupportEmails      []string              `json:"support_emails" yaml:"support_emails"`
	Thresholds         types.ThresholdConfig `json:"thresholds" yaml:"thresholds"`
	Processes          []string              `json:"processes" yaml:"processes"`
	MonitoringInterval int                   `json:"monitoring_interval" yaml:"monitoring_interval"`
	DailyReportTime    string                `json:"daily_report_time" yaml:"daily_report_time"`

	// DiskPath is the filesystem whose usage is sampled.
	DiskPath string `json:"disk_path" yaml:"disk_path"`
	// HistoryLimit caps samples kept per metric between reports; 0 keeps all.
	HistoryLimit int `json:"history_limit" yaml:"history_limit"`
	// LogFile receives the append-only log.
	LogFile  string `json:"log_file" yaml:"log_file"`
	LogLevel string `json:"log_level" yaml:"log_level"`
	// MetricsAddr enables the prometheus listener when non-empty.
	MetricsAddr string `json:"metrics_addr" yaml:"metrics_addr"`

	Kafka KafkaConfig `json:"kafka" yaml:"kafka"`
}

// SMTPConfig holds the mail relay settings.
type SMTPConfig struct {
	Server      string `json:"server" yaml:"server"`
	Port        int    `json:"port" yaml:"port"`
	SenderEmail string `json:"sender_email" yaml:"sender_email"`
	AppPassword string `json:"app_password" yaml:"app_password"`
}

// KafkaConfig enables the optional alert topic.
type KafkaConfig struct {
	Brokers []string `json:"brokers" yaml:"brokers"`
	Topic   string   `json:"topic" yaml:"topic"`
}

// Enabled reports whether alerts are also published to kafka.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// ConfigError describes an unusable configuration. It is fatal at startup.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Default returns the optional settings; required fields stay empty.
func Default() *Config {
	return &Config{
		DiskPath: "/",
		LogFile:  "trading_monitor.log",
		LogLevel: "info",
	}
}

// Path returns the config file location honoring EnvConfigPath.
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultPath
}

// Format selects the decoder for a configuration file.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFor picks the format from the file extension. Anything that is not
// .yaml or .yml is decoded as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("read %s: %w", path, err)}
	}
	return Parse(data, FormatFor(path))
}

// Parse decodes and validates raw configuration bytes.
func Parse(data []byte, format Format) (*Config, error) {
	cfg := Default()

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("parse: %w", err)}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every required field.
func (c *Config) Validate() error {
	if c.SMTP.Server == "" {
		return &ConfigError{Field: "smtp.server", Err: errRequired}
	}
	if c.SMTP.Port < 1 || c.SMTP.Port > 65535 {
		return &ConfigError{Field: "smtp.port", Err: fmt.Errorf("out of range: %d", c.SMTP.Port)}
	}
	if c.SMTP.SenderEmail == "" {
		return &ConfigError{Field: "smtp.sender_email", Err: errRequired}
	}
	if _, err := mail.ParseAddress(c.SMTP.SenderEmail); err != nil {
		return &ConfigError{Field: "smtp.sender_email", Err: err}
	}
	if len(c.SupportEmails) == 0 {
		return &ConfigError{Field: "support_emails", Err: errRequired}
	}
	for _, addr := range c.SupportEmails {
		if _, err := mail.ParseAddress(addr); err != nil {
			return &ConfigError{Field: "support_emails", Err: fmt.Errorf("%q: %w", addr, err)}
		}
	}
	for _, m := range types.Metrics() {
		if v := c.Thresholds.For(m); v < 0 || v > 100 {
			return &ConfigError{Field: "thresholds", Err: fmt.Errorf("%s must be in [0, 100], got %v", m, v)}
		}
	}
	if c.MonitoringInterval < 1 {
		return &ConfigError{Field: "monitoring_interval", Err: fmt.Errorf("must be at least 1 second, got %d", c.MonitoringInterval)}
	}
	if _, err := schedule.ParseTimeOfDay(c.DailyReportTime); err != nil {
		return &ConfigError{Field: "daily_report_time", Err: err}
	}
	if c.HistoryLimit < 0 {
		return &ConfigError{Field: "history_limit", Err: errors.New("must not be negative")}
	}
	if c.DiskPath == "" {
		return &ConfigError{Field: "disk_path", Err: errRequired}
	}
	if c.Kafka.Enabled() && c.Kafka.Topic == "" {
		return &ConfigError{Field: "kafka.topic", Err: errRequired}
	}
	return nil
}

// Interval returns MonitoringInterval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.MonitoringInterval) * time.Second
}

// ReportTime returns the parsed daily report time. Validate must have passed.
func (c *Config) ReportTime() schedule.TimeOfDay {
	tod, _ := schedule.ParseTimeOfDay(c.DailyReportTime)
	return tod
}

var errRequired = errors.New("required")
