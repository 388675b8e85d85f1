package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config holds the settings shared by the cpu and io commands
type Config struct {
	Interval        time.Duration `mapstructure:"interval"`
	SpinMode        string        `mapstructure:"spin_mode"`      // "busy" or "sleep"
	MaxIterations   int           `mapstructure:"max_iterations"` // 0 = run until interrupted
	CPULimitSeconds uint64        `mapstructure:"cpu_limit_seconds"`
	FileMode        string        `mapstructure:"file_mode"` // octal, e.g. "0600"
	LogLevel        string        `mapstructure:"log_level"`
	AuditEnabled    bool          `mapstructure:"audit_enabled"`
	AuditLogFile    string        `mapstructure:"audit_log_file"`
}

// LoadConfig loads configuration from ~/.ostep/config.yaml and OSTEP_* environment variables
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("interval", time.Second)
	v.SetDefault("spin_mode", "busy")
	v.SetDefault("max_iterations", 0)
	v.SetDefault("cpu_limit_seconds", 0)
	v.SetDefault("file_mode", "0600")
	v.SetDefault("log_level", "warn")
	v.SetDefault("audit_enabled", false)
	v.SetDefault("audit_log_file", filepath.Join(getHomeDir(), ".ostep", "audit.log"))

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(getHomeDir(), ".ostep"))

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine, a broken one is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("OSTEP")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.AuditLogFile = expandPath(cfg.AuditLogFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects values the commands cannot act on
func (c *Config) Validate() error {
	if c.Interval < 0 {
		return fmt.Errorf("interval must not be negative: %s", c.Interval)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must not be negative: %d", c.MaxIterations)
	}
	if _, err := c.Mode(); err != nil {
		return err
	}
	return nil
}

// Mode parses FileMode as octal permission bits
func (c *Config) Mode() (uint32, error) {
	mode, err := strconv.ParseUint(c.FileMode, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid file_mode %q: %w", c.FileMode, err)
	}
	if mode > 0o777 {
		return 0, fmt.Errorf("file_mode %q has bits outside 0777", c.FileMode)
	}
	return uint32(mode), nil
}

// getHomeDir returns the user's home directory
func getHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home := getHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}
