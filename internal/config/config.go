package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Scan    ScanConfig    `mapstructure:"scan"`
	Runner  RunnerConfig  `mapstructure:"runner"`
	Storage StorageConfig `mapstructure:"storage"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ScanConfig holds what to scan and how
type ScanConfig struct {
	Root         string   `mapstructure:"root"`
	Extensions   []string `mapstructure:"extensions"`
	FollowHidden bool     `mapstructure:"follow_hidden"`
	ReportEvery  int      `mapstructure:"report_every"` // Heartbeat every N visited files
}

// RunnerConfig holds worker pool configuration
type RunnerConfig struct {
	Workers int `mapstructure:"workers"`
}

// StorageConfig holds catalog storage configuration
type StorageConfig struct {
	Dir string `mapstructure:"dir"` // Empty = memory only
}

// UIConfig holds UI configuration
type UIConfig struct {
	ShowSizes bool `mapstructure:"show_sizes"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Root:        ".",
			Extensions:  []string{".mkv", ".mp4", ".avi", ".mov", ".m4v", ".webm"},
			ReportEvery: 100,
		},
		Runner: RunnerConfig{
			Workers: 2,
		},
		Storage: StorageConfig{
			Dir: defaultDataPath(),
		},
		UI: UIConfig{
			ShowSizes: true,
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "reel.log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "reel")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "reel")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "reel")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "reel")
	}
}

// LoadConfig loads configuration from the default locations and environment
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(defaultConfigPath(), ".")
}

// LoadConfigFrom loads config.yaml from the first of paths that has one.
// Environment variables prefixed REEL_ override file values.
func LoadConfigFrom(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Environment variable overrides
	v.SetEnvPrefix("REEL")
	v.AutomaticEnv()
	bindEnv(v, cfg)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.Validate()
	return cfg, nil
}

// bindEnv registers every key so AutomaticEnv can resolve nested values
// (REEL_SCAN_ROOT -> scan.root) even when absent from the file.
func bindEnv(v *viper.Viper, cfg *Config) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	defaults := map[string]any{
		"scan.root":          cfg.Scan.Root,
		"scan.extensions":    cfg.Scan.Extensions,
		"scan.follow_hidden": cfg.Scan.FollowHidden,
		"scan.report_every":  cfg.Scan.ReportEvery,
		"runner.workers":     cfg.Runner.Workers,
		"storage.dir":        cfg.Storage.Dir,
		"ui.show_sizes":      cfg.UI.ShowSizes,
		"logging.file":       cfg.Logging.File,
		"logging.level":      cfg.Logging.Level,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// Validate clamps values that would leave the app unusable
func (c *Config) Validate() {
	if c.Runner.Workers < 1 {
		c.Runner.Workers = 1
	}
	if c.Scan.ReportEvery < 0 {
		c.Scan.ReportEvery = 0
	}
	if c.Scan.Root == "" {
		c.Scan.Root = "."
	}
}

// SaveConfig writes cfg to config.yaml in dir (the default config
// directory when dir is empty)
func SaveConfig(cfg *Config, dir string) error {
	if dir == "" {
		dir = defaultConfigPath()
	}

	// Ensure config directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()

	// Set fields individually to ensure correct key names (snake_case)
	v.Set("scan.root", cfg.Scan.Root)
	v.Set("scan.extensions", cfg.Scan.Extensions)
	v.Set("scan.follow_hidden", cfg.Scan.FollowHidden)
	v.Set("scan.report_every", cfg.Scan.ReportEvery)

	v.Set("runner.workers", cfg.Runner.Workers)

	v.Set("storage.dir", cfg.Storage.Dir)

	v.Set("ui.show_sizes", cfg.UI.ShowSizes)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
