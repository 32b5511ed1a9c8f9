package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/arcanaland/setcolors/internal/card"
	"github.com/arcanaland/setcolors/internal/scryfall"
	"github.com/joho/godotenv"
)

// Environment variables that override the config file
const (
	EnvOutputDir = "SETCOLORS_OUTPUT_DIR"
	EnvAPIURL    = "SETCOLORS_API_URL"
	EnvUserAgent = "SETCOLORS_USER_AGENT"
	EnvTimeout   = "SETCOLORS_TIMEOUT"
	EnvRateLimit = "SETCOLORS_RATE_LIMIT"
)

// Config represents the application configuration
type Config struct {
	OutputDir       string   `toml:"output_dir"`
	DefaultRarities []string `toml:"default_rarities"`
	APIURL          string   `toml:"api_url"`
	UserAgent       string   `toml:"user_agent"`
	Timeout         string   `toml:"timeout"`
	RateLimit       float64  `toml:"rate_limit"`
	AllPages        bool     `toml:"all_pages"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		OutputDir:       ".",
		DefaultRarities: []string{"M", "R", "U"},
		APIURL:          scryfall.DefaultBaseURL,
		UserAgent:       scryfall.DefaultUserAgent,
		Timeout:         scryfall.DefaultTimeout.String(),
		RateLimit:       scryfall.DefaultRateLimit,
	}
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "setcolors", "config.toml")
}

// LoadConfig reads the config file at path (the default location when empty),
// then applies .env and environment overrides. A missing file yields defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = GetConfigFilePath()
	}

	config, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// readConfigFile decodes path over the defaults, ignoring a missing file
func readConfigFile(path string) (*Config, error) {
	config := Default()
	if _, err := toml.DecodeFile(path, config); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}
	return config, nil
}

// loadDotEnv loads ./.env without overriding variables already set
func loadDotEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading .env: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv(EnvUserAgent); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv(EnvRateLimit); v != "" {
		limit, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvRateLimit, v, err)
		}
		c.RateLimit = limit
	}
	return nil
}

// Validate checks values that cannot be caught by the TOML decoder
func (c *Config) Validate() error {
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit cannot be negative: %v", c.RateLimit)
	}
	if _, err := c.Rarities(); err != nil {
		return fmt.Errorf("default_rarities: %w", err)
	}
	return nil
}

// TimeoutDuration parses the timeout setting, the client default when empty
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return scryfall.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive: %s", c.Timeout)
	}
	return d, nil
}

// Rarities parses the default rarities, falling back to M, R, U
func (c *Config) Rarities() ([]card.Rarity, error) {
	if len(c.DefaultRarities) == 0 {
		return card.DefaultRarities, nil
	}
	return card.ParseRarities(c.DefaultRarities)
}

// InitConfig writes the default config file if none exists and returns the
// content of the file at the default location, without environment overrides
func InitConfig() (*Config, error) {
	configPath := GetConfigFilePath()
	if _, err := os.Stat(configPath); err == nil {
		config, err := readConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		return config, config.Validate()
	}

	config := Default()
	if err := SaveConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig writes config to the default location
func SaveConfig(config *Config) error {
	configPath := GetConfigFilePath()

	// Ensure the config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %v", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("error creating config file: %v", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("error encoding config: %v", err)
	}

	return nil
}
