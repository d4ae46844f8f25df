// Package config loads application configuration from an optional YAML file,
// a .env file, and the environment, in increasing order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application settings. The Gemini API key is the single
// external credential the service depends on; it is checked when an analysis
// run starts, not at load time, so uploads work without it.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Gemini GeminiConfig `mapstructure:"gemini"`
	Log    LogConfig    `mapstructure:"log"`
	Upload UploadConfig `mapstructure:"upload"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type GeminiConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Debug bool `mapstructure:"debug"`
	JSON  bool `mapstructure:"json"`
}

type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
}

const (
	defaultPort           = 8080
	defaultModel          = "gemini-2.5-flash"
	defaultTimeout        = 2 * time.Minute
	defaultUploadMaxBytes = 32 << 20
)

// Load reads configuration. A missing config file is fine; environment
// variables (GEMINI_API_KEY, SERVER_PORT, ...) override file values.
func Load() (*Config, error) {
	// Best-effort .env bootstrap for local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	// Every key needs a default so AutomaticEnv can surface its env
	// counterpart through Unmarshal; viper only resolves env values for keys
	// it already knows about.
	v.SetDefault("server.port", defaultPort)
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", defaultModel)
	v.SetDefault("gemini.timeout", defaultTimeout)
	v.SetDefault("log.debug", false)
	v.SetDefault("log.json", false)
	v.SetDefault("upload.max_bytes", defaultUploadMaxBytes)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings that must be sane before the server starts.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	if strings.TrimSpace(c.Gemini.Model) == "" {
		return fmt.Errorf("gemini.model must not be empty")
	}
	if c.Gemini.Timeout < 0 {
		return fmt.Errorf("gemini.timeout must not be negative")
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload.max_bytes must be positive")
	}
	return nil
}

// HasCredential reports whether the Gemini API key is configured.
func (c *Config) HasCredential() bool {
	return strings.TrimSpace(c.Gemini.APIKey) != ""
}
