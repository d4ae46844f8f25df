package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Run from a temp dir so no stray config.yaml or .env is picked up.
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, 2*time.Minute, cfg.Gemini.Timeout)
	assert.Equal(t, int64(32<<20), cfg.Upload.MaxBytes)
	assert.False(t, cfg.HasCredential())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "test-key", cfg.Gemini.APIKey,
		"the credential has no file default, only the environment")
	assert.True(t, cfg.HasCredential())
}

func TestLoadDotEnvFile(t *testing.T) {
	t.Chdir(t.TempDir())
	// godotenv sets the variable process-wide; registering it with t.Setenv
	// first makes the test clean it up, and unsetting lets godotenv win.
	t.Setenv("GEMINI_API_KEY", "")
	os.Unsetenv("GEMINI_API_KEY")
	require.NoError(t, os.WriteFile(".env", []byte("GEMINI_API_KEY=dotenv-key\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dotenv-key", cfg.Gemini.APIKey)
	assert.True(t, cfg.HasCredential())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "empty model",
			mutate:  func(c *Config) { c.Gemini.Model = " " },
			wantErr: "gemini.model",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Gemini.Timeout = -time.Second },
			wantErr: "gemini.timeout",
		},
		{
			name:    "zero upload limit",
			mutate:  func(c *Config) { c.Upload.MaxBytes = 0 },
			wantErr: "upload.max_bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Server: ServerConfig{Port: 8080},
				Gemini: GeminiConfig{Model: "gemini-2.5-flash", Timeout: time.Minute},
				Upload: UploadConfig{MaxBytes: 1 << 20},
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
