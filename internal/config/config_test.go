package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_EnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/potions")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "postgres://u:p@db:5432/potions", cfg.DB.DbURL)
	assert.Equal(t, ":7890", cfg.HTTPServer.Address)
	assert.Equal(t, 60*time.Second, cfg.HTTPServer.IdleTimeout)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, time.Duration(0), cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, "/api", cfg.Auth.ProtectedPrefix)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `env: prod
db:
  in_memory: true
http_server:
  address: ":9000"
auth:
  jwt_secret: from-file
  token_ttl: 1h
  bcrypt_cost: 12
  protected_prefix: /private
cors:
  allowed_origins: ["https://potions.example"]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.True(t, cfg.DB.InMemory)
	assert.Equal(t, ":9000", cfg.HTTPServer.Address)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "/private", cfg.Auth.ProtectedPrefix)
	assert.Equal(t, []string{"https://potions.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig("")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			DB:   DB{DbURL: "postgres://localhost/potions"},
			Auth: Auth{JWTSecret: "k", BcryptCost: 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "negative ttl", mutate: func(c *Config) { c.Auth.TokenTTL = -time.Second }, wantErr: true},
		{name: "cost too low", mutate: func(c *Config) { c.Auth.BcryptCost = 3 }, wantErr: true},
		{name: "cost too high", mutate: func(c *Config) { c.Auth.BcryptCost = 32 }, wantErr: true},
		{name: "no db url", mutate: func(c *Config) { c.DB.DbURL = "" }, wantErr: true},
		{name: "no db url in memory", mutate: func(c *Config) { c.DB.DbURL = ""; c.DB.InMemory = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMustLoadConfig_PanicsOnMissingFile(t *testing.T) {
	assert.Panics(t, func() {
		MustLoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	})
}
