package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileWithDefaults(t *testing.T) {
	path := writeConfig(t, `
storage:
  driver: memory
auth:
  jwt_secret: s3cret
gateway:
  port: 8081
redis:
  order_ttl: 1m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 8081, cfg.Gateway.Port)
	assert.Equal(t, time.Minute, cfg.Redis.OrderTTL)
	assert.Equal(t, "bigbite", cfg.MongoDB.Database)
	assert.Equal(t, 7, cfg.Analytics.DefaultDays)
	assert.Equal(t, []string{"stdout"}, cfg.Log.OutputPaths)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
storage:
  driver: memory
auth:
  jwt_secret: from-file
`)
	t.Setenv("BIGBITE_AUTH_JWT_SECRET", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown_driver", func(c *Config) { c.Storage.Driver = "sqlite" }, `unknown storage driver "sqlite"`},
		{"missing_secret", func(c *Config) { c.Auth.JWTSecret = "" }, "auth.jwt_secret is required"},
		{"bad_port", func(c *Config) { c.Gateway.Port = 70000 }, "gateway.port 70000 out of range"},
		{"rabbit_without_url", func(c *Config) { c.RabbitMQ.Enabled = true }, "rabbitmq.url is required"},
		{"bad_timezone", func(c *Config) { c.Analytics.Timezone = "Mars/Olympus" }, "analytics.timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Storage: StorageConfig{Driver: DriverMemory},
				Auth:    AuthConfig{JWTSecret: "x"},
				Gateway: GatewayConfig{Port: 5000},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDSN(t *testing.T) {
	my := MySQLConfig{Host: "db", Port: 3306, Username: "u", Password: "p", Database: "bb"}
	assert.Equal(t, "u:p@tcp(db:3306)/bb?charset=utf8mb4&parseTime=True&loc=Local", my.DSN())

	pg := PostgresConfig{Host: "db", Port: 5432, Username: "u", Password: "p", Database: "bb", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=bb sslmode=disable", pg.DSN())
}
