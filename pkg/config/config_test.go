package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Obras-api/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("APP_ENV", "development")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 60, cfg.JWT.Expiration)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "./docs/swagger.json", cfg.Swagger.File)
	assert.Equal(t, 10, cfg.DB.MaxConns)
	assert.Equal(t, 5000, cfg.DB.LockTimeoutMs)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("DB_AUTO_MIGRATE", "no-bool")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.False(t, cfg.Metrics.Enabled)
	assert.True(t, cfg.Storage.AutoMigrate, "un valor no booleano conserva el default")
}

func TestValidate(t *testing.T) {
	base := func() config.Config {
		return config.Config{
			App:     config.AppConfig{Env: "development"},
			DB:      config.DBConfig{MaxConns: 10},
			JWT:     config.JWTConfig{Expiration: 60},
			Storage: config.StorageConfig{Driver: config.DriverPostgres},
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Storage.Driver = "sqlite"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.App.Env = "production"
	assert.Error(t, cfg.Validate(), "production exige JWT_SECRET")

	cfg = base()
	cfg.JWT.Expiration = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.DB.MaxConns = 0
	assert.Error(t, cfg.Validate())
}

func TestDSN_EscapesPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "obras", Password: "p@ss:word", DBName: "obras", SSLMode: "disable"}
	assert.Equal(t, "postgres://obras:p%40ss%3Aword@db:5432/obras?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
