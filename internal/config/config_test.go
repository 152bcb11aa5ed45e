package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageRedis, cfg.Storage.Driver)
	assert.Equal(t, 50, cfg.Storage.HistoryCapacity)
	assert.Equal(t, "foundry", cfg.Storage.KeyPrefix)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
	assert.False(t, cfg.NeedsMySQL())
	assert.True(t, cfg.IsDev())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[app]
env = "prod"
port = 9090

[storage]
driver = "mysql"
history_capacity = 10

[rabbitmq]
enabled = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("APP_PORT", "7070")
	t.Setenv("STORAGE_HISTORY_CAPACITY", "not-a-number")
	t.Setenv("LLM_TEMPERATURE", "0.2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.App.Env)
	assert.Equal(t, 7070, cfg.App.Port)
	assert.Equal(t, StorageMySQL, cfg.Storage.Driver)
	assert.Equal(t, 10, cfg.Storage.HistoryCapacity)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 1e-9)
	assert.True(t, cfg.RabbitMQ.Enabled)
	assert.True(t, cfg.NeedsMySQL())
	assert.False(t, cfg.IsDev())
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("STORAGE_DRIVER", "etcd")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[app\nport = "), 0o600))
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	assert.Error(t, err)
}

func TestAllowedOrigins(t *testing.T) {
	cfg := defaultConfig()
	cfg.App.CORSOrigins = " http://a.test, ,http://b.test "
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins())

	cfg.App.CORSOrigins = ""
	assert.Empty(t, cfg.AllowedOrigins())
}

func TestMySQLDSN(t *testing.T) {
	cfg := defaultConfig()
	cfg.MySQL.Password = "secret"
	assert.Equal(t, "root:secret@tcp(127.0.0.1:3306)/mvp_foundry?parseTime=true&loc=Local&charset=utf8mb4", cfg.MySQLDSN())
}
