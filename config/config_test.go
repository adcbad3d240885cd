package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/drinklog/config"
)

// unsetEnv clears key for the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(config.Options{EnvFile: filepath.Join(t.TempDir(), "absent.env")})
	require.NoError(t, err)

	assert.Equal(t, config.BackendSQLite, cfg.Backend)
	assert.Equal(t, "drinklog.db", cfg.DBPath)
	assert.False(t, cfg.DBMustExist)
	assert.Equal(t, 68.0, cfg.Goal)
	assert.Equal(t, ".", cfg.BackupDir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ConfigFile(t *testing.T) {
	path := writeFile(t, "drinklog.yaml", `
backend: JSON
db_path: /tmp/drinks.json
goal: 64
log:
  level: DEBUG
  format: json
`)

	cfg, err := config.Load(config.Options{ConfigFile: path})
	require.NoError(t, err)

	assert.Equal(t, config.BackendJSON, cfg.Backend)
	assert.Equal(t, "/tmp/drinks.json", cfg.DBPath)
	assert.Equal(t, 64.0, cfg.Goal)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_ExplicitConfigFileMissing(t *testing.T) {
	_, err := config.Load(config.Options{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeFile(t, "drinklog.yaml", "goal: 64\nlog:\n  level: warn\n")
	t.Setenv("DRINKLOG_GOAL", "80")
	t.Setenv("DRINKLOG_LOG_LEVEL", "error")

	cfg, err := config.Load(config.Options{ConfigFile: path})
	require.NoError(t, err)

	assert.Equal(t, 80.0, cfg.Goal)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoad_DBMustExistFromEnvironment(t *testing.T) {
	t.Setenv("DRINKLOG_DB_MUST_EXIST", "true")

	cfg, err := config.Load(config.Options{EnvFile: filepath.Join(t.TempDir(), "absent.env")})
	require.NoError(t, err)

	assert.True(t, cfg.DBMustExist)
}

func TestLoad_OverridesWin(t *testing.T) {
	t.Setenv("DRINKLOG_BACKEND", "json")

	cfg, err := config.Load(config.Options{Overrides: map[string]any{
		"backend": "memory",
		"goal":    32.0,
	}})
	require.NoError(t, err)

	assert.Equal(t, config.BackendMemory, cfg.Backend)
	assert.Equal(t, 32.0, cfg.Goal)
}

func TestLoad_EnvFile(t *testing.T) {
	unsetEnv(t, "DRINKLOG_DB_PATH")
	envFile := writeFile(t, ".env", "DRINKLOG_DB_PATH=from-dotenv.db\n")

	cfg, err := config.Load(config.Options{EnvFile: envFile})
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv.db", cfg.DBPath)
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	notADir := writeFile(t, "file", "x")
	cfg := &config.Config{
		Backend:   "postgres",
		DBPath:    "",
		Goal:      -1,
		BackupDir: notADir,
		Log:       config.LogConfig{Level: "loud", Format: "xml"},
	}

	err := cfg.Validate()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "invalid backend 'postgres'")
	assert.Contains(t, msg, "db_path cannot be empty")
	assert.Contains(t, msg, "invalid goal")
	assert.Contains(t, msg, "is not a directory")
	assert.Contains(t, msg, "invalid log level 'loud'")
	assert.Contains(t, msg, "invalid log format 'xml'")
}

func TestValidate_MemoryNeedsNoPath(t *testing.T) {
	cfg := &config.Config{
		Backend: config.BackendMemory,
		Goal:    0,
		Log:     config.LogConfig{Level: "info", Format: "text"},
	}
	assert.NoError(t, cfg.Validate())
}
