package common

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "augur.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, "0 7 * * *", config.Scheduler.Schedule)
	assert.Equal(t, time.Second, config.Scheduler.StepDelay.Std())
	assert.Equal(t, 3, config.Synthesis.RetryAttempts)
	assert.Equal(t, 10*time.Second, config.Synthesis.RetryCooldown.Std())
	assert.Equal(t, 5*time.Second, config.Synthesis.StageDelay.Std())
	assert.Equal(t, 3, config.Synthesis.FilesPerDir)
	assert.Equal(t, 100000, config.Synthesis.MaxExcerpt)
	assert.Equal(t, 1000, config.Synthesis.MaxPDFExcerpt)
	assert.Equal(t, "BTC-USDT-SWAP", config.Signal.InstrumentID)
	assert.Equal(t, 100, config.Signal.Candles)
	assert.Equal(t, "badger", config.Storage.Type)
}

func TestLoadFromFiles_MergesAndValidates(t *testing.T) {
	t.Setenv("AUGUR_SERVER_PORT", "")
	base := writeConfig(t, `
[server]
port = 9090

[gemini]
api_key = "test-key"

[data]
dir = "/tmp/augur-data"
`)

	config, err := LoadFromFiles(base)
	require.NoError(t, err)

	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "/tmp/augur-data", config.Data.Dir)
	assert.Equal(t, "test-key", config.Gemini.APIKey)
	// Untouched sections keep defaults
	assert.Equal(t, "0 7 * * *", config.Scheduler.Schedule)
}

func TestLoadFromFiles_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[gemini]
api_key = "file-key"
`)
	t.Setenv("AUGUR_GEMINI_API_KEY", "env-key")
	t.Setenv("AUGUR_SERVER_PORT", "7070")

	config, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", config.Gemini.APIKey)
	assert.Equal(t, 7070, config.Server.Port)
}

func TestLoadFromFiles_FailsLoudly(t *testing.T) {
	t.Setenv("AUGUR_GEMINI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{
			name:  "missing llm key",
			body:  "",
			field: "gemini.api_key",
		},
		{
			name: "bad schedule",
			body: `
[gemini]
api_key = "k"
[scheduler]
schedule = "not a cron"
`,
			field: "scheduler.schedule",
		},
		{
			name: "postgres without url",
			body: `
[gemini]
api_key = "k"
[storage]
type = "postgres"
`,
			field: "storage.postgres.url",
		},
		{
			name: "redis lock without url",
			body: `
[gemini]
api_key = "k"
[scheduler]
lock = "redis"
`,
			field: "redis.url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFiles(writeConfig(t, tt.body))
			require.Error(t, err)

			var configErr *ConfigError
			require.True(t, errors.As(err, &configErr), "expected *ConfigError, got %T", err)
			assert.Equal(t, tt.field, configErr.Field)
		})
	}
}

func TestLoadFromFiles_UnknownStorageType(t *testing.T) {
	_, err := LoadFromFiles(writeConfig(t, `
[gemini]
api_key = "k"
[storage]
type = "sqlite"
`))

	var configErr *ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.Contains(t, configErr.Field, "type")
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("0 7 * * *"))
	assert.NoError(t, ValidateSchedule("*/15 * * * *"))
	assert.Error(t, ValidateSchedule("0 0 7 * * *"))
	assert.Error(t, ValidateSchedule(""))
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()
	ApplyFlagOverrides(config, 9999, "0.0.0.0")
	assert.Equal(t, 9999, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)

	ApplyFlagOverrides(config, 0, "")
	assert.Equal(t, 9999, config.Server.Port)
}

func TestLoadFromFiles_ShippedConfig(t *testing.T) {
	t.Setenv("AUGUR_GEMINI_API_KEY", "test-key")

	config, err := LoadFromFiles(filepath.Join("..", "..", "deployments", "local", "augur.toml"))
	require.NoError(t, err)

	assert.Equal(t, time.Second, config.Scheduler.StepDelay.Std())
	assert.Equal(t, 2*time.Hour, config.Scheduler.LockTTL.Std())
	assert.Equal(t, 24*time.Hour, config.Synthesis.QuestionWindow.Std())
	assert.Equal(t, 30*time.Second, config.Collectors.RequestTimeout.Std())
	assert.Equal(t, 10*time.Second, config.Collectors.AINews.WaitTime.Std())
	require.Len(t, config.Collectors.Regions, 1)
	assert.Equal(t, "11680", config.Collectors.Regions[0].Code)
}

func TestLoadFromFiles_Durations(t *testing.T) {
	t.Setenv("AUGUR_GEMINI_API_KEY", "test-key")

	path := writeConfig(t, `
[scheduler]
step_delay = "250ms"

[synthesis]
retry_cooldown = "1m30s"
`)
	config, err := LoadFromFiles(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, config.Scheduler.StepDelay.Std())
	assert.Equal(t, 90*time.Second, config.Synthesis.RetryCooldown.Std())

	bad := writeConfig(t, `
[scheduler]
step_delay = "soon"
`)
	_, err = LoadFromFiles(bad)
	assert.ErrorContains(t, err, `invalid duration "soon"`)
}
