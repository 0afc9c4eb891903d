package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(newFlags(t), "")
	require.NoError(t, err)

	assert.Equal(t, "v5.1.33", cfg.APIVersion)
	assert.Equal(t, 10*time.Second, cfg.PollInterval)
	assert.Equal(t, time.Duration(0), cfg.MaxWait)
	assert.Equal(t, 100, cfg.PageSize)
	assert.Equal(t, "maskctl.events", cfg.EventsExchange)
	assert.False(t, cfg.RequireRefreshSuccess)
}

func TestLoad_FilePrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "maskctl.yaml")
	content := "engine-url: http://engine.local/\nusername: admin\npassword: secret\npoll-interval: 5s\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("MASKCTL_USERNAME", "from-env")

	cfg, err := Load(newFlags(t, "--poll-interval=2s"), path)
	require.NoError(t, err)

	// Завершающий "/" убирается
	assert.Equal(t, "http://engine.local", cfg.EngineURL)
	// env важнее файла
	assert.Equal(t, "from-env", cfg.Username)
	assert.Equal(t, "secret", cfg.Password)
	// флаг важнее файла
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(newFlags(t), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateEngine(t *testing.T) {
	cfg := &Config{PollInterval: time.Second, PageSize: 10}

	err := cfg.ValidateEngine()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingField))
	assert.Contains(t, err.Error(), "engine-url, username, password")

	cfg.EngineURL = "http://engine"
	cfg.Username = "admin"
	cfg.Password = "secret"
	assert.NoError(t, cfg.ValidateEngine())

	cfg.PollInterval = 0
	assert.Error(t, cfg.ValidateEngine())
}
