package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, "/", cfg.HTTP.BasePath)
	assert.True(t, cfg.DemoMode())
	assert.Equal(t, time.Second, cfg.UI.SuccessDelay)
	assert.Equal(t, 1500*time.Millisecond, cfg.UI.ReviewCloseDelay)
	assert.Equal(t, 3*time.Second, cfg.UI.MessageTTL)
	assert.Equal(t, "toolfinder_session", cfg.Session.CookieName)
	assert.Equal(t, "admin@example.com", cfg.Demo.AdminEmail)
	assert.Equal(t, 10000, cfg.Session.StateCapacity)
	assert.Equal(t, 12*time.Hour, cfg.Session.StateIdleTTL)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "toolfinder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":9000"
  basePath: /directory
api:
  baseURL: http://file.example
ui:
  successDelay: 250ms
`), 0o600))

	t.Setenv("TOOLFINDER_API_BASEURL", "http://env.example")

	v := NewViper()
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--addr", ":7000"}))
	require.NoError(t, BindFlags(v, fs))

	cfg, err := Load(v, path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.HTTP.Address, "explicit flag wins")
	assert.Equal(t, "http://env.example", cfg.API.BaseURL, "env wins over file")
	assert.Equal(t, "/directory", cfg.HTTP.BasePath)
	assert.Equal(t, 250*time.Millisecond, cfg.UI.SuccessDelay)
	assert.False(t, cfg.DemoMode())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	v := NewViper()
	v.Set("session.blockKey", "short")
	v.Set("ui.messageTTL", "-1s")
	v.Set("session.stateCapacity", -1)

	_, err := Load(v, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session.blockKey")
	assert.Contains(t, err.Error(), "ui delays")
	assert.Contains(t, err.Error(), "session state limits")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
