package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.DefaultServer)

	srv, err := cfg.GetDefaultServer()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8088", srv.URL)
	assert.FileExists(t, path)
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)

	require.NoError(t, cfg.AddServer("prod", "https://shop.example/", "Production", "hunter2"))
	require.NoError(t, cfg.SetDefault("prod"))

	reloaded, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "prod", reloaded.DefaultServer)
	srv, err := reloaded.GetServer("prod")
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example", srv.URL)
	assert.Equal(t, "hunter2", srv.Token)

	require.NoError(t, reloaded.RemoveServer("prod"))
	assert.Equal(t, "local", reloaded.DefaultServer)
	assert.Error(t, reloaded.RemoveServer("prod"))
}

func TestConfigResolve(t *testing.T) {
	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.AddServer("prod", "https://shop.example", "", "hunter2"))

	tests := []struct {
		name      string
		server    string
		token     string
		wantURL   string
		wantToken string
	}{
		{name: "default profile", server: "", wantURL: "http://localhost:8088"},
		{name: "token from matching profile", server: "https://shop.example/", wantURL: "https://shop.example", wantToken: "hunter2"},
		{name: "explicit token wins", server: "https://shop.example", token: "other", wantURL: "https://shop.example", wantToken: "other"},
		{name: "unknown server", server: "http://elsewhere:9000", wantURL: "http://elsewhere:9000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, token := cfg.Resolve(tt.server, tt.token)
			assert.Equal(t, tt.wantURL, url)
			assert.Equal(t, tt.wantToken, token)
		})
	}

	var nilCfg *Config
	url, token := nilCfg.Resolve("http://x/", "t")
	assert.Equal(t, "http://x", url)
	assert.Equal(t, "t", token)
}

func TestConfigRejectsEmptyServer(t *testing.T) {
	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Error(t, cfg.AddServer("", "http://x", "", ""))
	assert.Error(t, cfg.AddServer("x", "", "", ""))
	assert.Error(t, cfg.SetDefault("missing"))
}
