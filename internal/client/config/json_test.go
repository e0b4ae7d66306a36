package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"server_endpoint_addr": "http://inventory.local:3000",
		"database_dsn":         "replica.db",
		"request_timeout":      "15s",
		"ping_interval":        "30s",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "http://inventory.local:3000", cfg.ServerEndpointAddr)
		assert.Equal(t, "replica.db", cfg.DatabaseDSN)
		assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
		assert.Equal(t, 30*time.Second, cfg.PingInterval)
	})

	t.Run("no config flag means no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			ServerEndpointAddr: "http://localhost:1234",
			DatabaseDSN:        "x.db",
			RequestTimeout:     2 * time.Second,
			PingInterval:       3 * time.Second,
		}
		parseJson(cfg)

		assert.Equal(t, "http://localhost:1234", cfg.ServerEndpointAddr)
		assert.Equal(t, "x.db", cfg.DatabaseDSN)
		assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
		assert.Equal(t, 3*time.Second, cfg.PingInterval)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
