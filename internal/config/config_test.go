package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoad_JSONOverridesSubset(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{
		"ip": "127.0.0.1",
		"port": 8080,
		"apionly": true,
		"gnames_offset": 1024,
		"mapmanager_name": "OtherManager"
	}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.IP)
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.APIOnly)
	assert.Equal(t, uint64(1024), cfg.NameTableOffset)
	assert.Equal(t, uint64(0x4008F80), cfg.ObjectArrayOffset)
	assert.Equal(t, "OtherManager", cfg.ManagerName)
	assert.Equal(t, 3*time.Second, cfg.PollInterval())
}

func TestLoad_HCL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.hcl")
	require.NoError(t, os.WriteFile(path, []byte("port = 9000\nroot = \"/srv/web\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "/srv/web", cfg.WebRoot("/ignored"))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", `{"port": `},
		{"wrong type", `{"port": "high"}`},
		{"unknown key", `{"colour": "red"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Port = 0
	cfg.ManagerName = ""
	cfg.IP = "not-an-ip"
	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "port 0")
	assert.Contains(t, err.Error(), "mapmanager_name")
	assert.Contains(t, err.Error(), "not-an-ip")
}

func TestAddresses(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "0.0.0.0:7012", cfg.ListenAddr())
	assert.Equal(t, "127.0.0.1", cfg.ClientHost())
	assert.Equal(t, "http://127.0.0.1:7012/api/actors", cfg.URL("/api/actors"))

	cfg.IP = "192.168.1.5"
	assert.Equal(t, "http://192.168.1.5:7012/api/stop", cfg.URL("/api/stop"))

	cfg.IP = "::"
	assert.Equal(t, "127.0.0.1", cfg.ClientHost())
	assert.Equal(t, filepath.Join("/opt/mod", "web"), cfg.WebRoot("/opt/mod"))
}
