package am

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/syntaxis/errors"
	"gopkg.in/yaml.v3"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, "syntaxis.db", cfg.Database.Path)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1:8540", cfg.GetServerAddress())
	assert.True(t, cfg.Generator.LogOverrides)
	assert.Equal(t, 100, cfg.GetMaxCount())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	content := `
[database]
path = "/var/lib/syntaxis/lexicon.db"

[server]
port = 9000
rate_limit = 0.0

[lexicon]
seed_paths = ["seeds/nouns.yaml", "seeds/verbs.toml"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), DefaultFilePermissions))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/syntaxis/lexicon.db", cfg.GetDatabasePath())
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"seeds/nouns.yaml", "seeds/verbs.toml"}, cfg.Lexicon.SeedPaths)
	// untouched sections keep their defaults
	assert.Equal(t, "everforest", cfg.Server.LogTheme)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"negative port", func(c *Config) { c.Server.Port = -1 }, true},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, true},
		{"zero rate limit is unlimited", func(c *Config) { c.Server.RateLimit = 0 }, false},
		{"negative rate limit", func(c *Config) { c.Server.RateLimit = -2 }, true},
		{"rate limit without burst", func(c *Config) { c.Server.RateBurst = 0 }, true},
		{"negative max count", func(c *Config) { c.Generator.MaxCount = -1 }, true},
		{"unknown theme", func(c *Config) { c.Server.LogTheme = "solarized" }, true},
		{"empty seed path", func(c *Config) { c.Lexicon.SeedPaths = []string{""} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			cfg, err := LoadWithViper(v)
			require.NoError(t, err)

			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	t.Setenv("SYNTAXIS_DATABASE_PATH", "/tmp/env.db")
	t.Setenv("SYNTAXIS_SERVER_PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
	assert.Equal(t, 9100, cfg.Server.Port)

	again, err := Load()
	require.NoError(t, err)
	assert.Same(t, cfg, again)
}

func TestMarshal(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	out, err := Marshal(v, FormatTOML)
	require.NoError(t, err)
	var fromTOML map[string]interface{}
	require.NoError(t, toml.Unmarshal(out, &fromTOML))
	assert.Contains(t, fromTOML, "server")

	out, err = Marshal(v, FormatJSON)
	require.NoError(t, err)
	var fromJSON map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &fromJSON))
	assert.Equal(t, "syntaxis.db", fromJSON["database"].(map[string]interface{})["path"])

	out, err = Marshal(v, FormatYAML)
	require.NoError(t, err)
	var fromYAML map[string]interface{}
	require.NoError(t, yaml.Unmarshal(out, &fromYAML))
	assert.Contains(t, fromYAML, "generator")

	_, err = Marshal(v, "xml")
	assert.True(t, errors.IsInvalidRequestError(err))
}

func TestConfigWatcher_Reload(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	dir := t.TempDir()
	path := filepath.Join(dir, "am.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 9001\n"), DefaultFilePermissions))

	cw, err := NewConfigWatcher(path)
	require.NoError(t, err)
	cw.debouncePeriod = 10 * time.Millisecond

	reloaded := make(chan *Config, 1)
	cw.OnReload(func(c *Config) error {
		select {
		case reloaded <- c:
		default:
		}
		return nil
	})
	cw.Start()
	t.Cleanup(func() { _ = cw.Stop() })

	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 9002\n"), DefaultFilePermissions))

	select {
	case cfg := <-reloaded:
		assert.NotNil(t, cfg)
	case <-time.After(5 * time.Second):
		t.Fatal("config watcher did not fire")
	}
}
