package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() Config {
	var c Config
	c.LoadDefaults()
	return c
}

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func mapLookup(m map[string]string) lookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()
	assert.Equal(t, "planner.db", c.DatabasePath)
	assert.Equal(t, "warn", c.LogLevel)
	assert.Equal(t, 30*time.Second, c.ViewCacheTTL)
	assert.False(t, c.Encrypt)

	loc, err := c.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    func(c *Config)
		wantErr bool
	}{
		{
			name: "all flags",
			args: []string{"-d", "trips.db", "-l", "debug", "-e", "/tmp/out", "-x"},
			want: func(c *Config) {
				c.DatabasePath = "trips.db"
				c.LogLevel = "debug"
				c.ExportDir = "/tmp/out"
				c.Encrypt = true
			},
		},
		{
			name: "unknown flags are ignored",
			args: []string{"-c", "x.json", "-zzz", "1", "-d=a.db"},
			want: func(c *Config) { c.DatabasePath = "a.db" },
		},
		{
			name:    "bad bool",
			args:    []string{"-x=maybe"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := defaults()
			err := parseFlags(&got, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			want := defaults()
			tt.want(&want)
			assert.Empty(t, cmp.Diff(want, got))
		})
	}
}

func TestParseJson(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"database_path":  "/data/p.db",
		"view_cache_ttl": "5s",
		"encrypt":        true,
		"timezone":       "Asia/Seoul",
	})

	t.Run("partial file overrides only named fields", func(t *testing.T) {
		cfg := defaults()
		require.NoError(t, parseJson(&cfg, []string{"-config", path}))

		want := defaults()
		want.DatabasePath = "/data/p.db"
		want.ViewCacheTTL = 5 * time.Second
		want.Encrypt = true
		want.Timezone = "Asia/Seoul"
		assert.Empty(t, cmp.Diff(want, cfg))
	})

	t.Run("no flag leaves config alone", func(t *testing.T) {
		cfg := defaults()
		require.NoError(t, parseJson(&cfg, nil))
		assert.Empty(t, cmp.Diff(defaults(), cfg))
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ nope`), 0o600))
		cfg := defaults()
		require.Error(t, parseJson(&cfg, []string{"-c", bad}))
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := defaults()
		require.Error(t, parseJson(&cfg, []string{"-c", filepath.Join(t.TempDir(), "none.json")}))
	})
}

func TestParseEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "planner.env")
	require.NoError(t, os.WriteFile(envFile, []byte("PLANNER_LOG_LEVEL=info\nPLANNER_EXPORT_DIR=from-file\n"), 0o600))

	cfg := defaults()
	err := parseEnv(&cfg, mapLookup(map[string]string{
		EnvFileVar:               envFile,
		"PLANNER_EXPORT_DIR":     "from-env",
		"PLANNER_ENCRYPT":        "true",
		"PLANNER_VIEW_CACHE_TTL": "1m",
	}))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "from-env", cfg.ExportDir, "real environment wins over the file")
	assert.True(t, cfg.Encrypt)
	assert.Equal(t, time.Minute, cfg.ViewCacheTTL)
}

func TestParseEnv_MissingFileIsFine(t *testing.T) {
	cfg := defaults()
	require.NoError(t, parseEnv(&cfg, mapLookup(map[string]string{EnvFileVar: filepath.Join(t.TempDir(), "absent.env")})))
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestParseEnv_BadValues(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.env")
	for _, env := range []map[string]string{
		{"PLANNER_ENCRYPT": "sometimes"},
		{"PLANNER_VIEW_CACHE_TTL": "soon"},
	} {
		env[EnvFileVar] = missing
		cfg := defaults()
		require.Error(t, parseEnv(&cfg, mapLookup(env)))
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	t.Setenv(EnvFileVar, filepath.Join(t.TempDir(), "absent.env"))
	t.Setenv("PLANNER_DATABASE_PATH", "env.db")
	t.Setenv("PLANNER_LOG_LEVEL", "error")

	path := writeTempJSON(t, map[string]any{"log_level": "info", "export_dir": "json-out"})

	cfg, err := LoadConfig([]string{"-c", path, "-l", "debug"})
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.DatabasePath)
	assert.Equal(t, "json-out", cfg.ExportDir)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_BadTimezone(t *testing.T) {
	t.Setenv(EnvFileVar, filepath.Join(t.TempDir(), "absent.env"))
	t.Setenv("PLANNER_TIMEZONE", "Mars/Olympus")

	_, err := LoadConfig(nil)
	require.Error(t, err)
}
