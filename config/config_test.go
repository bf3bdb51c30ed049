package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/physfs-bridge/errors"
	"github.com/wippyai/physfs-bridge/wasmhost"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
logging:
  level: DEBUG
engine:
  module: engine.wasm
  args: [game, -fullscreen]
  memory_limit_pages: 512
  timeout: 30s
archivers:
  - type: zip
  - type: dir
    read_only: true
    options:
      root: /srv/game
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Encoding)
	assert.Equal(t, "engine.wasm", cfg.Engine.Module)
	assert.Equal(t, "_start", cfg.Engine.Entry)
	assert.Equal(t, []string{"game", "-fullscreen"}, cfg.Engine.Args)
	assert.Equal(t, wasmhost.DefaultModuleName, cfg.Engine.HostModule)
	assert.EqualValues(t, 512, cfg.Engine.MemoryLimitPages)
	assert.Equal(t, 30*time.Second, cfg.Engine.Timeout)

	require.Len(t, cfg.Archivers, 2)
	assert.Equal(t, TypeDir, cfg.Archivers[1].Type)
	assert.True(t, cfg.Archivers[1].ReadOnly)
	assert.Equal(t, "/srv/game", cfg.Archivers[1].Options["root"])
}

func TestLoad_TOML(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[engine]
module = "engine.wasm"
entry = "main"

[logging]
encoding = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "main", cfg.Engine.Entry)
	assert.Equal(t, "json", cfg.Logging.Encoding)
	assert.Equal(t, []ArchiverConfig{{Type: TypeZip}}, cfg.Archivers)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
engine:
  module: engine.wasm
  host_module: from_file
`)
	t.Setenv("PHYSFS_ENGINE_HOST_MODULE", "from_env")
	t.Setenv("PHYSFS_LOGGING_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.Engine.HostModule)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_OverridesWin(t *testing.T) {
	path := writeConfig(t, "config.yaml", "engine:\n  module: engine.wasm\n")

	cfg, err := Load(path, func(c *Config) { c.Engine.Module = "other.wasm" })
	require.NoError(t, err)
	assert.Equal(t, "other.wasm", cfg.Engine.Module)
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("", func(c *Config) { c.Engine.Module = "engine.wasm" })
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "physfs-bridge"), Dir())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", "engine: [module\n")

	_, err := Load(path)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseConfig, Kind: errors.KindInvalidData})
}

func TestLoad_ModuleRequired(t *testing.T) {
	path := writeConfig(t, "config.yaml", "logging:\n  level: info\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseConfig, Kind: errors.KindInvalidInput})
	assert.Contains(t, err.Error(), "Engine.Module")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Engine.Module = "engine.wasm"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default with module", func(*Config) {}, true},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, false},
		{"bad encoding", func(c *Config) { c.Logging.Encoding = "text" }, false},
		{"too much memory", func(c *Config) { c.Engine.MemoryLimitPages = 65537 }, false},
		{"negative timeout", func(c *Config) { c.Engine.Timeout = -time.Second }, false},
		{"no archivers", func(c *Config) { c.Archivers = nil }, false},
		{"unknown archiver", func(c *Config) { c.Archivers = []ArchiverConfig{{Type: "rar"}} }, false},
		{"dir without root", func(c *Config) { c.Archivers = []ArchiverConfig{{Type: TypeDir}} }, false},
		{"dir with unknown option", func(c *Config) {
			c.Archivers = []ArchiverConfig{{Type: TypeDir, Options: map[string]any{"root": ".", "depth": 2}}}
		}, false},
		{"dir with root", func(c *Config) {
			c.Archivers = []ArchiverConfig{{Type: TypeDir, Options: map[string]any{"root": "."}}}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging:   LoggingConfig{Level: "ERROR", Encoding: "json", Output: "stdout"},
		Engine:    EngineConfig{Entry: "run", HostModule: "env"},
		Archivers: []ArchiverConfig{{Type: TypeMemory}},
	}
	ApplyDefaults(cfg)

	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Encoding)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, "run", cfg.Engine.Entry)
	assert.Equal(t, "env", cfg.Engine.HostModule)
	assert.Equal(t, []ArchiverConfig{{Type: TypeMemory}}, cfg.Archivers)
}

func TestLoggingBuild(t *testing.T) {
	for _, enc := range []string{"json", "console"} {
		l, err := LoggingConfig{Level: "warn", Encoding: enc, Output: "stderr"}.Build()
		require.NoError(t, err, enc)
		assert.False(t, l.Core().Enabled(-1), enc)
		assert.True(t, l.Core().Enabled(1), enc)
	}

	_, err := LoggingConfig{Level: "loud", Encoding: "json", Output: "stderr"}.Build()
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseConfig, Kind: errors.KindInvalidInput})
}
