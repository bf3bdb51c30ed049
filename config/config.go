// Package config loads the host configuration.
//
// Configuration sources (in order of precedence):
//  1. Overrides passed to Load (CLI flags)
//  2. Environment variables (PHYSFS_*)
//  3. Configuration file (YAML or TOML)
//  4. Default values
package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/physfs-bridge/errors"
)

// EnvPrefix prefixes every environment override, e.g. PHYSFS_LOGGING_LEVEL.
const EnvPrefix = "PHYSFS"

// Config is the complete host configuration.
type Config struct {
	// Logging controls log output
	Logging LoggingConfig `mapstructure:"logging"`

	// Engine selects the WebAssembly engine build and how it is run
	Engine EngineConfig `mapstructure:"engine"`

	// Archivers are registered with the engine in order
	Archivers []ArchiverConfig `mapstructure:"archivers" validate:"dive"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum level: debug, info, warn or error
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error DEBUG INFO WARN ERROR"`

	// Encoding is json or console
	Encoding string `mapstructure:"encoding" validate:"required,oneof=json console"`

	// Output is stdout, stderr or a file path
	Output string `mapstructure:"output" validate:"required"`
}

// EngineConfig describes the guest module.
type EngineConfig struct {
	// Module is the path of the engine's .wasm build
	Module string `mapstructure:"module" validate:"required"`

	// Entry is the export called once the guest is instantiated
	Entry string `mapstructure:"entry" validate:"required"`

	// Args are passed to the guest through WASI
	Args []string `mapstructure:"args"`

	// HostModule is the import module name the guest links the bridge under
	HostModule string `mapstructure:"host_module" validate:"required"`

	// MemoryLimitPages caps guest memory in 64KiB pages; 0 keeps the runtime default
	MemoryLimitPages uint32 `mapstructure:"memory_limit_pages" validate:"lte=65536"`

	// Timeout bounds the entry call; 0 means no limit
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

// Build returns the zap logger the logging section describes.
func (c LoggingConfig) Build() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(c.Level))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "logging.level")
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = c.Encoding
	if c.Encoding == "console" {
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	zc.OutputPaths = []string{c.Output}
	zc.ErrorOutputPaths = []string{"stderr"}

	l, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "build logger")
	}
	return l, nil
}

// Load reads configuration from path (or the default location when path is
// empty), the environment and defaults, applies overrides and validates the
// result.
func Load(path string, overrides ...func(*Config)) (*Config, error) {
	v := viper.New()
	setupViper(v, path)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "unmarshal config")
	}

	for _, o := range overrides {
		o(&cfg)
	}
	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setupViper(v *viper.Viper, path string) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about.
	d := Default()
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.encoding", d.Logging.Encoding)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("engine.module", "")
	v.SetDefault("engine.entry", d.Engine.Entry)
	v.SetDefault("engine.args", []string{})
	v.SetDefault("engine.host_module", d.Engine.HostModule)
	v.SetDefault("engine.memory_limit_pages", d.Engine.MemoryLimitPages)
	v.SetDefault("engine.timeout", d.Engine.Timeout)

	if path != "" {
		v.SetConfigFile(path)
		return
	}
	v.AddConfigPath(Dir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if stderrors.As(err, &notFound) {
		return nil
	}
	return errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "read config file")
}

// Dir returns the default configuration directory,
// $XDG_CONFIG_HOME/physfs-bridge or ~/.config/physfs-bridge.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "physfs-bridge")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "physfs-bridge")
}
