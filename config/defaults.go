package config

import (
	"strings"

	"github.com/wippyai/physfs-bridge/wasmhost"
)

// ApplyDefaults fills unset fields. Explicit values are kept.
func ApplyDefaults(cfg *Config) {
	d := Default()

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	if cfg.Logging.Encoding == "" {
		cfg.Logging.Encoding = d.Logging.Encoding
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = d.Logging.Output
	}

	if cfg.Engine.Entry == "" {
		cfg.Engine.Entry = d.Engine.Entry
	}
	if cfg.Engine.HostModule == "" {
		cfg.Engine.HostModule = d.Engine.HostModule
	}

	if len(cfg.Archivers) == 0 {
		cfg.Archivers = d.Archivers
	}
}

// Default returns the configuration used when nothing is set. Its engine
// module is empty, so it only validates once a module is supplied.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "console",
			Output:   "stderr",
		},
		Engine: EngineConfig{
			Entry:      "_start",
			HostModule: wasmhost.DefaultModuleName,
		},
		Archivers: []ArchiverConfig{{Type: TypeZip}},
	}
}
