package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	physfs "github.com/wippyai/physfs-bridge"
	"github.com/wippyai/physfs-bridge/archiver"
	"github.com/wippyai/physfs-bridge/config"
	"github.com/wippyai/physfs-bridge/fault"
	"github.com/wippyai/physfs-bridge/stream"
	"github.com/wippyai/physfs-bridge/wasmhost"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to config file (default: "+filepath.Join(config.Dir(), "config.yaml")+")")
		wasmFile   = flag.String("wasm", "", "Engine module to run (overrides engine.module)")
		entry      = flag.String("entry", "", "Export to call (overrides engine.entry)")
		list       = flag.Bool("list", false, "List configured archivers and exit")
	)
	flag.Parse()

	override := func(c *config.Config) {
		if *wasmFile != "" {
			c.Engine.Module = *wasmFile
		}
		if *entry != "" {
			c.Engine.Entry = *entry
		}
		if flag.NArg() > 0 {
			c.Engine.Args = flag.Args()
		}
	}

	cfg, err := config.Load(*configPath, override)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Usage: physfs-host [-config file] -wasm <engine.wasm> [-entry name] [args...]")
		os.Exit(1)
	}

	if err := run(cfg, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, listOnly bool) error {
	logger, err := cfg.Logging.Build()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	physfs.SetLogger(logger)

	archivers, err := config.NewArchivers(cfg.Archivers)
	if err != nil {
		return err
	}

	if listOnly {
		fmt.Printf("Archivers: %d\n", len(archivers))
		for i, a := range archivers {
			info := a.Info()
			fmt.Printf("  [%d] %-6s %s\n", i, info.Extension, info.Description)
		}
		return nil
	}

	ctx := context.Background()
	if cfg.Engine.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Engine.Timeout)
		defer cancel()
	}

	rc := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if cfg.Engine.MemoryLimitPages > 0 {
		rc = rc.WithMemoryLimitPages(cfg.Engine.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, rc)
	defer rt.Close(context.Background())

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		return fmt.Errorf("instantiate WASI: %w", err)
	}

	host := wasmhost.New(rt, wasmhost.WithModuleName(cfg.Engine.HostModule))
	for _, a := range archivers {
		host.RegisterArchiver(a)
	}
	if _, err := host.Instantiate(ctx); err != nil {
		return err
	}

	data, err := os.ReadFile(cfg.Engine.Module)
	if err != nil {
		return fmt.Errorf("read module: %w", err)
	}

	argv := append([]string{filepath.Base(cfg.Engine.Module)}, cfg.Engine.Args...)
	modCfg := wazero.NewModuleConfig().
		WithArgs(argv...).
		WithStdin(os.Stdin).
		WithStdout(os.Stdout).
		WithStderr(os.Stderr).
		WithStartFunctions()

	mod, err := rt.InstantiateWithConfig(ctx, data, modCfg)
	if err != nil {
		return fmt.Errorf("instantiate %s: %w", cfg.Engine.Module, err)
	}
	defer mod.Close(context.Background())

	fn := mod.ExportedFunction(cfg.Engine.Entry)
	if fn == nil {
		return fmt.Errorf("module does not export %q", cfg.Engine.Entry)
	}

	logger.Info("calling guest entry",
		zap.String("module", cfg.Engine.Module),
		zap.String("entry", cfg.Engine.Entry),
		zap.Int("archivers", host.Archivers()))

	// Faults are parked per OS thread, so the call and the error readback
	// share one locked thread.
	err = fault.Locked(func() error {
		_, callErr := fn.Call(ctx)
		var exit *sys.ExitError
		if stderrors.As(callErr, &exit) && exit.ExitCode() == 0 {
			callErr = nil
		}
		if mod.ExportedFunction(wasmhost.ExportGetErrorCode) != nil {
			if lastErr := host.LastError(ctx, mod); lastErr != nil {
				logger.Warn("engine reported an error", zap.Error(lastErr))
			}
		}
		return callErr
	})
	if err != nil {
		return fmt.Errorf("call %s: %w", cfg.Engine.Entry, err)
	}

	if n, m := stream.Live(), archiver.Live(); n > 0 || m > 0 {
		logger.Warn("guest left handles open", zap.Int("streams", n), zap.Int("archives", m))
	}
	return nil
}
