//go:build windows

// Package main is the CLI entry point for bg3loader.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/silvermoth/bg3loader/internal/config"
	"github.com/silvermoth/bg3loader/internal/daemon"
	"github.com/silvermoth/bg3loader/internal/domain"
	"github.com/silvermoth/bg3loader/internal/infra"
	"github.com/silvermoth/bg3loader/internal/injector"
	"github.com/silvermoth/bg3loader/internal/launcher"
	"github.com/silvermoth/bg3loader/internal/paths"
	"github.com/silvermoth/bg3loader/internal/payload"
	"github.com/silvermoth/bg3loader/internal/usecase"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

var cliMode bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bg3loader",
	Short: "Native plugin loader for Baldur's Gate 3",
	Long: `bg3loader watches for the Baldur's Gate 3 process and injects the
native plugin loader into it. Plugin dlls are read from the plugins folder
under the game's local app data directory.

Run "watch" to stay resident, or "inject" for a bounded one-shot run while
the game is already starting.`,
	Version: Version,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stay resident and inject on every game start",
	Long: `Polls the process list for the game binaries and injects the plugin
loader each time the game starts. Runs until interrupted.`,
	RunE: runWatch,
}

var injectCmd = &cobra.Command{
	Use:   "inject",
	Short: "Inject into an already-starting game (bounded run)",
	Long: `Waits up to ten seconds for a game process to appear, injects the
plugin loader once, and exits.`,
	RunE: runInject,
}

// Hidden: registered as the interceptor's debugger target, never run by hand.
// Everything after "autostart" is the game command line, forwarded verbatim.
var autostartCmd = &cobra.Command{
	Use:                "autostart",
	Hidden:             true,
	DisableFlagParsing: true,
	RunE:               runAutostart,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bg3loader %s (commit: %s, built: %s)\n", Version, Commit, BuildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cliMode, "cli", false,
		"log to the console instead of the log file and skip popups")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(injectCmd)
	rootCmd.AddCommand(autostartCmd)
	rootCmd.AddCommand(versionCmd)
}

// env bundles everything the subcommands need after setup.
type env struct {
	cfg      config.Config
	targets  domain.TargetPathSet
	logger   *zap.Logger
	notifier domain.Notifier
	driver   *usecase.Driver
}

// setup acquires the single-instance guard and builds the collaborator stack.
// A second instance exits cleanly without doing any work.
func setup() (*env, error) {
	if _, err := infra.AcquireSingleInstance(); err != nil {
		if errors.Is(err, domain.ErrAlreadyRunning) {
			os.Exit(0)
		}
		return nil, err
	}

	pluginsDir, firstTime, err := paths.PluginsDir()
	if err != nil {
		return nil, err
	}

	logger, logLevel, err := createLogger(pluginsDir)
	if err != nil {
		return nil, err
	}

	notifier := newNotifier(logger)

	cfg, created, err := config.Load(filepath.Join(pluginsDir, "config.toml"))
	if err != nil {
		notifier.Fatal("Fatal Error", fmt.Sprintf("Failed to load config: %v", err))
	}

	if firstTime || created {
		notifier.Warn("Finish Setup", fmt.Sprintf(
			"The plugins folder was just created at\n%s\n\n"+
				"To install plugins, place the plugin dll files inside it.\n\n"+
				"Please also double-check config.toml there; install_root likely "+
				"needs to be adjusted to the game's installation path.", pluginsDir))
		os.Exit(0)
	}

	// Apply the configured level now that it is known.
	logLevel.SetLevel(cfg.LogLevel())

	targets, err := paths.GameBinaries(cfg.Core.InstallRoot)
	if err != nil {
		notifier.Fatal("Fatal Error", fmt.Sprintf("Failed to resolve game binaries: %v", err))
	}

	stager := payload.NewStager(logger)
	inj := injector.NewLoaderInjector(stager, logger)
	driver := usecase.NewDriver(inj, notifier, logger)

	logger.Info("bg3loader starting",
		zap.String("version", Version),
		zap.String("plugins_dir", pluginsDir),
		zap.String("install_root", cfg.Core.InstallRoot))

	return &env{
		cfg:      cfg,
		targets:  targets,
		logger:   logger,
		notifier: notifier,
		driver:   driver,
	}, nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	// Reference the activity event for our lifetime so autostart handoffs
	// observe a live watcher.
	sig, err := infra.OpenOrCreateSignal()
	if err != nil {
		e.logger.Warn("activity event unavailable", zap.Error(err))
	} else {
		defer sig.Close()
	}

	spec := domain.WatchSpec{
		Targets:  e.targets,
		Interval: 2 * time.Second,
		OneShot:  false,
	}
	return runWatcher(e, spec)
}

func runInject(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	e.driver.FatalOnTimeout = true
	spec := domain.WatchSpec{
		Targets:  e.targets,
		Interval: time.Second,
		Timeout:  10 * time.Second,
		OneShot:  true,
	}
	return runWatcher(e, spec)
}

func runAutostart(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	// Nudge a resident watcher, if any, before taking over this launch.
	if sig, err := infra.OpenOrCreateSignal(); err == nil {
		_ = sig.Raise()
		defer sig.Close()
	}

	auto := launcher.NewAutostart(e.targets, e.logger)
	pid, err := auto.Launch(args)
	if err != nil {
		var usage *domain.UsageError
		if errors.As(err, &usage) {
			e.notifier.Fatal("No direct launch",
				"This autostart program is not a launcher. Please check the "+
					"instructions for how to use it.\n\n"+usage.Reason)
		}
		e.notifier.Fatal("Launch failure", fmt.Sprintf("Failed to start the game: %v", err))
	}

	e.driver.FatalOnTimeout = true
	spec := domain.WatchSpec{
		KnownPID: int32(pid),
		Interval: time.Second,
		Timeout:  10 * time.Second,
		OneShot:  true,
	}
	return runWatcher(e, spec)
}

func runWatcher(e *env, spec domain.WatchSpec) error {
	watcher, err := daemon.NewProcessWatcher(spec, infra.NewProcessLister(), e.logger)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := watcher.Run(ctx, e.driver.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newNotifier picks popups for the normal windowless run, console output
// with --cli.
func newNotifier(logger *zap.Logger) domain.Notifier {
	if cliMode {
		return infra.NewLogNotifier(logger)
	}
	return infra.NewPopupNotifier(logger)
}

// createLogger writes to logs/bg3loader.log inside the plugins dir, or to
// the console in --cli mode. The file core is built by hand: zap's
// OutputPaths treats entries as URLs and chokes on drive-letter paths. The
// returned atomic level lets setup apply the configured level later without
// reopening the log file.
func createLogger(pluginsDir string) (*zap.Logger, zap.AtomicLevel, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)

	if cliMode {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = level
		logger, err := cfg.Build()
		return logger, level, err
	}

	logsDir, err := paths.LogsDir(pluginsDir)
	if err != nil {
		return nil, level, err
	}

	f, err := os.OpenFile(filepath.Join(logsDir, "bg3loader.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, level, errors.Wrap(err, "open log file")
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), level)
	return zap.New(core), level, nil
}
