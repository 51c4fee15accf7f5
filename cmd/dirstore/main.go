package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/GriffinCanCode/dirstore/internal/config"
	"github.com/GriffinCanCode/dirstore/internal/logging"
	"github.com/GriffinCanCode/dirstore/internal/monitoring"
	"github.com/GriffinCanCode/dirstore/internal/paths"
	"github.com/GriffinCanCode/dirstore/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const usage = `usage: dirstore [flags] <command> [args]

commands:
  ls [dir]               list a namespace
  cat <file>             print a file
  lines <file>           print a file with line numbers
  csv2json <csv> [out]   convert a CSV table to JSON
  hash <file>            print the BLAKE3 digest of a file
  clear [dir]            empty the temp root or a namespace below it

flags:
`

var errUsage = errors.New("invalid usage")

func main() {
	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// app holds everything a command needs.
type app struct {
	cfg    *config.Config
	root   storage.Dir
	temp   storage.Dir
	opts   []storage.Option
	logger *logging.Logger
	out    io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// Parse flags
	fset := flag.NewFlagSet("dirstore", flag.ContinueOnError)
	fset.SetOutput(stderr)
	fset.Usage = func() {
		fmt.Fprint(stderr, usage)
		fset.PrintDefaults()
	}
	root := fset.String("root", "", "Store root (overrides STORE_ROOT)")
	envFile := fset.String("env", ".env", "Dotenv file to load when present")
	dev := fset.Bool("dev", false, "Development logging (overrides LOG_DEV)")
	if err := fset.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fset.NArg() == 0 {
		fset.Usage()
		return 2
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(stderr, "dirstore: %v\n", err)
		return 1
	}
	if *root != "" {
		cfg.Storage.Root = *root
	}
	if *dev {
		cfg.Logging.Development = true
	}

	a, reg, err := newApp(cfg, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "dirstore: %v\n", err)
		return 1
	}
	defer func() { _ = a.logger.Sync() }()

	err = a.dispatch(ctx, fset.Arg(0), fset.Args()[1:])
	if reg != nil {
		if werr := monitoring.WriteText(stderr, reg); werr != nil {
			a.logger.Warn("Failed to write metrics", zap.Error(werr))
		}
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "dirstore: %v\n", err)
		fset.Usage()
		return 2
	default:
		a.logger.Debug("Command failed", zap.String("command", fset.Arg(0)), zap.Error(err))
		fmt.Fprintf(stderr, "dirstore: %v\n", err)
		return 1
	}
}

func newApp(cfg *config.Config, stdout io.Writer) (*app, *prometheus.Registry, error) {
	var opts []storage.Option
	opts = append(opts, storage.WithMaxDepth(cfg.Storage.MaxDepth))

	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		opts = append(opts, storage.WithObserver(monitoring.NewMetrics(reg)))
	}

	tempRoot := cfg.Storage.TempRoot
	if !filepath.IsAbs(tempRoot) {
		tempRoot = filepath.Join(cfg.Storage.Root, tempRoot)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	if cfg.Logging.Development {
		logCfg = logging.DevelopmentConfig()
	}
	if cfg.Logging.File != "" {
		// The log file itself is written without a logger
		logs := storage.NewTemp(paths.LogDir(tempRoot), opts...)
		logCfg.File = logs.File(cfg.Logging.File)
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	opts = append(opts, storage.WithLogger(logger.Logger))
	a := &app{
		cfg:    cfg,
		root:   storage.NewDir(cfg.Storage.Root, opts...),
		temp:   storage.NewTemp(tempRoot, opts...),
		opts:   opts,
		logger: logger,
		out:    stdout,
	}
	if err := a.root.Err(); err != nil {
		return nil, nil, err
	}
	a.logger.Debug("Store opened",
		zap.String("root", a.root.Path()),
		zap.String("temp", a.temp.Input()))
	return a, reg, nil
}
