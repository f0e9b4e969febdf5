// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// webwx-bot logs one account into the web messaging service and
// streams its incoming messages to the log.
//
// On start it resumes the session saved in the storage file. When there
// is none, or the server rejects it, it prints a QR code link to scan
// with the phone app. The session is saved again after every sync that
// brings changes, so a restart within the session's lifetime needs no
// new scan.
//
// Usage:
//
//	webwx-bot [--config path] [--storage path] [--mode normal|desktop] [--log-level level]
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/webwx/bot"
	"github.com/bureau-foundation/webwx/lib/config"
	"github.com/bureau-foundation/webwx/lib/version"
	"github.com/bureau-foundation/webwx/session"
	"github.com/bureau-foundation/webwx/transport"
	"github.com/bureau-foundation/webwx/webwx"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// flags holds command-line overrides. Empty values leave the
// configuration file's setting in place.
type flags struct {
	configPath string
	storage    string
	mode       string
	logLevel   string
}

func run() error {
	var options flags
	flagSet := pflag.NewFlagSet("webwx-bot", pflag.ContinueOnError)
	flagSet.StringVar(&options.configPath, "config", "", "path to the config file (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&options.storage, "storage", "", "path to the session storage file")
	flagSet.StringVar(&options.mode, "mode", "", "login mode: normal or desktop")
	flagSet.StringVar(&options.logLevel, "log-level", "", "log level: debug, info, warn, error")
	showVersion := flagSet.Bool("version", false, "print version information and exit")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if *showVersion {
		version.Print("webwx-bot")
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg, err := loadConfig(options)
	if err != nil {
		return err
	}
	logger, err := newLogger(os.Stderr, cfg.Log.Level, term.IsTerminal(int(os.Stderr.Fd())))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runBot(ctx, cfg, logger, os.Stdout)
}

// loadConfig reads the config file named by --config or, failing that,
// by the environment, then applies the remaining flags on top. Without
// either the defaults are used.
func loadConfig(options flags) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case options.configPath != "":
		cfg, err = config.LoadFile(options.configPath)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}

	if options.storage != "" {
		cfg.Storage.Path = options.storage
	}
	if options.mode != "" {
		cfg.Mode = options.mode
	}
	if options.logLevel != "" {
		cfg.Log.Level = options.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger returns a text logger for terminals and a JSON logger
// otherwise.
func newLogger(writer io.Writer, levelName string, terminal bool) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", levelName, err)
	}
	options := &slog.HandlerOptions{Level: level}
	if terminal {
		return slog.New(slog.NewTextHandler(writer, options)), nil
	}
	return slog.New(slog.NewJSONHandler(writer, options)), nil
}

func runBot(ctx context.Context, cfg *config.Config, logger *slog.Logger, output io.Writer) error {
	mode, err := webwx.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}
	passphrase, err := cfg.ReadPassphrase()
	if err != nil {
		return err
	}

	store, err := session.NewFileStore(session.FileStoreConfig{
		Path:       cfg.Storage.Path,
		Passphrase: passphrase,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer store.Close()

	httpTransport := transport.New(transport.Config{
		Hooks:  transport.DefaultHooks(),
		Logger: logger,
	})
	caller, err := webwx.New(webwx.Config{
		Transport: httpTransport,
		Mode:      mode,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	instance, err := bot.New(bot.Config{
		Caller:            caller,
		Cookies:           httpTransport,
		Store:             store,
		Handler:           newConsoleHandler(output, caller, logger),
		Logger:            logger,
		LoginPollInterval: cfg.Login.PollInterval,
		SyncInterval:      cfg.Sync.Interval,
	})
	if err != nil {
		return err
	}

	logger.Info("starting",
		"version", version.Info(),
		"mode", mode.String(),
		"storage", store.Path(),
		"encrypted", passphrase != "",
	)
	if err := instance.HotLogin(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("login: %w", err)
	}
	return instance.Run(ctx)
}
