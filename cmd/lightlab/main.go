// Command lightlab runs the lighting sandbox: a render window plus browser panels for lights,
// objects and the environment.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/oxy-lightlab/engine/logger"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/app"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/config"
	"go.uber.org/zap"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "lightlab:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("lightlab", flag.ContinueOnError)
	configPath := flags.String("config", "lightlab.toml", "path to the TOML configuration")
	addr := flags.String("addr", "", "panel server address, overrides server.addr")
	writeDefaults := flags.Bool("write-config", false, "write the default configuration to -config and exit")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *writeDefaults {
		return config.Save(*configPath, config.Default())
	}

	cfg, watch, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		return err
	}
	defer logger.Sync()

	var opts []app.AppBuilderOption
	if watch {
		opts = append(opts, app.WithConfigPath(*configPath))
	}
	a, err := app.NewApp(cfg, opts...)
	if err != nil {
		logger.Log.Error("sandbox setup failed", zap.Error(err))
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Run(ctx)
}

// loadConfig reads path, falling back to the defaults when the file does not exist. The
// returned flag reports whether the file should be watched.
func loadConfig(path string) (*config.Config, bool, error) {
	cfg, err := config.Load(path)
	switch {
	case err == nil:
		return cfg, true, nil
	case errors.Is(err, fs.ErrNotExist):
		return config.Default(), false, nil
	default:
		return nil, false, err
	}
}
