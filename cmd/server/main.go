package main

import (
	"context"
	"fmt"
	"os"

	"github.com/anonto42/focusfeed/backend/pkg/config"
	"github.com/anonto42/focusfeed/backend/pkg/logger"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
)

// flags is shared by every subcommand. Config is populated in Before.
type flags struct {
	LogLevel   string
	LogFormat  string
	ConfigPath string
	Config     *config.Config
}

func main() {
	if err := logger.Setup("info", "json"); err != nil {
		panic(err)
	}

	f := &flags{}
	app := &cli.Command{
		Name:    "focusfeed",
		Usage:   "Focus-session feed and engagement API",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error); overrides log_level from config",
				Sources:     cli.EnvVars("FOCUSFEED_LOG_LEVEL"),
				Destination: &f.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-format",
				Usage:       "log output format (json, console); overrides log_format from config",
				Sources:     cli.EnvVars("FOCUSFEED_LOG_FORMAT"),
				Destination: &f.LogFormat,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to YAML config file",
				Sources:     cli.EnvVars("CONFIG_PATH"),
				Destination: &f.ConfigPath,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			cfg, err := config.Load(f.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if f.LogLevel != "" {
				cfg.LogLevel = f.LogLevel
			}
			if f.LogFormat != "" {
				cfg.LogFormat = f.LogFormat
			}
			if err := logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
				return ctx, err
			}
			f.Config = cfg
			return ctx, nil
		},
	}

	app = newServeCmd(f).register(app)
	app = newMigrateCmd(f).register(app)

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Error().Err(err).Msg("focusfeed exited")
		os.Exit(1)
	}
}
