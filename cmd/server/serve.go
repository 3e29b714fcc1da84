package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/focusfeed/backend/internal/events"
	"github.com/anonto42/focusfeed/backend/internal/feed"
	"github.com/anonto42/focusfeed/backend/internal/middleware"
	"github.com/anonto42/focusfeed/backend/internal/repositories"
	"github.com/anonto42/focusfeed/backend/internal/router"
	"github.com/anonto42/focusfeed/backend/pkg/config"
	"github.com/anonto42/focusfeed/backend/pkg/firebase"
	"github.com/anonto42/focusfeed/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

type serveCmd struct {
	flags   *flags
	migrate bool
}

func newServeCmd(f *flags) *serveCmd {
	return &serveCmd{flags: f}
}

func (cmd *serveCmd) register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "migrate",
				Usage:       "run migrations before serving",
				Sources:     cli.EnvVars("FOCUSFEED_AUTO_MIGRATE"),
				Destination: &cmd.migrate,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *serveCmd) run(ctx context.Context, _ *cli.Command) error {
	cfg := cmd.flags.Config
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize databases: %w", err)
	}
	defer db.CloseDB()

	if cmd.migrate {
		if err := repositories.Migrate(ctx, db.Postgres, db.Activities()); err != nil {
			return err
		}
	}

	repos := router.NewRepositories(db.Postgres, db.Activities())

	resolver, err := newResolver(ctx, cfg, repos.Profiles)
	if err != nil {
		return err
	}

	publisher := newPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("close event publisher")
		}
	}()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()
	config.SetupMiddleware(e)
	router.SetupRoutes(e, router.Dependencies{
		Repositories: repos,
		Resolver:     resolver,
		Publisher:    publisher,
		FeedOptions:  []feed.Option{feed.WithLocation(loc)},
	})

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting API server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Info().Str("port", cfg.MetricsPort).Msg("starting metrics server")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return errors.Join(e.Shutdown(shutdownCtx), metricsServer.Shutdown(shutdownCtx))
	})
	return g.Wait()
}

func newResolver(ctx context.Context, cfg *config.Config, profiles repositories.ProfileRepository) (middleware.IdentityResolver, error) {
	switch cfg.AuthProvider {
	case config.AuthProviderFirebase:
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			return nil, err
		}
		return middleware.NewFirebaseResolver(app.AuthClient, profiles), nil
	default:
		return middleware.NewJWTResolver(cfg.JWTSecret, cfg.JWTIssuer, profiles), nil
	}
}

func newPublisher(cfg *config.Config) events.Publisher {
	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		log.Info().Msg("no kafka brokers configured, engagement events are dropped")
		return events.NopPublisher{}
	}
	log.Info().Strs("brokers", brokers).Str("topic", cfg.KafkaTopic).Msg("publishing engagement events to kafka")
	return events.NewKafkaPublisher(brokers, cfg.KafkaTopic, events.DefaultBreakerSettings)
}
