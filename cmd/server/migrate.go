package main

import (
	"context"
	"fmt"

	"github.com/anonto42/focusfeed/backend/internal/repositories"
	"github.com/anonto42/focusfeed/backend/pkg/config"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

type migrateCmd struct {
	flags *flags
}

func newMigrateCmd(f *flags) *migrateCmd {
	return &migrateCmd{flags: f}
}

func (cmd *migrateCmd) register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "migrate",
		Usage:       "Create tables and indexes",
		Description: "Runs the PostgreSQL schema migration and ensures the MongoDB activity indexes exist.",
		Action:      cmd.run,
	})
	return app
}

func (cmd *migrateCmd) run(ctx context.Context, _ *cli.Command) error {
	db, err := config.InitDB(ctx, cmd.flags.Config)
	if err != nil {
		return fmt.Errorf("initialize databases: %w", err)
	}
	defer db.CloseDB()

	if err := repositories.Migrate(ctx, db.Postgres, db.Activities()); err != nil {
		return err
	}
	log.Info().Msg("migration complete")
	return nil
}
