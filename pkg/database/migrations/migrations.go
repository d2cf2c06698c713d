// Package migrations embeds the schema and seed data applied by goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed *.sql
var files embed.FS

// Runner applies the embedded migrations against a Postgres database.
type Runner struct {
	provider *goose.Provider
	logger   *zap.Logger
}

// NewRunner builds a goose provider over the embedded SQL files.
func NewRunner(db *sql.DB, logger *zap.Logger) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, files)
	if err != nil {
		return nil, fmt.Errorf("init migration provider: %w", err)
	}
	return &Runner{provider: provider, logger: logger}, nil
}

// Up applies every pending migration.
func (r *Runner) Up(ctx context.Context) error {
	results, err := r.provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, res := range results {
		r.logger.Info("migration applied",
			zap.Int64("version", res.Source.Version),
			zap.String("file", res.Source.Path),
			zap.Duration("duration", res.Duration),
		)
	}
	if len(results) == 0 {
		r.logger.Info("schema up to date")
	}
	return nil
}

// Down rolls back the most recent migration.
func (r *Runner) Down(ctx context.Context) error {
	res, err := r.provider.Down(ctx)
	if err != nil {
		return fmt.Errorf("rollback migration: %w", err)
	}
	r.logger.Info("migration rolled back", zap.Int64("version", res.Source.Version), zap.String("file", res.Source.Path))
	return nil
}

// Status logs the state of every known migration.
func (r *Runner) Status(ctx context.Context) error {
	statuses, err := r.provider.Status(ctx)
	if err != nil {
		return fmt.Errorf("migration status: %w", err)
	}
	for _, st := range statuses {
		r.logger.Info("migration status",
			zap.Int64("version", st.Source.Version),
			zap.String("file", st.Source.Path),
			zap.String("state", string(st.State)),
		)
	}
	return nil
}
