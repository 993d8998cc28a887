package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/store"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/store/gormstore"
)

// openBackend opens the snapshot store at dsn. A postgres:// DSN selects the
// GORM store; anything else is a SQLite file, created when missing.
func openBackend(dsn string) (store.Backend, error) {
	if gormstore.IsPostgresDSN(dsn) {
		st, err := gormstore.OpenPostgres(dsn)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	st, err := store.Open(dsn)
	if err != nil {
		return nil, err
	}
	return st, nil
}

func closeBackend(b store.Backend, logger *slog.Logger) {
	if err := b.Close(); err != nil {
		logger.Error("error closing database", "error", err)
	}
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
