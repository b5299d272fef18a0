package commands

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/logging"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
	"github.com/SscSPs/ledger_engine/internal/repositories/database/pgsql"
	"github.com/SscSPs/ledger_engine/internal/repositories/database/sqlite"
	pkgdb "github.com/SscSPs/ledger_engine/pkg/database"
)

// openServices connects to the configured store and wires the service container.
// The returned func releases the connection.
func openServices(ctx context.Context, cfg *config.Config) (*portssvc.ServiceContainer, func(), error) {
	logger := logging.FromContext(ctx)

	var (
		repos      portsrepo.RepositoryProvider
		closeStore func()
	)
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := pkgdb.NewPgxPool(ctx, cfg.DatabaseURL, pkgdb.PoolOptions{
			MaxConns:        cfg.DBMaxConns,
			MaxConnLifetime: cfg.DBMaxConnLifetime,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		repos = pgsql.NewRepositoryProvider(pool, cfg.HoldTimeout)
		closeStore = func() { pkgdb.ClosePgxPool(pool) }
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath, cfg.HoldTimeout)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite database %s: %w", cfg.SQLitePath, err)
		}
		repos = store.Provider()
		closeStore = func() {
			if err := store.Close(); err != nil {
				logger.Error("Error closing sqlite database", slog.String("error", err.Error()))
			}
		}
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.DBDriver)
	}

	logger.Debug("Store opened", slog.String("driver", cfg.DBDriver))
	svc := services.NewContainer(repos,
		services.WithMaxReferenceAttempts(cfg.MaxReferenceAttempts),
		services.WithHistoryMaxLimit(cfg.HistoryMaxLimit),
	)
	return svc, closeStore, nil
}
