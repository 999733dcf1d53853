package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/gajian-cli/internal/store"
	"github.com/sells-group/gajian-cli/internal/tariff"
	"github.com/sells-group/gajian-cli/internal/workflow"
)

// appEnv holds the store and the workflow service every step command runs
// against.
type appEnv struct {
	Store   store.Store
	Service *workflow.Service
}

// Close releases the store.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "gajian.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.Pool)
	case "memory":
		return store.NewMemory(), nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initEnv validates the config for mode, opens and migrates the store and
// builds the service. Rate tables are only loaded for modes that price
// records. Callers should defer env.Close().
func initEnv(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	var rates tariff.RateTables
	if mode != "session" {
		var err error
		rates, err = tariff.LoadRateTables(cfg.Rates)
		if err != nil {
			return nil, eris.Wrap(err, "load rate tables")
		}
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	zap.L().Debug("environment ready",
		zap.String("mode", mode),
		zap.String("store", cfg.Store.Driver),
	)

	return &appEnv{
		Store:   st,
		Service: workflow.New(st, rates, cfg.Tariff.Rules()),
	}, nil
}
