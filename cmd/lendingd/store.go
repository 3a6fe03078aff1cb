package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/ledger/memengine"
	"github.com/AntonStoeckl/lending-ledger-go/ledger/postgresengine"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/shell/config"
)

var errMaxOpenConnsOutOfRange = errors.New("db max open conns must be between 1 and 1000")

// openStore builds the storage engine selected by the configuration. The returned func releases its connections.
func openStore(ctx context.Context, cfg serverConfig, logger *slog.Logger, tel *telemetry) (ledger.Store, func(), error) {
	if cfg.store == storeMemory {
		store, err := memengine.NewStore(memengine.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}

		return store, func() {}, nil
	}

	if cfg.db.maxOpenConns < 1 || cfg.db.maxOpenConns > 1000 {
		return nil, nil, errMaxOpenConnsOutOfRange
	}

	var (
		store   postgresengine.Store
		closeDB func()
		err     error
	)

	switch cfg.db.adapter {
	case adapterSQL:
		db, dbErr := config.PostgresSQLDB(ctx, cfg.db.dsn, cfg.db.maxOpenConns)
		if dbErr != nil {
			return nil, nil, dbErr
		}

		closeDB = func() { _ = db.Close() }
		store, err = postgresengine.NewStoreFromSQLDB(db, tel.storeOptions(logger)...)

	case adapterSQLX:
		db, dbErr := config.PostgresSQLXDB(ctx, cfg.db.dsn, cfg.db.maxOpenConns)
		if dbErr != nil {
			return nil, nil, dbErr
		}

		closeDB = func() { _ = db.Close() }
		store, err = postgresengine.NewStoreFromSQLX(db, tel.storeOptions(logger)...)

	default:
		poolConfig, cfgErr := config.PostgresPGXPoolConfig(cfg.db.dsn, int32(cfg.db.maxOpenConns)) //nolint:gosec
		if cfgErr != nil {
			return nil, nil, cfgErr
		}

		pool, poolErr := pgxpool.NewWithConfig(ctx, poolConfig)
		if poolErr != nil {
			return nil, nil, poolErr
		}

		closeDB = pool.Close
		store, err = postgresengine.NewStoreFromPGXPool(pool, tel.storeOptions(logger)...)
	}

	if err != nil {
		closeDB()
		return nil, nil, err
	}

	if cfg.db.createSchema {
		if err = store.CreateSchema(ctx); err != nil {
			closeDB()
			return nil, nil, err
		}

		logger.Info("ledger schema created")
	}

	return store, closeDB, nil
}
