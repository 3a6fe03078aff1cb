package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-ledger-go/ledger/postgresengine"
	"github.com/AntonStoeckl/lending-ledger-go/testutil/postgresengine/config"
)

// Adapter type constants
const (
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"
)

const connectTimeout = 3 * time.Second

// Wrapper abstracts over the different database handles behind a postgresengine.Store.
type Wrapper interface {
	GetStore() postgresengine.Store
	Exec(ctx context.Context, statement string) error
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing
type PGXPoolWrapper struct {
	pool  *pgxpool.Pool
	store postgresengine.Store
}

func (w *PGXPoolWrapper) GetStore() postgresengine.Store { return w.store }

func (w *PGXPoolWrapper) Exec(ctx context.Context, statement string) error {
	_, err := w.pool.Exec(ctx, statement)
	return err
}

func (w *PGXPoolWrapper) Close() { w.pool.Close() }

// SQLDBWrapper wraps sql.DB-based testing
type SQLDBWrapper struct {
	db    *sql.DB
	store postgresengine.Store
}

func (w *SQLDBWrapper) GetStore() postgresengine.Store { return w.store }

func (w *SQLDBWrapper) Exec(ctx context.Context, statement string) error {
	_, err := w.db.ExecContext(ctx, statement)
	return err
}

func (w *SQLDBWrapper) Close() { _ = w.db.Close() }

// SQLXWrapper wraps sqlx.DB-based testing
type SQLXWrapper struct {
	db    *sqlx.DB
	store postgresengine.Store
}

func (w *SQLXWrapper) GetStore() postgresengine.Store { return w.store }

func (w *SQLXWrapper) Exec(ctx context.Context, statement string) error {
	_, err := w.db.ExecContext(ctx, statement)
	return err
}

func (w *SQLXWrapper) Close() { _ = w.db.Close() }

// CreateWrapperWithTestConfig creates the wrapper selected by ADAPTER_TYPE, creates the schema and
// skips the test if the database cannot be reached.
func CreateWrapperWithTestConfig(t testing.TB, options ...postgresengine.Option) Wrapper {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	wrapper, err := createWrapper(ctx, options...)
	if err != nil {
		t.Skipf("test database not reachable: %v", err)
	}

	require.NoError(t, wrapper.GetStore().CreateSchema(ctx), "error creating the schema")

	return wrapper
}

func createWrapper(ctx context.Context, options ...postgresengine.Option) (Wrapper, error) {
	adapterTypeFromEnv := strings.ToLower(os.Getenv("ADAPTER_TYPE"))

	switch adapterTypeFromEnv {
	case typePGXPool, "":
		poolConfig, err := config.PostgresPGXPoolTestConfig()
		if err != nil {
			return nil, err
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, err
		}

		if err = pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, err
		}

		store, err := postgresengine.NewStoreFromPGXPool(pool, options...)
		if err != nil {
			pool.Close()
			return nil, err
		}

		return &PGXPoolWrapper{pool: pool, store: store}, nil

	case typeSQLDB:
		db, err := config.PostgresSQLDBTestConfig(ctx)
		if err != nil {
			return nil, err
		}

		store, err := postgresengine.NewStoreFromSQLDB(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, err
		}

		return &SQLDBWrapper{db: db, store: store}, nil

	case typeSQLXDB:
		db, err := config.PostgresSQLXTestConfig(ctx)
		if err != nil {
			return nil, err
		}

		store, err := postgresengine.NewStoreFromSQLX(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, err
		}

		return &SQLXWrapper{db: db, store: store}, nil

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterTypeFromEnv))
	}
}

// CleanUp empties the ledger tables with their default names.
func CleanUp(t testing.TB, wrapper Wrapper) {
	t.Helper()

	tables := []string{"books", "loans", "loan_ledger_entries", "sweep_runs"}
	for i, table := range tables {
		tables[i] = pq.QuoteIdentifier(table)
	}

	statement := "TRUNCATE TABLE " + strings.Join(tables, ", ") + " RESTART IDENTITY"
	require.NoError(t, wrapper.Exec(context.Background(), statement), "error cleaning up the ledger tables")
}
