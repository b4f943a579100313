package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DB wraps *sql.DB with the dialect needed to rebind placeholders. Queries
// are written with "?" and rebound for Postgres.
type DB struct {
	*sql.DB
	driver string
	logger *zap.Logger
}

// Options selects and configures the backing store.
type Options struct {
	Driver      string
	StoragePath string
	PostgresDSN string
}

// PostgresDSN builds a lib/pq connection string.
func PostgresDSN(host string, port int, user, password, dbName, sslMode string) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbName, sslMode,
	)
}

func New(opts Options, logger *zap.Logger) (*DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch opts.Driver {
	case DriverSQLite, "":
		opts.Driver = DriverSQLite
		db, err = sql.Open("sqlite", opts.StoragePath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
		if err == nil {
			// SQLite serialises writers; one connection avoids SQLITE_BUSY
			// between concurrent transactions.
			db.SetMaxOpenConns(1)
		}
	case DriverPostgres:
		db, err = sql.Open("postgres", opts.PostgresDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	database := &DB{
		DB:     db,
		driver: opts.Driver,
		logger: logger,
	}

	if err := database.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Database connection established", zap.String("driver", opts.Driver))
	return database, nil
}

// Rebind converts "?" placeholders to "$n" for Postgres.
func (db *DB) Rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}
	return rebindDollar(query)
}

func rebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inString := false
	for _, r := range query {
		switch {
		case r == '\'':
			inString = !inString
			b.WriteRune(r)
		case r == '?' && !inString:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ExecContext rebinds and classifies driver errors.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	db.logger.Debug("Exec", zap.String("query", query))
	res, err := db.DB.ExecContext(ctx, db.Rebind(query), args...)
	return res, classify(err)
}

// QueryContext rebinds and classifies driver errors.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	db.logger.Debug("Query", zap.String("query", query))
	rows, err := db.DB.QueryContext(ctx, db.Rebind(query), args...)
	return rows, classify(err)
}

// ScanRow runs a single-row query and scans into dest.
func (db *DB) ScanRow(ctx context.Context, query string, args []any, dest ...any) error {
	db.logger.Debug("Query row", zap.String("query", query))
	err := db.DB.QueryRowContext(ctx, db.Rebind(query), args...).Scan(dest...)
	return classify(err)
}

// Tx is a transaction that rebinds placeholders like DB.
type Tx struct {
	*sql.Tx
	db *DB
}

func (db *DB) BeginTx(ctx context.Context) (*Tx, error) {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{Tx: tx, db: db}, nil
}

func (tx *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	tx.db.logger.Debug("Exec in transaction", zap.String("query", query))
	res, err := tx.Tx.ExecContext(ctx, tx.db.Rebind(query), args...)
	return res, classify(err)
}

func (tx *Tx) ScanRow(ctx context.Context, query string, args []any, dest ...any) error {
	err := tx.Tx.QueryRowContext(ctx, tx.db.Rebind(query), args...).Scan(dest...)
	return classify(err)
}

func (tx *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := tx.Tx.QueryContext(ctx, tx.db.Rebind(query), args...)
	return rows, classify(err)
}

// WithTx runs fn inside a transaction and commits when fn returns nil.
func (db *DB) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if tx != nil {
			if err := tx.Rollback(); err != nil {
				db.logger.Error("Failed to rollback transaction", zap.Error(err))
			}
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	return nil
}

func (db *DB) Close() error {
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	db.logger.Info("Database connection closed")
	return nil
}

// Querier is implemented by both *DB and *Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ScanRow(ctx context.Context, query string, args []any, dest ...any) error
}

var (
	_ Querier = (*DB)(nil)
	_ Querier = (*Tx)(nil)
)
