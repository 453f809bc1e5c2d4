package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBClient is the subset of pgxpool.Pool used by PostgresBackend.
type DBClient interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresBackend keeps one row per key in a single table.
type PostgresBackend struct {
	db    DBClient
	pool  *pgxpool.Pool
	table string
}

const defaultTable = "phosphor_store"

// NewPostgresBackend connects to dsn and makes sure the table exists.
func NewPostgresBackend(ctx context.Context, dsn string) (*PostgresBackend, error) {
	const op = "store.NewPostgresBackend"

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	b := &PostgresBackend{db: pool, pool: pool, table: defaultTable}
	if err := b.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}

// NewPostgresBackendWithClient uses an existing client; the caller owns its lifetime.
func NewPostgresBackendWithClient(db DBClient, table string) *PostgresBackend {
	if table == "" {
		table = defaultTable
	}
	return &PostgresBackend{db: db, table: table}
}

func (b *PostgresBackend) migrate(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key   TEXT PRIMARY KEY,
			value BYTEA NOT NULL
		)
	`, pgx.Identifier{b.table}.Sanitize())
	if _, err := b.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Load(ctx context.Context) (map[string][]byte, error) {
	const op = "store.PostgresBackend.Load"

	query := fmt.Sprintf(`SELECT key, value FROM %s`, pgx.Identifier{b.table}.Sanitize())
	rows, err := b.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	m := make(map[string][]byte)
	for rows.Next() {
		var (
			k string
			v []byte
		)
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		m[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

func (b *PostgresBackend) Put(ctx context.Context, key string, value []byte) error {
	const op = "store.PostgresBackend.Put"

	query := fmt.Sprintf(`
		INSERT INTO %s (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, pgx.Identifier{b.table}.Sanitize())
	if _, err := b.db.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (b *PostgresBackend) Remove(ctx context.Context, key string) error {
	const op = "store.PostgresBackend.Remove"

	query := fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, pgx.Identifier{b.table}.Sanitize())
	if _, err := b.db.Exec(ctx, query, key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (b *PostgresBackend) Close() error {
	if b.pool != nil {
		b.pool.Close()
	}
	return nil
}
