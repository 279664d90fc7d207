// Package storagetest provides an in-memory stand-in for storage.DB so
// service tests can exercise transactional workflows with mocked
// repositories. No SQL ever reaches it; it only tracks whether the
// transaction committed or rolled back.
package storagetest

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mrdaaxel/tienda-api/internal/storage"
)

type DB struct {
	BeginErr   error
	Committed  bool
	RolledBack bool
}

var _ storage.DB = (*DB)(nil)

func (d *DB) Begin(ctx context.Context) (pgx.Tx, error) {
	if d.BeginErr != nil {
		return nil, d.BeginErr
	}
	return &Tx{db: d}, nil
}

func (d *DB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (d *DB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (d *DB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

// Tx satisfies pgx.Tx. InTx always defers a rollback, so a rollback after
// commit is not recorded.
type Tx struct {
	db *DB
}

var _ pgx.Tx = (*Tx)(nil)

func (t *Tx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }

func (t *Tx) Commit(ctx context.Context) error {
	t.db.Committed = true
	return nil
}

func (t *Tx) Rollback(ctx context.Context) error {
	if !t.db.Committed {
		t.db.RolledBack = true
	}
	return nil
}

func (t *Tx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (t *Tx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

func (t *Tx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (t *Tx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (t *Tx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (t *Tx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (t *Tx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }

func (t *Tx) Conn() *pgx.Conn { return nil }
