package audit

import (
	"context"
	"log"
	"time"

	"github.com/mrdaaxel/tienda-api/internal/storage"
)

// Record is one append-only audit row. Rows are never updated or deleted.
type Record struct {
	ID        int64     `json:"idAuditoria"`
	UserID    *int64    `json:"idUsuario"`
	Date      time.Time `json:"fecha"`
	Action    string    `json:"accion"`
	Entity    string    `json:"tablaAfectada"`
	OldValue  string    `json:"valorAnterior"`
	NewValue  string    `json:"valorNuevo"`
}

// Recorder appends audit rows. Whether an append shares the caller's
// transaction depends on the Querier passed in: order-workflow call sites
// pass their open tx (the row rolls back with the workflow), manual stock
// edits pass the pool and swallow failures via MustRecord.
type Recorder struct {
	db storage.Querier
}

func NewRecorder(db storage.Querier) *Recorder {
	return &Recorder{db: db}
}

// Record appends one row using q, which may be a transaction.
func (r *Recorder) Record(ctx context.Context, q storage.Querier, userID *int64, action, entity, oldValue, newValue string) error {
	_, err := q.Exec(ctx, `
		INSERT INTO auditorias (id_usuario, fecha, accion, tabla_afectada, valor_anterior, valor_nuevo)
		VALUES ($1, NOW(), $2, $3, $4, $5)
	`, userID, action, entity, oldValue, newValue)
	return err
}

// MustRecord appends outside any transaction and deliberately does not
// propagate failure: a lost audit row must never fail the business operation
// it describes. The error is logged so the gap is visible.
func (r *Recorder) MustRecord(ctx context.Context, userID *int64, action, entity, oldValue, newValue string) {
	if err := r.Record(ctx, r.db, userID, action, entity, oldValue, newValue); err != nil {
		log.Printf("⚠️ audit append failed (action=%s entity=%s): %v", action, entity, err)
	}
}

// ListByEntity returns the trail for one table, newest first. Admin-only at
// the HTTP layer.
func (r *Recorder) ListByEntity(ctx context.Context, entity string, limit int) ([]Record, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT id_auditoria, id_usuario, fecha, accion, tabla_afectada, valor_anterior, valor_nuevo
		FROM auditorias
		WHERE tabla_afectada = $1
		ORDER BY fecha DESC
		LIMIT $2
	`, entity, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Date, &rec.Action, &rec.Entity, &rec.OldValue, &rec.NewValue); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
