package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mrdaaxel/tienda-api/internal/apperrors"
	"github.com/mrdaaxel/tienda-api/internal/storage"
)

// Repository defines the stock table operations. Every method takes a
// Querier so the caller decides whether it runs inside a transaction.
type Repository interface {
	// GetByProduct returns the stock row for a product.
	GetByProduct(ctx context.Context, q storage.Querier, productID int64) (*StockRecord, error)

	// GetByProductForUpdate locks the row (SELECT ... FOR UPDATE) until the
	// enclosing transaction commits or rolls back. q must be a transaction.
	GetByProductForUpdate(ctx context.Context, q storage.Querier, productID int64) (*StockRecord, error)

	// UpdateQuantity writes the new quantity and its recomputed status.
	UpdateQuantity(ctx context.Context, q storage.Querier, stockID int64, quantity int) error

	// Create inserts the stock row for a freshly stocked product.
	Create(ctx context.Context, q storage.Querier, productID int64, quantity int) error
}

type PostgresRepository struct{}

func NewRepository() Repository {
	return &PostgresRepository{}
}

const stockSelect = `
	SELECT s.id_stock, s.id_producto, s.cantidad, e.estado
	FROM stocks s
	JOIN estados_stock e ON e.id_estado_stock = s.id_estado_stock
	WHERE s.id_producto = $1
`

func (r *PostgresRepository) GetByProduct(ctx context.Context, q storage.Querier, productID int64) (*StockRecord, error) {
	return scanStock(q.QueryRow(ctx, stockSelect, productID), productID)
}

func (r *PostgresRepository) GetByProductForUpdate(ctx context.Context, q storage.Querier, productID int64) (*StockRecord, error) {
	// The FOR UPDATE is on stocks only; the status join would otherwise try
	// to lock the reference table too.
	row := q.QueryRow(ctx, `
		SELECT s.id_stock, s.id_producto, s.cantidad,
		       (SELECT estado FROM estados_stock e WHERE e.id_estado_stock = s.id_estado_stock)
		FROM stocks s
		WHERE s.id_producto = $1
		FOR UPDATE OF s
	`, productID)
	return scanStock(row, productID)
}

func scanStock(row pgx.Row, productID int64) (*StockRecord, error) {
	var rec StockRecord
	err := row.Scan(&rec.ID, &rec.ProductID, &rec.Quantity, &rec.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: stock del producto %d", apperrors.ErrNotFound, productID)
	}
	if err != nil {
		return nil, fmt.Errorf("reading stock row: %w", err)
	}
	return &rec, nil
}

func (r *PostgresRepository) UpdateQuantity(ctx context.Context, q storage.Querier, stockID int64, quantity int) error {
	_, err := q.Exec(ctx, `
		UPDATE stocks
		SET cantidad = $2,
		    id_estado_stock = (SELECT id_estado_stock FROM estados_stock WHERE estado = $3)
		WHERE id_stock = $1
	`, stockID, quantity, StatusFor(quantity))
	if err != nil {
		return fmt.Errorf("updating stock quantity: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, q storage.Querier, productID int64, quantity int) error {
	_, err := q.Exec(ctx, `
		INSERT INTO stocks (id_producto, cantidad, id_estado_stock)
		VALUES ($1, $2, (SELECT id_estado_stock FROM estados_stock WHERE estado = $3))
	`, productID, quantity, StatusFor(quantity))
	if err != nil {
		return fmt.Errorf("creating stock row: %w", err)
	}
	return nil
}
