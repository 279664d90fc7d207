package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mrdaaxel/tienda-api/internal/apperrors"
	"github.com/mrdaaxel/tienda-api/internal/storage"
)

// Repository defines cart table operations. The order workflow calls
// ListLines and ClearByUser with its own transaction handle.
type Repository interface {
	GetByUser(ctx context.Context, q storage.Querier, userID int64) (*Cart, error)
	Create(ctx context.Context, q storage.Querier, userID int64) (*Cart, error)
	GetLineByProduct(ctx context.Context, q storage.Querier, cartID, productID int64) (*Line, error)
	InsertLine(ctx context.Context, q storage.Querier, line *Line) error
	UpdateLineQuantity(ctx context.Context, q storage.Querier, lineID int64, quantity int) error
	ListItems(ctx context.Context, q storage.Querier, userID int64) ([]Item, error)
	ListLines(ctx context.Context, q storage.Querier, userID int64) ([]Line, error)
	GetOwnedLine(ctx context.Context, q storage.Querier, userID, lineID int64) (*Line, error)
	DeleteLine(ctx context.Context, q storage.Querier, lineID int64) error
	ClearByUser(ctx context.Context, q storage.Querier, userID int64) error
}

type PostgresRepository struct{}

func NewRepository() Repository {
	return &PostgresRepository{}
}

func (r *PostgresRepository) GetByUser(ctx context.Context, q storage.Querier, userID int64) (*Cart, error) {
	var c Cart
	err := q.QueryRow(ctx,
		"SELECT id_carrito, id_usuario FROM carritos WHERE id_usuario = $1", userID).
		Scan(&c.ID, &c.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: carrito", apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading cart: %w", err)
	}
	return &c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, q storage.Querier, userID int64) (*Cart, error) {
	c := Cart{UserID: userID}
	err := q.QueryRow(ctx,
		"INSERT INTO carritos (id_usuario) VALUES ($1) RETURNING id_carrito", userID).
		Scan(&c.ID)
	if err != nil {
		return nil, fmt.Errorf("creating cart: %w", err)
	}
	return &c, nil
}

func (r *PostgresRepository) GetLineByProduct(ctx context.Context, q storage.Querier, cartID, productID int64) (*Line, error) {
	var l Line
	err := q.QueryRow(ctx, `
		SELECT id_carrito_detalle, id_carrito, id_producto, cantidad
		FROM carrito_detalles
		WHERE id_carrito = $1 AND id_producto = $2
	`, cartID, productID).Scan(&l.ID, &l.CartID, &l.ProductID, &l.Quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: línea de carrito", apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading cart line: %w", err)
	}
	return &l, nil
}

func (r *PostgresRepository) InsertLine(ctx context.Context, q storage.Querier, line *Line) error {
	err := q.QueryRow(ctx, `
		INSERT INTO carrito_detalles (id_carrito, id_producto, cantidad)
		VALUES ($1, $2, $3)
		RETURNING id_carrito_detalle
	`, line.CartID, line.ProductID, line.Quantity).Scan(&line.ID)
	if err != nil {
		return fmt.Errorf("inserting cart line: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateLineQuantity(ctx context.Context, q storage.Querier, lineID int64, quantity int) error {
	_, err := q.Exec(ctx,
		"UPDATE carrito_detalles SET cantidad = $2 WHERE id_carrito_detalle = $1", lineID, quantity)
	if err != nil {
		return fmt.Errorf("updating cart line: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListItems(ctx context.Context, q storage.Querier, userID int64) ([]Item, error) {
	rows, err := q.Query(ctx, `
		SELECT d.id_carrito_detalle, d.cantidad,
		       p.id_producto, p.nombre, p.descripcion, p.marca, p.precio
		FROM carrito_detalles d
		JOIN carritos c ON c.id_carrito = d.id_carrito
		JOIN productos p ON p.id_producto = d.id_producto
		WHERE c.id_usuario = $1
		ORDER BY d.id_carrito_detalle
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing cart items: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.LineID, &it.Quantity,
			&it.Product.ID, &it.Product.Name, &it.Product.Description,
			&it.Product.Brand, &it.Product.Price); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) ListLines(ctx context.Context, q storage.Querier, userID int64) ([]Line, error) {
	rows, err := q.Query(ctx, `
		SELECT d.id_carrito_detalle, d.id_carrito, d.id_producto, d.cantidad
		FROM carrito_detalles d
		JOIN carritos c ON c.id_carrito = d.id_carrito
		WHERE c.id_usuario = $1
		ORDER BY d.id_producto
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing cart lines: %w", err)
	}
	defer rows.Close()

	lines := []Line{}
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.CartID, &l.ProductID, &l.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *PostgresRepository) GetOwnedLine(ctx context.Context, q storage.Querier, userID, lineID int64) (*Line, error) {
	var l Line
	err := q.QueryRow(ctx, `
		SELECT d.id_carrito_detalle, d.id_carrito, d.id_producto, d.cantidad
		FROM carrito_detalles d
		JOIN carritos c ON c.id_carrito = d.id_carrito
		WHERE d.id_carrito_detalle = $1 AND c.id_usuario = $2
	`, lineID, userID).Scan(&l.ID, &l.CartID, &l.ProductID, &l.Quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: detalle de carrito", apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading cart line: %w", err)
	}
	return &l, nil
}

func (r *PostgresRepository) DeleteLine(ctx context.Context, q storage.Querier, lineID int64) error {
	_, err := q.Exec(ctx,
		"DELETE FROM carrito_detalles WHERE id_carrito_detalle = $1", lineID)
	if err != nil {
		return fmt.Errorf("deleting cart line: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ClearByUser(ctx context.Context, q storage.Querier, userID int64) error {
	_, err := q.Exec(ctx, `
		DELETE FROM carrito_detalles d
		USING carritos c
		WHERE d.id_carrito = c.id_carrito AND c.id_usuario = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	return nil
}
