package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mrdaaxel/tienda-api/internal/apperrors"
	"github.com/mrdaaxel/tienda-api/internal/storage"
)

// Repository defines order table operations. Workflow methods receive the
// orchestrator's transaction handle.
type Repository interface {
	Create(ctx context.Context, q storage.Querier, order *Order, lines []Line) error
	Get(ctx context.Context, q storage.Querier, orderID int64) (*Order, error)
	// GetForUpdate locks the order row for the life of q's transaction so
	// a concurrent cancel and admin status change serialize.
	GetForUpdate(ctx context.Context, q storage.Querier, orderID int64) (*Order, error)
	GetLines(ctx context.Context, q storage.Querier, orderID int64) ([]Line, error)
	ListByUser(ctx context.Context, q storage.Querier, userID int64) ([]View, error)
	ListAll(ctx context.Context, q storage.Querier) ([]View, error)
	UpdateFulfillmentStatus(ctx context.Context, q storage.Querier, orderID, statusID int64) error
	UpdatePaymentStatus(ctx context.Context, q storage.Querier, orderID, statusID int64) error

	GetFulfillmentStatus(ctx context.Context, q storage.Querier, id int64) (*FulfillmentStatus, error)
	GetFulfillmentStatusByLabel(ctx context.Context, q storage.Querier, label string) (*FulfillmentStatus, error)
	GetPaymentStatus(ctx context.Context, q storage.Querier, id int64) (*PaymentStatus, error)
	GetPaymentStatusByLabel(ctx context.Context, q storage.Querier, label string) (*PaymentStatus, error)
}

type PostgresRepository struct{}

func NewRepository() Repository {
	return &PostgresRepository{}
}

func (r *PostgresRepository) Create(ctx context.Context, q storage.Querier, order *Order, lines []Line) error {
	err := q.QueryRow(ctx, `
		INSERT INTO pedidos (id_usuario, fecha, total, id_direccion, id_metodo_pago_usuario,
		                     id_metodo_pago, id_estado_pedido, id_estado_pago)
		VALUES ($1, NOW(), $2, $3, $4, $5, $6, $7)
		RETURNING id_pedido, fecha
	`, order.UserID, order.Total, order.AddressID, order.SavedPaymentMethodID,
		order.PaymentTypeID, order.FulfillmentStatusID, order.PaymentStatusID).
		Scan(&order.ID, &order.Date)
	if err != nil {
		return fmt.Errorf("creating order: %w", err)
	}

	for i := range lines {
		lines[i].OrderID = order.ID
		err := q.QueryRow(ctx, `
			INSERT INTO pedido_detalles (id_pedido, id_producto, cantidad, precio_unitario)
			VALUES ($1, $2, $3, $4)
			RETURNING id_pedido_detalle
		`, order.ID, lines[i].ProductID, lines[i].Quantity, lines[i].UnitPrice).Scan(&lines[i].ID)
		if err != nil {
			return fmt.Errorf("creating order line: %w", err)
		}
	}
	return nil
}

const orderSelect = `
	SELECT o.id_pedido, o.id_usuario, o.fecha, o.total, o.id_direccion,
	       o.id_metodo_pago_usuario, o.id_metodo_pago,
	       o.id_estado_pedido, ep.estado, o.id_estado_pago, eg.estado
	FROM pedidos o
	JOIN estados_pedido ep ON ep.id_estado_pedido = o.id_estado_pedido
	JOIN estados_pago eg ON eg.id_estado_pago = o.id_estado_pago
`

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(&o.ID, &o.UserID, &o.Date, &o.Total, &o.AddressID,
		&o.SavedPaymentMethodID, &o.PaymentTypeID,
		&o.FulfillmentStatusID, &o.FulfillmentStatus,
		&o.PaymentStatusID, &o.PaymentStatus)
}

func (r *PostgresRepository) Get(ctx context.Context, q storage.Querier, orderID int64) (*Order, error) {
	var o Order
	err := scanOrder(q.QueryRow(ctx, orderSelect+" WHERE o.id_pedido = $1", orderID), &o)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: pedido %d", apperrors.ErrNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("reading order: %w", err)
	}
	return &o, nil
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, q storage.Querier, orderID int64) (*Order, error) {
	// Lock the order row first, then read the joined view; locking through
	// the join would also lock the reference tables.
	var locked int64
	err := q.QueryRow(ctx,
		"SELECT id_pedido FROM pedidos WHERE id_pedido = $1 FOR UPDATE", orderID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: pedido %d", apperrors.ErrNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("locking order: %w", err)
	}
	return r.Get(ctx, q, orderID)
}

func (r *PostgresRepository) GetLines(ctx context.Context, q storage.Querier, orderID int64) ([]Line, error) {
	rows, err := q.Query(ctx, `
		SELECT id_pedido_detalle, id_pedido, id_producto, cantidad, precio_unitario
		FROM pedido_detalles
		WHERE id_pedido = $1
		ORDER BY id_producto
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("reading order lines: %w", err)
	}
	defer rows.Close()

	lines := []Line{}
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *PostgresRepository) listViews(ctx context.Context, q storage.Querier, where string, withUser bool, args ...any) ([]View, error) {
	sel := orderSelect
	if withUser {
		sel = `
	SELECT o.id_pedido, o.id_usuario, o.fecha, o.total, o.id_direccion,
	       o.id_metodo_pago_usuario, o.id_metodo_pago,
	       o.id_estado_pedido, ep.estado, o.id_estado_pago, eg.estado,
	       u.nombre, u.email
	FROM pedidos o
	JOIN estados_pedido ep ON ep.id_estado_pedido = o.id_estado_pedido
	JOIN estados_pago eg ON eg.id_estado_pago = o.id_estado_pago
	JOIN usuarios u ON u.id_usuario = o.id_usuario
`
	}

	rows, err := q.Query(ctx, sel+where, args...)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	views := []View{}
	for rows.Next() {
		var v View
		dest := []any{&v.ID, &v.UserID, &v.Date, &v.Total, &v.AddressID,
			&v.SavedPaymentMethodID, &v.PaymentTypeID,
			&v.FulfillmentStatusID, &v.FulfillmentStatus,
			&v.PaymentStatusID, &v.PaymentStatus}
		if withUser {
			dest = append(dest, &v.UserName, &v.UserEmail)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range views {
		lines, err := r.lineViews(ctx, q, views[i].ID)
		if err != nil {
			return nil, err
		}
		views[i].Lines = lines
	}
	return views, nil
}

func (r *PostgresRepository) lineViews(ctx context.Context, q storage.Querier, orderID int64) ([]LineView, error) {
	rows, err := q.Query(ctx, `
		SELECT d.id_pedido_detalle, d.id_pedido, d.id_producto, d.cantidad, d.precio_unitario,
		       p.nombre, p.marca, p.precio
		FROM pedido_detalles d
		LEFT JOIN productos p ON p.id_producto = d.id_producto
		WHERE d.id_pedido = $1
		ORDER BY d.id_pedido_detalle
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("reading order line views: %w", err)
	}
	defer rows.Close()

	lines := []LineView{}
	for rows.Next() {
		var lv LineView
		if err := rows.Scan(&lv.ID, &lv.OrderID, &lv.ProductID, &lv.Quantity, &lv.UnitPrice,
			&lv.ProductName, &lv.ProductBrand, &lv.CurrentPrice); err != nil {
			return nil, err
		}
		lines = append(lines, lv)
	}
	return lines, rows.Err()
}

func (r *PostgresRepository) ListByUser(ctx context.Context, q storage.Querier, userID int64) ([]View, error) {
	return r.listViews(ctx, q, " WHERE o.id_usuario = $1 ORDER BY o.fecha DESC", false, userID)
}

func (r *PostgresRepository) ListAll(ctx context.Context, q storage.Querier) ([]View, error) {
	return r.listViews(ctx, q, " ORDER BY o.fecha DESC", true)
}

func (r *PostgresRepository) UpdateFulfillmentStatus(ctx context.Context, q storage.Querier, orderID, statusID int64) error {
	_, err := q.Exec(ctx,
		"UPDATE pedidos SET id_estado_pedido = $2 WHERE id_pedido = $1", orderID, statusID)
	if err != nil {
		return fmt.Errorf("updating fulfillment status: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdatePaymentStatus(ctx context.Context, q storage.Querier, orderID, statusID int64) error {
	_, err := q.Exec(ctx,
		"UPDATE pedidos SET id_estado_pago = $2 WHERE id_pedido = $1", orderID, statusID)
	if err != nil {
		return fmt.Errorf("updating payment status: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetFulfillmentStatus(ctx context.Context, q storage.Querier, id int64) (*FulfillmentStatus, error) {
	var s FulfillmentStatus
	err := q.QueryRow(ctx,
		"SELECT id_estado_pedido, estado, anulado FROM estados_pedido WHERE id_estado_pedido = $1", id).
		Scan(&s.ID, &s.Label, &s.Annulled)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: estado de pedido %d", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading fulfillment status: %w", err)
	}
	return &s, nil
}

func (r *PostgresRepository) GetFulfillmentStatusByLabel(ctx context.Context, q storage.Querier, label string) (*FulfillmentStatus, error) {
	var s FulfillmentStatus
	err := q.QueryRow(ctx,
		"SELECT id_estado_pedido, estado, anulado FROM estados_pedido WHERE estado = $1", label).
		Scan(&s.ID, &s.Label, &s.Annulled)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: estado de pedido %q", apperrors.ErrNotFound, label)
	}
	if err != nil {
		return nil, fmt.Errorf("reading fulfillment status: %w", err)
	}
	return &s, nil
}

func (r *PostgresRepository) GetPaymentStatus(ctx context.Context, q storage.Querier, id int64) (*PaymentStatus, error) {
	var s PaymentStatus
	err := q.QueryRow(ctx,
		"SELECT id_estado_pago, estado FROM estados_pago WHERE id_estado_pago = $1", id).
		Scan(&s.ID, &s.Label)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: estado de pago %d", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading payment status: %w", err)
	}
	return &s, nil
}

func (r *PostgresRepository) GetPaymentStatusByLabel(ctx context.Context, q storage.Querier, label string) (*PaymentStatus, error) {
	var s PaymentStatus
	err := q.QueryRow(ctx,
		"SELECT id_estado_pago, estado FROM estados_pago WHERE estado = $1", label).
		Scan(&s.ID, &s.Label)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: estado de pago %q", apperrors.ErrNotFound, label)
	}
	if err != nil {
		return nil, fmt.Errorf("reading payment status: %w", err)
	}
	return &s, nil
}
