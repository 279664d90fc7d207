package orders

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/mrdaaxel/tienda-api/internal/apperrors"
	"github.com/mrdaaxel/tienda-api/internal/auth"
	"github.com/mrdaaxel/tienda-api/internal/cart"
	"github.com/mrdaaxel/tienda-api/internal/catalog"
	"github.com/mrdaaxel/tienda-api/internal/storage"
	"github.com/mrdaaxel/tienda-api/internal/users"
)

// Consumer-side slices of the collaborating packages. Every method takes the
// orchestrator's transaction handle so the whole workflow commits or rolls
// back as one unit.

type cartStore interface {
	ListLines(ctx context.Context, q storage.Querier, userID int64) ([]cart.Line, error)
	ClearByUser(ctx context.Context, q storage.Querier, userID int64) error
}

type stockLedger interface {
	// QuantityForUpdate locks the product's stock row and returns the
	// available quantity, so all shortfalls are known before any decrement.
	QuantityForUpdate(ctx context.Context, q storage.Querier, productID int64) (int, error)
	Reserve(ctx context.Context, q storage.Querier, productID int64, qty int) error
	Release(ctx context.Context, q storage.Querier, productID int64, qty int) error
}

type productFinder interface {
	GetProduct(ctx context.Context, q storage.Querier, id int64) (*catalog.Product, error)
}

type profileStore interface {
	GetOwnedAddress(ctx context.Context, q storage.Querier, userID, addressID int64) (*users.Address, error)
	GetOwnedPaymentMethod(ctx context.Context, q storage.Querier, userID, methodID int64) (*users.SavedPaymentMethod, error)
	PaymentTypeExists(ctx context.Context, q storage.Querier, id int64) (bool, error)
}

type auditRecorder interface {
	Record(ctx context.Context, q storage.Querier, userID *int64, action, entity, oldValue, newValue string) error
}

// idempotencyStore rejects replayed PlaceOrder requests before the workflow
// runs. Nil disables the check.
type idempotencyStore interface {
	SetIdempotency(ctx context.Context, key string) (bool, error)
}

// PlaceOrderRequest creates an order from the caller's cart.
type PlaceOrderRequest struct {
	AddressID            int64  `json:"idDireccion" binding:"required"`
	SavedPaymentMethodID *int64 `json:"idMetodoPagoUsuario"`
	PaymentTypeID        *int64 `json:"idMetodoPago"`
}

// SetStatusRequest is the admin transition; either axis may be set.
type SetStatusRequest struct {
	FulfillmentStatusID *int64 `json:"idEstadoPedido"`
	PaymentStatusID     *int64 `json:"idEstadoPago"`
}

// Service orchestrates place/cancel/set-status as single transactional
// units: validate → check stock for every line → mutate order → mutate
// ledger → clear cart → audit → commit.
type Service struct {
	db           storage.DB
	repo         Repository
	carts        cartStore
	stock        stockLedger
	products     productFinder
	profiles     profileStore
	audit        auditRecorder
	idempotency  idempotencyStore
	placedOrders metric.Int64Counter
}

func NewService(db storage.DB, repo Repository, carts cartStore, stock stockLedger,
	products productFinder, profiles profileStore, audit auditRecorder, idempotency idempotencyStore) *Service {

	counter, err := otel.Meter("orders").Int64Counter("orders.placed",
		metric.WithDescription("Orders placed successfully"))
	if err != nil {
		log.Printf("⚠️ creating orders.placed counter: %v", err)
	}

	return &Service{
		db:           db,
		repo:         repo,
		carts:        carts,
		stock:        stock,
		products:     products,
		profiles:     profiles,
		audit:        audit,
		idempotency:  idempotency,
		placedOrders: counter,
	}
}

// PlaceOrder converts the user's cart into an order. All validations and
// stock checks run before any mutation; any failure rolls the whole
// transaction back, so there is no partial reservation and the cart
// survives intact.
func (s *Service) PlaceOrder(ctx context.Context, userID int64, req PlaceOrderRequest, idempotencyKey string) (*Order, []Line, error) {
	if idempotencyKey != "" && s.idempotency != nil {
		ok, err := s.idempotency.SetIdempotency(ctx, fmt.Sprintf("pedido:%d:%s", userID, idempotencyKey))
		if err != nil {
			return nil, nil, fmt.Errorf("idempotency check: %w", err)
		}
		if !ok {
			return nil, nil, fmt.Errorf("%w: pedido ya procesado", apperrors.ErrDuplicate)
		}
	}

	var order *Order
	var orderLines []Line

	err := storage.InTx(ctx, s.db, func(tx pgx.Tx) error {
		cartLines, err := s.carts.ListLines(ctx, tx, userID)
		if err != nil {
			return err
		}
		if len(cartLines) == 0 {
			return &apperrors.InvalidOrder{Reason: "el carrito está vacío"}
		}

		if _, err := s.profiles.GetOwnedAddress(ctx, tx, userID, req.AddressID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return &apperrors.InvalidOrder{Reason: "dirección inválida"}
			}
			return err
		}
		if req.SavedPaymentMethodID != nil {
			if _, err := s.profiles.GetOwnedPaymentMethod(ctx, tx, userID, *req.SavedPaymentMethodID); err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return &apperrors.InvalidOrder{Reason: "método de pago inválido"}
				}
				return err
			}
		}
		if req.PaymentTypeID != nil {
			exists, err := s.profiles.PaymentTypeExists(ctx, tx, *req.PaymentTypeID)
			if err != nil {
				return err
			}
			if !exists {
				return &apperrors.InvalidOrder{Reason: "tipo de método de pago inválido"}
			}
		}

		// Stock check for every line before any decrement. Lines come
		// ordered by product id, which keeps lock order deterministic
		// across concurrent placements.
		if err := s.checkStock(ctx, tx, cartLines); err != nil {
			return err
		}

		pending, err := s.repo.GetFulfillmentStatusByLabel(ctx, tx, StatusPendiente)
		if err != nil {
			return err
		}
		paymentPending, err := s.repo.GetPaymentStatusByLabel(ctx, tx, PaymentPendiente)
		if err != nil {
			return err
		}

		orderLines = make([]Line, 0, len(cartLines))
		for _, cl := range cartLines {
			product, err := s.products.GetProduct(ctx, tx, cl.ProductID)
			if err != nil {
				return err
			}
			orderLines = append(orderLines, Line{
				ProductID: cl.ProductID,
				Quantity:  cl.Quantity,
				UnitPrice: product.Price,
			})
		}

		order = &Order{
			UserID:               userID,
			Total:                TotalOf(orderLines),
			AddressID:            &req.AddressID,
			SavedPaymentMethodID: req.SavedPaymentMethodID,
			PaymentTypeID:        req.PaymentTypeID,
			FulfillmentStatusID:  pending.ID,
			FulfillmentStatus:    pending.Label,
			PaymentStatusID:      paymentPending.ID,
			PaymentStatus:        paymentPending.Label,
		}
		if err := s.repo.Create(ctx, tx, order, orderLines); err != nil {
			return err
		}

		for _, line := range orderLines {
			if err := s.stock.Reserve(ctx, tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		if err := s.carts.ClearByUser(ctx, tx, userID); err != nil {
			return err
		}

		// Audit shares the workflow transaction: a rollback removes this
		// row along with the order it describes.
		return s.audit.Record(ctx, tx, &userID, "creación de pedido", "pedidos",
			"", fmt.Sprintf("pedido %d, estado %s, total %s", order.ID, pending.Label, order.Total))
	})
	if err != nil {
		return nil, nil, err
	}

	log.Printf("🛒 [PLACE ORDER] pedido=%d usuario=%d total=%s", order.ID, userID, order.Total)
	if s.placedOrders != nil {
		s.placedOrders.Add(ctx, 1)
	}
	return order, orderLines, nil
}

// checkStock locks every stock row and aggregates shortfalls so the client
// sees all offending products at once. Returns nil only when every line can
// be covered.
func (s *Service) checkStock(ctx context.Context, q storage.Querier, lines []cart.Line) error {
	var shortfalls []apperrors.Shortfall
	for _, line := range lines {
		available, err := s.stock.QuantityForUpdate(ctx, q, line.ProductID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				// Absent stock row means zero available.
				available = 0
			} else {
				return err
			}
		}
		if line.Quantity > available {
			shortfalls = append(shortfalls, apperrors.Shortfall{
				ProductID: line.ProductID,
				Requested: line.Quantity,
				Available: available,
			})
		}
	}
	if len(shortfalls) > 0 {
		return &apperrors.InsufficientStock{Shortfalls: shortfalls}
	}
	return nil
}

// CancelOrder is the client-initiated transition to Cancelado. Allowed only
// from Pendiente or Confirmado; releases the stock of every line in the same
// transaction. Payment status is untouched.
func (s *Service) CancelOrder(ctx context.Context, userID, orderID int64) error {
	return storage.InTx(ctx, s.db, func(tx pgx.Tx) error {
		order, err := s.repo.GetForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			// Not owned reads the same as absent.
			return fmt.Errorf("%w: pedido %d", apperrors.ErrNotFound, orderID)
		}
		if !CancellableFrom(order.FulfillmentStatus) {
			return &apperrors.InvalidTransition{From: order.FulfillmentStatus}
		}

		cancelled, err := s.repo.GetFulfillmentStatusByLabel(ctx, tx, StatusCancelado)
		if err != nil {
			return err
		}

		lines, err := s.repo.GetLines(ctx, tx, orderID)
		if err != nil {
			return err
		}
		for _, line := range lines {
			if err := s.stock.Release(ctx, tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		if err := s.repo.UpdateFulfillmentStatus(ctx, tx, orderID, cancelled.ID); err != nil {
			return err
		}

		log.Printf("↩️ [CANCEL ORDER] pedido=%d usuario=%d %s → %s", orderID, userID, order.FulfillmentStatus, cancelled.Label)
		return s.audit.Record(ctx, tx, &userID, "cancelación de pedido", "pedidos",
			order.FulfillmentStatus, cancelled.Label)
	})
}

// AdminSetStatus changes either status axis. The stock side effect follows
// the annulled-ness delta of the fulfillment change: active→annulled
// releases, annulled→active re-reserves (aborting everything, status write
// included, on shortage), same-class transitions leave stock alone. Payment
// status updates independently.
func (s *Service) AdminSetStatus(ctx context.Context, adminID, orderID int64, req SetStatusRequest) (*Order, error) {
	if req.FulfillmentStatusID == nil && req.PaymentStatusID == nil {
		return nil, apperrors.Invalidf("indicar idEstadoPedido o idEstadoPago")
	}

	var updated *Order
	err := storage.InTx(ctx, s.db, func(tx pgx.Tx) error {
		order, err := s.repo.GetForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}

		if req.FulfillmentStatusID != nil {
			oldStatus, err := s.repo.GetFulfillmentStatus(ctx, tx, order.FulfillmentStatusID)
			if err != nil {
				return err
			}
			newStatus, err := s.repo.GetFulfillmentStatus(ctx, tx, *req.FulfillmentStatusID)
			if err != nil {
				return err
			}

			switch {
			case !oldStatus.Annulled && newStatus.Annulled:
				if err := s.moveStock(ctx, tx, orderID, s.stock.Release); err != nil {
					return err
				}
			case oldStatus.Annulled && !newStatus.Annulled:
				// Re-reservation must cover every line or the whole
				// transition aborts, status write included.
				if err := s.reReserve(ctx, tx, orderID); err != nil {
					return err
				}
			}

			if err := s.repo.UpdateFulfillmentStatus(ctx, tx, orderID, newStatus.ID); err != nil {
				return err
			}
			if err := s.audit.Record(ctx, tx, &adminID, "cambio de estado de pedido", "pedidos",
				oldStatus.Label, newStatus.Label); err != nil {
				return err
			}
			log.Printf("🔁 [SET STATUS] pedido=%d %s → %s", orderID, oldStatus.Label, newStatus.Label)
		}

		if req.PaymentStatusID != nil {
			newPayment, err := s.repo.GetPaymentStatus(ctx, tx, *req.PaymentStatusID)
			if err != nil {
				return err
			}
			if err := s.repo.UpdatePaymentStatus(ctx, tx, orderID, newPayment.ID); err != nil {
				return err
			}
			if err := s.audit.Record(ctx, tx, &adminID, "cambio de estado de pago", "pedidos",
				order.PaymentStatus, newPayment.Label); err != nil {
				return err
			}
		}

		updated, err = s.repo.Get(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) moveStock(ctx context.Context, q storage.Querier, orderID int64,
	move func(ctx context.Context, q storage.Querier, productID int64, qty int) error) error {

	lines, err := s.repo.GetLines(ctx, q, orderID)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if err := move(ctx, q, line.ProductID, line.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// reReserve re-acquires the stock of an annulled order being reactivated,
// aggregating shortfalls across all lines before decrementing any.
func (s *Service) reReserve(ctx context.Context, q storage.Querier, orderID int64) error {
	lines, err := s.repo.GetLines(ctx, q, orderID)
	if err != nil {
		return err
	}

	var shortfalls []apperrors.Shortfall
	for _, line := range lines {
		available, err := s.stock.QuantityForUpdate(ctx, q, line.ProductID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				available = 0
			} else {
				return err
			}
		}
		if line.Quantity > available {
			shortfalls = append(shortfalls, apperrors.Shortfall{
				ProductID: line.ProductID,
				Requested: line.Quantity,
				Available: available,
			})
		}
	}
	if len(shortfalls) > 0 {
		return &apperrors.InsufficientStock{Shortfalls: shortfalls}
	}

	for _, line := range lines {
		if err := s.stock.Reserve(ctx, q, line.ProductID, line.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// GetOrder returns one order with lines; clients see only their own, admins
// see any.
func (s *Service) GetOrder(ctx context.Context, userID int64, role string, orderID int64) (*Order, []Line, error) {
	order, err := s.repo.Get(ctx, s.db, orderID)
	if err != nil {
		return nil, nil, err
	}
	if role != auth.RoleAdmin && order.UserID != userID {
		return nil, nil, fmt.Errorf("%w: pedido %d", apperrors.ErrNotFound, orderID)
	}
	lines, err := s.repo.GetLines(ctx, s.db, orderID)
	if err != nil {
		return nil, nil, err
	}
	return order, lines, nil
}

// ListMyOrders returns the caller's orders, newest first.
func (s *Service) ListMyOrders(ctx context.Context, userID int64) ([]View, error) {
	return s.repo.ListByUser(ctx, s.db, userID)
}

// ListAllOrders is the admin view with buyer summaries.
func (s *Service) ListAllOrders(ctx context.Context) ([]View, error) {
	return s.repo.ListAll(ctx, s.db)
}
