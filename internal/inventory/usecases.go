package inventory

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/mrdaaxel/tienda-api/internal/apperrors"
	"github.com/mrdaaxel/tienda-api/internal/storage"
)

// auditTrail is the slice of the audit recorder the ledger needs. Manual
// edits use the best-effort append; a lost audit row never fails the edit.
type auditTrail interface {
	MustRecord(ctx context.Context, userID *int64, action, entity, oldValue, newValue string)
}

// Service is the stock ledger. Reserve/Release run inside a transaction the
// order workflow owns; SetAbsolute/AdjustBy open their own.
type Service struct {
	db    storage.DB
	repo  Repository
	audit auditTrail
}

func NewService(db storage.DB, repo Repository, audit auditTrail) *Service {
	return &Service{db: db, repo: repo, audit: audit}
}

// GetQuantity returns the available quantity for a product.
func (s *Service) GetQuantity(ctx context.Context, productID int64) (int, error) {
	rec, err := s.repo.GetByProduct(ctx, s.db, productID)
	if err != nil {
		return 0, err
	}
	return rec.Quantity, nil
}

// QuantityForUpdate locks the product's stock row for the life of q's
// transaction and returns the available quantity. The order workflow uses
// it to collect every shortfall before decrementing anything.
func (s *Service) QuantityForUpdate(ctx context.Context, q storage.Querier, productID int64) (int, error) {
	rec, err := s.repo.GetByProductForUpdate(ctx, q, productID)
	if err != nil {
		return 0, err
	}
	return rec.Quantity, nil
}

// Reserve decrements quantity by qty under a row lock held by q's
// transaction. Fails with InsufficientStock before writing anything when the
// ledger cannot cover the request; quantity never goes negative.
func (s *Service) Reserve(ctx context.Context, q storage.Querier, productID int64, qty int) error {
	if qty <= 0 {
		return apperrors.Invalidf("la cantidad a reservar debe ser mayor a cero")
	}

	rec, err := s.repo.GetByProductForUpdate(ctx, q, productID)
	if err != nil {
		return err
	}
	if rec.Quantity < qty {
		return &apperrors.InsufficientStock{Shortfalls: []apperrors.Shortfall{
			{ProductID: productID, Requested: qty, Available: rec.Quantity},
		}}
	}
	return s.repo.UpdateQuantity(ctx, q, rec.ID, rec.Quantity-qty)
}

// Release increments quantity by qty (restock on cancellation). Restoring
// previously reserved stock has no upper bound.
func (s *Service) Release(ctx context.Context, q storage.Querier, productID int64, qty int) error {
	if qty <= 0 {
		return apperrors.Invalidf("la cantidad a devolver debe ser mayor a cero")
	}

	rec, err := s.repo.GetByProductForUpdate(ctx, q, productID)
	if err != nil {
		return err
	}
	return s.repo.UpdateQuantity(ctx, q, rec.ID, rec.Quantity+qty)
}

// SetAbsolute overwrites the quantity (admin tool). The audit append runs
// after commit and is best-effort.
func (s *Service) SetAbsolute(ctx context.Context, adminID, productID int64, qty int) (*StockRecord, error) {
	if qty < 0 {
		return nil, apperrors.Invalidf("el stock no puede ser negativo")
	}
	return s.adminWrite(ctx, adminID, productID, "stock absoluto", func(current int) (int, error) {
		return qty, nil
	})
}

// AdjustBy applies a signed delta (admin tool). Fails when the result would
// be negative; the current quantity is untouched in that case.
func (s *Service) AdjustBy(ctx context.Context, adminID, productID int64, delta int) (*StockRecord, error) {
	return s.adminWrite(ctx, adminID, productID, "ajuste de stock", func(current int) (int, error) {
		next := current + delta
		if next < 0 {
			return 0, apperrors.Invalidf("el ajuste dejaría el stock en %d", next)
		}
		return next, nil
	})
}

func (s *Service) adminWrite(ctx context.Context, adminID, productID int64, action string, next func(current int) (int, error)) (*StockRecord, error) {
	var before, after int
	var stockID int64

	err := storage.InTx(ctx, s.db, func(tx pgx.Tx) error {
		rec, err := s.repo.GetByProductForUpdate(ctx, tx, productID)
		if err != nil {
			return err
		}
		before = rec.Quantity
		stockID = rec.ID

		after, err = next(before)
		if err != nil {
			return err
		}
		return s.repo.UpdateQuantity(ctx, tx, rec.ID, after)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("📦 [STOCK] producto=%d %s: %d → %d", productID, action, before, after)
	s.audit.MustRecord(ctx, &adminID, action, "stocks",
		strconv.Itoa(before), strconv.Itoa(after))

	return &StockRecord{
		ID:        stockID,
		ProductID: productID,
		Quantity:  after,
		Status:    StatusFor(after),
	}, nil
}

// InitForProduct seeds the stock row when a product is first stocked.
func (s *Service) InitForProduct(ctx context.Context, q storage.Querier, productID int64, qty int) error {
	if qty < 0 {
		return apperrors.Invalidf("el stock inicial no puede ser negativo")
	}
	if err := s.repo.Create(ctx, q, productID, qty); err != nil {
		return fmt.Errorf("seeding stock for product %d: %w", productID, err)
	}
	return nil
}
