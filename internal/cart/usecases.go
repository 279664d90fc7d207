package cart

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/mrdaaxel/tienda-api/internal/apperrors"
	"github.com/mrdaaxel/tienda-api/internal/catalog"
	"github.com/mrdaaxel/tienda-api/internal/storage"
)

// productFinder is the slice of the catalog the cart needs: existence checks
// on add.
type productFinder interface {
	GetProduct(ctx context.Context, q storage.Querier, id int64) (*catalog.Product, error)
}

type Service struct {
	db       storage.DB
	repo     Repository
	products productFinder
}

func NewService(db storage.DB, repo Repository, products productFinder) *Service {
	return &Service{db: db, repo: repo, products: products}
}

// AddLine puts qty units of a product in the user's cart, creating the cart
// lazily and merging into an existing line for the same product.
func (s *Service) AddLine(ctx context.Context, userID, productID int64, qty int) error {
	if qty <= 0 {
		return apperrors.Invalidf("la cantidad debe ser mayor a cero")
	}
	if _, err := s.products.GetProduct(ctx, s.db, productID); err != nil {
		return err
	}

	return storage.InTx(ctx, s.db, func(tx pgx.Tx) error {
		userCart, err := s.repo.GetByUser(ctx, tx, userID)
		if errors.Is(err, apperrors.ErrNotFound) {
			userCart, err = s.repo.Create(ctx, tx, userID)
		}
		if err != nil {
			return err
		}

		line, err := s.repo.GetLineByProduct(ctx, tx, userCart.ID, productID)
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.repo.InsertLine(ctx, tx, &Line{
				CartID:    userCart.ID,
				ProductID: productID,
				Quantity:  qty,
			})
		}
		if err != nil {
			return err
		}
		return s.repo.UpdateLineQuantity(ctx, tx, line.ID, line.Quantity+qty)
	})
}

// ListItems returns the cart content with product snapshots. A user without
// a cart gets an empty list, not an error.
func (s *Service) ListItems(ctx context.Context, userID int64) ([]Item, error) {
	return s.repo.ListItems(ctx, s.db, userID)
}

// RemoveLine deletes one line, only when it belongs to the caller's cart.
func (s *Service) RemoveLine(ctx context.Context, userID, lineID int64) error {
	line, err := s.repo.GetOwnedLine(ctx, s.db, userID, lineID)
	if err != nil {
		return err
	}
	return s.repo.DeleteLine(ctx, s.db, line.ID)
}

// Clear empties the user's cart. Idempotent; clearing an absent or empty
// cart succeeds.
func (s *Service) Clear(ctx context.Context, userID int64) error {
	return s.repo.ClearByUser(ctx, s.db, userID)
}
