package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mrdaaxel/tienda-api/internal/apperrors"
	"github.com/mrdaaxel/tienda-api/internal/catalog"
	"github.com/mrdaaxel/tienda-api/internal/storage"
	"github.com/mrdaaxel/tienda-api/internal/storage/storagetest"
)

type mockCartRepo struct {
	mock.Mock
}

func (m *mockCartRepo) GetByUser(ctx context.Context, q storage.Querier, userID int64) (*Cart, error) {
	args := m.Called(ctx, q, userID)
	if c := args.Get(0); c != nil {
		return c.(*Cart), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCartRepo) Create(ctx context.Context, q storage.Querier, userID int64) (*Cart, error) {
	args := m.Called(ctx, q, userID)
	if c := args.Get(0); c != nil {
		return c.(*Cart), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCartRepo) GetLineByProduct(ctx context.Context, q storage.Querier, cartID, productID int64) (*Line, error) {
	args := m.Called(ctx, q, cartID, productID)
	if l := args.Get(0); l != nil {
		return l.(*Line), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCartRepo) InsertLine(ctx context.Context, q storage.Querier, line *Line) error {
	args := m.Called(ctx, q, line)
	return args.Error(0)
}

func (m *mockCartRepo) UpdateLineQuantity(ctx context.Context, q storage.Querier, lineID int64, quantity int) error {
	args := m.Called(ctx, q, lineID, quantity)
	return args.Error(0)
}

func (m *mockCartRepo) ListItems(ctx context.Context, q storage.Querier, userID int64) ([]Item, error) {
	args := m.Called(ctx, q, userID)
	if i := args.Get(0); i != nil {
		return i.([]Item), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCartRepo) ListLines(ctx context.Context, q storage.Querier, userID int64) ([]Line, error) {
	args := m.Called(ctx, q, userID)
	if l := args.Get(0); l != nil {
		return l.([]Line), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCartRepo) GetOwnedLine(ctx context.Context, q storage.Querier, userID, lineID int64) (*Line, error) {
	args := m.Called(ctx, q, userID, lineID)
	if l := args.Get(0); l != nil {
		return l.(*Line), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCartRepo) DeleteLine(ctx context.Context, q storage.Querier, lineID int64) error {
	args := m.Called(ctx, q, lineID)
	return args.Error(0)
}

func (m *mockCartRepo) ClearByUser(ctx context.Context, q storage.Querier, userID int64) error {
	args := m.Called(ctx, q, userID)
	return args.Error(0)
}

type mockProducts struct {
	mock.Mock
}

func (m *mockProducts) GetProduct(ctx context.Context, q storage.Querier, id int64) (*catalog.Product, error) {
	args := m.Called(ctx, q, id)
	if p := args.Get(0); p != nil {
		return p.(*catalog.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestAddLine_MergesIntoExistingLine(t *testing.T) {
	// Arrange
	repo := new(mockCartRepo)
	products := new(mockProducts)
	db := &storagetest.DB{}
	svc := NewService(db, repo, products)

	products.On("GetProduct", mock.Anything, mock.Anything, int64(7)).
		Return(&catalog.Product{ID: 7}, nil)
	repo.On("GetByUser", mock.Anything, mock.Anything, int64(1)).
		Return(&Cart{ID: 10, UserID: 1}, nil)
	repo.On("GetLineByProduct", mock.Anything, mock.Anything, int64(10), int64(7)).
		Return(&Line{ID: 99, CartID: 10, ProductID: 7, Quantity: 2}, nil)
	repo.On("UpdateLineQuantity", mock.Anything, mock.Anything, int64(99), 5).Return(nil)

	// Act
	err := svc.AddLine(context.Background(), 1, 7, 3)

	// Assert
	assert.NoError(t, err)
	assert.True(t, db.Committed)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "InsertLine", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddLine_CreatesCartLazily(t *testing.T) {
	// Arrange
	repo := new(mockCartRepo)
	products := new(mockProducts)
	db := &storagetest.DB{}
	svc := NewService(db, repo, products)

	products.On("GetProduct", mock.Anything, mock.Anything, int64(7)).
		Return(&catalog.Product{ID: 7}, nil)
	repo.On("GetByUser", mock.Anything, mock.Anything, int64(1)).
		Return(nil, apperrors.ErrNotFound)
	repo.On("Create", mock.Anything, mock.Anything, int64(1)).
		Return(&Cart{ID: 10, UserID: 1}, nil)
	repo.On("GetLineByProduct", mock.Anything, mock.Anything, int64(10), int64(7)).
		Return(nil, apperrors.ErrNotFound)
	repo.On("InsertLine", mock.Anything, mock.Anything,
		&Line{CartID: 10, ProductID: 7, Quantity: 4}).Return(nil)

	// Act
	err := svc.AddLine(context.Background(), 1, 7, 4)

	// Assert
	assert.NoError(t, err)
	assert.True(t, db.Committed)
	repo.AssertExpectations(t)
}

func TestAddLine_RejectsNonPositiveQuantity(t *testing.T) {
	repo := new(mockCartRepo)
	products := new(mockProducts)
	svc := NewService(&storagetest.DB{}, repo, products)

	var invalid *apperrors.InvalidArgument
	assert.ErrorAs(t, svc.AddLine(context.Background(), 1, 7, 0), &invalid)
	products.AssertNotCalled(t, "GetProduct", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddLine_UnknownProduct(t *testing.T) {
	// Arrange
	repo := new(mockCartRepo)
	products := new(mockProducts)
	svc := NewService(&storagetest.DB{}, repo, products)

	products.On("GetProduct", mock.Anything, mock.Anything, int64(7)).
		Return(nil, apperrors.ErrNotFound)

	// Act
	err := svc.AddLine(context.Background(), 1, 7, 1)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "GetByUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestRemoveLine_OwnershipScoped(t *testing.T) {
	// Arrange
	repo := new(mockCartRepo)
	svc := NewService(&storagetest.DB{}, repo, new(mockProducts))

	repo.On("GetOwnedLine", mock.Anything, mock.Anything, int64(1), int64(99)).
		Return(nil, apperrors.ErrNotFound)

	// Act
	err := svc.RemoveLine(context.Background(), 1, 99)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "DeleteLine", mock.Anything, mock.Anything, mock.Anything)
}
