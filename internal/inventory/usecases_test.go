package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mrdaaxel/tienda-api/internal/apperrors"
	"github.com/mrdaaxel/tienda-api/internal/storage"
	"github.com/mrdaaxel/tienda-api/internal/storage/storagetest"
)

type mockStockRepo struct {
	mock.Mock
}

func (m *mockStockRepo) GetByProduct(ctx context.Context, q storage.Querier, productID int64) (*StockRecord, error) {
	args := m.Called(ctx, q, productID)
	if rec := args.Get(0); rec != nil {
		return rec.(*StockRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStockRepo) GetByProductForUpdate(ctx context.Context, q storage.Querier, productID int64) (*StockRecord, error) {
	args := m.Called(ctx, q, productID)
	if rec := args.Get(0); rec != nil {
		return rec.(*StockRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStockRepo) UpdateQuantity(ctx context.Context, q storage.Querier, stockID int64, quantity int) error {
	args := m.Called(ctx, q, stockID, quantity)
	return args.Error(0)
}

func (m *mockStockRepo) Create(ctx context.Context, q storage.Querier, productID int64, quantity int) error {
	args := m.Called(ctx, q, productID, quantity)
	return args.Error(0)
}

type mockAuditTrail struct {
	mock.Mock
}

func (m *mockAuditTrail) MustRecord(ctx context.Context, userID *int64, action, entity, oldValue, newValue string) {
	m.Called(ctx, userID, action, entity, oldValue, newValue)
}

func TestReserve_DecrementsUnderLock(t *testing.T) {
	// Arrange
	repo := new(mockStockRepo)
	svc := NewService(&storagetest.DB{}, repo, new(mockAuditTrail))
	ctx := context.Background()

	repo.On("GetByProductForUpdate", mock.Anything, mock.Anything, int64(7)).
		Return(&StockRecord{ID: 1, ProductID: 7, Quantity: 10, Status: StatusInStock}, nil)
	repo.On("UpdateQuantity", mock.Anything, mock.Anything, int64(1), 7).Return(nil)

	// Act
	err := svc.Reserve(ctx, nil, 7, 3)

	// Assert
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestReserve_InsufficientStockWritesNothing(t *testing.T) {
	// Arrange
	repo := new(mockStockRepo)
	svc := NewService(&storagetest.DB{}, repo, new(mockAuditTrail))
	ctx := context.Background()

	repo.On("GetByProductForUpdate", mock.Anything, mock.Anything, int64(7)).
		Return(&StockRecord{ID: 1, ProductID: 7, Quantity: 2, Status: StatusLow}, nil)

	// Act
	err := svc.Reserve(ctx, nil, 7, 5)

	// Assert
	var insufficient *apperrors.InsufficientStock
	assert.ErrorAs(t, err, &insufficient)
	assert.Len(t, insufficient.Shortfalls, 1)
	assert.Equal(t, int64(7), insufficient.Shortfalls[0].ProductID)
	assert.Equal(t, 5, insufficient.Shortfalls[0].Requested)
	assert.Equal(t, 2, insufficient.Shortfalls[0].Available)
	repo.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReserve_RejectsNonPositiveQuantity(t *testing.T) {
	repo := new(mockStockRepo)
	svc := NewService(&storagetest.DB{}, repo, new(mockAuditTrail))

	var invalid *apperrors.InvalidArgument
	assert.ErrorAs(t, svc.Reserve(context.Background(), nil, 7, 0), &invalid)
	assert.ErrorAs(t, svc.Reserve(context.Background(), nil, 7, -2), &invalid)
	repo.AssertNotCalled(t, "GetByProductForUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func TestRelease_RestocksWithoutUpperBound(t *testing.T) {
	// Arrange
	repo := new(mockStockRepo)
	svc := NewService(&storagetest.DB{}, repo, new(mockAuditTrail))

	repo.On("GetByProductForUpdate", mock.Anything, mock.Anything, int64(7)).
		Return(&StockRecord{ID: 1, ProductID: 7, Quantity: 1, Status: StatusLow}, nil)
	repo.On("UpdateQuantity", mock.Anything, mock.Anything, int64(1), 5001).Return(nil)

	// Act
	err := svc.Release(context.Background(), nil, 7, 5000)

	// Assert
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSetAbsolute_WritesAndAudits(t *testing.T) {
	// Arrange
	repo := new(mockStockRepo)
	audit := new(mockAuditTrail)
	db := &storagetest.DB{}
	svc := NewService(db, repo, audit)
	adminID := int64(3)

	repo.On("GetByProductForUpdate", mock.Anything, mock.Anything, int64(7)).
		Return(&StockRecord{ID: 1, ProductID: 7, Quantity: 2, Status: StatusLow}, nil)
	repo.On("UpdateQuantity", mock.Anything, mock.Anything, int64(1), 9).Return(nil)
	audit.On("MustRecord", mock.Anything, &adminID, "stock absoluto", "stocks", "2", "9").Return()

	// Act
	rec, err := svc.SetAbsolute(context.Background(), adminID, 7, 9)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 9, rec.Quantity)
	assert.Equal(t, StatusInStock, rec.Status)
	assert.True(t, db.Committed)
	repo.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestSetAbsolute_RejectsNegative(t *testing.T) {
	svc := NewService(&storagetest.DB{}, new(mockStockRepo), new(mockAuditTrail))

	var invalid *apperrors.InvalidArgument
	_, err := svc.SetAbsolute(context.Background(), 3, 7, -1)
	assert.ErrorAs(t, err, &invalid)
}

func TestAdjustBy_RejectsNegativeResult(t *testing.T) {
	// Arrange
	repo := new(mockStockRepo)
	audit := new(mockAuditTrail)
	db := &storagetest.DB{}
	svc := NewService(db, repo, audit)

	repo.On("GetByProductForUpdate", mock.Anything, mock.Anything, int64(7)).
		Return(&StockRecord{ID: 1, ProductID: 7, Quantity: 3, Status: StatusLow}, nil)

	// Act
	_, err := svc.AdjustBy(context.Background(), 3, 7, -5)

	// Assert
	var invalid *apperrors.InvalidArgument
	assert.ErrorAs(t, err, &invalid)
	assert.True(t, db.RolledBack)
	repo.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	audit.AssertNotCalled(t, "MustRecord", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAdjustBy_AppliesDelta(t *testing.T) {
	// Arrange
	repo := new(mockStockRepo)
	audit := new(mockAuditTrail)
	db := &storagetest.DB{}
	svc := NewService(db, repo, audit)
	adminID := int64(3)

	repo.On("GetByProductForUpdate", mock.Anything, mock.Anything, int64(7)).
		Return(&StockRecord{ID: 1, ProductID: 7, Quantity: 3, Status: StatusLow}, nil)
	repo.On("UpdateQuantity", mock.Anything, mock.Anything, int64(1), 1).Return(nil)
	audit.On("MustRecord", mock.Anything, &adminID, "ajuste de stock", "stocks", "3", "1").Return()

	// Act
	rec, err := svc.AdjustBy(context.Background(), adminID, 7, -2)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 1, rec.Quantity)
	assert.Equal(t, StatusLow, rec.Status)
	assert.True(t, db.Committed)
	audit.AssertExpectations(t)
}
