package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mrdaaxel/tienda-api/internal/apperrors"
	"github.com/mrdaaxel/tienda-api/internal/storage"
	"github.com/mrdaaxel/tienda-api/internal/storage/storagetest"
)

type mockCatalogRepo struct {
	mock.Mock
}

func (m *mockCatalogRepo) GetProduct(ctx context.Context, q storage.Querier, id int64) (*Product, error) {
	args := m.Called(ctx, q, id)
	if p := args.Get(0); p != nil {
		return p.(*Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCatalogRepo) GetProductDetail(ctx context.Context, q storage.Querier, id int64) (*ProductDetail, error) {
	args := m.Called(ctx, q, id)
	if d := args.Get(0); d != nil {
		return d.(*ProductDetail), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCatalogRepo) SearchProducts(ctx context.Context, q storage.Querier, req SearchRequest) (*SearchResult, error) {
	args := m.Called(ctx, q, req)
	if r := args.Get(0); r != nil {
		return r.(*SearchResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCatalogRepo) CreateProduct(ctx context.Context, q storage.Querier, p *Product) error {
	args := m.Called(ctx, q, p)
	return args.Error(0)
}

func (m *mockCatalogRepo) UpdateProduct(ctx context.Context, q storage.Querier, p *Product) error {
	args := m.Called(ctx, q, p)
	return args.Error(0)
}

func (m *mockCatalogRepo) DeleteProduct(ctx context.Context, q storage.Querier, id int64) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

func (m *mockCatalogRepo) ListCategories(ctx context.Context, q storage.Querier) ([]Category, error) {
	args := m.Called(ctx, q)
	if c := args.Get(0); c != nil {
		return c.([]Category), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCatalogRepo) CreateCategory(ctx context.Context, q storage.Querier, description string) (*Category, error) {
	args := m.Called(ctx, q, description)
	if c := args.Get(0); c != nil {
		return c.(*Category), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCatalogRepo) UpdateCategory(ctx context.Context, q storage.Querier, id int64, description string) error {
	args := m.Called(ctx, q, id, description)
	return args.Error(0)
}

func (m *mockCatalogRepo) DeleteCategory(ctx context.Context, q storage.Querier, id int64) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

func (m *mockCatalogRepo) ListImages(ctx context.Context, q storage.Querier, productID int64) ([]ProductImage, error) {
	args := m.Called(ctx, q, productID)
	if i := args.Get(0); i != nil {
		return i.([]ProductImage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCatalogRepo) AddImages(ctx context.Context, q storage.Querier, productID int64, images []ProductImage) error {
	args := m.Called(ctx, q, productID, images)
	return args.Error(0)
}

func (m *mockCatalogRepo) SetPrimaryImage(ctx context.Context, q storage.Querier, productID, imageID int64) error {
	args := m.Called(ctx, q, productID, imageID)
	return args.Error(0)
}

func (m *mockCatalogRepo) DeleteImage(ctx context.Context, q storage.Querier, productID, imageID int64) error {
	args := m.Called(ctx, q, productID, imageID)
	return args.Error(0)
}

type mockSeeder struct {
	mock.Mock
}

func (m *mockSeeder) InitForProduct(ctx context.Context, q storage.Querier, productID int64, qty int) error {
	args := m.Called(ctx, q, productID, qty)
	return args.Error(0)
}

func TestSearch_DefaultsPagination(t *testing.T) {
	// Arrange
	repo := new(mockCatalogRepo)
	svc := NewService(&storagetest.DB{}, repo, nil, new(mockSeeder))

	repo.On("SearchProducts", mock.Anything, mock.Anything, SearchRequest{Page: 1, PageSize: 12}).
		Return(&SearchResult{CurrentPage: 1, PageSize: 12}, nil)

	// Act
	result, err := svc.Search(context.Background(), SearchRequest{})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 1, result.CurrentPage)
	repo.AssertExpectations(t)
}

func TestSearch_RejectsOversizedPage(t *testing.T) {
	repo := new(mockCatalogRepo)
	svc := NewService(&storagetest.DB{}, repo, nil, new(mockSeeder))

	var invalid *apperrors.InvalidArgument
	_, err := svc.Search(context.Background(), SearchRequest{PageSize: 101})
	assert.ErrorAs(t, err, &invalid)
	repo.AssertNotCalled(t, "SearchProducts", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateProduct_SeedsStockInSameTransaction(t *testing.T) {
	// Arrange
	repo := new(mockCatalogRepo)
	seeder := new(mockSeeder)
	db := &storagetest.DB{}
	svc := NewService(db, repo, nil, seeder)

	repo.On("CreateProduct", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { args.Get(2).(*Product).ID = 7 }).
		Return(nil)
	seeder.On("InitForProduct", mock.Anything, mock.Anything, int64(7), 15).Return(nil)

	// Act
	product, err := svc.CreateProduct(context.Background(), CreateProductRequest{
		Name:         "Teclado mecánico",
		Description:  "Switches rojos",
		Price:        decimal.RequireFromString("59.90"),
		InitialStock: 15,
	})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, int64(7), product.ID)
	assert.True(t, db.Committed)
	seeder.AssertExpectations(t)
}

func TestCreateProduct_SeedFailureRollsBack(t *testing.T) {
	// Arrange
	repo := new(mockCatalogRepo)
	seeder := new(mockSeeder)
	db := &storagetest.DB{}
	svc := NewService(db, repo, nil, seeder)

	repo.On("CreateProduct", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	seeder.On("InitForProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(apperrors.Invalidf("el stock inicial no puede ser negativo"))

	// Act
	_, err := svc.CreateProduct(context.Background(), CreateProductRequest{
		Name:        "Teclado",
		Description: "x",
		Price:       decimal.RequireFromString("10.00"),
	})

	// Assert
	assert.Error(t, err)
	assert.True(t, db.RolledBack)
}

func TestCreateProduct_RejectsNegativePrice(t *testing.T) {
	svc := NewService(&storagetest.DB{}, new(mockCatalogRepo), nil, new(mockSeeder))

	var invalid *apperrors.InvalidArgument
	_, err := svc.CreateProduct(context.Background(), CreateProductRequest{
		Name:        "x",
		Description: "x",
		Price:       decimal.RequireFromString("-1"),
	})
	assert.ErrorAs(t, err, &invalid)
}
