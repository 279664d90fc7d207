package orders

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mrdaaxel/tienda-api/internal/apperrors"
	"github.com/mrdaaxel/tienda-api/internal/cart"
	"github.com/mrdaaxel/tienda-api/internal/catalog"
	"github.com/mrdaaxel/tienda-api/internal/storage"
	"github.com/mrdaaxel/tienda-api/internal/storage/storagetest"
	"github.com/mrdaaxel/tienda-api/internal/users"
)

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) Create(ctx context.Context, q storage.Querier, order *Order, lines []Line) error {
	args := m.Called(ctx, q, order, lines)
	return args.Error(0)
}

func (m *mockOrderRepo) Get(ctx context.Context, q storage.Querier, orderID int64) (*Order, error) {
	args := m.Called(ctx, q, orderID)
	if o := args.Get(0); o != nil {
		return o.(*Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepo) GetForUpdate(ctx context.Context, q storage.Querier, orderID int64) (*Order, error) {
	args := m.Called(ctx, q, orderID)
	if o := args.Get(0); o != nil {
		return o.(*Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepo) GetLines(ctx context.Context, q storage.Querier, orderID int64) ([]Line, error) {
	args := m.Called(ctx, q, orderID)
	if l := args.Get(0); l != nil {
		return l.([]Line), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepo) ListByUser(ctx context.Context, q storage.Querier, userID int64) ([]View, error) {
	args := m.Called(ctx, q, userID)
	if v := args.Get(0); v != nil {
		return v.([]View), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepo) ListAll(ctx context.Context, q storage.Querier) ([]View, error) {
	args := m.Called(ctx, q)
	if v := args.Get(0); v != nil {
		return v.([]View), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepo) UpdateFulfillmentStatus(ctx context.Context, q storage.Querier, orderID, statusID int64) error {
	args := m.Called(ctx, q, orderID, statusID)
	return args.Error(0)
}

func (m *mockOrderRepo) UpdatePaymentStatus(ctx context.Context, q storage.Querier, orderID, statusID int64) error {
	args := m.Called(ctx, q, orderID, statusID)
	return args.Error(0)
}

func (m *mockOrderRepo) GetFulfillmentStatus(ctx context.Context, q storage.Querier, id int64) (*FulfillmentStatus, error) {
	args := m.Called(ctx, q, id)
	if s := args.Get(0); s != nil {
		return s.(*FulfillmentStatus), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepo) GetFulfillmentStatusByLabel(ctx context.Context, q storage.Querier, label string) (*FulfillmentStatus, error) {
	args := m.Called(ctx, q, label)
	if s := args.Get(0); s != nil {
		return s.(*FulfillmentStatus), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepo) GetPaymentStatus(ctx context.Context, q storage.Querier, id int64) (*PaymentStatus, error) {
	args := m.Called(ctx, q, id)
	if s := args.Get(0); s != nil {
		return s.(*PaymentStatus), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepo) GetPaymentStatusByLabel(ctx context.Context, q storage.Querier, label string) (*PaymentStatus, error) {
	args := m.Called(ctx, q, label)
	if s := args.Get(0); s != nil {
		return s.(*PaymentStatus), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCartStore struct {
	mock.Mock
}

func (m *mockCartStore) ListLines(ctx context.Context, q storage.Querier, userID int64) ([]cart.Line, error) {
	args := m.Called(ctx, q, userID)
	if l := args.Get(0); l != nil {
		return l.([]cart.Line), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCartStore) ClearByUser(ctx context.Context, q storage.Querier, userID int64) error {
	args := m.Called(ctx, q, userID)
	return args.Error(0)
}

type mockStockLedger struct {
	mock.Mock
}

func (m *mockStockLedger) QuantityForUpdate(ctx context.Context, q storage.Querier, productID int64) (int, error) {
	args := m.Called(ctx, q, productID)
	return args.Int(0), args.Error(1)
}

func (m *mockStockLedger) Reserve(ctx context.Context, q storage.Querier, productID int64, qty int) error {
	args := m.Called(ctx, q, productID, qty)
	return args.Error(0)
}

func (m *mockStockLedger) Release(ctx context.Context, q storage.Querier, productID int64, qty int) error {
	args := m.Called(ctx, q, productID, qty)
	return args.Error(0)
}

type mockProductFinder struct {
	mock.Mock
}

func (m *mockProductFinder) GetProduct(ctx context.Context, q storage.Querier, id int64) (*catalog.Product, error) {
	args := m.Called(ctx, q, id)
	if p := args.Get(0); p != nil {
		return p.(*catalog.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockProfileStore struct {
	mock.Mock
}

func (m *mockProfileStore) GetOwnedAddress(ctx context.Context, q storage.Querier, userID, addressID int64) (*users.Address, error) {
	args := m.Called(ctx, q, userID, addressID)
	if a := args.Get(0); a != nil {
		return a.(*users.Address), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProfileStore) GetOwnedPaymentMethod(ctx context.Context, q storage.Querier, userID, methodID int64) (*users.SavedPaymentMethod, error) {
	args := m.Called(ctx, q, userID, methodID)
	if p := args.Get(0); p != nil {
		return p.(*users.SavedPaymentMethod), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProfileStore) PaymentTypeExists(ctx context.Context, q storage.Querier, id int64) (bool, error) {
	args := m.Called(ctx, q, id)
	return args.Bool(0), args.Error(1)
}

type mockAuditRecorder struct {
	mock.Mock
}

func (m *mockAuditRecorder) Record(ctx context.Context, q storage.Querier, userID *int64, action, entity, oldValue, newValue string) error {
	args := m.Called(ctx, q, userID, action, entity, oldValue, newValue)
	return args.Error(0)
}

type testFixture struct {
	db       *storagetest.DB
	repo     *mockOrderRepo
	carts    *mockCartStore
	stock    *mockStockLedger
	products *mockProductFinder
	profiles *mockProfileStore
	audit    *mockAuditRecorder
	service  *Service
}

func newFixture() *testFixture {
	f := &testFixture{
		db:       &storagetest.DB{},
		repo:     new(mockOrderRepo),
		carts:    new(mockCartStore),
		stock:    new(mockStockLedger),
		products: new(mockProductFinder),
		profiles: new(mockProfileStore),
		audit:    new(mockAuditRecorder),
	}
	f.service = NewService(f.db, f.repo, f.carts, f.stock, f.products, f.profiles, f.audit, nil)
	return f
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	// Arrange
	f := newFixture()
	f.carts.On("ListLines", mock.Anything, mock.Anything, int64(1)).Return([]cart.Line{}, nil)

	// Act
	_, _, err := f.service.PlaceOrder(context.Background(), 1, PlaceOrderRequest{AddressID: 5}, "")

	// Assert
	var invalid *apperrors.InvalidOrder
	assert.ErrorAs(t, err, &invalid)
	assert.True(t, f.db.RolledBack)
	f.profiles.AssertNotCalled(t, "GetOwnedAddress", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrder_ForeignAddressReadsAsInvalid(t *testing.T) {
	// Arrange
	f := newFixture()
	f.carts.On("ListLines", mock.Anything, mock.Anything, int64(1)).
		Return([]cart.Line{{ProductID: 7, Quantity: 1}}, nil)
	f.profiles.On("GetOwnedAddress", mock.Anything, mock.Anything, int64(1), int64(5)).
		Return(nil, apperrors.ErrNotFound)

	// Act
	_, _, err := f.service.PlaceOrder(context.Background(), 1, PlaceOrderRequest{AddressID: 5}, "")

	// Assert
	var invalid *apperrors.InvalidOrder
	assert.ErrorAs(t, err, &invalid)
	assert.True(t, f.db.RolledBack)
}

func TestPlaceOrder_AllOrNothing(t *testing.T) {
	// Arrange: one coverable line, one short line. Nothing may be written.
	f := newFixture()
	f.carts.On("ListLines", mock.Anything, mock.Anything, int64(1)).Return([]cart.Line{
		{ProductID: 7, Quantity: 2},
		{ProductID: 8, Quantity: 5},
	}, nil)
	f.profiles.On("GetOwnedAddress", mock.Anything, mock.Anything, int64(1), int64(5)).
		Return(&users.Address{ID: 5, UserID: 1}, nil)
	f.stock.On("QuantityForUpdate", mock.Anything, mock.Anything, int64(7)).Return(10, nil)
	f.stock.On("QuantityForUpdate", mock.Anything, mock.Anything, int64(8)).Return(3, nil)

	// Act
	_, _, err := f.service.PlaceOrder(context.Background(), 1, PlaceOrderRequest{AddressID: 5}, "")

	// Assert
	var insufficient *apperrors.InsufficientStock
	assert.ErrorAs(t, err, &insufficient)
	assert.Len(t, insufficient.Shortfalls, 1)
	assert.Equal(t, int64(8), insufficient.Shortfalls[0].ProductID)
	assert.Equal(t, 5, insufficient.Shortfalls[0].Requested)
	assert.Equal(t, 3, insufficient.Shortfalls[0].Available)

	assert.True(t, f.db.RolledBack)
	f.stock.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.carts.AssertNotCalled(t, "ClearByUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrder_MissingStockRowCountsAsZero(t *testing.T) {
	// Arrange
	f := newFixture()
	f.carts.On("ListLines", mock.Anything, mock.Anything, int64(1)).
		Return([]cart.Line{{ProductID: 7, Quantity: 1}}, nil)
	f.profiles.On("GetOwnedAddress", mock.Anything, mock.Anything, int64(1), int64(5)).
		Return(&users.Address{ID: 5, UserID: 1}, nil)
	f.stock.On("QuantityForUpdate", mock.Anything, mock.Anything, int64(7)).
		Return(0, apperrors.ErrNotFound)

	// Act
	_, _, err := f.service.PlaceOrder(context.Background(), 1, PlaceOrderRequest{AddressID: 5}, "")

	// Assert
	var insufficient *apperrors.InsufficientStock
	assert.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 0, insufficient.Shortfalls[0].Available)
}

func TestPlaceOrder_Success(t *testing.T) {
	// Arrange
	f := newFixture()
	userID := int64(1)
	f.carts.On("ListLines", mock.Anything, mock.Anything, userID).Return([]cart.Line{
		{ProductID: 7, Quantity: 2},
		{ProductID: 8, Quantity: 1},
	}, nil)
	f.profiles.On("GetOwnedAddress", mock.Anything, mock.Anything, userID, int64(5)).
		Return(&users.Address{ID: 5, UserID: 1}, nil)
	f.stock.On("QuantityForUpdate", mock.Anything, mock.Anything, int64(7)).Return(10, nil)
	f.stock.On("QuantityForUpdate", mock.Anything, mock.Anything, int64(8)).Return(4, nil)
	f.repo.On("GetFulfillmentStatusByLabel", mock.Anything, mock.Anything, StatusPendiente).
		Return(&FulfillmentStatus{ID: 1, Label: StatusPendiente}, nil)
	f.repo.On("GetPaymentStatusByLabel", mock.Anything, mock.Anything, PaymentPendiente).
		Return(&PaymentStatus{ID: 1, Label: PaymentPendiente}, nil)
	f.products.On("GetProduct", mock.Anything, mock.Anything, int64(7)).
		Return(&catalog.Product{ID: 7, Price: decimal.RequireFromString("10.00")}, nil)
	f.products.On("GetProduct", mock.Anything, mock.Anything, int64(8)).
		Return(&catalog.Product{ID: 8, Price: decimal.RequireFromString("2.50")}, nil)
	f.repo.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { args.Get(2).(*Order).ID = 42 }).
		Return(nil)
	f.stock.On("Reserve", mock.Anything, mock.Anything, int64(7), 2).Return(nil)
	f.stock.On("Reserve", mock.Anything, mock.Anything, int64(8), 1).Return(nil)
	f.carts.On("ClearByUser", mock.Anything, mock.Anything, userID).Return(nil)
	f.audit.On("Record", mock.Anything, mock.Anything, &userID, "creación de pedido", "pedidos",
		mock.Anything, mock.Anything).Return(nil)

	// Act
	order, lines, err := f.service.PlaceOrder(context.Background(), userID, PlaceOrderRequest{AddressID: 5}, "")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, int64(42), order.ID)
	assert.True(t, decimal.RequireFromString("22.50").Equal(order.Total),
		"expected total 22.50, got %s", order.Total)
	assert.Len(t, lines, 2)
	assert.Equal(t, StatusPendiente, order.FulfillmentStatus)
	assert.Equal(t, PaymentPendiente, order.PaymentStatus)
	assert.True(t, f.db.Committed)
	f.repo.AssertExpectations(t)
	f.stock.AssertExpectations(t)
	f.carts.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}

func TestCancelOrder_NotOwnerReadsAsAbsent(t *testing.T) {
	// Arrange
	f := newFixture()
	f.repo.On("GetForUpdate", mock.Anything, mock.Anything, int64(42)).
		Return(&Order{ID: 42, UserID: 9, FulfillmentStatus: StatusPendiente}, nil)

	// Act
	err := f.service.CancelOrder(context.Background(), 1, 42)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.True(t, f.db.RolledBack)
	f.stock.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelOrder_IllegalTransition(t *testing.T) {
	// Arrange
	f := newFixture()
	f.repo.On("GetForUpdate", mock.Anything, mock.Anything, int64(42)).
		Return(&Order{ID: 42, UserID: 1, FulfillmentStatus: StatusEnviado}, nil)

	// Act
	err := f.service.CancelOrder(context.Background(), 1, 42)

	// Assert
	var transition *apperrors.InvalidTransition
	assert.ErrorAs(t, err, &transition)
	assert.Equal(t, StatusEnviado, transition.From)
	assert.True(t, f.db.RolledBack)
	f.repo.AssertNotCalled(t, "UpdateFulfillmentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelOrder_RestoresStock(t *testing.T) {
	// Arrange
	f := newFixture()
	userID := int64(1)
	f.repo.On("GetForUpdate", mock.Anything, mock.Anything, int64(42)).
		Return(&Order{ID: 42, UserID: userID, FulfillmentStatus: StatusConfirmado}, nil)
	f.repo.On("GetFulfillmentStatusByLabel", mock.Anything, mock.Anything, StatusCancelado).
		Return(&FulfillmentStatus{ID: 5, Label: StatusCancelado, Annulled: true}, nil)
	f.repo.On("GetLines", mock.Anything, mock.Anything, int64(42)).Return([]Line{
		{ProductID: 7, Quantity: 2},
		{ProductID: 8, Quantity: 1},
	}, nil)
	f.stock.On("Release", mock.Anything, mock.Anything, int64(7), 2).Return(nil)
	f.stock.On("Release", mock.Anything, mock.Anything, int64(8), 1).Return(nil)
	f.repo.On("UpdateFulfillmentStatus", mock.Anything, mock.Anything, int64(42), int64(5)).Return(nil)
	f.audit.On("Record", mock.Anything, mock.Anything, &userID, "cancelación de pedido", "pedidos",
		StatusConfirmado, StatusCancelado).Return(nil)

	// Act
	err := f.service.CancelOrder(context.Background(), userID, 42)

	// Assert
	assert.NoError(t, err)
	assert.True(t, f.db.Committed)
	f.stock.AssertExpectations(t)
	f.repo.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}

func TestAdminSetStatus_RequiresAnAxis(t *testing.T) {
	f := newFixture()

	var invalid *apperrors.InvalidArgument
	_, err := f.service.AdminSetStatus(context.Background(), 3, 42, SetStatusRequest{})
	assert.ErrorAs(t, err, &invalid)
}

func TestAdminSetStatus_ReactivationShortageAbortsEverything(t *testing.T) {
	// Arrange: Cancelado → Pendiente with not enough stock left. The status
	// write must not survive either.
	f := newFixture()
	statusID := int64(1)
	f.repo.On("GetForUpdate", mock.Anything, mock.Anything, int64(42)).
		Return(&Order{ID: 42, UserID: 1, FulfillmentStatusID: 5}, nil)
	f.repo.On("GetFulfillmentStatus", mock.Anything, mock.Anything, int64(5)).
		Return(&FulfillmentStatus{ID: 5, Label: StatusCancelado, Annulled: true}, nil)
	f.repo.On("GetFulfillmentStatus", mock.Anything, mock.Anything, int64(1)).
		Return(&FulfillmentStatus{ID: 1, Label: StatusPendiente, Annulled: false}, nil)
	f.repo.On("GetLines", mock.Anything, mock.Anything, int64(42)).
		Return([]Line{{ProductID: 7, Quantity: 4}}, nil)
	f.stock.On("QuantityForUpdate", mock.Anything, mock.Anything, int64(7)).Return(2, nil)

	// Act
	_, err := f.service.AdminSetStatus(context.Background(), 3, 42, SetStatusRequest{FulfillmentStatusID: &statusID})

	// Assert
	var insufficient *apperrors.InsufficientStock
	assert.ErrorAs(t, err, &insufficient)
	assert.True(t, f.db.RolledBack)
	f.stock.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "UpdateFulfillmentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminSetStatus_AnnulmentReleasesStock(t *testing.T) {
	// Arrange: Pendiente → Devuelto.
	f := newFixture()
	adminID := int64(3)
	statusID := int64(6)
	f.repo.On("GetForUpdate", mock.Anything, mock.Anything, int64(42)).
		Return(&Order{ID: 42, UserID: 1, FulfillmentStatusID: 1}, nil)
	f.repo.On("GetFulfillmentStatus", mock.Anything, mock.Anything, int64(1)).
		Return(&FulfillmentStatus{ID: 1, Label: StatusPendiente, Annulled: false}, nil)
	f.repo.On("GetFulfillmentStatus", mock.Anything, mock.Anything, int64(6)).
		Return(&FulfillmentStatus{ID: 6, Label: StatusDevuelto, Annulled: true}, nil)
	f.repo.On("GetLines", mock.Anything, mock.Anything, int64(42)).
		Return([]Line{{ProductID: 7, Quantity: 2}}, nil)
	f.stock.On("Release", mock.Anything, mock.Anything, int64(7), 2).Return(nil)
	f.repo.On("UpdateFulfillmentStatus", mock.Anything, mock.Anything, int64(42), int64(6)).Return(nil)
	f.audit.On("Record", mock.Anything, mock.Anything, &adminID, "cambio de estado de pedido", "pedidos",
		StatusPendiente, StatusDevuelto).Return(nil)
	f.repo.On("Get", mock.Anything, mock.Anything, int64(42)).
		Return(&Order{ID: 42, UserID: 1, FulfillmentStatusID: 6, FulfillmentStatus: StatusDevuelto}, nil)

	// Act
	order, err := f.service.AdminSetStatus(context.Background(), adminID, 42, SetStatusRequest{FulfillmentStatusID: &statusID})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, StatusDevuelto, order.FulfillmentStatus)
	assert.True(t, f.db.Committed)
	f.stock.AssertExpectations(t)
	f.repo.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}

func TestAdminSetStatus_SameClassLeavesStockAlone(t *testing.T) {
	// Arrange: Pendiente → Enviado, both active.
	f := newFixture()
	adminID := int64(3)
	statusID := int64(3)
	f.repo.On("GetForUpdate", mock.Anything, mock.Anything, int64(42)).
		Return(&Order{ID: 42, UserID: 1, FulfillmentStatusID: 1}, nil)
	f.repo.On("GetFulfillmentStatus", mock.Anything, mock.Anything, int64(1)).
		Return(&FulfillmentStatus{ID: 1, Label: StatusPendiente, Annulled: false}, nil)
	f.repo.On("GetFulfillmentStatus", mock.Anything, mock.Anything, int64(3)).
		Return(&FulfillmentStatus{ID: 3, Label: StatusEnviado, Annulled: false}, nil)
	f.repo.On("UpdateFulfillmentStatus", mock.Anything, mock.Anything, int64(42), int64(3)).Return(nil)
	f.audit.On("Record", mock.Anything, mock.Anything, &adminID, "cambio de estado de pedido", "pedidos",
		StatusPendiente, StatusEnviado).Return(nil)
	f.repo.On("Get", mock.Anything, mock.Anything, int64(42)).
		Return(&Order{ID: 42, UserID: 1, FulfillmentStatusID: 3, FulfillmentStatus: StatusEnviado}, nil)

	// Act
	_, err := f.service.AdminSetStatus(context.Background(), adminID, 42, SetStatusRequest{FulfillmentStatusID: &statusID})

	// Assert
	assert.NoError(t, err)
	f.stock.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.stock.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "GetLines", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminSetStatus_PaymentAxisIsIndependent(t *testing.T) {
	// Arrange
	f := newFixture()
	adminID := int64(3)
	paymentID := int64(2)
	f.repo.On("GetForUpdate", mock.Anything, mock.Anything, int64(42)).
		Return(&Order{ID: 42, UserID: 1, FulfillmentStatusID: 1, PaymentStatus: PaymentPendiente}, nil)
	f.repo.On("GetPaymentStatus", mock.Anything, mock.Anything, int64(2)).
		Return(&PaymentStatus{ID: 2, Label: PaymentPagado}, nil)
	f.repo.On("UpdatePaymentStatus", mock.Anything, mock.Anything, int64(42), int64(2)).Return(nil)
	f.audit.On("Record", mock.Anything, mock.Anything, &adminID, "cambio de estado de pago", "pedidos",
		PaymentPendiente, PaymentPagado).Return(nil)
	f.repo.On("Get", mock.Anything, mock.Anything, int64(42)).
		Return(&Order{ID: 42, UserID: 1, PaymentStatus: PaymentPagado}, nil)

	// Act
	order, err := f.service.AdminSetStatus(context.Background(), adminID, 42, SetStatusRequest{PaymentStatusID: &paymentID})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, PaymentPagado, order.PaymentStatus)
	f.repo.AssertNotCalled(t, "GetFulfillmentStatus", mock.Anything, mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "UpdateFulfillmentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetOrder_ClientSeesOnlyOwn(t *testing.T) {
	// Arrange
	f := newFixture()
	f.repo.On("Get", mock.Anything, mock.Anything, int64(42)).
		Return(&Order{ID: 42, UserID: 9}, nil)

	// Act
	_, _, err := f.service.GetOrder(context.Background(), 1, "Cliente", 42)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetOrder_AdminSeesAny(t *testing.T) {
	// Arrange
	f := newFixture()
	f.repo.On("Get", mock.Anything, mock.Anything, int64(42)).
		Return(&Order{ID: 42, UserID: 9}, nil)
	f.repo.On("GetLines", mock.Anything, mock.Anything, int64(42)).Return([]Line{}, nil)

	// Act
	order, _, err := f.service.GetOrder(context.Background(), 1, "Admin", 42)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, int64(42), order.ID)
}

func TestPlaceOrder_DuplicateIdempotencyKey(t *testing.T) {
	// Arrange
	f := newFixture()
	idem := new(mockIdempotencyStore)
	f.service.idempotency = idem
	idem.On("SetIdempotency", mock.Anything, "pedido:1:abc").Return(false, nil)

	// Act
	_, _, err := f.service.PlaceOrder(context.Background(), 1, PlaceOrderRequest{AddressID: 5}, "abc")

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	f.carts.AssertNotCalled(t, "ListLines", mock.Anything, mock.Anything, mock.Anything)
}

type mockIdempotencyStore struct {
	mock.Mock
}

func (m *mockIdempotencyStore) SetIdempotency(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}
