package transaction

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kiosko/server/internal/module/catalog"
)

// MockRepository mocks the transaction repository.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, txn *Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Transaction), args.Error(1)
}

func (m *MockRepository) GetByOrderNo(ctx context.Context, orderNo string) (*Transaction, error) {
	args := m.Called(ctx, orderNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Transaction), args.Error(1)
}

func (m *MockRepository) GetByGatewayRef(ctx context.Context, ref string) (*Transaction, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Transaction), args.Error(1)
}

func (m *MockRepository) SetGatewayRef(ctx context.Context, id uuid.UUID, ref string) error {
	args := m.Called(ctx, id, ref)
	return args.Error(0)
}

func (m *MockRepository) CompareAndSetPaymentStatus(ctx context.Context, id uuid.UUID, expected, next PaymentStatus, amountPaid int64) (bool, error) {
	args := m.Called(ctx, id, expected, next, amountPaid)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) SetFulfillmentStatus(ctx context.Context, id uuid.UUID, status FulfillmentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockRepository) ListOpen(ctx context.Context) ([]*Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Transaction), args.Error(1)
}

func (m *MockRepository) ListByDate(ctx context.Context, day time.Time) ([]*Transaction, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Transaction), args.Error(1)
}

// MockCatalog mocks the catalog reader.
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.MenuItem, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*catalog.MenuItem), args.Error(1)
}

// fixedOrderNos always issues the same order number.
type fixedOrderNos struct {
	orderNo string
}

func (f *fixedOrderNos) Next(ctx context.Context) (string, error) {
	return f.orderNo, nil
}

func menuItem(name string, price int64) *catalog.MenuItem {
	return &catalog.MenuItem{
		ID:        uuid.New(),
		Name:      name,
		Price:     price,
		Available: true,
	}
}

func newTestService(repo Repository, cat CatalogReader) *Service {
	return NewService(repo, cat, &fixedOrderNos{orderNo: "ORD-20260830-0001"}, "PHP", zap.NewNop())
}

func TestCreateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshots prices and fixes the total at creation", func(t *testing.T) {
		repo := new(MockRepository)
		cat := new(MockCatalog)
		svc := newTestService(repo, cat)

		burger := menuItem("Burger", 15000)
		fries := menuItem("Fries", 6000)
		cheese := menuItem("Extra Cheese", 1500)

		cat.On("GetItems", ctx, mock.Anything).Return(map[uuid.UUID]*catalog.MenuItem{
			burger.ID: burger,
			fries.ID:  fries,
			cheese.ID: cheese,
		}, nil)
		repo.On("Create", ctx, mock.Anything).Return(nil)

		txn, err := svc.Create(ctx, &CreateTransactionRequest{
			Method: MethodCash,
			Items: []ItemInput{
				{
					MenuItemID: burger.ID,
					Quantity:   2,
					Addons:     []AddonInput{{MenuItemID: cheese.ID, Quantity: 2}},
				},
				{MenuItemID: fries.ID, Quantity: 1, Note: "no salt"},
			},
		})
		require.NoError(t, err)

		// 2*15000 + 2*1500 + 1*6000
		assert.Equal(t, int64(39000), txn.AmountDue)
		assert.Equal(t, "ORD-20260830-0001", txn.OrderNo)
		assert.Equal(t, PaymentStatusPending, txn.PaymentStatus)
		assert.Equal(t, FulfillmentWaiting, txn.FulfillmentStatus)
		assert.Equal(t, "PHP", txn.Currency)

		require.Len(t, txn.Items, 2)
		assert.Equal(t, "Burger", txn.Items[0].Name)
		assert.Equal(t, int64(15000), txn.Items[0].UnitPrice)
		assert.Equal(t, int64(33000), txn.Items[0].Amount)
		require.Len(t, txn.Items[0].Addons, 1)
		assert.Equal(t, int64(3000), txn.Items[0].Addons[0].Amount)
		assert.Equal(t, "no salt", txn.Items[1].Note)
	})

	t.Run("empty cart is rejected", func(t *testing.T) {
		svc := newTestService(new(MockRepository), new(MockCatalog))

		_, err := svc.Create(ctx, &CreateTransactionRequest{Method: MethodCash})
		assert.ErrorIs(t, err, ErrEmptyCart)
	})

	t.Run("invalid method is rejected", func(t *testing.T) {
		svc := newTestService(new(MockRepository), new(MockCatalog))

		_, err := svc.Create(ctx, &CreateTransactionRequest{
			Method: PaymentMethod("card"),
			Items:  []ItemInput{{MenuItemID: uuid.New(), Quantity: 1}},
		})
		assert.ErrorIs(t, err, ErrInvalidMethod)
	})

	t.Run("unavailable item fails the whole order", func(t *testing.T) {
		repo := new(MockRepository)
		cat := new(MockCatalog)
		svc := newTestService(repo, cat)

		cat.On("GetItems", ctx, mock.Anything).Return(nil, catalog.ErrMenuItemUnavailable)

		_, err := svc.Create(ctx, &CreateTransactionRequest{
			Method: MethodEWallet,
			Items:  []ItemInput{{MenuItemID: uuid.New(), Quantity: 1}},
		})
		assert.ErrorIs(t, err, catalog.ErrMenuItemUnavailable)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestCompareAndSetPaymentStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("valid transition passes through to the store", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockCatalog))
		id := uuid.New()

		repo.On("CompareAndSetPaymentStatus", ctx, id,
			PaymentStatusPending, PaymentStatusPaid, int64(25000)).Return(true, nil)

		won, err := svc.CompareAndSetPaymentStatus(ctx, id, PaymentStatusPending, PaymentStatusPaid, 25000)
		require.NoError(t, err)
		assert.True(t, won)
	})

	t.Run("backward transition never reaches the store", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockCatalog))

		_, err := svc.CompareAndSetPaymentStatus(ctx, uuid.New(), PaymentStatusPaid, PaymentStatusPending, 0)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		repo.AssertNotCalled(t, "CompareAndSetPaymentStatus",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSetFulfillment(t *testing.T) {
	ctx := context.Background()

	t.Run("legal value is applied", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockCatalog))
		id := uuid.New()

		repo.On("SetFulfillmentStatus", ctx, id, FulfillmentInProgress).Return(nil)

		assert.NoError(t, svc.SetFulfillment(ctx, id, FulfillmentInProgress))
	})

	t.Run("unknown value is rejected", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockCatalog))

		err := svc.SetFulfillment(ctx, uuid.New(), FulfillmentStatus("cancelled"))
		assert.ErrorIs(t, err, ErrInvalidFulfillment)
		repo.AssertNotCalled(t, "SetFulfillmentStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}
