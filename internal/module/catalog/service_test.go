package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockRepository mocks the catalog repository.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, item *MenuItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MenuItem), args.Error(1)
}

func (m *MockRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*MenuItem, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*MenuItem), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, category string) ([]*MenuItem, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*MenuItem), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, item *MenuItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestGetItems(t *testing.T) {
	ctx := context.Background()

	t.Run("returns items keyed by id", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, zap.NewNop())

		a := &MenuItem{ID: uuid.New(), Name: "Burger", Price: 15000, Available: true}
		b := &MenuItem{ID: uuid.New(), Name: "Fries", Price: 6000, Available: true}
		ids := []uuid.UUID{a.ID, b.ID}

		repo.On("GetByIDs", ctx, ids).Return([]*MenuItem{a, b}, nil)

		byID, err := svc.GetItems(ctx, ids)
		require.NoError(t, err)
		assert.Equal(t, a, byID[a.ID])
		assert.Equal(t, b, byID[b.ID])
	})

	t.Run("rejects unavailable items", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, zap.NewNop())

		a := &MenuItem{ID: uuid.New(), Name: "Burger", Price: 15000, Available: false}
		repo.On("GetByIDs", ctx, mock.Anything).Return([]*MenuItem{a}, nil)

		_, err := svc.GetItems(ctx, []uuid.UUID{a.ID})
		assert.ErrorIs(t, err, ErrMenuItemUnavailable)
	})

	t.Run("rejects missing items", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, zap.NewNop())

		a := &MenuItem{ID: uuid.New(), Name: "Burger", Price: 15000, Available: true}
		missing := uuid.New()
		repo.On("GetByIDs", ctx, mock.Anything).Return([]*MenuItem{a}, nil)

		_, err := svc.GetItems(ctx, []uuid.UUID{a.ID, missing})
		assert.ErrorIs(t, err, ErrMenuItemNotFound)
	})
}

func TestCreateItem(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an available item", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, zap.NewNop())

		repo.On("Create", ctx, mock.MatchedBy(func(item *MenuItem) bool {
			return item.Name == "Burger" && item.Price == 15000 && item.Available
		})).Return(nil)

		item, err := svc.CreateItem(ctx, "Burger", 15000, "mains", "")
		require.NoError(t, err)
		assert.Equal(t, "Burger", item.Name)
	})

	t.Run("rejects non-positive price", func(t *testing.T) {
		svc := NewService(new(MockRepository), zap.NewNop())

		_, err := svc.CreateItem(ctx, "Burger", 0, "mains", "")
		assert.Error(t, err)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		svc := NewService(new(MockRepository), zap.NewNop())

		_, err := svc.CreateItem(ctx, "", 100, "mains", "")
		assert.Error(t, err)
	})
}
