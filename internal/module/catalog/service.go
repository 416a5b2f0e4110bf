package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service implements menu operations.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new catalog service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateItem creates a new menu item.
func (s *Service) CreateItem(ctx context.Context, name string, price int64, category, imageURL string) (*MenuItem, error) {
	if name == "" {
		return nil, fmt.Errorf("name cannot be empty")
	}
	if price <= 0 {
		return nil, fmt.Errorf("price must be positive")
	}

	item := &MenuItem{
		ID:        uuid.New(),
		Name:      name,
		Price:     price,
		Category:  category,
		ImageURL:  imageURL,
		Available: true,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create menu item: %w", err)
	}
	return item, nil
}

// GetItem returns a menu item by ID.
func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	return s.repo.GetByID(ctx, id)
}

// GetItems returns the menu items for the given IDs, keyed by ID.
// Unavailable items are rejected so a stale kiosk menu cannot order them.
func (s *Service) GetItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*MenuItem, error) {
	items, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get menu items: %w", err)
	}

	byID := make(map[uuid.UUID]*MenuItem, len(items))
	for _, item := range items {
		if !item.Available {
			return nil, fmt.Errorf("%w: %s", ErrMenuItemUnavailable, item.Name)
		}
		byID[item.ID] = item
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMenuItemNotFound, id)
		}
	}
	return byID, nil
}

// ListItems returns menu items, optionally filtered by category.
func (s *Service) ListItems(ctx context.Context, category string) ([]*MenuItem, error) {
	return s.repo.List(ctx, category)
}

// UpdateItem updates a menu item.
func (s *Service) UpdateItem(ctx context.Context, id uuid.UUID, name string, price int64, category, imageURL string, available bool) (*MenuItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != "" {
		item.Name = name
	}
	if price > 0 {
		item.Price = price
	}
	item.Category = category
	if imageURL != "" {
		item.ImageURL = imageURL
	}
	item.Available = available

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update menu item: %w", err)
	}
	return item, nil
}

// DeleteItem removes a menu item.
func (s *Service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("menu item deleted", zap.String("item_id", id.String()))
	return nil
}
