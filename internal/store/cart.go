package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/openmall/openmall/internal/domain"
)

// CartStore manages per-user cart lines. At most one row exists per
// (user, product) pair, add merges into the existing row.
type CartStore struct {
	db *gorm.DB
}

func NewCartStore(db *gorm.DB) *CartStore {
	return &CartStore{db: db}
}

// GetCart returns the user's cart lines with product rows preloaded.
func (s *CartStore) GetCart(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	var items []domain.CartItem
	err := s.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, errors.Wrap(err, "query cart")
	}
	return items, nil
}

// AddToCart inserts a fresh line or merges quantity into an existing
// line for the same product. A quantity below 1 defaults to 1.
func (s *CartStore) AddToCart(ctx context.Context, userID, productID int64, quantity int) (*domain.CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	var product domain.Product
	err := s.db.WithContext(ctx).First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query product")
	}

	var existing domain.CartItem
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&existing).Error
	if err == nil {
		existing.Quantity += quantity
		existing.UpdatedAt = time.Now()
		if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
			return nil, errors.Wrap(err, "merge cart item")
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "query cart item")
	}

	item := domain.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, errors.Wrap(err, "create cart item")
	}
	return &item, nil
}

// UpdateCartItem sets the quantity of one cart line. The line must
// exist and belong to userID.
func (s *CartStore) UpdateCartItem(ctx context.Context, userID, id int64, quantity int) (*domain.CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	var item domain.CartItem
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query cart item")
	}
	if item.UserID != userID {
		return nil, ErrNotOwner
	}

	item.Quantity = quantity
	item.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(&item).Error; err != nil {
		return nil, errors.Wrap(err, "update cart item")
	}
	return &item, nil
}

// RemoveFromCart deletes one cart line owned by userID.
func (s *CartStore) RemoveFromCart(ctx context.Context, userID, id int64) error {
	var item domain.CartItem
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return errors.Wrap(err, "query cart item")
	}
	if item.UserID != userID {
		return ErrNotOwner
	}
	if err := s.db.WithContext(ctx).Delete(&item).Error; err != nil {
		return errors.Wrap(err, "delete cart item")
	}
	return nil
}

// ClearCart removes every cart line owned by userID.
func (s *CartStore) ClearCart(ctx context.Context, userID int64) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.CartItem{}).Error
	if err != nil {
		return errors.Wrap(err, "clear cart")
	}
	return nil
}

// PruneStaleCarts drops cart lines untouched for longer than maxAge.
// Used by the daily maintenance job.
func (s *CartStore) PruneStaleCarts(ctx context.Context, maxAge time.Duration) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("updated_at < ?", time.Now().Add(-maxAge)).
		Delete(&domain.CartItem{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "prune stale carts")
	}
	return res.RowsAffected, nil
}
