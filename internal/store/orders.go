package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/openmall/openmall/internal/domain"
	"github.com/openmall/openmall/pkg/common"
)

// OrderStore converts carts into orders and manages order history.
type OrderStore struct {
	db *gorm.DB
}

func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db}
}

// PlaceOrder snapshots the user's current cart into an order.
//
// Inside one transaction it inserts the order row with the computed
// total, one order item per cart line capturing the current unit price,
// decrements each product's stock, and deletes the cart rows. The stock
// decrement is conditional on sufficient remaining stock, a shortfall
// on any line rolls the whole order back. An empty cart fails before
// any write happens.
func (s *OrderStore) PlaceOrder(ctx context.Context, userID int64, address string) (*domain.Order, error) {
	var items []domain.CartItem
	err := s.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, errors.Wrap(err, "query cart")
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	total := decimal.Zero
	for _, item := range items {
		if item.Product == nil {
			return nil, errors.Errorf("cart line %d references missing product %d", item.ID, item.ProductID)
		}
		total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	order := domain.Order{
		ID:        common.UUIDint64(),
		OrderRef:  common.UUID(),
		UserID:    userID,
		Address:   address,
		Total:     total,
		Status:    domain.OrderStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return errors.Wrap(err, "create order")
		}

		for _, item := range items {
			oi := domain.OrderItem{
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Product.Price,
			}
			if err := tx.Create(&oi).Error; err != nil {
				return errors.Wrap(err, "create order item")
			}

			// Conditional decrement so stock never goes negative
			// under concurrent checkouts.
			res := tx.Model(&domain.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return errors.Wrap(res.Error, "decrement stock")
			}
			if res.RowsAffected == 0 {
				return ErrInsufficientStock
			}
		}

		if err := tx.Where("user_id = ?", userID).Delete(&domain.CartItem{}).Error; err != nil {
			return errors.Wrap(err, "clear cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// GetOrders returns orders newest first with items and products
// preloaded. A zero userID returns all orders (admin listing).
func (s *OrderStore) GetOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	db := s.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Order("created_at DESC")
	if userID != 0 {
		db = db.Where("user_id = ?", userID)
	}

	var rows []domain.Order
	if err := db.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "query orders")
	}
	return rows, nil
}

// GetOrder returns one order with its items.
func (s *OrderStore) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	var order domain.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query order")
	}
	return &order, nil
}

// UpdateOrderStatus moves an order into a new status. Status is the
// only mutable order field.
func (s *OrderStore) UpdateOrderStatus(ctx context.Context, id int64, status string) (*domain.Order, error) {
	var order domain.Order
	err := s.db.WithContext(ctx).First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query order")
	}

	order.Status = status
	order.UpdatedAt = time.Now()
	err = s.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": order.UpdatedAt}).Error
	if err != nil {
		return nil, errors.Wrap(err, "update order status")
	}
	return &order, nil
}
