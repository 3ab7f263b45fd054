package store

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/openmall/openmall/internal/domain"
)

func TestPlaceOrderSnapshotsCart(t *testing.T) {
	db := testDB(t)
	cart := NewCartStore(db)
	orders := NewOrderStore(db)
	user := seedUser(t, db, "alice", domain.RoleCustomer)
	productA := seedProduct(t, db, "Product A", "10.00", 5)
	productB := seedProduct(t, db, "Product B", "5.00", 5)

	if _, err := cart.AddToCart(context.Background(), user.ID, productA.ID, 2); err != nil {
		t.Fatalf("add A: %v", err)
	}
	if _, err := cart.AddToCart(context.Background(), user.ID, productB.ID, 1); err != nil {
		t.Fatalf("add B: %v", err)
	}

	order, err := orders.PlaceOrder(context.Background(), user.ID, "1 Main St")
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if !order.Total.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("expected total 25.00, got %s", order.Total)
	}
	if order.Status != domain.OrderStatusPending {
		t.Fatalf("expected pending status, got %s", order.Status)
	}
	if order.OrderRef == "" {
		t.Fatal("expected an order reference")
	}

	var items []domain.OrderItem
	if err := db.Where("order_id = ?", order.ID).Order("product_id ASC").Find(&items).Error; err != nil {
		t.Fatalf("query order items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 order items, got %d", len(items))
	}
	if !items[0].Price.Equal(decimal.RequireFromString("10.00")) || items[0].Quantity != 2 {
		t.Fatalf("unexpected first item snapshot: %+v", items[0])
	}
	if !items[1].Price.Equal(decimal.RequireFromString("5.00")) || items[1].Quantity != 1 {
		t.Fatalf("unexpected second item snapshot: %+v", items[1])
	}

	var a, b domain.Product
	db.First(&a, productA.ID)
	db.First(&b, productB.ID)
	if a.Stock != 3 {
		t.Fatalf("expected product A stock 3, got %d", a.Stock)
	}
	if b.Stock != 4 {
		t.Fatalf("expected product B stock 4, got %d", b.Stock)
	}

	remaining, _ := cart.GetCart(context.Background(), user.ID)
	if len(remaining) != 0 {
		t.Fatalf("expected cart cleared, got %d lines", len(remaining))
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	db := testDB(t)
	orders := NewOrderStore(db)
	user := seedUser(t, db, "alice", domain.RoleCustomer)

	if _, err := orders.PlaceOrder(context.Background(), user.ID, "1 Main St"); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}

	var orderCount, itemCount int64
	db.Model(&domain.Order{}).Count(&orderCount)
	db.Model(&domain.OrderItem{}).Count(&itemCount)
	if orderCount != 0 || itemCount != 0 {
		t.Fatalf("expected no rows, got %d orders %d items", orderCount, itemCount)
	}
}

func TestPlaceOrderInsufficientStockRollsBack(t *testing.T) {
	db := testDB(t)
	cart := NewCartStore(db)
	orders := NewOrderStore(db)
	user := seedUser(t, db, "alice", domain.RoleCustomer)
	productA := seedProduct(t, db, "Product A", "10.00", 5)
	productB := seedProduct(t, db, "Product B", "5.00", 1)

	_, _ = cart.AddToCart(context.Background(), user.ID, productA.ID, 2)
	_, _ = cart.AddToCart(context.Background(), user.ID, productB.ID, 3)

	if _, err := orders.PlaceOrder(context.Background(), user.ID, "1 Main St"); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// Nothing committed, stock untouched, cart intact.
	var orderCount, itemCount int64
	db.Model(&domain.Order{}).Count(&orderCount)
	db.Model(&domain.OrderItem{}).Count(&itemCount)
	if orderCount != 0 || itemCount != 0 {
		t.Fatalf("expected rollback, got %d orders %d items", orderCount, itemCount)
	}

	var a domain.Product
	db.First(&a, productA.ID)
	if a.Stock != 5 {
		t.Fatalf("expected product A stock restored to 5, got %d", a.Stock)
	}

	remaining, _ := cart.GetCart(context.Background(), user.ID)
	if len(remaining) != 2 {
		t.Fatalf("expected cart preserved, got %d lines", len(remaining))
	}
}

func TestOrderItemPriceImmuneToLaterPriceChange(t *testing.T) {
	db := testDB(t)
	cart := NewCartStore(db)
	orders := NewOrderStore(db)
	user := seedUser(t, db, "alice", domain.RoleCustomer)
	product := seedProduct(t, db, "Widget", "10.00", 5)

	_, _ = cart.AddToCart(context.Background(), user.ID, product.ID, 1)
	order, err := orders.PlaceOrder(context.Background(), user.ID, "1 Main St")
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if err := db.Model(&domain.Product{}).Where("id = ?", product.ID).
		Update("price", decimal.RequireFromString("99.00")).Error; err != nil {
		t.Fatalf("reprice: %v", err)
	}

	var item domain.OrderItem
	if err := db.Where("order_id = ?", order.ID).First(&item).Error; err != nil {
		t.Fatalf("query order item: %v", err)
	}
	if !item.Price.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("expected snapshotted price 10.00, got %s", item.Price)
	}
}

func TestSecondCheckoutRejectedAfterCartCleared(t *testing.T) {
	db := testDB(t)
	cart := NewCartStore(db)
	orders := NewOrderStore(db)
	user := seedUser(t, db, "alice", domain.RoleCustomer)
	product := seedProduct(t, db, "Widget", "10.00", 5)

	_, _ = cart.AddToCart(context.Background(), user.ID, product.ID, 1)
	if _, err := orders.PlaceOrder(context.Background(), user.ID, "1 Main St"); err != nil {
		t.Fatalf("first checkout: %v", err)
	}
	if _, err := orders.PlaceOrder(context.Background(), user.ID, "1 Main St"); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart on resubmit, got %v", err)
	}
}

func TestGetOrdersScoping(t *testing.T) {
	db := testDB(t)
	cart := NewCartStore(db)
	orders := NewOrderStore(db)
	alice := seedUser(t, db, "alice", domain.RoleCustomer)
	bob := seedUser(t, db, "bob", domain.RoleCustomer)
	product := seedProduct(t, db, "Widget", "10.00", 10)

	_, _ = cart.AddToCart(context.Background(), alice.ID, product.ID, 1)
	if _, err := orders.PlaceOrder(context.Background(), alice.ID, "addr"); err != nil {
		t.Fatalf("alice checkout: %v", err)
	}
	_, _ = cart.AddToCart(context.Background(), bob.ID, product.ID, 1)
	if _, err := orders.PlaceOrder(context.Background(), bob.ID, "addr"); err != nil {
		t.Fatalf("bob checkout: %v", err)
	}

	mine, err := orders.GetOrders(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("get alice orders: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("expected 1 order for alice, got %d", len(mine))
	}
	if len(mine[0].Items) != 1 {
		t.Fatalf("expected preloaded items, got %d", len(mine[0].Items))
	}

	all, err := orders.GetOrders(context.Background(), 0)
	if err != nil {
		t.Fatalf("get all orders: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 orders total, got %d", len(all))
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	db := testDB(t)
	cart := NewCartStore(db)
	orders := NewOrderStore(db)
	user := seedUser(t, db, "alice", domain.RoleCustomer)
	product := seedProduct(t, db, "Widget", "10.00", 5)

	_, _ = cart.AddToCart(context.Background(), user.ID, product.ID, 1)
	order, err := orders.PlaceOrder(context.Background(), user.ID, "addr")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	updated, err := orders.UpdateOrderStatus(context.Background(), order.ID, domain.OrderStatusShipped)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != domain.OrderStatusShipped {
		t.Fatalf("expected shipped, got %s", updated.Status)
	}

	if _, err := orders.UpdateOrderStatus(context.Background(), 12345, domain.OrderStatusShipped); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
