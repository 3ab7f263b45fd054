package shopapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openmall/openmall/config"
	"github.com/openmall/openmall/internal/app"
	"github.com/openmall/openmall/internal/domain"
	"github.com/openmall/openmall/internal/webserver"
)

type testServer struct {
	echo *echo.Echo
	app  *app.Application
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(domain.Tables...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := new(config.AppConfig)
	*cfg = *config.DefaultAppConfig

	application := app.NewApplication(cfg)
	application.OverrideDB(db)

	server := webserver.Init(application)
	InitRouter()

	// seed admin
	if _, err := application.Users().CreateUser(context.Background(),
		"admin", "openmall", "administrator", "", domain.RoleAdmin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	return &testServer{echo: server.Echo(), app: application}
}

func (s *testServer) request(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *strings.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = strings.NewReader(string(data))
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	return rec, decoded
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	rec, body := s.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", username, rec.Code, rec.Body.String())
	}
	data := body["data"].(map[string]interface{})
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatalf("login %s: no token in response", username)
	}
	return token
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice",
		"password": "secret123",
		"name":     "Alice",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d body %s", rec.Code, rec.Body.String())
	}

	// Duplicate username conflicts.
	rec, _ = s.request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice",
		"password": "secret456",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", rec.Code)
	}

	token := s.login(t, "alice", "secret123")

	rec, body := s.request(t, http.MethodGet, "/api/auth/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: status %d", rec.Code)
	}
	data := body["data"].(map[string]interface{})
	if data["username"] != "alice" {
		t.Fatalf("me: unexpected user %v", data["username"])
	}

	rec, _ = s.request(t, http.MethodGet, "/api/auth/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous me: expected 401, got %d", rec.Code)
	}
}

func TestProductAdminGate(t *testing.T) {
	s := newTestServer(t)
	_, _ = s.request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "password": "secret123",
	})
	customer := s.login(t, "alice", "secret123")
	admin := s.login(t, "admin", "openmall")

	payload := map[string]interface{}{
		"name":  "Smartphone X",
		"price": "999.00",
		"stock": 50,
	}

	rec, _ := s.request(t, http.MethodPost, "/api/products", customer, payload)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("customer create product: expected 403, got %d", rec.Code)
	}
	rec, _ = s.request(t, http.MethodPost, "/api/products", "", payload)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create product: expected 401, got %d", rec.Code)
	}

	rec, body := s.request(t, http.MethodPost, "/api/products", admin, payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin create product: status %d body %s", rec.Code, rec.Body.String())
	}
	created := body["data"].(map[string]interface{})

	// Product reads are public.
	rec, body = s.request(t, http.MethodGet, "/api/products", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list products: status %d", rec.Code)
	}
	if body["total"].(float64) != 1 {
		t.Fatalf("list products: expected total 1, got %v", body["total"])
	}

	rec, _ = s.request(t, http.MethodGet, fmt.Sprintf("/api/products/%v", created["id"]), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get product: status %d", rec.Code)
	}

	rec, _ = s.request(t, http.MethodGet, "/api/products/99999", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing product: expected 404, got %d", rec.Code)
	}
}

func TestCartAndCheckoutFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "openmall")
	_, _ = s.request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "password": "secret123", "address": "1 Main St",
	})
	alice := s.login(t, "alice", "secret123")

	rec, body := s.request(t, http.MethodPost, "/api/products", admin, map[string]interface{}{
		"name": "Product A", "price": "10.00", "stock": 5,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product A: %s", rec.Body.String())
	}
	productA := body["data"].(map[string]interface{})["id"].(float64)

	rec, body = s.request(t, http.MethodPost, "/api/products", admin, map[string]interface{}{
		"name": "Product B", "price": "5.00", "stock": 5,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product B: %s", rec.Body.String())
	}
	productB := body["data"].(map[string]interface{})["id"].(float64)

	// Empty-cart checkout is rejected up front.
	rec, _ = s.request(t, http.MethodPost, "/api/orders", alice, map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty cart checkout: expected 400, got %d", rec.Code)
	}

	// Merge-add: two adds of product A collapse into one line.
	for i := 0; i < 2; i++ {
		rec, _ = s.request(t, http.MethodPost, "/api/cart", alice, map[string]interface{}{
			"product_id": int64(productA), "quantity": 1,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("cart add A: %s", rec.Body.String())
		}
	}
	rec, _ = s.request(t, http.MethodPost, "/api/cart", alice, map[string]interface{}{
		"product_id": int64(productB),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("cart add B: %s", rec.Body.String())
	}

	rec, body = s.request(t, http.MethodGet, "/api/cart", alice, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get cart: status %d", rec.Code)
	}
	lines := body["data"].([]interface{})
	if len(lines) != 2 {
		t.Fatalf("expected 2 cart lines, got %d", len(lines))
	}
	first := lines[0].(map[string]interface{})
	if first["quantity"].(float64) != 2 {
		t.Fatalf("expected merged quantity 2, got %v", first["quantity"])
	}

	rec, body = s.request(t, http.MethodPost, "/api/orders", alice, map[string]string{})
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout: status %d body %s", rec.Code, rec.Body.String())
	}
	order := body["data"].(map[string]interface{})
	if order["total"] != "25" && order["total"] != "25.00" {
		t.Fatalf("expected total 25.00, got %v", order["total"])
	}
	if order["address"] != "1 Main St" {
		t.Fatalf("expected profile address fallback, got %v", order["address"])
	}

	// Cart is now empty, a resubmit fails the precondition.
	rec, body = s.request(t, http.MethodGet, "/api/cart", alice, nil)
	if len(body["data"].([]interface{})) != 0 {
		t.Fatalf("expected empty cart after checkout")
	}
	rec, _ = s.request(t, http.MethodPost, "/api/orders", alice, map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("resubmit checkout: expected 400, got %d", rec.Code)
	}
}

func TestCartOwnershipGate(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "openmall")
	_, _ = s.request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "password": "secret123",
	})
	_, _ = s.request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "bob", "password": "secret123",
	})
	alice := s.login(t, "alice", "secret123")
	bob := s.login(t, "bob", "secret123")

	rec, body := s.request(t, http.MethodPost, "/api/products", admin, map[string]interface{}{
		"name": "Widget", "price": "9.99", "stock": 5,
	})
	productID := body["data"].(map[string]interface{})["id"].(float64)

	rec, body = s.request(t, http.MethodPost, "/api/cart", alice, map[string]interface{}{
		"product_id": int64(productID),
	})
	itemID := body["data"].(map[string]interface{})["id"].(float64)

	rec, _ = s.request(t, http.MethodPatch, fmt.Sprintf("/api/cart/%.0f", itemID), bob, map[string]interface{}{
		"quantity": 5,
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign cart update: expected 403, got %d", rec.Code)
	}

	rec, _ = s.request(t, http.MethodPatch, "/api/cart/99999", alice, map[string]interface{}{
		"quantity": 5,
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing cart item update: expected 404, got %d", rec.Code)
	}
}

func TestStatsAdminOnly(t *testing.T) {
	s := newTestServer(t)
	_, _ = s.request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "password": "secret123",
	})
	alice := s.login(t, "alice", "secret123")
	admin := s.login(t, "admin", "openmall")

	rec, _ := s.request(t, http.MethodGet, "/api/stats", alice, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("customer stats: expected 403, got %d", rec.Code)
	}

	rec, body := s.request(t, http.MethodGet, "/api/stats", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin stats: status %d", rec.Code)
	}
	data := body["data"].(map[string]interface{})
	if data["total_users"].(float64) < 1 {
		t.Fatalf("expected at least one user, got %v", data["total_users"])
	}
	if data["total_orders"].(float64) != 0 {
		t.Fatalf("expected 0 orders, got %v", data["total_orders"])
	}
}

func TestOrderStatusUpdateGate(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "openmall")
	_, _ = s.request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "password": "secret123", "address": "addr",
	})
	alice := s.login(t, "alice", "secret123")

	rec, body := s.request(t, http.MethodPost, "/api/products", admin, map[string]interface{}{
		"name": "Widget", "price": "9.99", "stock": 5,
	})
	productID := body["data"].(map[string]interface{})["id"].(float64)
	_, _ = s.request(t, http.MethodPost, "/api/cart", alice, map[string]interface{}{
		"product_id": int64(productID),
	})
	rec, body = s.request(t, http.MethodPost, "/api/orders", alice, map[string]string{})
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout: %s", rec.Body.String())
	}
	orderID := body["data"].(map[string]interface{})["id"].(string)

	rec, _ = s.request(t, http.MethodPatch, "/api/orders/"+orderID+"/status", alice, map[string]string{
		"status": "shipped",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("customer status update: expected 403, got %d", rec.Code)
	}

	rec, _ = s.request(t, http.MethodPatch, "/api/orders/"+orderID+"/status", admin, map[string]string{
		"status": "teleported",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad status: expected 400, got %d", rec.Code)
	}

	rec, body = s.request(t, http.MethodPatch, "/api/orders/"+orderID+"/status", admin, map[string]string{
		"status": "shipped",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status update: status %d body %s", rec.Code, rec.Body.String())
	}
	if body["data"].(map[string]interface{})["status"] != "shipped" {
		t.Fatalf("expected shipped status")
	}
}
