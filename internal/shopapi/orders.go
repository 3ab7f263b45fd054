package shopapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/openmall/openmall/internal/domain"
	"github.com/openmall/openmall/internal/webserver"
	"github.com/openmall/openmall/pkg/metrics"
)

type checkoutPayload struct {
	Address string `json:"address" validate:"omitempty,max=512"`
}

type orderStatusPayload struct {
	Status string `json:"status" validate:"required"`
}

// registerOrderRoutes registers order endpoints. Listing and checkout
// require a session, status update and export are admin only.
func registerOrderRoutes() {
	webserver.ApiGET("/orders", listOrders, webserver.RequireAuth)
	webserver.ApiGET("/orders/:id", getOrder, webserver.RequireAuth)
	webserver.ApiPOST("/orders", checkout, webserver.RequireAuth)
	webserver.ApiPATCH("/orders/:id/status", updateOrderStatus, webserver.RequireAdmin)
	webserver.ApiGET("/orders/export", exportOrders, webserver.RequireAdmin)
}

func listOrders(c echo.Context) error {
	user := webserver.CurrentUser(c)

	// Admins see every order, customers only their own.
	userID := user.ID
	if user.IsAdmin() {
		userID = 0
	}

	rows, err := GetApp(c).Orders().GetOrders(c.Request().Context(), userID)
	if err != nil {
		return failStore(c, err, "orders")
	}
	return ok(c, rows)
}

func getOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}

	order, err := GetApp(c).Orders().GetOrder(c.Request().Context(), id)
	if err != nil {
		return failStore(c, err, "order")
	}

	user := webserver.CurrentUser(c)
	if !user.IsAdmin() && order.UserID != user.ID {
		return fail(c, http.StatusForbidden, "NOT_OWNER", "Order is not owned by the current user", nil)
	}
	return ok(c, order)
}

func checkout(c echo.Context) error {
	var payload checkoutPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse checkout", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	user := webserver.CurrentUser(c)
	address := strings.TrimSpace(payload.Address)
	if address == "" {
		address = user.Address
	}

	appctx := GetApp(c)
	order, err := appctx.Orders().PlaceOrder(c.Request().Context(), user.ID, address)
	if err != nil {
		return failStore(c, err, "order")
	}

	metrics.IncrCounter("orders_placed", 1)
	zap.L().Info("order placed",
		zap.String("order_ref", order.OrderRef),
		zap.String("username", user.Username),
		zap.String("total", order.Total.StringFixed(2)))

	// Confirmation mail goes to email-shaped usernames only.
	if appctx.GetSettingsBoolValue("shop", "OrderMailEnabled") && strings.Contains(user.Username, "@") {
		subject := appctx.GetSettingsStringValue("shop", "OrderMailSubject")
		appctx.Mailer().SendOrderConfirmation(user.Username, subject, order)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{"data": order})
}

func updateOrderStatus(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}

	var payload orderStatusPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse status", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	if !domain.OrderStatusValid(payload.Status) {
		return fail(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown order status", nil)
	}

	order, err := GetApp(c).Orders().UpdateOrderStatus(c.Request().Context(), id, payload.Status)
	if err != nil {
		return failStore(c, err, "order")
	}
	return ok(c, order)
}

type orderCSVRow struct {
	OrderRef  string `csv:"order_ref"`
	UserID    int64  `csv:"user_id"`
	Address   string `csv:"address"`
	Total     string `csv:"total"`
	Status    string `csv:"status"`
	Items     int    `csv:"items"`
	CreatedAt string `csv:"created_at"`
}

func exportOrders(c echo.Context) error {
	rows, err := GetApp(c).Orders().GetOrders(c.Request().Context(), 0)
	if err != nil {
		return failStore(c, err, "orders")
	}

	out := make([]orderCSVRow, 0, len(rows))
	for _, order := range rows {
		out = append(out, orderCSVRow{
			OrderRef:  order.OrderRef,
			UserID:    order.UserID,
			Address:   order.Address,
			Total:     order.Total.StringFixed(2),
			Status:    order.Status,
			Items:     len(order.Items),
			CreatedAt: order.CreatedAt.Format(time.RFC3339),
		})
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	return gocsv.Marshal(&out, c.Response())
}
