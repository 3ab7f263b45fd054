package shopapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openmall/openmall/internal/webserver"
)

type cartAddPayload struct {
	ProductID int64 `json:"product_id" validate:"required,min=1"`
	Quantity  int   `json:"quantity" validate:"omitempty,min=1"`
}

type cartUpdatePayload struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// registerCartRoutes registers cart endpoints, all gated to
// authenticated users.
func registerCartRoutes() {
	webserver.ApiGET("/cart", getCart, webserver.RequireAuth)
	webserver.ApiPOST("/cart", addToCart, webserver.RequireAuth)
	webserver.ApiPATCH("/cart/:id", updateCartItem, webserver.RequireAuth)
	webserver.ApiDELETE("/cart/:id", removeFromCart, webserver.RequireAuth)
	webserver.ApiDELETE("/cart", clearCart, webserver.RequireAuth)
}

func getCart(c echo.Context) error {
	user := webserver.CurrentUser(c)
	items, err := GetApp(c).Cart().GetCart(c.Request().Context(), user.ID)
	if err != nil {
		return failStore(c, err, "cart")
	}
	return ok(c, items)
}

func addToCart(c echo.Context) error {
	var payload cartAddPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart item", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	if payload.Quantity < 1 {
		payload.Quantity = 1
	}

	user := webserver.CurrentUser(c)
	item, err := GetApp(c).Cart().AddToCart(c.Request().Context(), user.ID, payload.ProductID, payload.Quantity)
	if err != nil {
		return failStore(c, err, "product")
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"data": item})
}

func updateCartItem(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid cart item ID", nil)
	}

	var payload cartUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart item", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	user := webserver.CurrentUser(c)
	item, err := GetApp(c).Cart().UpdateCartItem(c.Request().Context(), user.ID, id, payload.Quantity)
	if err != nil {
		return failStore(c, err, "cart item")
	}
	return ok(c, item)
}

func removeFromCart(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid cart item ID", nil)
	}

	user := webserver.CurrentUser(c)
	if err := GetApp(c).Cart().RemoveFromCart(c.Request().Context(), user.ID, id); err != nil {
		return failStore(c, err, "cart item")
	}
	return ok(c, map[string]interface{}{"id": id})
}

func clearCart(c echo.Context) error {
	user := webserver.CurrentUser(c)
	if err := GetApp(c).Cart().ClearCart(c.Request().Context(), user.ID); err != nil {
		return failStore(c, err, "cart")
	}
	return ok(c, map[string]interface{}{"cleared": true})
}
