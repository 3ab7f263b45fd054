package shopapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/openmall/openmall/internal/domain"
	"github.com/openmall/openmall/internal/store"
	"github.com/openmall/openmall/internal/webserver"
)

type productPayload struct {
	CategoryID  *int64  `json:"category_id"`
	Name        string  `json:"name" validate:"required,min=1,max=256"`
	Description string  `json:"description" validate:"omitempty,max=4000"`
	Price       string  `json:"price" validate:"required"`
	Stock       *int    `json:"stock" validate:"required,min=0"`
	ImageURL    string  `json:"image_url" validate:"omitempty,max=1024"`
}

func (p *productPayload) parsePrice() (decimal.Decimal, bool) {
	price, err := decimal.NewFromString(strings.TrimSpace(p.Price))
	if err != nil || price.IsNegative() {
		return decimal.Zero, false
	}
	return price, true
}

// registerProductRoutes registers catalog product endpoints. Reads are
// public, mutations are admin only.
func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts)
	webserver.ApiGET("/products/:id", getProduct)
	webserver.ApiPOST("/products", createProduct, webserver.RequireAdmin)
	webserver.ApiPUT("/products/:id", updateProduct, webserver.RequireAdmin)
	webserver.ApiDELETE("/products/:id", deleteProduct, webserver.RequireAdmin)
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	filter := store.ProductFilter{
		Query:    strings.TrimSpace(c.QueryParam("q")),
		Sort:     strings.TrimSpace(c.QueryParam("sort")),
		Order:    strings.TrimSpace(c.QueryParam("order")),
		Page:     page,
		PageSize: pageSize,
	}
	if filter.Query == "" {
		filter.Query = strings.TrimSpace(c.QueryParam("search"))
	}
	if v := c.QueryParam("categoryId"); v != "" {
		cid, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_CATEGORY", "Invalid category ID", nil)
		}
		filter.CategoryID = &cid
	}

	rows, total, err := GetApp(c).Catalog().ListProducts(c.Request().Context(), filter)
	if err != nil {
		return failStore(c, err, "products")
	}
	return paged(c, rows, total, filter.Page, filter.PageSize)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	p, err := GetApp(c).Catalog().GetProduct(c.Request().Context(), id)
	if err != nil {
		return failStore(c, err, "product")
	}
	return ok(c, p)
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	price, valid := payload.parsePrice()
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_PRICE", "Price must be a non-negative decimal", nil)
	}

	p := domain.Product{
		CategoryID:  payload.CategoryID,
		Name:        strings.TrimSpace(payload.Name),
		Description: payload.Description,
		Price:       price,
		Stock:       *payload.Stock,
		ImageURL:    strings.TrimSpace(payload.ImageURL),
	}
	if err := GetApp(c).Catalog().CreateProduct(c.Request().Context(), &p); err != nil {
		return failStore(c, err, "product")
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"data": p})
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	catalog := GetApp(c).Catalog()
	p, err := catalog.GetProduct(c.Request().Context(), id)
	if err != nil {
		return failStore(c, err, "product")
	}

	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	price, valid := payload.parsePrice()
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_PRICE", "Price must be a non-negative decimal", nil)
	}

	p.CategoryID = payload.CategoryID
	p.Name = strings.TrimSpace(payload.Name)
	p.Description = payload.Description
	p.Price = price
	p.Stock = *payload.Stock
	p.ImageURL = strings.TrimSpace(payload.ImageURL)
	p.Category = nil

	if err := catalog.UpdateProduct(c.Request().Context(), p); err != nil {
		return failStore(c, err, "product")
	}
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	if err := GetApp(c).Catalog().DeleteProduct(c.Request().Context(), id); err != nil {
		return failStore(c, err, "product")
	}
	return ok(c, map[string]interface{}{"id": id})
}
