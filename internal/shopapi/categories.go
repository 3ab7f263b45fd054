package shopapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/openmall/openmall/internal/domain"
	"github.com/openmall/openmall/internal/webserver"
)

type categoryPayload struct {
	Name        string `json:"name" validate:"required,min=1,max=128"`
	Slug        string `json:"slug" validate:"required,min=1,max=128"`
	Description string `json:"description" validate:"omitempty,max=1024"`
}

// registerCategoryRoutes registers category endpoints. Reads are
// public, mutations are admin only.
func registerCategoryRoutes() {
	webserver.ApiGET("/categories", listCategories)
	webserver.ApiGET("/categories/:id", getCategory)
	webserver.ApiPOST("/categories", createCategory, webserver.RequireAdmin)
	webserver.ApiPUT("/categories/:id", updateCategory, webserver.RequireAdmin)
	webserver.ApiDELETE("/categories/:id", deleteCategory, webserver.RequireAdmin)
}

func listCategories(c echo.Context) error {
	rows, err := GetApp(c).Catalog().ListCategories(c.Request().Context())
	if err != nil {
		return failStore(c, err, "categories")
	}
	return ok(c, rows)
}

func getCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}
	cat, err := GetApp(c).Catalog().GetCategory(c.Request().Context(), id)
	if err != nil {
		return failStore(c, err, "category")
	}
	return ok(c, cat)
}

func createCategory(c echo.Context) error {
	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	cat := domain.Category{
		Name:        strings.TrimSpace(payload.Name),
		Slug:        strings.ToLower(strings.TrimSpace(payload.Slug)),
		Description: payload.Description,
	}
	if err := GetApp(c).Catalog().CreateCategory(c.Request().Context(), &cat); err != nil {
		return failStore(c, err, "category")
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"data": cat})
}

func updateCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}

	catalog := GetApp(c).Catalog()
	cat, err := catalog.GetCategory(c.Request().Context(), id)
	if err != nil {
		return failStore(c, err, "category")
	}

	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	cat.Name = strings.TrimSpace(payload.Name)
	cat.Slug = strings.ToLower(strings.TrimSpace(payload.Slug))
	cat.Description = payload.Description

	if err := catalog.UpdateCategory(c.Request().Context(), cat); err != nil {
		return failStore(c, err, "category")
	}
	return ok(c, cat)
}

func deleteCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}
	if err := GetApp(c).Catalog().DeleteCategory(c.Request().Context(), id); err != nil {
		return failStore(c, err, "category")
	}
	return ok(c, map[string]interface{}{"id": id})
}
