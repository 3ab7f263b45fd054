package shopapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/openmall/openmall/internal/app"
	"github.com/openmall/openmall/internal/store"
	"github.com/openmall/openmall/internal/webserver"
)

// ListResponse is the paged list envelope.
type ListResponse struct {
	Data    interface{} `json:"data"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"perPage"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"data": data})
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, ListResponse{
		Data:    rows,
		Total:   total,
		Page:    page,
		PerPage: pageSize,
	})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	body := map[string]interface{}{
		"code":    code,
		"message": message,
	}
	if detail != nil {
		body["detail"] = detail
	}
	return c.JSON(status, body)
}

// failStore maps store sentinel errors onto the HTTP envelope.
func failStore(c echo.Context, err error, subject string) error {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", subject+" not found", nil)
	case errors.Is(err, store.ErrNotOwner):
		return fail(c, http.StatusForbidden, "NOT_OWNER", subject+" is not owned by the current user", nil)
	case errors.Is(err, store.ErrEmptyCart):
		return fail(c, http.StatusBadRequest, "EMPTY_CART", "Cart is empty", nil)
	case errors.Is(err, store.ErrInsufficientStock):
		return fail(c, http.StatusConflict, "INSUFFICIENT_STOCK", "Insufficient product stock", nil)
	case errors.Is(err, store.ErrSlugExists):
		return fail(c, http.StatusConflict, "SLUG_EXISTS", "Category slug already exists", nil)
	case errors.Is(err, store.ErrUsernameExists):
		return fail(c, http.StatusConflict, "USERNAME_EXISTS", "Username already exists", nil)
	case errors.Is(err, store.ErrBadCredentials):
		return fail(c, http.StatusUnauthorized, "BAD_CREDENTIALS", "Invalid username or password", nil)
	default:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to process "+subject, err.Error())
	}
}

func handleValidationError(c echo.Context, err error) error {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request fields", fields)
	}
	return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", nil)
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

func parsePagination(c echo.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.QueryParam("perPage"))
	if pageSize < 1 {
		// fallback to legacy pageSize param
		pageSize, _ = strconv.Atoi(c.QueryParam("pageSize"))
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 20
	}
	return page, pageSize
}

// GetApp returns the application context bound to the request.
func GetApp(c echo.Context) app.AppContext {
	return webserver.GetAppContext(c)
}
