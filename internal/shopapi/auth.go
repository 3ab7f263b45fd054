package shopapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/openmall/openmall/internal/domain"
	"github.com/openmall/openmall/internal/webserver"
)

type registerPayload struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Name     string `json:"name" validate:"omitempty,max=128"`
	Address  string `json:"address" validate:"omitempty,max=512"`
}

type loginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func registerAuthRoutes() {
	webserver.ApiPOST("/auth/register", registerUser)
	webserver.ApiPOST("/auth/login", login)
	webserver.ApiPOST("/auth/logout", logout)
	webserver.ApiGET("/auth/me", me, webserver.RequireAuth)
}

func registerUser(c echo.Context) error {
	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse registration", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	user, err := GetApp(c).Users().CreateUser(c.Request().Context(),
		strings.TrimSpace(payload.Username), payload.Password,
		payload.Name, payload.Address, domain.RoleCustomer)
	if err != nil {
		return failStore(c, err, "user")
	}

	if err := webserver.SaveSession(c, user); err != nil {
		zap.L().Warn("failed to establish session after registration", zap.Error(err))
	}

	zap.L().Info("user registered", zap.String("username", user.Username))
	return c.JSON(http.StatusCreated, map[string]interface{}{"data": user})
}

func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	appctx := GetApp(c)
	user, err := appctx.Users().Authenticate(c.Request().Context(), payload.Username, payload.Password)
	if err != nil {
		return failStore(c, err, "login")
	}

	if err := webserver.SaveSession(c, user); err != nil {
		return fail(c, http.StatusInternalServerError, "SESSION_ERROR", "Failed to establish session", err.Error())
	}

	// API clients use the bearer token instead of the cookie.
	token, err := webserver.CreateToken(appctx.Config().Web.Secret, user)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to issue token", err.Error())
	}

	zap.L().Info("user login", zap.String("username", user.Username))
	return ok(c, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

func logout(c echo.Context) error {
	if err := webserver.ClearSession(c); err != nil {
		return fail(c, http.StatusInternalServerError, "SESSION_ERROR", "Failed to clear session", err.Error())
	}
	return ok(c, map[string]interface{}{"logout": true})
}

func me(c echo.Context) error {
	return ok(c, webserver.CurrentUser(c))
}
