package webserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/openmall/openmall/internal/domain"
	"github.com/openmall/openmall/pkg/common"
)

const (
	SessionName    = "openmall_session"
	SessionUserKey = "uid"
	UserContextKey = "openmall_user"

	tokenTTL = 24 * time.Hour
)

// TokenClaims is the bearer token payload for API clients.
type TokenClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// CreateToken signs a bearer token for the given user.
func CreateToken(secret string, user *domain.User) (string, error) {
	claims := TokenClaims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ID:        common.UUID(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parseToken(secret, tokenString string) (*TokenClaims, error) {
	claims := new(TokenClaims)
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// ResolveIdentity loads the request user from the session cookie or an
// Authorization bearer token. Missing or invalid identity leaves the
// request anonymous, the gates below decide whether that is an error.
func ResolveIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		appctx := GetAppContext(c)

		var userID int64
		if sess, err := session.Get(SessionName, c); err == nil {
			if v, ok := sess.Values[SessionUserKey].(int64); ok {
				userID = v
			}
		}

		if userID == 0 {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if strings.HasPrefix(auth, "Bearer ") {
				claims, err := parseToken(appctx.Config().Web.Secret, strings.TrimPrefix(auth, "Bearer "))
				if err == nil {
					userID, _ = strconv.ParseInt(claims.Subject, 10, 64)
				} else {
					zap.L().Debug("bearer token rejected", zap.Error(err))
				}
			}
		}

		if userID != 0 {
			user, err := appctx.Users().GetUser(c.Request().Context(), userID)
			if err == nil {
				c.Set(UserContextKey, user)
			}
		}
		return next(c)
	}
}

// CurrentUser returns the authenticated user bound to the request, or
// nil for anonymous requests.
func CurrentUser(c echo.Context) *domain.User {
	if user, ok := c.Get(UserContextKey).(*domain.User); ok {
		return user
	}
	return nil
}

// RequireAuth gates an endpoint to authenticated users.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if CurrentUser(c) == nil {
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{
				"code":    "UNAUTHORIZED",
				"message": "Authentication required",
			})
		}
		return next(c)
	}
}

// RequireAdmin gates an endpoint to users with the admin role.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := CurrentUser(c)
		if user == nil {
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{
				"code":    "UNAUTHORIZED",
				"message": "Authentication required",
			})
		}
		if !user.IsAdmin() {
			return c.JSON(http.StatusForbidden, map[string]interface{}{
				"code":    "FORBIDDEN",
				"message": "Admin role required",
			})
		}
		return next(c)
	}
}

// SaveSession binds the user to the session cookie.
func SaveSession(c echo.Context, user *domain.User) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}
	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
	}
	sess.Values[SessionUserKey] = user.ID
	return sess.Save(c.Request(), c.Response())
}

// ClearSession drops the session cookie.
func ClearSession(c echo.Context) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}
	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	}
	delete(sess.Values, SessionUserKey)
	return sess.Save(c.Request(), c.Response())
}
