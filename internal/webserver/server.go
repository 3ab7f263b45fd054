package webserver

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/openmall/openmall/internal/app"
	"github.com/openmall/openmall/pkg/metrics"
)

// AppContextKey is the echo context key holding the application context.
const AppContextKey = "openmall_app"

type WebServer struct {
	appctx app.AppContext
	root   *echo.Echo
	api    *echo.Group
}

var server *WebServer

// Init builds the echo server with session, validation, and logging
// middleware wired in. Routes are registered afterwards through the
// ApiGET/ApiPOST/ApiPUT/ApiPATCH/ApiDELETE helpers.
func Init(appctx app.AppContext) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = NewJSONSerializer()
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(appctx.Config().Web.Secret))))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(AppContextKey, appctx)
			metrics.IncrCounter("http_requests", 1)
			return next(c)
		}
	})
	e.Use(ResolveIdentity)

	s := &WebServer{
		appctx: appctx,
		root:   e,
		api:    e.Group("/api"),
	}
	server = s
	return s
}

// Echo exposes the underlying echo instance (used in tests).
func (s *WebServer) Echo() *echo.Echo {
	return s.root
}

// Listen starts the HTTP listener and blocks.
func (s *WebServer) Listen() error {
	cfg := s.appctx.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zap.S().Infof("web server listening on %s", addr)
	err := s.root.Start(addr)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.GET(path, h, m...)
}

func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.POST(path, h, m...)
}

func ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.PUT(path, h, m...)
}

func ApiPATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.PATCH(path, h, m...)
}

func ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.DELETE(path, h, m...)
}

// GetAppContext returns the application context bound to the request.
func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(AppContextKey).(app.AppContext)
}
