package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"hotel/internal/auth"
	"hotel/internal/config"
	"hotel/internal/guard"
	"hotel/internal/handler"
	"hotel/internal/logging"
)

// Handlers bundles the HTTP handlers mounted by Register.
type Handlers struct {
	Users  *handler.UserHandler
	Rooms  *handler.RoomHandler
	Health *handler.HealthHandler
}

// Security carries what the guards need to check bearer tokens.
type Security struct {
	JWT        *auth.JWTService
	TokenStore auth.TokenStoreInterface
}

// route is one entry of the route table. Non-public routes always run Authenticated first.
type route struct {
	method  string
	path    string
	handler echo.HandlerFunc
	public  bool
	guards  []guard.Guard
}

func routes(h Handlers) []route {
	return []route{
		{method: http.MethodGet, path: "/healthz", handler: h.Health.Check, public: true},

		{method: http.MethodPost, path: "/users/register", handler: h.Users.Register, public: true},
		{method: http.MethodPost, path: "/users/login", handler: h.Users.Login, public: true},
		{method: http.MethodGet, path: "/users/me", handler: h.Users.Me},
		{method: http.MethodPatch, path: "/users/admin/:id", handler: h.Users.UpdateAdmin, guards: []guard.Guard{guard.IsAdmin()}},
		{method: http.MethodPatch, path: "/users/:id", handler: h.Users.Update, guards: []guard.Guard{guard.IsMine("id")}},
		{method: http.MethodDelete, path: "/users/:id", handler: h.Users.Delete, guards: []guard.Guard{guard.IsMine("id")}},

		{method: http.MethodPost, path: "/rooms/register", handler: h.Rooms.Register, guards: []guard.Guard{guard.IsAdmin()}},
		{method: http.MethodGet, path: "/rooms", handler: h.Rooms.List, public: true},
		{method: http.MethodGet, path: "/rooms/:id", handler: h.Rooms.Get, public: true},
		{method: http.MethodPatch, path: "/rooms/:id", handler: h.Rooms.Update, guards: []guard.Guard{guard.IsAdmin()}},
		{method: http.MethodDelete, path: "/rooms/:id", handler: h.Rooms.Delete, guards: []guard.Guard{guard.IsAdmin()}},
	}
}

// Register wires middleware and routes.
func Register(e *echo.Echo, cfg *config.Config, log *logging.Logger, sec Security, h Handlers) {
	e.HideBanner = true
	e.Validator = NewValidator()

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.CORSWithConfig(corsConfig(cfg)))

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authenticated := guard.Authenticated(sec.JWT, sec.TokenStore)
	for _, r := range routes(h) {
		var mw []echo.MiddlewareFunc
		if !r.public {
			mw = append(mw, authenticated)
			if len(r.guards) > 0 {
				mw = append(mw, guard.Require(r.guards...))
			}
		}
		e.Add(r.method, r.path, r.handler, mw...)
	}
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	conf := middleware.DefaultCORSConfig
	if len(cfg.CORSAllowedOrigins) > 0 {
		conf.AllowOrigins = cfg.CORSAllowedOrigins
	}
	conf.AllowHeaders = []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization}
	return conf
}

func requestLogger(log *logging.Logger) echo.MiddlewareFunc {
	httpLog := log.With("component", "http")
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			switch {
			case v.Status >= http.StatusInternalServerError:
				level = slog.LevelError
			case v.Status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			httpLog.Log(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator builds a CustomValidator that reports fields by their JSON names.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "e164":
		return fe.Field() + " must be an E.164 phone number"
	case "oneof":
		return fe.Field() + " must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		return fe.Field() + " must not be empty"
	default:
		return fe.Field() + " is invalid"
	}
}
