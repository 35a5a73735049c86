package router

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"catapi/internal/auth"
	"catapi/internal/config"
	"catapi/internal/errors"
	"catapi/internal/geo"
	"catapi/internal/handler"
	"catapi/internal/logger"
	"catapi/internal/metrics"
	"catapi/internal/policy"
	"catapi/internal/upload"
	"catapi/internal/validation"
)

// Handlers groups the HTTP handlers served by the API.
type Handlers struct {
	Cat  *handler.CatHandler
	User *handler.UserHandler
	Auth *handler.AuthHandler
}

// Security validates bearer tokens on authenticated routes.
type Security struct {
	JWT    *auth.JWTService
	Tokens auth.TokenStoreInterface
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log *zap.Logger,
	m *metrics.Metrics,
	h Handlers,
	sec Security,
) {
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler(log)
	e.Validator = validation.New()

	e.Use(middleware.RequestID())
	e.Use(logger.RequestLogger(log))
	e.Use(middleware.Recover())
	if m != nil {
		e.Use(m.Middleware())
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	requireToken := echojwt.WithConfig(echojwt.Config{
		ContextKey:     auth.ContextKey,
		ParseTokenFunc: parseToken(sec),
		ErrorHandler: func(c echo.Context, err error) error {
			return errors.Unauthenticated(policy.MsgTokenNotValid)
		},
	})

	uploadLocation, err := geo.ParsePoint(cfg.DefaultLocation)
	if err != nil {
		log.Warn("invalid DEFAULT_LOCATION, using 0,0", zap.String("value", cfg.DefaultLocation))
	}
	storeUpload := upload.Middleware(upload.Config{
		Dir:      cfg.UploadDir,
		Location: uploadLocation,
		Logger:   log,
	})

	// Auth routes
	e.POST("/auth/login", h.Auth.Login)
	e.POST("/auth/refresh", h.Auth.Refresh)
	e.POST("/auth/logout", h.Auth.Logout, requireToken)

	// Cat routes
	cats := e.Group("/cats")
	cats.GET("", h.Cat.ListCats)
	cats.GET("/area", h.Cat.ListCatsInArea)
	cats.GET("/user", h.Cat.ListMyCats, requireToken)
	cats.GET("/:id", h.Cat.GetCat)
	cats.POST("", h.Cat.CreateCat, requireToken, storeUpload)
	cats.PUT("/:id", h.Cat.UpdateCat, requireToken)
	cats.PUT("/:id/admin", h.Cat.UpdateCatAdmin, requireToken)
	cats.DELETE("/:id", h.Cat.DeleteCat, requireToken)
	cats.DELETE("/:id/admin", h.Cat.DeleteCatAdmin, requireToken)

	// User routes
	users := e.Group("/users")
	users.GET("", h.User.ListUsers)
	users.POST("", h.User.CreateUser)
	users.GET("/token", h.User.CheckToken, requireToken)
	users.PUT("/current", h.User.UpdateCurrentUser, requireToken)
	users.DELETE("/current", h.User.DeleteCurrentUser, requireToken)
	users.GET("/:id", h.User.GetUser)
}

// parseToken accepts unrevoked access tokens and stores their claims under
// auth.ContextKey.
func parseToken(sec Security) func(c echo.Context, token string) (interface{}, error) {
	return func(c echo.Context, token string) (interface{}, error) {
		claims, err := sec.JWT.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		if sec.Tokens != nil {
			revoked, err := sec.Tokens.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID)
			if err != nil {
				return nil, err
			}
			if revoked {
				return nil, auth.ErrInvalidToken
			}
		}
		return claims, nil
	}
}
