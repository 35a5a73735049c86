package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"catapi/docs"
	"catapi/internal/auth"
	"catapi/internal/config"
	"catapi/internal/handler"
	"catapi/internal/kv"
	"catapi/internal/logger"
	"catapi/internal/metrics"
	"catapi/internal/router"
	"catapi/internal/service"
	"catapi/internal/store"
)

// @title Cat Registry API
// @version 1.0
// @description Cats owned by users, with geospatial search and JWT authentication.
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("store init", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}

	kvClient := kv.New(kv.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass, DB: cfg.RedisDB})
	if err := kvClient.Ping(ctx); err != nil {
		log.Warn("redis unreachable, refresh tokens will not persist", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}

	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(kvClient)

	authService := service.NewAuthService(st.Users, jwtService, tokenStore)
	userService := service.NewUserService(st.Users)
	catService := service.NewCatService(st.Cats, st.Users)

	e := echo.New()
	router.Register(e, cfg, log, metrics.New(), router.Handlers{
		Cat:  handler.NewCatHandler(catService),
		User: handler.NewUserHandler(userService),
		Auth: handler.NewAuthHandler(authService),
	}, router.Security{
		JWT:    jwtService,
		Tokens: tokenStore,
	})

	if cfg.SwaggerHost != "" {
		host := cfg.SwaggerHost
		host = strings.TrimPrefix(host, "http://")
		host = strings.TrimPrefix(host, "https://")
		docs.SwaggerInfo.Host = host
		log.Info("swagger documentation", zap.String("url", cfg.SwaggerHost+"/swagger/index.html"))
	}

	go func() {
		addr := ":" + cfg.ServerPort
		log.Info("listening", zap.String("addr", addr), zap.String("driver", cfg.StoreDriver))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal("server start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	if err := st.Close(shutdownCtx); err != nil {
		log.Error("store close", zap.Error(err))
	}
	if err := kvClient.Close(); err != nil {
		log.Error("redis close", zap.Error(err))
	}
}
