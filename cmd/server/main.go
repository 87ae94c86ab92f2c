package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-shop/internal/api"
	"go-shop/internal/config"
	"go-shop/internal/db"
	"go-shop/internal/logging"
	"go-shop/internal/media"
	redisdb "go-shop/internal/redis"

	"github.com/gin-gonic/gin"
)

// @title        go-shop API
// @version      1.0
// @description  Users, products and product comments for the shop back office.
// @BasePath     /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.LoadConfig(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(gin.ReleaseMode)

	conn, err := db.Init(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("[Main] DB init error")
	}
	rdb := redisdb.NewClient(cfg)
	defer rdb.Close()
	if err := redisdb.Ping(context.Background(), rdb, 5*time.Second); err != nil {
		log.WithError(err).Fatal("[Main] Redis unavailable")
	}

	uploader, err := media.NewUploader(context.Background(), cfg.Media)
	if err != nil {
		log.WithError(err).Fatal("[Main] Media host init error")
	}
	if _, disabled := uploader.(media.Disabled); disabled {
		log.Warn("[Main] No media bucket configured, image uploads will fail")
	} else if err := media.Ping(context.Background(), uploader, 5*time.Second); err != nil {
		log.WithError(err).Warn("[Main] Media bucket unreachable, image uploads may fail")
	}

	r := api.SetupRouter(api.Deps{Config: cfg, DB: conn, Redis: rdb, Uploader: uploader, Log: log})
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		log.Infof("[Main] Starting server on %s%s", addr, cfg.Server.Subpath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("[Main] Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("[Main] Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("[Main] Forced shutdown")
	}
	if sqlDB, err := conn.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.json"
}
