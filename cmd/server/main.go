package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahvar/team-activity-monitor/common/id"
	"github.com/ahvar/team-activity-monitor/common/logger"
	"github.com/ahvar/team-activity-monitor/common/otel"
	"github.com/ahvar/team-activity-monitor/core/config"
	"github.com/ahvar/team-activity-monitor/internal/cache"
	"github.com/ahvar/team-activity-monitor/internal/http/middleware"
	httprouter "github.com/ahvar/team-activity-monitor/internal/http/router"
	"github.com/ahvar/team-activity-monitor/internal/service"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel, cfg.Env)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg, os.Stdout)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "team activity monitor starting",
		"env", cfg.Env,
		"service", cfg.OTel.ServiceName,
		"members", cfg.Team.Roster.Len(),
		"issue_tracker", cfg.IssueTracker,
		"code_host", cfg.CodeHost)

	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	var store cache.Store
	if cfg.Cache.Enabled() {
		redisClient, err := cache.Connect(ctx, cfg.Cache.RedisURL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		store = cache.NewRedisStore(redisClient)
		slog.InfoContext(ctx, "redis connected", "ttl", cfg.Cache.TTL)
	}

	services, err := service.NewServices(service.ServicesConfig{
		Config: cfg,
		Cache:  store,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create services", "error", err)
		os.Exit(1)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services)

	return router
}

const banner = `
 _____ ___    _    __  __   __  __  ___  _   _ ___ _____ ___  ____
|_   _| __|  /_\  |  \/  | |  \/  |/ _ \| \ | |_ _|_   _/ _ \|  _ \
  | | | _|  / _ \ | |\/| | | |\/| | (_) |  \| || |  | || (_) | |_) |
  |_| |___|/_/ \_\|_|  |_| |_|  |_|\___/|_|\_|___| |_| \___/|_| \_\
`
