package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ahvar/team-activity-monitor/common/id"
	"github.com/ahvar/team-activity-monitor/common/logger"
	"github.com/ahvar/team-activity-monitor/core/config"
	"github.com/ahvar/team-activity-monitor/internal/cache"
	"github.com/ahvar/team-activity-monitor/internal/service"
)

var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, connect, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// connect builds the activity service from the environment. Logs go to
// stderr so that stdout carries only answers.
func connect(ctx context.Context) (service.ActivityService, func(), error) {
	cfg, err := config.Load(config.ServiceTypeCLI)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	logger.Setup(cfg, os.Stderr)

	if err := id.Init(1); err != nil {
		return nil, nil, fmt.Errorf("initializing id generator: %w", err)
	}

	cleanup := func() {}
	var store cache.Store
	if cfg.Cache.Enabled() {
		client, err := cache.Connect(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() { _ = client.Close() }
		store = cache.NewRedisStore(client)
	}

	services, err := service.NewServices(service.ServicesConfig{Config: cfg, Cache: store})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return services.Activity(), cleanup, nil
}
