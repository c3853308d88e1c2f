package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MaverickLook/Big-Bite/gateway"
	"github.com/MaverickLook/Big-Bite/pkg/analytics"
	"github.com/MaverickLook/Big-Bite/pkg/auth"
	"github.com/MaverickLook/Big-Bite/pkg/catalog"
	"github.com/MaverickLook/Big-Bite/pkg/config"
	"github.com/MaverickLook/Big-Bite/pkg/discovery"
	"github.com/MaverickLook/Big-Bite/pkg/events"
	"github.com/MaverickLook/Big-Bite/pkg/grpc"
	applog "github.com/MaverickLook/Big-Bite/pkg/logger"
	"github.com/MaverickLook/Big-Bite/pkg/metrics"
	"github.com/MaverickLook/Big-Bite/pkg/order"
	"github.com/MaverickLook/Big-Bite/pkg/repository"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := pflag.StringP("config", "c", "config/config.yaml", "path to the YAML config file")
	pflag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Setup logger
	logger, err := applog.New(cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting Big-Bite",
		zap.String("name", cfg.Server.Name),
		zap.String("storage", cfg.Storage.Driver),
		zap.Int("http_port", cfg.Gateway.Port),
		zap.Int("grpc_port", cfg.Server.Port))

	ctx := context.Background()

	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer st.close()

	checks := map[string]gateway.HealthCheck{"storage": st.ping}
	m := metrics.New()

	// Event sinks
	sinks := []events.Sink{m}
	if st.mongo != nil {
		sinks = append(sinks, events.NewAuditSink(st.mongo))
	}
	if cfg.RabbitMQ.Enabled {
		publisher, err := events.NewAMQPSink(&cfg.RabbitMQ)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, order events will not be published", zap.Error(err))
		} else {
			defer publisher.Close()
			sinks = append(sinks, publisher)
			logger.Info("RabbitMQ connected", zap.String("exchange", cfg.RabbitMQ.Exchange))
		}
	}

	dispatcher, err := events.NewDispatcher(logger, sinks...)
	if err != nil {
		logger.Fatal("Failed to start event dispatcher", zap.Error(err))
	}

	orderOpts := []order.Option{order.WithNotifier(dispatcher)}
	if cfg.Redis.Enabled {
		redisRepo := repository.NewRedisRepository(&cfg.Redis)
		defer redisRepo.Close()
		if err := redisRepo.Ping(ctx); err != nil {
			logger.Warn("Redis connection failed", zap.Error(err))
		} else {
			logger.Info("Redis connected successfully")
		}
		orderOpts = append(orderOpts, order.WithCache(redisRepo.Orders()))
		checks["cache"] = redisRepo.Ping
	}

	loc, err := cfg.Analytics.Location()
	if err != nil {
		logger.Fatal("Invalid analytics timezone", zap.Error(err))
	}

	services := gateway.Services{
		Orders:    order.NewService(st.orders, st.foods, logger, orderOpts...),
		Catalog:   catalog.NewService(st.foods, logger),
		Analytics: analytics.NewAggregator(st.orders, logger, analytics.WithLocation(loc)),
		Tokens:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Metrics:   m,
		Health:    checks,
	}
	if st.mongo != nil {
		services.Audit = st.mongo
	}

	gw := gateway.NewGateway(cfg, logger, services)
	gw.SetupRoutes()

	grpcChecks := make(map[string]grpc.Checker, len(checks))
	for name, check := range checks {
		grpcChecks[name] = grpc.Checker(check)
	}
	healthServer := grpc.NewHealthServer(cfg, logger, grpcChecks)

	serverErr := make(chan error, 2)
	go func() {
		if err := gw.Start(); err != nil {
			serverErr <- fmt.Errorf("gateway: %w", err)
		}
	}()
	go func() {
		if err := healthServer.Start(); err != nil {
			serverErr <- fmt.Errorf("grpc health: %w", err)
		}
	}()

	// Register in etcd
	var (
		sd       *discovery.ServiceDiscovery
		instance = &discovery.ServiceInstance{
			Name: cfg.Server.Name,
			Host: cfg.Server.Host,
			Port: cfg.Server.Port,
		}
	)
	if cfg.Etcd.Enabled {
		sd, err = discovery.NewServiceDiscovery(&cfg.Etcd, logger)
		if err != nil {
			logger.Warn("Failed to connect to etcd, continuing without service discovery", zap.Error(err))
		} else if err := sd.Register(ctx, instance); err != nil {
			logger.Warn("Failed to register service", zap.Error(err))
		} else {
			logger.Info("Service registered in etcd", zap.String("address", instance.Addr()))
		}
	}

	logger.Info("Big-Bite started successfully")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-serverErr:
		logger.Error("Server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if sd != nil {
		if err := sd.Deregister(shutdownCtx, instance); err != nil {
			logger.Error("Failed to deregister service", zap.Error(err))
		}
		sd.Close()
	}
	if err := gw.Shutdown(shutdownCtx); err != nil {
		logger.Error("Gateway shutdown failed", zap.Error(err))
	}
	healthServer.Stop()
	if err := dispatcher.Close(); err != nil {
		logger.Error("Event dispatcher shutdown failed", zap.Error(err))
	}

	logger.Info("Big-Bite stopped")
}
