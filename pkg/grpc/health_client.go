package grpc

import (
	"context"
	"fmt"
	"time"

	"github.com/MaverickLook/Big-Bite/pkg/config"
	"github.com/MaverickLook/Big-Bite/pkg/discovery"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthClient probes running instances over the gRPC health protocol,
// finding them through etcd when discovery is available.
type HealthClient struct {
	config    *config.Config
	discovery *discovery.ServiceDiscovery
	logger    *zap.Logger
}

type ProbeResult struct {
	Target string
	Status healthpb.HealthCheckResponse_ServingStatus
	Err    error
}

func NewHealthClient(cfg *config.Config, logger *zap.Logger, disc *discovery.ServiceDiscovery) *HealthClient {
	return &HealthClient{
		config:    cfg,
		discovery: disc,
		logger:    logger,
	}
}

// Targets lists the instance addresses to probe. Without discovery, or when
// nothing is registered, it falls back to the configured server address.
func (c *HealthClient) Targets(ctx context.Context) []string {
	fallback := fmt.Sprintf("%s:%d", c.config.Server.Host, c.config.Server.Port)
	if c.discovery == nil {
		return []string{fallback}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	instances, err := c.discovery.Discover(ctx, c.config.Server.Name)
	if err != nil || len(instances) == 0 {
		c.logger.Info("Using default address", zap.String("address", fallback), zap.Error(err))
		return []string{fallback}
	}

	targets := make([]string, 0, len(instances))
	for _, inst := range instances {
		targets = append(targets, inst.Addr())
	}
	return targets
}

// Probe asks one instance for the status of service ("" for overall).
func (c *HealthClient) Probe(ctx context.Context, target, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, fmt.Errorf("failed to connect to %s: %w", target, err)
	}
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, fmt.Errorf("health check %s: %w", target, err)
	}
	return resp.GetStatus(), nil
}

// ProbeAll probes every target and reports each result.
func (c *HealthClient) ProbeAll(ctx context.Context, service string) []ProbeResult {
	targets := c.Targets(ctx)
	results := make([]ProbeResult, 0, len(targets))
	for _, target := range targets {
		status, err := c.Probe(ctx, target, service)
		results = append(results, ProbeResult{Target: target, Status: status, Err: err})
	}
	return results
}
