package grpc

import (
	"context"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/MaverickLook/Big-Bite/pkg/config"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const defaultCheckInterval = 10 * time.Second

// Checker reports whether a dependency is reachable.
type Checker func(ctx context.Context) error

// HealthServer serves the standard gRPC health protocol. Each named checker
// becomes a service in the health map; the overall ("") status is SERVING
// only while every checker passes.
type HealthServer struct {
	config   *config.Config
	logger   *zap.Logger
	health   *health.Server
	checks   map[string]Checker
	interval time.Duration

	mu     sync.Mutex
	srv    *grpc.Server
	cancel context.CancelFunc
}

func NewHealthServer(cfg *config.Config, logger *zap.Logger, checks map[string]Checker) *HealthServer {
	return &HealthServer{
		config:   cfg,
		logger:   logger.Named("grpc-health"),
		health:   health.NewServer(),
		checks:   checks,
		interval: defaultCheckInterval,
	}
}

// Check runs every checker once and publishes the results.
func (s *HealthServer) Check(ctx context.Context) map[string]error {
	results := make(map[string]error, len(s.checks))
	overall := healthpb.HealthCheckResponse_SERVING

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		err := s.checks[name](ctx)
		results[name] = err

		status := healthpb.HealthCheckResponse_SERVING
		if err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			overall = healthpb.HealthCheckResponse_NOT_SERVING
			s.logger.Warn("Dependency unhealthy", zap.String("dependency", name), zap.Error(err))
		}
		s.health.SetServingStatus(name, status)
	}
	s.health.SetServingStatus("", overall)
	return results
}

// Start listens on the configured server address and blocks until Stop.
func (s *HealthServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, s.health)
	reflection.Register(srv)

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.srv = srv
	s.cancel = cancel
	s.mu.Unlock()

	checkCtx, cancelCheck := context.WithTimeout(ctx, s.checkTimeout())
	s.Check(checkCtx)
	cancelCheck()
	go s.watch(ctx)

	s.logger.Info("Health service started", zap.String("address", addr))

	return srv.Serve(lis)
}

func (s *HealthServer) watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, s.checkTimeout())
			s.Check(checkCtx)
			cancel()
		}
	}
}

// checkTimeout bounds one round of checks so a hanging dependency cannot
// stall startup or the next tick.
func (s *HealthServer) checkTimeout() time.Duration {
	return s.interval / 2
}

func (s *HealthServer) Stop() {
	s.health.Shutdown()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	if s.srv != nil {
		s.srv.GracefulStop()
	}
}
