package grpc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MaverickLook/Big-Bite/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func status(t *testing.T, s *HealthServer, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := s.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestCheck_AllHealthy(t *testing.T) {
	s := NewHealthServer(&config.Config{}, zap.NewNop(), map[string]Checker{
		"storage": func(context.Context) error { return nil },
	})

	results := s.Check(context.Background())

	assert.NoError(t, results["storage"])
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, s, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, s, "storage"))
}

func TestCheck_FailingDependency(t *testing.T) {
	healthy := true
	s := NewHealthServer(&config.Config{}, zap.NewNop(), map[string]Checker{
		"storage": func(context.Context) error { return nil },
		"cache": func(context.Context) error {
			if healthy {
				return nil
			}
			return errors.New("connection refused")
		},
	})

	healthy = false
	results := s.Check(context.Background())

	assert.Error(t, results["cache"])
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, s, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, s, "cache"))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, s, "storage"))

	healthy = true
	s.Check(context.Background())
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, s, ""))
}

func TestStart_HangingCheckDoesNotBlockServing(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{Host: "127.0.0.1", Port: 0}}
	s := NewHealthServer(cfg, zap.NewNop(), map[string]Checker{
		"storage": func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})
	s.interval = 100 * time.Millisecond

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Start()
	}()

	assert.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.srv != nil
	}, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		resp, err := s.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "storage"})
		return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_NOT_SERVING
	}, time.Second, 10*time.Millisecond)

	s.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("health server did not stop")
	}
}
