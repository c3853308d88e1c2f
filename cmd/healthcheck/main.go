// Command healthcheck probes running instances over gRPC health, finding
// them through etcd when discovery is enabled. It exits non-zero when any
// instance is not serving.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/MaverickLook/Big-Bite/pkg/config"
	"github.com/MaverickLook/Big-Bite/pkg/discovery"
	"github.com/MaverickLook/Big-Bite/pkg/grpc"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	configPath := pflag.StringP("config", "c", "config/config.yaml", "path to the YAML config file")
	service := pflag.StringP("service", "s", "", "dependency to check (empty for overall status)")
	timeout := pflag.Duration("timeout", 5*time.Second, "overall probe timeout")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(2)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	var sd *discovery.ServiceDiscovery
	if cfg.Etcd.Enabled {
		sd, err = discovery.NewServiceDiscovery(&cfg.Etcd, logger)
		if err != nil {
			logger.Warn("Failed to connect to etcd, probing configured address", zap.Error(err))
			sd = nil
		} else {
			defer sd.Close()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	healthy := true
	for _, r := range grpc.NewHealthClient(cfg, logger, sd).ProbeAll(ctx, *service) {
		if r.Err != nil {
			healthy = false
			fmt.Printf("%s\tERROR\t%v\n", r.Target, r.Err)
			continue
		}
		if r.Status != healthpb.HealthCheckResponse_SERVING {
			healthy = false
		}
		fmt.Printf("%s\t%s\n", r.Target, r.Status)
	}

	if !healthy {
		os.Exit(1)
	}
}
