package grpc

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service key reported next to the overall ("") status.
const ServiceName = "storefront"

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthService struct {
	health   *health.Server
	pinger   Pinger
	interval time.Duration
	log      *logrus.Logger
}

func NewHealthService(pinger Pinger, interval time.Duration, logger *logrus.Logger) *HealthService {
	return &HealthService{
		health:   health.NewServer(),
		pinger:   pinger,
		interval: interval,
		log:      logger,
	}
}

// NewServer builds a gRPC server exposing grpc.health.v1 and reflection.
func (s *HealthService) NewServer() *grpc.Server {
	server := grpc.NewServer()
	healthpb.RegisterHealthServer(server, s.health)
	reflection.Register(server)
	s.log.Info("gRPC health and reflection services registered")
	return server
}

// Probe checks the database once and updates the reported status.
func (s *HealthService) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if err := s.pinger.PingContext(ctx); err != nil {
		s.log.Warnf("Health: Database ping failed: %v", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	return status
}

// Run probes on every interval until ctx is done, then marks the service as shutting down.
func (s *HealthService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	last := s.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			s.health.Shutdown()
			s.log.Info("Health: Probe loop stopped")
			return
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, s.interval)
			status := s.Probe(probeCtx)
			cancel()
			if status != last {
				s.log.Infof("Health: Serving status changed from %s to %s", last, status)
				last = status
			}
		}
	}
}

// Check answers like a remote health client would, without a network hop.
func (s *HealthService) Check(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}
