// Package grpchealth exposes the health checker over the standard
// grpc.health.v1 protocol for load balancer and orchestrator probes.
package grpchealth

import (
	"fmt"
	"net"

	apphealth "ice-breakun/backend/pkg/health"
	"ice-breakun/backend/pkg/logger"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is reported alongside the server-wide ("") status
const ServiceName = "icebreakun.v1.API"

// Server is a gRPC server carrying only the health service
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	log    *logger.Logger
}

// New creates a server whose status follows checker.
// It reports NOT_SERVING until the first check run.
func New(checker *apphealth.Checker, log *logger.Logger) *Server {
	if log == nil {
		log = logger.GetGlobal()
	}

	s := &Server{
		grpc:   grpc.NewServer(),
		health: health.NewServer(),
		log:    log.WithComponent("grpc-health"),
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.SetServing(false)

	if checker != nil {
		checker.OnChange(s.SetServing)
	}
	return s
}

// SetServing updates the reported status
func (s *Server) SetServing(healthy bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if healthy {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Serve accepts connections on lis until Stop is called
func (s *Server) Serve(lis net.Listener) error {
	s.log.Info("gRPC health server listening", "addr", lis.Addr().String())
	return s.grpc.Serve(lis)
}

// ListenAndServe listens on the TCP port and serves
func (s *Server) ListenAndServe(port string) error {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", port, err)
	}
	return s.Serve(lis)
}

// Stop reports NOT_SERVING to watchers and drains the server
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
