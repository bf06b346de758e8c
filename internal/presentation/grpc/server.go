package grpc

import (
	"fmt"
	"log/slog"
	"net"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/phishsense/phishsense/pkg/tlsutil"
)

// HealthService is the name reported to gRPC health checks.
const HealthService = "phishsense"

// ServerConfig configures the gRPC listener.
type ServerConfig struct {
	Address string
	// CertFile and KeyFile enable TLS when both are set.
	CertFile   string
	KeyFile    string
	Reflection bool
}

// Server wraps the gRPC server with detection service handlers.
type Server struct {
	address    string
	grpcServer *grpc.Server
	health     *health.Server
	handler    *DetectionServiceHandler
	logger     *slog.Logger
}

// NewServer creates a new gRPC server for the detection service.
func NewServer(handler *DetectionServiceHandler, cfg ServerConfig, logger *slog.Logger) (*Server, error) {
	serverOpts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(recoveryInterceptor(logger), loggingInterceptor(logger)),
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
	}

	if cfg.CertFile != "" && cfg.KeyFile != "" {
		creds, err := tlsutil.ServerTLSConfig(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load gRPC TLS credentials: %w", err)
		}
		serverOpts = append(serverOpts, grpc.Creds(creds))
		logger.Info("gRPC TLS enabled", "cert", cfg.CertFile)
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	grpcServer := grpc.NewServer(serverOpts...)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(HealthService, healthpb.HealthCheckResponse_SERVING)

	RegisterDetectionServiceServer(grpcServer, handler)

	if cfg.Reflection {
		reflection.Register(grpcServer)
	}

	return &Server{
		address:    cfg.Address,
		grpcServer: grpcServer,
		health:     healthServer,
		handler:    handler,
		logger:     logger,
	}, nil
}

// Start begins listening and serving gRPC requests.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	return s.Serve(listener)
}

// Serve serves gRPC requests on an existing listener.
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("gRPC server starting",
		slog.String("address", listener.Addr().String()),
	)
	return s.grpcServer.Serve(listener)
}

// Stop marks the service as not serving and gracefully stops the gRPC server.
func (s *Server) Stop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
