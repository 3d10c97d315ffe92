// Package grpc exposes the service health over gRPC.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// ServiceName is the name reported alongside the overall ("") health status.
const ServiceName = "gresh.ledger"

const pingTimeout = 2 * time.Second

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server serves grpc.health.v1.Health and reflection. Health follows a
// periodic storage ping.
type Server struct {
	srv      *grpc.Server
	health   *health.Server
	storage  Pinger
	interval time.Duration
	log      logrus.FieldLogger
}

// NewServer creates a Server. Health starts as NOT_SERVING until the first
// successful ping.
func NewServer(storage Pinger, interval time.Duration, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "grpc")

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(log)))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	// Register reflection service (useful for tools like grpcurl)
	reflection.Register(srv)

	s := &Server{
		srv:      srv,
		health:   hs,
		storage:  storage,
		interval: interval,
		log:      log,
	}
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Serve accepts connections on lis until Stop or GracefulStop.
func (s *Server) Serve(lis net.Listener) error {
	return s.srv.Serve(lis)
}

// Monitor pings storage every interval and updates the health status until
// ctx is done.
func (s *Server) Monitor(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

// GracefulStop marks every service NOT_SERVING and drains in-flight calls.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}

// Stop closes all connections immediately.
func (s *Server) Stop() {
	s.srv.Stop()
}

func (s *Server) check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := s.storage.Ping(ctx); err != nil {
		s.log.WithError(err).Warn("storage ping failed")
		s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	s.setStatus(healthpb.HealthCheckResponse_SERVING)
}

func (s *Server) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

func loggingInterceptor(log logrus.FieldLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.WithFields(logrus.Fields{
			"method":   info.FullMethod,
			"code":     status.Code(err).String(),
			"duration": time.Since(start).String(),
		}).Debug("rpc completed")
		return resp, err
	}
}
