// Package grpc serves the backend's liveness status over the standard gRPC
// health protocol. The console polls it to show whether it is online.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/fleetconsole/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health-check service the console asks about.
const ServiceName = "fleet.v1.Fleet"

// TokenValidator resolves an access token to a user ID.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

type GRPCServer struct {
	address string
	logger  logging.Logger
	tokens  TokenValidator
	health  *health.Server
}

func NewGRPCServer(a string, l logging.Logger, tokens TokenValidator) *GRPCServer {
	h := health.NewServer()
	h.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		tokens:  tokens,
		health:  h,
	}
}

// SetServing flips the reported status of ServiceName.
func (s *GRPCServer) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, st)
}

// Monitor runs check every interval and reports SERVING while it succeeds.
// It returns when ctx is done.
func (s *GRPCServer) Monitor(ctx context.Context, interval time.Duration, check func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	serving := true
	for {
		err := check(ctx)
		if ctx.Err() != nil {
			return
		}
		if ok := err == nil; ok != serving {
			serving = ok
			if ok {
				s.logger.Info(ctx, "Backend healthy again")
			} else {
				s.logger.Warn(ctx, "Backend unhealthy", "error", err)
			}
		}
		s.SetServing(err == nil)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
