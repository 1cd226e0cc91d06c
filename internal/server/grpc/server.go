// Package grpc runs the gRPC listener. It serves the standard health service
// and guards every non-public method with the access-token interceptor.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/orgchat/internal/logging"
	"github.com/dmitrijs2005/orgchat/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// TokenVerifier checks access tokens; *auth.Manager implements it.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type GRPCServer struct {
	address string
	tokens  TokenVerifier
	health  *health.Server
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, tokens TokenVerifier) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		tokens:  tokens,
		health:  health.NewServer(),
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

// Serve accepts connections on listen until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {

	// creates gRPC-server
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))

	// registers services
	healthpb.RegisterHealthServer(srv, s.health)
	reflection.Register(srv)

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		// flips every registered status to NOT_SERVING
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
