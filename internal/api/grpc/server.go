package grpc

import (
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"mylibrary-rental/internal/api/grpc/interceptor"
)

// NewServer builds a gRPC server exposing the health service and
// server reflection.
func NewServer(pinger Pinger) *grpc.Server {
	s := grpc.NewServer(
		grpc.UnaryInterceptor(interceptor.NewLoggingInterceptor().Unary()),
	)
	healthpb.RegisterHealthServer(s, NewHealthHandler(pinger))

	// Register reflection service for grpcurl
	reflection.Register(s)
	return s
}
