package interceptor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"mylibrary-rental/internal/logger"
)

const requestIDKey = "x-request-id"

// LoggingInterceptor tags each RPC with a request id and logs its outcome.
type LoggingInterceptor struct{}

func NewLoggingInterceptor() *LoggingInterceptor {
	return &LoggingInterceptor{}
}

// Unary returns a server interceptor that attaches a request-scoped
// logger and records method, code and duration.
func (i *LoggingInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		id := requestID(ctx)
		ctx = logger.WithRequestID(ctx, id)
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDKey, id))

		resp, err := handler(ctx, req)

		code := status.Code(err)
		args := []any{"method", info.FullMethod, "code", code.String(), "duration_ms", time.Since(start).Milliseconds()}
		if err != nil {
			logger.FromContext(ctx).WarnContext(ctx, "gRPC request failed", append(args, "error", err)...)
		} else {
			logger.FromContext(ctx).InfoContext(ctx, "gRPC request", args...)
		}
		return resp, err
	}
}

// requestID returns the caller's x-request-id or a fresh UUID.
func requestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(requestIDKey); len(ids) > 0 && ids[0] != "" {
			return ids[0]
		}
	}
	return uuid.NewString()
}
