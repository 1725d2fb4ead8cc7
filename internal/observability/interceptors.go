// Package observability provides the metrics HTTP server and gRPC
// interceptors.
package observability

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"jsonschema-validation-service/internal/observability/metrics"
)

// healthService is polled by orchestrators, so its successful calls are
// logged at debug level only.
const healthService = "/grpc.health.v1.Health/"

// UnaryServerInterceptor logs and counts unary calls on logger.
func UnaryServerInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logCall(logger, info.FullMethod, err, time.Since(start), "gRPC unary call")
		return resp, err
	}
}

// StreamServerInterceptor logs and counts streaming calls (health Watch,
// reflection) on logger.
func StreamServerInterceptor(logger zerolog.Logger) grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		start := time.Now()
		err := handler(srv, ss)
		logCall(logger, info.FullMethod, err, time.Since(start), "gRPC stream completed")
		return err
	}
}

func logCall(logger zerolog.Logger, method string, err error, d time.Duration, msg string) {
	code := status.Code(err)
	metrics.DefaultMetrics.RecordGRPCRequest(method, code.String())

	ev := logger.Info()
	switch {
	case code != codes.OK:
		ev = logger.Warn().Err(err)
	case strings.HasPrefix(method, healthService):
		ev = logger.Debug()
	}
	ev.Str("method", method).
		Str("code", code.String()).
		Dur("duration", d).
		Msg(msg)
}
