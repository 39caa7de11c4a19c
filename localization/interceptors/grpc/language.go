package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/pitabwire/podenv/locale"
	"github.com/pitabwire/podenv/localization"
)

// LanguageUnaryInterceptor Simple grpc interceptor to extract the locale supplied via metadata.
func LanguageUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any,
		_ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if l, ok := localization.ExtractLocaleFromGrpcRequest(ctx); ok {
			ctx = locale.ToContext(ctx, l)
		}

		return handler(ctx, req)
	}
}

// LanguageStreamInterceptor is the streaming counterpart of LanguageUnaryInterceptor.
func LanguageStreamInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		l, ok := localization.ExtractLocaleFromGrpcRequest(ss.Context())
		if !ok {
			return handler(srv, ss)
		}

		return handler(srv, &serverStreamWrapper{ctx: locale.ToContext(ss.Context(), l), ServerStream: ss})
	}
}

// serverStreamWrapper carries the enriched context for the stream handler.
type serverStreamWrapper struct {
	ctx context.Context
	grpc.ServerStream
}

func (s *serverStreamWrapper) Context() context.Context {
	return s.ctx
}
