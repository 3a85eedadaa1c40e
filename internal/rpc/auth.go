package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// authInterceptor checks a bearer token on every call against a fixed
// API key, the gRPC-side equivalent of internal/api's authMiddleware.
type authInterceptor struct {
	apiKey string
}

func newAuthInterceptor(apiKey string) *authInterceptor {
	return &authInterceptor{apiKey: apiKey}
}

func (a *authInterceptor) unary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if err := a.checkToken(ctx); err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

func (a *authInterceptor) checkToken(ctx context.Context) error {
	if a.apiKey == "" {
		return nil
	}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "missing metadata")
	}
	tokens := md.Get("authorization")
	if len(tokens) == 0 {
		return status.Error(codes.Unauthenticated, "missing authorization token")
	}
	if tokens[0] != "Bearer "+a.apiKey && tokens[0] != a.apiKey {
		return status.Error(codes.Unauthenticated, "invalid authorization token")
	}
	return nil
}
