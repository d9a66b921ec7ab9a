package grpc

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/fleetconsole/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const UserIDKey ctxKey = "userID"

// accessTokenInterceptor lets anonymous calls through but rejects a bearer
// token that does not validate. A valid token's user ID is put in the context.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(strings.ToLower(common.AuthorizationHeaderName))
		if len(values) > 0 {
			header = values[0]
		}
	}
	if header == "" {
		return handler(ctx, req)
	}

	if !strings.HasPrefix(header, common.BearerPrefix) {
		return nil, status.Error(codes.Unauthenticated, "malformed authorization")
	}

	userID, err := s.tokens.ValidateToken(strings.TrimPrefix(header, common.BearerPrefix))
	if err != nil {
		s.logger.Debug(ctx, "rejected token", "method", info.FullMethod, "error", err)
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	ctx = context.WithValue(ctx, UserIDKey, userID)
	return handler(ctx, req)
}
