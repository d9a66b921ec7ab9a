package client

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/fleetconsole/internal/common"
)

// StatusService is the health-check service name the backend reports on.
const StatusService = "fleet.v1.Fleet"

// bearerCredentials attaches the current token to every RPC.
type bearerCredentials struct {
	tokens TokenSource
}

func (b bearerCredentials) GetRequestMetadata(ctx context.Context, _ ...string) (map[string]string, error) {
	if b.tokens == nil {
		return nil, nil
	}
	tok := b.tokens()
	if tok == "" {
		return nil, nil
	}
	return map[string]string{
		strings.ToLower(common.AuthorizationHeaderName): common.BearerValue(tok),
	}, nil
}

func (bearerCredentials) RequireTransportSecurity() bool { return false }

// StatusProbe checks backend liveness over gRPC.
type StatusProbe struct {
	conn   *grpc.ClientConn
	health healthpb.HealthClient
}

// NewStatusProbe prepares a probe for addr. No connection is made until the
// first Ping. Extra dial options are appended after the defaults.
func NewStatusProbe(addr string, tokens TokenSource, opts ...grpc.DialOption) (*StatusProbe, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithPerRPCCredentials(bearerCredentials{tokens: tokens}),
	}, opts...)

	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &StatusProbe{conn: conn, health: healthpb.NewHealthClient(conn)}, nil
}

// Ping returns nil when the backend reports SERVING.
func (p *StatusProbe) Ping(ctx context.Context) error {
	resp, err := p.health.Check(ctx, &healthpb.HealthCheckRequest{Service: StatusService})
	if err != nil {
		return mapError(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return ErrUnavailable
	}
	return nil
}

func (p *StatusProbe) Close() error {
	return p.conn.Close()
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded, codes.NotFound:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
