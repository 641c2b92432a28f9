package qdrant

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// Dial opens a gRPC connection to the Qdrant instance behind rawURL (its
// REST address, e.g. http://localhost:6333) using grpcPort. An https scheme
// switches on TLS; apiKey, when set, is sent with every call.
func Dial(rawURL, apiKey string, grpcPort int) (*Store, *grpc.ClientConn, error) {
	target, secure, err := grpcTarget(rawURL, grpcPort)
	if err != nil {
		return nil, nil, err
	}

	creds := insecure.NewCredentials()
	if secure {
		creds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	opts := []grpc.DialOption{grpc.WithTransportCredentials(creds)}
	if apiKey != "" {
		opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(apiKey)))
	}

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("qdrant dial %s: %w", target, err)
	}
	return NewStore(qdrant.NewPointsClient(conn), qdrant.NewCollectionsClient(conn)), conn, nil
}

func grpcTarget(rawURL string, grpcPort int) (string, bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false, fmt.Errorf("invalid qdrant url %q: %w", rawURL, err)
	}
	host := u.Hostname()
	if host == "" {
		return "", false, fmt.Errorf("invalid qdrant url %q: missing host", rawURL)
	}
	if grpcPort <= 0 {
		grpcPort = 6334
	}
	return host + ":" + strconv.Itoa(grpcPort), u.Scheme == "https", nil
}

func apiKeyInterceptor(apiKey string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", apiKey)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}
