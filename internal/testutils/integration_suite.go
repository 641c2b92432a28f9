package testutils

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/nsqio/go-nsq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"google.golang.org/grpc"

	"minirag/internal/adapter/qdrant"
)

// IntegrationSuite starts the external services the backend talks to in
// containers: Qdrant, Weaviate and nsqd.
type IntegrationSuite struct {
	T        *testing.T
	Qdrant   *qdrant.Store
	Weaviate *weaviate.Client
	NSQ      *nsq.Producer

	WeaviateHost string
	NSQDAddr     string

	qdrantConn *grpc.ClientConn

	// Containers
	qdrantContainer   testcontainers.Container
	weaviateContainer testcontainers.Container
	nsqContainer      testcontainers.Container
}

func NewIntegrationSuite(t *testing.T) *IntegrationSuite {
	return &IntegrationSuite{T: t}
}

func (s *IntegrationSuite) Setup() {
	ctx := context.Background()

	// 1. Qdrant: REST for readiness, gRPC for the store
	qdrantC := s.start(ctx, testcontainers.ContainerRequest{
		Image:        "qdrant/qdrant:v1.14.1",
		ExposedPorts: []string{"6333/tcp", "6334/tcp"},
		WaitingFor:   wait.ForHTTP("/readyz").WithPort("6333/tcp").WithStartupTimeout(60 * time.Second),
	})
	s.qdrantContainer = qdrantC
	qHost, qPort := s.endpoint(ctx, qdrantC, "6334")

	var err error
	s.Qdrant, s.qdrantConn, err = qdrant.Dial("http://"+qHost, "", qPort.Int())
	require.NoError(s.T, err)

	// 2. Weaviate
	weaviateC := s.start(ctx, testcontainers.ContainerRequest{
		Image:        "semitechnologies/weaviate:latest",
		ExposedPorts: []string{"8080/tcp", "50051/tcp"},
		Env: map[string]string{
			"AUTHENTICATION_ANONYMOUS_ACCESS_ENABLED": "true",
			"DEFAULT_VECTORIZER_MODULE":               "none",
			"PERSISTENCE_DATA_PATH":                   "/var/lib/weaviate",
		},
		WaitingFor: wait.ForHTTP("/v1/meta").WithPort("8080/tcp").WithStartupTimeout(60 * time.Second),
	})
	s.weaviateContainer = weaviateC
	wHost, wPort := s.endpoint(ctx, weaviateC, "8080")

	s.WeaviateHost = fmt.Sprintf("%s:%s", wHost, wPort.Port())
	s.Weaviate, err = weaviate.NewClient(weaviate.Config{Host: s.WeaviateHost, Scheme: "http"})
	require.NoError(s.T, err)

	// 3. nsqd
	nsqC := s.start(ctx, testcontainers.ContainerRequest{
		Image:        "nsqio/nsq:v1.3.0",
		ExposedPorts: []string{"4150/tcp", "4151/tcp"},
		Cmd:          []string{"/nsqd", "--broadcast-address=localhost"},
		WaitingFor:   wait.ForLog("TCP: listening on").WithStartupTimeout(60 * time.Second),
	})
	s.nsqContainer = nsqC
	nHost, nPort := s.endpoint(ctx, nsqC, "4150")

	s.NSQDAddr = fmt.Sprintf("%s:%s", nHost, nPort.Port())
	s.NSQ, err = nsq.NewProducer(s.NSQDAddr, nsq.NewConfig())
	require.NoError(s.T, err)
}

func (s *IntegrationSuite) start(ctx context.Context, req testcontainers.ContainerRequest) testcontainers.Container {
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T, err, "start %s", req.Image)
	return c
}

func (s *IntegrationSuite) endpoint(ctx context.Context, c testcontainers.Container, port nat.Port) (string, nat.Port) {
	host, err := c.Host(ctx)
	require.NoError(s.T, err)
	mapped, err := c.MappedPort(ctx, port)
	require.NoError(s.T, err)
	return host, mapped
}

func (s *IntegrationSuite) Teardown() {
	ctx := context.Background()
	if s.NSQ != nil {
		s.NSQ.Stop()
	}
	if s.qdrantConn != nil {
		s.qdrantConn.Close()
	}
	if s.qdrantContainer != nil {
		s.qdrantContainer.Terminate(ctx)
	}
	if s.weaviateContainer != nil {
		s.weaviateContainer.Terminate(ctx)
	}
	if s.nsqContainer != nil {
		s.nsqContainer.Terminate(ctx)
	}
}
