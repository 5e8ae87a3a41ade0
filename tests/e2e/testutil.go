package e2e

import (
	"context"
	"fmt"

	tcpg "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"go.uber.org/zap"

	"github.com/holon/witness/internal/provider"
	pgstore "github.com/holon/witness/internal/store"
)

// Package-level shared state — set by TestMain, used by all subtests.
var (
	testLogger   *zap.Logger
	testPGStore  *pgstore.Store
	testRedisURL string
)

// startPostgres starts a PostgreSQL testcontainer, returns DSN + cleanup func.
func startPostgres(ctx context.Context) (string, func(), error) {
	container, err := tcpg.Run(ctx, "postgres:16-alpine",
		tcpg.WithDatabase("witness_test"),
		tcpg.WithUsername("test"),
		tcpg.WithPassword("test"),
		tcpg.BasicWaitStrategies(),
	)
	if err != nil {
		return "", nil, fmt.Errorf("start postgres: %w", err)
	}
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return "", nil, fmt.Errorf("pg connection string: %w", err)
	}
	cleanup := func() { container.Terminate(ctx) }
	return dsn, cleanup, nil
}

// startRedis starts a Redis testcontainer, returns URL + cleanup func.
func startRedis(ctx context.Context) (string, func(), error) {
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		return "", nil, fmt.Errorf("start redis: %w", err)
	}
	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		container.Terminate(ctx)
		return "", nil, fmt.Errorf("redis endpoint: %w", err)
	}
	url := "redis://" + endpoint
	cleanup := func() { container.Terminate(ctx) }
	return url, cleanup, nil
}

// echoProvider is a deterministic LLM stand-in. It answers every chat
// request with a reply derived from the last message.
type echoProvider struct{}

func (p *echoProvider) ID() string   { return "echo" }
func (p *echoProvider) Name() string { return "Echo" }

func (p *echoProvider) Chat(_ context.Context, req *provider.ChatRequest) (*provider.ChatResponse, error) {
	last := req.Messages[len(req.Messages)-1].Content
	return &provider.ChatResponse{
		Model:   req.Model,
		Content: "reflection on: " + last,
	}, nil
}

func (p *echoProvider) ListModels(_ context.Context) ([]provider.Model, error) {
	return []provider.Model{{ID: "echo", Name: "echo", Provider: "echo"}}, nil
}

func (p *echoProvider) HealthCheck(_ context.Context) error { return nil }
