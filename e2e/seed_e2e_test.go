//go:build e2e

package e2e

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"trackseed/internal/adapter/faker"
	mgo "trackseed/internal/adapter/mongo"
	msql "trackseed/internal/adapter/mysql"
	"trackseed/internal/domain"
	"trackseed/internal/ports"
	"trackseed/internal/schema"
	"trackseed/internal/usecase"
)

func startContainer(t *testing.T, req testcontainers.ContainerRequest, port string) (string, string) {
	t.Helper()
	ctx := context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start %s container: %v", req.Image, err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, nat.Port(port))
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}
	return host, mapped.Port()
}

// seedAndCheck runs the default scenario: 4 users with distinct emails,
// then projects referencing them.
func seedAndCheck(t *testing.T, store ports.Store, logger *slog.Logger) {
	t.Helper()
	ctx := context.Background()
	uc := &usecase.SeedUseCase{
		Log:       logger,
		Store:     store,
		Generator: faker.New(2024),
		Registry:  schema.Default(),
	}

	if _, err := uc.Run(ctx, schema.UserEntity, usecase.Options{Count: 4, UniqueFields: []string{"email"}, Log: true}); err != nil {
		t.Fatalf("seed users: %v", err)
	}
	n, err := store.Count(ctx, "users")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 users, got %d", n)
	}

	rep, err := (&usecase.VerifyUseCase{Log: logger, Store: store}).Run(ctx)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if rep.Users != 4 || !rep.OK() {
		t.Fatalf("verify report = %+v", rep)
	}

	if _, err := uc.Run(ctx, schema.ProjectEntity, usecase.Options{Count: 2}); err != nil {
		t.Fatalf("seed projects: %v", err)
	}
	if n, _ := store.Count(ctx, "projects"); n != 2 {
		t.Fatalf("expected 2 projects, got %d", n)
	}
}

func TestSeedMongo(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(90 * time.Second),
	}, "27017/tcp")

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()
	store, err := mgo.Connect(ctx, fmt.Sprintf("mongodb://%s:%s/test", host, port), "", logger)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	seedAndCheck(t, store, logger)
}

func TestSeedMySQL(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "mysql:8.0",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_DATABASE":      "testdb",
			"MYSQL_ROOT_PASSWORD": "secret",
			"MYSQL_USER":          "test",
			"MYSQL_PASSWORD":      "pass",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(120 * time.Second),
	}, "3306/tcp")
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", "test", "pass", host, port, "testdb")

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx := context.Background()
	client, err := msql.NewClient(ctx, dsn, logger)
	if err != nil {
		t.Fatalf("mysql client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close(context.Background()) })
	if err := client.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// Second run must be a no-op.
	if err := client.Migrate(ctx); err != nil {
		t.Fatalf("migrate again: %v", err)
	}

	seedAndCheck(t, client, logger)
}

func TestConnectFailsWithoutServer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err := mgo.Connect(ctx, "mongodb://127.0.0.1:1/test", "", logger)
	if !errors.Is(err, domain.ErrNotConnected) {
		t.Fatalf("err = %v, want ErrNotConnected", err)
	}
}
