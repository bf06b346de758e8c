package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/phishsense/phishsense/migrations"
	pkgpostgres "github.com/phishsense/phishsense/pkg/postgres"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance with the
// detection history schema applied.
type PostgresContainer struct {
	Container *postgres.PostgresContainer
	DSN       string
	Pool      *pgxpool.Pool
}

// NewPostgresContainer starts a PostgreSQL container and migrates it.
// The container is terminated when the test ends.
func NewPostgresContainer(ctx context.Context, t *testing.T) *PostgresContainer {
	t.Helper()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("phishsense"),
		postgres.WithUsername("phishsense"),
		postgres.WithPassword("phishsense"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	pc := &PostgresContainer{Container: pgContainer}
	t.Cleanup(func() { pc.cleanup(t) })

	pc.DSN, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	if err := pkgpostgres.RunEmbeddedMigrations(pc.DSN, migrations.FS); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	pc.Pool, err = pkgpostgres.NewPool(ctx, pkgpostgres.Config{URL: pc.DSN, MaxConns: 4})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	return pc
}

func (pc *PostgresContainer) cleanup(t *testing.T) {
	t.Helper()

	if pc.Pool != nil {
		pc.Pool.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pc.Container.Terminate(ctx); err != nil {
		t.Logf("warning: failed to terminate postgres container: %v", err)
	}
}
