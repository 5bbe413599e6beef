//go:build integration

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/fossabot/person-db-skeleton/internal/database"
	"github.com/fossabot/person-db-skeleton/internal/schema"
	"github.com/fossabot/person-db-skeleton/internal/tracker"
)

const (
	postgresImage = "postgres:16-alpine"
	mysqlImage    = "mysql:8.0"
	testDB        = "persondb_test"
	testUser      = "persondb"
	testPassword  = "persondb"
)

// backend is a server platform the integration suite runs against.
type backend struct {
	platform string
	setup    func(t *testing.T) string
}

func backends() []backend {
	return []backend{
		{platform: schema.PlatformPostgres, setup: SetupPostgresURL},
		{platform: schema.PlatformMySQL, setup: SetupMySQLURL},
	}
}

// SetupPostgresURL starts a PostgreSQL 16 container and returns its URL.
// The container is terminated when the test completes.
func SetupPostgresURL(t *testing.T) string {
	t.Helper()

	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       testDB,
			"POSTGRES_USER":     testUser,
			"POSTGRES_PASSWORD": testPassword,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}, "5432/tcp")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", testUser, testPassword, host, port, testDB)
}

// SetupMySQLURL starts a MySQL 8 container and returns its URL.
// The container is terminated when the test completes.
func SetupMySQLURL(t *testing.T) string {
	t.Helper()

	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        mysqlImage,
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_DATABASE":      testDB,
			"MYSQL_USER":          testUser,
			"MYSQL_PASSWORD":      testPassword,
			"MYSQL_ROOT_PASSWORD": testPassword,
		},
		// The init server logs "port: 0"; only the final server listens on 3306.
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").
			WithStartupTimeout(120 * time.Second),
	}, "3306/tcp")

	return fmt.Sprintf("mysql://%s:%s@%s:%s/%s", testUser, testPassword, host, port, testDB)
}

func startContainer(t *testing.T, req testcontainers.ContainerRequest, exposed string) (host, port string) {
	t.Helper()

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	host, err = container.Host(ctx)
	require.NoError(t, err)

	mapped, err := container.MappedPort(ctx, nat.Port(exposed))
	require.NoError(t, err)

	return host, mapped.Port()
}

// env is an open database with one pinned session and its ledger.
type env struct {
	db      *database.DB
	sess    *database.Session
	tracker *tracker.Tracker
}

func openEnv(t *testing.T, databaseURL string) *env {
	t.Helper()

	ctx := context.Background()

	db, err := database.Open(ctx, databaseURL)
	require.NoError(t, err)

	sess, err := db.Session(ctx, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = sess.Close()
		_ = db.Close()
	})

	return &env{db: db, sess: sess, tracker: tracker.New(sess.Conn(), sess.PlatformName())}
}

// tableExists looks the table up in information_schema, which both
// PostgreSQL and MySQL provide.
func (e *env) tableExists(t *testing.T, name string) bool {
	t.Helper()

	var n int
	require.NoError(t, e.sess.Conn().GetContext(context.Background(), &n,
		e.db.Rebind("SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ? AND table_schema = "+currentSchema(e.sess.PlatformName())),
		name))

	return n > 0
}

func currentSchema(platform string) string {
	if platform == schema.PlatformMySQL {
		return "DATABASE()"
	}

	return "current_schema()"
}
