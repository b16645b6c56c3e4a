package sqldb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/migrations"
	"github.com/vadimbarashkov/shortlink/pkg/postgres"
	"github.com/vadimbarashkov/shortlink/pkg/sqlite"
)

func setupSQLite(t testing.TB) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "links.sqlite")

	src, err := migrations.Source(migrations.SQLite)
	require.NoError(t, err)
	require.NoError(t, sqlite.RunMigrations(src, path))

	db, err := sqlite.New(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func setupPostgres(t testing.TB) *sqlx.DB {
	t.Helper()

	ctx := context.Background()

	pgCont, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "postgres:16-alpine",
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "shortlink",
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgCont.Terminate(ctx); err != nil {
			t.Fatalf("Failed to terminate postgres container: %v", err)
		}
	})

	host, err := pgCont.Host(ctx)
	require.NoError(t, err)
	port, err := pgCont.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := "postgres://test:test@" + host + ":" + port.Port() + "/shortlink?sslmode=disable"

	src, err := migrations.Source(migrations.Postgres)
	require.NoError(t, err)
	require.NoError(t, postgres.RunMigrations(src, dsn))

	db, err := postgres.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func testStore(t *testing.T, db *sqlx.DB) {
	ctx := context.Background()
	links := NewLinkRepository(db)
	keys := NewAPIKeyRepository(db)

	t.Run("links", func(t *testing.T) {
		require.NoError(t, links.Insert(ctx, "abc", "https://example.com"))
		require.NoError(t, links.Insert(ctx, "def", "https://example.org"))

		err := links.Insert(ctx, "abc", "https://other.com")
		assert.ErrorIs(t, err, entity.ErrShortCodeExists)

		require.NoError(t, links.IncrementHits(ctx, "abc"))
		require.NoError(t, links.IncrementHits(ctx, "abc"))
		assert.ErrorIs(t, links.IncrementHits(ctx, "zzz"), entity.ErrLinkNotFound)

		link, err := links.Find(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, &entity.Link{ShortCode: "abc", LongURL: "https://example.com", HitCount: 2}, link)

		require.NoError(t, links.UpdateURL(ctx, "abc", "https://new-example.com"))
		assert.ErrorIs(t, links.UpdateURL(ctx, "zzz", "https://new-example.com"), entity.ErrLinkNotFound)

		all, err := links.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []entity.Link{
			{ShortCode: "abc", LongURL: "https://new-example.com", HitCount: 2},
			{ShortCode: "def", LongURL: "https://example.org"},
		}, all)

		require.NoError(t, links.Delete(ctx, "abc"))
		assert.ErrorIs(t, links.Delete(ctx, "abc"), entity.ErrLinkNotFound)

		_, err = links.Find(ctx, "abc")
		assert.ErrorIs(t, err, entity.ErrLinkNotFound)
	})

	t.Run("api key", func(t *testing.T) {
		_, err := keys.Get(ctx)
		assert.ErrorIs(t, err, entity.ErrAPIKeyNotFound)

		require.NoError(t, keys.Put(ctx, "first"))
		require.NoError(t, keys.Put(ctx, "second"))

		digest, err := keys.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "second", digest)

		require.NoError(t, keys.Clear(ctx))
		require.NoError(t, keys.Clear(ctx))

		_, err = keys.Get(ctx)
		assert.ErrorIs(t, err, entity.ErrAPIKeyNotFound)
	})
}

func TestStore_SQLite(t *testing.T) {
	testStore(t, setupSQLite(t))
}

func TestStore_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testStore(t, setupPostgres(t))
}
