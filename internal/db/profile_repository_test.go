package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/udisondev/mcgo/internal/model"
)

var testDB *DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		log.Fatalf("starting postgres container: %v", err)
	}
	defer func() { _ = container.Terminate(ctx) }()

	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("getting container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		log.Fatalf("getting container port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	if err := RunMigrations(ctx, dsn); err != nil {
		log.Fatalf("running migrations: %v", err)
	}

	testDB, err = New(ctx, dsn)
	if err != nil {
		log.Fatalf("connecting to test db: %v", err)
	}
	defer testDB.Close()

	os.Exit(m.Run())
}

func TestProfileRepository_LoadByName_MissingReturnsNotFound(t *testing.T) {
	repo := NewProfileRepository(testDB)

	_, ok, err := repo.LoadByName(context.Background(), "nobody-"+uuid.NewString())
	require.NoError(t, err)
	assert.False(t, ok, "LoadByName() ok = true for a name never upserted")
}

func TestProfileRepository_UpsertThenLoad_RoundTrips(t *testing.T) {
	repo := NewProfileRepository(testDB)
	name := "steve-" + uuid.NewString()
	want := model.GameProfile{
		UUID: uuid.New(),
		Name: name,
		Properties: []model.Property{
			{Name: "textures", Value: "base64blob", Signature: "sig"},
		},
	}

	require.NoError(t, repo.Upsert(context.Background(), want))

	got, ok, err := repo.LoadByName(context.Background(), name)
	require.NoError(t, err)
	require.True(t, ok, "LoadByName() ok = false after Upsert")

	assert.Equal(t, want.UUID, got.UUID)
	assert.Equal(t, want.Name, got.Name)
	require.Len(t, got.Properties, 1)
	assert.Equal(t, "textures", got.Properties[0].Name)
}

func TestProfileRepository_Upsert_ReplacesOnConflict(t *testing.T) {
	repo := NewProfileRepository(testDB)
	name := "alex-" + uuid.NewString()

	first := model.GameProfile{UUID: uuid.New(), Name: name}
	require.NoError(t, repo.Upsert(context.Background(), first))

	second := model.GameProfile{UUID: uuid.New(), Name: name}
	require.NoError(t, repo.Upsert(context.Background(), second))

	got, ok, err := repo.LoadByName(context.Background(), name)
	require.NoError(t, err)
	require.True(t, ok, "LoadByName() ok = false after conflicting Upsert")

	assert.Equal(t, second.UUID, got.UUID, "want the second upsert's UUID")
}
