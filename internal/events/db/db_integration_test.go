//go:build integration

package db_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"eventify/internal/config"
	"eventify/internal/database"
	"eventify/internal/database/migrations"
	"eventify/internal/events/db"
	"eventify/internal/logger"
	"eventify/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestPostgresStore runs the store against a real Postgres with the embedded migrations applied.
func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Postgres integration test in short mode")
	}

	ctx := context.Background()
	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "eventify",
				"POSTGRES_PASSWORD": "eventify",
				"POSTGRES_DB":       "eventify",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer pg.Terminate(ctx)

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432")
	require.NoError(t, err)

	log := logger.Discard()
	bunDB, err := database.Connect(ctx, config.DatabaseConfig{
		Driver:         "postgres",
		DSN:            fmt.Sprintf("postgres://eventify:eventify@%s:%s/eventify?sslmode=disable", host, port.Port()),
		MaxOpenConns:   5,
		MaxIdleConns:   5,
		MaxLifetime:    time.Minute,
		ConnectRetries: 5,
	}, log)
	require.NoError(t, err)
	assert.True(t, database.IsPostgres(bunDB))

	runner := migrations.NewRunner(bunDB, log)
	require.NoError(t, runner.RunMigrations())
	defer runner.Close()

	store := &db.DB{Bun: bunDB}

	later := &models.Event{Title: "Later", Date: models.NewDate(2024, 2, 1), CreatedBy: "U1"}
	first := &models.Event{Title: "First", Date: models.NewDate(2024, 1, 1), CreatedBy: "U1"}
	tie := &models.Event{Title: "Tie", Date: models.NewDate(2024, 1, 1), CreatedBy: "U2"}
	for _, ev := range []*models.Event{later, first, tie} {
		_, err := store.InsertEvent(ctx, ev)
		require.NoError(t, err)
	}

	var titles []string
	for ev, err := range store.ListEvents(ctx) {
		require.NoError(t, err)
		titles = append(titles, ev.Title)
	}
	assert.Equal(t, []string{"First", "Tie", "Later"}, titles)

	title := "Renamed"
	updated, err := store.UpdateEvent(ctx, tie.ID, models.EventPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "U2", updated.CreatedBy)

	require.NoError(t, store.DeleteEvent(ctx, later.ID))
	assert.ErrorIs(t, store.DeleteEvent(ctx, later.ID), models.ErrNotFound)

	_, err = store.GetEventByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
