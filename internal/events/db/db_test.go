package db_test

import (
	"context"
	"errors"
	"testing"

	"eventify/internal/database/dbtest"
	"eventify/internal/events/db"
	"eventify/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *db.DB {
	return &db.DB{Bun: dbtest.NewSQLiteDB(t)}
}

func insert(t *testing.T, store *db.DB, title string, date models.Date, by string) *models.Event {
	t.Helper()
	ev := &models.Event{Title: title, Date: date, Category: "College", Location: "Hall", CreatedBy: by}
	_, err := store.InsertEvent(context.Background(), ev)
	require.NoError(t, err)
	return ev
}

func collect(t *testing.T, store *db.DB) []models.Event {
	t.Helper()
	var out []models.Event
	for ev, err := range store.ListEvents(context.Background()) {
		require.NoError(t, err)
		out = append(out, ev)
	}
	return out
}

func TestInsertAndGetEvent(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	ev := &models.Event{
		ID:        "client-chosen",
		Title:     "Standup",
		Date:      models.NewDate(2024, 5, 1),
		Category:  "College",
		Location:  "Room 4",
		CreatedBy: "U1",
	}
	id, err := store.InsertEvent(ctx, ev)
	require.NoError(t, err)
	assert.NotEqual(t, "client-chosen", id)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)

	got, err := store.GetEventByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Standup", got.Title)
	assert.Equal(t, "2024-05-01", got.Date.String())
	assert.Equal(t, "College", got.Category)
	assert.Equal(t, "Room 4", got.Location)
	assert.Equal(t, "U1", got.CreatedBy)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestInsertEventRejectsMissingFields(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	var verr *models.ValidationError
	_, err := store.InsertEvent(ctx, &models.Event{Title: "  ", CreatedBy: "U1"})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "title", verr.Field)

	_, err = store.InsertEvent(ctx, &models.Event{Title: "Standup"})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "createdBy", verr.Field)

	assert.Empty(t, collect(t, store))
}

func TestInsertEventIDsAreUnique(t *testing.T) {
	store := setupTestDB(t)
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		ev := insert(t, store, "Same", models.NewDate(2024, 1, 1), "U1")
		assert.False(t, seen[ev.ID])
		seen[ev.ID] = true
	}
}

func TestGetEventNotFound(t *testing.T) {
	store := setupTestDB(t)
	_, err := store.GetEventByID(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = store.GetEventByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListEventsOrderedByDateThenInsertion(t *testing.T) {
	store := setupTestDB(t)

	c := insert(t, store, "C", models.NewDate(2024, 3, 10), "U1")
	a := insert(t, store, "A", models.NewDate(2023, 12, 31), "U1")
	b1 := insert(t, store, "B1", models.NewDate(2024, 1, 15), "U2")
	b2 := insert(t, store, "B2", models.NewDate(2024, 1, 15), "U1")

	got := collect(t, store)
	require.Len(t, got, 4)
	ids := []string{got[0].ID, got[1].ID, got[2].ID, got[3].ID}
	assert.Equal(t, []string{a.ID, b1.ID, b2.ID, c.ID}, ids)

	// Restartable: a second pass sees the same sequence.
	again := collect(t, store)
	assert.Equal(t, got, again)
}

func TestListEventsEarlyBreak(t *testing.T) {
	store := setupTestDB(t)
	for i := 1; i <= 5; i++ {
		insert(t, store, "E", models.NewDate(2024, 1, i), "U1")
	}

	n := 0
	for _, err := range store.ListEvents(context.Background()) {
		require.NoError(t, err)
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)

	// The connection was released, so further queries still work.
	assert.Len(t, collect(t, store), 5)
}

func TestUpdateEvent(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	ev := insert(t, store, "Standup", models.NewDate(2024, 5, 1), "U1")

	title := "Standup v2"
	updated, err := store.UpdateEvent(ctx, ev.ID, models.EventPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Standup v2", updated.Title)
	assert.Equal(t, "2024-05-01", updated.Date.String())
	assert.Equal(t, "Hall", updated.Location)
	assert.Equal(t, "U1", updated.CreatedBy)
	assert.Equal(t, ev.ID, updated.ID)

	date := models.NewDate(2024, 6, 2)
	location := ""
	updated, err = store.UpdateEvent(ctx, ev.ID, models.EventPatch{Date: &date, Location: &location})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-02", updated.Date.String())
	assert.Equal(t, "", updated.Location)
	assert.Equal(t, "Standup v2", updated.Title)
}

func TestUpdateEventErrors(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	ev := insert(t, store, "Standup", models.NewDate(2024, 5, 1), "U1")

	blank := "   "
	_, err := store.UpdateEvent(ctx, ev.ID, models.EventPatch{Title: &blank})
	var verr *models.ValidationError
	assert.True(t, errors.As(err, &verr))

	got, err := store.GetEventByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "Standup", got.Title)

	title := "Ghost"
	_, err = store.UpdateEvent(ctx, uuid.New().String(), models.EventPatch{Title: &title})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteEvent(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	keep := insert(t, store, "Keep", models.NewDate(2024, 5, 1), "U1")
	gone := insert(t, store, "Gone", models.NewDate(2024, 5, 2), "U1")

	require.NoError(t, store.DeleteEvent(ctx, gone.ID))

	_, err := store.GetEventByID(ctx, gone.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, store.DeleteEvent(ctx, gone.ID), models.ErrNotFound)

	list := collect(t, store)
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)
}

func TestDeleteAllEventsAndPing(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	insert(t, store, "One", models.NewDate(2024, 5, 1), "U1")
	insert(t, store, "Two", models.NewDate(2024, 5, 2), "U1")

	n, err := store.DeleteAllEvents(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Empty(t, collect(t, store))
	assert.NoError(t, store.Ping(ctx))
}

func TestStoreErrorsAreWrapped(t *testing.T) {
	bunDB := dbtest.NewSQLiteDB(t)
	store := &db.DB{Bun: bunDB}
	require.NoError(t, bunDB.Close())

	_, err := store.GetEventByID(context.Background(), "x")
	var serr *models.StoreError
	assert.True(t, errors.As(err, &serr))
	assert.Equal(t, "get", serr.Op)
}
