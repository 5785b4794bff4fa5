package db

import (
	"context"
	"database/sql"
	"errors"
	"iter"
	"strings"
	"time"

	"eventify/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DB is the bun-backed Event Store.
type DB struct {
	Bun *bun.DB
}

// CreateSchema creates the events table when no migrations are available
// (sqlite, tests). Postgres deployments use the migrations package instead.
func CreateSchema(ctx context.Context, bunDB *bun.DB) error {
	_, err := bunDB.NewCreateTable().
		Model((*models.Event)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return &models.StoreError{Op: "create schema", Err: err}
	}

	_, err = bunDB.NewCreateIndex().
		Model((*models.Event)(nil)).
		Index("idx_events_date_seq").
		IfNotExists().
		Column("event_date", "seq").
		Exec(ctx)
	if err != nil {
		return &models.StoreError{Op: "create schema", Err: err}
	}
	return nil
}

// InsertEvent stores ev under a fresh id in a single statement and returns
// the id. ev.ID, ev.Seq and the timestamps are filled in on success.
func (d *DB) InsertEvent(ctx context.Context, ev *models.Event) (string, error) {
	if strings.TrimSpace(ev.Title) == "" {
		return "", &models.ValidationError{Field: "title", Reason: "is required"}
	}
	if ev.CreatedBy == "" {
		return "", &models.ValidationError{Field: "createdBy", Reason: "is required"}
	}

	now := time.Now().UTC()
	ev.Seq = 0
	ev.ID = uuid.New().String()
	ev.CreatedAt = now
	ev.UpdatedAt = now

	if _, err := d.Bun.NewInsert().Model(ev).Exec(ctx); err != nil {
		return "", &models.StoreError{Op: "insert", Err: err}
	}
	return ev.ID, nil
}

func (d *DB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var ev models.Event
	err := d.Bun.NewSelect().
		Model(&ev).
		Where("e.id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, &models.StoreError{Op: "get", Err: err}
	}
	return &ev, nil
}

// ListEvents streams every event ordered by date, oldest first, with
// insertion order breaking ties. Each range over the result re-runs the
// query. The underlying rows hold a connection until iteration ends, so
// callers must not issue other queries from inside the loop.
func (d *DB) ListEvents(ctx context.Context) iter.Seq2[models.Event, error] {
	return func(yield func(models.Event, error) bool) {
		rows, err := d.Bun.NewSelect().
			Model((*models.Event)(nil)).
			OrderExpr("e.event_date ASC, e.seq ASC").
			Rows(ctx)
		if err != nil {
			yield(models.Event{}, &models.StoreError{Op: "list", Err: err})
			return
		}
		defer rows.Close()

		for rows.Next() {
			var ev models.Event
			if err := d.Bun.ScanRow(ctx, rows, &ev); err != nil {
				yield(models.Event{}, &models.StoreError{Op: "list", Err: err})
				return
			}
			if !yield(ev, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(models.Event{}, &models.StoreError{Op: "list", Err: err})
		}
	}
}

// UpdateEvent applies the set fields of patch in one statement and returns
// the stored result. id and createdBy are not expressible in a patch.
func (d *DB) UpdateEvent(ctx context.Context, id string, patch models.EventPatch) (*models.Event, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, &models.ValidationError{Field: "title", Reason: "must not be empty"}
	}

	q := d.Bun.NewUpdate().
		Model((*models.Event)(nil)).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id)
	if patch.Title != nil {
		q = q.Set("title = ?", *patch.Title)
	}
	if patch.Date != nil {
		q = q.Set("event_date = ?", *patch.Date)
	}
	if patch.Category != nil {
		q = q.Set("category = ?", *patch.Category)
	}
	if patch.Location != nil {
		q = q.Set("location = ?", *patch.Location)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, &models.StoreError{Op: "update", Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, models.ErrNotFound
	}

	return d.GetEventByID(ctx, id)
}

func (d *DB) DeleteEvent(ctx context.Context, id string) error {
	res, err := d.Bun.NewDelete().
		Model((*models.Event)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return &models.StoreError{Op: "delete", Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteAllEvents empties the store and reports how many rows went.
func (d *DB) DeleteAllEvents(ctx context.Context) (int64, error) {
	res, err := d.Bun.NewDelete().
		Model((*models.Event)(nil)).
		Where("1 = 1").
		Exec(ctx)
	if err != nil {
		return 0, &models.StoreError{Op: "delete all", Err: err}
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (d *DB) Ping(ctx context.Context) error {
	if err := d.Bun.PingContext(ctx); err != nil {
		return &models.StoreError{Op: "ping", Err: err}
	}
	return nil
}
