package models_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"eventify/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := models.ParseDate("2025-01-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", d.String())

	// Browsers often send an ISO timestamp; the calendar day is kept as written.
	d, err = models.ParseDate("2025-01-10T23:30:00+05:30")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", d.String())

	_, err = models.ParseDate("10/01/2025")
	assert.Error(t, err)
}

func TestDateJSON(t *testing.T) {
	var in models.EventInput
	err := json.Unmarshal([]byte(`{"title":"Standup","date":"2025-01-10","createdBy":"someone-else","id":"x"}`), &in)
	require.NoError(t, err)
	assert.Equal(t, models.NewDate(2025, time.January, 10), in.Date)

	out, err := json.Marshal(models.Event{ID: "e1", Title: "Standup", Date: in.Date})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"date":"2025-01-10"`)
	assert.NotContains(t, string(out), "seq")
}

func TestDateScan(t *testing.T) {
	var d models.Date
	require.NoError(t, d.Scan([]byte("2024-02-29")))
	assert.Equal(t, "2024-02-29", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}

func TestEventInputValidate(t *testing.T) {
	in := models.EventInput{Title: "   ", Date: models.NewDate(2025, 1, 10)}
	var verr *models.ValidationError
	require.True(t, errors.As(in.Validate(), &verr))
	assert.Equal(t, "title", verr.Field)

	in = models.EventInput{Title: "Standup"}
	require.True(t, errors.As(in.Validate(), &verr))
	assert.Equal(t, "date", verr.Field)

	in = models.EventInput{Title: "  Standup ", Date: models.NewDate(2025, 1, 10), Category: strings.Repeat("x", 65)}
	require.True(t, errors.As(in.Validate(), &verr))
	assert.Equal(t, "category", verr.Field)

	in.Category = "Work"
	require.NoError(t, in.Validate())
	assert.Equal(t, "Standup", in.Title)
}

func TestEventPatchValidate(t *testing.T) {
	blank := " "
	p := models.EventPatch{Title: &blank}
	var verr *models.ValidationError
	require.True(t, errors.As(p.Validate(), &verr))
	assert.Equal(t, "title", verr.Field)

	loc := " Room B "
	p = models.EventPatch{Location: &loc}
	require.NoError(t, p.Validate())
	assert.Equal(t, "Room B", *p.Location)
	assert.False(t, p.IsEmpty())

	ev := models.Event{Title: "Standup", Location: "Room A"}
	p.Apply(&ev)
	assert.Equal(t, "Standup", ev.Title)
	assert.Equal(t, "Room B", ev.Location)
}

func TestListQueryNormalized(t *testing.T) {
	q, err := models.ListQuery{Search: "  fest "}.Normalized(9, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 9, q.PageSize)
	assert.Equal(t, "fest", q.Search)

	_, err = models.ListQuery{Page: -1}.Normalized(9, 100)
	assert.Error(t, err)

	_, err = models.ListQuery{PageSize: 101}.Normalized(9, 100)
	assert.Error(t, err)
}

func TestPaginate(t *testing.T) {
	var events []models.Event
	for i := 0; i < 7; i++ {
		category := "Sports"
		if i%2 == 0 {
			category = "College"
		}
		events = append(events, models.Event{ID: string(rune('a' + i)), Title: "Match day", Category: category})
	}
	events = append(events, models.Event{ID: "z", Title: "Lantern Festival", Category: "Festival"})

	q := models.ListQuery{Search: "MATCH", Page: 1, PageSize: 3}
	total := 0
	var pages int
	for p := 1; ; p++ {
		q.Page = p
		page := models.Paginate(events, q)
		assert.LessOrEqual(t, len(page.Items), q.PageSize)
		total += len(page.Items)
		pages = page.TotalPages
		assert.Equal(t, 7, page.TotalCount)
		if p >= page.TotalPages {
			break
		}
	}
	assert.Equal(t, 7, total)
	assert.Equal(t, 3, pages)

	q.Page = 4
	assert.Empty(t, models.Paginate(events, q).Items)

	q = models.ListQuery{Search: "match", Category: "College", Page: 1, PageSize: 9}
	page := models.Paginate(events, q)
	assert.Equal(t, 4, page.TotalCount)
	assert.Equal(t, "a", page.Items[0].ID)

	empty := models.Paginate(nil, q)
	assert.Equal(t, 1, empty.TotalPages)
	assert.NotNil(t, empty.Items)
}
