package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"eventify/internal/models"

	"github.com/emersion/go-ical"
)

const calendarProductID = "-//eventify//events//EN"

// ExportCalendar serves the (optionally filtered) collection as an
// iCalendar feed of all-day events.
func (h *Handler) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	all, err := h.EventService.All(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var selected []models.Event
	for _, ev := range all {
		if q.Matches(ev) {
			selected = append(selected, ev)
		}
	}

	var buf bytes.Buffer
	if err := EncodeCalendar(&buf, BuildCalendar(selected)); err != nil {
		h.writeError(w, r, fmt.Errorf("encode calendar: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="events.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// BuildCalendar converts events into a VCALENDAR. Events without a date are skipped.
func BuildCalendar(evs []models.Event) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, calendarProductID)

	for _, ev := range evs {
		if ev.Date.IsZero() {
			continue
		}
		cal.Children = append(cal.Children, toICal(ev))
	}
	return cal
}

// EncodeCalendar writes cal to w. go-ical rejects a VCALENDAR without
// components, so an empty feed is written as the bare header block.
func EncodeCalendar(w io.Writer, cal *ical.Calendar) error {
	if len(cal.Children) > 0 {
		return ical.NewEncoder(w).Encode(cal)
	}

	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\n")
	b.WriteString("VERSION:2.0\r\n")
	b.WriteString("PRODID:" + calendarProductID + "\r\n")
	b.WriteString("END:VCALENDAR\r\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func toICal(ev models.Event) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, ev.ID+"@eventify")
	ve.Props.SetText(ical.PropSummary, ev.Title)

	stamp := ev.UpdatedAt
	if stamp.IsZero() {
		stamp = ev.CreatedAt
	}
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())

	// All-day: DTEND is exclusive, so it is the following day.
	ve.Props.SetDate(ical.PropDateTimeStart, ev.Date.Time)
	ve.Props.SetDate(ical.PropDateTimeEnd, ev.Date.AddDate(0, 0, 1))

	if ev.Location != "" {
		ve.Props.SetText(ical.PropLocation, ev.Location)
	}
	if ev.Category != "" {
		ve.Props.SetText(ical.PropCategories, ev.Category)
	}
	return ve
}
