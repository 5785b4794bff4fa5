package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Event is the only durable entity of the service.
type Event struct {
	bun.BaseModel `bun:"table:events,alias:e"`

	// Seq is the insertion sequence; it breaks ties between events on the same date.
	Seq       int64     `bun:"seq,pk,autoincrement" json:"-"`
	ID        string    `bun:"id,unique,notnull,type:varchar(36)" json:"id"`
	Title     string    `bun:"title,notnull" json:"title"`
	Date      Date      `bun:"event_date,notnull,type:varchar(10)" json:"date"`
	Category  string    `bun:"category,notnull,type:varchar(64)" json:"category"`
	Location  string    `bun:"location,notnull" json:"location"`
	CreatedBy string    `bun:"created_by,notnull,type:varchar(255)" json:"createdBy"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// EventInput is the body accepted on create. It has no id or createdBy so a
// client can never supply them.
type EventInput struct {
	Title    string `json:"title" validate:"max=200"`
	Date     Date   `json:"date"`
	Category string `json:"category" validate:"max=64"`
	Location string `json:"location" validate:"max=256"`
}

// EventPatch carries a partial update. Nil fields are left unchanged.
type EventPatch struct {
	Title    *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Date     *Date   `json:"date,omitempty"`
	Category *string `json:"category,omitempty" validate:"omitempty,max=64"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=256"`
}

// IsEmpty reports whether the patch changes nothing.
func (p EventPatch) IsEmpty() bool {
	return p.Title == nil && p.Date == nil && p.Category == nil && p.Location == nil
}

// Apply copies the set fields of the patch onto ev.
func (p EventPatch) Apply(ev *Event) {
	if p.Title != nil {
		ev.Title = *p.Title
	}
	if p.Date != nil {
		ev.Date = *p.Date
	}
	if p.Category != nil {
		ev.Category = *p.Category
	}
	if p.Location != nil {
		ev.Location = *p.Location
	}
}

// SuggestedCategories is the set offered by the browser form. The store does
// not enforce it.
var SuggestedCategories = []string{"College", "Festival", "Sports", "Personal"}

// Lifecycle notification types.
const (
	EventCreated = "event.created"
	EventUpdated = "event.updated"
	EventDeleted = "event.deleted"
)

// EventNotification is published after a successful mutation.
type EventNotification struct {
	Type       string    `json:"type"`
	Event      Event     `json:"event"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewEventNotification(kind string, ev Event) EventNotification {
	return EventNotification{
		Type:       kind,
		Event:      ev,
		OccurredAt: time.Now().UTC(),
	}
}
