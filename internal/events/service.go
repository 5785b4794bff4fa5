package events

import (
	"context"
	"fmt"
	"iter"
	"time"

	"eventify/internal/auth"
	"eventify/internal/logger"
	"eventify/internal/models"
)

const publishTimeout = 5 * time.Second

type DBLayer interface {
	InsertEvent(ctx context.Context, ev *models.Event) (string, error)
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	ListEvents(ctx context.Context) iter.Seq2[models.Event, error]
	UpdateEvent(ctx context.Context, id string, patch models.EventPatch) (*models.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// Publisher announces completed mutations to other systems.
type Publisher interface {
	Publish(ctx context.Context, n models.EventNotification) error
}

// NopPublisher drops every notification.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.EventNotification) error { return nil }

type EventService struct {
	DB              DBLayer
	Publisher       Publisher
	Logger          *logger.Logger
	DefaultPageSize int
	MaxPageSize     int
}

func NewEventService(db DBLayer, publisher Publisher, log *logger.Logger) *EventService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &EventService{
		DB:              db,
		Publisher:       publisher,
		Logger:          log,
		DefaultPageSize: 9,
		MaxPageSize:     100,
	}
}

// Create stores a new event owned by caller.
func (s *EventService) Create(ctx context.Context, in models.EventInput, caller string) (*models.Event, error) {
	if caller == "" {
		return nil, auth.ErrUnauthenticated
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	ev := &models.Event{
		Title:     in.Title,
		Date:      in.Date,
		Category:  in.Category,
		Location:  in.Location,
		CreatedBy: caller,
	}
	if _, err := s.DB.InsertEvent(ctx, ev); err != nil {
		return nil, err
	}

	s.Logger.LogEvent("CREATED", ev.ID, fmt.Sprintf("%q on %s by %s", ev.Title, ev.Date, caller))
	s.publish(ctx, models.EventCreated, *ev)
	return ev, nil
}

func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	return s.DB.GetEventByID(ctx, id)
}

// Update applies patch if caller created the event.
func (s *EventService) Update(ctx context.Context, id string, patch models.EventPatch, caller string) (*models.Event, error) {
	if caller == "" {
		return nil, auth.ErrUnauthenticated
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	current, err := s.authorize(ctx, id, caller, "update")
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return current, nil
	}

	updated, err := s.DB.UpdateEvent(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.Logger.LogEvent("UPDATED", id, fmt.Sprintf("by %s", caller))
	s.publish(ctx, models.EventUpdated, *updated)
	return updated, nil
}

// Delete removes the event if caller created it. A second delete is ErrNotFound.
func (s *EventService) Delete(ctx context.Context, id string, caller string) error {
	if caller == "" {
		return auth.ErrUnauthenticated
	}

	current, err := s.authorize(ctx, id, caller, "delete")
	if err != nil {
		return err
	}
	if err := s.DB.DeleteEvent(ctx, id); err != nil {
		return err
	}

	s.Logger.LogEvent("DELETED", id, fmt.Sprintf("by %s", caller))
	s.publish(ctx, models.EventDeleted, *current)
	return nil
}

// authorize loads the event and checks that caller owns it. Between this
// read and the following write another request may change the row; the
// later write wins.
func (s *EventService) authorize(ctx context.Context, id, caller, action string) (*models.Event, error) {
	current, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.CreatedBy != caller {
		s.Logger.LogSecurity("FORBIDDEN", fmt.Sprintf("%s tried to %s event %s owned by %s", caller, action, id, current.CreatedBy))
		return nil, models.ErrForbidden
	}
	return current, nil
}

// List filters, orders and pages the collection. Only the requested page is
// held in memory.
func (s *EventService) List(ctx context.Context, q models.ListQuery) (*models.EventPage, error) {
	q, err := q.Normalized(s.DefaultPageSize, s.MaxPageSize)
	if err != nil {
		return nil, err
	}

	var listErr error
	page := models.PaginateSeq(func(yield func(models.Event) bool) {
		for ev, err := range s.DB.ListEvents(ctx) {
			if err != nil {
				listErr = err
				return
			}
			if !yield(ev) {
				return
			}
		}
	}, q)
	if listErr != nil {
		return nil, listErr
	}
	return &page, nil
}

// All returns every event in list order.
func (s *EventService) All(ctx context.Context) ([]models.Event, error) {
	out := []models.Event{}
	for ev, err := range s.DB.ListEvents(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

func (s *EventService) publish(ctx context.Context, kind string, ev models.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.Publisher.Publish(ctx, models.NewEventNotification(kind, ev)); err != nil {
		s.Logger.Warn("PUBLISH", fmt.Sprintf("Failed to publish %s for %s: %v", kind, ev.ID, err))
	}
}
