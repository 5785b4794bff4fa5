package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"eventify/internal/auth"
	"eventify/internal/events"
	"eventify/internal/logger"
	"eventify/internal/models"
	"eventify/internal/utils"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	EventService  *events.EventService
	Logger        *logger.Logger
	PublicBaseURL string
}

func NewHandler(svc *events.EventService, log *logger.Logger, publicBaseURL string) *Handler {
	return &Handler{EventService: svc, Logger: log, PublicBaseURL: publicBaseURL}
}

// RegisterRoutes mounts the event routes. Reads are public; guard wraps
// every mutation.
func (h *Handler) RegisterRoutes(r chi.Router, guard func(http.Handler) http.Handler) {
	r.Get("/api/categories", h.ListCategories)
	r.Get("/api/events.ics", h.ExportCalendar)

	r.Route("/api/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Get("/{id}", h.GetEvent)
		r.Get("/{id}/qr", h.GetEventQR)

		r.Group(func(r chi.Router) {
			r.Use(guard)
			r.Post("/", h.CreateEvent)
			r.Put("/{id}", h.UpdateEvent)
			r.Delete("/{id}", h.DeleteEvent)
		})
	})
}

// ListEvents returns the bare ordered array when called without query
// options, and a page envelope as soon as any option is given.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	if !hasListOptions(values) {
		all, err := h.EventService.All(r.Context())
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.respond(w, http.StatusOK, all)
		return
	}

	q, err := parseListQuery(values)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	page, err := h.EventService.List(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, page)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := h.EventService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, ev)
}

type createResponse struct {
	Message string        `json:"message"`
	Event   *models.Event `json:"event"`
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var in models.EventInput
	if err := decodeBody(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	ev, err := h.EventService.Create(r.Context(), in, auth.UserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, createResponse{Message: "Event created!", Event: ev})
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var patch models.EventPatch
	if err := decodeBody(w, r, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}

	ev, err := h.EventService.Update(r.Context(), chi.URLParam(r, "id"), patch, auth.UserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, ev)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.EventService.Delete(r.Context(), chi.URLParam(r, "id"), auth.UserID(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]string{"message": "Event deleted"})
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, models.SuggestedCategories)
}

func hasListOptions(values url.Values) bool {
	for _, key := range []string{"search", "category", "page", "pageSize"} {
		if values.Has(key) {
			return true
		}
	}
	return false
}

func parseListQuery(values url.Values) (models.ListQuery, error) {
	q := models.ListQuery{
		Search:   values.Get("search"),
		Category: values.Get("category"),
	}

	var err error
	if q.Page, err = intParam(values, "page"); err != nil {
		return q, err
	}
	if q.PageSize, err = intParam(values, "pageSize"); err != nil {
		return q, err
	}
	return q, nil
}

// intParam returns 0 for an absent or empty parameter so the default applies.
func intParam(values url.Values, key string) (int, error) {
	raw := values.Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, &models.ValidationError{Field: key, Reason: "must be an integer >= 1"}
	}
	return n, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return verr
		}
		return &models.ValidationError{Reason: "request body must be a JSON object: " + err.Error()}
	}
	return nil
}

func (h *Handler) respond(w http.ResponseWriter, status int, data any) {
	if err := utils.WriteJSON(w, status, data); err != nil {
		h.Logger.Error("HTTP", fmt.Sprintf("Failed to encode response: %v", err))
	}
}

// writeError is the single mapping from domain errors to HTTP statuses.
// Anything unrecognized is logged and hidden behind a generic 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.WriteError(w, http.StatusBadRequest, verr.Error(), "validation")
	case errors.Is(err, auth.ErrUnauthenticated):
		utils.WriteError(w, http.StatusUnauthorized, "Authentication required", "unauthenticated")
	case errors.Is(err, models.ErrForbidden):
		utils.WriteError(w, http.StatusForbidden, "Unauthorized", "forbidden")
	case errors.Is(err, models.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, "Event not found", "not_found")
	default:
		h.Logger.Error("EVENTS", fmt.Sprintf("%s %s failed: %v", r.Method, r.URL.Path, err))
		utils.WriteError(w, http.StatusInternalServerError, "Internal server error", "internal")
	}
}
