package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/BradenHooton/conecta/internal/auth"
	"github.com/BradenHooton/conecta/internal/models"
	pkghttp "github.com/BradenHooton/conecta/pkg/http"
	"github.com/go-chi/chi/v5"
)

// EventServiceInterface defines the event catalog operations
type EventServiceInterface interface {
	ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
	ListEventDates(ctx context.Context) ([]string, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	CreateEvent(ctx context.Context, caller *models.User, fields models.EventFields) (*models.Event, error)
	UpdateEvent(ctx context.Context, caller *models.User, id string, fields models.EventFields) (*models.Event, error)
	DeleteEvent(ctx context.Context, caller *models.User, id string) error
	ToggleAttendance(ctx context.Context, caller *models.User, id string) (*models.Event, bool, error)
}

// EventHandler handles event catalog HTTP requests
type EventHandler struct {
	service EventServiceInterface
}

func NewEventHandler(service EventServiceInterface) *EventHandler {
	return &EventHandler{service: service}
}

// EventListResponse wraps a filtered event list
type EventListResponse struct {
	Events []EventResponse `json:"events"`
	Count  int             `json:"count"`
}

// AttendanceResponse is returned by the attendance toggle
type AttendanceResponse struct {
	Event     EventResponse `json:"event"`
	Attending bool          `json:"attending"`
}

// parseEventFilter reads ?interests=a,b&q=&place=&date=&available=true.
// interests may also be repeated. An empty available means false.
func parseEventFilter(r *http.Request) (models.EventFilter, error) {
	q := r.URL.Query()

	var interests []string
	for _, v := range q["interests"] {
		for _, interest := range strings.Split(v, ",") {
			if interest = strings.TrimSpace(interest); interest != "" {
				interests = append(interests, interest)
			}
		}
	}

	var available bool
	if raw := q.Get("available"); raw != "" {
		var err error
		if available, err = strconv.ParseBool(raw); err != nil {
			return models.EventFilter{}, err
		}
	}
	return models.EventFilter{
		Interests:     interests,
		Text:          q.Get("q"),
		Place:         q.Get("place"),
		Date:          q.Get("date"),
		OnlyAvailable: available,
	}, nil
}

// List returns the events matching the query filter
// @Router /events [get]
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := auth.GetUserFromContext(r)

	filter, err := parseEventFilter(r)
	if err != nil {
		pkghttp.WriteValidationError(w, "available", "available debe ser true o false")
		return
	}

	events, err := h.service.ListEvents(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := EventListResponse{Events: make([]EventResponse, 0, len(events)), Count: len(events)}
	for i := range events {
		resp.Events = append(resp.Events, NewEventResponse(&events[i], caller.Email))
	}
	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// Dates returns the distinct event dates
// @Router /events/dates [get]
func (h *EventHandler) Dates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.service.ListEventDates(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string][]string{"dates": dates})
}

// Get returns one event
// @Router /events/{id} [get]
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller := auth.GetUserFromContext(r)

	event, err := h.service.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, NewEventResponse(event, caller.Email))
}

// Create adds an event organized by the caller
// @Router /events [post]
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := auth.GetUserFromContext(r)

	var req models.EventFields
	if !decodeRequest(w, r, &req) {
		return
	}

	event, err := h.service.CreateEvent(r.Context(), caller, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusCreated, NewEventResponse(event, caller.Email))
}

// Update replaces the editable fields of an event
// @Router /events/{id} [put]
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller := auth.GetUserFromContext(r)

	var req models.EventFields
	if !decodeRequest(w, r, &req) {
		return
	}

	event, err := h.service.UpdateEvent(r.Context(), caller, chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, NewEventResponse(event, caller.Email))
}

// Delete removes an event
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := auth.GetUserFromContext(r)

	if err := h.service.DeleteEvent(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteNoContent(w)
}

// ToggleAttendance joins or leaves an event
// @Router /events/{id}/attendance [post]
func (h *EventHandler) ToggleAttendance(w http.ResponseWriter, r *http.Request) {
	caller := auth.GetUserFromContext(r)

	event, attending, err := h.service.ToggleAttendance(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, AttendanceResponse{
		Event:     NewEventResponse(event, caller.Email),
		Attending: attending,
	})
}
