package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/eventconnect/server/internal/api/problem"
	"github.com/eventconnect/server/internal/auth"
	"github.com/eventconnect/server/internal/domain/events"
	"github.com/eventconnect/server/internal/storage"
)

type EventsHandler struct {
	Service  *events.Service
	Resolver *auth.Resolver
	Auth     auth.Authorizer
	Env      string
}

func NewEventsHandler(service *events.Service, resolver *auth.Resolver, authorizer auth.Authorizer, env string) *EventsHandler {
	return &EventsHandler{Service: service, Resolver: resolver, Auth: authorizer, Env: env}
}

type eventCreateRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	Time        *time.Time `json:"time"`
	Location    string     `json:"location"`
	Cost        float64    `json:"cost" validate:"gte=0"`
	Threshold   int        `json:"threshold" validate:"gte=0"`
	Capacity    int        `json:"capacity" validate:"gte=0"`
	Category    string     `json:"category"`
}

// eventUpdateRequest uses pointers throughout: an omitted field leaves the
// stored value alone, an explicit zero sets zero. Owner and id are not
// accepted; they are never client-mutable.
type eventUpdateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Time        *time.Time `json:"time"`
	Location    *string    `json:"location"`
	Cost        *float64   `json:"cost" validate:"omitempty,gte=0"`
	Threshold   *int       `json:"threshold" validate:"omitempty,gte=0"`
	Capacity    *int       `json:"capacity" validate:"omitempty,gte=0"`
	Category    *string    `json:"category"`
}

// List handles GET /events: every event with its derived joined count.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Get handles GET /event/{id}. A missing event is an empty result, not an
// error.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request", err, h.Env)
		return
	}

	event, err := h.Service.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// Create handles POST /event/{token}. The owner is the resolved caller
// identity; any owner in the payload is ignored by construction.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, err := h.Resolver.Resolve(r.Context(), r.PathValue("token"))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	var input eventCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request", err, h.Env)
		return
	}
	if err := validate.Struct(input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request", err, h.Env)
		return
	}

	event, err := h.Service.Create(r.Context(), owner.ID, events.CreateParams{
		Title:       input.Title,
		Description: input.Description,
		Time:        input.Time,
		Location:    input.Location,
		Cost:        input.Cost,
		Threshold:   input.Threshold,
		Capacity:    input.Capacity,
		Category:    input.Category,
	})
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// Join handles PUT /event/{eventId}/join/{token}: idempotent membership
// creation, responding with the post-join aggregate view.
func (h *EventsHandler) Join(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "eventId")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request", err, h.Env)
		return
	}

	user, err := h.Resolver.Resolve(r.Context(), r.PathValue("token"))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	event, err := h.Service.Join(r.Context(), eventID, user.ID)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// Upsert handles PUT /event/{id}/{token}: update-if-present (owner only),
// create-if-absent with the caller as owner. Deny is rejected outright.
func (h *EventsHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request", err, h.Env)
		return
	}

	token := r.PathValue("token")
	if err := h.Auth.AuthorizeEvent(r.Context(), token, id); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	owner, err := h.Resolver.Resolve(r.Context(), token)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	var input eventUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request", err, h.Env)
		return
	}
	if err := validate.Struct(input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request", err, h.Env)
		return
	}

	event, err := h.Service.Upsert(r.Context(), id, owner.ID, events.UpdateParams{
		Title:       input.Title,
		Description: input.Description,
		Time:        input.Time,
		Location:    input.Location,
		Cost:        input.Cost,
		Threshold:   input.Threshold,
		Capacity:    input.Capacity,
		Category:    input.Category,
	})
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// Delete handles DELETE /event/{id}/{token}. Idempotent on a missing id.
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request", err, h.Env)
		return
	}

	if err := h.Auth.AuthorizeEvent(r.Context(), r.PathValue("token"), id); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
