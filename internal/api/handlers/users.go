package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eventconnect/server/internal/api/problem"
	"github.com/eventconnect/server/internal/auth"
	"github.com/eventconnect/server/internal/domain/events"
	"github.com/eventconnect/server/internal/domain/users"
	"github.com/eventconnect/server/internal/storage"
)

type UsersHandler struct {
	Service  *users.Service
	Events   *events.Service
	Resolver *auth.Resolver
	Auth     auth.Authorizer
	Env      string
}

func NewUsersHandler(service *users.Service, eventsService *events.Service, resolver *auth.Resolver, authorizer auth.Authorizer, env string) *UsersHandler {
	return &UsersHandler{Service: service, Events: eventsService, Resolver: resolver, Auth: authorizer, Env: env}
}

type userCreateRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// userUpdateRequest distinguishes omitted fields from explicit zero values:
// a field absent from the JSON body stays nil and leaves the stored value
// unchanged.
type userUpdateRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

// List handles GET /users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Get handles GET /user/{id}. A missing user is an empty result, not an
// error.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request", err, h.Env)
		return
	}

	user, err := h.Service.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// JoinedEvents handles GET /user/events/{token}: the events the token's
// user has joined.
func (h *UsersHandler) JoinedEvents(w http.ResponseWriter, r *http.Request) {
	user, err := h.Resolver.Resolve(r.Context(), r.PathValue("token"))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	items, err := h.Events.ListJoinedByUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Create handles POST /user. Never idempotent: every call allocates a fresh
// id.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input userCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request", err, h.Env)
		return
	}
	if err := validate.Struct(input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request", err, h.Env)
		return
	}

	user, err := h.Service.Create(r.Context(), users.CreateInput{
		Username: input.Username,
		Password: input.Password,
	})
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Upsert handles PUT /user/{id}/{token}: update-if-present, create-if-absent.
// The authorization check is consulted first and a deny is rejected; the
// old behavior of silently inserting on deny is gone.
func (h *UsersHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request", err, h.Env)
		return
	}

	if err := h.Auth.AuthorizeUser(r.Context(), r.PathValue("token"), id); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	var input userUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request", err, h.Env)
		return
	}

	user, err := h.Service.Upsert(r.Context(), id, users.UpdateInput{
		Username: input.Username,
		Password: input.Password,
	})
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /user/{id}/{token}. Idempotent: a missing id is
// nothing to do.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request", err, h.Env)
		return
	}

	if err := h.Auth.AuthorizeUser(r.Context(), r.PathValue("token"), id); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
