package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shivanand-hulikatti/eventcore/internal/model"
	"github.com/shivanand-hulikatti/eventcore/internal/service"
)

// RegistrationHandler holds the HTTP handlers for booking and registration
// state transitions.
type RegistrationHandler struct {
	svc *service.BookingService
}

// NewRegistrationHandler constructs a RegistrationHandler.
func NewRegistrationHandler(svc *service.BookingService) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

// Register handles POST /events/{id}/register, a concurrency-safe booking
// for the acting attendee.
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	reg, err := h.svc.Book(r.Context(), actorFrom(r), eventID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

// ListForEvent handles GET /events/{id}/registrations
func (h *RegistrationHandler) ListForEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	regs, err := h.svc.ListForEvent(r.Context(), actorFrom(r), eventID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// ListMine handles GET /registrations
func (h *RegistrationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	regs, err := h.svc.ListMine(r.Context(), actorFrom(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// Get handles GET /registrations/{id}
func (h *RegistrationHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.svc.Get)
}

// Cancel handles POST /registrations/{id}/cancel
func (h *RegistrationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.svc.Cancel)
}

// Confirm handles POST /registrations/{id}/confirm
func (h *RegistrationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.svc.Confirm)
}

// CheckIn handles POST /registrations/{id}/checkin
func (h *RegistrationHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.svc.CheckIn)
}

// act runs one registration operation keyed by the {id} URL parameter.
func (h *RegistrationHandler) act(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, actor model.Profile, id uuid.UUID) (*model.Registration, error),
) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid registration id")
		return
	}

	reg, err := op(r.Context(), actorFrom(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}
