// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer, and the middleware that
// resolves the acting profile from the identity provider's bearer tokens.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/shivanand-hulikatti/eventcore/internal/identity"
	"github.com/shivanand-hulikatti/eventcore/internal/model"
	"github.com/shivanand-hulikatti/eventcore/internal/policy"
	"github.com/shivanand-hulikatti/eventcore/internal/repository"
	"github.com/shivanand-hulikatti/eventcore/internal/service"
)

var validate = validator.New()

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return validate.Struct(dst)
}

func parseID(raw string) (uuid.UUID, error) {
	return uuid.Parse(raw)
}

// writeServiceError maps the domain error taxonomy onto HTTP statuses.
// Policy-filtered resources deliberately surface as 404, indistinguishable
// from absent ones.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, policy.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrNotEligible):
		writeError(w, http.StatusForbidden, "role not eligible for this operation")
	case errors.Is(err, repository.ErrEventNotBookable):
		writeError(w, http.StatusConflict, "event is not open for booking")
	case errors.Is(err, repository.ErrCapacityExceeded):
		writeError(w, http.StatusConflict, "event is fully booked")
	case errors.Is(err, repository.ErrAlreadyRegistered):
		writeError(w, http.StatusConflict, "you are already registered for this event")
	case errors.Is(err, repository.ErrAlreadyAssigned):
		writeError(w, http.StatusConflict, "volunteer is already assigned to this event")
	case errors.Is(err, repository.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid status transition")
	case errors.Is(err, repository.ErrConflictRetry):
		writeError(w, http.StatusConflict, "booking conflict, please retry")
	case errors.Is(err, identity.ErrProvisioning):
		writeError(w, http.StatusInternalServerError, "profile provisioning failed")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
