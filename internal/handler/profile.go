package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/shivanand-hulikatti/eventcore/internal/identity"
	"github.com/shivanand-hulikatti/eventcore/internal/model"
	"github.com/shivanand-hulikatti/eventcore/internal/service"
)

// ProfileHandler holds the HTTP handlers for the caller's own profile and
// the identity-provider webhook.
type ProfileHandler struct {
	svc           *service.ProfileService
	bridge        *identity.Bridge
	webhookSecret string
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(svc *service.ProfileService, bridge *identity.Bridge, webhookSecret string) *ProfileHandler {
	return &ProfileHandler{svc: svc, bridge: bridge, webhookSecret: webhookSecret}
}

// Me handles GET /profiles/me
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	p, err := h.svc.Get(r.Context(), actor, actor.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateMe handles PATCH /profiles/me. The request shape has no role field;
// role stays exactly as the identity bridge set it.
func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	p, err := h.svc.UpdateContact(r.Context(), actorFrom(r), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// IdentityWebhook handles POST /webhooks/identity, the identity provider's
// "identity created" notification. Redelivery is an idempotent success and
// responds with the already-provisioned profile.
func (h *ProfileHandler) IdentityWebhook(w http.ResponseWriter, r *http.Request) {
	secret := r.Header.Get("X-Webhook-Secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.webhookSecret)) != 1 {
		writeError(w, http.StatusUnauthorized, "invalid webhook secret")
		return
	}

	var ev model.IdentityEvent
	if err := decodeJSON(r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	p, err := h.bridge.Provision(r.Context(), ev)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}
