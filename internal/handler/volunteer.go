package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shivanand-hulikatti/eventcore/internal/model"
	"github.com/shivanand-hulikatti/eventcore/internal/service"
)

// VolunteerHandler holds the HTTP handlers for volunteer assignments and
// tasks under an event.
type VolunteerHandler struct {
	svc *service.TaskService
}

// NewVolunteerHandler constructs a VolunteerHandler.
func NewVolunteerHandler(svc *service.TaskService) *VolunteerHandler {
	return &VolunteerHandler{svc: svc}
}

// Assign handles POST /events/{id}/volunteers
func (h *VolunteerHandler) Assign(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req model.AssignVolunteerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	a, err := h.svc.Assign(r.Context(), actorFrom(r), eventID, req.VolunteerID, req.RoleLabel)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// Unassign handles DELETE /events/{id}/volunteers/{volunteerID}
func (h *VolunteerHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	volunteerID, err := parseID(chi.URLParam(r, "volunteerID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid volunteer id")
		return
	}

	if err := h.svc.Unassign(r.Context(), actorFrom(r), eventID, volunteerID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAssignments handles GET /events/{id}/volunteers
func (h *VolunteerHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	assignments, err := h.svc.ListAssignments(r.Context(), actorFrom(r), eventID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if assignments == nil {
		assignments = []model.VolunteerAssignment{}
	}
	writeJSON(w, http.StatusOK, assignments)
}

// CreateTask handles POST /events/{id}/tasks
func (h *VolunteerHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req model.CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	t, err := h.svc.CreateTask(r.Context(), actorFrom(r), eventID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// ListTasks handles GET /events/{id}/tasks
func (h *VolunteerHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	tasks, err := h.svc.ListTasks(r.Context(), actorFrom(r), eventID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// UpdateTask handles PATCH /tasks/{id}
func (h *VolunteerHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req model.UpdateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	t, err := h.svc.UpdateTask(r.Context(), actorFrom(r), taskID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// UpdateTaskStatus handles POST /tasks/{id}/status
func (h *VolunteerHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req model.UpdateTaskStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	t, err := h.svc.UpdateTaskStatus(r.Context(), actorFrom(r), taskID, req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTask handles DELETE /tasks/{id}
func (h *VolunteerHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	if err := h.svc.DeleteTask(r.Context(), actorFrom(r), taskID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
