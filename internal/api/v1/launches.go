package v1

import (
	"net/http"

	"ppr/internal/schema"
	"ppr/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (h *Handler) handleListLaunches(w http.ResponseWriter, r *http.Request) {
	goalID, ok := h.goalID(w, r)
	if !ok {
		return
	}
	launches, err := h.service.ListLaunches(r.Context(), goalID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, launchesResponse{Items: mapLaunches(launches)})
}

func (h *Handler) handleCreateLaunch(w http.ResponseWriter, r *http.Request) {
	goalID, ok := h.goalID(w, r)
	if !ok {
		return
	}
	var req launchRequest
	if err := decode(r, schema.LaunchCreate, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	result, err := h.service.CreateLaunch(r.Context(), actor(r), goalID, service.LaunchDraft{
		Value:       req.Value,
		Note:        req.Note,
		EvidenceURL: req.EvidenceURL,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapLaunchResult(result))
}

func (h *Handler) handleResubmitLaunch(w http.ResponseWriter, r *http.Request) {
	goalID, ok := h.goalID(w, r)
	if !ok {
		return
	}
	launchID, err := uuid.Parse(chi.URLParam(r, "launchID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "invalid launch id", map[string]string{"launch_id": "invalid"})
		return
	}
	var req launchRequest
	if err := decode(r, schema.LaunchResubmit, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	result, err := h.service.ResubmitLaunch(r.Context(), actor(r), goalID, launchID, service.LaunchDraft{
		Value:       req.Value,
		Note:        req.Note,
		EvidenceURL: req.EvidenceURL,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapLaunchResult(result))
}

func (h *Handler) handlePendingLaunches(w http.ResponseWriter, r *http.Request) {
	pending, err := h.service.PendingLaunches(r.Context(), actor(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapPending(pending))
}

func (h *Handler) handleEvaluateLaunch(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := decode(r, schema.LaunchEvaluate, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	launchID, err := uuid.Parse(req.LaunchID)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "invalid launch id", map[string]string{"launch_id": "invalid"})
		return
	}
	result, err := h.service.EvaluateLaunch(r.Context(), actor(r), service.Evaluation{
		GoalID:          req.GoalID,
		LaunchID:        launchID,
		Action:          service.EvaluationAction(req.Action),
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapLaunchResult(result))
}
