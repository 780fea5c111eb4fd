package v1

import (
	"net/http"
	"time"

	"ppr/internal/domain"
	"ppr/internal/ppr"
	"ppr/internal/schema"
	"ppr/internal/service"
)

func (h *Handler) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.service.ListGoals(r.Context(), actor(r), r.URL.Query().Get("view"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapGoals(goals))
}

func (h *Handler) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := decode(r, schema.GoalCreate, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	var deadline time.Time
	if req.Deadline != "" {
		parsed, err := time.Parse(dateLayout, req.Deadline)
		if err != nil {
			h.fail(w, r, &ppr.ValidationError{Field: "deadline", Reason: "must be YYYY-MM-DD"})
			return
		}
		deadline = parsed
	}
	created, err := h.service.CreateGoal(r.Context(), actor(r), service.GoalDraft{
		SectorID:      req.SectorID,
		Title:         req.Title,
		Description:   req.Description,
		Priority:      domain.Priority(req.Priority),
		Deadline:      deadline,
		Frequency:     domain.Frequency(req.Frequency),
		InputType:     domain.InputType(req.InputType),
		Levels:        toLevels(req.Levels),
		PPRWeight:     req.PPRWeight,
		ResponsibleID: req.ResponsibleID,
		LauncherID:    req.LauncherID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdGoalResponse{Goal: mapGoal(created.Goal), Weights: mapWeights(created.Weights)})
}

func (h *Handler) handleGoal(w http.ResponseWriter, r *http.Request) {
	goalID, ok := h.goalID(w, r)
	if !ok {
		return
	}
	detail, err := h.service.GetGoal(r.Context(), goalID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapGoalDetail(detail))
}

func (h *Handler) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	goalID, ok := h.goalID(w, r)
	if !ok {
		return
	}
	var req updateGoalRequest
	if err := decode(r, schema.GoalUpdate, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	goal, err := h.service.UpdateGoalDefinition(r.Context(), actor(r), service.GoalDefinitionUpdate{
		GoalID:      goalID,
		Description: req.Description,
		Levels:      toLevels(req.Levels),
		Version:     req.Version,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapGoal(goal))
}

func (h *Handler) handleCancelGoal(w http.ResponseWriter, r *http.Request) {
	goalID, ok := h.goalID(w, r)
	if !ok {
		return
	}
	goal, err := h.service.CancelGoal(r.Context(), actor(r), goalID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapGoal(goal))
}

func (h *Handler) handleRecomputeGoal(w http.ResponseWriter, r *http.Request) {
	goalID, ok := h.goalID(w, r)
	if !ok {
		return
	}
	goal, changed, err := h.service.RecomputeGoal(r.Context(), goalID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recomputeResponse{Goal: mapGoal(goal), Changed: changed})
}

func (h *Handler) handleSectorWeights(w http.ResponseWriter, r *http.Request) {
	sectorID, err := parseID(r, "sectorID")
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "invalid sector id", map[string]string{"sector_id": "invalid"})
		return
	}
	weights, err := h.service.SectorWeights(r.Context(), sectorID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapWeights(weights))
}
