package v1

import (
	"encoding/json"
	"time"

	"ppr/internal/domain"
	"ppr/internal/schema"
	"ppr/internal/service"
	"ppr/internal/store"
)

const dateLayout = "2006-01-02"

type levelBody struct {
	TargetValue domain.Value `json:"target_value"`
	Percentage  float64      `json:"percentage"`
}

type createGoalRequest struct {
	SectorID      int64       `json:"sector_id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Priority      string      `json:"priority"`
	Deadline      string      `json:"deadline"`
	Frequency     string      `json:"frequency"`
	InputType     string      `json:"input_type"`
	Levels        []levelBody `json:"levels"`
	PPRWeight     float64     `json:"ppr_weight"`
	ResponsibleID int64       `json:"responsible_id"`
	LauncherID    int64       `json:"launcher_id"`
}

type updateGoalRequest struct {
	Description string      `json:"description"`
	Levels      []levelBody `json:"levels"`
	Version     int64       `json:"version"`
}

type launchRequest struct {
	Value       domain.Value `json:"value"`
	Note        string       `json:"note"`
	EvidenceURL string       `json:"evidence_url"`
}

type evaluateRequest struct {
	GoalID          int64  `json:"goal_id"`
	LaunchID        string `json:"launch_id"`
	Action          string `json:"action"`
	RejectionReason string `json:"rejection_reason"`
}

type goalResponse struct {
	ID               int64       `json:"id"`
	SectorID         int64       `json:"sector_id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Priority         string      `json:"priority"`
	Deadline         *string     `json:"deadline"`
	Frequency        string      `json:"frequency"`
	InputType        string      `json:"input_type"`
	Levels           []levelBody `json:"levels"`
	PPRWeight        float64     `json:"ppr_weight"`
	Status           string      `json:"status"`
	EarnedAttainment float64     `json:"earned_attainment"`
	TaskProgress     int         `json:"task_progress"`
	CreatorID        int64       `json:"creator_id"`
	ResponsibleID    int64       `json:"responsible_id"`
	LauncherID       int64       `json:"launcher_id"`
	Version          int64       `json:"version"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

type launchResponse struct {
	ID              string       `json:"id"`
	GoalID          int64        `json:"goal_id"`
	Seq             int          `json:"seq"`
	Value           domain.Value `json:"value"`
	Note            string       `json:"note,omitempty"`
	EvidenceURL     string       `json:"evidence_url,omitempty"`
	Status          string       `json:"status"`
	RejectionReason string       `json:"rejection_reason,omitempty"`
	UpdatedBy       string       `json:"updated_by"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

type goalsResponse struct {
	Items []goalResponse `json:"items"`
}

type goalDetailResponse struct {
	goalResponse
	Launches []launchResponse `json:"launches"`
}

type createdGoalResponse struct {
	Goal    goalResponse    `json:"goal"`
	Weights weightsResponse `json:"sector_weights"`
}

type launchesResponse struct {
	Items []launchResponse `json:"items"`
}

type launchResultResponse struct {
	Goal   goalResponse   `json:"goal"`
	Launch launchResponse `json:"launch"`
}

type pendingLaunchResponse struct {
	launchResponse
	GoalTitle string `json:"goal_title"`
	SectorID  int64  `json:"sector_id"`
}

type pendingResponse struct {
	Items []pendingLaunchResponse `json:"items"`
}

type recomputeResponse struct {
	Goal    goalResponse `json:"goal"`
	Changed bool         `json:"changed"`
}

type weightItem struct {
	GoalID    int64   `json:"goal_id"`
	Title     string  `json:"title"`
	PPRWeight float64 `json:"ppr_weight"`
	Status    string  `json:"status"`
}

type weightsResponse struct {
	SectorID      int64        `json:"sector_id"`
	Total         float64      `json:"total"`
	OverAllocated bool         `json:"over_allocated"`
	Goals         []weightItem `json:"goals"`
}

func unmarshal(raw []byte, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return &schema.Error{Fields: map[string]string{"body": err.Error()}}
	}
	return nil
}

func toLevels(body []levelBody) []domain.AchievementLevel {
	levels := make([]domain.AchievementLevel, 0, len(body))
	for _, level := range body {
		levels = append(levels, domain.AchievementLevel{TargetValue: level.TargetValue, Percentage: level.Percentage})
	}
	return levels
}

func mapLevels(levels []domain.AchievementLevel) []levelBody {
	body := make([]levelBody, 0, len(levels))
	for _, level := range levels {
		body = append(body, levelBody{TargetValue: level.TargetValue, Percentage: level.Percentage})
	}
	return body
}

func mapGoal(goal domain.Goal) goalResponse {
	resp := goalResponse{
		ID:               goal.ID,
		SectorID:         goal.SectorID,
		Title:            goal.Title,
		Description:      goal.Description,
		Priority:         string(goal.Priority),
		Frequency:        string(goal.Frequency),
		InputType:        string(goal.InputType),
		Levels:           mapLevels(goal.Levels),
		PPRWeight:        goal.PPRWeight,
		Status:           string(goal.Status),
		EarnedAttainment: goal.EarnedAttainment,
		TaskProgress:     goal.TaskProgress,
		CreatorID:        goal.CreatorID,
		ResponsibleID:    goal.ResponsibleID,
		LauncherID:       goal.LauncherID,
		Version:          goal.Version,
		CreatedAt:        goal.CreatedAt,
		UpdatedAt:        goal.UpdatedAt,
	}
	if !goal.Deadline.IsZero() {
		deadline := goal.Deadline.Format(dateLayout)
		resp.Deadline = &deadline
	}
	return resp
}

func mapGoals(goals []domain.Goal) goalsResponse {
	items := make([]goalResponse, 0, len(goals))
	for _, goal := range goals {
		items = append(items, mapGoal(goal))
	}
	return goalsResponse{Items: items}
}

func mapLaunch(launch domain.Launch) launchResponse {
	return launchResponse{
		ID:              launch.ID.String(),
		GoalID:          launch.GoalID,
		Seq:             launch.Seq,
		Value:           launch.Value,
		Note:            launch.Note,
		EvidenceURL:     launch.EvidenceURL,
		Status:          string(launch.Status),
		RejectionReason: launch.RejectionReason,
		UpdatedBy:       launch.UpdatedBy,
		CreatedAt:       launch.CreatedAt,
		UpdatedAt:       launch.UpdatedAt,
	}
}

func mapLaunches(launches []domain.Launch) []launchResponse {
	items := make([]launchResponse, 0, len(launches))
	for _, launch := range launches {
		items = append(items, mapLaunch(launch))
	}
	return items
}

func mapGoalDetail(detail service.GoalDetail) goalDetailResponse {
	return goalDetailResponse{goalResponse: mapGoal(detail.Goal), Launches: mapLaunches(detail.Launches)}
}

func mapLaunchResult(result service.LaunchResult) launchResultResponse {
	return launchResultResponse{Goal: mapGoal(result.Goal), Launch: mapLaunch(result.Launch)}
}

func mapPending(pending []store.PendingLaunch) pendingResponse {
	items := make([]pendingLaunchResponse, 0, len(pending))
	for _, item := range pending {
		items = append(items, pendingLaunchResponse{
			launchResponse: mapLaunch(item.Launch),
			GoalTitle:      item.GoalTitle,
			SectorID:       item.SectorID,
		})
	}
	return pendingResponse{Items: items}
}

func mapWeights(weights service.SectorWeights) weightsResponse {
	items := make([]weightItem, 0, len(weights.Goals))
	for _, goal := range weights.Goals {
		items = append(items, weightItem{GoalID: goal.GoalID, Title: goal.Title, PPRWeight: goal.PPRWeight, Status: string(goal.Status)})
	}
	return weightsResponse{SectorID: weights.SectorID, Total: weights.Total, OverAllocated: weights.OverAllocated, Goals: items}
}
