package v1

import (
	"encoding/json"
	"testing"
	"time"

	"ppr/internal/domain"
	"ppr/internal/store"

	"github.com/google/uuid"
)

func TestMapGoalDeadline(t *testing.T) {
	goal := domain.Goal{ID: 1, Status: domain.GoalStatusPending, Deadline: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)}
	resp := mapGoal(goal)
	if resp.Deadline == nil || *resp.Deadline != "2025-06-30" {
		t.Fatalf("expected deadline 2025-06-30, got %v", resp.Deadline)
	}
	if mapGoal(domain.Goal{}).Deadline != nil {
		t.Fatalf("expected nil deadline for zero time")
	}
}

func TestMapGoalKeepsValueKinds(t *testing.T) {
	goal := domain.Goal{
		InputType: domain.InputCategorical,
		Levels: []domain.AchievementLevel{
			{TargetValue: domain.TextValue("Sim"), Percentage: 100},
			{TargetValue: domain.NumberValue(5), Percentage: 50},
		},
	}
	raw, err := json.Marshal(mapGoal(goal))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		Levels []map[string]any `json:"levels"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Levels[0]["target_value"] != "Sim" {
		t.Fatalf("expected text target, got %v", decoded.Levels[0]["target_value"])
	}
	if decoded.Levels[1]["target_value"] != float64(5) {
		t.Fatalf("expected numeric target, got %v", decoded.Levels[1]["target_value"])
	}
}

func TestMapPendingFlattensLaunch(t *testing.T) {
	id := uuid.New()
	resp := mapPending([]store.PendingLaunch{{
		Launch:    domain.Launch{ID: id, GoalID: 3, Seq: 2, Status: domain.LaunchStatusPending},
		GoalTitle: "Reduce churn",
		SectorID:  7,
	}})
	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	item := decoded.Items[0]
	if item["id"] != id.String() || item["goal_title"] != "Reduce churn" || item["seq"] != float64(2) {
		t.Fatalf("unexpected pending item %v", item)
	}
}
