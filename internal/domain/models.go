package domain

import (
	"time"

	"github.com/google/uuid"
)

type Frequency string

const (
	FrequencyMonthly    Frequency = "monthly"
	FrequencyQuarterly  Frequency = "quarterly"
	FrequencySemiannual Frequency = "semiannual"
)

type InputType string

const (
	InputNumeric     InputType = "numeric"
	InputCategorical InputType = "categorical"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type GoalStatus string

const (
	GoalStatusPending    GoalStatus = "pending"
	GoalStatusInProgress GoalStatus = "in_progress"
	GoalStatusCompleted  GoalStatus = "completed"
	GoalStatusCanceled   GoalStatus = "canceled"
)

type LaunchStatus string

const (
	LaunchStatusPending  LaunchStatus = "pending"
	LaunchStatusApproved LaunchStatus = "approved"
	LaunchStatusRejected LaunchStatus = "rejected"
)

type Role string

const (
	RoleSuperuser    Role = "superuser"
	RoleAdmin        Role = "admin"
	RoleManager      Role = "manager"
	RoleEvaluator    Role = "evaluator"
	RoleCollaborator Role = "collaborator"
)

type Sector struct {
	ID      int64
	Acronym string
	Name    string
}

type User struct {
	ID        int64
	Name      string
	Email     string
	Roles     []Role
	SectorID  int64
	CreatedAt time.Time
}

func (u User) HasRole(roles ...Role) bool {
	for _, have := range u.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// AchievementLevel is one reward tier of a goal.
type AchievementLevel struct {
	TargetValue Value   `json:"target_value"`
	Percentage  float64 `json:"percentage"`
}

type Goal struct {
	ID               int64
	SectorID         int64
	Title            string
	Description      string
	Priority         Priority
	Deadline         time.Time
	Frequency        Frequency
	InputType        InputType
	Levels           []AchievementLevel
	PPRWeight        float64
	Status           GoalStatus
	EarnedAttainment float64
	TaskProgress     int
	CreatorID        int64
	ResponsibleID    int64
	LauncherID       int64
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Launch struct {
	ID              uuid.UUID
	GoalID          int64
	Seq             int
	Value           Value
	Note            string
	EvidenceURL     string
	Status          LaunchStatus
	RejectionReason string
	UpdatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Derived holds the goal fields owned by the engine.
type Derived struct {
	EarnedAttainment float64
	TaskProgress     int
	Status           GoalStatus
}

func (g Goal) Derived() Derived {
	return Derived{EarnedAttainment: g.EarnedAttainment, TaskProgress: g.TaskProgress, Status: g.Status}
}
