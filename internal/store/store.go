package store

import (
	"errors"
	"time"

	"ppr/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrVersionConflict = errors.New("version conflict")
)

type Store struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type SectorInput struct {
	Acronym string
	Name    string
}

type UserInput struct {
	Name     string
	Email    string
	Roles    []domain.Role
	SectorID int64
}

type GoalInput struct {
	SectorID      int64
	Title         string
	Description   string
	Priority      domain.Priority
	Deadline      time.Time
	Frequency     domain.Frequency
	InputType     domain.InputType
	Levels        []domain.AchievementLevel
	PPRWeight     float64
	CreatorID     int64
	ResponsibleID int64
	LauncherID    int64
}

// GoalDefinitionInput carries the editable part of a goal. Version must match
// the stored row or the update fails with ErrVersionConflict.
type GoalDefinitionInput struct {
	ID          int64
	Description string
	Levels      []domain.AchievementLevel
	Version     int64
}

type GoalView string

const (
	ViewResponsible GoalView = "mine"
	ViewSector      GoalView = "sector"
	ViewLauncher    GoalView = "launcher"
	ViewCreated     GoalView = "created"
	ViewPending     GoalView = "pending"
)

type GoalFilter struct {
	View     GoalView
	UserID   int64
	SectorID int64
}

type PendingLaunch struct {
	Launch    domain.Launch
	GoalTitle string
	SectorID  int64
}
