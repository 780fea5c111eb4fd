package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ppr/internal/auth"
	"ppr/internal/domain"
	"ppr/internal/service"
	"ppr/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestLaunchApprovalIntegration(t *testing.T) {
	ctx := context.Background()
	container, err := tcpostgres.RunContainer(ctx,
		tcpostgres.WithDatabase("ppr"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	defer func() { _ = container.Terminate(ctx) }()

	dbURL, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("conn string: %v", err)
	}
	dir, err := store.MigrationsDir()
	if err != nil {
		t.Fatalf("migrations dir: %v", err)
	}
	if err := store.Migrate(dbURL, dir); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	defer pool.Close()

	repo := store.New(pool)
	sectorID, err := repo.CreateSector(ctx, store.SectorInput{Acronym: "API", Name: "Api sector"})
	if err != nil {
		t.Fatalf("sector: %v", err)
	}
	users := map[string]domain.User{}
	for name, role := range map[string]domain.Role{"manager": domain.RoleManager, "launcher": domain.RoleCollaborator, "evaluator": domain.RoleEvaluator} {
		id, err := repo.CreateUser(ctx, store.UserInput{Name: name, Email: name + "@api.test", Roles: []domain.Role{role}, SectorID: sectorID})
		if err != nil {
			t.Fatalf("user %s: %v", name, err)
		}
		users[name] = domain.User{ID: id, Name: name, SectorID: sectorID, Roles: []domain.Role{role}}
	}

	tokens := auth.NewTokens("integration-secret", time.Hour)
	router := chi.NewRouter()
	router.Mount("/api/v1", NewHandler(service.New(repo), tokens, nil).Routes())
	server := httptest.NewServer(router)
	defer server.Close()

	call := func(method, path, as string, body any, out any) int {
		t.Helper()
		raw, _ := json.Marshal(body)
		req, err := http.NewRequest(method, server.URL+path, bytes.NewReader(raw))
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		token, err := tokens.Issue(users[as])
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", method, path, err)
		}
		defer resp.Body.Close()
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				t.Fatalf("decode: %v", err)
			}
		}
		return resp.StatusCode
	}

	var created createdGoalResponse
	status := call(http.MethodPost, "/api/v1/goals", "manager", map[string]any{
		"sector_id":   sectorID,
		"title":       "Quarterly revenue",
		"frequency":   "quarterly",
		"input_type":  "numeric",
		"ppr_weight":  30,
		"launcher_id": users["launcher"].ID,
		"levels": []map[string]any{
			{"target_value": 100, "percentage": 100},
			{"target_value": 80, "percentage": 60},
		},
	}, &created)
	if status != http.StatusCreated {
		t.Fatalf("create goal: expected 201, got %d", status)
	}
	goalID := created.Goal.ID

	var launched launchResultResponse
	status = call(http.MethodPost, fmt.Sprintf("/api/v1/goals/%d/launches", goalID), "launcher",
		map[string]any{"value": 120, "evidence_url": "https://files/q1.pdf"}, &launched)
	if status != http.StatusCreated {
		t.Fatalf("create launch: expected 201, got %d", status)
	}
	if launched.Goal.Status != string(domain.GoalStatusInProgress) {
		t.Fatalf("expected in_progress, got %s", launched.Goal.Status)
	}

	var pending pendingResponse
	if status := call(http.MethodGet, "/api/v1/launches/pending", "evaluator", nil, &pending); status != http.StatusOK {
		t.Fatalf("pending: expected 200, got %d", status)
	}
	if len(pending.Items) != 1 {
		t.Fatalf("expected one pending launch, got %d", len(pending.Items))
	}

	var approved launchResultResponse
	status = call(http.MethodPatch, "/api/v1/launches/evaluate", "evaluator", map[string]any{
		"goal_id": goalID, "launch_id": launched.Launch.ID, "action": "approve",
	}, &approved)
	if status != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d", status)
	}
	if approved.Goal.EarnedAttainment != 15 {
		t.Fatalf("expected attainment 15, got %v", approved.Goal.EarnedAttainment)
	}
	if approved.Goal.TaskProgress != 50 {
		t.Fatalf("expected progress 50, got %d", approved.Goal.TaskProgress)
	}

	var errResp ErrorResponse
	status = call(http.MethodPut, fmt.Sprintf("/api/v1/goals/%d/launches/%s", goalID, launched.Launch.ID), "launcher",
		map[string]any{"value": 130}, &errResp)
	if status != http.StatusConflict || errResp.Error.Code != CodeConflict {
		t.Fatalf("resubmit approved launch: expected 409 CONFLICT, got %d %s", status, errResp.Error.Code)
	}
}
