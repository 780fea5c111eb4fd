package v1

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"ppr/internal/auth"
	"ppr/internal/domain"
	"ppr/internal/schema"
	"ppr/internal/service"
	"ppr/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Service is the part of the goal service the API drives.
type Service interface {
	CreateGoal(ctx context.Context, actor domain.User, draft service.GoalDraft) (service.CreatedGoal, error)
	GetGoal(ctx context.Context, goalID int64) (service.GoalDetail, error)
	ListGoals(ctx context.Context, actor domain.User, view string) ([]domain.Goal, error)
	UpdateGoalDefinition(ctx context.Context, actor domain.User, update service.GoalDefinitionUpdate) (domain.Goal, error)
	CancelGoal(ctx context.Context, actor domain.User, goalID int64) (domain.Goal, error)
	RecomputeGoal(ctx context.Context, goalID int64) (domain.Goal, bool, error)
	ListLaunches(ctx context.Context, goalID int64) ([]domain.Launch, error)
	CreateLaunch(ctx context.Context, actor domain.User, goalID int64, draft service.LaunchDraft) (service.LaunchResult, error)
	ResubmitLaunch(ctx context.Context, actor domain.User, goalID int64, launchID uuid.UUID, draft service.LaunchDraft) (service.LaunchResult, error)
	EvaluateLaunch(ctx context.Context, actor domain.User, evaluation service.Evaluation) (service.LaunchResult, error)
	PendingLaunches(ctx context.Context, actor domain.User) ([]store.PendingLaunch, error)
	SectorWeights(ctx context.Context, sectorID int64) (service.SectorWeights, error)
}

type Handler struct {
	service Service
	tokens  *auth.Tokens
	logger  *slog.Logger
}

const maxBodyBytes = 1 << 20

func NewHandler(service Service, tokens *auth.Tokens, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, tokens: tokens, logger: logger}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.authenticate)

	r.Get("/goals", h.handleListGoals)
	r.With(requireRole(domain.RoleManager, domain.RoleAdmin, domain.RoleSuperuser)).Post("/goals", h.handleCreateGoal)
	r.Get("/goals/{goalID}", h.handleGoal)
	r.Put("/goals/{goalID}", h.handleUpdateGoal)
	r.Post("/goals/{goalID}/cancel", h.handleCancelGoal)
	r.With(requireRole(domain.RoleAdmin, domain.RoleSuperuser)).Post("/goals/{goalID}/recompute", h.handleRecomputeGoal)

	r.Get("/goals/{goalID}/launches", h.handleListLaunches)
	r.Post("/goals/{goalID}/launches", h.handleCreateLaunch)
	r.Put("/goals/{goalID}/launches/{launchID}", h.handleResubmitLaunch)

	r.With(requireRole(domain.RoleEvaluator, domain.RoleSuperuser)).Get("/launches/pending", h.handlePendingLaunches)
	r.With(requireRole(domain.RoleEvaluator, domain.RoleSuperuser)).Patch("/launches/evaluate", h.handleEvaluateLaunch)

	r.With(requireRole(domain.RoleManager, domain.RoleAdmin, domain.RoleSuperuser)).Get("/sectors/{sectorID}/weights", h.handleSectorWeights)

	return r
}

// authenticate turns the bearer token into claims on the request context.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			writeError(w, http.StatusUnauthorized, CodeUnauthorized, "missing bearer token", nil)
			return
		}
		claims, err := h.tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid token", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	})
}

func requireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !actor(r).HasRole(roles...) {
				writeError(w, http.StatusForbidden, CodeForbidden, "insufficient role", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func actor(r *http.Request) domain.User {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		return domain.User{}
	}
	return claims.User()
}

// fail writes the envelope for err. Unexpected errors are logged; the client
// only sees a generic message.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := classify(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	writeJSON(w, status, ErrorResponse{Error: detail})
}

// decode validates the body against the schema, then fills dst.
func decode(r *http.Request, name schema.Name, dst any) error {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return &schema.Error{Fields: map[string]string{"body": "unreadable"}}
	}
	if err := schema.Validate(name, raw); err != nil {
		return err
	}
	return unmarshal(raw, dst)
}

func parseID(r *http.Request, param string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", param)
	}
	return id, nil
}

func (h *Handler) goalID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parseID(r, "goalID")
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "invalid goal id", map[string]string{"goal_id": "invalid"})
		return 0, false
	}
	return id, true
}
