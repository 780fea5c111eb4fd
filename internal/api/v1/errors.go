package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"ppr/internal/ppr"
	"ppr/internal/schema"
	"ppr/internal/service"
	"ppr/internal/store"

	"github.com/jackc/pgx/v5/pgconn"
)

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeQuotaExceeded = "QUOTA_EXCEEDED"
	CodeInternal      = "INTERNAL"
)

// pgForeignKeyViolation is raised when a goal references a missing user.
const pgForeignKeyViolation = "23503"

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, fields map[string]string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message, Fields: fields}})
}

// classify maps a service error to its HTTP status and envelope.
func classify(err error) (int, ErrorDetail) {
	var (
		schemaErr *schema.Error
		fieldErr  *ppr.ValidationError
		pgErr     *pgconn.PgError
	)
	switch {
	case errors.As(err, &schemaErr):
		return http.StatusBadRequest, ErrorDetail{Code: CodeValidation, Message: "invalid payload", Fields: schemaErr.Fields}
	case errors.As(err, &fieldErr):
		return http.StatusBadRequest, ErrorDetail{Code: CodeValidation, Message: fieldErr.Error(), Fields: map[string]string{fieldErr.Field: fieldErr.Reason}}
	case errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation:
		return http.StatusBadRequest, ErrorDetail{Code: CodeValidation, Message: "referenced record does not exist"}
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, ErrorDetail{Code: CodeForbidden, Message: err.Error()}
	case errors.Is(err, store.ErrNotFound), errors.Is(err, ppr.ErrGoalNotFound), errors.Is(err, ppr.ErrLaunchNotFound):
		return http.StatusNotFound, ErrorDetail{Code: CodeNotFound, Message: err.Error()}
	case errors.Is(err, ppr.ErrQuotaExceeded):
		return http.StatusConflict, ErrorDetail{Code: CodeQuotaExceeded, Message: err.Error()}
	case errors.Is(err, store.ErrVersionConflict),
		errors.Is(err, ppr.ErrLaunchLocked),
		errors.Is(err, ppr.ErrInvalidTransition),
		errors.Is(err, ppr.ErrGoalCanceled),
		errors.Is(err, ppr.ErrGoalNotEditable):
		return http.StatusConflict, ErrorDetail{Code: CodeConflict, Message: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorDetail{Code: CodeInternal, Message: "internal error"}
	}
}
