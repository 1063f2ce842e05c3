package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
	"github.com/AdamBeresnev/koe-contest/internal/logging"
	users "github.com/AdamBeresnev/koe-contest/internal/user"
)

// Problem is the JSON error document returned by every endpoint.
type Problem struct {
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
}

type classification struct {
	status int
	title  string
	detail string
}

func classify(err error) classification {
	switch {
	case errors.Is(err, contest.ErrNotFound):
		return classification{http.StatusNotFound, "Resource not found", "the requested resource does not exist"}
	case errors.Is(err, contest.ErrInvalidArgument):
		return classification{http.StatusBadRequest, "Validation failed", "one or more fields are invalid"}
	case errors.Is(err, contest.ErrPayloadTooLarge):
		return classification{http.StatusRequestEntityTooLarge, "Payload too large", "the uploaded file exceeds the size limit"}
	case errors.Is(err, contest.ErrUnauthenticated):
		return classification{http.StatusUnauthorized, "Unauthorized", "invalid credentials"}
	case errors.Is(err, contest.ErrForbidden):
		return classification{http.StatusForbidden, "Forbidden", "insufficient role for this operation"}
	case errors.Is(err, contest.ErrConflict):
		return classification{http.StatusConflict, "Conflict", "the request conflicts with existing data"}
	case errors.Is(err, contest.ErrStoreUnavailable):
		return classification{http.StatusServiceUnavailable, "Service unavailable", "the data store is unavailable"}
	default:
		return classification{http.StatusInternalServerError, "Internal server error", "an unexpected error occurred"}
	}
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	return classify(err).status
}

// Error writes the problem document for err. Administrators also get the underlying error text.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	c := classify(err)
	logError(r.Context(), c.status, err)

	problem := Problem{Title: c.title, Status: c.status, Detail: c.detail}
	var validationErr *contest.ValidationError
	if errors.As(err, &validationErr) {
		problem.Errors = validationErr.Fields
	}
	if u, ok := users.FromContext(r.Context()); ok && u.Role == users.RoleAdmin {
		problem.Detail = err.Error()
	}
	WriteProblem(w, problem)
}

func InternalServerError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logging.FromContextOr(r.Context(), zap.L()).Error(msg, zap.Error(err))
	WriteProblem(w, Problem{Title: "Internal server error", Status: http.StatusInternalServerError, Detail: "an unexpected error occurred"})
}

func NotFound(w http.ResponseWriter, r *http.Request, msg string) {
	logging.FromContextOr(r.Context(), zap.L()).Info("not found", zap.String("message", msg))
	WriteProblem(w, Problem{Title: "Resource not found", Status: http.StatusNotFound, Detail: msg})
}

func logError(ctx context.Context, status int, err error) {
	logger := logging.FromContextOr(ctx, zap.L())
	fields := []zap.Field{zap.Int("status", status), zap.Error(err)}
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", fields...)
	case status == http.StatusNotFound:
		logger.Info("resource not found", fields...)
	default:
		logger.Warn("request rejected", fields...)
	}
}

// WriteProblem encodes p as application/problem+json with p.Status.
func WriteProblem(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}
