package middleware

import (
	"context"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/AdamBeresnev/koe-contest/internal/auth"
	"github.com/AdamBeresnev/koe-contest/internal/httputil"
	"github.com/AdamBeresnev/koe-contest/internal/logging"
	"github.com/AdamBeresnev/koe-contest/internal/requesttrace"
	users "github.com/AdamBeresnev/koe-contest/internal/user"
)

// TokenValidator resolves a bearer token to an active user.
type TokenValidator interface {
	ValidateCredential(ctx context.Context, token string) (*users.User, error)
}

// Authenticate loads the principal when a bearer token is present and records the request actor
// for auditing. Requests without a token continue anonymously; an invalid token is rejected.
func Authenticate(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := middleware.GetReqID(ctx)

			trace := requesttrace.Anonymous(requestID)
			if token, ok := auth.ExtractBearerToken(r); ok {
				user, err := validator.ValidateCredential(ctx, token)
				if err != nil {
					httputil.Error(w, r, err)
					return
				}
				ctx = users.WithUser(ctx, user)
				trace = requesttrace.ForUser(user.ID, requestID)

				if logger, ok := logging.FromContext(ctx); ok {
					ctx = logging.WithLogger(ctx, logger.With(
						zap.String("user_id", user.ID.String()),
						zap.String("role", string(user.Role)),
					))
				}
			}
			trace.IPAddress = clientIP(r)
			trace.UserAgent = r.UserAgent()

			next.ServeHTTP(w, r.WithContext(requesttrace.IntoContext(ctx, trace)))
		})
	}
}

// RequireRoles rejects requests whose principal holds none of roles.
func RequireRoles(roles ...users.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := auth.Authorize(GetAuthenticatedUser(r.Context()), roles...); err != nil {
				httputil.Error(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func GetAuthenticatedUser(ctx context.Context) *users.User {
	user, ok := users.FromContext(ctx)
	if !ok {
		return nil
	}
	return user
}

// clientIP strips the port chi's RealIP middleware leaves on RemoteAddr when no proxy header is set.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
