package httpx

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"campus-crave/internal/common/logger"
	"campus-crave/internal/domain"
)

type ctxKey int

const (
	userKey ctxKey = iota
	requestIDKey
)

const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Logging stamps each request with an id and logs it once it completes.
func Logging(lg *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))

		fields := map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if rec.status >= http.StatusInternalServerError {
			lg.WithRequestID(id).Warn("request_failed", fields)
			return
		}
		lg.WithRequestID(id).Info("request_completed", fields)
	})
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// TokenParser turns a bearer token back into the signed-in user.
type TokenParser interface {
	ParseToken(token string) (domain.User, error)
}

// Authenticate requires a valid bearer token and, when roles are given,
// one of those roles.
func Authenticate(p TokenParser, roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				WriteProblem(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}
			u, err := p.ParseToken(strings.TrimSpace(raw))
			if err != nil {
				WriteProblem(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}
			if len(roles) > 0 && !hasRole(u.Role, roles) {
				WriteProblem(w, http.StatusForbidden, "forbidden", "this portal is for "+roles[0].Label()+" accounts")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

func hasRole(r domain.Role, roles []domain.Role) bool {
	for _, want := range roles {
		if r == want {
			return true
		}
	}
	return false
}

func WithUser(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func UserFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(userKey).(domain.User)
	return u, ok
}

// PathID reads a path wildcard; empty values are invalid input.
func PathID(r *http.Request, key string) (string, error) {
	v := strings.TrimSpace(r.PathValue(key))
	if v == "" {
		return "", domain.ErrInvalid
	}
	return v, nil
}
