package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/georgemunganga/needsport-pos/internal/platform/apperror"
)

type contextKey struct{}

// Middleware rejects requests without a valid bearer token and stores the
// operator id on the request context.
func Middleware(svc Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				deny(w, apperror.Unauthorized("missing bearer token"))
				return
			}
			id, err := svc.ParseToken(strings.TrimSpace(token))
			if err != nil {
				deny(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithOperator(r.Context(), id)))
		})
	}
}

// WithOperator returns a copy of ctx carrying the operator id.
func WithOperator(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// OperatorID returns the operator id placed on ctx by Middleware.
func OperatorID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(contextKey{}).(uuid.UUID)
	return id, ok
}

func deny(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="needsport-pos"`)
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": apperror.PublicMessage(err)})
}
