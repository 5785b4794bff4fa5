package auth

import (
	"context"
	"fmt"
	"net/http"

	"eventify/internal/logger"
	"eventify/internal/utils"
)

type contextKey string

const identityKey contextKey = "identity"

// Middleware gates a route behind a verified bearer token and attaches the
// caller's Identity to the request context. revoked may be nil.
func Middleware(verifier Verifier, revoked RevocationList, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				log.LogSecurity("AUTH_REJECTED", fmt.Sprintf("%s %s: %v", r.Method, r.URL.Path, err))
				utils.WriteError(w, http.StatusUnauthorized, "Authentication required", "unauthenticated")
				return
			}

			id, err := verifier.Verify(r.Context(), rawToken)
			if err != nil {
				log.LogSecurity("AUTH_REJECTED", fmt.Sprintf("%s %s: %v", r.Method, r.URL.Path, err))
				utils.WriteError(w, http.StatusUnauthorized, "Invalid or expired token", "unauthenticated")
				return
			}

			if revoked != nil {
				isRevoked, err := revoked.IsRevoked(r.Context(), rawToken)
				if err != nil {
					log.Error("AUTH", fmt.Sprintf("Revocation lookup failed: %v", err))
					utils.WriteError(w, http.StatusInternalServerError, "Internal server error", "internal")
					return
				}
				if isRevoked {
					log.LogSecurity("AUTH_REJECTED", fmt.Sprintf("revoked token used by %s", id.Subject))
					utils.WriteError(w, http.StatusUnauthorized, "Token has been revoked", "unauthenticated")
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.Subject != ""
}

// Helper to extract user ID in handlers
func UserID(ctx context.Context) string {
	id, _ := IdentityFrom(ctx)
	return id.Subject
}
