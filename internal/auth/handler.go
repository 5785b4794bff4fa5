package auth

import (
	"fmt"
	"net/http"

	"eventify/internal/logger"
	"eventify/internal/utils"
)

// Handler serves the session endpoints that belong to the guard itself.
// Issuing credentials stays outside this service.
type Handler struct {
	Revocations RevocationList
	Logger      *logger.Logger
}

// Me echoes the verified identity of the caller.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Authentication required", "unauthenticated")
		return
	}
	utils.WriteJSON(w, http.StatusOK, id)
}

// Logout revokes the presented token. Must be mounted behind Middleware.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Authentication required", "unauthenticated")
		return
	}

	if h.Revocations == nil {
		// Without a revocation store the client just drops its token.
		utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
		return
	}

	rawToken, err := ExtractTokenFromRequest(r)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Authentication required", "unauthenticated")
		return
	}

	if err := h.Revocations.Revoke(r.Context(), rawToken, id.ExpiresAt); err != nil {
		h.Logger.Error("AUTH", fmt.Sprintf("Logout: failed to revoke token for %s: %v", id.Subject, err))
		utils.WriteError(w, http.StatusInternalServerError, "Internal server error", "internal")
		return
	}

	h.Logger.Info("AUTH", fmt.Sprintf("Logout: token revoked for %s", id.Subject))
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
