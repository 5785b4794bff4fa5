package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"eventify/internal/logger"
	"eventify/internal/utils"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports whether the store answers within two seconds.
func Health(store Pinger, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			log.Error("HEALTH", fmt.Sprintf("Store ping failed: %v", err))
			utils.WriteJSON(w, http.StatusServiceUnavailable, utils.ErrorResponse("Store unavailable", "unavailable"))
			return
		}
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ok", nil))
	}
}
