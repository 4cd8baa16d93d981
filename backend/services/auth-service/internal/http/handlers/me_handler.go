package handlers

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"evolve/backend/services/auth-service/internal/service"
)

// NewMeHandler handles GET /auth/me: it validates the bearer token and echoes its identity.
func NewMeHandler(tokens *service.TokenService, logger *zap.Logger) http.HandlerFunc {
	type response struct {
		UserID    int64     `json:"user_id"`
		Username  string    `json:"username"`
		ExpiresAt time.Time `json:"expires_at"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimSpace(raw))
		if err != nil {
			logger.Debug("rejected bearer token", zap.Error(err))
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		resp := response{UserID: claims.UserID, Username: claims.Username}
		if claims.ExpiresAt != nil {
			resp.ExpiresAt = claims.ExpiresAt.Time
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
