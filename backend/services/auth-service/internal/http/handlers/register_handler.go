package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"evolve/backend/services/auth-service/internal/service"
)

// NewRegisterHandler returns HTTP handler for POST /auth/register.
func NewRegisterHandler(authService *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	type request struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password1 string `json:"password1"`
		Password2 string `json:"password2"`
	}
	type response struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		user, err := authService.Register(r.Context(), service.RegisterInput{
			Username:  req.Username,
			Email:     req.Email,
			Password1: req.Password1,
			Password2: req.Password2,
		})
		if err != nil {
			var verr *service.ValidationError
			switch {
			case errors.As(err, &verr):
				writeJSON(w, http.StatusBadRequest, map[string]interface{}{
					"error":  "invalid registration",
					"errors": verr.Fields,
				})
			case errors.Is(err, service.ErrUsernameTaken):
				writeError(w, http.StatusConflict, "A user with that username already exists.")
			default:
				logger.Error("registration failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "failed to create user")
			}
			return
		}

		writeJSON(w, http.StatusCreated, response{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		})
	}
}
