package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"evolve/backend/services/stations-service/internal/models"
	"evolve/backend/services/stations-service/internal/service"
)

// StationsHandlers serves station search and status reporting.
type StationsHandlers struct {
	svc    *service.StationsService
	logger *zap.Logger
}

// NewStationsHandlers builds handler set.
func NewStationsHandlers(svc *service.StationsService, logger *zap.Logger) *StationsHandlers {
	return &StationsHandlers{svc: svc, logger: logger}
}

// Search handles GET /stations.
func (h *StationsHandlers) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := service.SearchInput{
		SearchType:    q.Get("search_type"),
		ZipCode:       q.Get("zip_code"),
		CityState:     q.Get("city_state"),
		ConnectorType: q.Get("connector_type"),
		Network:       q.Get("network"),
		Page:          q.Get("page"),
	}
	if userID := currentUserID(r); userID != nil {
		in.Session = strconv.FormatInt(*userID, 10)
	}

	out, err := h.svc.Search(r.Context(), in)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			writeValidation(w, "invalid search", verr.Fields)
			return
		}
		if errors.Is(err, context.Canceled) {
			h.logger.Debug("station search abandoned by client")
			return
		}
		h.logger.Error("station search failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to search stations")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// SubmitStatus handles POST /stations/status.
func (h *StationsHandlers) SubmitStatus(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	if userID == nil {
		writeJSON(w, http.StatusForbidden, map[string]interface{}{"success": false, "error": "Login required"})
		return
	}

	fields, err := readFields(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "invalid request body"})
		return
	}

	created, err := h.svc.SubmitStatus(r.Context(), service.SubmitStatusInput{
		StationID: fields["station_id"],
		Status:    fields["status"],
		UserID:    userID,
	})
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			writeJSON(w, http.StatusForbidden, map[string]interface{}{"success": false, "error": "Login required"})
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "errors": verr.Fields})
		default:
			h.logger.Error("status submission failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "error": "failed to save status"})
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "status": created.Status})
}

// StatusHistory handles GET /stations/status/history.
func (h *StationsHandlers) StatusHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	history, err := h.svc.StatusHistory(r.Context(), q.Get("station_id"), q.Get("limit"))
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			writeValidation(w, "invalid history request", verr.Fields)
			return
		}
		h.logger.Error("status history failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load status history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"station_id": strings.TrimSpace(q.Get("station_id")),
		"choices":    models.Statuses,
		"history":    history,
	})
}
