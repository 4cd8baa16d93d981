package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"evolve/backend/services/api-gateway/internal/clients"
)

// CalculatorHandlers proxies the vehicle catalogue and the cost calculators.
type CalculatorHandlers struct {
	client *clients.StationsClient
	logger *zap.Logger
}

// NewCalculatorHandlers returns handler.
func NewCalculatorHandlers(client *clients.StationsClient, logger *zap.Logger) *CalculatorHandlers {
	return &CalculatorHandlers{client: client, logger: logger}
}

// Get returns a handler relaying GET requests to upstreamPath with the inbound query.
func (h *CalculatorHandlers) Get(upstreamPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, body, err := h.client.Get(r.Context(), upstreamPath, r.URL.RawQuery, callerOf(r))
		if err != nil {
			h.logger.Error("catalogue proxy failed", zap.String("path", upstreamPath), zap.Error(err))
			writeError(w, http.StatusBadGateway, "stations service unavailable")
			return
		}
		writeRaw(w, status, body)
	}
}

// Post returns a handler relaying POST bodies to upstreamPath.
func (h *CalculatorHandlers) Post(upstreamPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(w, r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
		status, respBody, err := h.client.Post(r.Context(), upstreamPath, body, callerOf(r))
		if err != nil {
			h.logger.Error("calculator proxy failed", zap.String("path", upstreamPath), zap.Error(err))
			writeError(w, http.StatusBadGateway, "stations service unavailable")
			return
		}
		writeRaw(w, status, respBody)
	}
}
