package handlers

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"go.uber.org/zap"

	"evolve/backend/services/api-gateway/internal/clients"
)

// StationsHandlers proxies stations-service endpoints.
type StationsHandlers struct {
	client *clients.StationsClient
	feed   http.Handler
	logger *zap.Logger
}

// NewStationsHandlers returns handler. stationsURL is also the websocket upstream of the live feed.
func NewStationsHandlers(client *clients.StationsClient, stationsURL string, logger *zap.Logger) (*StationsHandlers, error) {
	feed, err := newFeedProxy(stationsURL, logger)
	if err != nil {
		return nil, err
	}
	return &StationsHandlers{client: client, feed: feed, logger: logger}, nil
}

// Search handles GET /api/stations.
func (h *StationsHandlers) Search(w http.ResponseWriter, r *http.Request) {
	status, body, err := h.client.Search(r.Context(), r.URL.RawQuery, callerOf(r))
	if err != nil {
		h.logger.Error("stations proxy failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "stations service unavailable")
		return
	}
	writeRaw(w, status, body)
}

// StatusHistory handles GET /api/stations/status/history.
func (h *StationsHandlers) StatusHistory(w http.ResponseWriter, r *http.Request) {
	status, body, err := h.client.StatusHistory(r.Context(), r.URL.RawQuery, callerOf(r))
	if err != nil {
		h.logger.Error("status history proxy failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "stations service unavailable")
		return
	}
	writeRaw(w, status, body)
}

// SubmitStatus handles POST /api/stations/status.
func (h *StationsHandlers) SubmitStatus(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	status, respBody, err := h.client.SubmitStatus(r.Context(), body, callerOf(r))
	if err != nil {
		h.logger.Error("status proxy failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "stations service unavailable")
		return
	}
	writeRaw(w, status, respBody)
}

// StatusFeed handles GET /api/stations/status/ws by tunnelling the websocket upgrade.
func (h *StationsHandlers) StatusFeed(w http.ResponseWriter, r *http.Request) {
	h.feed.ServeHTTP(w, r)
}

func newFeedProxy(stationsURL string, logger *zap.Logger) (http.Handler, error) {
	target, err := url.Parse(stationsURL)
	if err != nil {
		return nil, fmt.Errorf("parse stations url: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("stations url %q must be absolute", stationsURL)
	}
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.URL.Path = target.JoinPath("/stations/status/ws").Path
			pr.Out.URL.RawPath = ""
			pr.Out.URL.RawQuery = ""
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("status feed proxy failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, "stations service unavailable")
		},
	}, nil
}
