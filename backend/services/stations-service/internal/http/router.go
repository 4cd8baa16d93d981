package httpserver

import (
	"net/http"

	"evolve/backend/services/stations-service/internal/http/handlers"
	"evolve/backend/services/stations-service/internal/http/middleware"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	StationsHandlers   *handlers.StationsHandlers
	CalculatorHandlers *handlers.CalculatorHandlers
	StatusFeed         http.HandlerFunc
	Metrics            http.Handler
	HealthHandler      http.HandlerFunc
}

// NewRouter wires HTTP routes. authMiddleware resolves the optional bearer token.
func NewRouter(deps RouterDeps, authMiddleware func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()
	if authMiddleware == nil {
		authMiddleware = func(next http.Handler) http.Handler { return next }
	}

	route := func(path, expected string, handler http.HandlerFunc) {
		mux.Handle(path, middleware.Chain(method(expected, handler), middleware.Instrument(path), authMiddleware))
	}

	mux.Handle("/health", method(http.MethodGet, deps.HealthHandler))
	if deps.Metrics != nil {
		mux.Handle("/metrics", deps.Metrics)
	}

	route("/stations", http.MethodGet, deps.StationsHandlers.Search)
	route("/stations/status", http.MethodPost, deps.StationsHandlers.SubmitStatus)
	route("/stations/status/history", http.MethodGet, deps.StationsHandlers.StatusHistory)
	if deps.StatusFeed != nil {
		mux.Handle("/stations/status/ws", method(http.MethodGet, deps.StatusFeed))
	}

	route("/api/years", http.MethodGet, deps.CalculatorHandlers.Years)
	route("/api/manufacturers", http.MethodGet, deps.CalculatorHandlers.Manufacturers)
	route("/api/models", http.MethodGet, deps.CalculatorHandlers.Models)
	route("/calculator/fuel-savings", http.MethodPost, deps.CalculatorHandlers.FuelSavings)
	route("/calculator/level2", http.MethodPost, deps.CalculatorHandlers.Level2)

	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
