package httpserver

import (
	"net/http"

	"evolve/backend/services/api-gateway/internal/http/handlers"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	AuthHandlers       *handlers.AuthHandlers
	StationsHandlers   *handlers.StationsHandlers
	CalculatorHandlers *handlers.CalculatorHandlers
	HealthHandler      http.HandlerFunc
}

// NewRouter maps public /api routes onto the internal services.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/health", method(http.MethodGet, deps.HealthHandler))

	mux.Handle("/api/auth/register", method(http.MethodPost, http.HandlerFunc(deps.AuthHandlers.Register)))
	mux.Handle("/api/auth/login", method(http.MethodPost, http.HandlerFunc(deps.AuthHandlers.Login)))
	mux.Handle("/api/auth/me", method(http.MethodGet, http.HandlerFunc(deps.AuthHandlers.Me)))

	mux.Handle("/api/stations", method(http.MethodGet, http.HandlerFunc(deps.StationsHandlers.Search)))
	mux.Handle("/api/stations/status", method(http.MethodPost, http.HandlerFunc(deps.StationsHandlers.SubmitStatus)))
	mux.Handle("/api/stations/status/history", method(http.MethodGet, http.HandlerFunc(deps.StationsHandlers.StatusHistory)))
	mux.Handle("/api/stations/status/ws", method(http.MethodGet, http.HandlerFunc(deps.StationsHandlers.StatusFeed)))

	calc := deps.CalculatorHandlers
	mux.Handle("/api/years", method(http.MethodGet, calc.Get("/api/years")))
	mux.Handle("/api/manufacturers", method(http.MethodGet, calc.Get("/api/manufacturers")))
	mux.Handle("/api/models", method(http.MethodGet, calc.Get("/api/models")))
	mux.Handle("/api/calculator/fuel-savings", method(http.MethodPost, calc.Post("/calculator/fuel-savings")))
	mux.Handle("/api/calculator/level2", method(http.MethodPost, calc.Post("/calculator/level2")))

	return mux
}

func method(expected string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
