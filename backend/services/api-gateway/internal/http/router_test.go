package httpserver

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"evolve/backend/services/api-gateway/internal/clients"
	"evolve/backend/services/api-gateway/internal/http/handlers"
)

type seenRequest struct {
	method string
	path   string
	query  string
	auth   string
	body   string
}

type upstream struct {
	mu   sync.Mutex
	seen []seenRequest
}

func (u *upstream) handler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)
		u.mu.Lock()
		u.seen = append(u.seen, seenRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			auth:   r.Header.Get("Authorization"),
			body:   string(payload),
		})
		u.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func (u *upstream) last(t *testing.T) seenRequest {
	t.Helper()
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.seen) == 0 {
		t.Fatalf("upstream received no request")
	}
	return u.seen[len(u.seen)-1]
}

func newGateway(t *testing.T, authURL, stationsURL string) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	httpClient := clients.NewDefaultHTTPClient(2 * time.Second)
	stationsClient := clients.NewStationsClient(stationsURL, httpClient)
	stationsHandlers, err := handlers.NewStationsHandlers(stationsClient, stationsURL, logger)
	if err != nil {
		t.Fatalf("stations handlers: %v", err)
	}
	return NewRouter(RouterDeps{
		AuthHandlers:       handlers.NewAuthHandlers(clients.NewAuthClient(authURL, httpClient), logger),
		StationsHandlers:   stationsHandlers,
		CalculatorHandlers: handlers.NewCalculatorHandlers(stationsClient, logger),
		HealthHandler:      handlers.NewHealthHandler(),
	})
}

func TestGatewayForwardsStationSearch(t *testing.T) {
	up := &upstream{}
	stations := httptest.NewServer(up.handler(http.StatusOK, `{"page":{"items":[]}}`))
	defer stations.Close()

	gw := newGateway(t, "http://127.0.0.1:1", stations.URL)
	req := httptest.NewRequest(http.MethodGet, "/api/stations?search_type=zip&zip_code=79101&page=2", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec := httptest.NewRecorder()
	gw.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != `{"page":{"items":[]}}` {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
	got := up.last(t)
	if got.method != http.MethodGet || got.path != "/stations" {
		t.Fatalf("unexpected upstream call %+v", got)
	}
	if got.query != "search_type=zip&zip_code=79101&page=2" || got.auth != "Bearer abc" {
		t.Fatalf("query or auth not forwarded: %+v", got)
	}
}

func TestGatewayRelaysUpstreamStatus(t *testing.T) {
	up := &upstream{}
	stations := httptest.NewServer(up.handler(http.StatusForbidden, `{"success":false,"error":"Login required"}`))
	defer stations.Close()

	gw := newGateway(t, "http://127.0.0.1:1", stations.URL)
	req := httptest.NewRequest(http.MethodPost, "/api/stations/status", strings.NewReader(`{"station_id":"1","status":"working"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	gw.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected upstream 403 relayed, got %d", rec.Code)
	}
	got := up.last(t)
	if got.path != "/stations/status" || got.body != `{"station_id":"1","status":"working"}` {
		t.Fatalf("unexpected upstream call %+v", got)
	}
}

func TestGatewayForwardsStatusHistory(t *testing.T) {
	up := &upstream{}
	stations := httptest.NewServer(up.handler(http.StatusOK, `{"history":[]}`))
	defer stations.Close()

	gw := newGateway(t, "http://127.0.0.1:1", stations.URL)
	rec := httptest.NewRecorder()
	gw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stations/status/history?station_id=12345&limit=5", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != `{"history":[]}` {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
	got := up.last(t)
	if got.method != http.MethodGet || got.path != "/stations/status/history" || got.query != "station_id=12345&limit=5" {
		t.Fatalf("unexpected upstream call %+v", got)
	}
}

func TestGatewayCalculatorRoutes(t *testing.T) {
	up := &upstream{}
	stations := httptest.NewServer(up.handler(http.StatusOK, `{}`))
	defer stations.Close()
	gw := newGateway(t, "http://127.0.0.1:1", stations.URL)

	tests := []struct {
		method string
		path   string
		body   string
		want   string
	}{
		{method: http.MethodGet, path: "/api/years", want: "/api/years"},
		{method: http.MethodGet, path: "/api/manufacturers?year=2023", want: "/api/manufacturers"},
		{method: http.MethodGet, path: "/api/models?year=2023&manufacturer=Tesla", want: "/api/models"},
		{method: http.MethodPost, path: "/api/calculator/fuel-savings", body: `{"mpg":"25"}`, want: "/calculator/fuel-savings"},
		{method: http.MethodPost, path: "/api/calculator/level2", body: `{"daily_miles":"40"}`, want: "/calculator/level2"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			gw.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("status %d", rec.Code)
			}
			got := up.last(t)
			if got.path != tt.want || got.body != tt.body {
				t.Fatalf("unexpected upstream call %+v", got)
			}
		})
	}
}

func TestGatewayAuthRoutes(t *testing.T) {
	up := &upstream{}
	auth := httptest.NewServer(up.handler(http.StatusCreated, `{"id":1}`))
	defer auth.Close()

	gw := newGateway(t, auth.URL, "http://127.0.0.1:1")
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"username":"driver"}`))
	rec := httptest.NewRecorder()
	gw.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got := up.last(t); got.path != "/auth/register" {
		t.Fatalf("unexpected upstream path %s", got.path)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec = httptest.NewRecorder()
	gw.ServeHTTP(rec, req)
	got := up.last(t)
	if got.method != http.MethodGet || got.path != "/auth/me" || got.auth != "Bearer abc" {
		t.Fatalf("me not forwarded with token: %+v", got)
	}
}

func TestGatewayUpstreamDown(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()

	gw := newGateway(t, downURL, downURL)
	for _, path := range []string{"/api/stations", "/api/years"} {
		rec := httptest.NewRecorder()
		gw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("%s: expected 502, got %d", path, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	gw.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`)))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("login: expected 502, got %d", rec.Code)
	}
}

func TestGatewayMethodNotAllowed(t *testing.T) {
	gw := newGateway(t, "http://127.0.0.1:1", "http://127.0.0.1:1")
	rec := httptest.NewRecorder()
	gw.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/stations", nil))
	if rec.Code != http.StatusMethodNotAllowed || rec.Header().Get("Allow") != http.MethodGet {
		t.Fatalf("expected 405 with Allow GET, got %d %q", rec.Code, rec.Header().Get("Allow"))
	}
}

func TestGatewayTunnelsStatusFeed(t *testing.T) {
	upgrader := websocket.Upgrader{}
	paths := make(chan string, 1)
	stations := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"station_status"}`))
	}))
	defer stations.Close()

	gw := httptest.NewServer(newGateway(t, "http://127.0.0.1:1", stations.URL))
	defer gw.Close()

	wsURL := "ws" + strings.TrimPrefix(gw.URL, "http") + "/api/stations/status/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial through gateway: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(msg) != `{"type":"station_status"}` {
		t.Fatalf("unexpected message %s", msg)
	}
	if got := <-paths; got != "/stations/status/ws" {
		t.Fatalf("unexpected upstream path %s", got)
	}
}
