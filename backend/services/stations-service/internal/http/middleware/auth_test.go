package middleware

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestAuthenticate(t *testing.T) {
	valid := signToken(t, testSecret, jwt.MapClaims{"user_id": 42, "exp": time.Now().Add(time.Hour).Unix()})
	expired := signToken(t, testSecret, jwt.MapClaims{"user_id": 42, "exp": time.Now().Add(-time.Hour).Unix()})
	foreign := signToken(t, "other-secret", jwt.MapClaims{"user_id": 42})
	stringID := signToken(t, testSecret, jwt.MapClaims{"user_id": "17"})
	noUser := signToken(t, testSecret, jwt.MapClaims{"username": "driver"})

	tests := []struct {
		name   string
		header string
		wantID int64
		wantOK bool
	}{
		{name: "no header", header: "", wantOK: false},
		{name: "valid token", header: "Bearer " + valid, wantID: 42, wantOK: true},
		{name: "lowercase scheme", header: "bearer " + valid, wantID: 42, wantOK: true},
		{name: "string user id", header: "Bearer " + stringID, wantID: 17, wantOK: true},
		{name: "expired token", header: "Bearer " + expired, wantOK: false},
		{name: "wrong secret", header: "Bearer " + foreign, wantOK: false},
		{name: "missing claim", header: "Bearer " + noUser, wantOK: false},
		{name: "wrong scheme", header: "Basic abc", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID int64
			var gotOK bool
			handler := Authenticate(testSecret, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotID, gotOK = UserIDFromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			}))

			req := httptest.NewRequest(http.MethodGet, "/stations", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusNoContent {
				t.Fatalf("request should always reach the handler, got %d", rec.Code)
			}
			if gotOK != tt.wantOK || gotID != tt.wantID {
				t.Fatalf("user = (%d, %v), want (%d, %v)", gotID, gotOK, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestRecover(t *testing.T) {
	handler := Recover(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestRecoverRepanicsAbortHandler(t *testing.T) {
	handler := Recover(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	rec := httptest.NewRecorder()

	defer func() {
		if p := recover(); p != http.ErrAbortHandler {
			t.Fatalf("expected http.ErrAbortHandler to propagate, got %v", p)
		}
		if rec.Body.Len() != 0 {
			t.Fatalf("expected no response body, got %q", rec.Body.String())
		}
	}()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	t.Fatalf("expected panic to propagate")
}

type hijackRecorder struct {
	*httptest.ResponseRecorder
}

func (h hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	server, client := net.Pipe()
	client.Close()
	return server, bufio.NewReadWriter(bufio.NewReader(server), bufio.NewWriter(server)), nil
}

func TestRecoverAfterHijackWritesNothing(t *testing.T) {
	handler := Recover(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, _, err := w.(http.Hijacker).Hijack()
		if err != nil {
			t.Errorf("hijack: %v", err)
			return
		}
		conn.Close()
		panic("boom after hijack")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(hijackRecorder{rec}, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Body.Len() != 0 || rec.Code != http.StatusOK {
		t.Fatalf("expected untouched recorder, got %d %q", rec.Code, rec.Body.String())
	}
}
