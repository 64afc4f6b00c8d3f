package api_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/philipcowcer-eng/LoadBalance/api"
	"github.com/philipcowcer-eng/LoadBalance/internal/audit"
	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
)

func TestLoggingMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("ok"))
	})

	handler := api.LoggingMiddleware(next)
	req := httptest.NewRequest(http.MethodGet, "/log", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)
	res := w.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusTeapot {
		t.Fatalf("expected status 418, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if string(b) != "ok" {
		t.Fatalf("unexpected body: %q", string(b))
	}
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := api.CORSMiddleware([]string{"http://localhost:5173"})(next)

	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{name: "allowed", origin: "http://localhost:5173", want: "http://localhost:5173"},
		{name: "other", origin: "http://evil.example", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/cors", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Fatalf("expected allow-origin %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	handler := api.RecoveryMiddleware(next)
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", w.Code)
	}
}

func TestClientIPMiddleware(t *testing.T) {
	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, _ := audit.ActorFromContext(r.Context())
		got = a.IP
	})

	tests := []struct {
		name       string
		trustProxy bool
		forwarded  string
		want       string
	}{
		{name: "RemoteAddr", want: "10.1.2.3"},
		{name: "ForwardedIgnoredByDefault", forwarded: "203.0.113.9, 10.0.0.1", want: "10.1.2.3"},
		{name: "ForwardedFromTrustedProxy", trustProxy: true, forwarded: "203.0.113.9, 10.0.0.1", want: "203.0.113.9"},
		{name: "TrustedProxyWithoutHeader", trustProxy: true, want: "10.1.2.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "10.1.2.3:5555"
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			api.ClientIPMiddleware(tt.trustProxy)(next).ServeHTTP(httptest.NewRecorder(), req)
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestJWTAuthMiddlewareWithSecret(t *testing.T) {
	var actor audit.Actor
	var authenticated bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, authenticated = audit.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := api.ClientIPMiddleware(false)(api.JWTAuthMiddlewareWithSecret(testSecret)(next))

	valid := signToken(t, "u-1", "alice", models.UserAdmin, time.Now().Add(time.Hour))
	expired := signToken(t, "u-1", "alice", models.UserAdmin, time.Now().Add(-time.Hour))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantAuth   bool
	}{
		{name: "Anonymous", header: "", wantStatus: http.StatusOK},
		{name: "BadScheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "Garbage", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "Expired", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized},
		{name: "Valid", header: "Bearer " + valid, wantStatus: http.StatusOK, wantAuth: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor, authenticated = audit.Actor{}, false
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.RemoteAddr = "192.0.2.7:1234"
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if authenticated != tt.wantAuth {
				t.Fatalf("expected authenticated=%v", tt.wantAuth)
			}
			if tt.wantAuth {
				if actor.UserID != "u-1" || actor.Username != "alice" || actor.Role != models.UserAdmin {
					t.Fatalf("unexpected actor %+v", actor)
				}
				if actor.IP != "192.0.2.7" {
					t.Fatalf("client ip lost: %+v", actor)
				}
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := api.JWTAuthMiddlewareWithSecret(testSecret)(
		api.RequireRole(models.UserAdmin, models.UserResourceManager)(ok))

	exp := time.Now().Add(time.Hour)
	tests := []struct {
		name       string
		role       models.UserRole
		wantStatus int
	}{
		{name: "Anonymous", wantStatus: http.StatusUnauthorized},
		{name: "Engineer", role: models.UserEngineer, wantStatus: http.StatusForbidden},
		{name: "ResourceManager", role: models.UserResourceManager, wantStatus: http.StatusOK},
		{name: "Admin", role: models.UserAdmin, wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.role != "" {
				req.Header.Set("Authorization", "Bearer "+signToken(t, "u-"+string(tt.role), "x", tt.role, exp))
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	r := mux.NewRouter()
	r.Use(api.RateLimitMiddleware(2))
	r.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
}
