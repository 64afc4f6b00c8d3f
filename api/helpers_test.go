package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/philipcowcer-eng/LoadBalance/api"
	dbfs "github.com/philipcowcer-eng/LoadBalance/db"
	"github.com/philipcowcer-eng/LoadBalance/internal/config"
	"github.com/philipcowcer-eng/LoadBalance/internal/db"
	"github.com/philipcowcer-eng/LoadBalance/internal/repository/sqlite"
	"github.com/philipcowcer-eng/LoadBalance/internal/service"
	"github.com/philipcowcer-eng/LoadBalance/internal/snapshot"
	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
)

const testSecret = "testsecret"

type testServer struct {
	handler http.Handler
	svc     *service.Service
	cfg     *config.Config
	admin   string
}

func newTestServer(t *testing.T, tweak ...func(*config.Config)) *testServer {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	conn, err := db.New(ctx, filepath.Join(dir, "staffing.db"), nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.Migrate(ctx, conn, dbfs.Migrations); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		Env:            "development",
		JWTSecret:      testSecret,
		TokenDuration:  time.Hour,
		AllowedOrigins: []string{"http://localhost:5173"},
		Metrics:        config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	for _, fn := range tweak {
		fn(cfg)
	}

	svc := service.New(sqlite.New(conn, nil), nil, nil)
	h := api.SetupRoutes(api.Deps{
		Config:    cfg,
		Service:   svc,
		Snapshots: snapshot.NewManager(conn, filepath.Join(dir, "snapshots"), nil, nil),
		Version:   "test",
		BuildTime: "now",
	})
	return &testServer{handler: h, svc: svc, cfg: cfg}
}

// do sends body (marshalled unless it is a string) and returns the recorded
// response.
func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		js, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(js)
	}
	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

// signToken mints a token the way the login endpoint does.
func signToken(t *testing.T, sub, username string, role models.UserRole, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      sub,
		"username": username,
		"role":     string(role),
		"exp":      exp.Unix(),
	})
	s, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// register creates an account through the API and returns its token. The
// first admin registered this way signs every later registration, so the
// requested role is granted.
func (s *testServer) register(t *testing.T, username string, role models.UserRole) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/register", s.admin, map[string]string{
		"username": username,
		"password": "s3cret-pass",
		"role":     string(role),
	})
	expectStatus(t, w, http.StatusCreated)
	body := decode[struct {
		AccessToken string      `json:"access_token"`
		User        models.User `json:"user"`
	}](t, w)
	if body.User.Role != role {
		t.Fatalf("registered %q as %q, want %q", username, body.User.Role, role)
	}
	if role == models.UserAdmin && s.admin == "" {
		s.admin = body.AccessToken
	}
	return body.AccessToken
}
