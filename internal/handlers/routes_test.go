package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"namegame/internal/models"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	static := t.TempDir()
	if err := os.WriteFile(filepath.Join(static, "index.html"), []byte("<h1>Name Game</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := newTestMiddleware(t)
	startup := NewStartupStatus(StepReady)
	startup.MarkReady()
	srv := &Server{
		Middleware: m,
		Auth:       NewAuthHandler(&fakeLogin{}, m, nil, ""),
		Directory: NewDirectoryHandler(&fakeRosterCache{
			people: []models.Person{{ID: "1", Name: "Ada", ImagePath: "/1.jpg"}},
			ttl:    time.Minute,
		}),
		Game:       NewGameHandler(&fakeGame{}, m),
		Startup:    startup,
		StaticPath: static,
	}
	return srv.Routes()
}

func TestRoutes(t *testing.T) {
	handler := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		path       string
		session    bool
		wantStatus int
		wantBody   string
	}{
		{name: "index", method: http.MethodGet, path: "/", wantStatus: http.StatusOK, wantBody: "Name Game"},
		{name: "healthz", method: http.MethodGet, path: "/healthz", wantStatus: http.StatusOK},
		{name: "directory without session", method: http.MethodGet, path: "/api/directory", wantStatus: http.StatusUnauthorized},
		{name: "directory", method: http.MethodGet, path: "/api/directory", session: true, wantStatus: http.StatusOK, wantBody: `"image_path":"/1.jpg"`},
		{name: "challenge", method: http.MethodGet, path: "/api/challenge", session: true, wantStatus: http.StatusOK, wantBody: "csrf_token"},
		{name: "choice without csrf", method: http.MethodPost, path: "/api/choice", session: true, wantStatus: http.StatusForbidden},
		{name: "stats", method: http.MethodGet, path: "/api/stats", session: true, wantStatus: http.StatusOK},
		{name: "guest login", method: http.MethodGet, path: "/auth/login", wantStatus: http.StatusSeeOther},
		{name: "unknown", method: http.MethodGet, path: "/nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{"option_id":"1"}`))
			if tt.session {
				req = withSessionCookie(req)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want it to contain %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}
