package handlers

import (
	"net/http"

	"namegame/internal/security"
)

// Server bundles the handlers behind one mux
type Server struct {
	Middleware  *Middleware
	Auth        *AuthHandler
	Directory   *DirectoryHandler
	Game        *GameHandler
	Startup     *StartupStatus
	RateLimiter *security.RateLimiter
	StaticPath  string
}

// Routes builds the application's handler
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	m := s.Middleware

	// Static files
	if s.StaticPath != "" {
		static := http.FileServer(http.Dir(s.StaticPath))
		mux.Handle("GET /static/", http.StripPrefix("/static/", static))
		mux.Handle("GET /{$}", static)
	}

	mux.HandleFunc("GET /healthz", s.Startup.Healthz)

	// Auth
	limited := func(h http.HandlerFunc) http.Handler {
		if s.RateLimiter == nil {
			return h
		}
		return RateLimit(s.RateLimiter, h)
	}
	mux.Handle("GET /auth/login", limited(s.Auth.Login))
	mux.Handle("GET /auth/callback", limited(s.Auth.OAuthCallback))
	mux.HandleFunc("POST /auth/logout", m.OptionalSession(s.Auth.Logout))
	mux.HandleFunc("GET /api/me", m.RequireSession(s.Auth.Me))

	// Directory proxy
	mux.HandleFunc("GET /api/directory", m.RequireSession(s.Directory.GetDirectory))

	// Game
	mux.HandleFunc("GET /api/challenge", m.RequireSession(s.Game.GetChallenge))
	mux.Handle("POST /api/choice", limited(m.RequireSession(m.RequireCSRF(s.Game.PostChoice))))
	mux.HandleFunc("GET /api/stats", m.RequireSession(s.Game.GetStats))
	mux.HandleFunc("GET /api/ws", m.RequireSession(s.Game.ServeWS))

	return Logging(mux)
}
