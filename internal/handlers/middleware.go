package handlers

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"namegame/internal/models"
	"namegame/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	PlayerContextKey  ContextKey = "player"
	SessionContextKey ContextKey = "session"
)

// SessionValidator checks a session token and loads its player
type SessionValidator interface {
	ValidateSession(token string) (*models.Session, *models.Player, error)
}

// Middleware holds dependencies for middleware functions
type Middleware struct {
	sessions SessionValidator
	csrf     *security.CSRFGenerator
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(sessions SessionValidator, csrf *security.CSRFGenerator) *Middleware {
	return &Middleware{sessions: sessions, csrf: csrf}
}

// RequireSession is middleware that requires a valid session cookie. API
// callers get a JSON 401 instead of a redirect.
func (m *Middleware) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(security.SessionCookieName)
		if err != nil || cookie.Value == "" {
			respondWithJSONError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		session, player, err := m.sessions.ValidateSession(cookie.Value)
		if err != nil {
			// Clear invalid cookie
			http.SetCookie(w, security.CreateDeleteCookie(r, security.SessionCookieName))
			respondWithJSONError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), PlayerContextKey, player)
		ctx = context.WithValue(ctx, SessionContextKey, session)
		next(w, r.WithContext(ctx))
	}
}

// OptionalSession attaches the player and session when the cookie is valid
// and otherwise lets the request through untouched
func (m *Middleware) OptionalSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(security.SessionCookieName)
		if err != nil || cookie.Value == "" {
			next(w, r)
			return
		}
		session, player, err := m.sessions.ValidateSession(cookie.Value)
		if err != nil {
			next(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), PlayerContextKey, player)
		ctx = context.WithValue(ctx, SessionContextKey, session)
		next(w, r.WithContext(ctx))
	}
}

// RequireCSRF rejects state-changing requests without the session's CSRF
// token, read from the X-CSRF-Token header or the csrf_token form field.
// It must run inside RequireSession.
func (m *Middleware) RequireCSRF(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := GetSessionFromContext(r.Context())
		if session == nil {
			respondWithJSONError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		token := r.Header.Get(CSRFHeaderName)
		if token == "" {
			token = r.FormValue(CSRFFormField)
		}
		if !m.csrf.ValidateToken(session, token) {
			respondWithJSONError(w, http.StatusForbidden, ErrInvalidCSRF, "", nil)
			return
		}
		next(w, r)
	}
}

// CSRFToken returns the CSRF token of a session, or "" when it cannot be made
func (m *Middleware) CSRFToken(session *models.Session) string {
	if session == nil {
		return ""
	}
	token, err := m.csrf.GenerateToken(session)
	if err != nil {
		log.Printf("Warning: failed to generate CSRF token: %v", err)
		return ""
	}
	return token
}

// RateLimit rejects clients that exceed the limiter's budget
func RateLimit(limiter *security.RateLimiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow(security.GetClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			respondWithJSONError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack passes through to the underlying writer for WebSocket upgrades
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

// GetPlayerFromContext retrieves the player from the request context
func GetPlayerFromContext(ctx context.Context) *models.Player {
	player, ok := ctx.Value(PlayerContextKey).(*models.Player)
	if !ok {
		return nil
	}
	return player
}

// GetSessionFromContext retrieves the session from the request context
func GetSessionFromContext(ctx context.Context) *models.Session {
	session, ok := ctx.Value(SessionContextKey).(*models.Session)
	if !ok {
		return nil
	}
	return session
}
