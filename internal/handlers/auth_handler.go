package handlers

import (
	"net/http"

	"namegame/internal/models"
	"namegame/internal/security"
)

// LoginService turns an identity into a signed session
type LoginService interface {
	OAuthLogin(provider, subject, email, name string) (*models.Session, string, error)
}

// GameSessions drops a player's cached game on logout
type GameSessions interface {
	Forget(playerID string)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService          LoginService
	games                GameSessions
	middleware           *Middleware
	provider             *OAuthProvider
	oauthRedirectBaseURL string
	httpClient           *http.Client
}

// NewAuthHandler creates a new auth handler. With no configured provider,
// logging in creates a guest player instead of redirecting to OAuth.
func NewAuthHandler(authService LoginService, middleware *Middleware, provider *OAuthProvider, redirectBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		middleware:           middleware,
		provider:             provider,
		oauthRedirectBaseURL: redirectBaseURL,
	}
}

// WithHTTPClient sets the client used for the token exchange and profile fetch
func (h *AuthHandler) WithHTTPClient(client *http.Client) *AuthHandler {
	h.httpClient = client
	return h
}

// WithGameSessions makes logout release the player's cached game
func (h *AuthHandler) WithGameSessions(games GameSessions) *AuthHandler {
	h.games = games
	return h
}

// Login starts OAuth, or creates a guest session when OAuth is not configured
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.provider.configured() {
		h.StartOAuth(w, r)
		return
	}
	h.startSession(w, r, GuestProvider, oauthUserInfo{
		Subject: security.GenerateSessionID(),
		Name:    "Guest",
	})
}

// Logout clears the session cookie and releases the player's cached game.
// Progress stays stored; sessions are stateless, so there is nothing else to delete.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if player := GetPlayerFromContext(r.Context()); player != nil && h.games != nil {
		h.games.Forget(player.ID)
	}
	http.SetCookie(w, security.CreateDeleteCookie(r, security.SessionCookieName))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Me describes the logged-in player and hands out the CSRF token
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	player := GetPlayerFromContext(r.Context())
	session := GetSessionFromContext(r.Context())
	if player == nil || session == nil {
		respondWithJSONError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"id":         player.ID,
		"name":       player.Name,
		"provider":   player.Provider,
		"expires_at": session.ExpiresAt,
		"csrf_token": h.middleware.CSRFToken(session),
	})
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, provider string, info oauthUserInfo) {
	session, token, err := h.authService.OAuthLogin(provider, info.Subject, info.Email, info.Name)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Login failed", "", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, security.SessionCookieName, token, session.ExpiresAt))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
