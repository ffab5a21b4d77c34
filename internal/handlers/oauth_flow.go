package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"namegame/internal/security"
)

const (
	// RecurseProvider names players who logged in through Recurse Center OAuth
	RecurseProvider = "recurse"
	// GuestProvider names players created when no OAuth provider is configured
	GuestProvider = "guest"

	oauthStateCookie = "oauth_state"
	oauthStateTTL    = 10 * time.Minute
)

// OAuthProvider defines provider configuration and metadata
type OAuthProvider struct {
	Name        string
	Config      *oauth2.Config
	UserInfoURL string
}

// NewRecurseProvider configures Recurse Center as the OAuth provider
func NewRecurseProvider(clientID, clientSecret, authorizeURL, tokenURL, userInfoURL string) *OAuthProvider {
	return &OAuthProvider{
		Name: RecurseProvider,
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authorizeURL,
				TokenURL: tokenURL,
			},
		},
		UserInfoURL: userInfoURL,
	}
}

type oauthUserInfo struct {
	Subject string
	Email   string
	Name    string
}

func (p *OAuthProvider) configured() bool {
	return p != nil && p.Config != nil && p.Config.ClientID != "" && p.Config.ClientSecret != ""
}

// StartOAuth initiates the OAuth flow
func (h *AuthHandler) StartOAuth(w http.ResponseWriter, r *http.Request) {
	state := security.GenerateSessionID()
	h.setTempCookie(w, r, oauthStateCookie, state, oauthStateTTL)

	config := *h.provider.Config
	config.RedirectURL = h.oauthRedirectURL(r)

	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOnline)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// OAuthCallback handles the OAuth provider callback
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	if !h.provider.configured() {
		respondWithError(w, http.StatusBadRequest, "OAuth provider not configured", "", nil)
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if code == "" {
		respondWithError(w, http.StatusBadRequest, "Missing authorization code", "", nil)
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		respondWithError(w, http.StatusBadRequest, "Invalid OAuth state", "", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if h.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, h.httpClient)
	}

	config := *h.provider.Config
	config.RedirectURL = h.oauthRedirectURL(r)

	token, err := config.Exchange(ctx, code)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to exchange OAuth code", "OAuth code exchange failed", err)
		return
	}

	userInfo, err := h.fetchUserInfo(ctx, token)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to fetch your profile", "OAuth user info failed", err)
		return
	}

	h.clearTempCookie(w, r, oauthStateCookie)
	h.startSession(w, r, h.provider.Name, userInfo)
}

// fetchUserInfo reads the logged-in profile, {id, name, email}
func (h *AuthHandler) fetchUserInfo(ctx context.Context, token *oauth2.Token) (oauthUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	resp, err := client.Get(h.provider.UserInfoURL)
	if err != nil {
		return oauthUserInfo{}, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return oauthUserInfo{}, fmt.Errorf("user info returned status %d", resp.StatusCode)
	}

	var payload struct {
		ID        json.Number `json:"id"`
		Email     string      `json:"email"`
		Name      string      `json:"name"`
		FirstName string      `json:"first_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return oauthUserInfo{}, fmt.Errorf("failed to parse user info: %w", err)
	}
	if payload.ID == "" {
		return oauthUserInfo{}, errors.New("user info has no id")
	}

	name := payload.Name
	if name == "" {
		name = payload.FirstName
	}
	return oauthUserInfo{Subject: payload.ID.String(), Email: payload.Email, Name: name}, nil
}

func (h *AuthHandler) oauthRedirectURL(r *http.Request) string {
	baseURL := strings.TrimSpace(h.oauthRedirectBaseURL)
	if baseURL == "" {
		scheme := "http"
		if security.IsSecureRequest(r) {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s", scheme, r.Host)
	}
	return strings.TrimRight(baseURL, "/") + "/auth/callback"
}

func (h *AuthHandler) setTempCookie(w http.ResponseWriter, r *http.Request, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   security.IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
	})
}

func (h *AuthHandler) clearTempCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, security.CreateDeleteCookie(r, name))
}
