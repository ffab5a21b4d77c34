package service

import (
	"errors"
	"fmt"

	"namegame/internal/models"
	"namegame/internal/security"
	"namegame/internal/validation"
)

var (
	ErrMissingIdentity = errors.New("missing oauth provider information")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// AuthService turns OAuth identities into players and signed sessions
type AuthService struct {
	players PlayerStore
	signer  *security.SessionSigner
}

// NewAuthService creates a new auth service
func NewAuthService(players PlayerStore, signer *security.SessionSigner) *AuthService {
	return &AuthService{players: players, signer: signer}
}

// OAuthLogin finds or creates the player for an OAuth identity and starts a
// session. It returns the session and its signed token.
func (s *AuthService) OAuthLogin(provider, subject, email, name string) (*models.Session, string, error) {
	if provider == "" || subject == "" {
		return nil, "", ErrMissingIdentity
	}
	name, email = validation.CleanProfile(name, email)
	if name == "" {
		name = "Player"
	}

	player, err := s.players.UpsertPlayer(provider, subject, name, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to record player: %w", err)
	}

	session := s.signer.NewSession(player)
	token, err := s.signer.Sign(session)
	if err != nil {
		return nil, "", err
	}
	return session, token, nil
}

// ValidateSession verifies a session token and loads its player
func (s *AuthService) ValidateSession(token string) (*models.Session, *models.Player, error) {
	session, err := s.signer.Parse(token)
	if err != nil {
		return nil, nil, ErrSessionNotFound
	}
	if session.IsExpired() {
		return nil, nil, ErrSessionExpired
	}

	player, err := s.players.GetPlayerByID(session.PlayerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return nil, nil, ErrSessionNotFound
	}
	return session, player, nil
}
