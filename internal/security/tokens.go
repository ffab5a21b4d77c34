package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"namegame/internal/models"
)

// ErrInvalidSession is returned for tokens that are malformed, forged or expired
var ErrInvalidSession = errors.New("invalid session")

type sessionClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
}

// SessionSigner issues and verifies the signed session cookie value.
// Sessions are stateless: the player id and expiry travel in the token.
type SessionSigner struct {
	key    []byte
	ttl    time.Duration
	issuer string
}

// NewSessionSigner creates a signer with a key derived for session tokens
func NewSessionSigner(keys *Keyring, ttl time.Duration) *SessionSigner {
	return &SessionSigner{key: keys.Derive(PurposeSession), ttl: ttl, issuer: "namegame"}
}

// NewSession starts a session for a player
func (s *SessionSigner) NewSession(player *models.Player) *models.Session {
	return &models.Session{
		ID:        GenerateSessionID(),
		PlayerID:  player.ID,
		Name:      player.Name,
		ExpiresAt: time.Now().Add(s.ttl).Truncate(time.Second),
	}
}

// Sign encodes a session as an HS256 JWT
func (s *SessionSigner) Sign(session *models.Session) (string, error) {
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   session.PlayerID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
		Name: session.Name,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return token, nil
}

// Parse verifies a token and returns its session
func (s *SessionSigner) Parse(token string) (*models.Session, error) {
	claims := &sessionClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidSession
	}
	return &models.Session{
		ID:        claims.ID,
		PlayerID:  claims.Subject,
		Name:      claims.Name,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
