package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"namegame/internal/models"
)

var errNoSession = errors.New("csrf token needs a session with a player")

// CSRFGenerator issues HMAC-SHA256 tokens bound to one player's session.
// Nothing is stored: a token is recomputed from the session on every check.
type CSRFGenerator struct {
	secret []byte
}

// NewCSRFGenerator creates a CSRF generator keyed for CSRF tokens only
func NewCSRFGenerator(keys *Keyring) *CSRFGenerator {
	return &CSRFGenerator{secret: keys.Derive(PurposeCSRF)}
}

func (g *CSRFGenerator) sum(session *models.Session) ([]byte, error) {
	if session == nil || session.ID == "" || session.PlayerID == "" {
		return nil, errNoSession
	}
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(session.PlayerID))
	mac.Write([]byte{0})
	mac.Write([]byte(session.ID))
	return mac.Sum(nil), nil
}

// GenerateToken returns the CSRF token of a session
func (g *CSRFGenerator) GenerateToken(session *models.Session) (string, error) {
	sum, err := g.sum(session)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum), nil
}

// ValidateToken reports whether token was issued for session
func (g *CSRFGenerator) ValidateToken(session *models.Session, token string) bool {
	want, err := g.sum(session)
	if err != nil {
		return false
	}
	got, err := hex.DecodeString(token)
	if err != nil {
		return false
	}
	return hmac.Equal(want, got)
}
