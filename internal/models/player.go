package models

import "time"

// Player is a person playing the game, identified by their OAuth subject
type Player struct {
	ID             string
	Name           string
	Email          string
	Provider       string
	ProviderID     string
	CreatedAt      time.Time
	LastSeenAt     time.Time
	LastRemindedAt *time.Time
}

// Session represents an authenticated browser session, carried in a signed cookie
type Session struct {
	ID        string
	PlayerID  string
	Name      string
	ExpiresAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// ReminderDue reports whether the player may be sent another reminder at now
func (p *Player) ReminderDue(now time.Time, every time.Duration) bool {
	if p.Email == "" {
		return false
	}
	return p.LastRemindedAt == nil || now.Sub(*p.LastRemindedAt) >= every
}
