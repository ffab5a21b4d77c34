package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"namegame/internal/models"
)

// PlayerStore is the player storage the reminder and auth services need
type PlayerStore interface {
	UpsertPlayer(provider, providerID, name, email string) (*models.Player, error)
	GetPlayerByID(id string) (*models.Player, error)
	ListPlayersWithEmail() ([]models.Player, error)
	MarkReminded(id string, at time.Time) error
}

// DueCounter counts a player's cards that are due
type DueCounter interface {
	CountDueCards(playerID string, now time.Time) (int, error)
}

// Mailer sends reminder emails
type Mailer interface {
	IsEnabled() bool
	SendReminderEmail(ctx context.Context, toEmail, toName string, dueCount int) error
}

// ReminderService emails players who have cards waiting, at most once per interval
type ReminderService struct {
	players  PlayerStore
	due      DueCounter
	mailer   Mailer
	interval time.Duration
	now      func() time.Time
}

// NewReminderService creates a new reminder service
func NewReminderService(players PlayerStore, due DueCounter, mailer Mailer, interval time.Duration) *ReminderService {
	return &ReminderService{
		players:  players,
		due:      due,
		mailer:   mailer,
		interval: interval,
		now:      time.Now,
	}
}

// SendDueReminders emails every eligible player and returns how many were reminded.
// A failure for one player is logged and does not stop the others.
func (s *ReminderService) SendDueReminders(ctx context.Context) (int, error) {
	if !s.mailer.IsEnabled() {
		return 0, nil
	}

	players, err := s.players.ListPlayersWithEmail()
	if err != nil {
		return 0, fmt.Errorf("failed to list players: %w", err)
	}

	now := s.now()
	sent := 0
	for i := range players {
		p := &players[i]
		if !p.ReminderDue(now, s.interval) {
			continue
		}
		count, err := s.due.CountDueCards(p.ID, now)
		if err != nil {
			log.Printf("Warning: failed to count due cards for player %s: %v", p.ID, err)
			continue
		}
		if count == 0 {
			continue
		}
		if err := s.mailer.SendReminderEmail(ctx, p.Email, p.Name, count); err != nil {
			log.Printf("Warning: failed to send reminder to player %s: %v", p.ID, err)
			continue
		}
		if err := s.players.MarkReminded(p.ID, now); err != nil {
			log.Printf("Warning: failed to mark player %s reminded: %v", p.ID, err)
		}
		sent++
	}
	return sent, nil
}
