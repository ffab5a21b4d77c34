package game

import (
	"time"

	"namegame/internal/models"
)

// Stats summarises a player's progress over the session roster
type Stats struct {
	People     int        `json:"people"`
	Cards      int        `json:"cards"`
	New        int        `json:"new"`
	Learning   int        `json:"learning"`
	Review     int        `json:"review"`
	Relearning int        `json:"relearning"`
	Due        int        `json:"due"`
	Streak     int        `json:"streak"`
	NextDue    *time.Time `json:"next_due,omitempty"`
}

// Stats counts cards by state without creating missing ones; unseen cards count as new
func (s *Session) Stats(now time.Time) Stats {
	st := Stats{People: len(s.roster), Streak: s.streak}
	for _, p := range s.roster {
		for _, d := range models.Directions {
			st.Cards++
			card, ok := s.cards.Peek(p.ID, d)
			if !ok || card.IsNew() {
				st.New++
				continue
			}
			switch card.State {
			case models.StateLearning:
				st.Learning++
			case models.StateReview:
				st.Review++
			case models.StateRelearning:
				st.Relearning++
			}
			if card.IsDue(now) {
				st.Due++
			} else if st.NextDue == nil || card.Due.Before(*st.NextDue) {
				due := card.Due
				st.NextDue = &due
			}
		}
	}
	return st
}
