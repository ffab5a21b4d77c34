package game

import (
	"log"
	"time"

	"namegame/internal/models"
	"namegame/internal/srs"
)

// ChoiceEvent is a player's pick, by option id, for the round named by RoundID
type ChoiceEvent struct {
	RoundID  string `json:"round_id"`
	OptionID string `json:"option_id"`
}

// Outcome reports how a choice was graded
type Outcome struct {
	Correct      bool          `json:"correct"`
	FirstTry     bool          `json:"first_try"`
	TargetID     string        `json:"target_id"`
	ChosenID     string        `json:"chosen_id"`
	Streak       int           `json:"streak"`
	Announcement string        `json:"announcement,omitempty"`
	Display      StreakDisplay `json:"display"`
	// RoundOver is set once the target was found and the next round may start
	RoundOver bool `json:"round_over"`
}

// Choose grades a choice against the round in progress. A choice quoting any
// other round, such as a repeated key press that arrives after the next round
// started, is rejected with ErrStaleChoice and changes nothing.
func (s *Session) Choose(ev ChoiceEvent, now time.Time) (*Outcome, error) {
	if s.active == nil {
		return nil, ErrNoActiveChallenge
	}
	if ev.RoundID == "" || ev.RoundID != s.active.RoundID {
		return nil, ErrStaleChoice
	}
	if !s.active.HasOption(ev.OptionID) {
		return nil, ErrUnknownOption
	}
	if s.active.IsEliminated(ev.OptionID) {
		return nil, ErrOptionEliminated
	}

	targetID := s.active.TargetID
	correct := ev.OptionID == targetID
	firstTry := correct && !s.active.HasErrored

	distractorID := ""
	if !correct {
		distractorID = ev.OptionID
	}
	if err := s.RecordAnswer(correct, distractorID, now); err != nil {
		return nil, err
	}

	outcome := &Outcome{
		Correct:   correct,
		FirstTry:  firstTry,
		TargetID:  targetID,
		ChosenID:  ev.OptionID,
		Streak:    s.streak,
		Display:   DisplayFor(s.streak),
		RoundOver: correct,
	}
	if firstTry {
		outcome.Announcement = Announcement(s.streak)
	}
	return outcome, nil
}

// RecordAnswer applies an answer to the round in progress.
//
// A correct first try grades the target Good and extends the streak. A
// correct answer after a miss only ends the round, the miss was already
// graded. A wrong answer grades the target Again, grades both of the chosen
// person's cards Again, counts the confusion, resets the streak and marks the
// round as errored. Storage failures are logged; the in-memory state stays
// authoritative for the rest of the session.
func (s *Session) RecordAnswer(isCorrect bool, distractorID string, now time.Time) error {
	if s.active == nil {
		return ErrNoActiveChallenge
	}
	active := s.active
	target := s.cards.Get(active.TargetID, active.Direction, now)

	if isCorrect {
		if !active.HasErrored {
			s.warn("save card", s.cards.Put(s.grader.Review(target, srs.Good, now)))
			s.streak++
			s.warn("save streak", s.repo.SaveStreak(s.playerID, s.streak))
		}
		s.active = nil
		s.warn("clear challenge", s.repo.ClearActiveChallenge(s.playerID))
		return nil
	}

	updated := []models.Card{s.grader.Review(target, srs.Again, now)}
	if distractorID != "" {
		for _, d := range models.Directions {
			card := s.cards.Get(distractorID, d, now)
			updated = append(updated, s.grader.Review(card, srs.Again, now))
		}
		s.warn("save confusion", s.confusion.Record(active.TargetID, distractorID))
		if s.symmetric {
			s.warn("save confusion", s.confusion.Record(distractorID, active.TargetID))
		}
	}
	s.warn("save cards", s.cards.Put(updated...))

	s.streak = 0
	s.warn("save streak", s.repo.SaveStreak(s.playerID, s.streak))

	active.HasErrored = true
	if distractorID != "" && !active.IsEliminated(distractorID) {
		active.EliminatedIDs = append(active.EliminatedIDs, distractorID)
	}
	s.warn("save challenge", s.repo.SaveActiveChallenge(s.playerID, active))
	return nil
}

func (s *Session) warn(action string, err error) {
	if err != nil {
		log.Printf("Warning: failed to %s for player %s: %v", action, s.playerID, err)
	}
}
