// Package srs adapts the FSRS spaced-repetition algorithm to the game's cards.
//
// The algorithm itself is a black box: given a card, a grade and the current
// time it returns the updated card with its next due timestamp.
package srs

import (
	"time"

	fsrs "github.com/open-spaced-repetition/go-fsrs/v3"

	"namegame/internal/models"
)

// Grade is the outcome of one recall attempt
type Grade int

const (
	// Again is a lapse: the answer was wrong
	Again Grade = iota + 1
	// Good is a correct first-try answer
	Good
)

func (g Grade) String() string {
	switch g {
	case Again:
		return "again"
	case Good:
		return "good"
	default:
		return "unknown"
	}
}

// Scheduler produces the next state of a card for a grade
type Scheduler interface {
	Review(card models.Card, grade Grade, now time.Time) models.Card
}

// FSRS schedules cards with the Free Spaced Repetition Scheduler
type FSRS struct {
	f *fsrs.FSRS
}

// NewFSRS creates a scheduler with the default FSRS parameters
func NewFSRS() *FSRS {
	return &FSRS{f: fsrs.NewFSRS(fsrs.DefaultParam())}
}

// Review grades the card at now and returns the updated card
func (s *FSRS) Review(card models.Card, grade Grade, now time.Time) models.Card {
	records := s.f.Repeat(toFSRS(card, now), now)
	info, ok := records[toRating(grade)]
	if !ok {
		return card
	}
	return fromFSRS(card.PersonID, card.Direction, info.Card)
}

func toRating(g Grade) fsrs.Rating {
	if g == Good {
		return fsrs.Good
	}
	return fsrs.Again
}

func toFSRS(c models.Card, now time.Time) fsrs.Card {
	if c.IsNew() {
		card := fsrs.NewCard()
		card.Due = now
		return card
	}
	card := fsrs.Card{
		Due:           c.Due,
		Stability:     c.Stability,
		Difficulty:    c.Difficulty,
		ElapsedDays:   uint64(nonNegative(c.ElapsedDays)),
		ScheduledDays: uint64(nonNegative(c.ScheduledDays)),
		Reps:          uint64(nonNegative(c.Reps)),
		Lapses:        uint64(nonNegative(c.Lapses)),
		State:         toState(c.State),
	}
	if c.LastReview != nil {
		card.LastReview = *c.LastReview
	}
	return card
}

func fromFSRS(personID string, direction models.Direction, card fsrs.Card) models.Card {
	out := models.Card{
		PersonID:      personID,
		Direction:     direction,
		State:         fromState(card.State),
		Difficulty:    card.Difficulty,
		Stability:     card.Stability,
		Due:           card.Due,
		Reps:          int(card.Reps),
		Lapses:        int(card.Lapses),
		ElapsedDays:   int(card.ElapsedDays),
		ScheduledDays: int(card.ScheduledDays),
	}
	if !card.LastReview.IsZero() {
		lastReview := card.LastReview
		out.LastReview = &lastReview
	}
	return out
}

func toState(s models.CardState) fsrs.State {
	switch s {
	case models.StateLearning:
		return fsrs.Learning
	case models.StateReview:
		return fsrs.Review
	case models.StateRelearning:
		return fsrs.Relearning
	default:
		return fsrs.New
	}
}

func fromState(s fsrs.State) models.CardState {
	switch s {
	case fsrs.Learning:
		return models.StateLearning
	case fsrs.Review:
		return models.StateReview
	case fsrs.Relearning:
		return models.StateRelearning
	default:
		return models.StateNew
	}
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
