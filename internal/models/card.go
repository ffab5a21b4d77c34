package models

import (
	"fmt"
	"strings"
	"time"
)

// Direction is one of the two test modes for a person
type Direction string

const (
	FaceToName Direction = "face-to-name"
	NameToFace Direction = "name-to-face"
)

// Directions lists both directions in enumeration order
var Directions = []Direction{FaceToName, NameToFace}

// Valid reports whether d is a known direction
func (d Direction) Valid() bool {
	return d == FaceToName || d == NameToFace
}

// CardState is the learning phase of a card
type CardState string

const (
	StateNew        CardState = "new"
	StateLearning   CardState = "learning"
	StateReview     CardState = "review"
	StateRelearning CardState = "relearning"
)

// Card is the mastery record for one (person, direction) pair
type Card struct {
	PersonID      string     `json:"person_id"`
	Direction     Direction  `json:"direction"`
	State         CardState  `json:"state"`
	Difficulty    float64    `json:"difficulty"`
	Stability     float64    `json:"stability"`
	Due           time.Time  `json:"due"`
	LastReview    *time.Time `json:"last_review,omitempty"`
	Reps          int        `json:"reps"`
	Lapses        int        `json:"lapses"`
	ElapsedDays   int        `json:"elapsed_days"`
	ScheduledDays int        `json:"scheduled_days"`
}

// NewCard creates an empty card that is due immediately
func NewCard(personID string, direction Direction, now time.Time) Card {
	return Card{
		PersonID:  personID,
		Direction: direction,
		State:     StateNew,
		Due:       now,
	}
}

// Key returns the storage key of the card
func (c Card) Key() string {
	return CardKey(c.PersonID, c.Direction)
}

// IsNew reports whether the card has never been graded
func (c Card) IsNew() bool {
	return c.State == StateNew || c.State == ""
}

// IsDue reports whether a reviewed card is eligible for re-testing at now
func (c Card) IsDue(now time.Time) bool {
	return !c.IsNew() && !c.Due.After(now)
}

// CardKey builds the "{personId}:{direction}" key used to index cards
func CardKey(personID string, direction Direction) string {
	return personID + ":" + string(direction)
}

// ParseCardKey splits a card key back into its person id and direction
func ParseCardKey(key string) (string, Direction, error) {
	idx := strings.LastIndex(key, ":")
	if idx <= 0 || idx == len(key)-1 {
		return "", "", fmt.Errorf("invalid card key %q", key)
	}
	direction := Direction(key[idx+1:])
	if !direction.Valid() {
		return "", "", fmt.Errorf("invalid card direction in key %q", key)
	}
	return key[:idx], direction, nil
}
