package models

import "time"

// ActiveChallenge is the persisted in-progress round, so that a reload resumes it.
// RoundID names the round; choices must quote it to be graded.
type ActiveChallenge struct {
	RoundID       string    `json:"round_id"`
	TargetID      string    `json:"target_id"`
	Direction     Direction `json:"direction"`
	OptionIDs     []string  `json:"option_ids"`
	HasErrored    bool      `json:"has_errored"`
	EliminatedIDs []string  `json:"eliminated_ids,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// HasOption reports whether id is one of the challenge options
func (c *ActiveChallenge) HasOption(id string) bool {
	for _, optionID := range c.OptionIDs {
		if optionID == id {
			return true
		}
	}
	return false
}

// IsEliminated reports whether id was already picked as a wrong answer this round
func (c *ActiveChallenge) IsEliminated(id string) bool {
	for _, eliminated := range c.EliminatedIDs {
		if eliminated == id {
			return true
		}
	}
	return false
}

// ConfusionMatrix counts how often one person was mistaken for another:
// target id -> chosen id -> count
type ConfusionMatrix map[string]map[string]int

// Increment adds one to the (target, other) count and returns the new value
func (m ConfusionMatrix) Increment(targetID, otherID string) int {
	row, ok := m[targetID]
	if !ok {
		row = make(map[string]int)
		m[targetID] = row
	}
	row[otherID]++
	return row[otherID]
}

// Count returns the (target, other) count
func (m ConfusionMatrix) Count(targetID, otherID string) int {
	return m[targetID][otherID]
}
