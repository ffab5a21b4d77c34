package game

import (
	"sort"

	"namegame/internal/models"
)

// ConfusionTracker records which people a player mistakes for which others
type ConfusionTracker struct {
	playerID string
	matrix   models.ConfusionMatrix
	repo     ProgressRepository
}

// NewConfusionTracker creates a tracker over a previously persisted matrix
func NewConfusionTracker(playerID string, matrix models.ConfusionMatrix, repo ProgressRepository) *ConfusionTracker {
	if matrix == nil {
		matrix = make(models.ConfusionMatrix)
	}
	return &ConfusionTracker{playerID: playerID, matrix: matrix, repo: repo}
}

// Record counts one confusion of otherID for targetID and persists the new count
func (t *ConfusionTracker) Record(targetID, otherID string) error {
	count := t.matrix.Increment(targetID, otherID)
	if t.repo == nil {
		return nil
	}
	return t.repo.SaveConfusion(t.playerID, targetID, otherID, count)
}

// Ranked returns the people confused with targetID, most confused first.
// Equal counts are ordered by id so the ranking is stable.
func (t *ConfusionTracker) Ranked(targetID string) []string {
	return rankConfusions(t.matrix, targetID)
}

// Matrix exposes the underlying counts
func (t *ConfusionTracker) Matrix() models.ConfusionMatrix {
	return t.matrix
}

func rankConfusions(matrix models.ConfusionMatrix, targetID string) []string {
	row := matrix[targetID]
	ids := make([]string, 0, len(row))
	for id, count := range row {
		if count > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		if row[ids[i]] != row[ids[j]] {
			return row[ids[i]] > row[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}
