package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"namegame/internal/database"
	"namegame/internal/game"
	"namegame/internal/models"
)

// ProgressRepository persists a player's cards, confusions, streak and the
// round in progress
type ProgressRepository struct {
	db *database.DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *database.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

var _ game.ProgressRepository = (*ProgressRepository)(nil)

const cardColumns = "person_id, direction, state, difficulty, stability, due, last_review, reps, lapses, elapsed_days, scheduled_days"

// LoadCards returns every stored card of a player
func (r *ProgressRepository) LoadCards(playerID string) ([]models.Card, error) {
	query := "SELECT " + cardColumns + " FROM card_states WHERE player_id = ? ORDER BY person_id, direction"
	rows, err := r.db.Query(query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cards: %w", err)
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		var (
			card       models.Card
			due        int64
			lastReview sql.NullInt64
		)
		err := rows.Scan(
			&card.PersonID,
			&card.Direction,
			&card.State,
			&card.Difficulty,
			&card.Stability,
			&due,
			&lastReview,
			&card.Reps,
			&card.Lapses,
			&card.ElapsedDays,
			&card.ScheduledDays,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		card.Due = fromMillis(due)
		card.LastReview = fromNullMillis(lastReview)
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

// SaveCards upserts cards in one transaction
func (r *ProgressRepository) SaveCards(playerID string, cards ...models.Card) error {
	if len(cards) == 0 {
		return nil
	}
	query := "INSERT INTO card_states (player_id, " + cardColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)" +
		r.db.Dialect.UpsertClause(
			[]string{"player_id", "person_id", "direction"},
			[]string{"state", "difficulty", "stability", "due", "last_review", "reps", "lapses", "elapsed_days", "scheduled_days"},
		)

	return r.db.WithTx(func(tx *database.Tx) error {
		for _, card := range cards {
			_, err := tx.Exec(query,
				playerID,
				card.PersonID,
				string(card.Direction),
				string(card.State),
				card.Difficulty,
				card.Stability,
				toMillis(card.Due),
				nullMillis(card.LastReview),
				card.Reps,
				card.Lapses,
				card.ElapsedDays,
				card.ScheduledDays,
			)
			if err != nil {
				return fmt.Errorf("failed to save card %s: %w", card.Key(), err)
			}
		}
		return nil
	})
}

// LoadConfusion returns a player's confusion matrix
func (r *ProgressRepository) LoadConfusion(playerID string) (models.ConfusionMatrix, error) {
	rows, err := r.db.Query("SELECT target_id, other_id, hits FROM confusions WHERE player_id = ?", playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load confusions: %w", err)
	}
	defer rows.Close()

	matrix := make(models.ConfusionMatrix)
	for rows.Next() {
		var targetID, otherID string
		var hits int
		if err := rows.Scan(&targetID, &otherID, &hits); err != nil {
			return nil, fmt.Errorf("failed to scan confusion: %w", err)
		}
		if matrix[targetID] == nil {
			matrix[targetID] = make(map[string]int)
		}
		matrix[targetID][otherID] = hits
	}
	return matrix, rows.Err()
}

// SaveConfusion stores the current count of one confusion pair
func (r *ProgressRepository) SaveConfusion(playerID, targetID, otherID string, count int) error {
	query := "INSERT INTO confusions (player_id, target_id, other_id, hits) VALUES (?, ?, ?, ?)" +
		r.db.Dialect.UpsertClause([]string{"player_id", "target_id", "other_id"}, []string{"hits"})
	if _, err := r.db.Exec(query, playerID, targetID, otherID, count); err != nil {
		return fmt.Errorf("failed to save confusion: %w", err)
	}
	return nil
}

// LoadActiveChallenge returns the stored round, nil when there is none, or
// game.ErrCorruptState when its option lists cannot be decoded
func (r *ProgressRepository) LoadActiveChallenge(playerID string) (*models.ActiveChallenge, error) {
	query := `
		SELECT round_id, target_id, direction, option_ids, has_errored, eliminated_ids, created_at
		FROM active_challenges
		WHERE player_id = ?
	`
	var (
		c             models.ActiveChallenge
		optionIDs     string
		eliminatedIDs string
		hasErrored    int
		createdAt     int64
	)
	err := r.db.QueryRow(query, playerID).Scan(&c.RoundID, &c.TargetID, &c.Direction, &optionIDs, &hasErrored, &eliminatedIDs, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load challenge: %w", err)
	}

	if err := json.Unmarshal([]byte(optionIDs), &c.OptionIDs); err != nil {
		return nil, fmt.Errorf("%w: option ids: %v", game.ErrCorruptState, err)
	}
	if eliminatedIDs != "" {
		if err := json.Unmarshal([]byte(eliminatedIDs), &c.EliminatedIDs); err != nil {
			return nil, fmt.Errorf("%w: eliminated ids: %v", game.ErrCorruptState, err)
		}
	}
	c.HasErrored = hasErrored != 0
	c.CreatedAt = fromMillis(createdAt)
	return &c, nil
}

// SaveActiveChallenge replaces the stored round
func (r *ProgressRepository) SaveActiveChallenge(playerID string, c *models.ActiveChallenge) error {
	optionIDs, err := json.Marshal(c.OptionIDs)
	if err != nil {
		return fmt.Errorf("failed to encode option ids: %w", err)
	}
	eliminated := c.EliminatedIDs
	if eliminated == nil {
		eliminated = []string{}
	}
	eliminatedIDs, err := json.Marshal(eliminated)
	if err != nil {
		return fmt.Errorf("failed to encode eliminated ids: %w", err)
	}
	hasErrored := 0
	if c.HasErrored {
		hasErrored = 1
	}

	query := `INSERT INTO active_challenges (player_id, round_id, target_id, direction, option_ids, has_errored, eliminated_ids, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)` +
		r.db.Dialect.UpsertClause(
			[]string{"player_id"},
			[]string{"round_id", "target_id", "direction", "option_ids", "has_errored", "eliminated_ids", "created_at"},
		)
	_, err = r.db.Exec(query, playerID, c.RoundID, c.TargetID, string(c.Direction), string(optionIDs), hasErrored, string(eliminatedIDs), toMillis(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save challenge: %w", err)
	}
	return nil
}

// ClearActiveChallenge removes the stored round
func (r *ProgressRepository) ClearActiveChallenge(playerID string) error {
	if _, err := r.db.Exec("DELETE FROM active_challenges WHERE player_id = ?", playerID); err != nil {
		return fmt.Errorf("failed to clear challenge: %w", err)
	}
	return nil
}

// LoadStreak returns the stored streak, 0 when none was stored
func (r *ProgressRepository) LoadStreak(playerID string) (int, error) {
	var streak int
	err := r.db.QueryRow("SELECT streak FROM streaks WHERE player_id = ?", playerID).Scan(&streak)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load streak: %w", err)
	}
	return streak, nil
}

// SaveStreak stores the streak
func (r *ProgressRepository) SaveStreak(playerID string, streak int) error {
	query := "INSERT INTO streaks (player_id, streak, updated_at) VALUES (?, ?, ?)" +
		r.db.Dialect.UpsertClause([]string{"player_id"}, []string{"streak", "updated_at"})
	if _, err := r.db.Exec(query, playerID, streak, toMillis(time.Now())); err != nil {
		return fmt.Errorf("failed to save streak: %w", err)
	}
	return nil
}

// CountDueCards counts a player's reviewed cards due at or before now
func (r *ProgressRepository) CountDueCards(playerID string, now time.Time) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM card_states WHERE player_id = ? AND state <> ? AND due <= ?"
	err := r.db.QueryRow(query, playerID, string(models.StateNew), toMillis(now)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count due cards: %w", err)
	}
	return count, nil
}

// DeleteProgress removes every progress record of a player, keeping the player
func (r *ProgressRepository) DeleteProgress(playerID string) error {
	return r.db.WithTx(func(tx *database.Tx) error {
		for _, table := range []string{"card_states", "confusions", "active_challenges", "streaks"} {
			if _, err := tx.Exec("DELETE FROM "+table+" WHERE player_id = ?", playerID); err != nil {
				return fmt.Errorf("failed to delete %s: %w", table, err)
			}
		}
		return nil
	})
}
