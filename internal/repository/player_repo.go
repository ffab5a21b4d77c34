package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"namegame/internal/database"
	"namegame/internal/models"
)

// PlayerRepository handles database operations for players
type PlayerRepository struct {
	db *database.DB
}

// NewPlayerRepository creates a new player repository
func NewPlayerRepository(db *database.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

const playerColumns = "id, provider, provider_id, name, email, created_at, last_seen_at, last_reminded_at"

// UpsertPlayer finds the player for an OAuth identity, refreshing its name and
// email, or creates it
func (r *PlayerRepository) UpsertPlayer(provider, providerID, name, email string) (*models.Player, error) {
	now := time.Now().UTC()

	existing, err := r.GetPlayerByProvider(provider, providerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		query := "UPDATE players SET name = ?, email = ?, last_seen_at = ? WHERE id = ?"
		if _, err := r.db.Exec(query, name, email, toMillis(now), existing.ID); err != nil {
			return nil, fmt.Errorf("failed to update player: %w", err)
		}
		existing.Name = name
		existing.Email = email
		existing.LastSeenAt = fromMillis(toMillis(now))
		return existing, nil
	}

	player := &models.Player{
		ID:         uuid.New().String(),
		Name:       name,
		Email:      email,
		Provider:   provider,
		ProviderID: providerID,
		CreatedAt:  fromMillis(toMillis(now)),
		LastSeenAt: fromMillis(toMillis(now)),
	}
	if err := r.InsertPlayer(player); err != nil {
		return nil, err
	}
	return player, nil
}

// InsertPlayer stores a player record as is
func (r *PlayerRepository) InsertPlayer(p *models.Player) error {
	query := "INSERT INTO players (" + playerColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := r.db.Exec(query,
		p.ID,
		p.Provider,
		p.ProviderID,
		p.Name,
		p.Email,
		toMillis(p.CreatedAt),
		toMillis(p.LastSeenAt),
		nullMillis(p.LastRemindedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

// GetPlayerByID retrieves a player by ID, nil when absent
func (r *PlayerRepository) GetPlayerByID(id string) (*models.Player, error) {
	return r.getOne("SELECT "+playerColumns+" FROM players WHERE id = ?", id)
}

// GetPlayerByProvider retrieves a player by OAuth identity, nil when absent
func (r *PlayerRepository) GetPlayerByProvider(provider, providerID string) (*models.Player, error) {
	return r.getOne("SELECT "+playerColumns+" FROM players WHERE provider = ? AND provider_id = ?", provider, providerID)
}

// ListPlayers returns every player, oldest first
func (r *PlayerRepository) ListPlayers() ([]models.Player, error) {
	return r.list("SELECT " + playerColumns + " FROM players ORDER BY created_at, id")
}

// ListPlayersWithEmail returns players that can receive reminders
func (r *PlayerRepository) ListPlayersWithEmail() ([]models.Player, error) {
	return r.list("SELECT " + playerColumns + " FROM players WHERE email <> '' ORDER BY created_at, id")
}

// MarkReminded records when a reminder was last sent
func (r *PlayerRepository) MarkReminded(id string, at time.Time) error {
	if _, err := r.db.Exec("UPDATE players SET last_reminded_at = ? WHERE id = ?", toMillis(at), id); err != nil {
		return fmt.Errorf("failed to mark player reminded: %w", err)
	}
	return nil
}

func (r *PlayerRepository) getOne(query string, args ...interface{}) (*models.Player, error) {
	player, err := scanPlayer(r.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return player, nil
}

func (r *PlayerRepository) list(query string, args ...interface{}) ([]models.Player, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, *player)
	}
	return players, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlayer(row rowScanner) (*models.Player, error) {
	var (
		p            models.Player
		createdAt    int64
		lastSeenAt   int64
		lastReminded sql.NullInt64
	)
	err := row.Scan(&p.ID, &p.Provider, &p.ProviderID, &p.Name, &p.Email, &createdAt, &lastSeenAt, &lastReminded)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = fromMillis(createdAt)
	p.LastSeenAt = fromMillis(lastSeenAt)
	p.LastRemindedAt = fromNullMillis(lastReminded)
	return &p, nil
}
