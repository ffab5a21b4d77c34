package game

import (
	"errors"

	"namegame/internal/models"
)

var (
	ErrRosterTooSmall    = errors.New("not enough people with a name and a photo to start a game")
	ErrNoActiveChallenge = errors.New("no challenge in progress")
	ErrUnknownOption     = errors.New("choice is not one of the current options")
	ErrOptionEliminated  = errors.New("choice was already ruled out this round")
	ErrStaleChoice       = errors.New("choice was made for a round that is no longer in progress")

	// ErrCorruptState is returned by repositories when a stored record cannot be decoded
	ErrCorruptState = errors.New("stored game state is corrupt")
)

// ProgressRepository is the durable storage of one player's game progress.
// Every method is synchronous; the session calls it after each mutation.
type ProgressRepository interface {
	LoadCards(playerID string) ([]models.Card, error)
	SaveCards(playerID string, cards ...models.Card) error

	LoadConfusion(playerID string) (models.ConfusionMatrix, error)
	SaveConfusion(playerID, targetID, otherID string, count int) error

	LoadActiveChallenge(playerID string) (*models.ActiveChallenge, error)
	SaveActiveChallenge(playerID string, challenge *models.ActiveChallenge) error
	ClearActiveChallenge(playerID string) error

	LoadStreak(playerID string) (int, error)
	SaveStreak(playerID string, streak int) error
}
