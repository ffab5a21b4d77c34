package game

import (
	"time"

	"namegame/internal/models"
)

// CardStore holds a player's cards keyed by "{personId}:{direction}".
// Lookups create missing cards; Put is the only way a card changes.
type CardStore struct {
	playerID string
	cards    map[string]models.Card
	repo     ProgressRepository
}

// NewCardStore creates a store seeded with previously persisted cards
func NewCardStore(playerID string, cards []models.Card, repo ProgressRepository) *CardStore {
	s := &CardStore{
		playerID: playerID,
		cards:    make(map[string]models.Card, len(cards)),
		repo:     repo,
	}
	for _, card := range cards {
		if card.PersonID == "" || !card.Direction.Valid() {
			continue
		}
		s.cards[card.Key()] = card
	}
	return s
}

// Get returns the card for (personID, direction), creating a new one due at now if absent
func (s *CardStore) Get(personID string, direction models.Direction, now time.Time) models.Card {
	key := models.CardKey(personID, direction)
	if card, ok := s.cards[key]; ok {
		return card
	}
	card := models.NewCard(personID, direction, now)
	s.cards[key] = card
	return card
}

// Peek returns the card without creating it
func (s *CardStore) Peek(personID string, direction models.Direction) (models.Card, bool) {
	card, ok := s.cards[models.CardKey(personID, direction)]
	return card, ok
}

// Put stores updated cards and persists them
func (s *CardStore) Put(cards ...models.Card) error {
	for _, card := range cards {
		s.cards[card.Key()] = card
	}
	if s.repo == nil {
		return nil
	}
	return s.repo.SaveCards(s.playerID, cards...)
}

// Len returns the number of cards held, including lazily created ones
func (s *CardStore) Len() int {
	return len(s.cards)
}
