package game

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"namegame/internal/models"
	"namegame/internal/srs"
)

// memRepo is an in-memory ProgressRepository that counts writes.
type memRepo struct {
	cards     map[string]models.Card
	confusion models.ConfusionMatrix
	active    *models.ActiveChallenge
	streak    int

	loadActiveErr error
	saveErr       error
	cardWrites    int
}

func newMemRepo() *memRepo {
	return &memRepo{
		cards:     make(map[string]models.Card),
		confusion: make(models.ConfusionMatrix),
	}
}

func (m *memRepo) LoadCards(string) ([]models.Card, error) {
	out := make([]models.Card, 0, len(m.cards))
	for _, c := range m.cards {
		out = append(out, c)
	}
	return out, nil
}

func (m *memRepo) SaveCards(_ string, cards ...models.Card) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	for _, c := range cards {
		m.cards[c.Key()] = c
		m.cardWrites++
	}
	return nil
}

func (m *memRepo) LoadConfusion(string) (models.ConfusionMatrix, error) {
	out := make(models.ConfusionMatrix)
	for target, row := range m.confusion {
		for other, n := range row {
			if out[target] == nil {
				out[target] = make(map[string]int)
			}
			out[target][other] = n
		}
	}
	return out, nil
}

func (m *memRepo) SaveConfusion(_, targetID, otherID string, count int) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.confusion[targetID] == nil {
		m.confusion[targetID] = make(map[string]int)
	}
	m.confusion[targetID][otherID] = count
	return nil
}

func (m *memRepo) LoadActiveChallenge(string) (*models.ActiveChallenge, error) {
	if m.loadActiveErr != nil {
		return nil, m.loadActiveErr
	}
	if m.active == nil {
		return nil, nil
	}
	c := *m.active
	c.OptionIDs = append([]string(nil), m.active.OptionIDs...)
	c.EliminatedIDs = append([]string(nil), m.active.EliminatedIDs...)
	return &c, nil
}

func (m *memRepo) SaveActiveChallenge(_ string, c *models.ActiveChallenge) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *c
	cp.OptionIDs = append([]string(nil), c.OptionIDs...)
	cp.EliminatedIDs = append([]string(nil), c.EliminatedIDs...)
	m.active = &cp
	return nil
}

func (m *memRepo) ClearActiveChallenge(string) error {
	m.active = nil
	return nil
}

func (m *memRepo) LoadStreak(string) (int, error) { return m.streak, nil }

func (m *memRepo) SaveStreak(_ string, streak int) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.streak = streak
	return nil
}

// stepGrader is a predictable stand-in for FSRS.
type stepGrader struct{}

func (stepGrader) Review(card models.Card, grade srs.Grade, now time.Time) models.Card {
	if card.IsNew() {
		card.Difficulty = 5
	}
	last := now
	card.LastReview = &last
	card.Reps++
	if grade == srs.Good {
		card.State = models.StateReview
		card.Difficulty = clamp(card.Difficulty - 1)
		card.Due = now.Add(24 * time.Hour)
		return card
	}
	card.Lapses++
	card.State = models.StateRelearning
	card.Difficulty = clamp(card.Difficulty + 2)
	card.Due = now.Add(10 * time.Minute)
	return card
}

func clamp(d float64) float64 {
	if d < 1 {
		return 1
	}
	if d > 10 {
		return 10
	}
	return d
}

var errStorage = errors.New("disk full")

var testNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func person(id, name, pronouns string) models.Person {
	return models.Person{ID: id, Name: name, ImagePath: "/img/" + id + ".jpg", Pronouns: pronouns}
}

func fourPeople() []models.Person {
	return []models.Person{
		person("A", "Ada Lovelace", "she/her"),
		person("B", "Bob Barker", "he/him"),
		person("C", "Cleo Patra", "she/her"),
		person("D", "Dan Brown", "he/him"),
	}
}

func seeded(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// pick builds a choice for the round currently on screen
func pick(s *Session, optionID string) ChoiceEvent {
	ev := ChoiceEvent{OptionID: optionID}
	if active := s.Active(); active != nil {
		ev.RoundID = active.RoundID
	}
	return ev
}

func newTestSession(t *testing.T, roster []models.Person, repo *memRepo, seed int64) *Session {
	t.Helper()
	s, err := NewSession("player-1", roster, repo, stepGrader{}, Options{Rand: seeded(seed)})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}
