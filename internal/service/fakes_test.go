package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"namegame/internal/models"
	"namegame/internal/srs"
)

type fakeRoster struct {
	people []models.Person
	err    error
	calls  int
}

func (f *fakeRoster) Get(ctx context.Context) ([]models.Person, error) {
	f.calls++
	return f.people, f.err
}

func testRoster() []models.Person {
	return []models.Person{
		{ID: "1", Name: "Ada Lovelace", ImagePath: "/img/1.jpg", Pronouns: "she/her"},
		{ID: "2", Name: "Bob Barker", ImagePath: "/img/2.jpg", Pronouns: "he/him"},
		{ID: "3", Name: "Cleo Patra", ImagePath: "/img/3.jpg", Pronouns: "she/her"},
		{ID: "4", Name: "Dan Brown", ImagePath: "/img/4.jpg", Pronouns: "he/him"},
	}
}

// memProgress is an in-memory game.ProgressRepository
type memProgress struct {
	mu        sync.Mutex
	cards     map[string]map[string]models.Card
	confusion map[string]models.ConfusionMatrix
	active    map[string]*models.ActiveChallenge
	streaks   map[string]int
	due       map[string]int
	dueErr    error
}

func newMemProgress() *memProgress {
	return &memProgress{
		cards:     make(map[string]map[string]models.Card),
		confusion: make(map[string]models.ConfusionMatrix),
		active:    make(map[string]*models.ActiveChallenge),
		streaks:   make(map[string]int),
		due:       make(map[string]int),
	}
}

func (m *memProgress) LoadCards(playerID string) ([]models.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Card
	for _, c := range m.cards[playerID] {
		out = append(out, c)
	}
	return out, nil
}

func (m *memProgress) SaveCards(playerID string, cards ...models.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cards[playerID] == nil {
		m.cards[playerID] = make(map[string]models.Card)
	}
	for _, c := range cards {
		m.cards[playerID][c.Key()] = c
	}
	return nil
}

func (m *memProgress) LoadConfusion(playerID string) (models.ConfusionMatrix, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.confusion[playerID], nil
}

func (m *memProgress) SaveConfusion(playerID, targetID, otherID string, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.confusion[playerID] == nil {
		m.confusion[playerID] = models.ConfusionMatrix{}
	}
	if m.confusion[playerID][targetID] == nil {
		m.confusion[playerID][targetID] = map[string]int{}
	}
	m.confusion[playerID][targetID][otherID] = count
	return nil
}

func (m *memProgress) LoadActiveChallenge(playerID string) (*models.ActiveChallenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active[playerID], nil
}

func (m *memProgress) SaveActiveChallenge(playerID string, c *models.ActiveChallenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *c
	copied.OptionIDs = append([]string(nil), c.OptionIDs...)
	copied.EliminatedIDs = append([]string(nil), c.EliminatedIDs...)
	m.active[playerID] = &copied
	return nil
}

func (m *memProgress) ClearActiveChallenge(playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, playerID)
	return nil
}

func (m *memProgress) LoadStreak(playerID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streaks[playerID], nil
}

func (m *memProgress) SaveStreak(playerID string, streak int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streaks[playerID] = streak
	return nil
}

func (m *memProgress) CountDueCards(playerID string, now time.Time) (int, error) {
	if m.dueErr != nil {
		return 0, m.dueErr
	}
	return m.due[playerID], nil
}

// dayGrader moves Good answers a day out and Again answers ten minutes out
type dayGrader struct{}

func (dayGrader) Review(card models.Card, grade srs.Grade, now time.Time) models.Card {
	if grade == srs.Good {
		card.State = models.StateReview
		card.Due = now.Add(24 * time.Hour)
	} else {
		card.State = models.StateRelearning
		card.Due = now.Add(10 * time.Minute)
		card.Lapses++
	}
	card.Reps++
	return card
}

type fakePlayers struct {
	players  map[string]*models.Player
	upserted int
	reminded map[string]time.Time
	listErr  error
	markErr  error
}

func newFakePlayers(players ...models.Player) *fakePlayers {
	f := &fakePlayers{players: make(map[string]*models.Player), reminded: make(map[string]time.Time)}
	for i := range players {
		p := players[i]
		f.players[p.ID] = &p
	}
	return f
}

func (f *fakePlayers) UpsertPlayer(provider, providerID, name, email string) (*models.Player, error) {
	f.upserted++
	for _, p := range f.players {
		if p.Provider == provider && p.ProviderID == providerID {
			p.Name, p.Email = name, email
			return p, nil
		}
	}
	p := &models.Player{
		ID:         fmt.Sprintf("player-%d", len(f.players)+1),
		Provider:   provider,
		ProviderID: providerID,
		Name:       name,
		Email:      email,
	}
	f.players[p.ID] = p
	return p, nil
}

func (f *fakePlayers) GetPlayerByID(id string) (*models.Player, error) {
	return f.players[id], nil
}

func (f *fakePlayers) ListPlayersWithEmail() ([]models.Player, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Player
	for _, p := range f.players {
		if p.Email != "" {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePlayers) MarkReminded(id string, at time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.reminded[id] = at
	return nil
}

type sentMail struct {
	to    string
	name  string
	count int
}

type fakeMailer struct {
	enabled bool
	failFor string
	sent    []sentMail
}

func (f *fakeMailer) IsEnabled() bool { return f.enabled }

func (f *fakeMailer) SendReminderEmail(ctx context.Context, toEmail, toName string, dueCount int) error {
	if toEmail == f.failFor {
		return errors.New("mailbox unavailable")
	}
	f.sent = append(f.sent, sentMail{to: toEmail, name: toName, count: dueCount})
	return nil
}
