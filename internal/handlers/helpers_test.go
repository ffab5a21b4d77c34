package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"namegame/internal/game"
	"namegame/internal/models"
	"namegame/internal/security"
)

const testToken = "good-token"

type fakeSessions struct{}

func (fakeSessions) ValidateSession(token string) (*models.Session, *models.Player, error) {
	if token != testToken {
		return nil, nil, errors.New("session not found")
	}
	return &models.Session{ID: "sess-1", PlayerID: "p1", Name: "Ada", ExpiresAt: time.Now().Add(time.Hour)},
		&models.Player{ID: "p1", Name: "Ada", Provider: RecurseProvider},
		nil
}

func newTestMiddleware(t *testing.T) *Middleware {
	t.Helper()
	keys, err := security.NewKeyring("handler-test-secret")
	if err != nil {
		t.Fatalf("NewKeyring() error = %v", err)
	}
	return NewMiddleware(fakeSessions{}, security.NewCSRFGenerator(keys))
}

func withSessionCookie(r *http.Request) *http.Request {
	r.AddCookie(&http.Cookie{Name: security.SessionCookieName, Value: testToken})
	return r
}

// fakeGame serves two-option rounds whose answer is "1". Round n is named
// "round-n"; a round stays open until it is answered correctly.
type fakeGame struct {
	mu     sync.Mutex
	err    error
	rounds int
	open   bool
	graded []string
}

func (f *fakeGame) roundID() string { return fmt.Sprintf("round-%d", f.rounds) }

func (f *fakeGame) CurrentChallenge(ctx context.Context, playerID string) (*game.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if !f.open {
		f.rounds++
		f.open = true
	}
	return &game.Challenge{
		RoundID: f.roundID(),
		Mode:    models.FaceToName,
		Prompt:  game.Prompt{ImagePath: "/img/1.jpg"},
		Choices: []game.Choice{
			{ID: "1", Key: 1, Label: "Ada"},
			{ID: "2", Key: 2, Label: "Bob"},
		},
	}, nil
}

func (f *fakeGame) Choose(ctx context.Context, playerID string, ev game.ChoiceEvent) (*game.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return nil, game.ErrNoActiveChallenge
	}
	if ev.RoundID != f.roundID() {
		return nil, game.ErrStaleChoice
	}
	if ev.OptionID != "1" && ev.OptionID != "2" {
		return nil, game.ErrUnknownOption
	}
	f.graded = append(f.graded, ev.RoundID+":"+ev.OptionID)
	correct := ev.OptionID == "1"
	if correct {
		f.open = false
	}
	return &game.Outcome{Correct: correct, FirstTry: correct, TargetID: "1", ChosenID: ev.OptionID, RoundOver: correct}, nil
}

func (f *fakeGame) gradedChoices() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.graded...)
}

func (f *fakeGame) Stats(ctx context.Context, playerID string) (game.Stats, error) {
	if f.err != nil {
		return game.Stats{}, f.err
	}
	return game.Stats{People: 2, Cards: 4, New: 4}, nil
}

func (f *fakeGame) roundCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rounds
}

type fakeRosterCache struct {
	people []models.Person
	err    error
	ttl    time.Duration
}

func (f *fakeRosterCache) Get(ctx context.Context) ([]models.Person, error) {
	return f.people, f.err
}

func (f *fakeRosterCache) TTL() time.Duration { return f.ttl }

type fakeLogin struct {
	provider, subject, email, name string
	err                            error
}

func (f *fakeLogin) OAuthLogin(provider, subject, email, name string) (*models.Session, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	f.provider, f.subject, f.email, f.name = provider, subject, email, name
	return &models.Session{ID: "sess-2", PlayerID: "p2", Name: name, ExpiresAt: time.Now().Add(time.Hour)}, "signed-token", nil
}
