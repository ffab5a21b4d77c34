package service

import (
	"context"
	"log"
	"sync"
	"time"

	"namegame/internal/game"
	"namegame/internal/models"
	"namegame/internal/srs"
)

// RosterSource provides the current roster
type RosterSource interface {
	Get(ctx context.Context) ([]models.Person, error)
}

// GameOptions tune every session the service creates
type GameOptions struct {
	SymmetricConfusion bool
	ShortName          game.ShortNameFunc
	IdleTimeout        time.Duration
}

type playerSession struct {
	mu       sync.Mutex
	session  *game.Session
	lastUsed time.Time
}

// GameService keeps one game session per player. Events for the same player
// are applied one at a time; different players proceed in parallel.
type GameService struct {
	roster   RosterSource
	progress game.ProgressRepository
	grader   srs.Scheduler
	opts     GameOptions
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*playerSession
}

// NewGameService creates a new game service
func NewGameService(roster RosterSource, progress game.ProgressRepository, grader srs.Scheduler, opts GameOptions) *GameService {
	return &GameService{
		roster:   roster,
		progress: progress,
		grader:   grader,
		opts:     opts,
		now:      time.Now,
		sessions: make(map[string]*playerSession),
	}
}

// CurrentChallenge resumes the player's round in progress or starts a new one
func (s *GameService) CurrentChallenge(ctx context.Context, playerID string) (*game.Challenge, error) {
	var challenge *game.Challenge
	err := s.withSession(ctx, playerID, func(sess *game.Session, now time.Time) error {
		var err error
		challenge, err = sess.StartChallenge(now)
		return err
	})
	return challenge, err
}

// Choose grades a choice for the player's round in progress
func (s *GameService) Choose(ctx context.Context, playerID string, ev game.ChoiceEvent) (*game.Outcome, error) {
	var outcome *game.Outcome
	err := s.withSession(ctx, playerID, func(sess *game.Session, now time.Time) error {
		var err error
		outcome, err = sess.Choose(ev, now)
		return err
	})
	return outcome, err
}

// Stats summarises the player's progress
func (s *GameService) Stats(ctx context.Context, playerID string) (game.Stats, error) {
	var stats game.Stats
	err := s.withSession(ctx, playerID, func(sess *game.Session, now time.Time) error {
		stats = sess.Stats(now)
		return nil
	})
	return stats, err
}

// Forget drops the cached session of a player; the next event reloads it from storage
func (s *GameService) Forget(playerID string) {
	s.mu.Lock()
	delete(s.sessions, playerID)
	s.mu.Unlock()
}

// ReapIdle evicts sessions unused for longer than the idle timeout and
// returns how many were evicted. Persisted progress is untouched.
func (s *GameService) ReapIdle() int {
	if s.opts.IdleTimeout <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.opts.IdleTimeout)

	s.mu.Lock()
	defer s.mu.Unlock()
	reaped := 0
	for id, ps := range s.sessions {
		if !ps.mu.TryLock() {
			// busy right now, so not idle
			continue
		}
		if ps.lastUsed.Before(cutoff) {
			delete(s.sessions, id)
			reaped++
		}
		ps.mu.Unlock()
	}
	return reaped
}

// ActiveSessions returns the number of cached sessions
func (s *GameService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *GameService) withSession(ctx context.Context, playerID string, fn func(*game.Session, time.Time) error) error {
	ps, err := s.lock(ctx, playerID)
	if err != nil {
		return err
	}
	defer ps.mu.Unlock()

	now := s.now()
	ps.lastUsed = now
	return fn(ps.session, now)
}

// lock returns the player's session with its mutex held. A session evicted
// between lookup and locking is dropped and the lookup repeated, so events
// never run on a session that is no longer cached.
func (s *GameService) lock(ctx context.Context, playerID string) (*playerSession, error) {
	for {
		ps, err := s.session(ctx, playerID)
		if err != nil {
			return nil, err
		}
		ps.mu.Lock()
		s.mu.Lock()
		current := s.sessions[playerID] == ps
		s.mu.Unlock()
		if current {
			return ps, nil
		}
		ps.mu.Unlock()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}

// session returns the cached session of a player, building it from the
// roster and stored progress on first use
func (s *GameService) session(ctx context.Context, playerID string) (*playerSession, error) {
	s.mu.Lock()
	ps, ok := s.sessions[playerID]
	s.mu.Unlock()
	if ok {
		return ps, nil
	}

	roster, err := s.roster.Get(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := game.NewSession(playerID, roster, s.progress, s.grader, game.Options{
		ShortName:          s.opts.ShortName,
		SymmetricConfusion: s.opts.SymmetricConfusion,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[playerID]; ok {
		// another request built it first
		return existing, nil
	}
	ps = &playerSession{session: sess, lastUsed: s.now()}
	s.sessions[playerID] = ps
	log.Printf("Started game session for player %s with %d people", playerID, len(sess.Roster()))
	return ps, nil
}
