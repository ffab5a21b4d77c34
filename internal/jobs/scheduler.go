// Package jobs runs the server's periodic background work.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"namegame/internal/models"
)

// RosterRefresher reloads the cached roster
type RosterRefresher interface {
	Refresh(ctx context.Context) ([]models.Person, error)
}

// Reminder emails players with due cards
type Reminder interface {
	SendDueReminders(ctx context.Context) (int, error)
}

// Reaper evicts idle in-memory state and reports how much it removed
type Reaper interface {
	ReapIdle() int
}

// Cleaner drops expired entries and reports how many it removed
type Cleaner interface {
	Cleanup() int
}

// Config selects which jobs run and how often. A zero interval or nil
// target disables a job.
type Config struct {
	Roster         RosterRefresher
	RosterInterval time.Duration
	Reminder       Reminder
	ReminderEvery  time.Duration
	Sessions       Reaper
	ReapEvery      time.Duration
	RateLimiter    Cleaner
	RateLimitPurge time.Duration
	JobTimeout     time.Duration
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	cfg       Config
}

// New creates a scheduler and registers the configured jobs
func New(cfg Config) (*Scheduler, error) {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = time.Minute
	}
	s := &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		cfg:       cfg,
	}
	s.scheduler.SingletonModeAll()

	if cfg.Roster != nil && cfg.RosterInterval > 0 {
		if _, err := s.scheduler.Every(cfg.RosterInterval).WaitForSchedule().Do(s.RefreshRoster); err != nil {
			return nil, err
		}
	}
	if cfg.Reminder != nil && cfg.ReminderEvery > 0 {
		if _, err := s.scheduler.Every(cfg.ReminderEvery).Do(s.SendReminders); err != nil {
			return nil, err
		}
	}
	if cfg.Sessions != nil && cfg.ReapEvery > 0 {
		if _, err := s.scheduler.Every(cfg.ReapEvery).WaitForSchedule().Do(s.ReapSessions); err != nil {
			return nil, err
		}
	}
	if cfg.RateLimiter != nil && cfg.RateLimitPurge > 0 {
		if _, err := s.scheduler.Every(cfg.RateLimitPurge).WaitForSchedule().Do(s.PurgeRateLimits); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Start begins running all scheduled tasks in the background
func (s *Scheduler) Start() {
	log.Printf("Starting scheduler with %d jobs", s.scheduler.Len())
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// Len returns the number of registered jobs
func (s *Scheduler) Len() int {
	return s.scheduler.Len()
}

// RefreshRoster reloads the roster ahead of expiry so players rarely wait on the upstream
func (s *Scheduler) RefreshRoster() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	people, err := s.cfg.Roster.Refresh(ctx)
	if err != nil {
		log.Printf("Warning: roster refresh failed: %v", err)
		return
	}
	log.Printf("Roster refreshed: %d people", len(people))
}

// SendReminders emails players with cards waiting
func (s *Scheduler) SendReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	sent, err := s.cfg.Reminder.SendDueReminders(ctx)
	if err != nil {
		log.Printf("Error sending reminders: %v", err)
		return
	}
	if sent > 0 {
		log.Printf("Sent %d reminder emails", sent)
	}
}

// ReapSessions evicts idle game sessions
func (s *Scheduler) ReapSessions() {
	if n := s.cfg.Sessions.ReapIdle(); n > 0 {
		log.Printf("Evicted %d idle game sessions", n)
	}
}

// PurgeRateLimits drops rate limiter buckets whose window has passed
func (s *Scheduler) PurgeRateLimits() {
	s.cfg.RateLimiter.Cleanup()
}
