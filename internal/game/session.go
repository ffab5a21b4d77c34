package game

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"namegame/internal/models"
	"namegame/internal/srs"
)

// Options tune a session
type Options struct {
	// ShortName projects names to choice labels; DefaultShortName when nil
	ShortName ShortNameFunc
	// SymmetricConfusion also records target as confused for the chosen person
	SymmetricConfusion bool
	// Rand drives card and option shuffling; seeded from the clock when nil
	Rand *rand.Rand
}

// Session is one player's game state: roster, cards, confusions, streak and
// the round in progress. It is not safe for concurrent use; callers feed it
// one event at a time.
type Session struct {
	playerID  string
	roster    []models.Person
	people    map[string]models.Person
	repo      ProgressRepository
	grader    srs.Scheduler
	cards     *CardStore
	confusion *ConfusionTracker
	active    *models.ActiveChallenge
	streak    int
	shortName ShortNameFunc
	symmetric bool
	rng       *rand.Rand
}

// NewSession loads the player's persisted progress and binds it to a roster.
// Unreadable persisted records are logged and treated as absent.
func NewSession(playerID string, roster []models.Person, repo ProgressRepository, grader srs.Scheduler, opts Options) (*Session, error) {
	usable := models.UsablePeople(roster)
	if len(usable) < 2 {
		return nil, ErrRosterTooSmall
	}

	s := &Session{
		playerID:  playerID,
		roster:    usable,
		people:    make(map[string]models.Person, len(usable)),
		repo:      repo,
		grader:    grader,
		shortName: opts.ShortName,
		symmetric: opts.SymmetricConfusion,
		rng:       opts.Rand,
	}
	if s.shortName == nil {
		s.shortName = DefaultShortName
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	for _, p := range usable {
		s.people[p.ID] = p
	}

	cards, err := repo.LoadCards(playerID)
	if err != nil {
		log.Printf("Warning: failed to load cards for player %s: %v", playerID, err)
		cards = nil
	}
	s.cards = NewCardStore(playerID, cards, repo)

	matrix, err := repo.LoadConfusion(playerID)
	if err != nil {
		log.Printf("Warning: failed to load confusions for player %s: %v", playerID, err)
		matrix = nil
	}
	s.confusion = NewConfusionTracker(playerID, matrix, repo)

	active, err := repo.LoadActiveChallenge(playerID)
	if err != nil {
		log.Printf("Warning: discarding stored challenge for player %s: %v", playerID, err)
		active = nil
	}
	if active != nil && active.RoundID == "" {
		active.RoundID = uuid.NewString()
		if err := repo.SaveActiveChallenge(playerID, active); err != nil {
			log.Printf("Warning: failed to save challenge for player %s: %v", playerID, err)
		}
	}
	s.active = active

	streak, err := repo.LoadStreak(playerID)
	if err != nil {
		log.Printf("Warning: failed to load streak for player %s: %v", playerID, err)
		streak = 0
	}
	s.streak = streak

	return s, nil
}

// PlayerID returns the id of the player owning the session
func (s *Session) PlayerID() string { return s.playerID }

// Roster returns the usable people of the session
func (s *Session) Roster() []models.Person { return s.roster }

// Streak returns the current streak
func (s *Session) Streak() int { return s.streak }

// Cards exposes the card store
func (s *Session) Cards() *CardStore { return s.cards }

// Confusion exposes the confusion tracker
func (s *Session) Confusion() *ConfusionTracker { return s.confusion }

// Active returns a copy of the round in progress, or nil
func (s *Session) Active() *models.ActiveChallenge {
	if s.active == nil {
		return nil
	}
	c := *s.active
	c.OptionIDs = append([]string(nil), s.active.OptionIDs...)
	c.EliminatedIDs = append([]string(nil), s.active.EliminatedIDs...)
	return &c
}

// StartChallenge resumes the stored round when it still resolves against the
// roster, otherwise schedules a new card, builds its options and persists the
// round before returning it.
func (s *Session) StartChallenge(now time.Time) (*Challenge, error) {
	if s.active != nil {
		if s.resolvable(s.active) {
			challenge, err := RenderChallenge(s.active, s.people, s.shortName)
			if err == nil {
				challenge.Resumed = true
				return challenge, nil
			}
		}
		log.Printf("Warning: stored challenge for player %s no longer matches the roster, starting a new one", s.playerID)
		s.active = nil
	}

	target, direction := SelectNextCard(s.roster, s.cards, now, s.rng)
	card := s.cards.Get(target.ID, direction, now)
	count := CandidateCount(card, len(s.roster))

	distractors := SelectDistractors(target, s.roster, s.confusion.Matrix(), count-1, s.shortName, s.rng)
	if len(distractors) == 0 {
		// every other person shares the target's short name; labels fall back to full names
		distractors = s.anyOther(target.ID)
	}

	optionIDs := make([]string, 0, len(distractors)+1)
	optionIDs = append(optionIDs, target.ID)
	for _, p := range distractors {
		optionIDs = append(optionIDs, p.ID)
	}
	s.rng.Shuffle(len(optionIDs), func(i, j int) {
		optionIDs[i], optionIDs[j] = optionIDs[j], optionIDs[i]
	})

	s.active = &models.ActiveChallenge{
		RoundID:   uuid.NewString(),
		TargetID:  target.ID,
		Direction: direction,
		OptionIDs: optionIDs,
		CreatedAt: now,
	}
	if err := s.repo.SaveActiveChallenge(s.playerID, s.active); err != nil {
		log.Printf("Warning: failed to save challenge for player %s: %v", s.playerID, err)
	}

	return RenderChallenge(s.active, s.people, s.shortName)
}

// resolvable checks a stored round against the current roster
func (s *Session) resolvable(c *models.ActiveChallenge) bool {
	if !c.Direction.Valid() || len(c.OptionIDs) < 2 {
		return false
	}
	if _, ok := s.people[c.TargetID]; !ok {
		return false
	}
	targets := 0
	seen := make(map[string]bool, len(c.OptionIDs))
	for _, id := range c.OptionIDs {
		if _, ok := s.people[id]; !ok || seen[id] {
			return false
		}
		seen[id] = true
		if id == c.TargetID {
			targets++
		}
	}
	return targets == 1
}

func (s *Session) anyOther(targetID string) []models.Person {
	others := make([]models.Person, 0, len(s.roster)-1)
	for _, p := range s.roster {
		if p.ID != targetID {
			others = append(others, p)
		}
	}
	return []models.Person{others[s.rng.Intn(len(others))]}
}

// Challenge is the renderable description of a round
type Challenge struct {
	RoundID    string           `json:"round_id"`
	Mode       models.Direction `json:"mode"`
	Prompt     Prompt           `json:"prompt"`
	Choices    []Choice         `json:"choices"`
	HasErrored bool             `json:"has_errored"`
	Eliminated []string         `json:"eliminated,omitempty"`
	Resumed    bool             `json:"resumed"`
}

// Prompt is what the player is asked about: a face or a name
type Prompt struct {
	Name      string `json:"name,omitempty"`
	ImagePath string `json:"image_path,omitempty"`
}

// Choice is one selectable option; Key is its 1-based keyboard shortcut
type Choice struct {
	ID        string `json:"id"`
	Key       int    `json:"key"`
	Label     string `json:"label,omitempty"`
	ImagePath string `json:"image_path,omitempty"`
}

// RenderChallenge maps a round to what the client draws. Face-to-name rounds
// show the target's photo with name choices; name-to-face rounds show the
// name with photo choices. Labels use short names unless two options share one.
func RenderChallenge(active *models.ActiveChallenge, people map[string]models.Person, shortName ShortNameFunc) (*Challenge, error) {
	if shortName == nil {
		shortName = DefaultShortName
	}
	target, ok := people[active.TargetID]
	if !ok {
		return nil, fmt.Errorf("unknown target %s", active.TargetID)
	}

	options := make([]models.Person, 0, len(active.OptionIDs))
	nameCounts := make(map[string]int, len(active.OptionIDs))
	for _, id := range active.OptionIDs {
		p, ok := people[id]
		if !ok {
			return nil, fmt.Errorf("unknown option %s", id)
		}
		options = append(options, p)
		nameCounts[shortName(p.Name)]++
	}
	label := func(p models.Person) string {
		if short := shortName(p.Name); nameCounts[short] < 2 {
			return short
		}
		return p.Name
	}

	c := &Challenge{
		RoundID:    active.RoundID,
		Mode:       active.Direction,
		Choices:    make([]Choice, 0, len(options)),
		HasErrored: active.HasErrored,
		Eliminated: append([]string(nil), active.EliminatedIDs...),
	}
	if active.Direction == models.FaceToName {
		c.Prompt = Prompt{ImagePath: target.ImagePath}
	} else {
		c.Prompt = Prompt{Name: label(target)}
	}

	for i, p := range options {
		choice := Choice{ID: p.ID, Key: i + 1}
		if active.Direction == models.FaceToName {
			choice.Label = label(p)
		} else {
			choice.ImagePath = p.ImagePath
		}
		c.Choices = append(c.Choices, choice)
	}

	return c, nil
}
