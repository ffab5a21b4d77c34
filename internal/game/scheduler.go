package game

import (
	"math/rand"
	"time"

	"namegame/internal/models"
)

type candidate struct {
	person    models.Person
	direction models.Direction
	card      models.Card
}

// SelectNextCard picks the (person, direction) to test next.
//
// The most overdue reviewed card wins; with nothing due a random new card is
// picked; when every card is scheduled in the future the soonest one is used so
// the game never stalls. The roster must hold at least one person.
func SelectNextCard(roster []models.Person, cards *CardStore, now time.Time, rng *rand.Rand) (models.Person, models.Direction) {
	candidates := make([]candidate, 0, len(roster)*len(models.Directions))
	for _, p := range roster {
		for _, d := range models.Directions {
			candidates = append(candidates, candidate{person: p, direction: d, card: cards.Get(p.ID, d, now)})
		}
	}

	var due, fresh []candidate
	for _, c := range candidates {
		switch {
		case c.card.IsNew():
			fresh = append(fresh, c)
		case c.card.IsDue(now):
			due = append(due, c)
		}
	}

	var selected candidate
	switch {
	case len(due) > 0:
		selected = soonest(due)
	case len(fresh) > 0:
		selected = fresh[rng.Intn(len(fresh))]
	default:
		selected = soonest(candidates)
	}
	return selected.person, selected.direction
}

// soonest returns the candidate with the earliest due time, first one on ties
func soonest(candidates []candidate) candidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.card.Due.Before(best.card.Due) {
			best = c
		}
	}
	return best
}
