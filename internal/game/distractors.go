package game

import (
	"math/rand"
	"strings"

	"namegame/internal/models"
)

// ShortNameFunc projects a display name to the label shown on a choice.
// Two people with the same projection are never offered together.
type ShortNameFunc func(name string) string

// DefaultShortName uses the first name, keeping double first names such as
// "Mary Jo Smith" intact: three-part names keep their first two parts.
func DefaultShortName(name string) string {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0, 1:
		return strings.TrimSpace(name)
	case 3:
		return parts[0] + " " + parts[1]
	default:
		return parts[0]
	}
}

// masteryGrade maps a card's mastery to 1 (poor or unseen) .. 4 (excellent)
func masteryGrade(card models.Card) int {
	if card.IsNew() {
		return 1
	}
	switch d := card.Difficulty; {
	case d < 3:
		return 4
	case d < 5:
		return 3
	case d < 7:
		return 2
	default:
		return 1
	}
}

// CandidateCount returns how many options, target included, to show for a card.
// Better known cards get more options: 2, 4, 6 or 8, never more than the
// roster holds, always even and at least 2.
func CandidateCount(card models.Card, rosterSize int) int {
	requested := masteryGrade(card) * 2
	if requested > rosterSize {
		requested = rosterSize
	}
	if requested%2 != 0 {
		requested--
	}
	if requested < 2 {
		return 2
	}
	return requested
}

// SelectDistractors picks up to count wrong answers for target.
//
// People the player already confused with the target come first, most
// confused first; then people with the same pronouns; then anyone. No two
// selected people, nor any of them and the target, share a short name.
func SelectDistractors(target models.Person, roster []models.Person, confusion models.ConfusionMatrix, count int, shortName ShortNameFunc, rng *rand.Rand) []models.Person {
	if shortName == nil {
		shortName = DefaultShortName
	}
	if limit := len(roster) - 1; count > limit {
		count = limit
	}
	if count <= 0 {
		return nil
	}

	byID := make(map[string]models.Person, len(roster))
	for _, p := range roster {
		byID[p.ID] = p
	}

	picked := make([]models.Person, 0, count)
	chosen := map[string]bool{target.ID: true}
	usedNames := map[string]bool{shortName(target.Name): true}

	try := func(p models.Person) {
		if len(picked) >= count || chosen[p.ID] {
			return
		}
		name := shortName(p.Name)
		if usedNames[name] {
			return
		}
		picked = append(picked, p)
		chosen[p.ID] = true
		usedNames[name] = true
	}

	for _, id := range rankConfusions(confusion, target.ID) {
		if p, ok := byID[id]; ok {
			try(p)
		}
	}

	shuffled := make([]models.Person, len(roster))
	copy(shuffled, roster)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	targetPronouns := normalizePronouns(target.Pronouns)
	for _, p := range shuffled {
		if normalizePronouns(p.Pronouns) == targetPronouns {
			try(p)
		}
	}
	for _, p := range shuffled {
		try(p)
	}

	return picked
}

func normalizePronouns(pronouns string) string {
	return strings.ToLower(strings.TrimSpace(pronouns))
}
