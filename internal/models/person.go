package models

import "strings"

// Person is a roster entry as served by the directory proxy
type Person struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ImagePath string `json:"image_path"`
	Pronouns  string `json:"pronouns"`
}

// Usable reports whether the person has both a name and an image
func (p Person) Usable() bool {
	return strings.TrimSpace(p.Name) != "" && strings.TrimSpace(p.ImagePath) != ""
}

// UsablePeople filters a roster down to people that can appear in a challenge,
// dropping duplicate ids and keeping roster order
func UsablePeople(roster []Person) []Person {
	seen := make(map[string]bool, len(roster))
	usable := make([]Person, 0, len(roster))
	for _, p := range roster {
		if !p.Usable() || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		usable = append(usable, p)
	}
	return usable
}
