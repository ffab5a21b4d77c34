package game

// streakNames are announced when a streak reaches the key exactly
var streakNames = map[int]string{
	10:  "MATCHING SPREE",
	25:  "WICKED",
	50:  "OCT-TASTIC",
	75:  "R-R-R-RECURSIVE",
	100: "GODLIKE",
}

// Announcement returns the text to announce for a streak, or "" for none.
// Past 100 every multiple of 25 is announced as GODLIKE again.
func Announcement(streak int) string {
	if name, ok := streakNames[streak]; ok {
		return name
	}
	if streak > 100 && streak%25 == 0 {
		return streakNames[100]
	}
	return ""
}

// StreakDisplay describes how the streak meter is drawn
type StreakDisplay struct {
	Visible  bool   `json:"visible"`
	Progress int    `json:"progress"`
	Color    string `json:"color"`
	Shake    int    `json:"shake"`
}

// DisplayFor computes the streak meter: the bar fills every 10 answers,
// shifts green -> yellow -> red, and shakes harder every 5 answers up to 5px.
func DisplayFor(streak int) StreakDisplay {
	if streak <= 0 {
		return StreakDisplay{}
	}

	progress := streak % 10
	if progress == 0 {
		progress = 10
	}

	color := "#28a745"
	switch {
	case streak >= 20:
		color = "#dc3545"
	case streak >= 10:
		color = "#ffc107"
	}

	shake := streak / 5
	if shake > 5 {
		shake = 5
	}

	return StreakDisplay{
		Visible:  true,
		Progress: progress * 10,
		Color:    color,
		Shake:    shake,
	}
}
