package models

import (
	"testing"
	"time"
)

func TestSessionIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "future expiration",
			expiresAt: time.Now().Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "just expired",
			expiresAt: time.Now().Add(-1 * time.Second),
			want:      true,
		},
		{
			name:      "expired yesterday",
			expiresAt: time.Now().Add(-24 * time.Hour),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := Session{
				ID:        "test-session",
				PlayerID:  "p1",
				ExpiresAt: tt.expiresAt,
			}
			result := session.IsExpired()
			if result != tt.want {
				t.Errorf("Session.IsExpired() = %v, want %v", result, tt.want)
			}
		})
	}
}

func TestReminderDue(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	recent := now.Add(-time.Hour)
	old := now.Add(-25 * time.Hour)

	tests := []struct {
		name   string
		player Player
		want   bool
	}{
		{name: "no email", player: Player{}, want: false},
		{name: "never reminded", player: Player{Email: "a@example.com"}, want: true},
		{name: "reminded recently", player: Player{Email: "a@example.com", LastRemindedAt: &recent}, want: false},
		{name: "reminded long ago", player: Player{Email: "a@example.com", LastRemindedAt: &old}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.player.ReminderDue(now, 24*time.Hour); got != tt.want {
				t.Errorf("ReminderDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUsablePeople(t *testing.T) {
	roster := []Person{
		{ID: "1", Name: "Ada", ImagePath: "/1.jpg"},
		{ID: "2", Name: "  ", ImagePath: "/2.jpg"},
		{ID: "3", Name: "Cleo", ImagePath: ""},
		{ID: "1", Name: "Ada again", ImagePath: "/1b.jpg"},
		{ID: "4", Name: "Dan", ImagePath: "/4.jpg"},
	}

	got := UsablePeople(roster)

	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "4" {
		t.Errorf("UsablePeople() = %+v, want people 1 and 4", got)
	}
	if got[0].Name != "Ada" {
		t.Errorf("first occurrence should win, got %q", got[0].Name)
	}
}

func TestCardKeys(t *testing.T) {
	tests := []struct {
		key       string
		wantID    string
		wantDir   Direction
		wantError bool
	}{
		{key: "42:face-to-name", wantID: "42", wantDir: FaceToName},
		{key: "a:b:name-to-face", wantID: "a:b", wantDir: NameToFace},
		{key: "42:sideways", wantError: true},
		{key: ":face-to-name", wantError: true},
		{key: "42:", wantError: true},
		{key: "42", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			id, dir, err := ParseCardKey(tt.key)
			if (err != nil) != tt.wantError {
				t.Fatalf("ParseCardKey() error = %v, wantError %v", err, tt.wantError)
			}
			if tt.wantError {
				return
			}
			if id != tt.wantID || dir != tt.wantDir {
				t.Errorf("ParseCardKey() = %q, %q", id, dir)
			}
			if CardKey(id, dir) != tt.key {
				t.Errorf("CardKey() = %q, want %q", CardKey(id, dir), tt.key)
			}
		})
	}
}

func TestCardDueness(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

	fresh := NewCard("1", FaceToName, now)
	if !fresh.IsNew() || fresh.IsDue(now) {
		t.Errorf("new card: IsNew = %v, IsDue = %v", fresh.IsNew(), fresh.IsDue(now))
	}

	reviewed := fresh
	reviewed.State = StateReview
	reviewed.Due = now.Add(time.Hour)
	if reviewed.IsDue(now) {
		t.Error("card due in an hour should not be due now")
	}
	if !reviewed.IsDue(now.Add(time.Hour)) {
		t.Error("card should be due at its due time")
	}
}

func TestActiveChallengeOptions(t *testing.T) {
	c := &ActiveChallenge{TargetID: "1", OptionIDs: []string{"3", "1", "2"}, EliminatedIDs: []string{"3"}}

	if !c.HasOption("2") || c.HasOption("9") {
		t.Error("HasOption() mismatch")
	}
	if !c.IsEliminated("3") || c.IsEliminated("2") {
		t.Error("IsEliminated() mismatch")
	}
}

func TestConfusionMatrix(t *testing.T) {
	m := ConfusionMatrix{}

	if got := m.Increment("a", "b"); got != 1 {
		t.Errorf("Increment() = %d, want 1", got)
	}
	m.Increment("a", "b")
	m.Increment("b", "a")

	if m.Count("a", "b") != 2 || m.Count("b", "a") != 1 || m.Count("c", "a") != 0 {
		t.Errorf("matrix = %v", m)
	}
}
