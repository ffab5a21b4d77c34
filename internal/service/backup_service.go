package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"time"

	"namegame/internal/models"
	"namegame/internal/repository"
)

// BackupData represents the complete progress backup structure
type BackupData struct {
	Version    string         `json:"version"`
	ExportedAt time.Time      `json:"exported_at"`
	Players    []PlayerBackup `json:"players"`
}

// PlayerBackup is one player and all of their progress
type PlayerBackup struct {
	ID              string                  `json:"id"`
	Provider        string                  `json:"provider"`
	ProviderID      string                  `json:"provider_id"`
	Name            string                  `json:"name"`
	Email           string                  `json:"email"`
	CreatedAt       time.Time               `json:"created_at"`
	LastSeenAt      time.Time               `json:"last_seen_at"`
	LastRemindedAt  *time.Time              `json:"last_reminded_at,omitempty"`
	Streak          int                     `json:"streak"`
	Cards           []models.Card           `json:"cards"`
	Confusions      []ConfusionBackup       `json:"confusions"`
	ActiveChallenge *models.ActiveChallenge `json:"active_challenge,omitempty"`
}

// ConfusionBackup is one confusion matrix entry
type ConfusionBackup struct {
	TargetID string `json:"target_id"`
	OtherID  string `json:"other_id"`
	Count    int    `json:"count"`
}

// BackupService handles progress backup and restore operations
type BackupService struct {
	players  *repository.PlayerRepository
	progress *repository.ProgressRepository
}

// NewBackupService creates a new backup service
func NewBackupService(players *repository.PlayerRepository, progress *repository.ProgressRepository) *BackupService {
	return &BackupService{players: players, progress: progress}
}

// Export writes a complete backup to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting progress export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Progress exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter writes a complete backup as indented JSON
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now().UTC(),
	}

	players, err := s.players.ListPlayers()
	if err != nil {
		return fmt.Errorf("failed to export players: %w", err)
	}
	cards := 0
	for _, p := range players {
		pb, err := s.exportPlayer(p)
		if err != nil {
			return fmt.Errorf("failed to export player %s: %w", p.ID, err)
		}
		cards += len(pb.Cards)
		backup.Players = append(backup.Players, pb)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported: %d players, %d cards", len(backup.Players), cards)
	return nil
}

// Import restores progress from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting progress import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores progress from a backup reader. Players already
// present keep their record but have their progress replaced.
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	for _, pb := range backup.Players {
		if err := s.importPlayer(pb); err != nil {
			return fmt.Errorf("failed to import player %s: %w", pb.ID, err)
		}
	}

	log.Printf("Progress import completed successfully: %d players", len(backup.Players))
	return nil
}

func (s *BackupService) exportPlayer(p models.Player) (PlayerBackup, error) {
	pb := PlayerBackup{
		ID:             p.ID,
		Provider:       p.Provider,
		ProviderID:     p.ProviderID,
		Name:           p.Name,
		Email:          p.Email,
		CreatedAt:      p.CreatedAt,
		LastSeenAt:     p.LastSeenAt,
		LastRemindedAt: p.LastRemindedAt,
	}

	var err error
	if pb.Cards, err = s.progress.LoadCards(p.ID); err != nil {
		return pb, err
	}
	if pb.Streak, err = s.progress.LoadStreak(p.ID); err != nil {
		return pb, err
	}
	matrix, err := s.progress.LoadConfusion(p.ID)
	if err != nil {
		return pb, err
	}
	pb.Confusions = flattenConfusions(matrix)

	active, err := s.progress.LoadActiveChallenge(p.ID)
	if err != nil {
		// a corrupt round is not worth failing the backup over
		log.Printf("Warning: skipping stored challenge for player %s: %v", p.ID, err)
	} else {
		pb.ActiveChallenge = active
	}
	return pb, nil
}

func (s *BackupService) importPlayer(pb PlayerBackup) error {
	existing, err := s.players.GetPlayerByID(pb.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		err := s.players.InsertPlayer(&models.Player{
			ID:             pb.ID,
			Name:           pb.Name,
			Email:          pb.Email,
			Provider:       pb.Provider,
			ProviderID:     pb.ProviderID,
			CreatedAt:      pb.CreatedAt,
			LastSeenAt:     pb.LastSeenAt,
			LastRemindedAt: pb.LastRemindedAt,
		})
		if err != nil {
			return err
		}
	} else if err := s.progress.DeleteProgress(pb.ID); err != nil {
		return err
	}

	if err := s.progress.SaveCards(pb.ID, pb.Cards...); err != nil {
		return err
	}
	for _, c := range pb.Confusions {
		if err := s.progress.SaveConfusion(pb.ID, c.TargetID, c.OtherID, c.Count); err != nil {
			return err
		}
	}
	if err := s.progress.SaveStreak(pb.ID, pb.Streak); err != nil {
		return err
	}
	if pb.ActiveChallenge != nil {
		if err := s.progress.SaveActiveChallenge(pb.ID, pb.ActiveChallenge); err != nil {
			return err
		}
	}
	return nil
}

// flattenConfusions lists matrix entries ordered by target then other id
func flattenConfusions(matrix models.ConfusionMatrix) []ConfusionBackup {
	var out []ConfusionBackup
	for target, row := range matrix {
		for other, count := range row {
			out = append(out, ConfusionBackup{TargetID: target, OtherID: other, Count: count})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TargetID != out[j].TargetID {
			return out[i].TargetID < out[j].TargetID
		}
		return out[i].OtherID < out[j].OtherID
	})
	return out
}
