package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"namegame/internal/config"
	"namegame/internal/database"
	"namegame/internal/repository"
	"namegame/internal/service"
)

var rootCmd = &cobra.Command{
	Use:   "backup",
	Short: "Name Game maintenance tool",
	Long: `Export and import player progress, and inspect rosters.

Database settings come from the environment (or .env):
  DATABASE_TYPE    sqlite, postgres, or mysql (default: sqlite)
  DB_PATH          SQLite database path (default: ./namegame.db)
  DATABASE_URL     PostgreSQL or MySQL connection URL`,
	SilenceUsage: true,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all player progress to a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		return runExport(output)
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import player progress from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		clearData, _ := cmd.Flags().GetBool("clear")
		yes, _ := cmd.Flags().GetBool("yes")
		return runImport(input, clearData, yes)
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	importCmd.Flags().StringP("input", "i", "", "Input file path (required)")
	importCmd.Flags().Bool("clear", false, "Clear existing data before import (WARNING: destructive)")
	importCmd.Flags().Bool("yes", false, "Skip the confirmation prompt for --clear")
	_ = importCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(rosterCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openDatabase connects and migrates the configured database
func openDatabase() (*database.DB, error) {
	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run migrations to ensure schema is up to date
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

func newBackupService(db *database.DB) *service.BackupService {
	return service.NewBackupService(repository.NewPlayerRepository(db), repository.NewProgressRepository(db))
}

func runExport(outputPath string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	// Generate default filename if not provided
	if outputPath == "" {
		timestamp := time.Now().Format("20060102_150405")
		outputPath = fmt.Sprintf("backup_%s.json", timestamp)
	}

	// Ensure directory exists
	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	log.Printf("Exporting progress to: %s", outputPath)
	if err := newBackupService(db).Export(outputPath); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if fileInfo, err := os.Stat(outputPath); err == nil {
		log.Printf("Export complete! File size: %.2f KB", float64(fileInfo.Size())/1024)
	}
	return nil
}

func runImport(inputPath string, clearData, yes bool) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", inputPath)
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if clearData {
		if !yes && !confirm("WARNING: This will delete all players and their progress. Type 'yes' to confirm: ") {
			log.Println("Import cancelled")
			return nil
		}

		log.Println("Clearing existing data...")
		if err := clearDatabase(db); err != nil {
			return fmt.Errorf("failed to clear database: %w", err)
		}
	}

	log.Printf("Importing progress from: %s", inputPath)
	if err := newBackupService(db).Import(inputPath); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	log.Println("Import complete!")
	return nil
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line) == "yes"
}

func clearDatabase(db *database.DB) error {
	// Delete in reverse order of dependencies
	tables := []string{
		"streaks",
		"active_challenges",
		"confusions",
		"card_states",
		"players",
	}

	return db.WithTx(func(tx *database.Tx) error {
		for _, table := range tables {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("failed to clear table %s: %w", table, err)
			}
			log.Printf("Cleared table: %s", table)
		}
		return nil
	})
}
