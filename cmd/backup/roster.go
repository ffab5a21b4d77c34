package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"namegame/internal/config"
	"namegame/internal/directory"
	"namegame/internal/game"
	"namegame/internal/models"
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Load a roster and report what the game can use",
	Long: `Loads the roster from --file (.json, .csv or .xlsx) or, without it, from the
Recurse directory using RC_TOKEN. Reports people without a name or photo and
short names shared by several people.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		asJSON, _ := cmd.Flags().GetBool("json")

		var source directory.Source
		if file != "" {
			source = directory.NewFileSource(file)
		} else {
			cfg := config.Load()
			source = directory.NewClient(cfg.RCAPIBase, cfg.RCToken)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()
		people, err := source.Fetch(ctx)
		if err != nil {
			return fmt.Errorf("failed to load roster: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			return encoder.Encode(people)
		}
		writeRosterReport(out, summarizeRoster(people, game.DefaultShortName))
		return nil
	},
}

func init() {
	rosterCmd.Flags().StringP("file", "f", "", "Roster file instead of the directory API")
	rosterCmd.Flags().Bool("json", false, "Print the roster as JSON")
}

type rosterSummary struct {
	Total    int
	Usable   int
	Unusable []models.Person
	Shared   map[string][]string
}

// summarizeRoster counts usable people and groups usable names by short name
func summarizeRoster(people []models.Person, shortName game.ShortNameFunc) rosterSummary {
	usable := models.UsablePeople(people)
	summary := rosterSummary{
		Total:  len(people),
		Usable: len(usable),
		Shared: make(map[string][]string),
	}
	for _, p := range people {
		if !p.Usable() {
			summary.Unusable = append(summary.Unusable, p)
		}
	}

	byShort := make(map[string][]string)
	for _, p := range usable {
		short := shortName(p.Name)
		byShort[short] = append(byShort[short], p.Name)
	}
	for short, names := range byShort {
		if len(names) > 1 {
			summary.Shared[short] = names
		}
	}
	return summary
}

func writeRosterReport(w io.Writer, s rosterSummary) {
	fmt.Fprintf(w, "People: %d (%d usable)\n", s.Total, s.Usable)
	if s.Usable < 2 {
		fmt.Fprintln(w, "Not enough usable people to play")
	}

	if len(s.Unusable) > 0 {
		fmt.Fprintln(w, "\nMissing a name or photo:")
		for _, p := range s.Unusable {
			name := p.Name
			if strings.TrimSpace(name) == "" {
				name = "(no name)"
			}
			fmt.Fprintf(w, "  %s  %s\n", p.ID, name)
		}
	}

	if len(s.Shared) > 0 {
		fmt.Fprintln(w, "\nShared short names (shown in full when they meet in one round):")
		shorts := make([]string, 0, len(s.Shared))
		for short := range s.Shared {
			shorts = append(shorts, short)
		}
		sort.Strings(shorts)
		for _, short := range shorts {
			fmt.Fprintf(w, "  %s: %s\n", short, strings.Join(s.Shared[short], ", "))
		}
	}
}
