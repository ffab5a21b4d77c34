package directory

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"namegame/internal/models"
)

// FileSource reads a roster from a .json, .csv or .xlsx file. Tabular files
// carry a header row naming the id, name, image_path and pronouns columns.
type FileSource struct {
	Path string
}

// NewFileSource creates a file-backed roster source
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Fetch reads the whole file on every call
func (s *FileSource) Fetch(ctx context.Context) ([]models.Person, error) {
	switch ext := strings.ToLower(filepath.Ext(s.Path)); ext {
	case ".json":
		return s.readJSON()
	case ".csv":
		return s.readCSV()
	case ".xlsx":
		return s.readExcel()
	default:
		return nil, fmt.Errorf("unsupported roster file type %q", ext)
	}
}

func (s *FileSource) readJSON() ([]models.Person, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}
	var profiles []profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse roster file: %w", err)
	}
	people := make([]models.Person, 0, len(profiles))
	for _, p := range profiles {
		people = append(people, p.person())
	}
	return people, nil
}

func (s *FileSource) readCSV() ([]models.Person, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse roster file: %w", err)
	}
	return peopleFromRows(rows)
}

func (s *FileSource) readExcel() ([]models.Person, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("roster workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return peopleFromRows(rows)
}

// peopleFromRows maps a header row plus data rows to people
func peopleFromRows(rows [][]string) ([]models.Person, error) {
	if len(rows) == 0 {
		return []models.Person{}, nil
	}

	columns := make(map[string]int)
	for i, h := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"id", "name"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("roster header is missing the %q column", required)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	people := make([]models.Person, 0, len(rows)-1)
	for _, row := range rows[1:] {
		id := cell(row, "id")
		if id == "" {
			continue
		}
		people = append(people, models.Person{
			ID:        id,
			Name:      cell(row, "name"),
			ImagePath: cell(row, "image_path"),
			Pronouns:  cell(row, "pronouns"),
		})
	}
	return people, nil
}
