// Package catalog seeds the exercise catalog from JSON export files.
// The pipeline only reads the catalog; this importer is the write path
// that populates it.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/claude/pulselift/internal/models"
	"github.com/google/uuid"
)

// Store is the catalog write surface.
type Store interface {
	InsertExercise(ctx context.Context, ex models.Exercise) (bool, error)
}

// Stats tracks import progress.
type Stats struct {
	Inserted   int
	Duplicated int

	// Rejected names entries that failed validation, with the reason.
	Rejected []string
}

// entry is one catalog record as it appears in an export file. Body
// parts arrive as raw strings and may use the compound "back" alias.
type entry struct {
	Name               string         `json:"name"`
	Category           string         `json:"category"`
	PrimaryBodyParts   []string       `json:"primaryBodyParts"`
	SecondaryBodyParts []string       `json:"secondaryBodyParts"`
	Tags               []string       `json:"tags"`
	Description        string         `json:"description"`
	Steps              []string       `json:"steps"`
	Videos             []models.Video `json:"videos"`
	Sets               int            `json:"sets"`
	Reps               int            `json:"reps"`
	Weight             float64        `json:"weight"`
	IsBodyWeight       bool           `json:"isBodyWeight"`
	Author             string         `json:"author"`
}

// Importer reads exercise export files and inserts catalog rows.
type Importer struct {
	store  Store
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates a new Importer.
func New(store Store, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{store: store, log: log, dryRun: dryRun}
}

// ImportFile processes one JSON export file containing an array of
// exercise records. Records that fail validation are counted and
// skipped; the rest of the file still imports.
func (imp *Importer) ImportFile(ctx context.Context, path string) (*Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &imp.stats, fmt.Errorf("reading %s: %w", path, err)
	}

	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return &imp.stats, fmt.Errorf("parsing %s: %w", path, err)
	}

	for i, e := range entries {
		ex, reason := imp.build(e)
		if reason != "" {
			imp.stats.Rejected = append(imp.stats.Rejected,
				fmt.Sprintf("record %d (%q): %s", i, e.Name, reason))
			imp.log.Info("skipping record", "index", i, "name", e.Name, "reason", reason)
			continue
		}

		if imp.dryRun {
			imp.stats.Inserted++
			continue
		}

		inserted, err := imp.store.InsertExercise(ctx, ex)
		if err != nil {
			return &imp.stats, fmt.Errorf("inserting %q: %w", ex.Name, err)
		}
		if inserted {
			imp.stats.Inserted++
		} else {
			imp.stats.Duplicated++
		}
	}

	return &imp.stats, nil
}

// build validates one record and fills catalog defaults. The returned
// reason is empty for a valid record.
func (imp *Importer) build(e entry) (models.Exercise, string) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return models.Exercise{}, "missing name"
	}

	primary := models.NormalizeBodyParts(e.PrimaryBodyParts)
	if len(primary) == 0 {
		return models.Exercise{}, "no recognized primary body part"
	}

	ex := models.Exercise{
		ID:                 uuid.New(),
		Name:               name,
		Category:           e.Category,
		PrimaryBodyParts:   primary,
		SecondaryBodyParts: models.NormalizeBodyParts(e.SecondaryBodyParts),
		Tags:               e.Tags,
		Description:        e.Description,
		Steps:              e.Steps,
		Videos:             e.Videos,
		Sets:               e.Sets,
		Reps:               e.Reps,
		Weight:             e.Weight,
		IsBodyWeight:       e.IsBodyWeight,
		Author:             e.Author,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
	if ex.Sets <= 0 {
		ex.Sets = 3
	}
	if ex.Reps <= 0 {
		ex.Reps = 12
	}
	if ex.Author == "" {
		ex.Author = models.DefaultAuthor
	}
	return ex, ""
}
