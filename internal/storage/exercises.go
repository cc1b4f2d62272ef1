package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/claude/pulselift/internal/models"
	"github.com/google/uuid"
)

// GetExercises returns the full exercise catalog in insertion order.
func (db *DB) GetExercises(ctx context.Context) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, category, primary_body_parts, secondary_body_parts, tags,
		 description, steps, videos, sets, reps, weight, is_body_weight, author,
		 created_at, updated_at
		 FROM exercises ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var exercises []models.Exercise
	for rows.Next() {
		ex, err := scanExercise(rows)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, ex)
	}
	return exercises, rows.Err()
}

// FetchExercisesByNames returns the catalog rows whose name exactly
// matches one of the given names. Absent names are simply not present in
// the result; absence is a normal outcome, not an error.
func (db *DB) FetchExercisesByNames(ctx context.Context, names []string) ([]models.Exercise, error) {
	if len(names) == 0 {
		return nil, nil
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, category, primary_body_parts, secondary_body_parts, tags,
		 description, steps, videos, sets, reps, weight, is_body_weight, author,
		 created_at, updated_at
		 FROM exercises WHERE name = ANY($1) ORDER BY position`, names)
	if err != nil {
		return nil, fmt.Errorf("querying exercises by name: %w", err)
	}
	defer rows.Close()

	var exercises []models.Exercise
	for rows.Next() {
		ex, err := scanExercise(rows)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, ex)
	}
	return exercises, rows.Err()
}

// InsertExercise adds a catalog row. Returns true if inserted, false if
// an exercise with the same name already exists.
func (db *DB) InsertExercise(ctx context.Context, ex models.Exercise) (bool, error) {
	videos, err := json.Marshal(ex.Videos)
	if err != nil {
		return false, fmt.Errorf("marshaling videos: %w", err)
	}

	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO exercises (id, name, category, primary_body_parts, secondary_body_parts,
		 tags, description, steps, videos, sets, reps, weight, is_body_weight, author,
		 created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		 ON CONFLICT (name) DO NOTHING`,
		ex.ID, ex.Name, ex.Category, bodyPartsToStrings(ex.PrimaryBodyParts),
		bodyPartsToStrings(ex.SecondaryBodyParts), ex.Tags, ex.Description, ex.Steps,
		videos, ex.Sets, ex.Reps, ex.Weight, ex.IsBodyWeight, ex.Author,
		ex.CreatedAt, ex.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("inserting exercise: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

type exerciseScanner interface {
	Scan(dest ...any) error
}

func scanExercise(row exerciseScanner) (models.Exercise, error) {
	var (
		ex        models.Exercise
		id        uuid.UUID
		primary   []string
		secondary []string
		videos    []byte
		created   time.Time
		updated   time.Time
	)
	err := row.Scan(&id, &ex.Name, &ex.Category, &primary, &secondary, &ex.Tags,
		&ex.Description, &ex.Steps, &videos, &ex.Sets, &ex.Reps, &ex.Weight,
		&ex.IsBodyWeight, &ex.Author, &created, &updated)
	if err != nil {
		return models.Exercise{}, fmt.Errorf("scanning exercise: %w", err)
	}

	ex.ID = id
	ex.PrimaryBodyParts = stringsToBodyParts(primary)
	ex.SecondaryBodyParts = stringsToBodyParts(secondary)
	ex.CreatedAt = created
	ex.UpdatedAt = updated
	if len(videos) > 0 {
		if err := json.Unmarshal(videos, &ex.Videos); err != nil {
			return models.Exercise{}, fmt.Errorf("unmarshaling videos: %w", err)
		}
	}
	return ex, nil
}

func bodyPartsToStrings(parts []models.BodyPart) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = string(p)
	}
	return out
}

func stringsToBodyParts(raw []string) []models.BodyPart {
	out := make([]models.BodyPart, len(raw))
	for i, s := range raw {
		out[i] = models.BodyPart(s)
	}
	return out
}
