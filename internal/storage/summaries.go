package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claude/pulselift/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertWorkoutSummary records the closed summary of a completed workout.
func (db *DB) InsertWorkoutSummary(ctx context.Context, s models.WorkoutSummary) error {
	completed, err := json.Marshal(s.ExercisesCompleted)
	if err != nil {
		return fmt.Errorf("marshaling completed exercises: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO workout_summaries (id, workout_id, user_id, body_parts,
		 secondary_body_parts, exercises_completed, created_at, completed_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (id) DO NOTHING`,
		s.ID, s.WorkoutID, s.UserID, bodyPartsToStrings(s.BodyParts),
		bodyPartsToStrings(s.SecondaryBodyParts), completed, s.CreatedAt, s.CompletedAt)
	if err != nil {
		return fmt.Errorf("inserting workout summary: %w", err)
	}
	return nil
}

// FetchWorkoutSummary retrieves the summary for a workout.
// Returns ErrNotFound if the workout has no summary.
func (db *DB) FetchWorkoutSummary(ctx context.Context, workoutID uuid.UUID) (*models.WorkoutSummary, error) {
	var (
		s         models.WorkoutSummary
		primary   []string
		secondary []string
		completed []byte
	)
	err := db.Pool.QueryRow(ctx,
		`SELECT id, workout_id, user_id, body_parts, secondary_body_parts,
		 exercises_completed, created_at, completed_at
		 FROM workout_summaries WHERE workout_id = $1
		 ORDER BY created_at DESC LIMIT 1`, workoutID).
		Scan(&s.ID, &s.WorkoutID, &s.UserID, &primary, &secondary,
			&completed, &s.CreatedAt, &s.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching workout summary: %w", err)
	}

	s.BodyParts = stringsToBodyParts(primary)
	s.SecondaryBodyParts = stringsToBodyParts(secondary)
	if len(completed) > 0 {
		if err := json.Unmarshal(completed, &s.ExercisesCompleted); err != nil {
			return nil, fmt.Errorf("unmarshaling completed exercises: %w", err)
		}
	}
	return &s, nil
}
