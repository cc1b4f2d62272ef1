package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/claude/pulselift/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SaveWorkout inserts or replaces a workout row. Exercise references are
// stored as a JSONB snapshot so group ordering survives round trips.
func (db *DB) SaveWorkout(ctx context.Context, w models.Workout) error {
	refs, err := json.Marshal(w.Exercises)
	if err != nil {
		return fmt.Errorf("marshaling exercise references: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO workouts (id, exercises, duration, rating, is_completed, author, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (id) DO UPDATE SET
		   exercises = EXCLUDED.exercises, duration = EXCLUDED.duration,
		   rating = EXCLUDED.rating, is_completed = EXCLUDED.is_completed,
		   author = EXCLUDED.author, updated_at = EXCLUDED.updated_at`,
		w.ID, refs, w.Duration, string(w.Rating), w.IsCompleted, w.Author, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving workout: %w", err)
	}
	return nil
}

// UpdateWorkoutSession persists a workout together with its logs in one
// transaction. Existing logs for the workout are replaced: the session's
// log set is authoritative after reconciliation.
func (db *DB) UpdateWorkoutSession(ctx context.Context, w models.Workout, logs []models.ExerciseLog, workoutID uuid.UUID) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	refs, err := json.Marshal(w.Exercises)
	if err != nil {
		return fmt.Errorf("marshaling exercise references: %w", err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO workouts (id, exercises, duration, rating, is_completed, author, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (id) DO UPDATE SET
		   exercises = EXCLUDED.exercises, duration = EXCLUDED.duration,
		   rating = EXCLUDED.rating, is_completed = EXCLUDED.is_completed,
		   author = EXCLUDED.author, updated_at = EXCLUDED.updated_at`,
		w.ID, refs, w.Duration, string(w.Rating), w.IsCompleted, w.Author, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving workout: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM exercise_logs WHERE workout_id = $1`, workoutID); err != nil {
		return fmt.Errorf("clearing logs: %w", err)
	}
	for _, l := range logs {
		if err := insertLog(ctx, tx, l); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing session: %w", err)
	}
	return nil
}

// UpdateExerciseLog inserts or replaces a single log row.
func (db *DB) UpdateExerciseLog(ctx context.Context, l models.ExerciseLog) error {
	return insertLog(ctx, db.Pool, l)
}

// execer covers both *pgxpool.Pool and pgx.Tx so a log insert can run
// standalone or inside a session transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertLog(ctx context.Context, q execer, l models.ExerciseLog) error {
	exercise, err := json.Marshal(l.Exercise)
	if err != nil {
		return fmt.Errorf("marshaling exercise snapshot: %w", err)
	}
	sets, err := json.Marshal(l.Logs)
	if err != nil {
		return fmt.Errorf("marshaling set logs: %w", err)
	}

	_, err = q.Exec(ctx,
		`INSERT INTO exercise_logs (id, workout_id, user_id, exercise, logs, feedback, note,
		 is_split, is_submitted, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		 ON CONFLICT (id) DO UPDATE SET
		   exercise = EXCLUDED.exercise, logs = EXCLUDED.logs,
		   feedback = EXCLUDED.feedback, note = EXCLUDED.note,
		   is_split = EXCLUDED.is_split, is_submitted = EXCLUDED.is_submitted,
		   updated_at = EXCLUDED.updated_at`,
		l.ID, l.WorkoutID, l.UserID, exercise, sets, l.Feedback, l.Note,
		l.IsSplit, l.IsSubmitted, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting exercise log: %w", err)
	}
	return nil
}

// FetchWorkout retrieves a workout by id, logs included.
// Returns ErrNotFound if no such workout exists.
func (db *DB) FetchWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error) {
	var (
		w       models.Workout
		refs    []byte
		rating  string
		created time.Time
		updated time.Time
	)
	err := db.Pool.QueryRow(ctx,
		`SELECT id, exercises, duration, rating, is_completed, author, created_at, updated_at
		 FROM workouts WHERE id = $1`, id).
		Scan(&w.ID, &refs, &w.Duration, &rating, &w.IsCompleted, &w.Author, &created, &updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching workout: %w", err)
	}

	if err := json.Unmarshal(refs, &w.Exercises); err != nil {
		return nil, fmt.Errorf("unmarshaling exercise references: %w", err)
	}
	w.Rating = models.WorkoutRating(rating)
	w.CreatedAt = created
	w.UpdatedAt = updated

	logs, err := db.FetchExerciseLogs(ctx, id)
	if err != nil {
		return nil, err
	}
	w.Logs = logs
	return &w, nil
}

// FetchExerciseLogs retrieves all logs for a workout in creation order.
func (db *DB) FetchExerciseLogs(ctx context.Context, workoutID uuid.UUID) ([]models.ExerciseLog, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, workout_id, user_id, exercise, logs, feedback, note,
		 is_split, is_submitted, created_at, updated_at
		 FROM exercise_logs WHERE workout_id = $1 ORDER BY created_at, id`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise logs: %w", err)
	}
	defer rows.Close()

	var logs []models.ExerciseLog
	for rows.Next() {
		var (
			l        models.ExerciseLog
			exercise []byte
			sets     []byte
		)
		err := rows.Scan(&l.ID, &l.WorkoutID, &l.UserID, &exercise, &sets,
			&l.Feedback, &l.Note, &l.IsSplit, &l.IsSubmitted, &l.CreatedAt, &l.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise log: %w", err)
		}
		if err := json.Unmarshal(exercise, &l.Exercise); err != nil {
			return nil, fmt.Errorf("unmarshaling exercise snapshot: %w", err)
		}
		if err := json.Unmarshal(sets, &l.Logs); err != nil {
			return nil, fmt.Errorf("unmarshaling set logs: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
