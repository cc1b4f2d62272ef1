package workout

import (
	"context"
	"time"

	"github.com/claude/pulselift/internal/models"
	"github.com/google/uuid"
)

// RegenerateFromSummary rebuilds a fresh session from a completed
// workout's summary: the stored workout supplies the structure, the
// summary's completed logs seed the new session with submission state
// reset and fresh identity.
func (o *Orchestrator) RegenerateFromSummary(ctx context.Context, summary models.WorkoutSummary) (*models.Workout, error) {
	existing, err := o.store.FetchWorkout(ctx, summary.WorkoutID)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}

	now := time.Now()
	w, _ := BuildWorkout(DetailsFromReferences(existing.Exercises), existing.Author, summary.UserID, now)

	logs := make([]models.ExerciseLog, 0, len(summary.ExercisesCompleted))
	for _, l := range summary.ExercisesCompleted {
		l.ID = uuid.New()
		l.WorkoutID = w.ID
		l.IsSubmitted = false
		l.CreatedAt = now
		l.UpdatedAt = now
		logs = append(logs, l)
	}
	logs = SynthesizeMissingLogs(w, logs, summary.UserID, now)
	w.Logs = logs

	return o.persistSession(ctx, w, logs)
}

// RegenerateSaved rebuilds a fresh session from a saved workout's
// structure with all logs reset to placeholder sets.
func (o *Orchestrator) RegenerateSaved(ctx context.Context, workoutID, userID uuid.UUID) (*models.Workout, error) {
	existing, err := o.store.FetchWorkout(ctx, workoutID)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}

	w, logs := BuildWorkout(DetailsFromReferences(existing.Exercises), existing.Author, userID, time.Now())
	return o.persistSession(ctx, w, logs)
}

func (o *Orchestrator) persistSession(ctx context.Context, w models.Workout, logs []models.ExerciseLog) (*models.Workout, error) {
	if err := o.store.UpdateWorkoutSession(ctx, w, logs, w.ID); err != nil {
		return nil, &PersistenceError{Err: err}
	}

	o.mu.Lock()
	o.current = &w
	o.mu.Unlock()

	o.log.Info("workout session rebuilt", "workout", w.ID, "exercises", len(w.Exercises))
	return &w, nil
}
