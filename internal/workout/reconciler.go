package workout

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/pulselift/internal/models"
	"github.com/claude/pulselift/internal/parse"
	"github.com/google/uuid"
)

// Reconciliation is the outcome of matching model-returned exercise-name
// groups against the live catalog.
type Reconciliation struct {
	Details []models.ExerciseDetail
	// Missing are the names the catalog could not account for. A gap is
	// recovered locally: the workout is still produced without them.
	Missing []string
}

// Reconcile maps parsed name groups back onto catalog records. Group
// index becomes the group id. Names with no exact catalog match are
// recorded as missing details, never silently invented. If not a single
// name matches, the model output was unusable and a typed
// MalformedResponseError is returned.
func Reconcile(ctx context.Context, catalog CatalogService, groups [][]string) (*Reconciliation, error) {
	flat := make([]string, 0, len(groups)*4)
	for _, group := range groups {
		flat = append(flat, group...)
	}

	fetched, err := catalog.FetchExercisesByNames(ctx, flat)
	if err != nil {
		return nil, &CatalogError{Err: fmt.Errorf("fetching exercises by name: %w", err)}
	}

	byName := make(map[string]models.Exercise, len(fetched))
	for _, ex := range fetched {
		byName[ex.Name] = ex
	}

	rec := &Reconciliation{}
	for groupID, group := range groups {
		for _, name := range group {
			ex, ok := byName[name]
			if !ok {
				rec.Missing = append(rec.Missing, name)
				rec.Details = append(rec.Details, models.ExerciseDetail{
					Name:      name,
					IsMissing: true,
					GroupID:   groupID,
				})
				continue
			}
			rec.Details = append(rec.Details, models.ExerciseDetail{
				Name:    ex.Name,
				Matched: &ex,
				Sets:    ex.Sets,
				Reps:    ex.Reps,
				Weight:  ex.Weight,
				GroupID: groupID,
			})
		}
	}

	if len(rec.Details) == len(rec.Missing) {
		return nil, &parse.MalformedResponseError{
			Reason: "none of the model's exercises exist in the catalog",
		}
	}
	return rec, nil
}

// BuildWorkout assembles the workout aggregate from reconciled details:
// one ExerciseReference per matched detail (group order preserved) and
// one synthesized ExerciseLog per reference, with a placeholder
// RepsAndWeightLog for each default set. Missing details contribute to
// neither list, so len(Exercises) == len(Logs) always holds.
func BuildWorkout(details []models.ExerciseDetail, author string, userID uuid.UUID, now time.Time) (models.Workout, []models.ExerciseLog) {
	if author == "" {
		author = models.DefaultAuthor
	}

	workoutID := uuid.New()
	refs := make([]models.ExerciseReference, 0, len(details))
	logs := make([]models.ExerciseLog, 0, len(details))

	for _, d := range details {
		if d.Matched == nil {
			continue
		}
		refs = append(refs, models.ExerciseReference{Exercise: *d.Matched, GroupID: d.GroupID})
		logs = append(logs, synthesizeLog(*d.Matched, d, workoutID, userID, now))
	}

	w := models.Workout{
		ID:        workoutID,
		Exercises: refs,
		Logs:      logs,
		Duration:  models.DefaultDurationMinutes,
		Rating:    models.RatingNone,
		Author:    author,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return w, logs
}

func synthesizeLog(ex models.Exercise, d models.ExerciseDetail, workoutID, userID uuid.UUID, now time.Time) models.ExerciseLog {
	sets := d.Sets
	if sets <= 0 {
		sets = 3
	}
	reps := d.Reps
	if reps <= 0 {
		reps = 12
	}
	weight := d.Weight
	if ex.IsBodyWeight {
		weight = 0
	}

	setLogs := make([]models.RepsAndWeightLog, sets)
	for i := range setLogs {
		setLogs[i] = models.RepsAndWeightLog{Reps: reps, Weight: weight}
	}

	return models.ExerciseLog{
		ID:        uuid.New(),
		WorkoutID: workoutID,
		UserID:    userID,
		Exercise:  ex,
		Logs:      setLogs,
		Note:      d.Notes,
		IsSplit:   d.IsSplit,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SynthesizeMissingLogs returns logs extended so that every referenced
// exercise has one. References whose log is absent get a placeholder log
// with default empty sets. Existing logs are never altered.
func SynthesizeMissingLogs(w models.Workout, logs []models.ExerciseLog, userID uuid.UUID, now time.Time) []models.ExerciseLog {
	if len(w.Exercises) == len(logs) {
		return logs
	}

	have := make(map[string]bool, len(logs))
	for _, l := range logs {
		have[l.Exercise.Name] = true
	}

	out := logs
	for _, ref := range w.Exercises {
		if have[ref.Exercise.Name] {
			continue
		}
		sets := ref.Exercise.Sets
		if sets <= 0 {
			sets = 3
		}
		out = append(out, models.ExerciseLog{
			ID:        uuid.New(),
			WorkoutID: w.ID,
			UserID:    userID,
			Exercise:  ref.Exercise,
			Logs:      make([]models.RepsAndWeightLog, sets),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return out
}

// DetailsFromReferences rebuilds transient reconciliation details from an
// existing workout's references, used when regenerating a session from a
// stored workout or a summary.
func DetailsFromReferences(refs []models.ExerciseReference) []models.ExerciseDetail {
	details := make([]models.ExerciseDetail, len(refs))
	for i, ref := range refs {
		ex := ref.Exercise
		details[i] = models.ExerciseDetail{
			Name:    ex.Name,
			Matched: &ex,
			Sets:    ex.Sets,
			Reps:    ex.Reps,
			GroupID: ref.GroupID,
		}
	}
	return details
}
