package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultAuthor is the attribution used for generated workouts.
const DefaultAuthor = "PulseAI"

// DefaultDurationMinutes is the target duration assigned to a generated
// workout unless the caller overrides it.
const DefaultDurationMinutes = 60

// WorkoutRating is the user's post-session difficulty feedback.
type WorkoutRating string

const (
	RatingNone      WorkoutRating = ""
	RatingTooEasy   WorkoutRating = "tooEasy"
	RatingJustRight WorkoutRating = "justRight"
	RatingTooHard   WorkoutRating = "tooHard"
)

// RepsAndWeightLog records one set. Left-side values are only meaningful
// for split exercises. A zero value is a placeholder pending user input.
type RepsAndWeightLog struct {
	Reps       int     `json:"reps"`
	Weight     float64 `json:"weight"`
	LeftReps   int     `json:"leftReps,omitempty"`
	LeftWeight float64 `json:"leftWeight,omitempty"`
}

// ExerciseLog tracks one exercise's performance within a workout session.
// Sets can be appended and the submission flag flipped once all sets are
// recorded.
type ExerciseLog struct {
	ID          uuid.UUID          `json:"id"`
	WorkoutID   uuid.UUID          `json:"workoutId"`
	UserID      uuid.UUID          `json:"userId"`
	Exercise    Exercise           `json:"exercise"`
	Logs        []RepsAndWeightLog `json:"logs"`
	Feedback    string             `json:"feedback"`
	Note        string             `json:"note"`
	IsSplit     bool               `json:"isSplit"`
	IsSubmitted bool               `json:"isSubmitted"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// Workout is the aggregate root for one session. References and logs
// converge: every referenced exercise has exactly one log before the
// workout is considered ready.
type Workout struct {
	ID          uuid.UUID           `json:"id"`
	Exercises   []ExerciseReference `json:"exercises"`
	Logs        []ExerciseLog       `json:"logs"`
	Duration    int                 `json:"duration"`
	Rating      WorkoutRating       `json:"rating"`
	IsCompleted bool                `json:"isCompleted"`
	Author      string              `json:"author"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// WorkoutSummary is the closed historical record of a completed workout.
type WorkoutSummary struct {
	ID                 uuid.UUID     `json:"id"`
	WorkoutID          uuid.UUID     `json:"workoutId"`
	UserID             uuid.UUID     `json:"userId"`
	BodyParts          []BodyPart    `json:"bodyParts"`
	SecondaryBodyParts []BodyPart    `json:"secondaryBodyParts"`
	ExercisesCompleted []ExerciseLog `json:"exercisesCompleted"`
	CreatedAt          time.Time     `json:"createdAt"`
	CompletedAt        *time.Time    `json:"completedAt,omitempty"`
}

// Duration returns the wall-clock length of the session, zero if the
// summary was never completed.
func (s WorkoutSummary) Duration() time.Duration {
	if s.CompletedAt == nil {
		return 0
	}
	return s.CompletedAt.Sub(s.CreatedAt)
}
