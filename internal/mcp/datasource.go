package mcp

import (
	"context"

	"github.com/claude/pulselift/internal/models"
	"github.com/claude/pulselift/internal/parse"
	"github.com/claude/pulselift/internal/storage"
	"github.com/claude/pulselift/internal/workout"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB
// (local) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	GetExercises(ctx context.Context) ([]models.Exercise, error)
	FetchWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error)
	FetchExerciseLogs(ctx context.Context, workoutID uuid.UUID) ([]models.ExerciseLog, error)
	FetchWorkoutSummary(ctx context.Context, workoutID uuid.UUID) (*models.WorkoutSummary, error)
}

// Generator runs the workout generation pipeline. Locally this is the
// orchestrator; remotely it is a REST call into the server.
type Generator interface {
	Generate(ctx context.Context, req workout.Request) (*models.Workout, error)
}

// Advisor answers nutrition and calorie questions.
type Advisor interface {
	EstimateCaloriesBurned(ctx context.Context, s models.WorkoutSummary) (int, error)
	RecommendMacros(ctx context.Context, goals string) (parse.NutritionFacts, error)
	AnalyzeMeal(ctx context.Context, title, description, caption string) (models.Meal, error)
}

// Compile-time checks: local and remote implementations line up.
var (
	_ DataSource = (*storage.DB)(nil)
	_ DataSource = (*HTTPClient)(nil)
	_ Generator  = (*workout.Orchestrator)(nil)
	_ Generator  = (*HTTPClient)(nil)
	_ Advisor    = (*workout.Advisor)(nil)
	_ Advisor    = (*HTTPClient)(nil)
)
