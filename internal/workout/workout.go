// Package workout is the AI workout generation and reconciliation
// pipeline: candidate selection over the exercise catalog, prompt
// construction, model invocation, response parsing, reconciliation of
// model-returned names against the catalog, and materialization of a
// persisted workout session with per-exercise logs.
package workout

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/pulselift/internal/llm"
	"github.com/claude/pulselift/internal/models"
	"github.com/google/uuid"
)

// CatalogService is the read side of the external exercise catalog.
// Name lookups return exact matches only; absence is a normal outcome.
type CatalogService interface {
	GetExercises(ctx context.Context) ([]models.Exercise, error)
	FetchExercisesByNames(ctx context.Context, names []string) ([]models.Exercise, error)
}

// ModelClient is the single-shot LLM gateway contract.
type ModelClient interface {
	Complete(ctx context.Context, prompt string, p llm.Params) (string, error)
}

// PersistenceService stores workouts and their logs. The orchestrator
// owns the in-flight session exclusively until the handoff here; after
// that the store is authoritative.
type PersistenceService interface {
	SaveWorkout(ctx context.Context, w models.Workout) error
	UpdateWorkoutSession(ctx context.Context, w models.Workout, logs []models.ExerciseLog, workoutID uuid.UUID) error
	FetchWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error)
}

// TemplateSource supplies prompt template content. Template text is
// remotely configurable and may change without a software update.
type TemplateSource interface {
	GetPromptTemplate(ctx context.Context, name string) (string, error)
}

// ErrGenerationInFlight is returned when Generate is invoked while a
// previous generation on the same orchestrator has not finished. The
// pipeline runs at most one generation per orchestrator instance.
var ErrGenerationInFlight = errors.New("workout generation already in flight")

// ErrProviderTimeout is returned when the model does not answer within
// the configured generation timeout. A late answer is discarded.
var ErrProviderTimeout = errors.New("timed out waiting for the model")

// CatalogError wraps a failure to load the exercise catalog.
type CatalogError struct {
	Err error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("exercise catalog unavailable: %v", e.Err)
}

func (e *CatalogError) Unwrap() error { return e.Err }

// PersistenceError wraps a failure in the storage handoff.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting workout: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// UserMessage maps a pipeline failure to the single toast-style string
// shown to end users. Raw error payloads never reach the UI.
func UserMessage(err error) string {
	var (
		catalogErr  *CatalogError
		persistErr  *PersistenceError
		providerErr *llm.ProviderError
		networkErr  *llm.NetworkError
	)
	switch {
	case errors.Is(err, ErrProviderTimeout):
		return "Timeout: Failed to generate workout. Please try again."
	case errors.Is(err, ErrGenerationInFlight):
		return "A workout is already being generated. Hang tight."
	case errors.As(err, &catalogErr):
		return "An error occurred generating the workout. Try it again in a few seconds."
	case errors.As(err, &persistErr):
		return "Your workout was generated but could not be saved. Please try again."
	case errors.As(err, &providerErr), errors.As(err, &networkErr):
		return "The workout service is unavailable right now. Please try again."
	default:
		return "Failed to generate workout. Please try again."
	}
}
