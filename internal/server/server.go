package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/claude/pulselift/internal/models"
	"github.com/claude/pulselift/internal/parse"
	"github.com/claude/pulselift/internal/workout"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Generator is the workout pipeline surface the HTTP layer drives.
type Generator interface {
	Generate(ctx context.Context, req workout.Request) (*models.Workout, error)
	RegenerateSaved(ctx context.Context, workoutID, userID uuid.UUID) (*models.Workout, error)
	RegenerateFromSummary(ctx context.Context, summary models.WorkoutSummary) (*models.Workout, error)
	RefreshCatalog(ctx context.Context) error
	State() workout.State
}

// Advisor is the nutrition estimation surface.
type Advisor interface {
	EstimateCaloriesBurned(ctx context.Context, s models.WorkoutSummary) (int, error)
	RecommendMacros(ctx context.Context, goals string) (parse.NutritionFacts, error)
	AnalyzeMeal(ctx context.Context, title, description, caption string) (models.Meal, error)
}

// Store is the subset of the database the handlers read and write
// directly, outside the generation pipeline.
type Store interface {
	GetExercises(ctx context.Context) ([]models.Exercise, error)
	FetchWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error)
	SaveWorkout(ctx context.Context, w models.Workout) error
	FetchExerciseLogs(ctx context.Context, workoutID uuid.UUID) ([]models.ExerciseLog, error)
	UpdateExerciseLog(ctx context.Context, l models.ExerciseLog) error
	InsertWorkoutSummary(ctx context.Context, s models.WorkoutSummary) error
	FetchWorkoutSummary(ctx context.Context, workoutID uuid.UUID) (*models.WorkoutSummary, error)
	GetPromptTemplate(ctx context.Context, name string) (string, error)
	UpsertPromptTemplate(ctx context.Context, name, content string) error
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store     Store
	generator Generator
	advisor   Advisor
	log       *slog.Logger
	apiKey    string
	router    chi.Router
}

// New creates a new Server with all routes configured.
func New(store Store, generator Generator, advisor Advisor, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:     store,
		generator: generator,
		advisor:   advisor,
		log:       log,
		apiKey:    apiKey,
		router:    chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log, func() string { return s.generator.State().String() }))
	s.router.Use(CORS)

	auth := APIKeyAuth(s.apiKey)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Read endpoints (no auth — tsnet handles access)
		r.Get("/exercises", s.handleListExercises)
		r.Get("/generation/state", s.handleGenerationState)

		r.Route("/workouts", func(r chi.Router) {
			r.Get("/{id}", s.handleGetWorkout)
			r.Get("/{id}/logs", s.handleGetLogs)
			r.Get("/{id}/summary", s.handleGetSummary)

			// Write and model-spending endpoints (API key required)
			r.With(auth).Put("/{id}", s.handleUpdateWorkout)
			r.With(auth).Post("/generate", s.handleGenerate)
			r.With(auth).Post("/{id}/regenerate", s.handleRegenerate)
			r.With(auth).Post("/{id}/calories", s.handleEstimateCalories)
			r.With(auth).Post("/{id}/summary", s.handleRecordSummary)
		})

		r.With(auth).Put("/logs", s.handleUpdateLog)
		r.With(auth).Post("/nutrition/macros", s.handleRecommendMacros)
		r.With(auth).Post("/nutrition/meal", s.handleAnalyzeMeal)
		r.With(auth).Get("/templates/{name}", s.handleGetTemplate)
		r.With(auth).Put("/templates/{name}", s.handleUpsertTemplate)
		r.With(auth).Post("/catalog/refresh", s.handleRefreshCatalog)
	})
}
