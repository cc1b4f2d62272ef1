package workout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/claude/pulselift/internal/llm"
	"github.com/claude/pulselift/internal/models"
	"github.com/claude/pulselift/internal/parse"
	"github.com/claude/pulselift/internal/prompt"
	"github.com/claude/pulselift/internal/storage"
	"github.com/google/uuid"
)

// State is the orchestrator's position in the generation pipeline.
type State int

const (
	StateIdle State = iota
	StateSelecting
	StatePrompting
	StateAwaitingModel
	StateParsing
	StateReconciling
	StatePersisted
	StateTimedOut
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelecting:
		return "selecting"
	case StatePrompting:
		return "prompting"
	case StateAwaitingModel:
		return "awaitingModel"
	case StateParsing:
		return "parsing"
	case StateReconciling:
		return "reconciling"
	case StatePersisted:
		return "persisted"
	case StateTimedOut:
		return "timedOut"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Config holds the hand-tuned pipeline parameters. They are configurable
// rather than constants: none of the defaults has a documented derivation.
type Config struct {
	// GenerateTimeout bounds the model round trip. The timeout and the
	// model response race; whichever resolves first wins.
	GenerateTimeout time.Duration
	// SettleDelay is the short pause before completion is signaled, a
	// debounce so the UI does not flicker through loading states.
	SettleDelay time.Duration
	// MinViable is the candidate-selection viability threshold.
	MinViable   int
	Model       string
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the tuning the mobile client shipped with.
func DefaultConfig() Config {
	return Config{
		GenerateTimeout: 45 * time.Second,
		SettleDelay:     time.Second,
		MinViable:       DefaultMinViable,
		Model:           llm.ModelQuality,
		MaxTokens:       200,
		Temperature:     0.5,
	}
}

// Request is one generation trigger.
type Request struct {
	UserID             uuid.UUID
	BodyParts          []string
	Goal               string
	Predefined         []models.Exercise
	RequireVideo       bool
	PrioritizedAuthors []uuid.UUID
}

// Orchestrator drives one generation end to end:
// Idle -> Selecting -> Prompting -> AwaitingModel -> Parsing ->
// Reconciling -> Persisted, with TimedOut and Failed as terminal failure
// states. It accepts at most one generation at a time.
type Orchestrator struct {
	catalog   CatalogService
	model     ModelClient
	store     PersistenceService
	templates TemplateSource
	fallback  string
	cfg       Config
	log       *slog.Logger

	mu       sync.Mutex
	busy     bool
	state    State
	snapshot []models.Exercise
	current  *models.Workout
}

// NewOrchestrator builds an orchestrator with explicitly injected
// collaborators. fallbackTemplate is used when the template source has no
// workout template row.
func NewOrchestrator(catalog CatalogService, model ModelClient, store PersistenceService, templates TemplateSource, fallbackTemplate string, cfg Config, log *slog.Logger) *Orchestrator {
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = 45 * time.Second
	}
	if cfg.MinViable <= 0 {
		cfg.MinViable = DefaultMinViable
	}
	if cfg.Model == "" {
		cfg.Model = llm.ModelQuality
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 200
	}
	return &Orchestrator{
		catalog:   catalog,
		model:     model,
		store:     store,
		templates: templates,
		fallback:  fallbackTemplate,
		cfg:       cfg,
		state:     StateIdle,
		log:       log,
	}
}

// State reports the orchestrator's current pipeline state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// CurrentWorkout returns the cached copy of the last persisted workout,
// nil if none. After the persistence handoff the store is authoritative;
// this is only the orchestrator's cache.
func (o *Orchestrator) CurrentWorkout() *models.Workout {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Generate runs the full pipeline for one request and returns exactly
// once: with the persisted workout, or with a typed error. A second call
// while one is in flight fails immediately with ErrGenerationInFlight.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*models.Workout, error) {
	o.mu.Lock()
	if o.busy {
		o.mu.Unlock()
		return nil, ErrGenerationInFlight
	}
	o.busy = true
	o.state = StateSelecting
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.busy = false
		o.mu.Unlock()
	}()

	w, err := o.generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (o *Orchestrator) generate(ctx context.Context, req Request) (*models.Workout, error) {
	snapshot, err := o.catalogSnapshot(ctx)
	if err != nil {
		o.setState(StateFailed)
		return nil, err
	}

	targets := models.NormalizeBodyParts(req.BodyParts)
	names := SelectCandidates(snapshot, SelectionInput{
		Targets:            targets,
		PrioritizedAuthors: req.PrioritizedAuthors,
		RequireVideo:       req.RequireVideo,
		MinViable:          o.cfg.MinViable,
	})
	o.log.Info("candidates selected",
		"bodyParts", strings.Join(req.BodyParts, ","),
		"candidates", len(names),
		"catalog", len(snapshot),
	)

	o.setState(StatePrompting)
	rendered, err := o.renderPrompt(ctx, req, snapshot, names)
	if err != nil {
		o.setState(StateFailed)
		return nil, err
	}

	o.setState(StateAwaitingModel)
	response, err := o.awaitModel(ctx, rendered)
	if err != nil {
		if errors.Is(err, ErrProviderTimeout) {
			o.setState(StateTimedOut)
		} else {
			o.setState(StateFailed)
		}
		return nil, err
	}

	o.setState(StateParsing)
	groups, err := parse.ExerciseGroups(response)
	if err != nil {
		o.setState(StateFailed)
		return nil, err
	}

	o.setState(StateReconciling)
	rec, err := Reconcile(ctx, o.catalog, groups)
	if err != nil {
		o.setState(StateFailed)
		return nil, err
	}
	if len(rec.Missing) > 0 {
		// Recovered locally: the workout ships without the gaps.
		o.log.Warn("reconciliation gap", "missing", strings.Join(rec.Missing, ", "))
	}

	w, logs := BuildWorkout(rec.Details, models.DefaultAuthor, req.UserID, time.Now())

	// Debounce before signaling completion so the caller's UI does not
	// flicker through the loading state.
	if o.cfg.SettleDelay > 0 {
		select {
		case <-time.After(o.cfg.SettleDelay):
		case <-ctx.Done():
			o.setState(StateFailed)
			return nil, ctx.Err()
		}
	}

	if err := o.store.UpdateWorkoutSession(ctx, w, logs, w.ID); err != nil {
		o.setState(StateFailed)
		return nil, &PersistenceError{Err: err}
	}

	// Publish atomically: the session becomes visible to other readers
	// only at the Persisted transition.
	o.mu.Lock()
	o.state = StatePersisted
	o.current = &w
	o.mu.Unlock()

	o.log.Info("workout persisted",
		"workout", w.ID,
		"exercises", len(w.Exercises),
		"missing", len(rec.Missing),
	)
	return &w, nil
}

// catalogSnapshot returns the read-only catalog snapshot for this
// generation, performing a blocking refresh when the cache is empty.
func (o *Orchestrator) catalogSnapshot(ctx context.Context) ([]models.Exercise, error) {
	o.mu.Lock()
	snapshot := o.snapshot
	o.mu.Unlock()

	if len(snapshot) > 0 {
		return snapshot, nil
	}

	exercises, err := o.catalog.GetExercises(ctx)
	if err != nil {
		return nil, &CatalogError{Err: err}
	}
	o.mu.Lock()
	o.snapshot = exercises
	o.mu.Unlock()
	return exercises, nil
}

// RefreshCatalog forces a new catalog snapshot.
func (o *Orchestrator) RefreshCatalog(ctx context.Context) error {
	exercises, err := o.catalog.GetExercises(ctx)
	if err != nil {
		return &CatalogError{Err: err}
	}
	o.mu.Lock()
	o.snapshot = exercises
	o.mu.Unlock()
	return nil
}

func (o *Orchestrator) renderPrompt(ctx context.Context, req Request, snapshot []models.Exercise, names []string) (string, error) {
	template, err := o.templates.GetPromptTemplate(ctx, storage.WorkoutTemplateName)
	if errors.Is(err, storage.ErrNotFound) {
		template = o.fallback
	} else if err != nil {
		return "", fmt.Errorf("loading prompt template: %w", err)
	}

	predefined := make([]string, len(req.Predefined))
	for i, ex := range req.Predefined {
		predefined[i] = ex.Name
	}

	return prompt.Render(template, prompt.Values{
		BodyParts:    strings.Join(prompt.ExpandDisplay(req.BodyParts), ", "),
		Goal:         req.Goal,
		ExerciseList: strings.Join(names, ", "),
		AllExercises: prompt.JoinNames(snapshot),
		Predefined:   strings.Join(predefined, ", "),
	})
}

// awaitModel races the model round trip against the generation timeout.
// Whichever resolves first is authoritative: on timeout the model context
// is cancelled and a late response, if any, is discarded without touching
// orchestrator state.
func (o *Orchestrator) awaitModel(ctx context.Context, rendered string) (string, error) {
	modelCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	// Buffered so a late loser can complete without a receiver.
	results := make(chan result, 1)

	go func() {
		text, err := o.model.Complete(modelCtx, rendered, llm.Params{
			Model:       o.cfg.Model,
			MaxTokens:   o.cfg.MaxTokens,
			Temperature: o.cfg.Temperature,
		})
		results <- result{text: text, err: err}
	}()

	timer := time.NewTimer(o.cfg.GenerateTimeout)
	defer timer.Stop()

	select {
	case r := <-results:
		if r.err != nil {
			return "", r.err
		}
		return r.text, nil
	case <-timer.C:
		cancel()
		return "", ErrProviderTimeout
	case <-ctx.Done():
		cancel()
		return "", ctx.Err()
	}
}
