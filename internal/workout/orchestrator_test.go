package workout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/claude/pulselift/internal/llm"
	"github.com/claude/pulselift/internal/models"
	"github.com/claude/pulselift/internal/storage"
	"github.com/google/uuid"
)

const testTemplate = `Body parts: {{bodyParts}}. Goal: {{goal}}.
Pick from: {{exerciseList}}. Fall back to: {{allExercises}}.
Must include: {{withPreDefinedExercises}}.`

// fakeModel answers with a canned response after an optional delay.
type fakeModel struct {
	response string
	err      error
	delay    time.Duration

	mu      sync.Mutex
	prompts []string
}

func (f *fakeModel) Complete(ctx context.Context, prompt string, p llm.Params) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeModel) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

// fakeStore records persisted sessions.
type fakeStore struct {
	mu      sync.Mutex
	saved   []models.Workout
	logs    map[uuid.UUID][]models.ExerciseLog
	saveErr error
	fetched map[uuid.UUID]*models.Workout
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		logs:    make(map[uuid.UUID][]models.ExerciseLog),
		fetched: make(map[uuid.UUID]*models.Workout),
	}
}

func (f *fakeStore) SaveWorkout(ctx context.Context, w models.Workout) error {
	return f.UpdateWorkoutSession(ctx, w, w.Logs, w.ID)
}

func (f *fakeStore) UpdateWorkoutSession(ctx context.Context, w models.Workout, logs []models.ExerciseLog, workoutID uuid.UUID) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, w)
	f.logs[workoutID] = logs
	return nil
}

func (f *fakeStore) FetchWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error) {
	if w, ok := f.fetched[id]; ok {
		return w, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) savedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

// fakeTemplates serves one template, or ErrNotFound.
type fakeTemplates struct {
	template string
	missing  bool
}

func (f *fakeTemplates) GetPromptTemplate(ctx context.Context, name string) (string, error) {
	if f.missing {
		return "", storage.ErrNotFound
	}
	return f.template, nil
}

func testOrchestrator(catalog *fakeCatalog, model *fakeModel, store *fakeStore, templates *fakeTemplates, cfg Config) *Orchestrator {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewOrchestrator(catalog, model, store, templates, testTemplate, cfg, log)
}

func quadsCatalog() *fakeCatalog {
	return &fakeCatalog{exercises: []models.Exercise{
		catalogExercise("Squat", []models.BodyPart{models.Quads}),
		catalogExercise("Lunge", []models.BodyPart{models.Quads}),
		catalogExercise("Leg Press", []models.BodyPart{models.Quads}),
		catalogExercise("Plank", []models.BodyPart{models.Abs}),
	}}
}

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.GenerateTimeout = 2 * time.Second
	cfg.SettleDelay = time.Millisecond
	return cfg
}

func TestGenerateHappyPath(t *testing.T) {
	catalog := quadsCatalog()
	model := &fakeModel{response: "[[Squat, Lunge], [Plank]]"}
	store := newFakeStore()
	o := testOrchestrator(catalog, model, store, &fakeTemplates{template: testTemplate}, fastConfig())

	req := Request{
		UserID:    uuid.New(),
		BodyParts: []string{"quads", "abs"},
		Goal:      "build muscle",
	}
	w, err := o.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}

	if len(w.Exercises) != 3 || len(w.Logs) != 3 {
		t.Fatalf("exercises/logs = %d/%d, want 3/3", len(w.Exercises), len(w.Logs))
	}
	if w.Exercises[2].GroupID != 1 {
		t.Errorf("Plank group = %d, want 1", w.Exercises[2].GroupID)
	}
	if w.Author != models.DefaultAuthor {
		t.Errorf("author = %q, want %q", w.Author, models.DefaultAuthor)
	}
	if got := o.State(); got != StatePersisted {
		t.Errorf("state = %v, want persisted", got)
	}
	if store.savedCount() != 1 {
		t.Errorf("persisted sessions = %d, want 1", store.savedCount())
	}
	if cached := o.CurrentWorkout(); cached == nil || cached.ID != w.ID {
		t.Error("persisted workout not cached")
	}

	p := model.lastPrompt()
	if strings.Contains(p, "{{") {
		t.Errorf("prompt has unresolved placeholders:\n%s", p)
	}
	if !strings.Contains(p, "build muscle") {
		t.Errorf("prompt missing goal:\n%s", p)
	}
}

func TestGeneratePromptUsesDisplayExpansion(t *testing.T) {
	catalog := &fakeCatalog{exercises: []models.Exercise{
		catalogExercise("Lat Pulldown", []models.BodyPart{models.Lats}),
	}}
	model := &fakeModel{response: "[[Lat Pulldown]]"}
	o := testOrchestrator(catalog, model, newFakeStore(), &fakeTemplates{template: testTemplate}, fastConfig())

	_, err := o.Generate(context.Background(), Request{UserID: uuid.New(), BodyParts: []string{"back"}})
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}

	p := model.lastPrompt()
	if !strings.Contains(p, "latissimus dorsi, trapezius, rhomboids") {
		t.Errorf("prompt missing display expansion of back:\n%s", p)
	}
	if !strings.Contains(p, "Pick from: Lat Pulldown") {
		t.Errorf("prompt missing machine-key filtered candidates:\n%s", p)
	}
}

func TestGenerateEmptyCatalogTriggersRefresh(t *testing.T) {
	catalog := quadsCatalog()
	model := &fakeModel{response: "[[Squat]]"}
	o := testOrchestrator(catalog, model, newFakeStore(), &fakeTemplates{missing: true}, fastConfig())

	_, err := o.Generate(context.Background(), Request{UserID: uuid.New(), BodyParts: []string{"quads"}})
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if catalog.getCalls != 1 {
		t.Errorf("catalog refreshes = %d, want 1", catalog.getCalls)
	}

	// Second run reuses the snapshot.
	if _, err := o.Generate(context.Background(), Request{UserID: uuid.New(), BodyParts: []string{"quads"}}); err != nil {
		t.Fatalf("second generate error: %v", err)
	}
	if catalog.getCalls != 1 {
		t.Errorf("catalog refreshes = %d, want 1 (snapshot reused)", catalog.getCalls)
	}
}

func TestGenerateCatalogUnavailable(t *testing.T) {
	catalog := &fakeCatalog{getErr: errors.New("catalog down")}
	o := testOrchestrator(catalog, &fakeModel{}, newFakeStore(), &fakeTemplates{missing: true}, fastConfig())

	_, err := o.Generate(context.Background(), Request{UserID: uuid.New(), BodyParts: []string{"quads"}})
	var catErr *CatalogError
	if !errors.As(err, &catErr) {
		t.Fatalf("error = %v, want CatalogError", err)
	}
	if o.State() != StateFailed {
		t.Errorf("state = %v, want failed", o.State())
	}
}

func TestGenerateTemplateFallback(t *testing.T) {
	catalog := quadsCatalog()
	model := &fakeModel{response: "[[Squat]]"}
	o := testOrchestrator(catalog, model, newFakeStore(), &fakeTemplates{missing: true}, fastConfig())

	if _, err := o.Generate(context.Background(), Request{UserID: uuid.New(), BodyParts: []string{"quads"}}); err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if !strings.Contains(model.lastPrompt(), "Pick from:") {
		t.Errorf("fallback template not used:\n%s", model.lastPrompt())
	}
}

func TestGenerateMalformedModelOutputFails(t *testing.T) {
	catalog := quadsCatalog()
	model := &fakeModel{response: "Sure! Here's a great workout for you."}
	store := newFakeStore()
	o := testOrchestrator(catalog, model, store, &fakeTemplates{missing: true}, fastConfig())

	_, err := o.Generate(context.Background(), Request{UserID: uuid.New(), BodyParts: []string{"quads"}})
	if err == nil {
		t.Fatal("generate succeeded on malformed output")
	}
	if o.State() != StateFailed {
		t.Errorf("state = %v, want failed", o.State())
	}
	// No partial workout reaches the store from a failed state.
	if store.savedCount() != 0 {
		t.Errorf("persisted sessions = %d, want 0", store.savedCount())
	}
}

func TestGenerateReconciliationGapRecovered(t *testing.T) {
	catalog := quadsCatalog()
	model := &fakeModel{response: "[[Squat, Bulgarian Fantasy Squat]]"}
	o := testOrchestrator(catalog, model, newFakeStore(), &fakeTemplates{missing: true}, fastConfig())

	w, err := o.Generate(context.Background(), Request{UserID: uuid.New(), BodyParts: []string{"quads"}})
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if len(w.Exercises) != 1 || len(w.Logs) != 1 {
		t.Errorf("exercises/logs = %d/%d, want 1/1 (gap excluded from both)", len(w.Exercises), len(w.Logs))
	}
}

func TestGeneratePersistenceFailure(t *testing.T) {
	catalog := quadsCatalog()
	store := newFakeStore()
	store.saveErr = errors.New("disk full")
	o := testOrchestrator(catalog, &fakeModel{response: "[[Squat]]"}, store, &fakeTemplates{missing: true}, fastConfig())

	_, err := o.Generate(context.Background(), Request{UserID: uuid.New(), BodyParts: []string{"quads"}})
	var persistErr *PersistenceError
	if !errors.As(err, &persistErr) {
		t.Fatalf("error = %v, want PersistenceError", err)
	}
	if o.State() != StateFailed {
		t.Errorf("state = %v, want failed", o.State())
	}
	if o.CurrentWorkout() != nil {
		t.Error("failed generation published a workout")
	}
}

// The timeout and the model response race; when the timeout fires first
// the late model result is discarded with no state mutation and no
// second completion.
func TestGenerateTimeoutWinsRace(t *testing.T) {
	catalog := quadsCatalog()
	model := &fakeModel{response: "[[Squat]]", delay: 500 * time.Millisecond}
	store := newFakeStore()

	cfg := fastConfig()
	cfg.GenerateTimeout = 20 * time.Millisecond
	o := testOrchestrator(catalog, model, store, &fakeTemplates{missing: true}, cfg)

	_, err := o.Generate(context.Background(), Request{UserID: uuid.New(), BodyParts: []string{"quads"}})
	if !errors.Is(err, ErrProviderTimeout) {
		t.Fatalf("error = %v, want ErrProviderTimeout", err)
	}
	if o.State() != StateTimedOut {
		t.Errorf("state = %v, want timedOut", o.State())
	}

	// Give the losing goroutine time to finish, then confirm nothing moved.
	time.Sleep(600 * time.Millisecond)
	if o.State() != StateTimedOut {
		t.Errorf("late model response mutated state to %v", o.State())
	}
	if store.savedCount() != 0 {
		t.Errorf("late model response persisted %d sessions", store.savedCount())
	}
	if o.CurrentWorkout() != nil {
		t.Error("late model response published a workout")
	}
}

func TestGenerateRejectsConcurrentRequests(t *testing.T) {
	catalog := quadsCatalog()
	model := &fakeModel{response: "[[Squat]]", delay: 200 * time.Millisecond}
	o := testOrchestrator(catalog, model, newFakeStore(), &fakeTemplates{missing: true}, fastConfig())

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		_, err := o.Generate(context.Background(), Request{UserID: uuid.New(), BodyParts: []string{"quads"}})
		done <- err
	}()

	<-started
	time.Sleep(50 * time.Millisecond) // let the first request reach the model
	_, err := o.Generate(context.Background(), Request{UserID: uuid.New(), BodyParts: []string{"quads"}})
	if !errors.Is(err, ErrGenerationInFlight) {
		t.Errorf("second generate error = %v, want ErrGenerationInFlight", err)
	}

	if err := <-done; err != nil {
		t.Errorf("first generate error: %v", err)
	}

	// Once the first finishes, the orchestrator accepts work again.
	if _, err := o.Generate(context.Background(), Request{UserID: uuid.New(), BodyParts: []string{"quads"}}); err != nil {
		t.Errorf("follow-up generate error: %v", err)
	}
}

func TestGenerateCancelledContext(t *testing.T) {
	catalog := quadsCatalog()
	model := &fakeModel{response: "[[Squat]]", delay: time.Second}
	store := newFakeStore()
	o := testOrchestrator(catalog, model, store, &fakeTemplates{missing: true}, fastConfig())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	_, err := o.Generate(ctx, Request{UserID: uuid.New(), BodyParts: []string{"quads"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if store.savedCount() != 0 {
		t.Errorf("cancelled generation persisted %d sessions", store.savedCount())
	}
}

func TestRegenerateSaved(t *testing.T) {
	squat := catalogExercise("Squat", []models.BodyPart{models.Quads})
	store := newFakeStore()
	existing := models.Workout{
		ID:        uuid.New(),
		Author:    "CoachDan",
		Exercises: []models.ExerciseReference{{Exercise: squat, GroupID: 0}},
	}
	store.fetched[existing.ID] = &existing

	o := testOrchestrator(quadsCatalog(), &fakeModel{}, store, &fakeTemplates{missing: true}, fastConfig())

	w, err := o.RegenerateSaved(context.Background(), existing.ID, uuid.New())
	if err != nil {
		t.Fatalf("regenerate error: %v", err)
	}
	if w.ID == existing.ID {
		t.Error("regenerated workout reuses the old id")
	}
	if w.Author != "CoachDan" {
		t.Errorf("author = %q, want original author preserved", w.Author)
	}
	if len(w.Exercises) != 1 || len(w.Logs) != 1 {
		t.Errorf("exercises/logs = %d/%d, want 1/1", len(w.Exercises), len(w.Logs))
	}
}

func TestRegenerateFromSummaryResetsSubmission(t *testing.T) {
	squat := catalogExercise("Squat", []models.BodyPart{models.Quads})
	store := newFakeStore()
	existing := models.Workout{
		ID:        uuid.New(),
		Author:    models.DefaultAuthor,
		Exercises: []models.ExerciseReference{{Exercise: squat, GroupID: 0}},
	}
	store.fetched[existing.ID] = &existing

	completedAt := time.Now()
	summary := models.WorkoutSummary{
		ID:        uuid.New(),
		WorkoutID: existing.ID,
		UserID:    uuid.New(),
		ExercisesCompleted: []models.ExerciseLog{{
			ID:          uuid.New(),
			Exercise:    squat,
			Logs:        []models.RepsAndWeightLog{{Reps: 8, Weight: 80}},
			IsSubmitted: true,
		}},
		CreatedAt:   completedAt.Add(-time.Hour),
		CompletedAt: &completedAt,
	}

	o := testOrchestrator(quadsCatalog(), &fakeModel{}, store, &fakeTemplates{missing: true}, fastConfig())

	w, err := o.RegenerateFromSummary(context.Background(), summary)
	if err != nil {
		t.Fatalf("regenerate error: %v", err)
	}
	if len(w.Logs) != 1 {
		t.Fatalf("logs = %d, want 1", len(w.Logs))
	}
	log := w.Logs[0]
	if log.IsSubmitted {
		t.Error("regenerated log still marked submitted")
	}
	if log.WorkoutID != w.ID {
		t.Errorf("log workout id = %v, want new workout %v", log.WorkoutID, w.ID)
	}
	if log.Logs[0].Reps != 8 {
		t.Errorf("seed reps = %d, want 8 (carried from summary)", log.Logs[0].Reps)
	}
}
