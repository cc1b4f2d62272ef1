package workout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/claude/pulselift/internal/models"
	"github.com/claude/pulselift/internal/parse"
	"github.com/google/uuid"
)

func testAdvisor(model *fakeModel) *Advisor {
	return NewAdvisor(model, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func completedSummary(minutes int) models.WorkoutSummary {
	start := time.Now().Add(-time.Duration(minutes) * time.Minute)
	end := start.Add(time.Duration(minutes) * time.Minute)
	squat := catalogExercise("Squat", []models.BodyPart{models.Quads})
	return models.WorkoutSummary{
		ID:        uuid.New(),
		WorkoutID: uuid.New(),
		UserID:    uuid.New(),
		ExercisesCompleted: []models.ExerciseLog{{
			ID:       uuid.New(),
			Exercise: squat,
			Logs: []models.RepsAndWeightLog{
				{Reps: 10, Weight: 100},
				{Reps: 8, Weight: 100},
			},
		}},
		CreatedAt:   start,
		CompletedAt: &end,
	}
}

func TestEstimateCaloriesBurned(t *testing.T) {
	model := &fakeModel{response: "420"}
	a := testAdvisor(model)

	calories, err := a.EstimateCaloriesBurned(context.Background(), completedSummary(45))
	if err != nil {
		t.Fatalf("estimate error: %v", err)
	}
	if calories != 420 {
		t.Errorf("calories = %d, want 420", calories)
	}

	p := model.lastPrompt()
	if !strings.Contains(p, "45 minutes") {
		t.Errorf("prompt missing duration:\n%s", p)
	}
	if !strings.Contains(p, "Squat: 2 sets of 10 reps") {
		t.Errorf("prompt missing exercise description:\n%s", p)
	}
}

func TestEstimateCaloriesBurnedTrimsResponse(t *testing.T) {
	a := testAdvisor(&fakeModel{response: "  512\n"})

	calories, err := a.EstimateCaloriesBurned(context.Background(), completedSummary(30))
	if err != nil {
		t.Fatalf("estimate error: %v", err)
	}
	if calories != 512 {
		t.Errorf("calories = %d, want 512", calories)
	}
}

func TestEstimateCaloriesBurnedMalformed(t *testing.T) {
	a := testAdvisor(&fakeModel{response: "Around 400 calories, give or take."})

	_, err := a.EstimateCaloriesBurned(context.Background(), completedSummary(30))
	var malformed *parse.MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v, want MalformedResponseError", err)
	}
}

func TestEstimateCaloriesBurnedClampsDuration(t *testing.T) {
	model := &fakeModel{response: "900"}
	a := testAdvisor(model)

	// A session left open overnight quotes the 2 hour cap, not 9 hours.
	if _, err := a.EstimateCaloriesBurned(context.Background(), completedSummary(9*60)); err != nil {
		t.Fatalf("estimate error: %v", err)
	}
	p := model.lastPrompt()
	if !strings.Contains(p, "2 hours") {
		t.Errorf("prompt quotes %q, want the 2 hour cap", p)
	}
	if strings.Contains(p, "540 minutes") {
		t.Errorf("prompt quotes the raw duration:\n%s", p)
	}
}

func TestEstimateCaloriesBurnedUnknownDuration(t *testing.T) {
	model := &fakeModel{response: "300"}
	a := testAdvisor(model)

	s := completedSummary(45)
	s.CompletedAt = nil
	if _, err := a.EstimateCaloriesBurned(context.Background(), s); err != nil {
		t.Fatalf("estimate error: %v", err)
	}
	if !strings.Contains(model.lastPrompt(), "Duration: unknown") {
		t.Errorf("prompt should quote unknown duration:\n%s", model.lastPrompt())
	}
}

func TestEstimateCaloriesBurnedModelError(t *testing.T) {
	wantErr := errors.New("provider down")
	a := testAdvisor(&fakeModel{err: wantErr})

	_, err := a.EstimateCaloriesBurned(context.Background(), completedSummary(30))
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want %v", err, wantErr)
	}
}

func TestRecommendMacrosRecomputesCalories(t *testing.T) {
	model := &fakeModel{response: `name: Macronutrients.
calories: 9000
protein: 150
carbs: 200
fat: 70`}
	a := testAdvisor(model)

	facts, err := a.RecommendMacros(context.Background(), "build muscle, stay lean")
	if err != nil {
		t.Fatalf("recommend error: %v", err)
	}
	want := 4*150 + 4*200 + 9*70
	if facts.Calories != want {
		t.Errorf("calories = %d, want %d (macro-derived, not the model's figure)", facts.Calories, want)
	}
	if facts.Protein != 150 || facts.Carbs != 200 || facts.Fat != 70 {
		t.Errorf("macros = %d/%d/%d, want 150/200/70", facts.Protein, facts.Carbs, facts.Fat)
	}
	if !strings.Contains(model.lastPrompt(), "build muscle, stay lean") {
		t.Errorf("prompt missing goals:\n%s", model.lastPrompt())
	}
}

func TestAnalyzeMealFiltersCategories(t *testing.T) {
	model := &fakeModel{response: `name: Chicken Burrito Bowl
calories: 650
protein: 45
carbs: 60
fat: 20
category: meat, grains, intergalactic`}
	a := testAdvisor(model)

	meal, err := a.AnalyzeMeal(context.Background(), "Lunch", "Chicken burrito bowl with rice and beans", "post-workout lunch")
	if err != nil {
		t.Fatalf("analyze error: %v", err)
	}
	if meal.Name != "Chicken Burrito Bowl" {
		t.Errorf("name = %q, want Chicken Burrito Bowl", meal.Name)
	}
	if meal.Caption != "post-workout lunch" {
		t.Errorf("caption = %q, want post-workout lunch", meal.Caption)
	}
	if meal.Calories != 4*45+4*60+9*20 {
		t.Errorf("calories = %d, want macro-derived sum", meal.Calories)
	}
	// "intergalactic" is outside the fixed vocabulary and gets dropped.
	if len(meal.Categories) != 2 {
		t.Fatalf("categories = %v, want 2 known ones", meal.Categories)
	}
}

func TestAnalyzeMealPromptListsVocabulary(t *testing.T) {
	model := &fakeModel{response: "name: Oatmeal\nprotein: 10\ncarbs: 50\nfat: 5"}
	a := testAdvisor(model)

	if _, err := a.AnalyzeMeal(context.Background(), "Breakfast", "Oatmeal with berries", ""); err != nil {
		t.Fatalf("analyze error: %v", err)
	}
	p := model.lastPrompt()
	for _, c := range models.FoodCategories[:3] {
		if !strings.Contains(p, string(c)) {
			t.Errorf("prompt missing category %q", c)
		}
	}
}
