package workout

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/claude/pulselift/internal/llm"
	"github.com/claude/pulselift/internal/models"
	"github.com/claude/pulselift/internal/parse"
	"github.com/google/uuid"
)

// maxReportedDuration caps the duration quoted in the calorie prompt.
// Sessions left open longer than this are almost always a forgotten
// timer, not a four-hour workout.
const maxReportedDuration = 2 * time.Hour

// Advisor answers the nutrition and calorie questions the app asks the
// model outside of workout generation.
type Advisor struct {
	model ModelClient
	log   *slog.Logger
}

// NewAdvisor builds an advisor over the given model gateway.
func NewAdvisor(model ModelClient, log *slog.Logger) *Advisor {
	return &Advisor{model: model, log: log}
}

// EstimateCaloriesBurned asks the model for a calorie estimate over the
// completed logs of a workout summary. The model is instructed to reply
// with a bare number; anything else is a malformed response.
func (a *Advisor) EstimateCaloriesBurned(ctx context.Context, s models.WorkoutSummary) (int, error) {
	duration := s.Duration()
	var quoted string
	switch {
	case duration > maxReportedDuration:
		quoted = "2 hours"
	case duration > 0:
		quoted = fmt.Sprintf("%d minutes", int(duration.Minutes()))
	default:
		quoted = "unknown"
	}

	p := fmt.Sprintf(`Estimate the total calories burned during a workout given the following details:

- Duration: %s
- Exercises and reps/sets completed:
%s
Respond with only the numeric value of the total calories burned, without any additional explanations or text.`,
		quoted, describeCompletedExercises(s.ExercisesCompleted))

	text, err := a.model.Complete(ctx, p, llm.Params{
		Model:       llm.ModelFast,
		MaxTokens:   50,
		Temperature: 0.3,
	})
	if err != nil {
		return 0, err
	}

	calories, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, &parse.MalformedResponseError{
			Reason: "calorie estimate is not a bare number",
			Input:  text,
		}
	}
	return calories, nil
}

func describeCompletedExercises(logs []models.ExerciseLog) string {
	var b strings.Builder
	for _, l := range logs {
		var reps int
		var weight float64
		if len(l.Logs) > 0 {
			reps = l.Logs[0].Reps
			weight = l.Logs[0].Weight
		}
		fmt.Fprintf(&b, "- %s: %d sets of %d reps at %.1f\n", l.Exercise.Name, len(l.Logs), reps, weight)
		if l.IsSplit && len(l.Logs) > 0 {
			fmt.Fprintf(&b, "  (split: left side %d reps at %.1f)\n", l.Logs[0].LeftReps, l.Logs[0].LeftWeight)
		}
		if l.Exercise.IsBodyWeight {
			b.WriteString("  (bodyweight exercise)\n")
		}
	}
	return b.String()
}

const macroFormat = `name: %s
calories: value
protein: value(number is in grams however ONLY SHOW NUMERIC VALUE)
carbs: value(number is in grams however ONLY SHOW NUMERIC VALUE)
fat: value(number is in grams however ONLY SHOW NUMERIC VALUE)`

// RecommendMacros asks the model for daily macro targets matching the
// user's stated goals.
func (a *Advisor) RecommendMacros(ctx context.Context, goals string) (parse.NutritionFacts, error) {
	p := fmt.Sprintf(`Can you recommend macros that I should eat for the day based on my goals: '%s'

Provide me with the macronutrients in the following format:
%s`, goals, fmt.Sprintf(macroFormat, "Macronutrients."))

	text, err := a.model.Complete(ctx, p, llm.Params{
		Model:       llm.ModelFast,
		MaxTokens:   200,
		Temperature: 0.5,
	})
	if err != nil {
		return parse.NutritionFacts{}, err
	}
	return parse.Nutrition(text), nil
}

// AnalyzeMeal asks the model to estimate macros for a described meal and
// returns the structured Meal record. Categories the model invents
// outside the fixed vocabulary are dropped.
func (a *Advisor) AnalyzeMeal(ctx context.Context, title, description, caption string) (models.Meal, error) {
	var vocab strings.Builder
	for _, c := range models.FoodCategories {
		vocab.WriteString("- " + string(c) + "\n")
	}

	p := fmt.Sprintf(`Analyze the following description of a meal: '%s-'
'%s'

food and provide an estimation of its macronutrients in the following format:
%s
category: value(choose one or more categories from the list provided)

Here's the list of categories:
%s`, title, description, fmt.Sprintf(macroFormat, "name of the meal(Choose a name that best describes the food)."), vocab.String())

	text, err := a.model.Complete(ctx, p, llm.Params{
		Model:       llm.ModelFast,
		MaxTokens:   300,
		Temperature: 0.5,
	})
	if err != nil {
		return models.Meal{}, err
	}

	facts := parse.Nutrition(text)
	now := time.Now()
	meal := models.Meal{
		ID:        uuid.New(),
		Name:      facts.Name,
		Caption:   caption,
		Calories:  facts.Calories,
		Protein:   facts.Protein,
		Carbs:     facts.Carbs,
		Fat:       facts.Fat,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, raw := range facts.Categories {
		if c, ok := models.ParseFoodCategory(raw); ok {
			meal.Categories = append(meal.Categories, c)
		}
	}
	return meal, nil
}
