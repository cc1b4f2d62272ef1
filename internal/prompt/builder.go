// Package prompt renders workout-generation prompts from remotely
// configurable templates. Rendering is pure string substitution over a
// fixed set of placeholder tokens; an unresolved token is a configuration
// error, never silently ignored.
package prompt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/claude/pulselift/internal/models"
)

// Placeholder tokens a workout template may contain. Every token present
// in the template must be resolved by Render.
const (
	TokenBodyParts    = "{{bodyParts}}"
	TokenGoal         = "{{goal}}"
	TokenExerciseList = "{{exerciseList}}"
	TokenAllExercises = "{{allExercises}}"
	TokenPredefined   = "{{withPreDefinedExercises}}"
)

var placeholderPattern = regexp.MustCompile(`\{\{\w+\}\}`)

// RenderError reports placeholder tokens left unresolved after
// substitution.
type RenderError struct {
	Unresolved []string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("prompt template has unresolved placeholders: %s",
		strings.Join(e.Unresolved, ", "))
}

// Values holds the substitution values for one workout prompt. All values
// are comma-joined display strings.
type Values struct {
	BodyParts    string
	Goal         string
	ExerciseList string
	AllExercises string
	Predefined   string
}

// Render substitutes vals into template by literal token replacement.
// Returns a *RenderError if any {{...}} token survives substitution,
// including tokens Render does not know about.
func Render(template string, vals Values) (string, error) {
	r := strings.NewReplacer(
		TokenBodyParts, vals.BodyParts,
		TokenGoal, vals.Goal,
		TokenExerciseList, vals.ExerciseList,
		TokenAllExercises, vals.AllExercises,
		TokenPredefined, vals.Predefined,
	)
	out := r.Replace(template)

	if leftover := placeholderPattern.FindAllString(out, -1); len(leftover) > 0 {
		return "", &RenderError{Unresolved: dedupe(leftover)}
	}
	return out, nil
}

// ExpandDisplay rewrites a raw body-part list into the human-readable form
// embedded in prompt text. "back" becomes its three anatomical
// constituents; every other element passes through verbatim.
func ExpandDisplay(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if strings.EqualFold(strings.TrimSpace(r), "back") {
			out = append(out, "latissimus dorsi", "trapezius", "rhomboids")
			continue
		}
		out = append(out, r)
	}
	return out
}

// JoinNames comma-joins exercise names for prompt embedding.
func JoinNames(exercises []models.Exercise) string {
	names := make([]string, len(exercises))
	for i, e := range exercises {
		names[i] = e.Name
	}
	return strings.Join(names, ", ")
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
