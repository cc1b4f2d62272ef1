package parse

import (
	"strconv"
	"strings"
)

// NutritionFacts is the structured result of a nutrition parse. Calories
// are recomputed from the macros (4 kcal/g protein and carbs, 9 kcal/g
// fat) regardless of any calorie line in the raw text, so the reported
// figure always equals the macro-derived figure.
type NutritionFacts struct {
	Name       string
	Categories []string
	Calories   int
	Protein    int
	Carbs      int
	Fat        int
}

// Nutrition extracts a NutritionFacts record from line-oriented key:value
// model output. Asterisks and surrounding whitespace are stripped, keys
// match case-insensitively, unknown keys are ignored and missing numeric
// keys default to 0.
func Nutrition(raw string) NutritionFacts {
	var facts NutritionFacts

	cleaned := strings.ReplaceAll(raw, "*", "")
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch strings.ToLower(key) {
		case "name":
			facts.Name = value
		case "protein":
			facts.Protein = parseInt(value)
		case "carbs":
			facts.Carbs = parseInt(value)
		case "fat":
			facts.Fat = parseInt(value)
		case "calories":
			// Recorded nowhere: the total is derived below.
		case "category":
			for _, c := range strings.Split(value, ",") {
				if c = strings.TrimSpace(c); c != "" {
					facts.Categories = append(facts.Categories, c)
				}
			}
		}
	}

	facts.Calories = 4*facts.Protein + 4*facts.Carbs + 9*facts.Fat
	return facts
}

// Dump renders facts back into the key:value form Nutrition accepts, so
// parsing is idempotent on well-formed input.
func (f NutritionFacts) Dump() string {
	var b strings.Builder
	b.WriteString("name: " + f.Name + "\n")
	b.WriteString("calories: " + strconv.Itoa(f.Calories) + "\n")
	b.WriteString("protein: " + strconv.Itoa(f.Protein) + "\n")
	b.WriteString("carbs: " + strconv.Itoa(f.Carbs) + "\n")
	b.WriteString("fat: " + strconv.Itoa(f.Fat) + "\n")
	if len(f.Categories) > 0 {
		b.WriteString("category: " + strings.Join(f.Categories, ", ") + "\n")
	}
	return b.String()
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
