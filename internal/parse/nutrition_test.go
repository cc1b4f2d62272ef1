package parse

import "testing"

func TestNutritionBasic(t *testing.T) {
	raw := `name: Grilled Chicken Salad
calories: 9999
protein: 40
carbs: 12
fat: 18
category: meat, vegetables`

	facts := Nutrition(raw)

	if facts.Name != "Grilled Chicken Salad" {
		t.Errorf("name = %q, want %q", facts.Name, "Grilled Chicken Salad")
	}
	if facts.Protein != 40 || facts.Carbs != 12 || facts.Fat != 18 {
		t.Errorf("macros = %d/%d/%d, want 40/12/18", facts.Protein, facts.Carbs, facts.Fat)
	}
	if got := len(facts.Categories); got != 2 {
		t.Fatalf("categories = %d, want 2", got)
	}
	if facts.Categories[0] != "meat" || facts.Categories[1] != "vegetables" {
		t.Errorf("categories = %v, want [meat vegetables]", facts.Categories)
	}
}

// The model's own calorie line is never trusted; the total is always
// derived from the macros at 4/4/9 kcal per gram.
func TestNutritionCaloriesRecomputed(t *testing.T) {
	raw := "calories: 12345\nprotein: 30\ncarbs: 50\nfat: 10"
	facts := Nutrition(raw)

	want := 4*30 + 4*50 + 9*10
	if facts.Calories != want {
		t.Errorf("calories = %d, want %d", facts.Calories, want)
	}
}

func TestNutritionStripsAsterisksAndWhitespace(t *testing.T) {
	raw := "  **name**:  Oatmeal  \n **protein**: 12 "
	facts := Nutrition(raw)

	if facts.Name != "Oatmeal" {
		t.Errorf("name = %q, want %q", facts.Name, "Oatmeal")
	}
	if facts.Protein != 12 {
		t.Errorf("protein = %d, want 12", facts.Protein)
	}
}

func TestNutritionUnknownAndMissingKeys(t *testing.T) {
	raw := "name: Toast\nserving: 2 slices\ncarbs: 30\nvibe: excellent"
	facts := Nutrition(raw)

	if facts.Name != "Toast" {
		t.Errorf("name = %q, want %q", facts.Name, "Toast")
	}
	if facts.Protein != 0 || facts.Fat != 0 {
		t.Errorf("missing macros = %d/%d, want 0/0", facts.Protein, facts.Fat)
	}
	if facts.Calories != 4*30 {
		t.Errorf("calories = %d, want %d", facts.Calories, 4*30)
	}
}

func TestNutritionNonNumericValuesDefaultToZero(t *testing.T) {
	facts := Nutrition("protein: about forty\nfat: 9g")
	if facts.Protein != 0 || facts.Fat != 0 {
		t.Errorf("macros = %d/%d, want 0/0", facts.Protein, facts.Fat)
	}
}

// Re-parsing the parser's own dump yields the same record.
func TestNutritionRoundTripIdempotent(t *testing.T) {
	raw := "name: Burrito Bowl\nprotein: 35\ncarbs: 60\nfat: 20\ncategory: fastFood"
	first := Nutrition(raw)
	second := Nutrition(first.Dump())

	if second.Name != first.Name || second.Calories != first.Calories ||
		second.Protein != first.Protein || second.Carbs != first.Carbs ||
		second.Fat != first.Fat {
		t.Errorf("round trip = %+v, want %+v", second, first)
	}
	if len(second.Categories) != len(first.Categories) {
		t.Errorf("round trip categories = %v, want %v", second.Categories, first.Categories)
	}
}
