package models

import (
	"time"

	"github.com/google/uuid"
)

// FoodCategory is one entry of the fixed category vocabulary the model is
// asked to choose from when analyzing a meal.
type FoodCategory string

const (
	Grains            FoodCategory = "grains"
	Fruits            FoodCategory = "fruits"
	Vegetables        FoodCategory = "vegetables"
	Dairy             FoodCategory = "dairy"
	Meat              FoodCategory = "meat"
	FishAndSeafood    FoodCategory = "fishAndSeafood"
	Eggs              FoodCategory = "eggs"
	NutsSeedsLegumes  FoodCategory = "nutsSeedsAndLegumes"
	FatsAndOils       FoodCategory = "fatsAndOils"
	SweetsAndDesserts FoodCategory = "sweetsAndDesserts"
	Snacks            FoodCategory = "snacks"
	Water             FoodCategory = "water"
	Juices            FoodCategory = "juices"
	SoftDrinks        FoodCategory = "softDrinks"
	AlcoholicDrinks   FoodCategory = "alcoholicDrinks"
	CoffeeAndTea      FoodCategory = "coffeeAndTea"
	FastFood          FoodCategory = "fastFood"
	CondimentsSauces  FoodCategory = "condimentsAndSauces"
	SoupsAndBroths    FoodCategory = "soupsAndBroths"
	ProcessedFoods    FoodCategory = "processedAndPrepackagedFoods"
	RegionalCuisines  FoodCategory = "ethnicOrRegionalCuisines"
	BreakfastFoods    FoodCategory = "breakfastFoods"
)

// FoodCategories lists the vocabulary in the order it is shown to the model.
var FoodCategories = []FoodCategory{
	Grains, Fruits, Vegetables, Dairy, Meat, FishAndSeafood, Eggs,
	NutsSeedsLegumes, FatsAndOils, SweetsAndDesserts, Snacks, Water,
	Juices, SoftDrinks, AlcoholicDrinks, CoffeeAndTea, FastFood,
	CondimentsSauces, SoupsAndBroths, ProcessedFoods, RegionalCuisines,
	BreakfastFoods,
}

// ParseFoodCategory matches a raw category string against the vocabulary.
func ParseFoodCategory(raw string) (FoodCategory, bool) {
	for _, c := range FoodCategories {
		if string(c) == raw {
			return c, true
		}
	}
	return "", false
}

// Meal is a macro estimation produced from model output. Calories are
// always recomputed from the macros, never trusted from the raw text.
type Meal struct {
	ID         uuid.UUID      `json:"id"`
	Name       string         `json:"name"`
	Categories []FoodCategory `json:"categories"`
	Caption    string         `json:"caption,omitempty"`
	Calories   int            `json:"calories"`
	Protein    int            `json:"protein"`
	Carbs      int            `json:"carbs"`
	Fat        int            `json:"fat"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}
