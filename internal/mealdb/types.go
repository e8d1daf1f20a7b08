package mealdb

import (
	"encoding/json"
	"fmt"
	"strings"
)

// maxIngredientSlots is the fixed width of the upstream ingredient schema:
// every meal record carries strIngredient1..20 / strMeasure1..20.
const maxIngredientSlots = 20

// maxMainIngredients caps the truncated ingredient-name list used for
// card display.
const maxMainIngredients = 5

// Ingredient is one entry of a recipe's ingredient list.
type Ingredient struct {
	Ingredient string `json:"ingredient"`
	Measure    string `json:"measure"`
}

// Recipe is the normalized view of an upstream meal record. It is built
// once at the ingestion boundary and never mutated afterwards.
type Recipe struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Category        string       `json:"category,omitempty"`
	Cuisine         string       `json:"cuisine,omitempty"`
	Instructions    string       `json:"instructions,omitempty"`
	Thumbnail       string       `json:"thumbnail"`
	Tags            string       `json:"tags,omitempty"`
	VideoURL        string       `json:"videoUrl,omitempty"`
	Ingredients     []Ingredient `json:"ingredients,omitempty"`
	MainIngredients []string     `json:"mainIngredients,omitempty"`
}

// SearchFilters is a sparse query descriptor. All fields are optional;
// an empty filter set yields an empty result without a network call.
type SearchFilters struct {
	Ingredient    string `json:"ingredient,omitempty"`
	Cuisine       string `json:"cuisine,omitempty"`
	Category      string `json:"category,omitempty"`
	Query         string `json:"query,omitempty"`
	FirstLetter   string `json:"firstLetter,omitempty"`
	Dietary       string `json:"dietary,omitempty"`
	CookingMethod string `json:"cookingMethod,omitempty"`
}

// IsEmpty reports whether no query-selecting field is set. Dietary and
// CookingMethod are post-filters only and cannot select a query mode.
func (f SearchFilters) IsEmpty() bool {
	return f.Query == "" && f.FirstLetter == "" && f.Ingredient == "" &&
		f.Cuisine == "" && f.Category == ""
}

// mealRecord is the raw upstream shape. Every field TheMealDB returns is a
// string or null, so the record decodes through a flat string map and the
// numbered ingredient slots are collapsed right here; the loose keyed
// fields never travel further.
type mealRecord struct {
	ID           string
	Name         string
	Category     string
	Area         string
	Instructions string
	Thumbnail    string
	Tags         string
	YouTube      string
	Slots        [maxIngredientSlots]Ingredient
}

func (m *mealRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]*string
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	get := func(key string) string {
		if v := fields[key]; v != nil {
			return *v
		}
		return ""
	}

	m.ID = get("idMeal")
	m.Name = get("strMeal")
	m.Category = get("strCategory")
	m.Area = get("strArea")
	m.Instructions = get("strInstructions")
	m.Thumbnail = get("strMealThumb")
	m.Tags = get("strTags")
	m.YouTube = get("strYoutube")

	for i := 0; i < maxIngredientSlots; i++ {
		m.Slots[i] = Ingredient{
			Ingredient: get(fmt.Sprintf("strIngredient%d", i+1)),
			Measure:    get(fmt.Sprintf("strMeasure%d", i+1)),
		}
	}

	return nil
}

// toRecipe normalizes a raw record. Blank ingredient slots are dropped;
// a malformed record degrades to an unnamed placeholder rather than an error.
func (m *mealRecord) toRecipe() Recipe {
	if m == nil || (m.ID == "" && m.Name == "") {
		return Recipe{Name: "Unknown Recipe"}
	}

	recipe := Recipe{
		ID:           m.ID,
		Name:         m.Name,
		Category:     m.Category,
		Cuisine:      m.Area,
		Instructions: m.Instructions,
		Thumbnail:    m.Thumbnail,
		Tags:         m.Tags,
		VideoURL:     m.YouTube,
	}
	if recipe.Name == "" {
		recipe.Name = "Unknown Recipe"
	}

	for _, slot := range m.Slots {
		name := strings.TrimSpace(slot.Ingredient)
		if name == "" {
			continue
		}
		recipe.Ingredients = append(recipe.Ingredients, Ingredient{
			Ingredient: name,
			Measure:    strings.TrimSpace(slot.Measure),
		})
		if len(recipe.MainIngredients) < maxMainIngredients {
			recipe.MainIngredients = append(recipe.MainIngredients, name)
		}
	}

	return recipe
}

// mealsResponse is the envelope every upstream endpoint shares. A null
// meals array means no results.
type mealsResponse struct {
	Meals []mealRecord `json:"meals"`
}

// meatKeywords flags non-vegetarian ingredients for the dietary post-filter.
var meatKeywords = []string{"beef", "chicken", "pork", "lamb", "meat", "fish"}

// isVegetarian reports whether no ingredient name contains a meat keyword
// (case-insensitive substring match).
func isVegetarian(r Recipe) bool {
	for _, ing := range r.Ingredients {
		name := strings.ToLower(ing.Ingredient)
		for _, keyword := range meatKeywords {
			if strings.Contains(name, keyword) {
				return false
			}
		}
	}
	return true
}

// matchesFilters applies the dietary and cooking-method post-filters.
func matchesFilters(r Recipe, f SearchFilters) bool {
	if strings.EqualFold(f.Dietary, "vegetarian") && !isVegetarian(r) {
		return false
	}
	if f.CookingMethod != "" {
		if !strings.Contains(strings.ToLower(r.Instructions), strings.ToLower(f.CookingMethod)) {
			return false
		}
	}
	return true
}
