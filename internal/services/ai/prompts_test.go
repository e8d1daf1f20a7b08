package ai

import (
	"strings"
	"testing"

	"github.com/recipelens/basil/internal/mealdb"
)

func TestBuildSearchFilterPrompt(t *testing.T) {
	prompt := BuildSearchFilterPrompt()

	for _, field := range []string{"ingredient", "cuisine", "category", "query", "firstLetter", "dietary", "cookingMethod"} {
		if !strings.Contains(prompt, field) {
			t.Errorf("prompt missing filter field %q", field)
		}
	}
	if !strings.Contains(prompt, "Omit fields not present") {
		t.Error("prompt should instruct the model to omit absent fields")
	}
}

func TestBuildAnalysisPrompt(t *testing.T) {
	prompt := BuildAnalysisPrompt()

	for _, field := range []string{"difficulty", "prepTime", "cookingTechniques", "healthRating", "nutritionalHighlights", "substitutionSuggestions", "pairingRecommendations"} {
		if !strings.Contains(prompt, field) {
			t.Errorf("prompt missing analysis field %q", field)
		}
	}
	if !strings.Contains(prompt, "3-5 items") {
		t.Error("prompt should cap list lengths")
	}
}

func TestBuildRecipeContext(t *testing.T) {
	recipe := mealdb.Recipe{
		ID:           "52977",
		Name:         "Corba",
		Category:     "Side",
		Cuisine:      "Turkish",
		Instructions: strings.Repeat("Simmer gently. ", 100),
		Ingredients: []mealdb.Ingredient{
			{Ingredient: "lentils", Measure: "1 cup"},
			{Ingredient: "salt", Measure: ""}, // no measure, excluded from the prompt
		},
	}

	content := BuildRecipeContext(recipe)

	if !strings.Contains(content, "Recipe: Corba") {
		t.Error("missing recipe name")
	}
	if !strings.Contains(content, "1 cup lentils") {
		t.Error("missing measured ingredient")
	}
	if strings.Contains(content, "salt") {
		t.Error("unmeasured ingredient should be excluded")
	}

	// Instructions clipped to the prompt budget
	idx := strings.Index(content, "Instructions: ")
	if idx < 0 {
		t.Fatal("missing instructions section")
	}
	if got := len([]rune(content[idx+len("Instructions: "):])); got > maxInstructionChars {
		t.Errorf("instructions not truncated: %d runes", got)
	}
}

func TestBuildRecipeContext_Sparse(t *testing.T) {
	content := BuildRecipeContext(mealdb.Recipe{ID: "1", Name: "Mystery Dish"})

	if !strings.Contains(content, "Category: Unknown") || !strings.Contains(content, "Cuisine: Unknown") {
		t.Error("missing Unknown placeholders")
	}
	if !strings.Contains(content, "Ingredients: Not specified") {
		t.Error("missing ingredient placeholder")
	}
	if !strings.Contains(content, "Instructions: Not specified") {
		t.Error("missing instructions placeholder")
	}
}
