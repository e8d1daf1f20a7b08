package ai

import (
	"fmt"
	"strings"

	"github.com/recipelens/basil/internal/mealdb"
)

const searchFilterRoleSection = `<ROLE>
You are a helpful assistant that extracts search parameters from free-text recipe queries. Your task is to map the user's wording onto the structured filter fields the recipe database understands.
</ROLE>`

const searchFilterOutputSection = `<OUTPUT_FORMAT>
Return a JSON object with:
{
  "ingredient": "main ingredient (singular)",
  "cuisine": "cuisine type",
  "category": "dish category",
  "query": "original query",
  "firstLetter": "first letter if specified",
  "dietary": "dietary restrictions",
  "cookingMethod": "primary cooking method"
}
Omit fields not present in the query. Be concise and accurate.
</OUTPUT_FORMAT>`

const analysisRoleSection = `<ROLE>
You are a chef and nutritionist. Analyze the recipe you are given and estimate how demanding it is to cook, how long preparation takes, and what stands out nutritionally.
</ROLE>`

const analysisOutputSection = `<OUTPUT_FORMAT>
Return a JSON object:
{
  "difficulty": "Easy/Medium/Hard",
  "prepTime": "estimated time",
  "cookingTechniques": ["technique1", "technique2"],
  "healthRating": "Low/Moderate/High",
  "nutritionalHighlights": ["benefit1", "benefit2"],
  "substitutionSuggestions": [{"ingredient": "name", "alternatives": ["sub1", "sub2"]}],
  "pairingRecommendations": ["pairing1", "pairing2"]
}
Limit arrays to 3-5 items. Be accurate.
</OUTPUT_FORMAT>`

// maxInstructionChars bounds how much of the instructions text is embedded
// in the analysis prompt.
const maxInstructionChars = 1000

// BuildSearchFilterPrompt returns the system prompt for query-intent extraction.
func BuildSearchFilterPrompt() string {
	return searchFilterRoleSection + "\n\n" + searchFilterOutputSection
}

// BuildAnalysisPrompt returns the system prompt for recipe analysis.
func BuildAnalysisPrompt() string {
	return analysisRoleSection + "\n\n" + analysisOutputSection
}

// BuildRecipeContext renders the user message for an analysis request:
// recipe identity, the flattened ingredient list, and a bounded slice of
// the instructions.
func BuildRecipeContext(recipe mealdb.Recipe) string {
	var ingredients []string
	for _, ing := range recipe.Ingredients {
		if ing.Ingredient == "" || ing.Measure == "" {
			continue
		}
		ingredients = append(ingredients, ing.Measure+" "+ing.Ingredient)
	}
	ingredientsList := "Not specified"
	if len(ingredients) > 0 {
		ingredientsList = strings.Join(ingredients, ", ")
	}

	instructions := "Not specified"
	if recipe.Instructions != "" {
		instructions = truncate(recipe.Instructions, maxInstructionChars)
	}

	return fmt.Sprintf("Recipe: %s\nCategory: %s\nCuisine: %s\nIngredients: %s\nInstructions: %s",
		recipe.Name,
		orUnknown(recipe.Category),
		orUnknown(recipe.Cuisine),
		ingredientsList,
		instructions,
	)
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
