package analysis

// Substitution suggests alternatives for a single ingredient.
type Substitution struct {
	Ingredient   string   `json:"ingredient"`
	Alternatives []string `json:"alternatives"`
}

// RecipeAnalysis is the model's structured assessment of a recipe.
type RecipeAnalysis struct {
	Difficulty              string         `json:"difficulty"`
	PrepTime                string         `json:"prepTime"`
	CookingTechniques       []string       `json:"cookingTechniques"`
	HealthRating            string         `json:"healthRating"`
	NutritionalHighlights   []string       `json:"nutritionalHighlights"`
	SubstitutionSuggestions []Substitution `json:"substitutionSuggestions"`
	PairingRecommendations  []string       `json:"pairingRecommendations"`
}

// DefaultAnalysis returns the placeholder served when analysis is
// unavailable or the model reply cannot be parsed.
func DefaultAnalysis() RecipeAnalysis {
	return RecipeAnalysis{
		Difficulty:              "Medium",
		PrepTime:                "30-45 minutes",
		CookingTechniques:       []string{"Baking"},
		HealthRating:            "Moderate",
		NutritionalHighlights:   []string{"Protein"},
		SubstitutionSuggestions: []Substitution{},
		PairingRecommendations:  []string{"Water"},
	}
}
