package validation

import (
	"fmt"
	"strings"

	"github.com/recipelens/basil/internal/errors"
	"github.com/recipelens/basil/internal/mealdb"
)

// maxQueryLength bounds free-text search queries before they reach the
// model; anything longer is noise or abuse.
const maxQueryLength = 500

// ValidateRecipe checks that a recipe payload is complete enough to
// analyze. The analysis cache is keyed by id and the prompt is built from
// the name, so both are required.
func ValidateRecipe(recipe mealdb.Recipe) error {
	var missing []string
	if strings.TrimSpace(recipe.ID) == "" {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(recipe.Name) == "" {
		missing = append(missing, "name")
	}

	if len(missing) > 0 {
		return errors.NewValidationError(
			fmt.Sprintf("recipe is missing required fields: %s", strings.Join(missing, ", ")),
			"RECIPE_INCOMPLETE",
			"include the recipe id and name in the request body",
		)
	}
	return nil
}

// ValidateSearchQuery checks a free-text search query.
func ValidateSearchQuery(query string) error {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return errors.NewValidationError(
			"search query is empty",
			"QUERY_EMPTY",
			"provide a non-empty search query",
		)
	}
	if len(trimmed) > maxQueryLength {
		return errors.NewValidationError(
			fmt.Sprintf("search query exceeds %d characters", maxQueryLength),
			"QUERY_TOO_LONG",
			"shorten the search query",
		)
	}
	return nil
}
