package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/recipelens/basil/internal/cache"
	apperrors "github.com/recipelens/basil/internal/errors"
	"github.com/recipelens/basil/internal/mealdb"
	"github.com/recipelens/basil/internal/validation"
	"github.com/recipelens/basil/internal/worker"
)

type AnalyzeRecipeRequest struct {
	Recipe mealdb.Recipe `json:"recipe"`
}

// HandleAnalyzeRecipe returns the model's structured assessment of the
// submitted recipe. The analysis service degrades internally, so a valid
// request always gets a 200 with at least the default assessment.
func (s *Server) HandleAnalyzeRecipe(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.NewValidationError(
			"invalid request body",
			"BODY_INVALID",
			"send a JSON body with a recipe object",
		))
		return
	}

	if err := validation.ValidateRecipe(req.Recipe); err != nil {
		writeError(w, err)
		return
	}

	result := s.analyzer.AnalyzeRecipe(r.Context(), req.Recipe)
	writeJSON(w, http.StatusOK, result)
}

type SearchRequest struct {
	Query string `json:"query"`
}

type SearchResponse struct {
	Filters mealdb.SearchFilters `json:"filters"`
	Recipes []mealdb.Recipe      `json:"recipes"`
}

// HandleSearch extracts structured filters from a free-text query and runs
// the recipe search with them.
func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.NewValidationError(
			"invalid request body",
			"BODY_INVALID",
			"send a JSON body with a query string",
		))
		return
	}

	if err := validation.ValidateSearchQuery(req.Query); err != nil {
		writeError(w, err)
		return
	}

	filters := s.analyzer.ProcessSearchQuery(r.Context(), req.Query)

	recipes, err := s.recipes.Search(r.Context(), filters)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Filters: filters,
		Recipes: recipes,
	})
}

// HandleFeaturedRecipes serves the featured set, preferring the warmed
// cache entry and falling back to a live fetch. Always a 200; an upstream
// outage yields an empty list.
func (s *Server) HandleFeaturedRecipes(w http.ResponseWriter, r *http.Request) {
	if data, err := s.store.Get(r.Context(), cache.FeaturedKey); err == nil && data != nil {
		var recipes []mealdb.Recipe
		if json.Unmarshal(data, &recipes) == nil {
			writeJSON(w, http.StatusOK, recipes)
			return
		}
	}

	recipes := s.recipes.FeaturedRecipes(r.Context())

	if len(recipes) > 0 {
		if data, err := json.Marshal(recipes); err == nil {
			if err := s.store.Set(r.Context(), cache.FeaturedKey, data, featuredCacheTTL); err != nil {
				slog.Warn("failed to cache featured recipes", "error", err)
			}
		}
	}

	writeJSON(w, http.StatusOK, recipes)
}

// HandleRecipeSearch runs a search from explicit query parameters, without
// the model in the loop.
func (s *Server) HandleRecipeSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := mealdb.SearchFilters{
		Query:         q.Get("query"),
		FirstLetter:   q.Get("firstLetter"),
		Ingredient:    q.Get("ingredient"),
		Cuisine:       q.Get("cuisine"),
		Category:      q.Get("category"),
		Dietary:       q.Get("dietary"),
		CookingMethod: q.Get("cookingMethod"),
	}

	if filters.IsEmpty() {
		writeError(w, apperrors.NewValidationError(
			"no search filters provided",
			"FILTERS_EMPTY",
			"provide at least one of query, firstLetter, ingredient, cuisine or category",
		))
		return
	}

	recipes, err := s.recipes.Search(r.Context(), filters)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recipes)
}

// HandleRecipeByID serves a single recipe or a 404.
func (s *Server) HandleRecipeByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	recipe := s.recipes.RecipeByID(r.Context(), id)
	if recipe == nil {
		writeError(w, apperrors.NewNotFoundError(
			"recipe not found",
			"RECIPE_NOT_FOUND",
			"check the recipe id",
		))
		return
	}

	writeJSON(w, http.StatusOK, recipe)
}

// HandleRandomRecipe serves one random recipe, 404 when the upstream has
// nothing to offer.
func (s *Server) HandleRandomRecipe(w http.ResponseWriter, r *http.Request) {
	recipe := s.recipes.RandomRecipe(r.Context())
	if recipe == nil {
		writeError(w, apperrors.NewNotFoundError(
			"no recipe available",
			"RECIPE_NOT_FOUND",
			"try again shortly",
		))
		return
	}

	writeJSON(w, http.StatusOK, recipe)
}

type WarmIndexResponse struct {
	JobID string `json:"job_id"`
}

// HandleWarmIndex enqueues a background rebuild of the recipe id index.
func (s *Server) HandleWarmIndex(w http.ResponseWriter, r *http.Request) {
	if s.asynqClient == nil {
		writeError(w, apperrors.NewInternalError(
			"job queue not configured",
			"QUEUE_UNAVAILABLE",
			nil,
		))
		return
	}

	jobID := uuid.New().String()

	task, err := worker.NewWarmIndexTask(worker.WarmIndexPayload{JobID: jobID})
	if err != nil {
		writeError(w, apperrors.NewInternalError("failed to create task", "TASK_CREATE_FAILED", err))
		return
	}

	if _, err := s.asynqClient.EnqueueContext(r.Context(), task); err != nil {
		writeError(w, apperrors.NewInternalError("failed to enqueue task", "TASK_ENQUEUE_FAILED", err))
		return
	}

	writeJSON(w, http.StatusAccepted, WarmIndexResponse{JobID: jobID})
}
