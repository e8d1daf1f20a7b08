package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/recipelens/basil/internal/cache"
	"github.com/recipelens/basil/internal/mealdb"
	"github.com/recipelens/basil/internal/metrics"
	"github.com/recipelens/basil/internal/services/ai"
	"github.com/recipelens/basil/internal/utils"
	"golang.org/x/sync/singleflight"
)

const (
	filterTemperature   = 0.1
	filterMaxTokens     = 150
	analysisTemperature = 0.3
	analysisMaxTokens   = 500
)

// Service answers query-intent extraction and recipe analysis requests.
// Every method degrades to a static default instead of returning an error:
// a broken model must never take recipe browsing down with it.
type Service struct {
	provider ChatProvider
	cache    cache.Cache
	retry    utils.RetryConfig
	group    singleflight.Group
}

// NewService creates an analysis service. A nil provider is valid and means
// every call returns its default immediately.
func NewService(provider ChatProvider, store cache.Cache) *Service {
	return &Service{
		provider: provider,
		cache:    store,
		retry:    utils.DefaultRetryConfig(),
	}
}

// ProcessSearchQuery asks the model to turn a free-text query into
// structured search filters. On any failure the raw query is returned as a
// plain text filter, so search still works when the model does not.
// Identical concurrent queries share a single upstream call.
func (s *Service) ProcessSearchQuery(ctx context.Context, query string) mealdb.SearchFilters {
	fallback := mealdb.SearchFilters{Query: query}

	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return fallback
	}

	key := cache.SearchKeyPrefix + normalized
	if data, err := s.cache.Get(ctx, key); err == nil && data != nil {
		var filters mealdb.SearchFilters
		if json.Unmarshal(data, &filters) == nil {
			metrics.RecordCacheHit(ctx, "search")
			return filters
		}
	}
	metrics.RecordCacheMiss(ctx, "search")

	if s.provider == nil {
		slog.Debug("no chat provider configured, searching with raw query", "query", query)
		return fallback
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		filters, err := s.extractFilters(ctx, query)
		if err != nil {
			return nil, err
		}
		s.store(ctx, key, filters)
		return filters, nil
	})
	if err != nil {
		slog.Warn("search query analysis failed, searching with raw query",
			"query", query,
			"error", err)
		return fallback
	}

	return v.(mealdb.SearchFilters)
}

func (s *Service) extractFilters(ctx context.Context, query string) (mealdb.SearchFilters, error) {
	defer metrics.RecordAnalysisDuration(ctx, "search_query", time.Now())

	req := ChatRequest{
		System:      ai.BuildSearchFilterPrompt(),
		User:        query,
		Temperature: filterTemperature,
		MaxTokens:   filterMaxTokens,
	}

	content, err := utils.WithRetry(ctx, func(ctx context.Context) (string, error) {
		return s.provider.Chat(ctx, req)
	}, s.retry)
	if err != nil {
		return mealdb.SearchFilters{}, err
	}

	var filters mealdb.SearchFilters
	if err := json.Unmarshal([]byte(ExtractJSON(content)), &filters); err != nil {
		return mealdb.SearchFilters{}, fmt.Errorf("unparseable filter response: %w", err)
	}

	// The model paraphrases the free-text term; always keep the
	// original so text search matches what the user typed.
	filters.Query = query

	return filters, nil
}

// AnalyzeRecipe asks the model for a structured assessment of the recipe.
// Results are cached per recipe id. Invalid recipes and failed or
// malformed model replies all yield the static default, never an error.
func (s *Service) AnalyzeRecipe(ctx context.Context, recipe mealdb.Recipe) RecipeAnalysis {
	if recipe.ID == "" || recipe.Name == "" {
		slog.Warn("refusing to analyze incomplete recipe", "id", recipe.ID, "name", recipe.Name)
		return DefaultAnalysis()
	}

	key := cache.AnalysisKeyPrefix + recipe.ID
	if data, err := s.cache.Get(ctx, key); err == nil && data != nil {
		var result RecipeAnalysis
		if json.Unmarshal(data, &result) == nil {
			metrics.RecordCacheHit(ctx, "analysis")
			return result
		}
	}
	metrics.RecordCacheMiss(ctx, "analysis")

	if s.provider == nil {
		return DefaultAnalysis()
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		result, err := s.analyze(ctx, recipe)
		if err != nil {
			return nil, err
		}
		s.store(ctx, key, result)
		return result, nil
	})
	if err != nil {
		slog.Warn("recipe analysis failed, serving default",
			"recipe_id", recipe.ID,
			"error", err)
		return DefaultAnalysis()
	}

	return v.(RecipeAnalysis)
}

func (s *Service) analyze(ctx context.Context, recipe mealdb.Recipe) (RecipeAnalysis, error) {
	defer metrics.RecordAnalysisDuration(ctx, "recipe_analysis", time.Now())

	req := ChatRequest{
		System:      ai.BuildAnalysisPrompt(),
		User:        ai.BuildRecipeContext(recipe),
		Temperature: analysisTemperature,
		MaxTokens:   analysisMaxTokens,
	}

	content, err := utils.WithRetry(ctx, func(ctx context.Context) (string, error) {
		return s.provider.Chat(ctx, req)
	}, s.retry)
	if err != nil {
		return RecipeAnalysis{}, err
	}

	var result RecipeAnalysis
	if err := json.Unmarshal([]byte(ExtractJSON(content)), &result); err != nil {
		return RecipeAnalysis{}, fmt.Errorf("unparseable analysis response: %w", err)
	}

	if result.Difficulty == "" || result.PrepTime == "" {
		return RecipeAnalysis{}, fmt.Errorf("analysis response missing required fields")
	}

	return result, nil
}

// store caches a successful result. Cache failures are logged, not
// propagated: the caller already has the value.
func (s *Service) store(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, cache.DefaultTTL); err != nil {
		slog.Warn("failed to cache analysis result", "key", key, "error", err)
	}
}
