package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/recipelens/basil/internal/cache"
	"github.com/recipelens/basil/internal/mealdb"
)

const (
	// indexTTL keeps the id index for a week; the catalog changes slowly
	// and the scan is expensive.
	indexTTL = 7 * 24 * time.Hour
	// featuredTTL keeps the featured set fresh within the hour.
	featuredTTL = time.Hour
)

// RecipeSource is the slice of the recipe gateway the warmer needs.
type RecipeSource interface {
	AllRecipeIDs(ctx context.Context) ([]string, error)
	FeaturedRecipes(ctx context.Context) []mealdb.Recipe
}

// Warmer populates long-lived cache entries ahead of demand: the full
// recipe id index and the featured recipe set.
type Warmer struct {
	recipes RecipeSource
	cache   cache.Cache
	metrics *WorkerMetrics
}

// NewWarmer creates a new cache warmer.
func NewWarmer(recipes RecipeSource, store cache.Cache, metrics *WorkerMetrics) *Warmer {
	return &Warmer{
		recipes: recipes,
		cache:   store,
		metrics: metrics,
	}
}

// HandleWarmIndex scans the full recipe catalog and caches the id index.
func (w *Warmer) HandleWarmIndex(ctx context.Context, t *asynq.Task) error {
	start := time.Now()

	var payload WarmIndexPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	slog.Info("Warming recipe id index", "job_id", payload.JobID)

	ids, err := w.recipes.AllRecipeIDs(ctx)
	if err != nil {
		w.metrics.RecordJob(ctx, TypeWarmIndex, "failed", time.Since(start).Seconds())
		return fmt.Errorf("id scan failed: %w", err)
	}
	if len(ids) == 0 {
		// Caching an empty index would hide the whole catalog for a week.
		w.metrics.RecordJob(ctx, TypeWarmIndex, "failed", time.Since(start).Seconds())
		return fmt.Errorf("id scan returned no recipes")
	}

	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if err := w.cache.Set(ctx, cache.IndexKey, data, indexTTL); err != nil {
		w.metrics.RecordJob(ctx, TypeWarmIndex, "failed", time.Since(start).Seconds())
		return fmt.Errorf("failed to store id index: %w", err)
	}

	slog.Info("Recipe id index warmed",
		"job_id", payload.JobID,
		"recipe_count", len(ids),
		"duration", time.Since(start))
	w.metrics.RecordJob(ctx, TypeWarmIndex, "success", time.Since(start).Seconds())
	return nil
}

// HandleWarmFeatured refreshes the cached featured recipe set.
func (w *Warmer) HandleWarmFeatured(ctx context.Context, t *asynq.Task) error {
	start := time.Now()

	var payload WarmFeaturedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	slog.Info("Warming featured recipes", "job_id", payload.JobID)

	recipes := w.recipes.FeaturedRecipes(ctx)
	if len(recipes) == 0 {
		w.metrics.RecordJob(ctx, TypeWarmFeatured, "failed", time.Since(start).Seconds())
		return fmt.Errorf("featured fetch returned no recipes")
	}

	data, err := json.Marshal(recipes)
	if err != nil {
		return err
	}
	if err := w.cache.Set(ctx, cache.FeaturedKey, data, featuredTTL); err != nil {
		w.metrics.RecordJob(ctx, TypeWarmFeatured, "failed", time.Since(start).Seconds())
		return fmt.Errorf("failed to store featured set: %w", err)
	}

	slog.Info("Featured recipes warmed",
		"job_id", payload.JobID,
		"recipe_count", len(recipes),
		"duration", time.Since(start))
	w.metrics.RecordJob(ctx, TypeWarmFeatured, "success", time.Since(start).Seconds())
	return nil
}
