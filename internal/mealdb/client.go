package mealdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/recipelens/basil/internal/errors"
	"github.com/recipelens/basil/internal/httpclient"
	"github.com/recipelens/basil/internal/metrics"
	"github.com/recipelens/basil/internal/utils"
)

const providerName = "TheMealDB"

const (
	featuredCount = 6
	randomDraws   = 3
	scanBatchSize = 5
)

// featuredCategories are the fallback buckets sampled when the random
// endpoint cannot fill the featured set.
var featuredCategories = []string{"Beef", "Chicken", "Dessert", "Pasta", "Seafood", "Vegetarian"}

// Client talks to a TheMealDB-style recipe API. Search propagates upstream
// failures; every other operation degrades to nil or a partial result.
type Client struct {
	baseURL    string
	httpClient *http.Client

	scanConfig utils.RetryConfig
	batchPause time.Duration
}

// NewClient creates a gateway client against the given API base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpclient.NewInstrumentedClient(30 * time.Second),
		scanConfig: utils.ScanRetryConfig(),
		batchPause: time.Second,
	}
}

// getMeals performs one upstream request and decodes the shared meals envelope.
func (c *Client) getMeals(ctx context.Context, endpoint string) (*mealsResponse, error) {
	start := time.Now()
	defer metrics.RecordExternalCall(ctx, providerName, start)

	req, err := http.NewRequestWithContext(httpclient.WithProvider(ctx, providerName), http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("TheMealDB error (status %d): %s", resp.StatusCode, string(body))
	}

	var out mealsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) lookupRecord(ctx context.Context, id string) (*mealRecord, error) {
	res, err := c.getMeals(ctx, c.baseURL+"/lookup.php?i="+url.QueryEscape(id))
	if err != nil {
		return nil, err
	}
	if len(res.Meals) == 0 {
		return nil, nil
	}
	return &res.Meals[0], nil
}

// FeaturedRecipes assembles up to six distinct recipes: a bounded number of
// random draws first, then one sample per fallback category. Persistent
// upstream failure yields a short or empty list, never an error.
func (c *Client) FeaturedRecipes(ctx context.Context) []Recipe {
	seen := make(map[string]bool)
	var recipes []Recipe

	for attempt := 0; attempt < randomDraws && len(recipes) < featuredCount; attempt++ {
		res, err := c.getMeals(ctx, c.baseURL+"/random.php")
		if err != nil {
			slog.Warn("Random recipe draw failed", "attempt", attempt+1, "error", err)
			continue
		}
		if len(res.Meals) == 0 {
			continue
		}
		recipe := res.Meals[0].toRecipe()
		if recipe.ID == "" || seen[recipe.ID] {
			continue
		}
		seen[recipe.ID] = true
		recipes = append(recipes, recipe)
	}

	if len(recipes) >= featuredCount {
		return recipes
	}

	// Fallback: one detail lookup per category bucket, in parallel.
	funcs := make([]func(ctx context.Context) (Recipe, error), len(featuredCategories))
	for i, category := range featuredCategories {
		funcs[i] = func(ctx context.Context) (Recipe, error) {
			return c.sampleCategory(ctx, category)
		}
	}

	results, errs := utils.RunParallelWithResults(ctx, funcs)
	for i, recipe := range results {
		if len(recipes) >= featuredCount {
			break
		}
		if errs[i] != nil {
			slog.Warn("Category sample failed", "category", featuredCategories[i], "error", errs[i])
			continue
		}
		if recipe.ID == "" || seen[recipe.ID] {
			continue
		}
		seen[recipe.ID] = true
		recipes = append(recipes, recipe)
	}

	return recipes
}

// sampleCategory picks a random stub from a category listing and resolves it.
func (c *Client) sampleCategory(ctx context.Context, category string) (Recipe, error) {
	res, err := c.getMeals(ctx, c.baseURL+"/filter.php?c="+url.QueryEscape(category))
	if err != nil {
		return Recipe{}, err
	}
	if len(res.Meals) == 0 {
		return Recipe{}, fmt.Errorf("no meals in category %s", category)
	}

	stub := res.Meals[rand.Intn(len(res.Meals))]
	record, err := c.lookupRecord(ctx, stub.ID)
	if err != nil {
		return Recipe{}, err
	}
	if record == nil {
		return Recipe{}, fmt.Errorf("no detail for meal %s", stub.ID)
	}
	return record.toRecipe(), nil
}

// Search selects exactly one upstream query mode from the filter set using
// the fixed precedence query > firstLetter > ingredient > cuisine > category,
// resolves id stubs to full records where needed, and applies the dietary
// and cooking-method post-filters. Upstream failures propagate to the caller.
func (c *Client) Search(ctx context.Context, filters SearchFilters) ([]Recipe, error) {
	endpoint, mode, needsDetail := c.selectQueryMode(filters)
	if endpoint == "" {
		return []Recipe{}, nil
	}
	metrics.RecordSearch(ctx, mode)

	res, err := c.getMeals(ctx, endpoint)
	if err != nil {
		return nil, apperrors.NewUpstreamError("recipe search failed", "MEALDB_SEARCH_FAILED", err)
	}
	if len(res.Meals) == 0 {
		return []Recipe{}, nil
	}

	var recipes []Recipe
	if needsDetail {
		recipes = c.resolveStubs(ctx, res.Meals)
	} else {
		recipes = make([]Recipe, 0, len(res.Meals))
		for i := range res.Meals {
			recipes = append(recipes, res.Meals[i].toRecipe())
		}
	}

	filtered := make([]Recipe, 0, len(recipes))
	for _, recipe := range recipes {
		if matchesFilters(recipe, filters) {
			filtered = append(filtered, recipe)
		}
	}
	return filtered, nil
}

// selectQueryMode maps the filter set onto a single upstream endpoint.
// The filter endpoints (ingredient, cuisine, category) return id stubs
// that need a second detail lookup per hit.
func (c *Client) selectQueryMode(filters SearchFilters) (endpoint, mode string, needsDetail bool) {
	switch {
	case filters.Query != "":
		return c.baseURL + "/search.php?s=" + url.QueryEscape(filters.Query), "name", false
	case len(filters.FirstLetter) == 1:
		return c.baseURL + "/search.php?f=" + url.QueryEscape(filters.FirstLetter), "letter", false
	case filters.Ingredient != "":
		return c.baseURL + "/filter.php?i=" + url.QueryEscape(filters.Ingredient), "ingredient", true
	case filters.Cuisine != "":
		return c.baseURL + "/filter.php?a=" + url.QueryEscape(filters.Cuisine), "cuisine", true
	case filters.Category != "":
		return c.baseURL + "/filter.php?c=" + url.QueryEscape(filters.Category), "category", true
	default:
		return "", "", false
	}
}

// resolveStubs issues one detail lookup per stub concurrently. A stub whose
// lookup fails is dropped from the result, not retried.
func (c *Client) resolveStubs(ctx context.Context, stubs []mealRecord) []Recipe {
	funcs := make([]func(ctx context.Context) (Recipe, error), len(stubs))
	for i, stub := range stubs {
		funcs[i] = func(ctx context.Context) (Recipe, error) {
			record, err := c.lookupRecord(ctx, stub.ID)
			if err != nil {
				return Recipe{}, err
			}
			if record == nil {
				return Recipe{}, fmt.Errorf("no detail for meal %s", stub.ID)
			}
			return record.toRecipe(), nil
		}
	}

	results, errs := utils.RunParallelWithResults(ctx, funcs)
	recipes := make([]Recipe, 0, len(results))
	for i, recipe := range results {
		if errs[i] != nil {
			slog.Warn("Dropping stub after failed detail lookup", "id", stubs[i].ID, "error", errs[i])
			continue
		}
		recipes = append(recipes, recipe)
	}
	return recipes
}

// RecipeByID resolves one recipe. It returns nil on a missing or invalid id
// and on any fetch failure; errors never reach the caller.
func (c *Client) RecipeByID(ctx context.Context, id string) *Recipe {
	if strings.TrimSpace(id) == "" {
		metrics.RecordLookup(ctx, "invalid")
		return nil
	}

	record, err := c.lookupRecord(ctx, id)
	if err != nil {
		slog.Warn("Recipe lookup failed", "id", id, "error", err)
		metrics.RecordLookup(ctx, "error")
		return nil
	}
	if record == nil {
		metrics.RecordLookup(ctx, "miss")
		return nil
	}

	metrics.RecordLookup(ctx, "hit")
	recipe := record.toRecipe()
	return &recipe
}

// RandomRecipe returns a single random draw, or nil on any failure.
func (c *Client) RandomRecipe(ctx context.Context) *Recipe {
	res, err := c.getMeals(ctx, c.baseURL+"/random.php")
	if err != nil {
		slog.Warn("Random recipe fetch failed", "error", err)
		return nil
	}
	if len(res.Meals) == 0 {
		return nil
	}
	recipe := res.Meals[0].toRecipe()
	return &recipe
}

// AllRecipeIDs scans the alphabet one first-letter search per letter, five
// letters at a time with a courtesy pause between batches. Each letter is
// retried under the scan policy; a letter that exhausts its retries simply
// contributes no ids. The returned union is deduplicated in first-seen order.
func (c *Client) AllRecipeIDs(ctx context.Context) ([]string, error) {
	const letters = "abcdefghijklmnopqrstuvwxyz"

	seen := make(map[string]bool)
	var ids []string

	for start := 0; start < len(letters); start += scanBatchSize {
		end := start + scanBatchSize
		if end > len(letters) {
			end = len(letters)
		}
		batch := letters[start:end]

		funcs := make([]func(ctx context.Context) ([]string, error), len(batch))
		for i, letter := range batch {
			endpoint := c.baseURL + "/search.php?f=" + string(letter)
			funcs[i] = func(ctx context.Context) ([]string, error) {
				return utils.WithRetry(ctx, func(ctx context.Context) ([]string, error) {
					res, err := c.getMeals(ctx, endpoint)
					if err != nil {
						return nil, err
					}
					letterIDs := make([]string, 0, len(res.Meals))
					for i := range res.Meals {
						if res.Meals[i].ID != "" {
							letterIDs = append(letterIDs, res.Meals[i].ID)
						}
					}
					return letterIDs, nil
				}, c.scanConfig)
			}
		}

		results, errs := utils.RunParallelWithResults(ctx, funcs)
		for i, letterIDs := range results {
			if errs[i] != nil {
				slog.Warn("Letter scan exhausted retries", "letter", string(batch[i]), "error", errs[i])
				continue
			}
			for _, id := range letterIDs {
				if !seen[id] {
					seen[id] = true
					ids = append(ids, id)
				}
			}
		}

		if end < len(letters) {
			select {
			case <-time.After(c.batchPause):
			case <-ctx.Done():
				return ids, ctx.Err()
			}
		}
	}

	slog.Info("Recipe id scan complete", "count", len(ids))
	return ids, nil
}
