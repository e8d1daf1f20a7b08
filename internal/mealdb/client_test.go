package mealdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "github.com/recipelens/basil/internal/errors"
	"github.com/recipelens/basil/internal/utils"
)

func mealJSON(id, name string, extra string) string {
	s := fmt.Sprintf(`{"idMeal": %q, "strMeal": %q, "strMealThumb": "https://example.com/%s.jpg"`, id, name, id)
	if extra != "" {
		s += ", " + extra
	}
	return s + "}"
}

func mealsBody(meals ...string) string {
	if len(meals) == 0 {
		return `{"meals": null}`
	}
	return `{"meals": [` + strings.Join(meals, ",") + `]}`
}

// testUpstream is a scripted TheMealDB double. Handlers are matched by
// path+query substring; unmatched requests 404.
type testUpstream struct {
	mu       sync.Mutex
	hits     map[string]int
	handlers map[string]func(hit int) (int, string)
	server   *httptest.Server
}

func newTestUpstream(t *testing.T) *testUpstream {
	t.Helper()
	u := &testUpstream{
		hits:     make(map[string]int),
		handlers: make(map[string]func(int) (int, string)),
	}
	u.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path + "?" + r.URL.RawQuery
		u.mu.Lock()
		var handler func(int) (int, string)
		var hit int
		for pattern, h := range u.handlers {
			if strings.Contains(key, pattern) {
				u.hits[pattern]++
				hit = u.hits[pattern]
				handler = h
				break
			}
		}
		u.mu.Unlock()

		if handler == nil {
			http.NotFound(w, r)
			return
		}
		status, body := handler(hit)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(u.server.Close)
	return u
}

func (u *testUpstream) on(pattern string, handler func(hit int) (int, string)) {
	u.mu.Lock()
	u.handlers[pattern] = handler
	u.mu.Unlock()
}

func (u *testUpstream) respond(pattern string, status int, body string) {
	u.on(pattern, func(int) (int, string) { return status, body })
}

func (u *testUpstream) hitCount(pattern string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.hits[pattern]
}

func (u *testUpstream) totalHits() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	total := 0
	for _, n := range u.hits {
		total += n
	}
	return total
}

func newTestClient(u *testUpstream) *Client {
	c := NewClient(u.server.URL)
	c.batchPause = time.Millisecond
	c.scanConfig = utils.RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      10 * time.Millisecond,
		BackoffFactor: 2.0,
		Timeout:       time.Second,
	}
	return c
}

func TestSearch_EmptyFiltersNoNetworkCall(t *testing.T) {
	upstream := newTestUpstream(t)
	client := newTestClient(upstream)

	recipes, err := client.Search(context.Background(), SearchFilters{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recipes) != 0 {
		t.Errorf("expected empty result, got %d", len(recipes))
	}
	if upstream.totalHits() != 0 {
		t.Errorf("expected no upstream calls, got %d", upstream.totalHits())
	}
}

func TestSearch_QueryTakesPrecedence(t *testing.T) {
	upstream := newTestUpstream(t)
	upstream.respond("/search.php?s=arrabiata", http.StatusOK,
		mealsBody(mealJSON("52771", "Spicy Arrabiata Penne", `"strIngredient1": "penne", "strMeasure1": "1 pound"`)))
	upstream.respond("/lookup.php", http.StatusOK, mealsBody())
	upstream.respond("/filter.php?i=chicken", http.StatusOK, mealsBody())
	client := newTestClient(upstream)

	recipes, err := client.Search(context.Background(), SearchFilters{
		Query:      "arrabiata",
		Ingredient: "chicken",
		Category:   "Pasta",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recipes) != 1 || recipes[0].ID != "52771" {
		t.Fatalf("unexpected result: %+v", recipes)
	}
	if upstream.hitCount("/filter.php?i=chicken") != 0 {
		t.Error("ingredient filter must not fire when a name query is present")
	}
	// Name search returns full records; no detail lookups expected
	if upstream.hitCount("/lookup.php") != 0 {
		t.Error("unexpected detail lookups for a name search")
	}
}

func TestSearch_FirstLetterRequiresSingleCharacter(t *testing.T) {
	upstream := newTestUpstream(t)
	upstream.respond("/search.php?f=a", http.StatusOK, mealsBody(mealJSON("1", "Apple Frangipan Tart", "")))
	client := newTestClient(upstream)

	recipes, err := client.Search(context.Background(), SearchFilters{FirstLetter: "a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recipes) != 1 {
		t.Fatalf("expected 1 recipe, got %d", len(recipes))
	}

	// Multi-character letters select no query mode
	recipes, err = client.Search(context.Background(), SearchFilters{FirstLetter: "ab"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recipes) != 0 {
		t.Errorf("expected empty result for multi-char letter, got %d", len(recipes))
	}
}

func TestSearch_StubResolutionDropsFailedLookups(t *testing.T) {
	upstream := newTestUpstream(t)
	upstream.respond("/filter.php?i=chicken", http.StatusOK,
		mealsBody(mealJSON("1", "Chicken Handi", ""), mealJSON("2", "Kung Pao", ""), mealJSON("3", "Katsu Curry", "")))
	upstream.respond("/lookup.php?i=1", http.StatusOK,
		mealsBody(mealJSON("1", "Chicken Handi", `"strIngredient1": "chicken", "strMeasure1": "1 whole"`)))
	upstream.respond("/lookup.php?i=2", http.StatusInternalServerError, `{"error": "boom"}`)
	upstream.respond("/lookup.php?i=3", http.StatusOK,
		mealsBody(mealJSON("3", "Katsu Curry", `"strIngredient1": "chicken breast", "strMeasure1": "2"`)))
	client := newTestClient(upstream)

	recipes, err := client.Search(context.Background(), SearchFilters{Ingredient: "chicken"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recipes) != 2 {
		t.Fatalf("expected failed stub dropped, got %d recipes", len(recipes))
	}
	ids := map[string]bool{recipes[0].ID: true, recipes[1].ID: true}
	if !ids["1"] || !ids["3"] {
		t.Errorf("unexpected survivors: %v", ids)
	}
}

func TestSearch_VegetarianPostFilter(t *testing.T) {
	upstream := newTestUpstream(t)
	upstream.respond("/filter.php?c=Pasta", http.StatusOK,
		mealsBody(mealJSON("10", "Carbonara", ""), mealJSON("11", "Tomato Penne", "")))
	upstream.respond("/lookup.php?i=10", http.StatusOK,
		mealsBody(mealJSON("10", "Carbonara", `"strIngredient1": "Chicken Stock", "strMeasure1": "200ml"`)))
	upstream.respond("/lookup.php?i=11", http.StatusOK,
		mealsBody(mealJSON("11", "Tomato Penne", `"strIngredient1": "Tomatoes", "strMeasure1": "4"`)))
	client := newTestClient(upstream)

	recipes, err := client.Search(context.Background(), SearchFilters{Category: "Pasta", Dietary: "vegetarian"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recipes) != 1 || recipes[0].ID != "11" {
		t.Fatalf("expected only the vegetarian recipe, got %+v", recipes)
	}
}

func TestSearch_UpstreamErrorPropagates(t *testing.T) {
	upstream := newTestUpstream(t)
	upstream.respond("/search.php?s=", http.StatusServiceUnavailable, "upstream down")
	client := newTestClient(upstream)

	_, err := client.Search(context.Background(), SearchFilters{Query: "anything"})
	if err == nil {
		t.Fatal("expected an error")
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Type != apperrors.ErrorTypeUpstream {
		t.Errorf("expected upstream error type, got %s", appErr.Type)
	}
}

func TestFeaturedRecipes_DedupesAndCaps(t *testing.T) {
	upstream := newTestUpstream(t)
	// The random endpoint keeps returning the same meal
	upstream.respond("/random.php", http.StatusOK, mealsBody(mealJSON("r1", "Repeat Roast", "")))
	for i, category := range featuredCategories {
		id := fmt.Sprintf("c%d", i)
		upstream.respond("/filter.php?c="+category, http.StatusOK, mealsBody(mealJSON(id, category+" Special", "")))
		upstream.respond("/lookup.php?i="+id, http.StatusOK, mealsBody(mealJSON(id, category+" Special", "")))
	}
	client := newTestClient(upstream)

	recipes := client.FeaturedRecipes(context.Background())
	if len(recipes) != featuredCount {
		t.Fatalf("expected %d recipes, got %d", featuredCount, len(recipes))
	}

	seen := make(map[string]bool)
	for _, r := range recipes {
		if seen[r.ID] {
			t.Errorf("duplicate recipe id %s", r.ID)
		}
		seen[r.ID] = true
	}
}

func TestFeaturedRecipes_UpstreamDownReturnsEmpty(t *testing.T) {
	upstream := newTestUpstream(t)
	upstream.respond("/random.php", http.StatusInternalServerError, "down")
	upstream.respond("/filter.php", http.StatusInternalServerError, "down")
	client := newTestClient(upstream)

	recipes := client.FeaturedRecipes(context.Background())
	if len(recipes) != 0 {
		t.Errorf("expected empty featured set on persistent failure, got %d", len(recipes))
	}
}

func TestRecipeByID(t *testing.T) {
	upstream := newTestUpstream(t)
	upstream.respond("/lookup.php?i=52977", http.StatusOK,
		mealsBody(mealJSON("52977", "Corba", `"strIngredient1": "lamb", "strMeasure1": "1kg", "strIngredient2": ""`)))
	upstream.respond("/lookup.php?i=missing", http.StatusOK, mealsBody())
	upstream.respond("/lookup.php?i=broken", http.StatusBadGateway, "bad")
	client := newTestClient(upstream)

	ctx := context.Background()

	recipe := client.RecipeByID(ctx, "52977")
	if recipe == nil {
		t.Fatal("expected a recipe")
	}
	if len(recipe.Ingredients) != 1 || recipe.Ingredients[0].Ingredient != "lamb" || recipe.Ingredients[0].Measure != "1kg" {
		t.Errorf("empty slots must be excluded: %+v", recipe.Ingredients)
	}

	if client.RecipeByID(ctx, "missing") != nil {
		t.Error("expected nil for an unknown id")
	}
	if client.RecipeByID(ctx, "broken") != nil {
		t.Error("expected nil on upstream failure")
	}
	if client.RecipeByID(ctx, "   ") != nil {
		t.Error("expected nil for a blank id")
	}
}

func TestRandomRecipe(t *testing.T) {
	upstream := newTestUpstream(t)
	upstream.respond("/random.php", http.StatusOK, mealsBody(mealJSON("7", "Lucky Stew", "")))
	client := newTestClient(upstream)

	recipe := client.RandomRecipe(context.Background())
	if recipe == nil || recipe.ID != "7" {
		t.Fatalf("unexpected recipe: %+v", recipe)
	}
}

func TestAllRecipeIDs(t *testing.T) {
	upstream := newTestUpstream(t)
	for letter := 'a'; letter <= 'z'; letter++ {
		l := string(letter)
		switch l {
		case "c":
			// Permanently failing letter: retried, then skipped
			upstream.respond("/search.php?f=c", http.StatusInternalServerError, "down")
		case "b":
			// Duplicate of an id letter a already returned
			upstream.respond("/search.php?f=b", http.StatusOK,
				mealsBody(mealJSON("a1", "Apple Pie", ""), mealJSON("b1", "Beef Wellington", "")))
		case "a":
			upstream.respond("/search.php?f=a", http.StatusOK,
				mealsBody(mealJSON("a1", "Apple Pie", ""), mealJSON("a2", "Apam Balik", "")))
		default:
			upstream.respond("/search.php?f="+l, http.StatusOK, mealsBody())
		}
	}
	client := newTestClient(upstream)

	ids, err := client.AllRecipeIDs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]bool{"a1": true, "a2": true, "b1": true}
	if len(ids) != len(want) {
		t.Fatalf("expected %d unique ids, got %v", len(want), ids)
	}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("unexpected id %s", id)
		}
	}

	if got := upstream.hitCount("/search.php?f=c"); got != 3 {
		t.Errorf("expected the failing letter to be attempted exactly 3 times, got %d", got)
	}
}

func TestAllRecipeIDs_ContextCancelled(t *testing.T) {
	upstream := newTestUpstream(t)
	for letter := 'a'; letter <= 'z'; letter++ {
		upstream.respond("/search.php?f="+string(letter), http.StatusOK, mealsBody())
	}
	client := newTestClient(upstream)
	client.batchPause = time.Minute // cancellation must interrupt the pause

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := client.AllRecipeIDs(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
