package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/recipelens/basil/internal/api"
	"github.com/recipelens/basil/internal/cache"
	"github.com/recipelens/basil/internal/config"
	"github.com/recipelens/basil/internal/mealdb"
	"github.com/recipelens/basil/internal/services/analysis"
	"github.com/recipelens/basil/internal/worker"
)

// fakeChat implements analysis.ChatProvider with a canned reply.
type fakeChat struct {
	mu    sync.Mutex
	reply string
	calls int
}

func (f *fakeChat) Name() string { return "fake" }

func (f *fakeChat) Chat(ctx context.Context, req analysis.ChatRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.reply, nil
}

func (f *fakeChat) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func mealJSON(id, name string) string {
	return `{"idMeal": "` + id + `", "strMeal": "` + name + `", "strCategory": "Chicken",
		"strArea": "Japanese", "strInstructions": "Bake it.",
		"strIngredient1": "chicken", "strMeasure1": "1 lb"}`
}

// mealDBServer answers the endpoints the gateway uses with a fixed catalog.
func mealDBServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		uri := r.URL.RequestURI()
		switch {
		case strings.Contains(uri, "search.php?s="):
			w.Write([]byte(`{"meals": [` + mealJSON("52772", "Teriyaki Chicken Casserole") + `]}`))
		case strings.Contains(uri, "lookup.php?i=52772"):
			w.Write([]byte(`{"meals": [` + mealJSON("52772", "Teriyaki Chicken Casserole") + `]}`))
		case strings.Contains(uri, "random.php"):
			w.Write([]byte(`{"meals": [` + mealJSON("52959", "Baked Salmon") + `]}`))
		default:
			w.Write([]byte(`{"meals": null}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newPipeline(t *testing.T, chat *fakeChat) (*api.Server, *cache.Memory, *mealdb.Client) {
	t.Helper()

	upstream := mealDBServer(t)
	meals := mealdb.NewClient(upstream.URL)

	store := cache.NewMemory(time.Minute, time.Minute)
	t.Cleanup(func() { store.Close() })

	analyzer := analysis.NewService(chat, store)
	cfg := &config.Config{ServiceName: "basil-integration"}

	return api.NewServer(cfg, meals, analyzer, store, nil), store, meals
}

func TestSearchPipeline(t *testing.T) {
	chat := &fakeChat{reply: "```json\n{\"query\": \"teriyaki\"}\n```"}
	srv, _, _ := newPipeline(t, chat)

	body, _ := json.Marshal(api.SearchRequest{Query: "teriyaki"})
	req := httptest.NewRequest("POST", "/api/search", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp api.SearchResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(resp.Recipes) != 1 || resp.Recipes[0].Name != "Teriyaki Chicken Casserole" {
		t.Errorf("unexpected recipes: %+v", resp.Recipes)
	}
	if resp.Filters.Query != "teriyaki" {
		t.Errorf("expected query filter preserved, got %+v", resp.Filters)
	}
}

func TestAnalyzePipeline_CachesAcrossRequests(t *testing.T) {
	chat := &fakeChat{reply: `{"difficulty": "Easy", "prepTime": "30 minutes"}`}
	srv, _, _ := newPipeline(t, chat)

	send := func() *httptest.ResponseRecorder {
		body, _ := json.Marshal(api.AnalyzeRecipeRequest{
			Recipe: mealdb.Recipe{ID: "52772", Name: "Teriyaki Chicken Casserole"},
		})
		req := httptest.NewRequest("POST", "/api/analyze-recipe", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		srv.Routes().ServeHTTP(rr, req)
		return rr
	}

	first := send()
	if first.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", first.Code)
	}

	second := send()
	if second.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", second.Code)
	}

	if chat.callCount() != 1 {
		t.Errorf("expected a single model call across requests, got %d", chat.callCount())
	}

	var result analysis.RecipeAnalysis
	if err := json.Unmarshal(second.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if result.Difficulty != "Easy" {
		t.Errorf("expected cached analysis, got %+v", result)
	}
}

func TestFeaturedPipeline_ServesWarmedCache(t *testing.T) {
	chat := &fakeChat{reply: `{}`}
	srv, store, meals := newPipeline(t, chat)

	// Warm the featured set the way the background worker does.
	warmer := worker.NewWarmer(meals, store, nil)
	task, err := worker.NewWarmFeaturedTask(worker.WarmFeaturedPayload{JobID: "integration"})
	if err != nil {
		t.Fatalf("failed to build task: %v", err)
	}
	if err := warmer.HandleWarmFeatured(context.Background(), task); err != nil {
		t.Fatalf("warm featured failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/recipes/featured", nil)
	rr := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var recipes []mealdb.Recipe
	if err := json.Unmarshal(rr.Body.Bytes(), &recipes); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(recipes) == 0 {
		t.Fatal("expected warmed featured recipes")
	}
}
