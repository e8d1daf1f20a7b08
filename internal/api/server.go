package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hibiken/asynq"
	"github.com/recipelens/basil/internal/cache"
	"github.com/recipelens/basil/internal/config"
	apperrors "github.com/recipelens/basil/internal/errors"
	"github.com/recipelens/basil/internal/mealdb"
	"github.com/recipelens/basil/internal/sentry"
	"github.com/recipelens/basil/internal/services/analysis"
	"github.com/riandyrn/otelchi"
	otelchimetric "github.com/riandyrn/otelchi/metric"
	"go.opentelemetry.io/otel"
)

// featuredCacheTTL matches the worker's featured:warm refresh window.
const featuredCacheTTL = time.Hour

// RecipeGateway is the slice of the recipe client the handlers need.
type RecipeGateway interface {
	Search(ctx context.Context, filters mealdb.SearchFilters) ([]mealdb.Recipe, error)
	FeaturedRecipes(ctx context.Context) []mealdb.Recipe
	RecipeByID(ctx context.Context, id string) *mealdb.Recipe
	RandomRecipe(ctx context.Context) *mealdb.Recipe
}

// Analyzer is the slice of the analysis service the handlers need.
type Analyzer interface {
	ProcessSearchQuery(ctx context.Context, query string) mealdb.SearchFilters
	AnalyzeRecipe(ctx context.Context, recipe mealdb.Recipe) analysis.RecipeAnalysis
}

type Server struct {
	cfg         *config.Config
	recipes     RecipeGateway
	analyzer    Analyzer
	store       cache.Cache
	asynqClient *asynq.Client
}

// NewServer creates the HTTP server. asynqClient may be nil, which disables
// the admin warming endpoint.
func NewServer(cfg *config.Config, recipes RecipeGateway, analyzer Analyzer, store cache.Cache, asynqClient *asynq.Client) *Server {
	return &Server{
		cfg:         cfg,
		recipes:     recipes,
		analyzer:    analyzer,
		store:       store,
		asynqClient: asynqClient,
	}
}

// Routes builds the chi router with CORS and tracing middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(otelchi.Middleware(s.cfg.ServiceName,
		otelchi.WithChiRoutes(r),
		otelchi.WithFilter(func(req *http.Request) bool {
			return req.URL.Path != "/health"
		}),
	))

	metricCfg := otelchimetric.NewBaseConfig(s.cfg.ServiceName, otelchimetric.WithMeterProvider(otel.GetMeterProvider()))
	r.Use(otelchimetric.NewRequestDurationMillis(metricCfg))
	r.Use(otelchimetric.NewRequestInFlight(metricCfg))
	r.Use(otelchimetric.NewResponseSizeBytes(metricCfg))
	r.Use(sentry.HTTPMiddleware)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze-recipe", s.HandleAnalyzeRecipe)
		r.Post("/search", s.HandleSearch)

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/featured", s.HandleFeaturedRecipes)
			r.Get("/search", s.HandleRecipeSearch)
			r.Get("/random", s.HandleRandomRecipe)
			r.Get("/{id}", s.HandleRecipeByID)
		})

		r.Post("/admin/warm-index", s.HandleWarmIndex)
	})

	return r
}

type errorResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.NewInternalError("unexpected error", "INTERNAL_ERROR", err)
	}
	writeJSON(w, appErr.StatusCode, errorResponse{
		Error:      appErr.Message,
		Code:       appErr.ErrorCode,
		Suggestion: appErr.Recovery,
	})
}
