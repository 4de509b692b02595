package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/raphaelgruber/recipescape-go/internal/db"
	"github.com/raphaelgruber/recipescape-go/internal/metrics"
	"github.com/raphaelgruber/recipescape-go/internal/models"
	"github.com/raphaelgruber/recipescape-go/internal/service"
)

// Recipes is the query surface served by the API. *service.RecipeService
// implements it.
type Recipes interface {
	GetRecipe(ctx context.Context, id string) (*models.Recipe, error)
	ListDishes(ctx context.Context) ([]db.DishCount, error)
	ListRecipes(ctx context.Context, dish string) ([]models.Recipe, error)
	ListClusterings(ctx context.Context, dish string) ([]models.Clustering, error)
	Trees(ctx context.Context, dish string) ([]models.RecipeTree, error)
	Nodes(ctx context.Context, dish string) ([]models.RecipeNodes, error)
	TreesByIDs(ctx context.Context, ids []string) ([]models.RecipeTree, error)
	NodesByIDs(ctx context.Context, ids []string) ([]models.RecipeNodes, error)
	Histograms(ctx context.Context, dish, clusterName string, clusters []int) (models.AnalysisResult, error)
	ActionIngredientCount(ctx context.Context, dish, clusterName string, clusters []int, action, ingredient string) (*models.ActionIngredientCount, error)
}

// Importer starts background dataset imports. *service.ImportService
// implements it.
type Importer interface {
	ImportDirectoryAsync(ctx context.Context, jobManager *service.JobManager, dirPath string, opts service.ImportOptions) (*service.Job, error)
}

// Pinger checks a backing service. *db.Client implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	recipes  Recipes
	importer Importer
	jobs     *service.JobManager
	pinger   Pinger
	metrics  *metrics.Collector
	logger   *slog.Logger
}

// SetPinger makes /health report the database state.
func (h *Handler) SetPinger(p Pinger) {
	h.pinger = p
}

// NewHandler creates a handler. importer and jobs may be nil, which disables
// the import endpoints.
func NewHandler(recipes Recipes, importer Importer, jobs *service.JobManager, collector *metrics.Collector, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		recipes:  recipes,
		importer: importer,
		jobs:     jobs,
		metrics:  collector,
		logger:   logger,
	}
}

// NewRouter configures all HTTP routes.
func NewRouter(h *Handler, cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging(h.logger))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(cfg)) // global so OPTIONS preflight is answered
	r.Use(AccessLog(h.metrics))

	r.Get("/health", h.Health)
	r.Handle("/metrics", h.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RateLimit(cfg))

		r.Get("/stats", h.Stats)
		r.Get("/recipes/{id}", h.GetRecipe)
		r.Post("/trees", h.TreesByIDs)
		r.Post("/nodes", h.NodesByIDs)

		r.Get("/dishes", h.ListDishes)
		r.Route("/dishes/{dish}", func(r chi.Router) {
			r.Get("/recipes", h.ListRecipes)
			r.Get("/clusters", h.ListClusterings)
			r.Get("/trees", h.Trees)
			r.Get("/nodes", h.Nodes)
			r.Post("/histograms", h.Histograms)
			r.Post("/action-ingredient", h.ActionIngredientCount)
		})

		r.Route("/imports", func(r chi.Router) {
			r.Post("/", h.StartImport)
			r.Get("/", h.ListImports)
			r.Get("/{id}", h.GetImport)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, CodeNotFound, "no such route", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed", nil)
	})

	return r
}
