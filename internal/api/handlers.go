package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/raphaelgruber/recipescape-go/internal/service"
)

// RecipeIDsRequest selects recipes by origin id.
type RecipeIDsRequest struct {
	RecipeIDs []string `json:"recipe_ids" validate:"max=1000"`
}

// ClusterRequest selects clusters of a clustering run.
type ClusterRequest struct {
	ClusterName      string `json:"cluster_name"` // empty matches the earliest run
	SelectedClusters []int  `json:"selected_clusters" validate:"dive,min=0"`
}

// ActionIngredientRequest is a cluster selection plus an action/ingredient pair.
type ActionIngredientRequest struct {
	ClusterRequest
	Action     string `json:"action" validate:"notblank"`
	Ingredient string `json:"ingredient" validate:"notblank"`
}

// ImportRequest starts a background import of a directory on the server.
type ImportRequest struct {
	Path      string `json:"path" validate:"notblank"`
	Recursive bool   `json:"recursive"`
	DryRun    bool   `json:"dry_run"`
}

// Health reports liveness, and database reachability when a pinger is set.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.pinger.Ping(ctx); err != nil {
			LoggerFrom(r.Context()).Warn("health check failed", "error", err)
			respondJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "unreachable"})
			return
		}
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Stats returns the runtime metrics snapshot.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, h.metrics.Snapshot())
}

func (h *Handler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.recipes.GetRecipe(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, recipe)
}

func (h *Handler) ListDishes(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.recipes.ListDishes(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, dishes)
}

func (h *Handler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.recipes.ListRecipes(r.Context(), chi.URLParam(r, "dish"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, recipes)
}

func (h *Handler) ListClusterings(w http.ResponseWriter, r *http.Request) {
	clusterings, err := h.recipes.ListClusterings(r.Context(), chi.URLParam(r, "dish"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, clusterings)
}

func (h *Handler) Trees(w http.ResponseWriter, r *http.Request) {
	trees, err := h.recipes.Trees(r.Context(), chi.URLParam(r, "dish"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, trees)
}

func (h *Handler) Nodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.recipes.Nodes(r.Context(), chi.URLParam(r, "dish"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, nodes)
}

func (h *Handler) TreesByIDs(w http.ResponseWriter, r *http.Request) {
	var req RecipeIDsRequest
	if !h.decode(w, r, &req) {
		return
	}
	trees, err := h.recipes.TreesByIDs(r.Context(), req.RecipeIDs)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, trees)
}

func (h *Handler) NodesByIDs(w http.ResponseWriter, r *http.Request) {
	var req RecipeIDsRequest
	if !h.decode(w, r, &req) {
		return
	}
	nodes, err := h.recipes.NodesByIDs(r.Context(), req.RecipeIDs)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, nodes)
}

func (h *Handler) Histograms(w http.ResponseWriter, r *http.Request) {
	var req ClusterRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.recipes.Histograms(r.Context(), chi.URLParam(r, "dish"), req.ClusterName, req.SelectedClusters)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, result)
}

func (h *Handler) ActionIngredientCount(w http.ResponseWriter, r *http.Request) {
	var req ActionIngredientRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.recipes.ActionIngredientCount(r.Context(), chi.URLParam(r, "dish"),
		req.ClusterName, req.SelectedClusters, req.Action, req.Ingredient)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, result)
}

func (h *Handler) StartImport(w http.ResponseWriter, r *http.Request) {
	if h.importer == nil || h.jobs == nil {
		respondError(w, r, http.StatusNotFound, CodeNotFound, "imports are disabled", nil)
		return
	}
	var req ImportRequest
	if !h.decode(w, r, &req) {
		return
	}
	job, err := h.importer.ImportDirectoryAsync(r.Context(), h.jobs, req.Path, service.ImportOptions{
		Recursive: req.Recursive,
		DryRun:    req.DryRun,
	})
	if err != nil {
		respondError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}
	respondJSON(w, r, http.StatusAccepted, job.Snapshot())
}

func (h *Handler) ListImports(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		respondJSON(w, r, http.StatusOK, []service.JobSnapshot{})
		return
	}
	jobs := h.jobs.ListJobs()
	snapshots := make([]service.JobSnapshot, len(jobs))
	for i, j := range jobs {
		snapshots[i] = j.Snapshot()
	}
	respondJSON(w, r, http.StatusOK, snapshots)
}

func (h *Handler) GetImport(w http.ResponseWriter, r *http.Request) {
	var job *service.Job
	if h.jobs != nil {
		job = h.jobs.GetJob(chi.URLParam(r, "id"))
	}
	if job == nil {
		respondError(w, r, http.StatusNotFound, CodeNotFound, "no such import job", nil)
		return
	}
	respondJSON(w, r, http.StatusOK, job.Snapshot())
}

// decode reads and validates a JSON body, answering 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := decodeJSON(w, r, v); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error(), nil)
		return false
	}
	if err := validateRequest(v); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return false
	}
	return true
}
