package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"kuenkele/timetrack/internal/models"
)

type ProjectService interface {
	List(ctx context.Context, userID string, page, perPage int, searchTerm string) (*models.PaginatedProjects, error)
	Get(ctx context.Context, userID, name string) (*models.Project, error)
	Add(ctx context.Context, userID, name string) (*models.Project, error)
	Delete(ctx context.Context, userID, name string) error
	Start(ctx context.Context, userID, name string) (*models.Project, error)
	Stop(ctx context.Context, userID, name string) (*models.Project, error)
}

type ProjectHandler struct {
	service ProjectService
	logger  *zap.Logger
}

func NewProjectHandler(service ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		service: service,
		logger:  logger,
	}
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.Errorf(models.ErrValidation, "invalid %s parameter '%s'", key, raw)
	}
	return v, nil
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	perPage, err := queryInt(r, "per_page", 0)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.service.List(r.Context(), UserIDFromContext(r.Context()), page, perPage, r.URL.Query().Get("search_term"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.service.Get(r.Context(), UserIDFromContext(r.Context()), mux.Vars(r)["name"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Add(w http.ResponseWriter, r *http.Request) {
	project, err := h.service.Add(r.Context(), UserIDFromContext(r.Context()), mux.Vars(r)["name"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), UserIDFromContext(r.Context()), mux.Vars(r)["name"]); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProjectHandler) Start(w http.ResponseWriter, r *http.Request) {
	project, err := h.service.Start(r.Context(), UserIDFromContext(r.Context()), mux.Vars(r)["name"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Stop(w http.ResponseWriter, r *http.Request) {
	project, err := h.service.Stop(r.Context(), UserIDFromContext(r.Context()), mux.Vars(r)["name"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}
