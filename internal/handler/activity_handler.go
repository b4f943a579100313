package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"kuenkele/timetrack/internal/models"
)

type ActivityService interface {
	Daily(ctx context.Context, userID, day string) (*models.DailyActivities, error)
	Range(ctx context.Context, userID, startDay, endDay string) (models.Activities, error)
	Change(ctx context.Context, userID string, change *models.Activity) (*models.Activity, error)
}

type ActivityHandler struct {
	service ActivityService
	logger  *zap.Logger
}

func NewActivityHandler(service ActivityService, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger,
	}
}

// ChangeActivityRequest is the body of POST /activities/{id}.
type ChangeActivityRequest struct {
	ProjectName string     `json:"projectName"`
	StartedAt   time.Time  `json:"startedAt"`
	EndedAt     *time.Time `json:"endedAt"`
}

// List serves ?day=YYYY-MM-DD as a daily overview and ?startDay&endDay as a
// plain activity list. A missing endDay means the single day startDay.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := UserIDFromContext(r.Context())

	if startDay, endDay := q.Get("startDay"), q.Get("endDay"); startDay != "" || endDay != "" {
		if startDay == "" {
			writeError(w, h.logger, models.Errorf(models.ErrValidation, "startDay must be set"))
			return
		}
		if endDay == "" {
			endDay = startDay
		}

		activities, err := h.service.Range(r.Context(), userID, startDay, endDay)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, activities)
		return
	}

	daily, err := h.service.Daily(r.Context(), userID, q.Get("day"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, daily)
}

func (h *ActivityHandler) Change(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, h.logger, models.Errorf(models.ErrValidation, "couldn't parse id '%s'", raw))
		return
	}

	var req ChangeActivityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	activity, err := h.service.Change(r.Context(), UserIDFromContext(r.Context()), &models.Activity{
		ID:          id,
		ProjectName: req.ProjectName,
		StartedAt:   req.StartedAt,
		EndedAt:     req.EndedAt,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, activity)
}
