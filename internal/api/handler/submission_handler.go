package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"linux_challenge/internal/api/middleware"
	"linux_challenge/internal/app/service"
	"linux_challenge/internal/common"
	"linux_challenge/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
)

type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

func NewSubmissionHandler(ss *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss}
}

func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Use(middleware.ParticipantOnly)
	r.Post("/", h.submit)
	r.Post("/hint", h.useHint)
}

func (h *SubmissionHandler) submit(w http.ResponseWriter, r *http.Request) {
	participantID, ok := middleware.GetActorIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing identity")
		return
	}

	var req service.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	result, err := h.submissionService.Submit(r.Context(), participantID, req)
	if err != nil {
		if errors.Is(err, common.ErrNotAccepting) {
			metrics.SubmissionsTotal.WithLabelValues(metrics.ResultRejected).Inc()
		}
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}

	switch {
	case result.Duplicate:
		metrics.SubmissionsTotal.WithLabelValues(metrics.ResultDuplicate).Inc()
	case result.Submission.IsCorrect:
		metrics.SubmissionsTotal.WithLabelValues(metrics.ResultCorrect).Inc()
		if result.Submission.IsFirstSolver {
			metrics.FirstSolversTotal.Inc()
		}
	default:
		metrics.SubmissionsTotal.WithLabelValues(metrics.ResultIncorrect).Inc()
	}

	common.RespondWithJSON(w, http.StatusCreated, result)
}

func (h *SubmissionHandler) useHint(w http.ResponseWriter, r *http.Request) {
	participantID, ok := middleware.GetActorIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing identity")
		return
	}

	var req struct {
		TaskID string `json:"task_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	result, err := h.submissionService.UseHint(r.Context(), participantID, req.TaskID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if !result.AlreadyUsed {
		metrics.HintsUsedTotal.Inc()
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}
