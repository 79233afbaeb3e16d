package handler

import (
	"net/http"
	"strconv"
	"time"

	"linux_challenge/internal/app/service"
	"linux_challenge/internal/common"
	"linux_challenge/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
)

// LeaderboardHandler serves the public standings and the recent activity
// feed. Both are read-only and require no authentication.
type LeaderboardHandler struct {
	participantService *service.ParticipantService
	submissionService  *service.SubmissionService
}

func NewLeaderboardHandler(ps *service.ParticipantService, ss *service.SubmissionService) *LeaderboardHandler {
	return &LeaderboardHandler{participantService: ps, submissionService: ss}
}

func (h *LeaderboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/leaderboard", h.leaderboard)
	r.Get("/activity", h.activity)
}

func (h *LeaderboardHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rows, err := h.participantService.Leaderboard(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	metrics.LeaderboardRecompute.Observe(time.Since(start).Seconds())
	common.RespondWithJSON(w, http.StatusOK, rows)
}

func (h *LeaderboardHandler) activity(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}
	entries, err := h.submissionService.ActivityFeed(r.Context(), limit)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, entries)
}
