package handler

import (
	"encoding/json"
	"net/http"

	"linux_challenge/internal/api/middleware"
	"linux_challenge/internal/app/service"
	"linux_challenge/internal/common"
	"linux_challenge/internal/domain/model"
	"linux_challenge/internal/platform/config"

	"github.com/go-chi/chi/v5"
)

type GameHandler struct {
	gameService *service.GameService
	taskService *service.TaskService
}

func NewGameHandler(gs *service.GameService, ts *service.TaskService) *GameHandler {
	return &GameHandler{gameService: gs, taskService: ts}
}

func (h *GameHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.snapshot)
	r.Get("/task", h.currentTask)

	r.Group(func(op chi.Router) {
		op.Use(middleware.Authenticator)
		op.Use(middleware.OperatorOnly)
		op.Post("/start", h.startRound)
		op.Post("/next-task", h.nextTask)
		op.Post("/stop", h.stopRound)
		op.Post("/end", h.endChallenge)
		op.Post("/reset", h.reset)
		op.Put("/status", h.overrideStatus)
		op.Put("/config", h.setScoringConfig)
		op.Put("/broadcast", h.setBroadcast)
		op.Delete("/broadcast", h.clearBroadcast)
	})
}

type gameView struct {
	Name    string `json:"name"`
	Tagline string `json:"tagline"`
	*service.GameSnapshot
}

func (h *GameHandler) snapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.gameService.Snapshot(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, gameView{
		Name:         config.AppConfig.ChallengeName,
		Tagline:      config.AppConfig.ChallengeTagline,
		GameSnapshot: snapshot,
	})
}

func (h *GameHandler) currentTask(w http.ResponseWriter, r *http.Request) {
	state, err := h.gameService.State(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	task, err := h.taskService.CurrentTask(r.Context(), state)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if task == nil {
		common.RespondWithError(w, http.StatusNotFound, "No task is currently active")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, task.Public())
}

func (h *GameHandler) startRound(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DurationSeconds int `json:"duration_seconds"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
			return
		}
	}
	h.respondMutation(w, r, func() (*model.SessionState, error) {
		return h.gameService.StartRound(r.Context(), req.DurationSeconds)
	})
}

func (h *GameHandler) nextTask(w http.ResponseWriter, r *http.Request) {
	h.respondMutation(w, r, func() (*model.SessionState, error) {
		return h.gameService.NextTask(r.Context())
	})
}

func (h *GameHandler) stopRound(w http.ResponseWriter, r *http.Request) {
	h.respondMutation(w, r, func() (*model.SessionState, error) {
		return h.gameService.StopRound(r.Context())
	})
}

func (h *GameHandler) endChallenge(w http.ResponseWriter, r *http.Request) {
	h.respondMutation(w, r, func() (*model.SessionState, error) {
		return h.gameService.EndChallenge(r.Context())
	})
}

func (h *GameHandler) reset(w http.ResponseWriter, r *http.Request) {
	h.respondMutation(w, r, func() (*model.SessionState, error) {
		return h.gameService.Reset(r.Context())
	})
}

func (h *GameHandler) overrideStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.SessionStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	h.respondMutation(w, r, func() (*model.SessionState, error) {
		return h.gameService.OverrideStatus(r.Context(), req.Status)
	})
}

func (h *GameHandler) setScoringConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BasePoints    int `json:"base_points"`
		MaxSpeedBonus int `json:"max_speed_bonus"`
		HintCost      int `json:"hint_cost"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	h.respondMutation(w, r, func() (*model.SessionState, error) {
		return h.gameService.SetScoringConfig(r.Context(), req.BasePoints, req.MaxSpeedBonus, req.HintCost)
	})
}

func (h *GameHandler) setBroadcast(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	h.respondMutation(w, r, func() (*model.SessionState, error) {
		return h.gameService.SetBroadcast(r.Context(), req.Message)
	})
}

func (h *GameHandler) clearBroadcast(w http.ResponseWriter, r *http.Request) {
	h.respondMutation(w, r, func() (*model.SessionState, error) {
		return h.gameService.ClearBroadcast(r.Context())
	})
}

func (h *GameHandler) respondMutation(w http.ResponseWriter, _ *http.Request, fn func() (*model.SessionState, error)) {
	state, err := fn()
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, state)
}
