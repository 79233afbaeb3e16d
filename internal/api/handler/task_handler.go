package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"linux_challenge/internal/api/middleware"
	"linux_challenge/internal/app/service"
	"linux_challenge/internal/common"

	"github.com/go-chi/chi/v5"
)

// TaskHandler exposes the operator-only task catalog. Tasks returned here
// include answers; the participant-facing view goes through the game
// snapshot, which strips them.
type TaskHandler struct {
	taskService *service.TaskService
}

func NewTaskHandler(ts *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: ts}
}

func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Use(middleware.OperatorOnly)
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{taskID}", h.get)
	r.Put("/{taskID}", h.update)
	r.Delete("/{taskID}", h.delete)
}

func (h *TaskHandler) list(w http.ResponseWriter, r *http.Request) {
	if roundStr := r.URL.Query().Get("round"); roundStr != "" {
		round, err := strconv.Atoi(roundStr)
		if err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid round parameter")
			return
		}
		tasks, err := h.taskService.ListByRound(r.Context(), round)
		if err != nil {
			common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
			return
		}
		common.RespondWithJSON(w, http.StatusOK, tasks)
		return
	}

	tasks, err := h.taskService.List(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) create(w http.ResponseWriter, r *http.Request) {
	var req service.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	task, err := h.taskService.Create(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) get(w http.ResponseWriter, r *http.Request) {
	task, err := h.taskService.FindByID(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) update(w http.ResponseWriter, r *http.Request) {
	var req service.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	task, err := h.taskService.Update(r.Context(), chi.URLParam(r, "taskID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.taskService.Delete(r.Context(), chi.URLParam(r, "taskID")); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Task deleted"})
}
