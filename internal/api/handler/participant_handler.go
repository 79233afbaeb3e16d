package handler

import (
	"encoding/json"
	"net/http"

	"linux_challenge/internal/api/middleware"
	"linux_challenge/internal/app/service"
	"linux_challenge/internal/common"

	"github.com/go-chi/chi/v5"
)

type ParticipantHandler struct {
	participantService *service.ParticipantService
}

func NewParticipantHandler(ps *service.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{participantService: ps}
}

func (h *ParticipantHandler) RegisterRoutes(r chi.Router) {
	r.Post("/join", h.join)

	r.Group(func(auth chi.Router) {
		auth.Use(middleware.Authenticator)
		auth.Get("/me", h.me)

		auth.Group(func(op chi.Router) {
			op.Use(middleware.OperatorOnly)
			op.Get("/", h.list)
		})
	})
}

func (h *ParticipantHandler) join(w http.ResponseWriter, r *http.Request) {
	var req service.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	resp, err := h.participantService.Join(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *ParticipantHandler) me(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetActorIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing identity")
		return
	}
	p, err := h.participantService.Get(r.Context(), actorID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, p)
}

func (h *ParticipantHandler) list(w http.ResponseWriter, r *http.Request) {
	participants, err := h.participantService.List(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, participants)
}
