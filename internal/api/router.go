package api

import (
	"net/http"
	"time"

	"linux_challenge/internal/api/handler"
	"linux_challenge/internal/app/service"
	"linux_challenge/internal/common/security"
	"linux_challenge/internal/realtime"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func NewRouter(
	authService *service.AuthService,
	participantService *service.ParticipantService,
	taskService *service.TaskService,
	gameService *service.GameService,
	submissionService *service.SubmissionService,
	hub *realtime.Hub,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies a bearer token when present and puts claims in context.
	// Enforcement happens per route group via middleware.Authenticator.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	streamHandler := handler.NewStreamHandler(hub, gameService, participantService, submissionService, logger)
	r.Get("/ws", streamHandler.Serve)

	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(authService)
		v1.Route("/auth", authHandler.RegisterRoutes)

		participantHandler := handler.NewParticipantHandler(participantService)
		v1.Route("/participants", participantHandler.RegisterRoutes)

		taskHandler := handler.NewTaskHandler(taskService)
		v1.Route("/tasks", taskHandler.RegisterRoutes)

		gameHandler := handler.NewGameHandler(gameService, taskService)
		v1.Route("/game", gameHandler.RegisterRoutes)

		submissionHandler := handler.NewSubmissionHandler(submissionService)
		v1.Route("/submissions", submissionHandler.RegisterRoutes)

		leaderboardHandler := handler.NewLeaderboardHandler(participantService, submissionService)
		v1.Group(leaderboardHandler.RegisterRoutes)
	})

	return r
}
