package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linux_challenge/internal/api"
	"linux_challenge/internal/app/service"
	"linux_challenge/internal/app/worker"
	"linux_challenge/internal/common/security"
	"linux_challenge/internal/domain/repository"
	"linux_challenge/internal/platform/config"
	"linux_challenge/internal/platform/database"
	"linux_challenge/internal/platform/events"
	"linux_challenge/internal/realtime"

	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	config.Load()
	security.InitJWT()

	database.Connect()
	defer database.Close()
	database.Migrate()

	events.ConnectRedis()
	defer events.CloseRedis()

	participantRepo := repository.NewPgParticipantRepository(database.DB)
	taskRepo := repository.NewPgTaskRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)
	sessionRepo := repository.NewPgSessionRepository(database.DB)
	operatorRepo := repository.NewPgOperatorRepository(database.DB)

	publisher := events.NewRedisPublisher(events.RDB, logger)

	authService := service.NewAuthService(operatorRepo, logger)
	participantService := service.NewParticipantService(participantRepo)
	taskService := service.NewTaskService(taskRepo)
	gameService := service.NewGameService(sessionRepo, taskService, publisher, time.Now, logger)
	submissionService := service.NewSubmissionService(
		submissionRepo, participantRepo, sessionRepo, taskService, publisher, time.Now, logger)

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := gameService.Init(bootCtx); err != nil {
		bootCancel()
		logger.Fatal().Err(err).Msg("Failed to initialize session state")
	}
	if err := authService.EnsureOperator(bootCtx,
		config.AppConfig.OperatorUsername, config.AppConfig.OperatorPassword); err != nil {
		bootCancel()
		logger.Fatal().Err(err).Msg("Failed to ensure operator account")
	}
	bootCancel()

	hub := realtime.NewHub(logger)
	go hub.Run()

	notifier := worker.NewNotifier(events.RDB, hub, gameService, participantService, submissionService, logger)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go notifier.Start(workerCtx)

	router := api.NewRouter(
		authService, participantService, taskService, gameService, submissionService, hub, logger)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info().Str("port", config.AppConfig.APIPort).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-stop

	logger.Info().Msg("Shutting down")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("Server shutdown failed")
	}
	logger.Info().Msg("Stopped")
}
