package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"linux_challenge/internal/app/scoring"
	"linux_challenge/internal/common"
	"linux_challenge/internal/domain/model"
	"linux_challenge/internal/domain/repository"
	"linux_challenge/internal/platform/events"

	"github.com/rs/zerolog"
)

// casRetries bounds the optimistic-concurrency loop; operator actions are
// rare enough that losing three races in a row means something is wrong.
const casRetries = 3

// GameService owns every mutation of the session state machine. All writes
// are versioned compare-and-swap operations; a state change is followed by a
// change notification so observers can refresh their snapshots.
type GameService struct {
	sessionRepo repository.SessionRepository
	tasks       *TaskService
	publisher   events.Publisher
	now         func() time.Time
	logger      zerolog.Logger
}

func NewGameService(
	sessionRepo repository.SessionRepository,
	tasks *TaskService,
	publisher events.Publisher,
	now func() time.Time,
	logger zerolog.Logger,
) *GameService {
	if now == nil {
		now = time.Now
	}
	return &GameService{
		sessionRepo: sessionRepo,
		tasks:       tasks,
		publisher:   publisher,
		now:         now,
		logger:      logger.With().Str("component", "game").Logger(),
	}
}

func (s *GameService) Init(ctx context.Context) error {
	return s.sessionRepo.Init(ctx)
}

func (s *GameService) State(ctx context.Context) (*model.SessionState, error) {
	return s.sessionRepo.Get(ctx)
}

// GameSnapshot is the participant-facing view pushed to observers: the
// session state plus the current task with answers stripped.
type GameSnapshot struct {
	State        *model.SessionState `json:"state"`
	CurrentTask  *model.Task         `json:"current_task,omitempty"`
	TasksInRound int                 `json:"tasks_in_round"`
}

func (s *GameService) Snapshot(ctx context.Context) (*GameSnapshot, error) {
	state, err := s.sessionRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := &GameSnapshot{State: state}
	if state.CurrentRound > 0 {
		roundTasks, err := s.tasks.ListByRound(ctx, state.CurrentRound)
		if err != nil {
			return nil, err
		}
		snapshot.TasksInRound = len(roundTasks)
		if state.CurrentTaskIndex < len(roundTasks) {
			public := roundTasks[state.CurrentTaskIndex].Public()
			snapshot.CurrentTask = &public
		}
	}
	return snapshot, nil
}

func (s *GameService) StartRound(ctx context.Context, durationSeconds int) (*model.SessionState, error) {
	if durationSeconds <= 0 {
		durationSeconds = scoring.DefaultRoundDurationSeconds
	}
	now := s.now()
	state, err := s.mutate(ctx, func(st *model.SessionState) error {
		return st.StartRound(durationSeconds, now)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int("round", state.CurrentRound).Int("durationSeconds", durationSeconds).Msg("Round started")
	s.publish(ctx, events.TypeStateChanged)
	return state, nil
}

func (s *GameService) NextTask(ctx context.Context) (*model.SessionState, error) {
	state, err := s.mutate(ctx, func(st *model.SessionState) error {
		return st.NextTask()
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int("taskIndex", state.CurrentTaskIndex).Msg("Advanced to next task")
	s.publish(ctx, events.TypeStateChanged)
	return state, nil
}

func (s *GameService) StopRound(ctx context.Context) (*model.SessionState, error) {
	state, err := s.mutate(ctx, func(st *model.SessionState) error {
		return st.StopRound()
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int("round", state.CurrentRound).Msg("Round stopped")
	s.publish(ctx, events.TypeStateChanged)
	return state, nil
}

func (s *GameService) EndChallenge(ctx context.Context) (*model.SessionState, error) {
	state, err := s.mutate(ctx, func(st *model.SessionState) error {
		return st.EndChallenge()
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Msg("Challenge ended")
	s.publish(ctx, events.TypeStateChanged)
	return state, nil
}

func (s *GameService) Reset(ctx context.Context) (*model.SessionState, error) {
	state, err := s.mutate(ctx, func(st *model.SessionState) error {
		st.Reset(scoring.DefaultRoundDurationSeconds)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Msg("Session reset to waiting")
	s.publish(ctx, events.TypeStateChanged)
	return state, nil
}

func (s *GameService) OverrideStatus(ctx context.Context, status model.SessionStatus) (*model.SessionState, error) {
	state, err := s.mutate(ctx, func(st *model.SessionState) error {
		return st.OverrideStatus(status)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Warn().Str("status", string(status)).Msg("Status overridden by operator")
	s.publish(ctx, events.TypeStateChanged)
	return state, nil
}

func (s *GameService) SetScoringConfig(ctx context.Context, basePoints, maxSpeedBonus, hintCost int) (*model.SessionState, error) {
	state, err := s.mutate(ctx, func(st *model.SessionState) error {
		return st.SetScoringConfig(basePoints, maxSpeedBonus, hintCost)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TypeStateChanged)
	return state, nil
}

func (s *GameService) SetBroadcast(ctx context.Context, message string) (*model.SessionState, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, common.Errorf("broadcast message is empty: %w", common.ErrBadRequest)
	}
	now := s.now()
	state, err := s.mutate(ctx, func(st *model.SessionState) error {
		st.SetBroadcast(message, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TypeBroadcastChanged)
	return state, nil
}

func (s *GameService) ClearBroadcast(ctx context.Context) (*model.SessionState, error) {
	state, err := s.mutate(ctx, func(st *model.SessionState) error {
		st.ClearBroadcast()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TypeBroadcastChanged)
	return state, nil
}

func (s *GameService) mutate(ctx context.Context, fn func(*model.SessionState) error) (*model.SessionState, error) {
	for attempt := 0; attempt < casRetries; attempt++ {
		state, err := s.sessionRepo.Get(ctx)
		if err != nil {
			return nil, err
		}
		if err := fn(state); err != nil {
			if errors.Is(err, model.ErrInvalidTransition) {
				return nil, fmt.Errorf("%v: %w", err, common.ErrConflict)
			}
			return nil, err
		}
		err = s.sessionRepo.CompareAndSwap(ctx, state.Version, state)
		if err == nil {
			return state, nil
		}
		if !errors.Is(err, common.ErrConflict) {
			return nil, err
		}
		s.logger.Debug().Int("attempt", attempt+1).Msg("Session CAS conflict, retrying")
	}
	return nil, common.Errorf("session state contended: %w", common.ErrConflict)
}

func (s *GameService) publish(ctx context.Context, eventType events.Type) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, events.Event{Type: eventType, At: s.now()})
}
