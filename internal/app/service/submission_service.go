package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"linux_challenge/internal/app/answer"
	"linux_challenge/internal/app/scoring"
	"linux_challenge/internal/common"
	"linux_challenge/internal/domain/model"
	"linux_challenge/internal/domain/repository"
	"linux_challenge/internal/platform/events"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SubmissionService runs the pipeline: gate on session state, check for a
// prior submission, validate, score, claim first solver, persist, then update
// the participant aggregate. Uniqueness and the first-solver claim rest on
// storage constraints, not on read-then-write checks.
type SubmissionService struct {
	submissionRepo  repository.SubmissionRepository
	participantRepo repository.ParticipantRepository
	sessionRepo     repository.SessionRepository
	tasks           *TaskService
	publisher       events.Publisher
	now             func() time.Time
	logger          zerolog.Logger
}

func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	participantRepo repository.ParticipantRepository,
	sessionRepo repository.SessionRepository,
	tasks *TaskService,
	publisher events.Publisher,
	now func() time.Time,
	logger zerolog.Logger,
) *SubmissionService {
	if now == nil {
		now = time.Now
	}
	return &SubmissionService{
		submissionRepo:  submissionRepo,
		participantRepo: participantRepo,
		sessionRepo:     sessionRepo,
		tasks:           tasks,
		publisher:       publisher,
		now:             now,
		logger:          logger.With().Str("component", "submission").Logger(),
	}
}

type SubmitRequest struct {
	TaskID            string     `json:"task_id"`
	Answer            string     `json:"answer"`
	ClientSubmittedAt *time.Time `json:"client_submitted_at,omitempty"`
}

type SubmitResult struct {
	Submission *model.Submission `json:"submission"`
	// Duplicate marks an idempotent replay: the stored result of an earlier
	// submission, never a second scoring event.
	Duplicate bool `json:"duplicate"`
}

func (s *SubmissionService) Submit(ctx context.Context, participantID string, req SubmitRequest) (*SubmitResult, error) {
	if strings.TrimSpace(req.Answer) == "" {
		return nil, common.Errorf("answer is empty: %w", common.ErrBadRequest)
	}
	if req.TaskID == "" {
		return nil, common.Errorf("task id is required: %w", common.ErrBadRequest)
	}

	task, err := s.tasks.FindByID(ctx, req.TaskID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf("unknown task: %w", common.ErrBadRequest)
		}
		return nil, err
	}

	// Session state captured once at evaluation time; scoring uses this
	// snapshot plus the server clock, never the client's timestamp.
	state, err := s.sessionRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.gate(ctx, state, task, now); err != nil {
		return nil, err
	}

	// Fast path for a replayed submission. The unique constraint below
	// still backstops the race between this check and the insert.
	if existing, err := s.submissionRepo.FindByParticipantAndTask(ctx, participantID, task.ID); err == nil {
		return &SubmitResult{Submission: existing, Duplicate: true}, nil
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	correct := answer.Validate(req.Answer, task.CorrectAnswer, task.AcceptableAnswers)
	points := 0
	if correct {
		points = scoring.Points(state.RoundEndTime, state.RoundDurationSeconds, state.BasePoints, state.MaxSpeedBonus, now)
	}

	sub := &model.Submission{
		ID:                uuid.NewString(),
		ParticipantID:     participantID,
		TaskID:            task.ID,
		Answer:            strings.TrimSpace(req.Answer),
		IsCorrect:         correct,
		Points:            points,
		IsFirstSolver:     correct, // optimistic claim, storage arbitrates
		ClientSubmittedAt: req.ClientSubmittedAt,
	}

	if err := s.submissionRepo.Create(ctx, sub); err != nil {
		if errors.Is(err, common.ErrFirstSolverTaken) {
			sub.IsFirstSolver = false
			err = s.submissionRepo.Create(ctx, sub)
		}
		if errors.Is(err, common.ErrDuplicate) {
			existing, findErr := s.submissionRepo.FindByParticipantAndTask(ctx, participantID, task.ID)
			if findErr != nil {
				return nil, findErr
			}
			return &SubmitResult{Submission: existing, Duplicate: true}, nil
		}
		if err != nil {
			return nil, err
		}
	}

	// Aggregate update after the immutable row is down. A crash between the
	// two leaves a submission without its score delta; surfaces as a
	// retryable error rather than being hidden.
	if correct {
		if err := s.participantRepo.ApplyCorrect(ctx, participantID, points); err != nil {
			s.logger.Error().Err(err).Str("participantId", participantID).Msg("Score update failed after persist")
			return nil, common.Errorf("submission stored but score update failed: %w", err)
		}
	} else {
		if err := s.participantRepo.ResetStreak(ctx, participantID); err != nil {
			s.logger.Error().Err(err).Str("participantId", participantID).Msg("Streak reset failed after persist")
			return nil, common.Errorf("submission stored but streak reset failed: %w", err)
		}
	}

	s.logger.Info().
		Str("participantId", participantID).
		Str("taskId", task.ID).
		Bool("correct", correct).
		Int("points", points).
		Bool("firstSolver", sub.IsFirstSolver).
		Msg("Submission recorded")

	s.publish(ctx, events.Event{Type: events.TypeSubmissionRecorded, ParticipantID: participantID, TaskID: task.ID, At: now})
	if correct {
		s.publish(ctx, events.Event{Type: events.TypeScoreChanged, ParticipantID: participantID, At: now})
	}

	return &SubmitResult{Submission: sub}, nil
}

// gate rejects with ErrNotAccepting unless a round is active, the task is
// the current one and the round deadline has not passed. The deadline check
// lives here, not in a background timer.
func (s *SubmissionService) gate(ctx context.Context, state *model.SessionState, task *model.Task, now time.Time) error {
	if state.Status != model.StatusRoundActive {
		return common.Errorf("session status is %q: %w", state.Status, common.ErrNotAccepting)
	}
	current, err := s.tasks.CurrentTask(ctx, state)
	if err != nil {
		return err
	}
	if current == nil || current.ID != task.ID {
		return common.Errorf("task is not the current task: %w", common.ErrNotAccepting)
	}
	if state.RoundEndTime != nil && now.After(*state.RoundEndTime) {
		return common.Errorf("round time expired: %w", common.ErrNotAccepting)
	}
	return nil
}

type HintResult struct {
	Hint        string `json:"hint"`
	Cost        int    `json:"cost"`
	AlreadyUsed bool   `json:"already_used"`
}

// UseHint charges the session's hint cost (clamped so the score never goes
// negative) and returns the masked answer. The charge lands at most once per
// (participant, task); replays return the hint for free.
func (s *SubmissionService) UseHint(ctx context.Context, participantID, taskID string) (*HintResult, error) {
	if taskID == "" {
		return nil, common.Errorf("task id is required: %w", common.ErrBadRequest)
	}
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf("unknown task: %w", common.ErrBadRequest)
		}
		return nil, err
	}
	state, err := s.sessionRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	cost := state.HintCost
	if cost <= 0 {
		cost = scoring.DefaultHintCost
	}

	usage := &model.HintUsage{ParticipantID: participantID, TaskID: task.ID, Cost: cost}
	if err := s.submissionRepo.RecordHintUsage(ctx, usage); err != nil {
		if errors.Is(err, common.ErrDuplicate) {
			return &HintResult{Hint: answer.Mask(task.CorrectAnswer), Cost: 0, AlreadyUsed: true}, nil
		}
		return nil, err
	}

	if err := s.participantRepo.DeductPoints(ctx, participantID, cost); err != nil {
		return nil, common.Errorf("hint recorded but deduction failed: %w", err)
	}

	s.logger.Info().Str("participantId", participantID).Str("taskId", task.ID).Int("cost", cost).Msg("Hint used")
	s.publish(ctx, events.Event{Type: events.TypeScoreChanged, ParticipantID: participantID, At: s.now()})

	return &HintResult{Hint: answer.Mask(task.CorrectAnswer), Cost: cost}, nil
}

func (s *SubmissionService) ActivityFeed(ctx context.Context, limit int) ([]model.ActivityEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	return s.submissionRepo.ListRecent(ctx, limit)
}

func (s *SubmissionService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, event)
}
