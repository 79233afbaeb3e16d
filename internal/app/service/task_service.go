package service

import (
	"context"
	"strings"

	"linux_challenge/internal/common"
	"linux_challenge/internal/domain/model"
	"linux_challenge/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// TaskService is the task catalog: operator CRUD plus the current-task
// lookup the submission pipeline gates on. Edits never touch scores already
// recorded against a task.
type TaskService struct {
	taskRepo repository.TaskRepository
}

func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

type TaskRequest struct {
	Round             int                  `json:"round"`
	Text              string               `json:"text"`
	Kind              model.TaskKind       `json:"kind"`
	CorrectAnswer     string               `json:"correct_answer"`
	AcceptableAnswers []string             `json:"acceptable_answers"`
	Difficulty        model.TaskDifficulty `json:"difficulty"`
}

func (r *TaskRequest) validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return common.Errorf("task text is required: %w", common.ErrValidation)
	}
	if strings.TrimSpace(r.CorrectAnswer) == "" {
		return common.Errorf("correct answer is required: %w", common.ErrValidation)
	}
	if r.Round <= 0 {
		return common.Errorf("round must be positive: %w", common.ErrValidation)
	}
	if r.Kind == "" {
		r.Kind = model.KindCommand
	}
	if !r.Kind.Valid() {
		return common.Errorf("unknown task kind %q: %w", r.Kind, common.ErrValidation)
	}
	if r.Difficulty == "" {
		r.Difficulty = model.DifficultyMedium
	}
	if !r.Difficulty.Valid() {
		return common.Errorf("unknown difficulty %q: %w", r.Difficulty, common.ErrValidation)
	}
	return nil
}

func (s *TaskService) Create(ctx context.Context, req TaskRequest) (*model.Task, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	task := &model.Task{
		ID:                uuid.NewString(),
		Round:             req.Round,
		Slug:              taskSlug(req.Text),
		Text:              strings.TrimSpace(req.Text),
		Kind:              req.Kind,
		CorrectAnswer:     req.CorrectAnswer,
		AcceptableAnswers: req.AcceptableAnswers,
		Difficulty:        req.Difficulty,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, id string, req TaskRequest) (*model.Task, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	task.Round = req.Round
	task.Slug = taskSlug(req.Text)
	task.Text = strings.TrimSpace(req.Text)
	task.Kind = req.Kind
	task.CorrectAnswer = req.CorrectAnswer
	task.AcceptableAnswers = req.AcceptableAnswers
	task.Difficulty = req.Difficulty
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	return s.taskRepo.Delete(ctx, id)
}

func (s *TaskService) FindByID(ctx context.Context, id string) (*model.Task, error) {
	return s.taskRepo.FindByID(ctx, id)
}

func (s *TaskService) List(ctx context.Context) ([]model.Task, error) {
	return s.taskRepo.List(ctx)
}

func (s *TaskService) ListByRound(ctx context.Context, round int) ([]model.Task, error) {
	return s.taskRepo.ListByRound(ctx, round)
}

// CurrentTask resolves the task at the session's task index within the
// current round. Nil without error when the round has not started or the
// index ran past the last task.
func (s *TaskService) CurrentTask(ctx context.Context, state *model.SessionState) (*model.Task, error) {
	if state.CurrentRound <= 0 {
		return nil, nil
	}
	tasks, err := s.taskRepo.ListByRound(ctx, state.CurrentRound)
	if err != nil {
		return nil, err
	}
	if state.CurrentTaskIndex < 0 || state.CurrentTaskIndex >= len(tasks) {
		return nil, nil
	}
	task := tasks[state.CurrentTaskIndex]
	return &task, nil
}

func taskSlug(text string) string {
	s := slug.Make(text)
	if len(s) > 60 {
		s = s[:60]
	}
	return strings.Trim(s, "-")
}
