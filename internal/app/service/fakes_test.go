package service

import (
	"context"
	"sync"
	"time"

	"linux_challenge/internal/common"
	"linux_challenge/internal/domain/model"
	"linux_challenge/internal/platform/events"
)

// In-memory repositories for pipeline tests. Each mirrors the atomicity the
// Postgres layer gets from its constraints: map inserts under one mutex.

type fakeSessionRepo struct {
	mu    sync.Mutex
	state model.SessionState
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		state: model.SessionState{
			Status:               model.StatusWaiting,
			RoundDurationSeconds: 300,
			BasePoints:           5,
			MaxSpeedBonus:        15,
			HintCost:             3,
		},
	}
}

func (r *fakeSessionRepo) Init(ctx context.Context) error { return nil }

func (r *fakeSessionRepo) Get(ctx context.Context) (*model.SessionState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state := r.state
	return &state, nil
}

func (r *fakeSessionRepo) CompareAndSwap(ctx context.Context, expectedVersion int64, s *model.SessionState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.Version != expectedVersion {
		return common.ErrConflict
	}
	s.Version = expectedVersion + 1
	r.state = *s
	return nil
}

type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks []model.Task
}

func (r *fakeTaskRepo) Create(ctx context.Context, t *model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.Seq = int64(len(r.tasks) + 1)
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	r.tasks = append(r.tasks, *t)
	return nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, t *model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tasks {
		if r.tasks[i].ID == t.ID {
			r.tasks[i] = *t
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *fakeTaskRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *fakeTaskRepo) FindByID(ctx context.Context, id string) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			t := r.tasks[i]
			return &t, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeTaskRepo) List(ctx context.Context) ([]model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Task(nil), r.tasks...), nil
}

func (r *fakeTaskRepo) ListByRound(ctx context.Context, round int) ([]model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Task
	for _, t := range r.tasks {
		if t.Round == round {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeParticipantRepo struct {
	mu           sync.Mutex
	participants []*model.Participant
}

func (r *fakeParticipantRepo) Create(ctx context.Context, p *model.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.Seq = int64(len(r.participants) + 1)
	p.JoinedAt = time.Now()
	r.participants = append(r.participants, p)
	return nil
}

func (r *fakeParticipantRepo) FindByID(ctx context.Context, id string) (*model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeParticipantRepo) List(ctx context.Context) ([]model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Participant, len(r.participants))
	for i, p := range r.participants {
		out[i] = *p
	}
	return out, nil
}

func (r *fakeParticipantRepo) ApplyCorrect(ctx context.Context, id string, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.ID == id {
			p.Score += points
			p.Streak++
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *fakeParticipantRepo) ResetStreak(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.ID == id {
			p.Streak = 0
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *fakeParticipantRepo) DeductPoints(ctx context.Context, id string, cost int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.ID == id {
			p.Score -= cost
			if p.Score < 0 {
				p.Score = 0
			}
			return nil
		}
	}
	return common.ErrNotFound
}

type submissionKey struct {
	participantID string
	taskID        string
}

type fakeSubmissionRepo struct {
	mu          sync.Mutex
	submissions map[submissionKey]model.Submission
	firstSolved map[string]bool
	hints       map[submissionKey]bool
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{
		submissions: make(map[submissionKey]model.Submission),
		firstSolved: make(map[string]bool),
		hints:       make(map[submissionKey]bool),
	}
}

func (r *fakeSubmissionRepo) Create(ctx context.Context, sub *model.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := submissionKey{sub.ParticipantID, sub.TaskID}
	if _, exists := r.submissions[key]; exists {
		return common.ErrDuplicate
	}
	if sub.IsFirstSolver {
		if r.firstSolved[sub.TaskID] {
			return common.ErrFirstSolverTaken
		}
		r.firstSolved[sub.TaskID] = true
	}
	sub.SubmittedAt = time.Now()
	r.submissions[key] = *sub
	return nil
}

func (r *fakeSubmissionRepo) FindByParticipantAndTask(ctx context.Context, participantID, taskID string) (*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sub, ok := r.submissions[submissionKey{participantID, taskID}]; ok {
		return &sub, nil
	}
	return nil, common.ErrNotFound
}

func (r *fakeSubmissionRepo) ListRecent(ctx context.Context, limit int) ([]model.ActivityEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ActivityEntry
	for _, sub := range r.submissions {
		out = append(out, model.ActivityEntry{
			ID:            sub.ID,
			IsCorrect:     sub.IsCorrect,
			Points:        sub.Points,
			IsFirstSolver: sub.IsFirstSolver,
			SubmittedAt:   sub.SubmittedAt,
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepo) RecordHintUsage(ctx context.Context, usage *model.HintUsage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := submissionKey{usage.ParticipantID, usage.TaskID}
	if r.hints[key] {
		return common.ErrDuplicate
	}
	r.hints[key] = true
	usage.UsedAt = time.Now()
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *fakePublisher) Publish(ctx context.Context, event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *fakePublisher) byType(t events.Type) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Event
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
