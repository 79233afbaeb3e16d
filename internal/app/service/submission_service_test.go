package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"linux_challenge/internal/common"
	"linux_challenge/internal/domain/model"
	"linux_challenge/internal/platform/events"

	"github.com/rs/zerolog"
)

type pipelineFixture struct {
	submissions  *fakeSubmissionRepo
	participants *fakeParticipantRepo
	session      *fakeSessionRepo
	tasks        *fakeTaskRepo
	publisher    *fakePublisher
	svc          *SubmissionService
	game         *GameService
	taskSvc      *TaskService
	now          time.Time
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	f := &pipelineFixture{
		submissions:  newFakeSubmissionRepo(),
		participants: &fakeParticipantRepo{},
		session:      newFakeSessionRepo(),
		tasks:        &fakeTaskRepo{},
		publisher:    &fakePublisher{},
		now:          time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	nowFn := func() time.Time { return f.now }
	f.taskSvc = NewTaskService(f.tasks)
	f.game = NewGameService(f.session, f.taskSvc, f.publisher, nowFn, zerolog.Nop())
	f.svc = NewSubmissionService(f.submissions, f.participants, f.session, f.taskSvc, f.publisher, nowFn, zerolog.Nop())
	return f
}

func (f *pipelineFixture) addParticipant(t *testing.T, id, name string) {
	t.Helper()
	p := &model.Participant{ID: id, Name: name, RegisterNumber: "R" + id}
	if err := f.participants.Create(context.Background(), p); err != nil {
		t.Fatal(err)
	}
}

func (f *pipelineFixture) addTask(t *testing.T, id string, round int, text, correct string, acceptable ...string) {
	t.Helper()
	task := &model.Task{
		ID: id, Round: round, Text: text, Kind: model.KindCommand,
		CorrectAnswer: correct, AcceptableAnswers: acceptable,
		Difficulty: model.DifficultyMedium, Slug: "t-" + id,
	}
	if err := f.tasks.Create(context.Background(), task); err != nil {
		t.Fatal(err)
	}
}

func (f *pipelineFixture) startRound(t *testing.T, durationSeconds int) {
	t.Helper()
	if _, err := f.game.StartRound(context.Background(), durationSeconds); err != nil {
		t.Fatal(err)
	}
}

func TestSubmitCorrectAnswerScores(t *testing.T) {
	f := newPipelineFixture(t)
	f.addParticipant(t, "p1", "ada")
	f.addTask(t, "t1", 1, "list all files", "ls -a")
	f.startRound(t, 300)

	res, err := f.svc.Submit(context.Background(), "p1", SubmitRequest{TaskID: "t1", Answer: "  LS   -a "})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !res.Submission.IsCorrect {
		t.Error("answer should validate after normalization")
	}
	// full time remaining: base 5 + bonus 15
	if res.Submission.Points != 20 {
		t.Errorf("points = %d, want 20", res.Submission.Points)
	}
	if !res.Submission.IsFirstSolver {
		t.Error("first correct submission should be the first solver")
	}

	p, _ := f.participants.FindByID(context.Background(), "p1")
	if p.Score != 20 || p.Streak != 1 {
		t.Errorf("aggregate = score %d streak %d, want 20/1", p.Score, p.Streak)
	}
	if n := len(f.publisher.byType(events.TypeScoreChanged)); n != 1 {
		t.Errorf("score_changed events = %d, want 1", n)
	}
}

func TestSubmitIncorrectResetsStreak(t *testing.T) {
	f := newPipelineFixture(t)
	f.addParticipant(t, "p1", "ada")
	f.participants.participants[0].Score = 30
	f.participants.participants[0].Streak = 4
	f.addTask(t, "t1", 1, "list all files", "ls -a")
	f.startRound(t, 300)

	res, err := f.svc.Submit(context.Background(), "p1", SubmitRequest{TaskID: "t1", Answer: "dir"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Submission.IsCorrect || res.Submission.Points != 0 || res.Submission.IsFirstSolver {
		t.Errorf("unexpected result for wrong answer: %+v", res.Submission)
	}

	p, _ := f.participants.FindByID(context.Background(), "p1")
	if p.Score != 30 {
		t.Errorf("score changed on incorrect answer: %d", p.Score)
	}
	if p.Streak != 0 {
		t.Errorf("streak = %d, want 0", p.Streak)
	}
}

func TestSubmitRejectedByState(t *testing.T) {
	f := newPipelineFixture(t)
	f.addParticipant(t, "p1", "ada")
	f.addTask(t, "t1", 1, "list all files", "ls -a")

	// round never started
	_, err := f.svc.Submit(context.Background(), "p1", SubmitRequest{TaskID: "t1", Answer: "ls -a"})
	if !errors.Is(err, common.ErrNotAccepting) {
		t.Errorf("waiting: got %v, want ErrNotAccepting", err)
	}

	// wrong task: t2 exists but t1 is current
	f.addTask(t, "t2", 1, "print working directory", "pwd")
	f.startRound(t, 300)
	_, err = f.svc.Submit(context.Background(), "p1", SubmitRequest{TaskID: "t2", Answer: "pwd"})
	if !errors.Is(err, common.ErrNotAccepting) {
		t.Errorf("non-current task: got %v, want ErrNotAccepting", err)
	}

	// deadline passed
	f.now = f.now.Add(301 * time.Second)
	_, err = f.svc.Submit(context.Background(), "p1", SubmitRequest{TaskID: "t1", Answer: "ls -a"})
	if !errors.Is(err, common.ErrNotAccepting) {
		t.Errorf("expired round: got %v, want ErrNotAccepting", err)
	}

	// no side effects from any rejection
	p, _ := f.participants.FindByID(context.Background(), "p1")
	if p.Score != 0 || p.Streak != 0 {
		t.Errorf("rejected submissions mutated aggregate: %+v", p)
	}
}

func TestSubmitInvalidInput(t *testing.T) {
	f := newPipelineFixture(t)
	f.addParticipant(t, "p1", "ada")
	f.addTask(t, "t1", 1, "list all files", "ls -a")
	f.startRound(t, 300)

	_, err := f.svc.Submit(context.Background(), "p1", SubmitRequest{TaskID: "t1", Answer: "   "})
	if !errors.Is(err, common.ErrBadRequest) {
		t.Errorf("empty answer: got %v, want ErrBadRequest", err)
	}
	_, err = f.svc.Submit(context.Background(), "p1", SubmitRequest{TaskID: "nope", Answer: "ls"})
	if !errors.Is(err, common.ErrBadRequest) {
		t.Errorf("unknown task: got %v, want ErrBadRequest", err)
	}
}

func TestSubmitDuplicateIsIdempotentReplay(t *testing.T) {
	f := newPipelineFixture(t)
	f.addParticipant(t, "p1", "ada")
	f.addTask(t, "t1", 1, "list all files", "ls -a")
	f.startRound(t, 300)

	first, err := f.svc.Submit(context.Background(), "p1", SubmitRequest{TaskID: "t1", Answer: "ls -a"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.svc.Submit(context.Background(), "p1", SubmitRequest{TaskID: "t1", Answer: "different answer"})
	if err != nil {
		t.Fatalf("duplicate submit should replay, got error: %v", err)
	}
	if !second.Duplicate {
		t.Error("second submission not flagged as duplicate")
	}
	if second.Submission.ID != first.Submission.ID {
		t.Error("replay did not return the original submission")
	}

	p, _ := f.participants.FindByID(context.Background(), "p1")
	if p.Score != 20 {
		t.Errorf("duplicate scored again: score = %d, want 20", p.Score)
	}
}

func TestSubmitConcurrentSamePairSingleRow(t *testing.T) {
	f := newPipelineFixture(t)
	f.addParticipant(t, "p1", "ada")
	f.addTask(t, "t1", 1, "list all files", "ls -a")
	f.startRound(t, 300)

	const n = 16
	var wg sync.WaitGroup
	accepted := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.svc.Submit(context.Background(), "p1", SubmitRequest{TaskID: "t1", Answer: "ls -a"})
			if err != nil {
				return
			}
			accepted[i] = !res.Duplicate
		}(i)
	}
	wg.Wait()

	fresh := 0
	for _, a := range accepted {
		if a {
			fresh++
		}
	}
	if fresh != 1 {
		t.Errorf("accepted submissions = %d, want exactly 1", fresh)
	}
	p, _ := f.participants.FindByID(context.Background(), "p1")
	if p.Score != 20 {
		t.Errorf("score = %d, want one award of 20", p.Score)
	}
}

func TestFirstSolverExactlyOne(t *testing.T) {
	f := newPipelineFixture(t)
	f.addTask(t, "t1", 1, "list all files", "ls -a")
	f.startRound(t, 300)

	const n = 8
	for i := 0; i < n; i++ {
		f.addParticipant(t, string(rune('a'+i)), "player")
	}

	var wg sync.WaitGroup
	results := make([]*SubmitResult, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.svc.Submit(context.Background(), string(rune('a'+i)), SubmitRequest{TaskID: "t1", Answer: "ls -a"})
			if err == nil {
				results[i] = res
			}
		}(i)
	}
	wg.Wait()

	firsts := 0
	for _, res := range results {
		if res == nil {
			t.Fatal("submission unexpectedly failed")
		}
		if res.Submission.IsFirstSolver {
			firsts++
		}
	}
	if firsts != 1 {
		t.Errorf("first solvers = %d, want exactly 1", firsts)
	}
}

func TestUseHint(t *testing.T) {
	f := newPipelineFixture(t)
	f.addParticipant(t, "p1", "ada")
	f.participants.participants[0].Score = 2
	f.addTask(t, "t1", 1, "list all files", "ls -la")
	f.startRound(t, 300)

	res, err := f.svc.UseHint(context.Background(), "p1", "t1")
	if err != nil {
		t.Fatalf("UseHint: %v", err)
	}
	if res.Hint != "l_ -__" {
		t.Errorf("hint = %q, want %q", res.Hint, "l_ -__")
	}
	if res.Cost != 3 || res.AlreadyUsed {
		t.Errorf("unexpected hint result: %+v", res)
	}

	// score 2 - cost 3 clamps at 0
	p, _ := f.participants.FindByID(context.Background(), "p1")
	if p.Score != 0 {
		t.Errorf("score = %d, want 0 (clamped)", p.Score)
	}

	// second use replays without a second charge
	f.participants.participants[0].Score = 10
	res, err = f.svc.UseHint(context.Background(), "p1", "t1")
	if err != nil {
		t.Fatalf("UseHint replay: %v", err)
	}
	if !res.AlreadyUsed || res.Cost != 0 {
		t.Errorf("replay not free: %+v", res)
	}
	p, _ = f.participants.FindByID(context.Background(), "p1")
	if p.Score != 10 {
		t.Errorf("replay charged again: score = %d", p.Score)
	}
}

func TestScoringScenarioEndOfRound(t *testing.T) {
	f := newPipelineFixture(t)
	f.addParticipant(t, "p1", "ada")
	f.addTask(t, "t1", 1, "list all files", "ls -a")
	f.startRound(t, 300)

	// answer exactly at the deadline: base points only
	f.now = f.now.Add(300 * time.Second)
	res, err := f.svc.Submit(context.Background(), "p1", SubmitRequest{TaskID: "t1", Answer: "ls -a"})
	if err != nil {
		t.Fatalf("Submit at deadline: %v", err)
	}
	if res.Submission.Points != 5 {
		t.Errorf("points = %d, want 5", res.Submission.Points)
	}
}
