package model

import (
	"errors"
	"testing"
	"time"
)

func newWaitingState() *SessionState {
	return &SessionState{
		Status:               StatusWaiting,
		RoundDurationSeconds: 300,
		BasePoints:           5,
		MaxSpeedBonus:        15,
		HintCost:             3,
	}
}

func TestStartRound(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	s := newWaitingState()
	if err := s.StartRound(120, now); err != nil {
		t.Fatalf("StartRound from waiting: %v", err)
	}
	if s.Status != StatusRoundActive || s.CurrentRound != 1 || s.CurrentTaskIndex != 0 {
		t.Errorf("unexpected state after start: %+v", s)
	}
	if s.RoundEndTime == nil || !s.RoundEndTime.Equal(now.Add(2*time.Minute)) {
		t.Errorf("round end time = %v, want %v", s.RoundEndTime, now.Add(2*time.Minute))
	}
	if s.RoundDurationSeconds != 120 {
		t.Errorf("duration = %d, want 120", s.RoundDurationSeconds)
	}

	// second round from round_ended
	if err := s.StopRound(); err != nil {
		t.Fatalf("StopRound: %v", err)
	}
	if s.RoundEndTime != nil {
		t.Error("round end time not cleared by stop")
	}
	if err := s.StartRound(60, now); err != nil {
		t.Fatalf("StartRound from round_ended: %v", err)
	}
	if s.CurrentRound != 2 {
		t.Errorf("round = %d, want 2", s.CurrentRound)
	}
}

func TestStartRoundRejected(t *testing.T) {
	now := time.Now()

	s := newWaitingState()
	s.Status = StatusRoundActive
	if err := s.StartRound(300, now); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("start from round_active: got %v", err)
	}

	s = newWaitingState()
	if err := s.StartRound(0, now); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("start with zero duration: got %v", err)
	}

	s = newWaitingState()
	s.Status = StatusChallengeEnded
	if err := s.StartRound(300, now); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("start from challenge_ended: got %v", err)
	}
}

func TestNextTaskOnlyWhileActive(t *testing.T) {
	s := newWaitingState()
	if err := s.NextTask(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("next task while waiting: got %v", err)
	}

	if err := s.StartRound(300, time.Now()); err != nil {
		t.Fatal(err)
	}
	// no upper bound: advancing past the task count stays legal
	for i := 0; i < 50; i++ {
		if err := s.NextTask(); err != nil {
			t.Fatalf("NextTask #%d: %v", i, err)
		}
	}
	if s.CurrentTaskIndex != 50 {
		t.Errorf("task index = %d, want 50", s.CurrentTaskIndex)
	}
}

func TestEndChallenge(t *testing.T) {
	s := newWaitingState()
	if err := s.StartRound(300, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := s.EndChallenge(); err != nil {
		t.Fatalf("EndChallenge: %v", err)
	}
	if s.Status != StatusChallengeEnded || s.RoundEndTime != nil {
		t.Errorf("unexpected state after end: %+v", s)
	}
	if err := s.EndChallenge(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("end from terminal state: got %v", err)
	}
}

func TestResetPreservesScoringConfig(t *testing.T) {
	s := newWaitingState()
	if err := s.SetScoringConfig(10, 40, 5); err != nil {
		t.Fatal(err)
	}
	if err := s.StartRound(120, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := s.EndChallenge(); err != nil {
		t.Fatal(err)
	}

	s.Reset(300)

	if s.Status != StatusWaiting || s.CurrentRound != 0 || s.CurrentTaskIndex != 0 {
		t.Errorf("unexpected state after reset: %+v", s)
	}
	if s.RoundEndTime != nil {
		t.Error("round end time not cleared by reset")
	}
	if s.RoundDurationSeconds != 300 {
		t.Errorf("duration = %d, want default 300", s.RoundDurationSeconds)
	}
	if s.BasePoints != 10 || s.MaxSpeedBonus != 40 || s.HintCost != 5 {
		t.Errorf("scoring config not preserved: %+v", s)
	}
}

func TestOverrideStatus(t *testing.T) {
	s := newWaitingState()
	if err := s.StartRound(300, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := s.NextTask(); err != nil {
		t.Fatal(err)
	}

	if err := s.OverrideStatus(StatusRoundEnded); err != nil {
		t.Fatalf("OverrideStatus: %v", err)
	}
	if s.CurrentRound != 1 || s.CurrentTaskIndex != 1 {
		t.Errorf("override reset counters: %+v", s)
	}
	if s.RoundEndTime != nil {
		t.Error("timer kept while not round_active")
	}

	if err := s.OverrideStatus("bogus"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("override to unknown status: got %v", err)
	}
}

func TestBroadcast(t *testing.T) {
	now := time.Now()
	s := newWaitingState()
	s.SetBroadcast("5 minutes left!", now)
	if s.BroadcastMessage == nil || *s.BroadcastMessage != "5 minutes left!" {
		t.Errorf("broadcast message = %v", s.BroadcastMessage)
	}
	if s.BroadcastAt == nil || !s.BroadcastAt.Equal(now) {
		t.Errorf("broadcast at = %v", s.BroadcastAt)
	}
	s.ClearBroadcast()
	if s.BroadcastMessage != nil || s.BroadcastAt != nil {
		t.Error("broadcast not cleared")
	}
}
