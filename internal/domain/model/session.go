package model

import (
	"errors"
	"fmt"
	"time"
)

type SessionStatus string

const (
	StatusWaiting        SessionStatus = "waiting"
	StatusRoundActive    SessionStatus = "round_active"
	StatusRoundEnded     SessionStatus = "round_ended"
	StatusChallengeEnded SessionStatus = "challenge_ended"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case StatusWaiting, StatusRoundActive, StatusRoundEnded, StatusChallengeEnded:
		return true
	}
	return false
}

var ErrInvalidTransition = errors.New("invalid session transition")

// SessionState is the singleton record governing whether submissions are
// accepted. Version backs the optimistic compare-and-swap in the repository;
// all mutations go through the transition methods below.
type SessionState struct {
	Version              int64         `json:"version"`
	Status               SessionStatus `json:"status"`
	CurrentRound         int           `json:"current_round"`
	CurrentTaskIndex     int           `json:"current_task_index"`
	RoundEndTime         *time.Time    `json:"round_end_time"`
	RoundDurationSeconds int           `json:"round_duration_seconds"`
	BasePoints           int           `json:"base_points"`
	MaxSpeedBonus        int           `json:"max_speed_bonus"`
	HintCost             int           `json:"hint_cost"`
	BroadcastMessage     *string       `json:"broadcast_message"`
	BroadcastAt          *time.Time    `json:"broadcast_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

// StartRound begins round N+1. Allowed from waiting or round_ended.
func (s *SessionState) StartRound(durationSeconds int, now time.Time) error {
	if s.Status != StatusWaiting && s.Status != StatusRoundEnded {
		return fmt.Errorf("cannot start round from %q: %w", s.Status, ErrInvalidTransition)
	}
	if durationSeconds <= 0 {
		return fmt.Errorf("round duration must be positive: %w", ErrInvalidTransition)
	}
	end := now.Add(time.Duration(durationSeconds) * time.Second)
	s.Status = StatusRoundActive
	s.CurrentRound++
	s.CurrentTaskIndex = 0
	s.RoundEndTime = &end
	s.RoundDurationSeconds = durationSeconds
	return nil
}

// NextTask advances within the active round. Running past the last task is
// legal and simply yields "no current task" to participants.
func (s *SessionState) NextTask() error {
	if s.Status != StatusRoundActive {
		return fmt.Errorf("cannot advance task from %q: %w", s.Status, ErrInvalidTransition)
	}
	s.CurrentTaskIndex++
	return nil
}

func (s *SessionState) StopRound() error {
	if s.Status != StatusRoundActive {
		return fmt.Errorf("cannot stop round from %q: %w", s.Status, ErrInvalidTransition)
	}
	s.Status = StatusRoundEnded
	s.RoundEndTime = nil
	return nil
}

func (s *SessionState) EndChallenge() error {
	if s.Status == StatusChallengeEnded {
		return fmt.Errorf("challenge already ended: %w", ErrInvalidTransition)
	}
	s.Status = StatusChallengeEnded
	s.RoundEndTime = nil
	return nil
}

// Reset returns to the lobby from any state. Scoring configuration and the
// broadcast banner survive a reset.
func (s *SessionState) Reset(defaultDurationSeconds int) {
	s.Status = StatusWaiting
	s.CurrentRound = 0
	s.CurrentTaskIndex = 0
	s.RoundEndTime = nil
	s.RoundDurationSeconds = defaultDurationSeconds
}

// OverrideStatus is the operator escape hatch: status only, counters kept.
// The timer is cleared when leaving round_active so that RoundEndTime stays
// non-null only while a round is active.
func (s *SessionState) OverrideStatus(status SessionStatus) error {
	if !status.Valid() {
		return fmt.Errorf("unknown status %q: %w", status, ErrInvalidTransition)
	}
	if status != StatusRoundActive {
		s.RoundEndTime = nil
	}
	s.Status = status
	return nil
}

func (s *SessionState) SetScoringConfig(basePoints, maxSpeedBonus, hintCost int) error {
	if basePoints <= 0 || maxSpeedBonus <= 0 || hintCost <= 0 {
		return fmt.Errorf("scoring config values must be positive: %w", ErrInvalidTransition)
	}
	s.BasePoints = basePoints
	s.MaxSpeedBonus = maxSpeedBonus
	s.HintCost = hintCost
	return nil
}

func (s *SessionState) SetBroadcast(message string, now time.Time) {
	s.BroadcastMessage = &message
	s.BroadcastAt = &now
}

func (s *SessionState) ClearBroadcast() {
	s.BroadcastMessage = nil
	s.BroadcastAt = nil
}
