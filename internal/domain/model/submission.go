package model

import "time"

// Submission is immutable once created. At most one row exists per
// (participant, task) pair, enforced by a unique constraint in storage.
type Submission struct {
	ID                string     `json:"id"`
	ParticipantID     string     `json:"participant_id"`
	TaskID            string     `json:"task_id"`
	Answer            string     `json:"answer"`
	IsCorrect         bool       `json:"is_correct"`
	Points            int        `json:"points"`
	IsFirstSolver     bool       `json:"is_first_solver"`
	ClientSubmittedAt *time.Time `json:"client_submitted_at,omitempty"`
	SubmittedAt       time.Time  `json:"submitted_at"`
}

// ActivityEntry is a submission joined with the participant's name for the
// live feed.
type ActivityEntry struct {
	ID              string    `json:"id"`
	ParticipantName string    `json:"participant_name"`
	IsCorrect       bool      `json:"is_correct"`
	Points          int       `json:"points"`
	IsFirstSolver   bool      `json:"is_first_solver"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

type HintUsage struct {
	ParticipantID string    `json:"participant_id"`
	TaskID        string    `json:"task_id"`
	Cost          int       `json:"cost"`
	UsedAt        time.Time `json:"used_at"`
}
