package model

import "time"

type TaskKind string
type TaskDifficulty string

const (
	KindCommand TaskKind = "command" // participant types the correct command
	KindOutput  TaskKind = "output"  // participant predicts command output
	KindFix     TaskKind = "fix"     // participant corrects a broken command

	DifficultyEasy   TaskDifficulty = "easy"
	DifficultyMedium TaskDifficulty = "medium"
	DifficultyHard   TaskDifficulty = "hard"
)

func (k TaskKind) Valid() bool {
	return k == KindCommand || k == KindOutput || k == KindFix
}

func (d TaskDifficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

type Task struct {
	ID                string         `json:"id"`
	Round             int            `json:"round"`
	Seq               int64          `json:"-"` // insertion order within the round
	Slug              string         `json:"slug"`
	Text              string         `json:"text"`
	Kind              TaskKind       `json:"kind"`
	CorrectAnswer     string         `json:"correct_answer,omitempty"`
	AcceptableAnswers []string       `json:"acceptable_answers,omitempty"`
	Difficulty        TaskDifficulty `json:"difficulty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// Public strips the answer fields for the participant-facing view.
func (t Task) Public() Task {
	t.CorrectAnswer = ""
	t.AcceptableAnswers = nil
	return t
}
