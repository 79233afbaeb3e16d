package model

import "time"

const (
	RoleOperator    = "operator"
	RoleParticipant = "participant"
)

type Participant struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	RegisterNumber string    `json:"register_number"`
	Score          int       `json:"score"`
	Streak         int       `json:"streak"`
	JoinedAt       time.Time `json:"joined_at"`
	Seq            int64     `json:"-"` // insertion order, leaderboard tie-break
}

type Operator struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}
