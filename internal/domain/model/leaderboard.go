package model

type LeaderboardRow struct {
	Rank           int    `json:"rank"`
	ParticipantID  string `json:"participant_id"`
	Name           string `json:"name"`
	RegisterNumber string `json:"register_number"`
	Score          int    `json:"score"`
	Streak         int    `json:"streak"`
}
