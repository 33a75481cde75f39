package models

import "time"

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusCompleted MatchStatus = "completed"
)

type MatchWinner string

const (
	WinnerTeamA MatchWinner = "teamA"
	WinnerTeamB MatchWinner = "teamB"
)

// Match is a persisted doubles fixture. TeamA and TeamB always hold two player IDs.
type Match struct {
	ID           string       `json:"id" db:"id"`
	TournamentID int          `json:"tournament_id" db:"tournament_id"`
	Position     int          `json:"position" db:"position"`
	TeamA        []int        `json:"team_a" db:"team_a"`
	TeamB        []int        `json:"team_b" db:"team_b"`
	Status       MatchStatus  `json:"status" db:"status"`
	ScoreA       *int         `json:"score_a" db:"score_a"`
	ScoreB       *int         `json:"score_b" db:"score_b"`
	Winner       *MatchWinner `json:"winner" db:"winner"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

func (m *Match) IsCompleted() bool {
	return m.Status == MatchStatusCompleted
}

// Side reports which side of the match the player is on.
func (m *Match) Side(playerID int) (MatchWinner, bool) {
	for _, id := range m.TeamA {
		if id == playerID {
			return WinnerTeamA, true
		}
	}
	for _, id := range m.TeamB {
		if id == playerID {
			return WinnerTeamB, true
		}
	}
	return "", false
}
