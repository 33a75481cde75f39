package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusActive    TournamentStatus = "active"
	StatusCompleted TournamentStatus = "completed"
)

type SplitMethod string

const (
	SplitMethodAI     SplitMethod = "ai"
	SplitMethodRandom SplitMethod = "random"
)

// Tournament представляет турнир: две команды и расписание парных матчей.
type Tournament struct {
	ID               int              `json:"id" db:"id"`
	Name             string           `json:"name" db:"name"`
	Status           TournamentStatus `json:"status" db:"status"`
	MatchesPerPlayer int              `json:"matches_per_player" db:"matches_per_player"`
	Seed             int64            `json:"seed" db:"seed"`
	TeamA            []int            `json:"team_a" db:"team_a"`
	TeamB            []int            `json:"team_b" db:"team_b"`
	SplitMethod      SplitMethod      `json:"split_method" db:"split_method"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Matches     []*Match           `json:"matches,omitempty" db:"-"`
	Leaderboard []LeaderboardEntry `json:"leaderboard,omitempty" db:"-"`
	TeamScore   *TeamScore         `json:"team_score,omitempty" db:"-"`
}

// Players returns team A followed by team B.
func (t *Tournament) Players() []int {
	all := make([]int, 0, len(t.TeamA)+len(t.TeamB))
	all = append(all, t.TeamA...)
	return append(all, t.TeamB...)
}
