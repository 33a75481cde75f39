package models

type LeaderboardEntry struct {
	Rank          int     `json:"rank"`
	PlayerID      int     `json:"player_id"`
	Name          string  `json:"name"`
	Played        int     `json:"played"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	PointsFor     int     `json:"points_for"`
	PointsAgainst int     `json:"points_against"`
	PointDiff     int     `json:"point_diff"`
	WinRate       float64 `json:"win_rate"`
}

// TeamScore is the match tally between the two sides of one tournament.
type TeamScore struct {
	TeamAWins int `json:"team_a_wins"`
	TeamBWins int `json:"team_b_wins"`
	Pending   int `json:"pending"`
}
