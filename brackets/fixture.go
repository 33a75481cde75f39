package brackets

import (
	"github.com/Dosada05/badminton-doubles/models"
)

// Pair is two players of the same team playing together.
type Pair [2]int

func (p Pair) Has(playerID int) bool {
	return p[0] == playerID || p[1] == playerID
}

func (p Pair) normalized() Pair {
	if p[0] > p[1] {
		return Pair{p[1], p[0]}
	}
	return p
}

// comboKey identifies a team-vs-team pairing regardless of member order.
type comboKey struct {
	a, b Pair
}

func newComboKey(pairA, pairB Pair) comboKey {
	return comboKey{a: pairA.normalized(), b: pairB.normalized()}
}

// Fixture is one doubles match: a pair from team A against a pair from team B.
type Fixture struct {
	ID     string              `json:"id"`
	TeamA  Pair                `json:"team_a"`
	TeamB  Pair                `json:"team_b"`
	Status models.MatchStatus  `json:"status"`
	ScoreA *int                `json:"score_a"`
	ScoreB *int                `json:"score_b"`
	Winner *models.MatchWinner `json:"winner"`
}

func (f *Fixture) Players() [4]int {
	return [4]int{f.TeamA[0], f.TeamA[1], f.TeamB[0], f.TeamB[1]}
}

// ParticipationCounts returns how many fixtures each player appears in.
func ParticipationCounts(fixtures []*Fixture) map[int]int {
	counts := make(map[int]int)
	for _, f := range fixtures {
		for _, p := range f.Players() {
			counts[p]++
		}
	}
	return counts
}

// ParticipationSpread returns the min and max counts over the given roster.
// Players missing from counts are treated as zero.
func ParticipationSpread(counts map[int]int, roster []int) (lo, hi int) {
	for i, p := range roster {
		c := counts[p]
		if i == 0 || c < lo {
			lo = c
		}
		if i == 0 || c > hi {
			hi = c
		}
	}
	return lo, hi
}
