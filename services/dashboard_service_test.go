package services

import (
	"context"
	"testing"

	"github.com/Dosada05/badminton-doubles/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	f, svc, created := newMatchFixture(t, 4, 1)
	_, err := svc.SubmitScore(context.Background(), created.Matches[0].ID, SubmitScoreInput{ScoreA: intPtr(21), ScoreB: intPtr(8)})
	require.NoError(t, err)

	_, err = f.service.CreateTournament(context.Background(), CreateTournamentInput{Name: "Second", PlayerIDs: rosterIDs(4), MatchesPerPlayer: 1})
	require.NoError(t, err)

	stats, err := NewDashboardService(f.players, f.tournaments, f.matches).GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DashboardStats{
		PlayersTotal:      4,
		TournamentsTotal:  2,
		ActiveTournaments: 1,
		MatchesTotal:      2,
		CompletedMatches:  1,
	}, stats)
}
