package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Dosada05/badminton-doubles/models"
	"github.com/Dosada05/badminton-doubles/repositories"
	"golang.org/x/sync/errgroup"
)

type LeaderboardService interface {
	GetOverall(ctx context.Context) ([]models.LeaderboardEntry, error)
	GetForTournament(ctx context.Context, tournamentID int) ([]models.LeaderboardEntry, error)
}

type leaderboardService struct {
	playerRepo     repositories.PlayerRepository
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
}

func NewLeaderboardService(
	playerRepo repositories.PlayerRepository,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
) LeaderboardService {
	return &leaderboardService{
		playerRepo:     playerRepo,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
	}
}

func (s *leaderboardService) GetOverall(ctx context.Context) ([]models.LeaderboardEntry, error) {
	var players []models.Player
	var matches []*models.Match

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		players, err = s.playerRepo.List(gCtx)
		if err != nil {
			return fmt.Errorf("failed to list players: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListCompleted(gCtx)
		if err != nil {
			return fmt.Errorf("failed to list completed matches: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return BuildLeaderboard(players, matches), nil
}

func (s *leaderboardService) GetForTournament(ctx context.Context, tournamentID int) ([]models.LeaderboardEntry, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}

	players, matches, err := loadTournamentData(ctx, s.playerRepo, s.matchRepo, tournament)
	if err != nil {
		return nil, err
	}
	return BuildLeaderboard(players, matches), nil
}

// loadTournamentData fetches the tournament's players and matches concurrently.
func loadTournamentData(
	ctx context.Context,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	tournament *models.Tournament,
) ([]models.Player, []*models.Match, error) {
	var players []models.Player
	var matches []*models.Match

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		players, err = playerRepo.GetByIDs(gCtx, tournament.Players())
		if err != nil {
			return fmt.Errorf("failed to load players of tournament %d: %w", tournament.ID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		matches, err = matchRepo.ListByTournament(gCtx, tournament.ID)
		if err != nil {
			return fmt.Errorf("failed to load matches of tournament %d: %w", tournament.ID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return players, matches, nil
}

// BuildLeaderboard aggregates completed matches into one entry per player.
// Players without completed matches are listed with zero stats.
// Order: wins, point difference, points scored (all descending), then name and ID.
// Tied players share a rank (1, 2, 2, 4).
func BuildLeaderboard(players []models.Player, matches []*models.Match) []models.LeaderboardEntry {
	entries := make([]models.LeaderboardEntry, len(players))
	index := make(map[int]int, len(players))
	for i, p := range players {
		entries[i] = models.LeaderboardEntry{PlayerID: p.ID, Name: p.Name}
		index[p.ID] = i
	}

	for _, m := range matches {
		if m == nil || !m.IsCompleted() || m.ScoreA == nil || m.ScoreB == nil || m.Winner == nil {
			continue
		}
		apply := func(ids []int, side models.MatchWinner, scored, conceded int) {
			for _, id := range ids {
				i, ok := index[id]
				if !ok {
					continue
				}
				e := &entries[i]
				e.Played++
				if *m.Winner == side {
					e.Wins++
				} else {
					e.Losses++
				}
				e.PointsFor += scored
				e.PointsAgainst += conceded
			}
		}
		apply(m.TeamA, models.WinnerTeamA, *m.ScoreA, *m.ScoreB)
		apply(m.TeamB, models.WinnerTeamB, *m.ScoreB, *m.ScoreA)
	}

	for i := range entries {
		e := &entries[i]
		e.PointDiff = e.PointsFor - e.PointsAgainst
		if e.Played > 0 {
			e.WinRate = math.Round(float64(e.Wins)/float64(e.Played)*1000) / 1000
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.PointDiff != b.PointDiff {
			return a.PointDiff > b.PointDiff
		}
		if a.PointsFor != b.PointsFor {
			return a.PointsFor > b.PointsFor
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.PlayerID < b.PlayerID
	})

	for i := range entries {
		if i > 0 && sameStanding(entries[i-1], entries[i]) {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}
	return entries
}

func sameStanding(a, b models.LeaderboardEntry) bool {
	return a.Wins == b.Wins && a.PointDiff == b.PointDiff && a.PointsFor == b.PointsFor
}

// ComputeTeamScore tallies match wins of each side.
func ComputeTeamScore(matches []*models.Match) models.TeamScore {
	var score models.TeamScore
	for _, m := range matches {
		if m == nil {
			continue
		}
		if !m.IsCompleted() || m.Winner == nil {
			score.Pending++
			continue
		}
		switch *m.Winner {
		case models.WinnerTeamA:
			score.TeamAWins++
		case models.WinnerTeamB:
			score.TeamBWins++
		}
	}
	return score
}
