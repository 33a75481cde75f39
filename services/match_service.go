package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/badminton-doubles/brackets"
	"github.com/Dosada05/badminton-doubles/models"
	"github.com/Dosada05/badminton-doubles/repositories"
)

type MatchService interface {
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	GetMatch(ctx context.Context, matchID string) (*models.Match, error)
	SubmitScore(ctx context.Context, matchID string, input SubmitScoreInput) (*models.Match, error)
}

type SubmitScoreInput struct {
	ScoreA *int `json:"score_a"`
	ScoreB *int `json:"score_b"`
}

// Validate enforces the only scoring rules the service knows: both scores
// present, non-negative and different.
func (in SubmitScoreInput) Validate() error {
	if in.ScoreA == nil || in.ScoreB == nil {
		return fmt.Errorf("%w: both scores are required", ErrInvalidScore)
	}
	if *in.ScoreA < 0 || *in.ScoreB < 0 {
		return ErrInvalidScore
	}
	if *in.ScoreA == *in.ScoreB {
		return ErrInvalidScore
	}
	return nil
}

type matchService struct {
	transactor     repositories.Transactor
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	broadcaster    Broadcaster
	logger         *slog.Logger
}

func NewMatchService(
	transactor repositories.Transactor,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	broadcaster Broadcaster,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		transactor:     transactor,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		broadcaster:    broadcasterOrNoop(broadcaster),
		logger:         loggerOrDefault(logger),
	}
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}

	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}

func (s *matchService) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", matchID, err)
	}
	return match, nil
}

// SubmitScore records the result of a match. A completed match may be
// corrected while its tournament is still active. The tournament is closed
// once no pending matches remain.
func (s *matchService) SubmitScore(ctx context.Context, matchID string, input SubmitScoreInput) (*models.Match, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", match.TournamentID, err)
	}
	if tournament.Status != models.StatusActive {
		return nil, ErrTournamentNotActive
	}

	scoreA, scoreB := *input.ScoreA, *input.ScoreB
	winner := models.WinnerTeamA
	if scoreB > scoreA {
		winner = models.WinnerTeamB
	}
	match.ScoreA = &scoreA
	match.ScoreB = &scoreB
	match.Winner = &winner
	match.Status = models.MatchStatusCompleted

	tournamentCompleted := false
	err = s.transactor.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.UpdateScore(ctx, exec, match); err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return fmt.Errorf("failed to save score for match %s: %w", matchID, err)
		}

		pending, err := s.matchRepo.CountPending(ctx, exec, tournament.ID)
		if err != nil {
			return fmt.Errorf("failed to count pending matches: %w", err)
		}
		if pending > 0 {
			return nil
		}

		if err := s.tournamentRepo.UpdateStatus(ctx, exec, tournament.ID, models.StatusCompleted); err != nil {
			return fmt.Errorf("failed to complete tournament %d: %w", tournament.ID, err)
		}
		tournamentCompleted = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	room := brackets.TournamentRoom(tournament.ID)
	publish(s.broadcaster, room, brackets.EventMatchUpdated, match)

	if tournamentCompleted {
		tournament.Status = models.StatusCompleted
		s.logger.Info("all matches played, tournament completed", slog.Int("tournament_id", tournament.ID))
		publish(s.broadcaster, room, brackets.EventTournamentCompleted, tournament)
		publish(s.broadcaster, brackets.LobbyRoom, brackets.EventTournamentCompleted, tournament)
	}
	return match, nil
}
