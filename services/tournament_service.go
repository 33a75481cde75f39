package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/badminton-doubles/brackets"
	"github.com/Dosada05/badminton-doubles/models"
	"github.com/Dosada05/badminton-doubles/repositories"
)

const (
	minTournamentPlayers = 4
	defaultListLimit     = 50
	maxListLimit         = 100
)

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournamentDetails(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter ListTournamentsInput) ([]models.Tournament, error)
	RegenerateFixtures(ctx context.Context, id int, input RegenerateFixturesInput) (*models.Tournament, error)
	CompleteTournament(ctx context.Context, id int) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, id int) error
}

type CreateTournamentInput struct {
	Name             string `json:"name"`
	PlayerIDs        []int  `json:"player_ids"`
	MatchesPerPlayer int    `json:"matches_per_player"`
	Seed             *int64 `json:"seed,omitempty"`
}

type ListTournamentsInput struct {
	Status *models.TournamentStatus
	Limit  int
	Offset int
}

type RegenerateFixturesInput struct {
	Seed *int64 `json:"seed,omitempty"`
}

type tournamentService struct {
	transactor     repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	matchRepo      repositories.MatchRepository
	splitter       TeamSplitter
	generator      brackets.FixtureGenerator
	broadcaster    Broadcaster
	logger         *slog.Logger
	now            func() time.Time
}

func NewTournamentService(
	transactor repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	splitter TeamSplitter,
	generator brackets.FixtureGenerator,
	broadcaster Broadcaster,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		transactor:     transactor,
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		matchRepo:      matchRepo,
		splitter:       splitter,
		generator:      generator,
		broadcaster:    broadcasterOrNoop(broadcaster),
		logger:         loggerOrDefault(logger),
		now:            time.Now,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if input.MatchesPerPlayer < 1 {
		return nil, ErrInvalidMatchesPerPlayer
	}

	seen := make(map[int]bool, len(input.PlayerIDs))
	for _, id := range input.PlayerIDs {
		if seen[id] {
			return nil, fmt.Errorf("%w: player %d", ErrDuplicatePlayers, id)
		}
		seen[id] = true
	}
	if len(input.PlayerIDs) < minTournamentPlayers {
		return nil, ErrNotEnoughPlayers
	}

	players, err := s.playerRepo.GetByIDs(ctx, input.PlayerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament players: %w", err)
	}
	if len(players) != len(input.PlayerIDs) {
		return nil, fmt.Errorf("%w: found %d of %d", ErrUnknownPlayers, len(players), len(input.PlayerIDs))
	}

	split, err := s.splitter.SplitIntoTeams(ctx, players)
	if err != nil {
		if errors.Is(err, ErrTeamSplitFailed) || errors.Is(err, ErrInvalidTeamSplit) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrTeamSplitFailed, err)
	}
	if err := ValidateSplit(players, split); err != nil {
		return nil, err
	}

	seed := s.now().UnixNano()
	if input.Seed != nil {
		seed = *input.Seed
	}

	tournament := &models.Tournament{
		Name:             name,
		Status:           models.StatusActive,
		MatchesPerPlayer: input.MatchesPerPlayer,
		Seed:             seed,
		TeamA:            split.TeamA,
		TeamB:            split.TeamB,
		SplitMethod:      split.Method,
	}

	matches, err := s.generateMatches(ctx, tournament)
	if err != nil {
		return nil, err
	}

	err = s.transactor.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tournamentRepo.Create(ctx, exec, tournament); err != nil {
			return fmt.Errorf("failed to create tournament: %w", err)
		}
		for _, m := range matches {
			m.TournamentID = tournament.ID
		}
		if err := s.matchRepo.CreateBatch(ctx, exec, matches); err != nil {
			return fmt.Errorf("failed to save fixtures: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	tournament.Matches = matches
	s.logger.Info("tournament created",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("players", len(players)),
		slog.Int("matches", len(matches)),
		slog.String("split_method", string(split.Method)),
	)
	publish(s.broadcaster, brackets.LobbyRoom, brackets.EventTournamentCreated, tournament)
	return tournament, nil
}

// generateMatches runs the fixture generator for the tournament's teams and seed.
func (s *tournamentService) generateMatches(ctx context.Context, t *models.Tournament) ([]*models.Match, error) {
	fixtures, err := s.generator.GenerateFixtures(ctx, brackets.GenerateFixturesParams{
		TeamA:            t.TeamA,
		TeamB:            t.TeamB,
		MatchesPerPlayer: t.MatchesPerPlayer,
		Seed:             t.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate fixtures with %s generator: %w", s.generator.GetName(), err)
	}
	if len(fixtures) == 0 {
		return nil, ErrNoFixturesGenerated
	}

	lo, hi := brackets.ParticipationSpread(brackets.ParticipationCounts(fixtures), t.Players())
	if hi-lo > 1 {
		s.logger.Warn("fixture participation is unbalanced",
			slog.String("tournament", t.Name),
			slog.Int("min_matches", lo),
			slog.Int("max_matches", hi),
			slog.Int("team_a", len(t.TeamA)),
			slog.Int("team_b", len(t.TeamB)),
		)
	}

	matches := make([]*models.Match, len(fixtures))
	for i, f := range fixtures {
		matches[i] = &models.Match{
			ID:           f.ID,
			TournamentID: t.ID,
			Position:     i + 1,
			TeamA:        []int{f.TeamA[0], f.TeamA[1]},
			TeamB:        []int{f.TeamB[0], f.TeamB[1]},
			Status:       models.MatchStatusPending,
		}
	}
	return matches, nil
}

func (s *tournamentService) getTournament(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	return tournament, nil
}

func (s *tournamentService) GetTournamentDetails(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.getTournament(ctx, id)
	if err != nil {
		return nil, err
	}

	players, matches, err := loadTournamentData(ctx, s.playerRepo, s.matchRepo, tournament)
	if err != nil {
		return nil, err
	}

	tournament.Matches = matches
	tournament.Leaderboard = BuildLeaderboard(players, matches)
	score := ComputeTeamScore(matches)
	tournament.TeamScore = &score
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter ListTournamentsInput) ([]models.Tournament, error) {
	limit := filter.Limit
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	tournaments, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{
		Status: filter.Status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	if tournaments == nil {
		return []models.Tournament{}, nil
	}
	return tournaments, nil
}

// RegenerateFixtures replaces the schedule with a freshly generated one.
// Allowed only for active tournaments with no recorded scores.
func (s *tournamentService) RegenerateFixtures(ctx context.Context, id int, input RegenerateFixturesInput) (*models.Tournament, error) {
	tournament, err := s.getTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.StatusActive {
		return nil, ErrTournamentNotActive
	}

	existing, err := s.matchRepo.ListByTournament(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches of tournament %d: %w", id, err)
	}
	for _, m := range existing {
		if m.IsCompleted() {
			return nil, ErrTournamentHasResults
		}
	}

	seed := s.now().UnixNano()
	if input.Seed != nil {
		seed = *input.Seed
	}
	tournament.Seed = seed

	matches, err := s.generateMatches(ctx, tournament)
	if err != nil {
		return nil, err
	}

	err = s.transactor.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.DeleteByTournament(ctx, exec, id); err != nil {
			return fmt.Errorf("failed to delete old fixtures: %w", err)
		}
		if err := s.tournamentRepo.UpdateSeed(ctx, exec, id, seed); err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return fmt.Errorf("failed to update tournament seed: %w", err)
		}
		if err := s.matchRepo.CreateBatch(ctx, exec, matches); err != nil {
			return fmt.Errorf("failed to save fixtures: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	tournament.Matches = matches
	s.logger.Info("fixtures regenerated", slog.Int("tournament_id", id), slog.Int("matches", len(matches)))
	publish(s.broadcaster, brackets.TournamentRoom(id), brackets.EventFixturesRegenerated, tournament)
	return tournament, nil
}

func (s *tournamentService) CompleteTournament(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.getTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.StatusActive {
		return nil, ErrTournamentNotActive
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, models.StatusCompleted); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to complete tournament %d: %w", id, err)
	}
	tournament.Status = models.StatusCompleted

	s.logger.Info("tournament completed manually", slog.Int("tournament_id", id))
	publish(s.broadcaster, brackets.TournamentRoom(id), brackets.EventTournamentCompleted, tournament)
	publish(s.broadcaster, brackets.LobbyRoom, brackets.EventTournamentCompleted, tournament)
	return tournament, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, id int) error {
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to delete tournament %d: %w", id, err)
	}

	payload := map[string]int{"tournament_id": id}
	publish(s.broadcaster, brackets.TournamentRoom(id), brackets.EventTournamentDeleted, payload)
	publish(s.broadcaster, brackets.LobbyRoom, brackets.EventTournamentDeleted, payload)
	return nil
}
