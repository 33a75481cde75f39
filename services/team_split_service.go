package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/Dosada05/badminton-doubles/models"
)

// TeamSplit is the result of dividing a roster into the two tournament sides.
type TeamSplit struct {
	TeamA  []int
	TeamB  []int
	Method models.SplitMethod
}

type TeamSplitter interface {
	SplitIntoTeams(ctx context.Context, players []models.Player) (*TeamSplit, error)
}

// ValidateSplit checks that every player is on exactly one side, both sides
// can field a pair and the sides differ in size by at most one.
func ValidateSplit(players []models.Player, split *TeamSplit) error {
	if split == nil {
		return fmt.Errorf("%w: empty result", ErrInvalidTeamSplit)
	}
	if len(split.TeamA) < 2 || len(split.TeamB) < 2 {
		return fmt.Errorf("%w: each team needs at least 2 players (got %d and %d)", ErrInvalidTeamSplit, len(split.TeamA), len(split.TeamB))
	}
	diff := len(split.TeamA) - len(split.TeamB)
	if diff > 1 || diff < -1 {
		return fmt.Errorf("%w: team sizes %d and %d differ by more than one", ErrInvalidTeamSplit, len(split.TeamA), len(split.TeamB))
	}

	expected := make(map[int]bool, len(players))
	for _, p := range players {
		expected[p.ID] = true
	}
	seen := make(map[int]bool, len(players))
	for _, id := range append(append([]int{}, split.TeamA...), split.TeamB...) {
		if !expected[id] {
			return fmt.Errorf("%w: unknown player %d", ErrInvalidTeamSplit, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: player %d assigned twice", ErrInvalidTeamSplit, id)
		}
		seen[id] = true
	}
	if len(seen) != len(expected) {
		return fmt.Errorf("%w: %d of %d players assigned", ErrInvalidTeamSplit, len(seen), len(expected))
	}
	return nil
}

// RandomTeamSplitter shuffles the roster and gives the first half (rounded up) to team A.
type RandomTeamSplitter struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomTeamSplitter(seed int64) *RandomTeamSplitter {
	return &RandomTeamSplitter{rng: rand.New(rand.NewSource(seed))}
}

func (s *RandomTeamSplitter) SplitIntoTeams(ctx context.Context, players []models.Player) (*TeamSplit, error) {
	if len(players) < 4 {
		return nil, ErrNotEnoughPlayers
	}

	ids := playerIDs(players)
	s.mu.Lock()
	s.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	s.mu.Unlock()

	half := (len(ids) + 1) / 2
	return &TeamSplit{
		TeamA:  append([]int(nil), ids[:half]...),
		TeamB:  append([]int(nil), ids[half:]...),
		Method: models.SplitMethodRandom,
	}, nil
}

// FallbackTeamSplitter asks the primary splitter first and falls back when it
// fails or returns an unusable split.
type FallbackTeamSplitter struct {
	primary  TeamSplitter
	fallback TeamSplitter
	logger   *slog.Logger
}

// NewFallbackTeamSplitter accepts a nil primary; the fallback is then used directly.
func NewFallbackTeamSplitter(primary, fallback TeamSplitter, logger *slog.Logger) *FallbackTeamSplitter {
	return &FallbackTeamSplitter{primary: primary, fallback: fallback, logger: loggerOrDefault(logger)}
}

func (s *FallbackTeamSplitter) SplitIntoTeams(ctx context.Context, players []models.Player) (*TeamSplit, error) {
	if s.primary != nil {
		split, err := s.primary.SplitIntoTeams(ctx, players)
		if err == nil {
			err = ValidateSplit(players, split)
		}
		if err == nil {
			return split, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("primary team split failed, using fallback", slog.Int("players", len(players)), slog.Any("error", err))
	}

	split, err := s.fallback.SplitIntoTeams(ctx, players)
	if err != nil {
		return nil, err
	}
	if err := ValidateSplit(players, split); err != nil {
		return nil, err
	}
	return split, nil
}
