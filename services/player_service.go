package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/badminton-doubles/models"
	"github.com/Dosada05/badminton-doubles/repositories"
	"github.com/Dosada05/badminton-doubles/storage"
)

const (
	minSkillLevel     = 1
	maxSkillLevel     = 10
	defaultSkillLevel = 5
)

type PlayerService interface {
	CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, error)
	GetPlayerByID(ctx context.Context, id int) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]models.Player, error)
	UpdatePlayer(ctx context.Context, id int, input UpdatePlayerInput) (*models.Player, error)
	DeletePlayer(ctx context.Context, id int) error
	UploadAvatar(ctx context.Context, id int, file io.Reader, contentType string) (*models.Player, error)
}

type CreatePlayerInput struct {
	Name       string `json:"name"`
	SkillLevel *int   `json:"skill_level,omitempty"`
}

type UpdatePlayerInput struct {
	Name       *string `json:"name,omitempty"`
	SkillLevel *int    `json:"skill_level,omitempty"`
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
	logger     *slog.Logger
	now        func() time.Time
}

// NewPlayerService builds the roster service. uploader may be nil when
// object storage is not configured; avatar uploads then fail with ErrUploadsDisabled.
func NewPlayerService(playerRepo repositories.PlayerRepository, uploader storage.FileUploader, logger *slog.Logger) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
		uploader:   uploader,
		logger:     loggerOrDefault(logger),
		now:        time.Now,
	}
}

func validateSkillLevel(level int) error {
	if level < minSkillLevel || level > maxSkillLevel {
		return ErrPlayerInvalidSkill
	}
	return nil
}

func (s *playerService) CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}
	skill := defaultSkillLevel
	if input.SkillLevel != nil {
		skill = *input.SkillLevel
	}
	if err := validateSkillLevel(skill); err != nil {
		return nil, err
	}

	player := &models.Player{Name: name, SkillLevel: skill}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerNameConflict) {
			return nil, ErrPlayerNameConflict
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return player, nil
}

func (s *playerService) GetPlayerByID(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player by id %d: %w", id, err)
	}
	populatePlayerAvatarURL(player, s.uploader)
	return player, nil
}

func (s *playerService) ListPlayers(ctx context.Context) ([]models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	if players == nil {
		return []models.Player{}, nil
	}
	for i := range players {
		populatePlayerAvatarURL(&players[i], s.uploader)
	}
	return players, nil
}

func (s *playerService) UpdatePlayer(ctx context.Context, id int, input UpdatePlayerInput) (*models.Player, error) {
	player, err := s.GetPlayerByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrPlayerNameRequired
		}
		player.Name = name
	}
	if input.SkillLevel != nil {
		if err := validateSkillLevel(*input.SkillLevel); err != nil {
			return nil, err
		}
		player.SkillLevel = *input.SkillLevel
	}

	if err := s.playerRepo.Update(ctx, player); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPlayerNotFound):
			return nil, ErrPlayerNotFound
		case errors.Is(err, repositories.ErrPlayerNameConflict):
			return nil, ErrPlayerNameConflict
		default:
			return nil, fmt.Errorf("failed to update player (id: %d): %w", id, err)
		}
	}
	return player, nil
}

func (s *playerService) DeletePlayer(ctx context.Context, id int) error {
	player, err := s.GetPlayerByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.playerRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPlayerNotFound):
			return ErrPlayerNotFound
		case errors.Is(err, repositories.ErrPlayerInUse):
			return ErrPlayerInUse
		default:
			return fmt.Errorf("failed to delete player (id: %d): %w", id, err)
		}
	}

	if player.AvatarKey != nil && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *player.AvatarKey); err != nil {
			s.logger.Warn("failed to delete avatar of removed player", slog.Int("player_id", id), slog.Any("error", err))
		}
	}
	return nil
}

func (s *playerService) UploadAvatar(ctx context.Context, id int, file io.Reader, contentType string) (*models.Player, error) {
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}

	player, err := s.GetPlayerByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key, err := storage.AvatarKey(id, contentType, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAvatarFormat, err)
	}

	uploaded, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar for player %d: %w", id, err)
	}

	previousKey := player.AvatarKey
	if err := s.playerRepo.UpdateAvatarKey(ctx, id, &uploaded.Key); err != nil {
		if delErr := s.uploader.Delete(ctx, uploaded.Key); delErr != nil {
			s.logger.Warn("failed to clean up orphaned avatar", slog.String("key", uploaded.Key), slog.Any("error", delErr))
		}
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to save avatar key for player %d: %w", id, err)
	}

	if previousKey != nil && *previousKey != "" && *previousKey != uploaded.Key {
		if err := s.uploader.Delete(ctx, *previousKey); err != nil {
			s.logger.Warn("failed to delete previous avatar", slog.Int("player_id", id), slog.Any("error", err))
		}
	}

	player.AvatarKey = &uploaded.Key
	player.AvatarURL = nil
	populatePlayerAvatarURL(player, s.uploader)
	return player, nil
}
