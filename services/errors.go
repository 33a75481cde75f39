package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")

	// Игроки
	ErrPlayerNotFound      = errors.New("player not found")
	ErrPlayerNameRequired  = errors.New("player name is required")
	ErrPlayerNameConflict  = errors.New("player name is already in use")
	ErrPlayerInvalidSkill  = errors.New("player skill level must be between 1 and 10")
	ErrPlayerInUse         = errors.New("player cannot be deleted while part of a tournament")
	ErrUploadsDisabled     = errors.New("file uploads are not configured")
	ErrInvalidAvatarFormat = errors.New("unsupported avatar format")

	// Турниры
	ErrTournamentNotFound      = errors.New("tournament not found")
	ErrTournamentNameRequired  = errors.New("tournament name is required")
	ErrInvalidMatchesPerPlayer = errors.New("matches per player must be at least 1")
	ErrNotEnoughPlayers        = errors.New("at least 4 players are required for doubles")
	ErrDuplicatePlayers        = errors.New("player list contains duplicates")
	ErrUnknownPlayers          = errors.New("player list references unknown players")
	ErrTeamSplitFailed         = errors.New("failed to split players into teams")
	ErrInvalidTeamSplit        = errors.New("team split is invalid")
	ErrNoFixturesGenerated     = errors.New("no fixtures could be generated for these teams")
	ErrTournamentNotActive     = errors.New("tournament is already completed")
	ErrTournamentHasResults    = errors.New("fixtures cannot be regenerated once scores are recorded")

	// Матчи
	ErrMatchNotFound = errors.New("match not found")
	ErrInvalidScore  = errors.New("scores must be non-negative and not tied")

	// Аутентификация
	ErrAuthInvalidCredentials = errors.New("invalid username or password")
	ErrAuthenticationFailed   = errors.New("authentication failed")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
)
