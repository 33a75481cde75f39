package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/badminton-doubles/models"
	"github.com/lib/pq"
)

var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrPlayerNameConflict = errors.New("player name conflict")
	ErrPlayerInUse        = errors.New("player cannot be deleted as they are part of a tournament")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	GetByIDs(ctx context.Context, ids []int) ([]models.Player, error)
	List(ctx context.Context) ([]models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	UpdateAvatarKey(ctx context.Context, id int, avatarKey *string) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `INSERT INTO players (name, skill_level) VALUES ($1, $2) RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, player.Name, player.SkillLevel).Scan(&player.ID, &player.CreatedAt)
	return handlePlayerError(err)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT id, name, skill_level, avatar_key, created_at FROM players WHERE id = $1`

	var p models.Player
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.SkillLevel, &p.AvatarKey, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByIDs returns the players that exist among ids, ordered by id.
func (r *postgresPlayerRepository) GetByIDs(ctx context.Context, ids []int) ([]models.Player, error) {
	query := `
		SELECT id, name, skill_level, avatar_key, created_at
		FROM players
		WHERE id = ANY($1)
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(toInt64s(ids)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPlayers(rows)
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]models.Player, error) {
	query := `SELECT id, name, skill_level, avatar_key, created_at FROM players ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPlayers(rows)
}

func scanPlayers(rows *sql.Rows) ([]models.Player, error) {
	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.SkillLevel, &p.AvatarKey, &p.CreatedAt); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *postgresPlayerRepository) Update(ctx context.Context, player *models.Player) error {
	query := `UPDATE players SET name = $1, skill_level = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, player.Name, player.SkillLevel, player.ID)
	if err != nil {
		return handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdateAvatarKey(ctx context.Context, id int, avatarKey *string) error {
	query := `UPDATE players SET avatar_key = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, avatarKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id int) error {
	// Ссылки на игроков хранятся в массивах, поэтому FK тут не поможет.
	var inUse bool
	checkQuery := `SELECT EXISTS (SELECT 1 FROM tournaments WHERE $1 = ANY(team_a) OR $1 = ANY(team_b))`
	if err := r.db.QueryRowContext(ctx, checkQuery, id).Scan(&inUse); err != nil {
		return err
	}
	if inUse {
		return ErrPlayerInUse
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&n)
	return n, err
}

func handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	if code, constraint, ok := pqErrorCode(err); ok && code == pqUniqueViolation && constraint == "players_name_key" {
		return ErrPlayerNameConflict
	}
	return err
}
