package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/badminton-doubles/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
)

type MatchRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	GetByID(ctx context.Context, id string) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	ListCompleted(ctx context.Context) ([]*models.Match, error)
	UpdateScore(ctx context.Context, exec SQLExecutor, match *models.Match) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
	CountPending(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	Count(ctx context.Context, status *models.MatchStatus) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, tournament_id, position, team_a, team_b, status, score_a, score_b, winner, created_at, updated_at`

func scanMatch(scan func(dest ...interface{}) error) (*models.Match, error) {
	m := &models.Match{}
	var teamA, teamB []int64
	var scoreA, scoreB sql.NullInt64
	var winner sql.NullString
	if err := scan(
		&m.ID, &m.TournamentID, &m.Position, pq.Array(&teamA), pq.Array(&teamB),
		&m.Status, &scoreA, &scoreB, &winner, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	m.TeamA = toInts(teamA)
	m.TeamB = toInts(teamB)
	if scoreA.Valid {
		v := int(scoreA.Int64)
		m.ScoreA = &v
	}
	if scoreB.Valid {
		v := int(scoreB.Int64)
		m.ScoreB = &v
	}
	if winner.Valid {
		w := models.MatchWinner(winner.String)
		m.Winner = &w
	}
	return m, nil
}

// CreateBatch inserts all matches with a single multi-row INSERT.
func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}

	const perRow = 6
	var sb strings.Builder
	sb.WriteString(`INSERT INTO matches (id, tournament_id, position, team_a, team_b, status) VALUES `)
	args := make([]interface{}, 0, len(matches)*perRow)
	for i, m := range matches {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * perRow
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5, base+6)
		args = append(args, m.ID, m.TournamentID, m.Position,
			pq.Array(toInt64s(m.TeamA)), pq.Array(toInt64s(m.TeamB)), m.Status)
	}
	sb.WriteString(` RETURNING id, created_at, updated_at`)

	rows, err := r.getExecutor(exec).QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return handleMatchError(err)
	}
	defer rows.Close()

	byID := make(map[string]*models.Match, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
	}
	for rows.Next() {
		var id string
		var created, updated sql.NullTime
		if err := rows.Scan(&id, &created, &updated); err != nil {
			return err
		}
		if m, ok := byID[id]; ok {
			m.CreatedAt = created.Time
			m.UpdatedAt = updated.Time
		}
	}
	return rows.Err()
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	m, err := scanMatch(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		// Невалидный UUID приходит как ошибка синтаксиса, для клиента это тот же "не найден".
		if code, _, ok := pqErrorCode(err); ok && code == "22P02" {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1 ORDER BY position ASC`
	return r.list(ctx, query, tournamentID)
}

func (r *postgresMatchRepository) ListCompleted(ctx context.Context) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE status = $1 ORDER BY tournament_id, position`
	return r.list(ctx, query, models.MatchStatusCompleted)
}

func (r *postgresMatchRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows.Scan)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateScore(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		UPDATE matches
		SET score_a = $1, score_b = $2, winner = $3, status = $4, updated_at = now()
		WHERE id = $5
		RETURNING updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query, m.ScoreA, m.ScoreB, m.Winner, m.Status, m.ID).Scan(&m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMatchNotFound
		}
		return handleMatchError(err)
	}
	return nil
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	_, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = $1`, tournamentID)
	return err
}

func (r *postgresMatchRepository) CountPending(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM matches WHERE tournament_id = $1 AND status = $2`
	err := r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, models.MatchStatusPending).Scan(&n)
	return n, err
}

func (r *postgresMatchRepository) Count(ctx context.Context, status *models.MatchStatus) (int, error) {
	var n int
	var err error
	if status == nil {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches`).Scan(&n)
	} else {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches WHERE status = $1`, *status).Scan(&n)
	}
	return n, err
}

func handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if code, _, ok := pqErrorCode(err); ok && code == pqForeignKeyViolation {
		return ErrMatchTournamentInvalid
	}
	return err
}
