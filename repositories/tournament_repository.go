package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tabletop-tournaments/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name conflict")
	ErrTournamentInvalidOrg   = errors.New("invalid creator reference")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByName(ctx context.Context, exec SQLExecutor, name string) (*models.Tournament, error)
	List(ctx context.Context) ([]models.Tournament, error)
	UpdateNumRounds(ctx context.Context, exec SQLExecutor, id int, rounds int) error
}

type sqlTournamentRepository struct {
	base
}

func NewTournamentRepository(db *sql.DB, dialect Dialect) TournamentRepository {
	return &sqlTournamentRepository{base{db: db, dialect: dialect}}
}

func (r *sqlTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := r.q(`
		INSERT INTO tournaments (name, date, num_rounds, creator_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`)

	err := executor.QueryRowContext(ctx, query, t.Name, t.Date, t.NumRounds, t.CreatorID).Scan(&t.ID)
	return r.handleTournamentError(err)
}

func (r *sqlTournamentRepository) GetByName(ctx context.Context, exec SQLExecutor, name string) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := r.q(`
		SELECT id, name, date, num_rounds, creator_id
		FROM tournaments
		WHERE name = $1`)

	t := &models.Tournament{}
	err := executor.QueryRowContext(ctx, query, name).Scan(&t.ID, &t.Name, &t.Date, &t.NumRounds, &t.CreatorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %q: %w", name, err)
	}
	return t, nil
}

func (r *sqlTournamentRepository) List(ctx context.Context) ([]models.Tournament, error) {
	query := `SELECT id, name, date, num_rounds, creator_id FROM tournaments ORDER BY date ASC, name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if err := rows.Scan(&t.ID, &t.Name, &t.Date, &t.NumRounds, &t.CreatorID); err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *sqlTournamentRepository) UpdateNumRounds(ctx context.Context, exec SQLExecutor, id int, rounds int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, r.q(`UPDATE tournaments SET num_rounds = $1 WHERE id = $2`), rounds, id)
	if err != nil {
		return fmt.Errorf("failed to update rounds for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *sqlTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	switch kind, constraint := classifyConstraint(err); kind {
	case constraintUnique:
		return ErrTournamentNameConflict
	case constraintForeignKey:
		if constraint == "" || constraint == "tournaments_creator_id_fkey" {
			return ErrTournamentInvalidOrg
		}
	}
	return err
}
