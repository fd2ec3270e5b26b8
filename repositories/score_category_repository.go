package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tabletop-tournaments/models"
)

var (
	ErrScoreCategoryNotFound = errors.New("score category not found")
	ErrScoreCategoryConflict = errors.New("score category name already used in tournament")
	ErrScoreCategoryInUse    = errors.New("score category has recorded scores")
)

const scoreCategoryColumns = `id, tournament_id, name, percentage, per_tournament, min_val, max_val, opponent_score, zero_sum`

type ScoreCategoryRepository interface {
	Create(ctx context.Context, exec SQLExecutor, category *models.ScoreCategory) error
	Update(ctx context.Context, exec SQLExecutor, category *models.ScoreCategory) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	GetByName(ctx context.Context, exec SQLExecutor, tournamentID int, name string) (*models.ScoreCategory, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.ScoreCategory, error)
	CountPerGame(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	HasScores(ctx context.Context, exec SQLExecutor, id int) (bool, error)
}

type sqlScoreCategoryRepository struct {
	base
}

func NewScoreCategoryRepository(db *sql.DB, dialect Dialect) ScoreCategoryRepository {
	return &sqlScoreCategoryRepository{base{db: db, dialect: dialect}}
}

func (r *sqlScoreCategoryRepository) Create(ctx context.Context, exec SQLExecutor, c *models.ScoreCategory) error {
	executor := r.getExecutor(exec)
	query := r.q(`
		INSERT INTO score_categories
			(tournament_id, name, percentage, per_tournament, min_val, max_val, opponent_score, zero_sum)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`)

	err := executor.QueryRowContext(ctx, query,
		c.TournamentID, c.Name, c.Percentage, c.PerTournament,
		c.MinVal, c.MaxVal, c.OpponentScore, c.ZeroSum,
	).Scan(&c.ID)
	if err != nil {
		if kind, _ := classifyConstraint(err); kind == constraintUnique {
			return ErrScoreCategoryConflict
		}
		return fmt.Errorf("failed to insert score category %q: %w", c.Name, err)
	}
	return nil
}

func (r *sqlScoreCategoryRepository) Update(ctx context.Context, exec SQLExecutor, c *models.ScoreCategory) error {
	executor := r.getExecutor(exec)
	query := r.q(`
		UPDATE score_categories
		SET percentage = $1, per_tournament = $2, min_val = $3, max_val = $4, opponent_score = $5, zero_sum = $6
		WHERE id = $7`)

	result, err := executor.ExecContext(ctx, query,
		c.Percentage, c.PerTournament, c.MinVal, c.MaxVal, c.OpponentScore, c.ZeroSum, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update score category %d: %w", c.ID, err)
	}
	return checkAffectedRows(result, ErrScoreCategoryNotFound)
}

func (r *sqlScoreCategoryRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, r.q(`DELETE FROM score_categories WHERE id = $1`), id)
	if err != nil {
		if kind, _ := classifyConstraint(err); kind == constraintForeignKey {
			return ErrScoreCategoryInUse
		}
		return fmt.Errorf("failed to delete score category %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrScoreCategoryNotFound)
}

func (r *sqlScoreCategoryRepository) GetByName(ctx context.Context, exec SQLExecutor, tournamentID int, name string) (*models.ScoreCategory, error) {
	executor := r.getExecutor(exec)
	query := r.q(`SELECT ` + scoreCategoryColumns + ` FROM score_categories WHERE tournament_id = $1 AND name = $2`)

	c, err := scanScoreCategory(executor.QueryRowContext(ctx, query, tournamentID, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScoreCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get score category %q: %w", name, err)
	}
	return c, nil
}

func (r *sqlScoreCategoryRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.ScoreCategory, error) {
	executor := r.getExecutor(exec)
	query := r.q(`SELECT ` + scoreCategoryColumns + ` FROM score_categories WHERE tournament_id = $1 ORDER BY id ASC`)

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query score categories for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	categories := make([]models.ScoreCategory, 0)
	for rows.Next() {
		c, err := scanScoreCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan score category row: %w", err)
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during score category rows iteration: %w", err)
	}
	return categories, nil
}

func (r *sqlScoreCategoryRepository) CountPerGame(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	query := r.q(`SELECT COUNT(*) FROM score_categories WHERE tournament_id = $1 AND per_tournament = FALSE`)

	var count int
	if err := executor.QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count per-game categories for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

func (r *sqlScoreCategoryRepository) HasScores(ctx context.Context, exec SQLExecutor, id int) (bool, error) {
	executor := r.getExecutor(exec)
	query := r.q(`SELECT EXISTS (SELECT 1 FROM scores WHERE score_category_id = $1)`)

	var exists bool
	if err := executor.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check scores of category %d: %w", id, err)
	}
	return exists, nil
}

func scanScoreCategory(row interface{ Scan(...interface{}) error }) (*models.ScoreCategory, error) {
	var c models.ScoreCategory
	err := row.Scan(
		&c.ID,
		&c.TournamentID,
		&c.Name,
		&c.Percentage,
		&c.PerTournament,
		&c.MinVal,
		&c.MaxVal,
		&c.OpponentScore,
		&c.ZeroSum,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
