package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tabletop-tournaments/models"
)

var (
	ErrRoundNotFound = errors.New("round not found")
	ErrRoundInUse    = errors.New("round has games")
)

type RoundRepository interface {
	Create(ctx context.Context, exec SQLExecutor, round *models.Round) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Round, error)
	GetByOrdering(ctx context.Context, exec SQLExecutor, tournamentID, ordering int) (*models.Round, error)
	UpdateMission(ctx context.Context, exec SQLExecutor, id int, mission string) error
	// DeleteAfter removes rounds with ordering greater than keep.
	DeleteAfter(ctx context.Context, exec SQLExecutor, tournamentID, keep int) error
}

type sqlRoundRepository struct {
	base
}

func NewRoundRepository(db *sql.DB, dialect Dialect) RoundRepository {
	return &sqlRoundRepository{base{db: db, dialect: dialect}}
}

func (r *sqlRoundRepository) Create(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	executor := r.getExecutor(exec)
	query := r.q(`
		INSERT INTO rounds (tournament_id, ordering, mission)
		VALUES ($1, $2, $3)
		RETURNING id`)
	if err := executor.QueryRowContext(ctx, query, round.TournamentID, round.Ordering, round.Mission).Scan(&round.ID); err != nil {
		return fmt.Errorf("failed to insert round %d for tournament %d: %w", round.Ordering, round.TournamentID, err)
	}
	return nil
}

func (r *sqlRoundRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Round, error) {
	executor := r.getExecutor(exec)
	query := r.q(`
		SELECT id, tournament_id, ordering, mission
		FROM rounds
		WHERE tournament_id = $1
		ORDER BY ordering ASC`)

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	rounds := make([]models.Round, 0)
	for rows.Next() {
		var round models.Round
		if err := rows.Scan(&round.ID, &round.TournamentID, &round.Ordering, &round.Mission); err != nil {
			return nil, fmt.Errorf("failed to scan round row: %w", err)
		}
		rounds = append(rounds, round)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during round rows iteration: %w", err)
	}
	return rounds, nil
}

func (r *sqlRoundRepository) GetByOrdering(ctx context.Context, exec SQLExecutor, tournamentID, ordering int) (*models.Round, error) {
	executor := r.getExecutor(exec)
	query := r.q(`
		SELECT id, tournament_id, ordering, mission
		FROM rounds
		WHERE tournament_id = $1 AND ordering = $2`)

	var round models.Round
	err := executor.QueryRowContext(ctx, query, tournamentID, ordering).Scan(&round.ID, &round.TournamentID, &round.Ordering, &round.Mission)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to get round %d of tournament %d: %w", ordering, tournamentID, err)
	}
	return &round, nil
}

func (r *sqlRoundRepository) UpdateMission(ctx context.Context, exec SQLExecutor, id int, mission string) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, r.q(`UPDATE rounds SET mission = $1 WHERE id = $2`), mission, id)
	if err != nil {
		return fmt.Errorf("failed to update mission of round %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *sqlRoundRepository) DeleteAfter(ctx context.Context, exec SQLExecutor, tournamentID, keep int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, r.q(`DELETE FROM rounds WHERE tournament_id = $1 AND ordering > $2`), tournamentID, keep)
	if err != nil {
		if kind, _ := classifyConstraint(err); kind == constraintForeignKey {
			return ErrRoundInUse
		}
		return fmt.Errorf("failed to delete rounds after %d for tournament %d: %w", keep, tournamentID, err)
	}
	return nil
}
