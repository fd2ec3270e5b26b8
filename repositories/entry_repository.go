package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tabletop-tournaments/models"
)

var (
	ErrEntryNotFound    = errors.New("entry not found")
	ErrEntryConflict    = errors.New("player already entered in this tournament")
	ErrEntryUserInvalid = errors.New("entry user reference invalid")
)

type EntryRepository interface {
	Create(ctx context.Context, exec SQLExecutor, entry *models.Entry) error
	// GetByID only finds entries of the given tournament.
	GetByID(ctx context.Context, exec SQLExecutor, tournamentID, id int) (*models.Entry, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Entry, error)
}

type sqlEntryRepository struct {
	base
}

func NewEntryRepository(db *sql.DB, dialect Dialect) EntryRepository {
	return &sqlEntryRepository{base{db: db, dialect: dialect}}
}

func (r *sqlEntryRepository) Create(ctx context.Context, exec SQLExecutor, e *models.Entry) error {
	executor := r.getExecutor(exec)
	query := r.q(`
		INSERT INTO entries (tournament_id, user_id)
		VALUES ($1, $2)
		RETURNING id`)

	err := executor.QueryRowContext(ctx, query, e.TournamentID, e.UserID).Scan(&e.ID)
	if err != nil {
		switch kind, constraint := classifyConstraint(err); kind {
		case constraintUnique:
			return ErrEntryConflict
		case constraintForeignKey:
			if constraint == "" || constraint == "entries_user_id_fkey" {
				return ErrEntryUserInvalid
			}
		}
		return fmt.Errorf("failed to insert entry for user %d: %w", e.UserID, err)
	}
	return nil
}

func (r *sqlEntryRepository) GetByID(ctx context.Context, exec SQLExecutor, tournamentID, id int) (*models.Entry, error) {
	executor := r.getExecutor(exec)
	query := r.q(`
		SELECT e.id, e.tournament_id, e.user_id, u.username
		FROM entries e
		JOIN users u ON u.id = e.user_id
		WHERE e.tournament_id = $1 AND e.id = $2`)

	var e models.Entry
	err := executor.QueryRowContext(ctx, query, tournamentID, id).Scan(&e.ID, &e.TournamentID, &e.UserID, &e.PlayerUsername)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get entry %d: %w", id, err)
	}
	return &e, nil
}

func (r *sqlEntryRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Entry, error) {
	executor := r.getExecutor(exec)
	query := r.q(`
		SELECT e.id, e.tournament_id, e.user_id, u.username
		FROM entries e
		JOIN users u ON u.id = e.user_id
		WHERE e.tournament_id = $1
		ORDER BY e.id ASC`)

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	entries := make([]models.Entry, 0)
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.ID, &e.TournamentID, &e.UserID, &e.PlayerUsername); err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during entry rows iteration: %w", err)
	}
	return entries, nil
}
