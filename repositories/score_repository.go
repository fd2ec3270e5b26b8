package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tabletop-tournaments/models"
)

var (
	ErrScoreNotFound     = errors.New("score not found")
	ErrScoreKeyConflict  = errors.New("score already recorded for this entry, category and game or tournament")
	ErrScoreEntryInvalid = errors.New("score entry reference invalid")
)

type ScoreRepository interface {
	// FindByKey returns the score stored in the slot described by key.
	FindByKey(ctx context.Context, exec SQLExecutor, key models.ScoreKey) (*models.Score, error)
	// Create inserts the score row and its game or tournament link. Run it
	// inside a transaction so both rows land together.
	Create(ctx context.Context, exec SQLExecutor, key models.ScoreKey, value int) (*models.Score, error)
	SumOpponentScores(ctx context.Context, exec SQLExecutor, gameID, categoryID, excludeEntryID int) (int, error)
	CountGameScores(ctx context.Context, exec SQLExecutor, gameID int) (int, error)
	ListByGame(ctx context.Context, exec SQLExecutor, gameID int) ([]models.Score, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Score, error)
}

type sqlScoreRepository struct {
	base
}

func NewScoreRepository(db *sql.DB, dialect Dialect) ScoreRepository {
	return &sqlScoreRepository{base{db: db, dialect: dialect}}
}

func (r *sqlScoreRepository) FindByKey(ctx context.Context, exec SQLExecutor, key models.ScoreKey) (*models.Score, error) {
	executor := r.getExecutor(exec)

	var row *sql.Row
	if key.PerGame() {
		row = executor.QueryRowContext(ctx, r.q(`
			SELECT s.id, s.entry_id, s.score_category_id, s.value
			FROM game_scores gs
			JOIN scores s ON s.id = gs.score_id
			WHERE gs.entry_id = $1 AND gs.game_id = $2 AND gs.score_category_id = $3`),
			key.EntryID, *key.GameID, key.CategoryID)
	} else {
		row = executor.QueryRowContext(ctx, r.q(`
			SELECT s.id, s.entry_id, s.score_category_id, s.value
			FROM tournament_scores ts
			JOIN scores s ON s.id = ts.score_id
			WHERE ts.entry_id = $1 AND ts.tournament_id = $2 AND ts.score_category_id = $3`),
			key.EntryID, key.TournamentID, key.CategoryID)
	}

	var s models.Score
	if err := row.Scan(&s.ID, &s.EntryID, &s.ScoreCategoryID, &s.Value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScoreNotFound
		}
		return nil, fmt.Errorf("failed to find score for entry %d: %w", key.EntryID, err)
	}
	r.attachKey(&s, key)
	return &s, nil
}

func (r *sqlScoreRepository) Create(ctx context.Context, exec SQLExecutor, key models.ScoreKey, value int) (*models.Score, error) {
	executor := r.getExecutor(exec)

	s := &models.Score{EntryID: key.EntryID, ScoreCategoryID: key.CategoryID, Value: value}
	err := executor.QueryRowContext(ctx, r.q(`
		INSERT INTO scores (entry_id, score_category_id, value)
		VALUES ($1, $2, $3)
		RETURNING id`),
		key.EntryID, key.CategoryID, value,
	).Scan(&s.ID)
	if err != nil {
		return nil, r.handleScoreError(err)
	}

	if key.PerGame() {
		_, err = executor.ExecContext(ctx, r.q(`
			INSERT INTO game_scores (entry_id, game_id, score_category_id, score_id)
			VALUES ($1, $2, $3, $4)`),
			key.EntryID, *key.GameID, key.CategoryID, s.ID)
	} else {
		_, err = executor.ExecContext(ctx, r.q(`
			INSERT INTO tournament_scores (entry_id, tournament_id, score_category_id, score_id)
			VALUES ($1, $2, $3, $4)`),
			key.EntryID, key.TournamentID, key.CategoryID, s.ID)
	}
	if err != nil {
		return nil, r.handleScoreError(err)
	}

	r.attachKey(s, key)
	return s, nil
}

func (r *sqlScoreRepository) SumOpponentScores(ctx context.Context, exec SQLExecutor, gameID, categoryID, excludeEntryID int) (int, error) {
	executor := r.getExecutor(exec)
	query := r.q(`
		SELECT COALESCE(SUM(s.value), 0)
		FROM game_scores gs
		JOIN scores s ON s.id = gs.score_id
		WHERE gs.game_id = $1 AND gs.score_category_id = $2 AND gs.entry_id <> $3`)

	var sum int
	if err := executor.QueryRowContext(ctx, query, gameID, categoryID, excludeEntryID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum scores for game %d: %w", gameID, err)
	}
	return sum, nil
}

func (r *sqlScoreRepository) CountGameScores(ctx context.Context, exec SQLExecutor, gameID int) (int, error) {
	executor := r.getExecutor(exec)

	var count int
	if err := executor.QueryRowContext(ctx, r.q(`SELECT COUNT(*) FROM game_scores WHERE game_id = $1`), gameID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count scores for game %d: %w", gameID, err)
	}
	return count, nil
}

func (r *sqlScoreRepository) ListByGame(ctx context.Context, exec SQLExecutor, gameID int) ([]models.Score, error) {
	executor := r.getExecutor(exec)
	query := r.q(`
		SELECT s.id, s.entry_id, s.score_category_id, s.value, c.name, gs.game_id, NULL
		FROM game_scores gs
		JOIN scores s ON s.id = gs.score_id
		JOIN score_categories c ON c.id = s.score_category_id
		WHERE gs.game_id = $1
		ORDER BY s.id ASC`)
	return r.listScores(ctx, executor, query, gameID)
}

func (r *sqlScoreRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Score, error) {
	executor := r.getExecutor(exec)
	query := r.q(`
		SELECT s.id, s.entry_id, s.score_category_id, s.value, c.name, gs.game_id, ts.tournament_id
		FROM scores s
		JOIN score_categories c ON c.id = s.score_category_id
		LEFT JOIN game_scores gs ON gs.score_id = s.id
		LEFT JOIN tournament_scores ts ON ts.score_id = s.id
		WHERE c.tournament_id = $1
		ORDER BY s.id ASC`)
	return r.listScores(ctx, executor, query, tournamentID)
}

func (r *sqlScoreRepository) listScores(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]models.Score, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	scores := make([]models.Score, 0)
	for rows.Next() {
		var s models.Score
		var gameID, tournamentID sql.NullInt64
		if err := rows.Scan(&s.ID, &s.EntryID, &s.ScoreCategoryID, &s.Value, &s.CategoryName, &gameID, &tournamentID); err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		if gameID.Valid {
			id := int(gameID.Int64)
			s.GameID = &id
		}
		if tournamentID.Valid {
			id := int(tournamentID.Int64)
			s.TournamentID = &id
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during score rows iteration: %w", err)
	}
	return scores, nil
}

func (r *sqlScoreRepository) attachKey(s *models.Score, key models.ScoreKey) {
	if key.PerGame() {
		gameID := *key.GameID
		s.GameID = &gameID
		return
	}
	tournamentID := key.TournamentID
	s.TournamentID = &tournamentID
}

func (r *sqlScoreRepository) handleScoreError(err error) error {
	switch kind, constraint := classifyConstraint(err); kind {
	case constraintUnique:
		return ErrScoreKeyConflict
	case constraintForeignKey:
		// sqlite does not name the violated key; the category and game were
		// resolved in the same transaction, so the entry is the missing row.
		switch constraint {
		case "", "scores_entry_id_fkey", "game_scores_entry_id_fkey", "tournament_scores_entry_id_fkey":
			return ErrScoreEntryInvalid
		}
	}
	return fmt.Errorf("failed to insert score: %w", err)
}
