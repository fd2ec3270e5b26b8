package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/tabletop-tournaments/models"
)

var (
	ErrGameNotFound       = errors.New("game not found")
	ErrGameTableConflict  = errors.New("table already used in this round")
	ErrGameEntrantInvalid = errors.New("game entrant conflict or invalid")
	ErrGameRoundInvalid   = errors.New("game round reference invalid")
)

type GameRepository interface {
	Create(ctx context.Context, exec SQLExecutor, game *models.Game) error
	// GetByID only finds games of the given tournament.
	GetByID(ctx context.Context, exec SQLExecutor, tournamentID, id int) (*models.Game, error)
	// Lock holds the game row until the surrounding transaction ends.
	Lock(ctx context.Context, exec SQLExecutor, tournamentID, id int) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, roundFilter *int) ([]*models.Game, error)
	// ListPendingWithScores pages unlatched games that have scores by id, after afterID.
	ListPendingWithScores(ctx context.Context, afterID, limit int) ([]*models.Game, error)
	EntrantsInRound(ctx context.Context, exec SQLExecutor, roundID int) ([]int, error)
	// MarkScoreEntered latches score_entered and reports whether this call flipped it.
	MarkScoreEntered(ctx context.Context, exec SQLExecutor, id int) (bool, error)
}

type sqlGameRepository struct {
	base
}

func NewGameRepository(db *sql.DB, dialect Dialect) GameRepository {
	return &sqlGameRepository{base{db: db, dialect: dialect}}
}

func (r *sqlGameRepository) Create(ctx context.Context, exec SQLExecutor, g *models.Game) error {
	executor := r.getExecutor(exec)
	query := r.q(`
		INSERT INTO games (tournament_id, round_id, table_number, score_entered)
		VALUES ($1, $2, $3, $4)
		RETURNING id`)

	err := executor.QueryRowContext(ctx, query, g.TournamentID, g.RoundID, g.TableNumber, g.ScoreEntered).Scan(&g.ID)
	if err != nil {
		return r.handleGameError(err)
	}

	insertEntrant := r.q(`INSERT INTO game_entrants (game_id, entry_id, position) VALUES ($1, $2, $3)`)
	for i, entryID := range g.EntrantIDs {
		if _, err := executor.ExecContext(ctx, insertEntrant, g.ID, entryID, i+1); err != nil {
			if kind, _ := classifyConstraint(err); kind != constraintNone {
				return fmt.Errorf("%w: entry %d", ErrGameEntrantInvalid, entryID)
			}
			return fmt.Errorf("failed to insert entrant %d for game %d: %w", entryID, g.ID, err)
		}
	}
	return nil
}

func (r *sqlGameRepository) GetByID(ctx context.Context, exec SQLExecutor, tournamentID, id int) (*models.Game, error) {
	executor := r.getExecutor(exec)
	query := r.q(`
		SELECT g.id, g.tournament_id, g.round_id, rd.ordering, g.table_number, g.score_entered
		FROM games g
		JOIN rounds rd ON rd.id = g.round_id
		WHERE g.tournament_id = $1 AND g.id = $2`)

	game, err := scanGame(executor.QueryRowContext(ctx, query, tournamentID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game %d: %w", id, err)
	}

	entrants, err := r.loadEntrants(ctx, executor, []int{game.ID})
	if err != nil {
		return nil, err
	}
	game.EntrantIDs = entrants[game.ID]
	return game, nil
}

func (r *sqlGameRepository) Lock(ctx context.Context, exec SQLExecutor, tournamentID, id int) error {
	executor := r.getExecutor(exec)
	query := r.q(`SELECT id FROM games WHERE tournament_id = $1 AND id = $2` + r.dialect.LockClause())

	var lockedID int
	if err := executor.QueryRowContext(ctx, query, tournamentID, id).Scan(&lockedID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrGameNotFound
		}
		return fmt.Errorf("failed to lock game %d: %w", id, err)
	}
	return nil
}

func (r *sqlGameRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, roundFilter *int) ([]*models.Game, error) {
	executor := r.getExecutor(exec)
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT g.id, g.tournament_id, g.round_id, rd.ordering, g.table_number, g.score_entered
		FROM games g
		JOIN rounds rd ON rd.id = g.round_id
		WHERE g.tournament_id = $1`)

	args := []interface{}{tournamentID}
	if roundFilter != nil {
		queryBuilder.WriteString(" AND rd.ordering = $2")
		args = append(args, *roundFilter)
	}
	queryBuilder.WriteString(" ORDER BY rd.ordering ASC, g.table_number ASC")

	return r.listGames(ctx, executor, r.q(queryBuilder.String()), args...)
}

func (r *sqlGameRepository) ListPendingWithScores(ctx context.Context, afterID, limit int) ([]*models.Game, error) {
	query := r.q(`
		SELECT g.id, g.tournament_id, g.round_id, rd.ordering, g.table_number, g.score_entered
		FROM games g
		JOIN rounds rd ON rd.id = g.round_id
		WHERE g.id > $1
		  AND g.score_entered = FALSE
		  AND EXISTS (SELECT 1 FROM game_scores gs WHERE gs.game_id = g.id)
		ORDER BY g.id ASC
		LIMIT $2`)
	return r.listGames(ctx, r.db, query, afterID, limit)
}

func (r *sqlGameRepository) EntrantsInRound(ctx context.Context, exec SQLExecutor, roundID int) ([]int, error) {
	executor := r.getExecutor(exec)
	query := r.q(`
		SELECT ge.entry_id
		FROM game_entrants ge
		JOIN games g ON g.id = ge.game_id
		WHERE g.round_id = $1`)

	rows, err := executor.QueryContext(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entrants of round %d: %w", roundID, err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan round entrant: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *sqlGameRepository) MarkScoreEntered(ctx context.Context, exec SQLExecutor, id int) (bool, error) {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, r.q(`UPDATE games SET score_entered = TRUE WHERE id = $1 AND score_entered = FALSE`), id)
	if err != nil {
		return false, fmt.Errorf("failed to mark game %d as scored: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return affected > 0, nil
}

func (r *sqlGameRepository) listGames(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]*models.Game, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	games := make([]*models.Game, 0)
	ids := make([]int, 0)
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, game)
		ids = append(ids, game.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during game rows iteration: %w", err)
	}
	// rows must be drained before the next query on a single-connection pool
	rows.Close()

	entrants, err := r.loadEntrants(ctx, executor, ids)
	if err != nil {
		return nil, err
	}
	for _, game := range games {
		game.EntrantIDs = entrants[game.ID]
	}
	return games, nil
}

// loadEntrants builds the game id -> ordered entrant ids index.
func (r *sqlGameRepository) loadEntrants(ctx context.Context, executor SQLExecutor, gameIDs []int) (map[int][]int, error) {
	result := make(map[int][]int, len(gameIDs))
	if len(gameIDs) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(gameIDs))
	args := make([]interface{}, len(gameIDs))
	for i, id := range gameIDs {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = id
	}
	query := r.q(`
		SELECT game_id, entry_id
		FROM game_entrants
		WHERE game_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY game_id ASC, position ASC`)

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query game entrants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var gameID, entryID int
		if err := rows.Scan(&gameID, &entryID); err != nil {
			return nil, fmt.Errorf("failed to scan game entrant: %w", err)
		}
		result[gameID] = append(result[gameID], entryID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during game entrant rows iteration: %w", err)
	}
	for _, id := range gameIDs {
		if result[id] == nil {
			result[id] = []int{}
		}
	}
	return result, nil
}

func (r *sqlGameRepository) handleGameError(err error) error {
	switch kind, constraint := classifyConstraint(err); kind {
	case constraintUnique:
		return ErrGameTableConflict
	case constraintForeignKey:
		if constraint == "" || constraint == "games_round_id_fkey" {
			return ErrGameRoundInvalid
		}
	}
	return fmt.Errorf("failed to insert game: %w", err)
}

func scanGame(row interface{ Scan(...interface{}) error }) (*models.Game, error) {
	var g models.Game
	if err := row.Scan(&g.ID, &g.TournamentID, &g.RoundID, &g.RoundNumber, &g.TableNumber, &g.ScoreEntered); err != nil {
		return nil, err
	}
	return &g, nil
}
