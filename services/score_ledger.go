package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tabletop-tournaments/models"
	"github.com/Dosada05/tabletop-tournaments/repositories"
)

type WriteResult struct {
	Score   models.Score `json:"score"`
	Player  string       `json:"player"`
	Created bool         `json:"created"`
	// GameCompleted is set when this write latched the game as fully scored.
	GameCompleted bool   `json:"game_completed"`
	Message       string `json:"message"`
}

// ScoreLedger stores each (entry, category, game-or-tournament) score once.
type ScoreLedger struct {
	scoreRepo    repositories.ScoreRepository
	categoryRepo repositories.ScoreCategoryRepository
	gameRepo     repositories.GameRepository
	logger       *slog.Logger
}

func NewScoreLedger(
	scoreRepo repositories.ScoreRepository,
	categoryRepo repositories.ScoreCategoryRepository,
	gameRepo repositories.GameRepository,
	logger *slog.Logger,
) *ScoreLedger {
	return &ScoreLedger{
		scoreRepo:    scoreRepo,
		categoryRepo: categoryRepo,
		gameRepo:     gameRepo,
		logger:       logger,
	}
}

// Write inserts the score and its link row through exec. Returns an error
// wrapping repositories.ErrScoreKeyConflict when another writer won the key;
// the caller rolls back and calls Reconcile.
func (l *ScoreLedger) Write(ctx context.Context, exec repositories.SQLExecutor, v *ValidatedScore) (*WriteResult, error) {
	sub := v.Submission()
	key := sub.scoreKey()

	existing, err := l.scoreRepo.FindByKey(ctx, exec, key)
	switch {
	case err == nil:
		return l.compare(existing, v)
	case !errors.Is(err, repositories.ErrScoreNotFound):
		return nil, fmt.Errorf("failed to look up existing score: %w", err)
	}

	score, err := l.scoreRepo.Create(ctx, exec, key, v.Value())
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrScoreEntryInvalid):
			return nil, sub.scoreError(ErrEntryNotFound, fmt.Sprint(v.Value()),
				fmt.Sprintf("%d not entered. Entry %d doesn't exist", v.Value(), key.EntryID))
		case errors.Is(err, repositories.ErrScoreKeyConflict):
			return nil, fmt.Errorf("score for entry %d written concurrently: %w", key.EntryID, err)
		}
		return nil, fmt.Errorf("failed to write score: %w", err)
	}
	score.CategoryName = sub.Category().Name

	return &WriteResult{
		Score:   *score,
		Player:  sub.Target().PlayerUsername,
		Created: true,
		Message: successMessage(sub.Target(), v.Value()),
	}, nil
}

// Reconcile re-reads a key after a lost insert race and applies the same
// equal-or-different rule as Write.
func (l *ScoreLedger) Reconcile(ctx context.Context, exec repositories.SQLExecutor, v *ValidatedScore) (*WriteResult, error) {
	existing, err := l.scoreRepo.FindByKey(ctx, exec, v.Submission().scoreKey())
	if err != nil {
		return nil, fmt.Errorf("failed to re-read score after conflict: %w", err)
	}
	return l.compare(existing, v)
}

func (l *ScoreLedger) compare(existing *models.Score, v *ValidatedScore) (*WriteResult, error) {
	sub := v.Submission()
	if existing.Value != v.Value() {
		return nil, sub.scoreError(ErrScoreAlreadySet, fmt.Sprint(v.Value()),
			fmt.Sprintf("%d not entered. Score is already set", v.Value()))
	}
	existing.CategoryName = sub.Category().Name
	return &WriteResult{
		Score:   *existing,
		Player:  sub.Target().PlayerUsername,
		Message: successMessage(sub.Target(), v.Value()),
	}, nil
}

// RefreshGameCompletion recounts the game's per-game scores and latches
// score_entered once every entrant has a score in every per-game category.
// Safe to call repeatedly and concurrently. Returns whether the game is fully
// scored and whether this call set the flag.
func (l *ScoreLedger) RefreshGameCompletion(ctx context.Context, exec repositories.SQLExecutor, tournamentID, gameID int) (complete bool, latched bool, err error) {
	game, err := l.gameRepo.GetByID(ctx, exec, tournamentID, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return false, false, fmt.Errorf("%w: %d", ErrGameNotFound, gameID)
		}
		return false, false, err
	}
	if game.ScoreEntered {
		return true, false, nil
	}

	perGame, err := l.categoryRepo.CountPerGame(ctx, exec, tournamentID)
	if err != nil {
		return false, false, err
	}
	if perGame <= 0 {
		return false, false, fmt.Errorf("%w: tournament %d", ErrNoPerGameCategories, tournamentID)
	}

	recorded, err := l.scoreRepo.CountGameScores(ctx, exec, gameID)
	if err != nil {
		return false, false, err
	}
	expected := perGame * len(game.EntrantIDs)
	if recorded != expected {
		return false, false, nil
	}

	latched, err = l.gameRepo.MarkScoreEntered(ctx, exec, gameID)
	if err != nil {
		return false, false, err
	}
	if latched {
		gamesCompletedTotal.Inc()
		l.logger.InfoContext(ctx, "Game fully scored",
			slog.Int("tournament_id", tournamentID),
			slog.Int("game_id", gameID),
			slog.Int("scores", recorded))
	}
	return true, latched, nil
}

func successMessage(entry models.Entry, score int) string {
	return fmt.Sprintf("Score entered for %s: %d", entry.PlayerUsername, score)
}
