package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/tabletop-tournaments/models"
	"github.com/Dosada05/tabletop-tournaments/repositories"
)

// ScoreResolver turns a submission into concrete tournament, category, game
// and target entry rows. All lookups go through exec so the caller decides the
// transaction.
type ScoreResolver struct {
	tournamentRepo repositories.TournamentRepository
	categoryRepo   repositories.ScoreCategoryRepository
	gameRepo       repositories.GameRepository
	entryRepo      repositories.EntryRepository
}

func NewScoreResolver(
	tournamentRepo repositories.TournamentRepository,
	categoryRepo repositories.ScoreCategoryRepository,
	gameRepo repositories.GameRepository,
	entryRepo repositories.EntryRepository,
) *ScoreResolver {
	return &ScoreResolver{
		tournamentRepo: tournamentRepo,
		categoryRepo:   categoryRepo,
		gameRepo:       gameRepo,
		entryRepo:      entryRepo,
	}
}

func (r *ScoreResolver) Resolve(ctx context.Context, exec repositories.SQLExecutor, sub ScoreSubmission) (*ResolvedSubmission, error) {
	tournament, err := r.tournamentRepo.GetByName(ctx, exec, sub.Tournament())
	if err != nil {
		return nil, handleRepositoryError(err, sub.Tournament())
	}

	category, err := r.categoryRepo.GetByName(ctx, exec, tournament.ID, sub.Category())
	if err != nil {
		if errors.Is(err, repositories.ErrScoreCategoryNotFound) {
			return nil, unknownCategoryError(tournament.Name, sub.Category())
		}
		return nil, fmt.Errorf("failed to resolve category %q: %w", sub.Category(), err)
	}

	var game *models.Game
	if gameID, ok := sub.GameID(); ok {
		game, err = r.gameRepo.GetByID(ctx, exec, tournament.ID, gameID)
		if err != nil {
			if errors.Is(err, repositories.ErrGameNotFound) {
				return nil, &ScoreError{
					Kind:       ErrGameNotFound,
					Tournament: tournament.Name,
					Category:   category.Name,
					GameID:     &gameID,
					EntryID:    sub.EntrantID(),
					Score:      sub.Raw(),
					Detail:     fmt.Sprintf("%s not entered. Game %d cannot be found", sub.Raw(), gameID),
				}
			}
			return nil, fmt.Errorf("failed to resolve game %d: %w", gameID, err)
		}
	}

	targetID := sub.EntrantID()
	if category.OpponentScore {
		targetID, err = r.opponentOf(tournament, category, game, sub)
		if err != nil {
			return nil, err
		}
	}

	target, err := r.entryRepo.GetByID(ctx, exec, tournament.ID, targetID)
	if err != nil {
		if errors.Is(err, repositories.ErrEntryNotFound) {
			return nil, unknownEntrantError(tournament.Name, targetID)
		}
		return nil, fmt.Errorf("failed to resolve entrant %d: %w", targetID, err)
	}

	if game != nil && !game.HasEntrant(target.ID) {
		e := unknownEntrantError(tournament.Name, target.ID)
		e.Category = category.Name
		e.GameID = &game.ID
		e.Detail = fmt.Sprintf("Unknown entrant: %d does not play in game %d", target.ID, game.ID)
		return nil, e
	}

	return &ResolvedSubmission{
		tournament: *tournament,
		category:   *category,
		game:       game,
		target:     *target,
		submitter:  sub.EntrantID(),
	}, nil
}

// opponentOf picks the other entrant of the game from its ordered entrant list.
func (r *ScoreResolver) opponentOf(tournament *models.Tournament, category *models.ScoreCategory, game *models.Game, sub ScoreSubmission) (int, error) {
	if game == nil {
		return 0, &ScoreError{
			Kind:       ErrCategoryGameMismatch,
			Tournament: tournament.Name,
			Category:   category.Name,
			EntryID:    sub.EntrantID(),
			Score:      sub.Raw(),
			Detail:     fmt.Sprintf("Cannot enter opponent score (%s) without a game", category.Name),
		}
	}
	if !game.HasEntrant(sub.EntrantID()) {
		e := unknownEntrantError(tournament.Name, sub.EntrantID())
		e.Category = category.Name
		e.GameID = &game.ID
		e.Detail = fmt.Sprintf("Unknown entrant: %d does not play in game %d", sub.EntrantID(), game.ID)
		return 0, e
	}
	opponent, ok := game.Opponent(sub.EntrantID())
	if !ok {
		return 0, &ScoreError{
			Kind:       ErrGameNotFound,
			Tournament: tournament.Name,
			Category:   category.Name,
			GameID:     &game.ID,
			EntryID:    sub.EntrantID(),
			Score:      sub.Raw(),
			Detail:     fmt.Sprintf("%s not entered. Game %d is a bye and has no opponent", sub.Raw(), game.ID),
		}
	}
	return opponent, nil
}
