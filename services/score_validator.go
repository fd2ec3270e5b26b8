package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/tabletop-tournaments/repositories"
)

// ScoreValidator checks a raw value against the resolved category. It only
// reads.
type ScoreValidator struct {
	scoreRepo repositories.ScoreRepository
}

func NewScoreValidator(scoreRepo repositories.ScoreRepository) *ScoreValidator {
	return &ScoreValidator{scoreRepo: scoreRepo}
}

func (v *ScoreValidator) Validate(ctx context.Context, exec repositories.SQLExecutor, sub *ResolvedSubmission, raw string) (*ValidatedScore, error) {
	raw = strings.TrimSpace(raw)
	category := sub.Category()

	score, err := strconv.Atoi(raw)
	if err != nil {
		return nil, sub.scoreError(ErrInvalidScore, raw, "Invalid score: "+raw)
	}
	if !category.InRange(score) {
		return nil, sub.scoreError(ErrInvalidScore, raw,
			fmt.Sprintf("Invalid score: %d (%s allows %d to %d)", score, category.Name, category.MinVal, category.MaxVal))
	}

	game, hasGame := sub.Game()
	switch {
	case !hasGame && !category.PerTournament:
		return nil, sub.scoreError(ErrCategoryGameMismatch, raw,
			fmt.Sprintf("%s is scored per game: a game is required", category.Name))
	case hasGame && category.PerTournament:
		return nil, sub.scoreError(ErrCategoryGameMismatch, raw,
			fmt.Sprintf("Cannot enter per-tournament score (%s) for game (id: %d)", category.Name, game.ID))
	}

	if hasGame && category.ZeroSum {
		existing, err := v.scoreRepo.SumOpponentScores(ctx, exec, game.ID, category.ID, sub.Target().ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check zero-sum total for game %d: %w", game.ID, err)
		}
		if existing+score > category.MaxVal {
			return nil, sub.scoreError(ErrInvalidScore, raw,
				fmt.Sprintf("Invalid score: %d (%s is zero-sum, %d already entered, total may not exceed %d)",
					score, category.Name, existing, category.MaxVal))
		}
	}

	return &ValidatedScore{submission: sub, value: score}, nil
}
