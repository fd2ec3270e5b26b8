package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/tabletop-tournaments/repositories"
)

// withTx runs fn in one transaction: commit when fn returns nil, rollback on
// an error or panic.
func withTx(ctx context.Context, db *sql.DB, logger *slog.Logger, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logger.ErrorContext(ctx, "Rollback failed", slog.Any("error", rbErr), slog.Any("original_error", err))
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()
	return fn(tx)
}

// handleRepositoryError переводит ошибки хранилища в ошибки сервисов.
func handleRepositoryError(err error, subject string) error {
	if err == nil {
		return nil
	}
	mapping := []struct {
		repoErr    error
		serviceErr error
	}{
		{repositories.ErrTournamentNotFound, ErrTournamentNotFound},
		{repositories.ErrTournamentNameConflict, ErrTournamentNameConflict},
		{repositories.ErrTournamentInvalidOrg, ErrUserNotFound},
		{repositories.ErrUserNotFound, ErrUserNotFound},
		{repositories.ErrUserUsernameConflict, ErrUsernameConflict},
		{repositories.ErrRoundNotFound, ErrRoundNotFound},
		{repositories.ErrRoundInUse, ErrRoundInUse},
		{repositories.ErrScoreCategoryNotFound, ErrUnknownCategory},
		{repositories.ErrScoreCategoryConflict, ErrDuplicateCategory},
		{repositories.ErrScoreCategoryInUse, ErrCategoryInUse},
		{repositories.ErrEntryNotFound, ErrEntryNotFound},
		{repositories.ErrEntryConflict, ErrRegistrationConflict},
		{repositories.ErrEntryUserInvalid, ErrUserNotFound},
		{repositories.ErrGameNotFound, ErrGameNotFound},
		{repositories.ErrGameTableConflict, ErrGameTableConflict},
		{repositories.ErrGameEntrantInvalid, ErrInvalidGame},
		{repositories.ErrGameRoundInvalid, ErrRoundNotFound},
	}
	for _, m := range mapping {
		if errors.Is(err, m.repoErr) {
			if subject == "" {
				return m.serviceErr
			}
			return fmt.Errorf("%w: %s", m.serviceErr, subject)
		}
	}
	if subject == "" {
		return err
	}
	return fmt.Errorf("%s: %w", subject, err)
}

func normalizeName(s string) string {
	return strings.TrimSpace(s)
}
