package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tabletop-tournaments/repositories"
	"github.com/go-co-op/gocron/v2"
)

const sweepBatchSize = 200

// CompletionSweeper re-runs the completion recount for games that have scores
// but are not latched yet, e.g. when a refresh after a write failed.
type CompletionSweeper struct {
	ledger    *ScoreLedger
	gameRepo  repositories.GameRepository
	logger    *slog.Logger
	batchSize int
}

func NewCompletionSweeper(ledger *ScoreLedger, gameRepo repositories.GameRepository, logger *slog.Logger) *CompletionSweeper {
	return &CompletionSweeper{
		ledger:    ledger,
		gameRepo:  gameRepo,
		logger:    logger.With(slog.String("component", "completion_sweep")),
		batchSize: sweepBatchSize,
	}
}

// Sweep walks every pending game in id order, one batch at a time, and
// returns how many games it latched. Games that stay partially scored do not
// hide the ones behind them.
func (s *CompletionSweeper) Sweep(ctx context.Context) (int, error) {
	latchedCount := 0
	afterID := 0
	for {
		games, err := s.gameRepo.ListPendingWithScores(ctx, afterID, s.batchSize)
		if err != nil {
			return latchedCount, err
		}
		for _, g := range games {
			afterID = g.ID
			_, latched, err := s.ledger.RefreshGameCompletion(ctx, nil, g.TournamentID, g.ID)
			if err != nil {
				if errors.Is(err, ErrNoPerGameCategories) {
					continue
				}
				s.logger.WarnContext(ctx, "Failed to refresh game", slog.Int("game_id", g.ID), slog.Any("error", err))
				continue
			}
			if latched {
				latchedCount++
			}
		}
		if len(games) < s.batchSize {
			return latchedCount, nil
		}
		if err := ctx.Err(); err != nil {
			return latchedCount, err
		}
	}
}

// StartCompletionSweep runs Sweep every interval until the returned scheduler
// is shut down.
func StartCompletionSweep(ctx context.Context, sweeper *CompletionSweeper, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			latched, err := sweeper.Sweep(ctx)
			if err != nil {
				sweeper.logger.ErrorContext(ctx, "Completion sweep failed", slog.Any("error", err))
				return
			}
			if latched > 0 {
				sweeper.logger.InfoContext(ctx, "Completion sweep latched games", slog.Int("games", latched))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to schedule completion sweep: %w", err)
	}

	sched.Start()
	return sched, nil
}
