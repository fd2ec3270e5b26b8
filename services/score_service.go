package services

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/Dosada05/tabletop-tournaments/live"
	"github.com/Dosada05/tabletop-tournaments/models"
	"github.com/Dosada05/tabletop-tournaments/repositories"
)

// Broadcaster pushes live updates to connected clients. *live.Hub satisfies it.
type Broadcaster interface {
	BroadcastToRoom(roomID, messageType string, payload interface{})
}

type ScoreEnteredPayload struct {
	EntryID  int    `json:"entry_id"`
	Player   string `json:"player"`
	Category string `json:"category"`
	GameID   *int   `json:"game_id,omitempty"`
	Score    int    `json:"score"`
}

type GameCompletedPayload struct {
	GameID int `json:"game_id"`
	Round  int `json:"round"`
	Table  int `json:"table_number"`
}

type GameScoringReport struct {
	Game     *models.Game             `json:"game"`
	Status   models.GameScoringStatus `json:"status"`
	Expected int                      `json:"expected_scores"`
	Recorded int                      `json:"recorded_scores"`
	Scores   []models.Score           `json:"scores"`
}

type ScoreService struct {
	db             *sql.DB
	resolver       *ScoreResolver
	validator      *ScoreValidator
	ledger         *ScoreLedger
	gameRepo       repositories.GameRepository
	scoreRepo      repositories.ScoreRepository
	categoryRepo   repositories.ScoreCategoryRepository
	tournamentRepo repositories.TournamentRepository
	broadcaster    Broadcaster
	logger         *slog.Logger
}

func NewScoreService(
	db *sql.DB,
	resolver *ScoreResolver,
	validator *ScoreValidator,
	ledger *ScoreLedger,
	tournamentRepo repositories.TournamentRepository,
	categoryRepo repositories.ScoreCategoryRepository,
	gameRepo repositories.GameRepository,
	scoreRepo repositories.ScoreRepository,
	broadcaster Broadcaster,
	logger *slog.Logger,
) *ScoreService {
	return &ScoreService{
		db:             db,
		resolver:       resolver,
		validator:      validator,
		ledger:         ledger,
		tournamentRepo: tournamentRepo,
		categoryRepo:   categoryRepo,
		gameRepo:       gameRepo,
		scoreRepo:      scoreRepo,
		broadcaster:    broadcaster,
		logger:         logger,
	}
}

// EnterScore resolves, validates and writes one submission in a single
// transaction. Nothing is written when any step fails.
func (s *ScoreService) EnterScore(ctx context.Context, sub ScoreSubmission) (*WriteResult, error) {
	var validated *ValidatedScore
	var result *WriteResult

	err := withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		resolved, err := s.resolver.Resolve(ctx, tx, sub)
		if err != nil {
			return err
		}
		if game, ok := resolved.Game(); ok {
			// держим строку игры до коммита: zero-sum проверка видит все очки соперника
			if err := s.gameRepo.Lock(ctx, tx, resolved.Tournament().ID, game.ID); err != nil {
				return handleRepositoryError(err, "")
			}
		}
		validated, err = s.validator.Validate(ctx, tx, resolved, sub.Raw())
		if err != nil {
			return err
		}
		result, err = s.ledger.Write(ctx, tx, validated)
		return err
	})
	if err != nil && validated != nil && errors.Is(err, repositories.ErrScoreKeyConflict) {
		s.logger.InfoContext(ctx, "Score key written concurrently, re-reading",
			slog.String("tournament", sub.Tournament()),
			slog.String("category", sub.Category()),
			slog.Int("entry_id", validated.Submission().Target().ID))
		result, err = s.ledger.Reconcile(ctx, nil, validated)
	}
	if err != nil {
		s.recordFailure(ctx, sub, err)
		return nil, err
	}

	if !result.Created {
		scoresWrittenTotal.WithLabelValues(outcomeUnchanged).Inc()
		return result, nil
	}
	scoresWrittenTotal.WithLabelValues(outcomeCreated).Inc()

	resolved := validated.Submission()
	s.logger.InfoContext(ctx, "Score entered",
		slog.String("tournament", resolved.Tournament().Name),
		slog.String("category", resolved.Category().Name),
		slog.Int("entry_id", resolved.Target().ID),
		slog.Int("score", result.Score.Value))

	room := live.RoomForTournament(resolved.Tournament().Name)
	s.broadcast(room, live.MessageScoreEntered, ScoreEnteredPayload{
		EntryID:  result.Score.EntryID,
		Player:   result.Player,
		Category: resolved.Category().Name,
		GameID:   result.Score.GameID,
		Score:    result.Score.Value,
	})

	if game, ok := resolved.Game(); ok {
		// пересчёт вне транзакции записи
		// GAME_COMPLETED уходит один раз: только тот вызов, который выставил флаг
		_, latched, refreshErr := s.ledger.RefreshGameCompletion(ctx, nil, resolved.Tournament().ID, game.ID)
		if refreshErr != nil {
			s.logger.WarnContext(ctx, "Failed to refresh game completion",
				slog.Int("game_id", game.ID), slog.Any("error", refreshErr))
		} else if latched {
			result.GameCompleted = true
			s.broadcast(room, live.MessageGameCompleted, GameCompletedPayload{
				GameID: game.ID,
				Round:  game.RoundNumber,
				Table:  game.TableNumber,
			})
		}
	}
	return result, nil
}

// GameScoringStatus reports where a game is in unscored → partially → fully scored.
func (s *ScoreService) GameScoringStatus(ctx context.Context, tournamentName string, gameID int) (*GameScoringReport, error) {
	tournament, err := s.tournamentRepo.GetByName(ctx, nil, tournamentName)
	if err != nil {
		return nil, handleRepositoryError(err, tournamentName)
	}
	game, err := s.gameRepo.GetByID(ctx, nil, tournament.ID, gameID)
	if err != nil {
		return nil, handleRepositoryError(err, "")
	}
	perGame, err := s.categoryRepo.CountPerGame(ctx, nil, tournament.ID)
	if err != nil {
		return nil, err
	}
	scores, err := s.scoreRepo.ListByGame(ctx, nil, game.ID)
	if err != nil {
		return nil, err
	}

	report := &GameScoringReport{
		Game:     game,
		Expected: perGame * len(game.EntrantIDs),
		Recorded: len(scores),
		Scores:   scores,
	}
	report.Status = scoringStatus(game.ScoreEntered, report.Recorded)
	return report, nil
}

// scoringStatus treats the score_entered latch as the only source of
// fully_scored; an unlatched game with every score in stays partially_scored
// until a refresh or the sweep sets the flag.
func scoringStatus(latched bool, recorded int) models.GameScoringStatus {
	switch {
	case latched:
		return models.GameFullyScored
	case recorded == 0:
		return models.GameUnscored
	default:
		return models.GamePartiallyScored
	}
}

func (s *ScoreService) broadcast(room, messageType string, payload interface{}) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToRoom(room, messageType, payload)
}

func (s *ScoreService) recordFailure(ctx context.Context, sub ScoreSubmission, err error) {
	var scoreErr *ScoreError
	if errors.As(err, &scoreErr) {
		scoresWrittenTotal.WithLabelValues(outcomeRejected).Inc()
		s.logger.InfoContext(ctx, "Score rejected",
			slog.String("tournament", sub.Tournament()),
			slog.String("category", sub.Category()),
			slog.Int("entrant_id", sub.EntrantID()),
			slog.String("reason", scoreErr.Error()))
		return
	}
	scoresWrittenTotal.WithLabelValues(outcomeFailed).Inc()
	s.logger.ErrorContext(ctx, "Score entry failed",
		slog.String("tournament", sub.Tournament()),
		slog.Any("error", err))
}
