package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tabletop-tournaments/brackets"
	"github.com/Dosada05/tabletop-tournaments/models"
	"github.com/Dosada05/tabletop-tournaments/repositories"
)

type CreateGameInput struct {
	Round    int   `json:"round"`
	Table    int   `json:"table"`
	EntryIDs []int `json:"entry_ids"`
}

type GameService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	roundRepo      repositories.RoundRepository
	entryRepo      repositories.EntryRepository
	gameRepo       repositories.GameRepository
	authorizer     *Authorizer
	pairer         brackets.RoundPairer
	logger         *slog.Logger
}

func NewGameService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	roundRepo repositories.RoundRepository,
	entryRepo repositories.EntryRepository,
	gameRepo repositories.GameRepository,
	authorizer *Authorizer,
	pairer brackets.RoundPairer,
	logger *slog.Logger,
) *GameService {
	return &GameService{
		db:             db,
		tournamentRepo: tournamentRepo,
		roundRepo:      roundRepo,
		entryRepo:      entryRepo,
		gameRepo:       gameRepo,
		authorizer:     authorizer,
		pairer:         pairer,
		logger:         logger,
	}
}

// CreateGame seats one or two entrants at a table. One entrant is a bye.
func (s *GameService) CreateGame(ctx context.Context, actor Actor, tournamentName string, input CreateGameInput) (*models.Game, error) {
	if err := validateGameEntrants(input.EntryIDs); err != nil {
		return nil, err
	}
	if input.Table <= 0 {
		return nil, fmt.Errorf("%w: table number must be positive", ErrValidationFailed)
	}
	tournament, err := s.tournamentFor(ctx, actor, tournamentName)
	if err != nil {
		return nil, err
	}

	game := &models.Game{
		TournamentID: tournament.ID,
		RoundNumber:  input.Round,
		TableNumber:  input.Table,
		EntrantIDs:   append([]int(nil), input.EntryIDs...),
	}
	err = withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		round, err := s.roundRepo.GetByOrdering(ctx, tx, tournament.ID, input.Round)
		if err != nil {
			return handleRepositoryError(err, fmt.Sprintf("round %d", input.Round))
		}
		game.RoundID = round.ID

		paired, err := s.gameRepo.EntrantsInRound(ctx, tx, round.ID)
		if err != nil {
			return err
		}
		if err := s.checkEntrants(ctx, tx, tournament.ID, input.EntryIDs, paired); err != nil {
			return err
		}
		if err := s.gameRepo.Create(ctx, tx, game); err != nil {
			return handleRepositoryError(err, fmt.Sprintf("round %d table %d", input.Round, input.Table))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return game, nil
}

// PairRound seats every entrant of the tournament for one round. The round
// must not have games yet.
func (s *GameService) PairRound(ctx context.Context, actor Actor, tournamentName string, roundNumber int) ([]*models.Game, error) {
	tournament, err := s.tournamentFor(ctx, actor, tournamentName)
	if err != nil {
		return nil, err
	}

	games := make([]*models.Game, 0)
	err = withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		round, err := s.roundRepo.GetByOrdering(ctx, tx, tournament.ID, roundNumber)
		if err != nil {
			return handleRepositoryError(err, fmt.Sprintf("round %d", roundNumber))
		}
		paired, err := s.gameRepo.EntrantsInRound(ctx, tx, round.ID)
		if err != nil {
			return err
		}
		if len(paired) > 0 {
			return fmt.Errorf("%w: round %d already has games", ErrEntrantAlreadyPaired, roundNumber)
		}

		entries, err := s.entryRepo.ListByTournament(ctx, tx, tournament.ID)
		if err != nil {
			return err
		}
		entryIDs := make([]int, 0, len(entries))
		for _, e := range entries {
			entryIDs = append(entryIDs, e.ID)
		}

		pairings, err := s.pairer.PairRound(ctx, brackets.PairRoundParams{Round: roundNumber, EntryIDs: entryIDs})
		if err != nil {
			if errors.Is(err, brackets.ErrNotEnoughEntrants) {
				return fmt.Errorf("%w: %d registered", ErrNotEnoughEntrants, len(entryIDs))
			}
			return fmt.Errorf("failed to pair round %d: %w", roundNumber, err)
		}

		for _, p := range pairings {
			game := &models.Game{
				TournamentID: tournament.ID,
				RoundID:      round.ID,
				RoundNumber:  roundNumber,
				TableNumber:  p.Table,
				EntrantIDs:   p.EntryIDs,
			}
			if err := s.gameRepo.Create(ctx, tx, game); err != nil {
				return handleRepositoryError(err, fmt.Sprintf("table %d", p.Table))
			}
			games = append(games, game)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Round paired",
		slog.String("tournament", tournament.Name),
		slog.Int("round", roundNumber),
		slog.String("pairer", s.pairer.GetName()),
		slog.Int("games", len(games)))
	return games, nil
}

func (s *GameService) ListGames(ctx context.Context, tournamentName string, round *int) ([]*models.Game, error) {
	tournament, err := s.tournamentRepo.GetByName(ctx, nil, normalizeName(tournamentName))
	if err != nil {
		return nil, handleRepositoryError(err, tournamentName)
	}
	return s.gameRepo.ListByTournament(ctx, nil, tournament.ID, round)
}

func (s *GameService) tournamentFor(ctx context.Context, actor Actor, name string) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByName(ctx, nil, normalizeName(name))
	if err != nil {
		return nil, handleRepositoryError(err, name)
	}
	if err := s.authorizer.CanManageTournament(actor, tournament); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *GameService) checkEntrants(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, entryIDs, paired []int) error {
	alreadyPaired := make(map[int]bool, len(paired))
	for _, id := range paired {
		alreadyPaired[id] = true
	}
	for _, id := range entryIDs {
		if alreadyPaired[id] {
			return fmt.Errorf("%w: entry %d", ErrEntrantAlreadyPaired, id)
		}
		if _, err := s.entryRepo.GetByID(ctx, exec, tournamentID, id); err != nil {
			if errors.Is(err, repositories.ErrEntryNotFound) {
				return unknownEntrantError("", id)
			}
			return err
		}
	}
	return nil
}

func validateGameEntrants(entryIDs []int) error {
	switch {
	case len(entryIDs) == 0 || len(entryIDs) > 2:
		return fmt.Errorf("%w: got %d entrants", ErrInvalidGame, len(entryIDs))
	case len(entryIDs) == 2 && entryIDs[0] == entryIDs[1]:
		return fmt.Errorf("%w: entry %d listed twice", ErrInvalidGame, entryIDs[0])
	}
	return nil
}
