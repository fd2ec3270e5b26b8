package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tabletop-tournaments/models"
	"github.com/Dosada05/tabletop-tournaments/repositories"
	"golang.org/x/sync/errgroup"
)

type CreateTournamentInput struct {
	Name   string `json:"name"`
	Date   string `json:"date"`
	Rounds int    `json:"rounds"`
}

type CategoryInput struct {
	Name          string `json:"name"`
	Percentage    int    `json:"percentage"`
	PerTournament bool   `json:"per_tournament"`
	MinVal        int    `json:"min_val"`
	MaxVal        int    `json:"max_val"`
	OpponentScore bool   `json:"opponent_score"`
	ZeroSum       bool   `json:"zero_sum"`
}

type TournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	roundRepo      repositories.RoundRepository
	categoryRepo   repositories.ScoreCategoryRepository
	entryRepo      repositories.EntryRepository
	gameRepo       repositories.GameRepository
	authorizer     *Authorizer
	defaultMission string
	logger         *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	roundRepo repositories.RoundRepository,
	categoryRepo repositories.ScoreCategoryRepository,
	entryRepo repositories.EntryRepository,
	gameRepo repositories.GameRepository,
	authorizer *Authorizer,
	defaultMission string,
	logger *slog.Logger,
) *TournamentService {
	return &TournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		roundRepo:      roundRepo,
		categoryRepo:   categoryRepo,
		entryRepo:      entryRepo,
		gameRepo:       gameRepo,
		authorizer:     authorizer,
		defaultMission: defaultMission,
		logger:         logger,
	}
}

func (s *TournamentService) CreateTournament(ctx context.Context, actor Actor, input CreateTournamentInput) (*models.Tournament, error) {
	if !actor.CanOrganize() {
		return nil, ErrForbiddenOperation
	}
	name := normalizeName(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: tournament name is required", ErrValidationFailed)
	}
	date, err := models.ParseDate(input.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrTournamentInvalidDate, input.Date)
	}
	if input.Rounds < 0 {
		return nil, fmt.Errorf("%w: rounds cannot be negative", ErrValidationFailed)
	}

	tournament := &models.Tournament{
		Name:      name,
		Date:      date,
		NumRounds: input.Rounds,
		CreatorID: actor.UserID,
	}
	err = withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		if err := s.tournamentRepo.Create(ctx, tx, tournament); err != nil {
			return handleRepositoryError(err, name)
		}
		rounds, err := s.addRounds(ctx, tx, tournament.ID, 1, input.Rounds)
		tournament.Rounds = rounds
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Tournament created",
		slog.String("tournament", tournament.Name),
		slog.Int("rounds", tournament.NumRounds),
		slog.Int("creator_id", actor.UserID))
	return tournament, nil
}

func (s *TournamentService) ListTournaments(ctx context.Context) ([]models.Tournament, error) {
	return s.tournamentRepo.List(ctx)
}

func (s *TournamentService) GetTournament(ctx context.Context, name string) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByName(ctx, nil, normalizeName(name))
	if err != nil {
		return nil, handleRepositoryError(err, name)
	}
	return tournament, nil
}

// GetDetails loads the tournament with its rounds, categories, entries and
// games.
func (s *TournamentService) GetDetails(ctx context.Context, name string) (*models.Tournament, error) {
	tournament, err := s.GetTournament(ctx, name)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rounds, err := s.roundRepo.ListByTournament(gctx, nil, tournament.ID)
		tournament.Rounds = rounds
		return err
	})
	g.Go(func() error {
		categories, err := s.categoryRepo.ListByTournament(gctx, nil, tournament.ID)
		tournament.ScoreCategories = categories
		return err
	})
	g.Go(func() error {
		entries, err := s.entryRepo.ListByTournament(gctx, nil, tournament.ID)
		tournament.Entries = entries
		return err
	})
	g.Go(func() error {
		games, err := s.gameRepo.ListByTournament(gctx, nil, tournament.ID, nil)
		if err != nil {
			return err
		}
		tournament.Games = make([]models.Game, 0, len(games))
		for _, game := range games {
			tournament.Games = append(tournament.Games, *game)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load details of tournament %q: %w", tournament.Name, err)
	}
	return tournament, nil
}

// SetRoundCount adds missing rounds or drops surplus rounds that have no games.
func (s *TournamentService) SetRoundCount(ctx context.Context, actor Actor, name string, count int) (*models.Tournament, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: rounds cannot be negative", ErrValidationFailed)
	}
	tournament, err := s.GetTournament(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.CanManageTournament(actor, tournament); err != nil {
		return nil, err
	}

	err = withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		existing, err := s.roundRepo.ListByTournament(ctx, tx, tournament.ID)
		if err != nil {
			return err
		}
		switch {
		case count > len(existing):
			if _, err := s.addRounds(ctx, tx, tournament.ID, len(existing)+1, count); err != nil {
				return err
			}
		case count < len(existing):
			if err := s.roundRepo.DeleteAfter(ctx, tx, tournament.ID, count); err != nil {
				return handleRepositoryError(err, tournament.Name)
			}
		}
		return s.tournamentRepo.UpdateNumRounds(ctx, tx, tournament.ID, count)
	})
	if err != nil {
		return nil, err
	}
	tournament.NumRounds = count
	return tournament, nil
}

func (s *TournamentService) ListMissions(ctx context.Context, name string) ([]string, error) {
	tournament, err := s.GetTournament(ctx, name)
	if err != nil {
		return nil, err
	}
	rounds, err := s.roundRepo.ListByTournament(ctx, nil, tournament.ID)
	if err != nil {
		return nil, err
	}
	missions := make([]string, 0, len(rounds))
	for _, round := range rounds {
		missions = append(missions, round.Mission)
	}
	return missions, nil
}

// SetMissions assigns one mission per round, in round order. Blank missions
// fall back to the configured default.
func (s *TournamentService) SetMissions(ctx context.Context, actor Actor, name string, missions []string) ([]string, error) {
	tournament, err := s.GetTournament(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.CanManageTournament(actor, tournament); err != nil {
		return nil, err
	}

	applied := make([]string, len(missions))
	err = withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		rounds, err := s.roundRepo.ListByTournament(ctx, tx, tournament.ID)
		if err != nil {
			return err
		}
		if len(missions) != len(rounds) {
			return fmt.Errorf("%w: got %d missions for %d rounds", ErrMissionCountMismatch, len(missions), len(rounds))
		}
		for i, round := range rounds {
			applied[i] = s.missionOrDefault(missions[i])
			if err := s.roundRepo.UpdateMission(ctx, tx, round.ID, applied[i]); err != nil {
				return handleRepositoryError(err, "")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}

func (s *TournamentService) ListScoreCategories(ctx context.Context, name string) ([]models.ScoreCategory, error) {
	tournament, err := s.GetTournament(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.categoryRepo.ListByTournament(ctx, nil, tournament.ID)
}

// SetScoreCategories makes the tournament's categories match inputs: new names
// are created, known names updated, and categories left out are deleted. A
// category with recorded scores can neither be deleted nor change how it is
// scored.
func (s *TournamentService) SetScoreCategories(ctx context.Context, actor Actor, name string, inputs []CategoryInput) ([]models.ScoreCategory, error) {
	tournament, err := s.GetTournament(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.CanManageTournament(actor, tournament); err != nil {
		return nil, err
	}

	wanted := make([]models.ScoreCategory, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for _, input := range inputs {
		category, err := validateCategoryInput(input)
		if err != nil {
			return nil, err
		}
		if seen[category.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCategory, category.Name)
		}
		seen[category.Name] = true
		category.TournamentID = tournament.ID
		wanted = append(wanted, category)
	}

	err = withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		existing, err := s.categoryRepo.ListByTournament(ctx, tx, tournament.ID)
		if err != nil {
			return err
		}
		byName := make(map[string]models.ScoreCategory, len(existing))
		for _, c := range existing {
			byName[c.Name] = c
		}

		for _, c := range existing {
			if seen[c.Name] {
				continue
			}
			if err := s.categoryRepo.Delete(ctx, tx, c.ID); err != nil {
				return handleRepositoryError(err, c.Name)
			}
		}

		for i := range wanted {
			current, ok := byName[wanted[i].Name]
			if !ok {
				if err := s.categoryRepo.Create(ctx, tx, &wanted[i]); err != nil {
					return handleRepositoryError(err, wanted[i].Name)
				}
				continue
			}
			wanted[i].ID = current.ID
			if scoringChanged(current, wanted[i]) {
				used, err := s.categoryRepo.HasScores(ctx, tx, current.ID)
				if err != nil {
					return err
				}
				if used {
					return fmt.Errorf("%w: %q", ErrCategoryInUse, current.Name)
				}
			}
			if err := s.categoryRepo.Update(ctx, tx, &wanted[i]); err != nil {
				return handleRepositoryError(err, wanted[i].Name)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Score categories set",
		slog.String("tournament", tournament.Name),
		slog.Int("categories", len(wanted)))
	return wanted, nil
}

func (s *TournamentService) addRounds(ctx context.Context, exec repositories.SQLExecutor, tournamentID, from, to int) ([]models.Round, error) {
	rounds := make([]models.Round, 0)
	for ordering := from; ordering <= to; ordering++ {
		round := models.Round{TournamentID: tournamentID, Ordering: ordering, Mission: s.defaultMission}
		if err := s.roundRepo.Create(ctx, exec, &round); err != nil {
			return nil, err
		}
		rounds = append(rounds, round)
	}
	return rounds, nil
}

func (s *TournamentService) missionOrDefault(mission string) string {
	if mission = normalizeName(mission); mission == "" {
		return s.defaultMission
	}
	return mission
}

func validateCategoryInput(input CategoryInput) (models.ScoreCategory, error) {
	category := models.ScoreCategory{
		Name:          normalizeName(input.Name),
		Percentage:    input.Percentage,
		PerTournament: input.PerTournament,
		MinVal:        input.MinVal,
		MaxVal:        input.MaxVal,
		OpponentScore: input.OpponentScore,
		ZeroSum:       input.ZeroSum,
	}
	switch {
	case category.Name == "":
		return category, fmt.Errorf("%w: name is required", ErrInvalidCategory)
	case category.Percentage < 0 || category.Percentage > 100:
		return category, fmt.Errorf("%w: %s percentage must be between 0 and 100", ErrInvalidCategory, category.Name)
	case category.MinVal > category.MaxVal:
		return category, fmt.Errorf("%w: %s min_val is greater than max_val", ErrInvalidCategory, category.Name)
	case category.OpponentScore && category.PerTournament:
		return category, fmt.Errorf("%w: %s cannot be both opponent_score and per_tournament", ErrInvalidCategory, category.Name)
	}
	return category, nil
}

func scoringChanged(current, next models.ScoreCategory) bool {
	return current.PerTournament != next.PerTournament ||
		current.OpponentScore != next.OpponentScore ||
		current.ZeroSum != next.ZeroSum ||
		current.MinVal != next.MinVal ||
		current.MaxVal != next.MaxVal
}
