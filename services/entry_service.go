package services

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/Dosada05/tabletop-tournaments/models"
	"github.com/Dosada05/tabletop-tournaments/repositories"
)

type EntryService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	entryRepo      repositories.EntryRepository
	userRepo       repositories.UserRepository
	logger         *slog.Logger
}

func NewEntryService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	entryRepo repositories.EntryRepository,
	userRepo repositories.UserRepository,
	logger *slog.Logger,
) *EntryService {
	return &EntryService{
		db:             db,
		tournamentRepo: tournamentRepo,
		entryRepo:      entryRepo,
		userRepo:       userRepo,
		logger:         logger,
	}
}

// Register enters a player into a tournament. Players may only register
// themselves; the creator and admins may register anyone.
func (s *EntryService) Register(ctx context.Context, actor Actor, tournamentName, username string) (*models.Entry, error) {
	tournament, err := s.tournamentRepo.GetByName(ctx, nil, normalizeName(tournamentName))
	if err != nil {
		return nil, handleRepositoryError(err, tournamentName)
	}
	username = normalizeName(username)
	if username == "" {
		username = actor.Username
	}
	if username != actor.Username && !actor.IsAdmin() && tournament.CreatorID != actor.UserID {
		return nil, ErrForbiddenOperation
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, handleRepositoryError(err, username)
	}

	entry := &models.Entry{TournamentID: tournament.ID, UserID: user.ID, PlayerUsername: user.Username}
	if err := s.entryRepo.Create(ctx, nil, entry); err != nil {
		return nil, handleRepositoryError(err, username)
	}

	s.logger.InfoContext(ctx, "Player registered",
		slog.String("tournament", tournament.Name),
		slog.String("player", user.Username),
		slog.Int("entry_id", entry.ID))
	return entry, nil
}

func (s *EntryService) ListEntries(ctx context.Context, tournamentName string) ([]models.Entry, error) {
	tournament, err := s.tournamentRepo.GetByName(ctx, nil, normalizeName(tournamentName))
	if err != nil {
		return nil, handleRepositoryError(err, tournamentName)
	}
	return s.entryRepo.ListByTournament(ctx, nil, tournament.ID)
}
