package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/tabletop-tournaments/models"
	"github.com/Dosada05/tabletop-tournaments/repositories"
)

// Actor is the authenticated caller.
type Actor struct {
	UserID   int
	Username string
	Role     models.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

func (a Actor) CanOrganize() bool {
	return a.Role == models.RoleAdmin || a.Role == models.RoleOrganizer
}

// Authorizer decides who may change a tournament or submit scores. It runs
// before the scoring core is invoked.
type Authorizer struct {
	tournamentRepo repositories.TournamentRepository
	entryRepo      repositories.EntryRepository
}

func NewAuthorizer(tournamentRepo repositories.TournamentRepository, entryRepo repositories.EntryRepository) *Authorizer {
	return &Authorizer{tournamentRepo: tournamentRepo, entryRepo: entryRepo}
}

func (a *Authorizer) CanManageTournament(actor Actor, tournament *models.Tournament) error {
	if actor.IsAdmin() || (tournament != nil && tournament.CreatorID == actor.UserID) {
		return nil
	}
	return ErrForbiddenOperation
}

// CanEnterScore allows admins, the tournament creator and the player who owns
// the entry. An entry that does not exist is left for the scoring core to
// report.
func (a *Authorizer) CanEnterScore(ctx context.Context, actor Actor, tournamentName string, entryID int) error {
	if actor.IsAdmin() {
		return nil
	}
	tournament, err := a.tournamentRepo.GetByName(ctx, nil, tournamentName)
	if err != nil {
		return handleRepositoryError(err, tournamentName)
	}
	if tournament.CreatorID == actor.UserID {
		return nil
	}

	entry, err := a.entryRepo.GetByID(ctx, nil, tournament.ID, entryID)
	if err != nil {
		if errors.Is(err, repositories.ErrEntryNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check entry owner: %w", err)
	}
	if entry.UserID != actor.UserID {
		return fmt.Errorf("%w: entry %d belongs to another player", ErrForbiddenOperation, entryID)
	}
	return nil
}
