package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/tabletop-tournaments/models"
)

func TestCreateTournamentCreatesRounds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tournament := env.createTournament(t, "  Autumn Cup ", 3)
	if tournament.Name != "Autumn Cup" {
		t.Fatalf("expected trimmed name, got %q", tournament.Name)
	}

	missions, err := env.tournament.ListMissions(ctx, "Autumn Cup")
	if err != nil {
		t.Fatalf("list missions: %v", err)
	}
	if len(missions) != 3 {
		t.Fatalf("expected 3 rounds, got %d", len(missions))
	}
	for i, m := range missions {
		if m != "TBA" {
			t.Fatalf("round %d: expected default mission, got %q", i+1, m)
		}
	}

	_, err = env.tournament.CreateTournament(ctx, env.organizer, CreateTournamentInput{Name: "Autumn Cup", Date: "2025-06-01"})
	if !errors.Is(err, ErrTournamentNameConflict) {
		t.Fatalf("expected ErrTournamentNameConflict, got %v", err)
	}

	_, err = env.tournament.CreateTournament(ctx, env.organizer, CreateTournamentInput{Name: "Bad Date", Date: "01.06.2025"})
	if !errors.Is(err, ErrTournamentInvalidDate) {
		t.Fatalf("expected ErrTournamentInvalidDate, got %v", err)
	}

	player := Actor{UserID: 42, Username: "p", Role: models.RolePlayer}
	_, err = env.tournament.CreateTournament(ctx, player, CreateTournamentInput{Name: "Mine", Date: "2025-06-01"})
	if !errors.Is(err, ErrForbiddenOperation) {
		t.Fatalf("expected ErrForbiddenOperation for a player, got %v", err)
	}
}

func TestSetRoundCountAndMissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createTournament(t, "Rounds", 2, victoryPoints)

	if _, err := env.tournament.SetRoundCount(ctx, env.organizer, "Rounds", 4); err != nil {
		t.Fatalf("grow rounds: %v", err)
	}
	missions, err := env.tournament.SetMissions(ctx, env.organizer, "Rounds", []string{"Take and Hold", "", "Purge", "Supply Drop"})
	if err != nil {
		t.Fatalf("set missions: %v", err)
	}
	if missions[1] != "TBA" || missions[2] != "Purge" {
		t.Fatalf("unexpected missions %v", missions)
	}

	_, err = env.tournament.SetMissions(ctx, env.organizer, "Rounds", []string{"only one"})
	if !errors.Is(err, ErrMissionCountMismatch) {
		t.Fatalf("expected ErrMissionCountMismatch, got %v", err)
	}

	e := env.register(t, "Rounds", 2)
	env.createGame(t, "Rounds", 3, 1, e[0].ID, e[1].ID)
	_, err = env.tournament.SetRoundCount(ctx, env.organizer, "Rounds", 2)
	if !errors.Is(err, ErrRoundInUse) {
		t.Fatalf("expected ErrRoundInUse when dropping a round with games, got %v", err)
	}

	tournament, err := env.tournament.SetRoundCount(ctx, env.organizer, "Rounds", 3)
	if err != nil {
		t.Fatalf("shrink rounds: %v", err)
	}
	if tournament.NumRounds != 3 {
		t.Fatalf("expected 3 rounds, got %d", tournament.NumRounds)
	}
	missions, err = env.tournament.ListMissions(ctx, "Rounds")
	if err != nil {
		t.Fatalf("list missions: %v", err)
	}
	if len(missions) != 3 || missions[0] != "Take and Hold" {
		t.Fatalf("unexpected missions after shrink %v", missions)
	}
}

func TestSetScoreCategories(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createTournament(t, "Cats", 1, victoryPoints, painting)

	_, err := env.tournament.SetScoreCategories(ctx, env.organizer, "Cats", []CategoryInput{victoryPoints, victoryPoints})
	if !errors.Is(err, ErrDuplicateCategory) {
		t.Fatalf("expected ErrDuplicateCategory, got %v", err)
	}

	bad := CategoryInput{Name: "Broken", MinVal: 5, MaxVal: 1}
	if _, err := env.tournament.SetScoreCategories(ctx, env.organizer, "Cats", []CategoryInput{bad}); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}

	reweighted := victoryPoints
	reweighted.Percentage = 80
	categories, err := env.tournament.SetScoreCategories(ctx, env.organizer, "Cats", []CategoryInput{reweighted})
	if err != nil {
		t.Fatalf("replace categories: %v", err)
	}
	if len(categories) != 1 || categories[0].Percentage != 80 {
		t.Fatalf("unexpected categories %+v", categories)
	}
	listed, err := env.tournament.ListScoreCategories(ctx, "Cats")
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(listed) != 1 || listed[0].Name != "VP" {
		t.Fatalf("expected only VP to remain, got %+v", listed)
	}

	e := env.register(t, "Cats", 2)
	game := env.createGame(t, "Cats", 1, 1, e[0].ID, e[1].ID)
	if _, err := env.enter(t, "Cats", "VP", gameRef(game), e[0].ID, "10"); err != nil {
		t.Fatalf("enter score: %v", err)
	}

	_, err = env.tournament.SetScoreCategories(ctx, env.organizer, "Cats", []CategoryInput{painting})
	if !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("expected ErrCategoryInUse when deleting a scored category, got %v", err)
	}

	rescaled := reweighted
	rescaled.MaxVal = 40
	_, err = env.tournament.SetScoreCategories(ctx, env.organizer, "Cats", []CategoryInput{rescaled})
	if !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("expected ErrCategoryInUse when rescaling a scored category, got %v", err)
	}

	reweighted.Percentage = 50
	if _, err := env.tournament.SetScoreCategories(ctx, env.organizer, "Cats", []CategoryInput{reweighted, painting}); err != nil {
		t.Fatalf("reweighting a scored category should be allowed: %v", err)
	}
}

func TestGetDetails(t *testing.T) {
	env := newTestEnv(t)
	env.createTournament(t, "Details", 2, victoryPoints, painting)
	e := env.register(t, "Details", 2)
	env.createGame(t, "Details", 1, 1, e[0].ID, e[1].ID)

	tournament, err := env.tournament.GetDetails(context.Background(), "Details")
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if len(tournament.Rounds) != 2 || len(tournament.ScoreCategories) != 2 || len(tournament.Entries) != 2 || len(tournament.Games) != 1 {
		t.Fatalf("unexpected details: %d rounds, %d categories, %d entries, %d games",
			len(tournament.Rounds), len(tournament.ScoreCategories), len(tournament.Entries), len(tournament.Games))
	}

	if _, err := env.tournament.GetDetails(context.Background(), "Missing"); !errors.Is(err, ErrTournamentNotFound) {
		t.Fatalf("expected ErrTournamentNotFound, got %v", err)
	}
}

func TestManagementRequiresCreatorOrAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createTournament(t, "Guarded", 1)

	other := Actor{UserID: env.organizer.UserID + 100, Username: "other", Role: models.RoleOrganizer}
	if _, err := env.tournament.SetRoundCount(ctx, other, "Guarded", 2); !errors.Is(err, ErrForbiddenOperation) {
		t.Fatalf("expected ErrForbiddenOperation for another organizer, got %v", err)
	}

	admin := Actor{UserID: env.organizer.UserID + 200, Username: "root", Role: models.RoleAdmin}
	if _, err := env.tournament.SetRoundCount(ctx, admin, "Guarded", 2); err != nil {
		t.Fatalf("admin should manage any tournament: %v", err)
	}
}
