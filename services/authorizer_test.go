package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/tabletop-tournaments/models"
)

func TestCanEnterScore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createTournament(t, "Auth", 1)
	e := env.register(t, "Auth", 2)

	owner, err := env.users.GetByID(ctx, e[0].UserID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	player := Actor{UserID: owner.ID, Username: owner.Username, Role: models.RolePlayer}
	admin := Actor{UserID: 9999, Username: "root", Role: models.RoleAdmin}

	cases := []struct {
		name    string
		actor   Actor
		entryID int
		allowed bool
	}{
		{"creator", env.organizer, e[1].ID, true},
		{"admin", admin, e[1].ID, true},
		{"own entry", player, e[0].ID, true},
		{"someone else's entry", player, e[1].ID, false},
		{"missing entry is left to scoring", player, 12345, true},
	}
	for _, tc := range cases {
		err := env.authorizer.CanEnterScore(ctx, tc.actor, "Auth", tc.entryID)
		if tc.allowed && err != nil {
			t.Fatalf("%s: expected allowed, got %v", tc.name, err)
		}
		if !tc.allowed && !errors.Is(err, ErrForbiddenOperation) {
			t.Fatalf("%s: expected ErrForbiddenOperation, got %v", tc.name, err)
		}
	}

	if err := env.authorizer.CanEnterScore(ctx, player, "Nope", e[0].ID); !errors.Is(err, ErrTournamentNotFound) {
		t.Fatalf("expected ErrTournamentNotFound, got %v", err)
	}
}
