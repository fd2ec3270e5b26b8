package services

import (
	"context"
	"testing"

	"github.com/Dosada05/tabletop-tournaments/models"
)

func TestCompletionSweepLatchesMissedGames(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.createTournament(t, "Sweep", 1, victoryPoints)
	e := env.register(t, "Sweep", 4)
	done := env.createGame(t, "Sweep", 1, 1, e[0].ID, e[1].ID)
	partial := env.createGame(t, "Sweep", 1, 2, e[2].ID, e[3].ID)

	vp, err := env.categories.GetByName(ctx, nil, tournament.ID, "VP")
	if err != nil {
		t.Fatalf("get category: %v", err)
	}
	// пишем мимо сервиса, как если бы пересчёт после записи не случился
	write := func(game *models.Game, entryID, value int) {
		key := models.ScoreKey{EntryID: entryID, CategoryID: vp.ID, GameID: gameRef(game), TournamentID: tournament.ID}
		if _, err := env.scores.Create(ctx, nil, key, value); err != nil {
			t.Fatalf("create score: %v", err)
		}
	}
	write(done, e[0].ID, 10)
	write(done, e[1].ID, 7)
	write(partial, e[2].ID, 3)

	sweeper := NewCompletionSweeper(env.ledger, env.games, env.logger)
	latched, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if latched != 1 {
		t.Fatalf("expected 1 game latched, got %d", latched)
	}

	game, err := env.games.GetByID(ctx, nil, tournament.ID, done.ID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if !game.ScoreEntered {
		t.Fatalf("expected game %d to be latched", done.ID)
	}
	game, err = env.games.GetByID(ctx, nil, tournament.ID, partial.ID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if game.ScoreEntered {
		t.Fatalf("expected game %d to stay open", partial.ID)
	}

	latched, err = sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if latched != 0 {
		t.Fatalf("expected second sweep to latch nothing, got %d", latched)
	}
}

func TestCompletionSweepReachesGamesBehindPartialOnes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	const rounds = 6
	tournament := env.createTournament(t, "Backlog", rounds, victoryPoints)
	e := env.register(t, "Backlog", 2)

	vp, err := env.categories.GetByName(ctx, nil, tournament.ID, "VP")
	if err != nil {
		t.Fatalf("get category: %v", err)
	}
	write := func(game *models.Game, entryID, value int) {
		key := models.ScoreKey{EntryID: entryID, CategoryID: vp.ID, GameID: gameRef(game), TournamentID: tournament.ID}
		if _, err := env.scores.Create(ctx, nil, key, value); err != nil {
			t.Fatalf("create score: %v", err)
		}
	}

	// первые раунды так и остаются недозаполненными
	for round := 1; round < rounds; round++ {
		partial := env.createGame(t, "Backlog", round, 1, e[0].ID, e[1].ID)
		write(partial, e[0].ID, 4)
	}
	last := env.createGame(t, "Backlog", rounds, 1, e[0].ID, e[1].ID)
	write(last, e[0].ID, 11)
	write(last, e[1].ID, 9)

	sweeper := NewCompletionSweeper(env.ledger, env.games, env.logger)
	sweeper.batchSize = 2

	latched, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if latched != 1 {
		t.Fatalf("expected 1 game latched, got %d", latched)
	}
	game, err := env.games.GetByID(ctx, nil, tournament.ID, last.ID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if !game.ScoreEntered {
		t.Fatalf("expected game %d behind %d partial games to be latched", last.ID, rounds-1)
	}

	pending, err := env.games.ListPendingWithScores(ctx, 0, 100)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != rounds-1 {
		t.Fatalf("expected %d partial games still pending, got %d", rounds-1, len(pending))
	}
	next, err := env.games.ListPendingWithScores(ctx, pending[1].ID, 100)
	if err != nil {
		t.Fatalf("list pending after cursor: %v", err)
	}
	if len(next) != rounds-3 || next[0].ID != pending[2].ID {
		t.Fatalf("expected paging to resume after game %d, got %d games", pending[1].ID, len(next))
	}
}
