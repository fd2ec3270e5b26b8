package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/Dosada05/tabletop-tournaments/brackets"
	"github.com/Dosada05/tabletop-tournaments/db/dbtest"
	"github.com/Dosada05/tabletop-tournaments/models"
	"github.com/Dosada05/tabletop-tournaments/repositories"
	"github.com/Dosada05/tabletop-tournaments/storage"
)

type sentMessage struct {
	room        string
	messageType string
	payload     interface{}
}

type recordingBroadcaster struct {
	mu       sync.Mutex
	messages []sentMessage
}

func (b *recordingBroadcaster) BroadcastToRoom(roomID, messageType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, sentMessage{room: roomID, messageType: messageType, payload: payload})
}

func (b *recordingBroadcaster) ofType(messageType string) []sentMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []sentMessage
	for _, m := range b.messages {
		if m.messageType == messageType {
			out = append(out, m)
		}
	}
	return out
}

type testEnv struct {
	db          *sql.DB
	users       repositories.UserRepository
	tournaments repositories.TournamentRepository
	rounds      repositories.RoundRepository
	categories  repositories.ScoreCategoryRepository
	entries     repositories.EntryRepository
	games       repositories.GameRepository
	scores      repositories.ScoreRepository

	authorizer  *Authorizer
	tournament  *TournamentService
	entry       *EntryService
	game        *GameService
	ledger      *ScoreLedger
	score       *ScoreService
	broadcaster *recordingBroadcaster
	logger      *slog.Logger

	organizer Actor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn := dbtest.Open(t)
	dialect := repositories.DialectSQLite
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	env := &testEnv{
		db:          conn,
		users:       repositories.NewUserRepository(conn, dialect),
		tournaments: repositories.NewTournamentRepository(conn, dialect),
		rounds:      repositories.NewRoundRepository(conn, dialect),
		categories:  repositories.NewScoreCategoryRepository(conn, dialect),
		entries:     repositories.NewEntryRepository(conn, dialect),
		games:       repositories.NewGameRepository(conn, dialect),
		scores:      repositories.NewScoreRepository(conn, dialect),
		broadcaster: &recordingBroadcaster{},
		logger:      logger,
	}
	env.authorizer = NewAuthorizer(env.tournaments, env.entries)
	env.tournament = NewTournamentService(conn, env.tournaments, env.rounds, env.categories, env.entries, env.games, env.authorizer, "TBA", logger)
	env.entry = NewEntryService(conn, env.tournaments, env.entries, env.users, logger)
	env.game = NewGameService(conn, env.tournaments, env.rounds, env.entries, env.games, env.authorizer, brackets.NewRoundRobinPairer(), logger)
	env.ledger = NewScoreLedger(env.scores, env.categories, env.games, logger)
	env.score = NewScoreService(
		conn,
		NewScoreResolver(env.tournaments, env.categories, env.games, env.entries),
		NewScoreValidator(env.scores),
		env.ledger,
		env.tournaments,
		env.categories,
		env.games,
		env.scores,
		env.broadcaster,
		logger,
	)

	org := dbtest.SeedUsers(t, env.users, 1, models.RoleOrganizer)[0]
	env.organizer = Actor{UserID: org.ID, Username: org.Username, Role: org.Role}
	return env
}

func (env *testEnv) results(uploader storage.FileUploader) *ResultsService {
	return NewResultsService(env.tournaments, env.categories, env.entries, env.games, env.scores, env.authorizer, uploader, env.logger)
}

// createTournament creates a tournament owned by the organizer with the given
// categories.
func (env *testEnv) createTournament(t *testing.T, name string, rounds int, categories ...CategoryInput) *models.Tournament {
	t.Helper()
	ctx := context.Background()

	tournament, err := env.tournament.CreateTournament(ctx, env.organizer, CreateTournamentInput{Name: name, Date: "2025-06-01", Rounds: rounds})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	if len(categories) > 0 {
		if _, err := env.tournament.SetScoreCategories(ctx, env.organizer, name, categories); err != nil {
			t.Fatalf("set categories: %v", err)
		}
	}
	return tournament
}

// register seeds n players and enters them into the tournament.
func (env *testEnv) register(t *testing.T, tournament string, n int) []*models.Entry {
	t.Helper()

	players := dbtest.SeedUsers(t, env.users, n, models.RolePlayer)
	entries := make([]*models.Entry, 0, n)
	for _, p := range players {
		entry, err := env.entry.Register(context.Background(), env.organizer, tournament, p.Username)
		if err != nil {
			t.Fatalf("register %s: %v", p.Username, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func (env *testEnv) createGame(t *testing.T, tournament string, round, table int, entryIDs ...int) *models.Game {
	t.Helper()

	game, err := env.game.CreateGame(context.Background(), env.organizer, tournament, CreateGameInput{Round: round, Table: table, EntryIDs: entryIDs})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	return game
}

func (env *testEnv) enter(t *testing.T, tournament, category string, gameID *int, entrantID int, raw string) (*WriteResult, error) {
	t.Helper()

	sub, err := NewScoreSubmission(tournament, category, gameID, entrantID, raw)
	if err != nil {
		return nil, err
	}
	return env.score.EnterScore(context.Background(), sub)
}

func gameRef(g *models.Game) *int {
	id := g.ID
	return &id
}

var (
	victoryPoints = CategoryInput{Name: "VP", Percentage: 60, MinVal: 0, MaxVal: 20}
	primary       = CategoryInput{Name: "Primary", Percentage: 20, MinVal: 0, MaxVal: 20, ZeroSum: true}
	sportsmanship = CategoryInput{Name: "Sportsmanship", Percentage: 10, MinVal: 0, MaxVal: 5, OpponentScore: true}
	painting      = CategoryInput{Name: "Painting", Percentage: 10, MinVal: 0, MaxVal: 10, PerTournament: true}
)
