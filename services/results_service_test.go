package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/Dosada05/tabletop-tournaments/models"
	"github.com/Dosada05/tabletop-tournaments/storage"
)

type fakeUploader struct {
	key         string
	contentType string
	body        []byte
}

func (f *fakeUploader) Upload(_ context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	f.key, f.contentType, f.body = key, contentType, body
	return &storage.UploadResult{Key: key, Location: f.GetPublicURL(key)}, nil
}

func (f *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func seedResults(t *testing.T, env *testEnv) []*models.Entry {
	t.Helper()
	env.createTournament(t, "Final Standings", 1, victoryPoints, painting)
	e := env.register(t, "Final Standings", 3)
	game := env.createGame(t, "Final Standings", 1, 1, e[0].ID, e[1].ID)

	for _, s := range []struct {
		category string
		game     *int
		entry    int
		raw      string
	}{
		{"VP", gameRef(game), e[1].ID, "5"},
		{"VP", gameRef(game), e[0].ID, "15"},
		{"Painting", nil, e[0].ID, "8"},
	} {
		if _, err := env.enter(t, "Final Standings", s.category, s.game, s.entry, s.raw); err != nil {
			t.Fatalf("enter %s: %v", s.category, err)
		}
	}
	return e
}

func TestResultsOrderedByWeightedTotal(t *testing.T) {
	env := newTestEnv(t)
	e := seedResults(t, env)

	results, err := env.results(nil).Results(context.Background(), "Final Standings")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if results.GamesTotal != 1 || results.GamesScored != 1 {
		t.Fatalf("expected 1 of 1 games scored, got %d of %d", results.GamesScored, results.GamesTotal)
	}
	if len(results.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(results.Entries))
	}

	first, second, third := results.Entries[0], results.Entries[1], results.Entries[2]
	if first.EntryID != e[0].ID || second.EntryID != e[1].ID || third.EntryID != e[2].ID {
		t.Fatalf("unexpected order %d, %d, %d", first.EntryID, second.EntryID, third.EntryID)
	}
	if math.Abs(first.WeightedTotal-9.8) > 1e-9 {
		t.Fatalf("expected weighted total 9.8, got %v", first.WeightedTotal)
	}
	if first.Total != 23 || first.CategoryTotals["VP"] != 15 || first.CategoryTotals["Painting"] != 8 {
		t.Fatalf("unexpected totals %+v", first)
	}
	if first.GamesPlayed != 1 || third.GamesPlayed != 0 {
		t.Fatalf("unexpected games played %d and %d", first.GamesPlayed, third.GamesPlayed)
	}
}

func TestExportResults(t *testing.T) {
	env := newTestEnv(t)
	seedResults(t, env)
	ctx := context.Background()

	if _, err := env.results(nil).ExportResults(ctx, env.organizer, "Final Standings"); !errors.Is(err, ErrExportUnavailable) {
		t.Fatalf("expected ErrExportUnavailable without storage, got %v", err)
	}

	uploader := &fakeUploader{}
	svc := env.results(uploader)
	svc.newID = func() string { return "fixed-id" }

	stranger := Actor{UserID: env.organizer.UserID + 1, Username: "stranger", Role: models.RoleOrganizer}
	if _, err := svc.ExportResults(ctx, stranger, "Final Standings"); !errors.Is(err, ErrForbiddenOperation) {
		t.Fatalf("expected ErrForbiddenOperation, got %v", err)
	}

	export, err := svc.ExportResults(ctx, env.organizer, "Final Standings")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if export.Key != "results/final-standings/fixed-id.json" {
		t.Fatalf("unexpected key %q", export.Key)
	}
	if export.URL != "https://cdn.example.com/results/final-standings/fixed-id.json" {
		t.Fatalf("unexpected url %q", export.URL)
	}
	if uploader.contentType != "application/json" {
		t.Fatalf("unexpected content type %q", uploader.contentType)
	}

	var uploaded models.TournamentResults
	if err := json.NewDecoder(bytes.NewReader(uploader.body)).Decode(&uploaded); err != nil {
		t.Fatalf("decode uploaded results: %v", err)
	}
	if uploaded.Tournament != "Final Standings" || len(uploaded.Entries) != 3 {
		t.Fatalf("unexpected uploaded results %+v", uploaded)
	}
}

func TestExportKeySlugifiesName(t *testing.T) {
	if got := ExportKey("Spring GT 2025!", "abc"); got != "results/spring-gt-2025/abc.json" {
		t.Fatalf("unexpected key %q", got)
	}
}
