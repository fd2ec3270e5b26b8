package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Dosada05/tabletop-tournaments/models"
	"github.com/Dosada05/tabletop-tournaments/repositories"
	"github.com/Dosada05/tabletop-tournaments/storage"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type ExportResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type ResultsService struct {
	tournamentRepo repositories.TournamentRepository
	categoryRepo   repositories.ScoreCategoryRepository
	entryRepo      repositories.EntryRepository
	gameRepo       repositories.GameRepository
	scoreRepo      repositories.ScoreRepository
	authorizer     *Authorizer
	uploader       storage.FileUploader
	newID          func() string
	logger         *slog.Logger
}

// NewResultsService accepts a nil uploader; exports then fail with
// ErrExportUnavailable.
func NewResultsService(
	tournamentRepo repositories.TournamentRepository,
	categoryRepo repositories.ScoreCategoryRepository,
	entryRepo repositories.EntryRepository,
	gameRepo repositories.GameRepository,
	scoreRepo repositories.ScoreRepository,
	authorizer *Authorizer,
	uploader storage.FileUploader,
	logger *slog.Logger,
) *ResultsService {
	return &ResultsService{
		tournamentRepo: tournamentRepo,
		categoryRepo:   categoryRepo,
		entryRepo:      entryRepo,
		gameRepo:       gameRepo,
		scoreRepo:      scoreRepo,
		authorizer:     authorizer,
		uploader:       uploader,
		newID:          uuid.NewString,
		logger:         logger,
	}
}

// Results sums every entry's scores per category. Entries are ordered by
// weighted total, highest first.
func (s *ResultsService) Results(ctx context.Context, tournamentName string) (*models.TournamentResults, error) {
	tournament, err := s.tournamentRepo.GetByName(ctx, nil, normalizeName(tournamentName))
	if err != nil {
		return nil, handleRepositoryError(err, tournamentName)
	}
	return s.results(ctx, tournament)
}

func (s *ResultsService) results(ctx context.Context, tournament *models.Tournament) (*models.TournamentResults, error) {
	categories, err := s.categoryRepo.ListByTournament(ctx, nil, tournament.ID)
	if err != nil {
		return nil, err
	}
	entries, err := s.entryRepo.ListByTournament(ctx, nil, tournament.ID)
	if err != nil {
		return nil, err
	}
	games, err := s.gameRepo.ListByTournament(ctx, nil, tournament.ID, nil)
	if err != nil {
		return nil, err
	}
	scores, err := s.scoreRepo.ListByTournament(ctx, nil, tournament.ID)
	if err != nil {
		return nil, err
	}

	weights := make(map[string]int, len(categories))
	for _, c := range categories {
		weights[c.Name] = c.Percentage
	}

	byEntry := make(map[int]*models.EntryResult, len(entries))
	out := &models.TournamentResults{
		Tournament: tournament.Name,
		Date:       tournament.Date,
		GamesTotal: len(games),
		Entries:    make([]models.EntryResult, 0, len(entries)),
	}
	for _, e := range entries {
		byEntry[e.ID] = &models.EntryResult{
			EntryID:        e.ID,
			Player:         e.PlayerUsername,
			CategoryTotals: make(map[string]int, len(categories)),
		}
	}
	for _, g := range games {
		if g.ScoreEntered {
			out.GamesScored++
		}
		for _, id := range g.EntrantIDs {
			if r, ok := byEntry[id]; ok {
				r.GamesPlayed++
			}
		}
	}
	for _, sc := range scores {
		r, ok := byEntry[sc.EntryID]
		if !ok {
			continue
		}
		r.CategoryTotals[sc.CategoryName] += sc.Value
		r.Total += sc.Value
	}
	for _, e := range entries {
		r := byEntry[e.ID]
		for name, total := range r.CategoryTotals {
			r.WeightedTotal += float64(total*weights[name]) / 100
		}
		out.Entries = append(out.Entries, *r)
	}
	sort.SliceStable(out.Entries, func(i, j int) bool {
		if out.Entries[i].WeightedTotal != out.Entries[j].WeightedTotal {
			return out.Entries[i].WeightedTotal > out.Entries[j].WeightedTotal
		}
		return out.Entries[i].EntryID < out.Entries[j].EntryID
	})
	return out, nil
}

// ExportResults uploads the current results as JSON under
// results/<tournament slug>/<uuid>.json.
func (s *ResultsService) ExportResults(ctx context.Context, actor Actor, tournamentName string) (*ExportResult, error) {
	if s.uploader == nil {
		return nil, ErrExportUnavailable
	}
	tournament, err := s.tournamentRepo.GetByName(ctx, nil, normalizeName(tournamentName))
	if err != nil {
		return nil, handleRepositoryError(err, tournamentName)
	}
	if err := s.authorizer.CanManageTournament(actor, tournament); err != nil {
		return nil, err
	}

	results, err := s.results(ctx, tournament)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("failed to encode results: %w", err)
	}

	key := ExportKey(tournament.Name, s.newID())
	uploaded, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to export results of %q: %w", tournament.Name, err)
	}

	s.logger.InfoContext(ctx, "Results exported",
		slog.String("tournament", tournament.Name),
		slog.String("key", uploaded.Key))
	return &ExportResult{Key: uploaded.Key, URL: uploaded.Location}, nil
}

func ExportKey(tournamentName, id string) string {
	return fmt.Sprintf("results/%s/%s.json", slug.Make(tournamentName), id)
}
