package services

import (
	"fmt"
	"strings"

	"github.com/Dosada05/tabletop-tournaments/models"
)

// ScoreSubmission is a raw score as it arrives from a client. Required fields
// are checked by NewScoreSubmission; the value itself is parsed later, once
// the category bounds are known.
type ScoreSubmission struct {
	tournament string
	category   string
	gameID     *int
	entrantID  int
	raw        string
}

func NewScoreSubmission(tournament, category string, gameID *int, entrantID int, raw string) (ScoreSubmission, error) {
	tournament = strings.TrimSpace(tournament)
	category = strings.TrimSpace(category)
	raw = strings.TrimSpace(raw)

	if tournament == "" {
		return ScoreSubmission{}, fmt.Errorf("%w: tournament name is required", ErrTournamentNotFound)
	}
	if category == "" {
		return ScoreSubmission{}, unknownCategoryError(tournament, category)
	}
	if entrantID <= 0 {
		return ScoreSubmission{}, unknownEntrantError(tournament, entrantID)
	}
	if raw == "" {
		return ScoreSubmission{}, &ScoreError{
			Kind:       ErrInvalidScore,
			Tournament: tournament,
			Category:   category,
			EntryID:    entrantID,
			Detail:     "Invalid score: score is required",
		}
	}

	sub := ScoreSubmission{tournament: tournament, category: category, entrantID: entrantID, raw: raw}
	if gameID != nil {
		id := *gameID
		sub.gameID = &id
	}
	return sub, nil
}

func (s ScoreSubmission) Tournament() string { return s.tournament }
func (s ScoreSubmission) Category() string   { return s.category }
func (s ScoreSubmission) EntrantID() int     { return s.entrantID }
func (s ScoreSubmission) Raw() string        { return s.raw }

func (s ScoreSubmission) GameID() (int, bool) {
	if s.gameID == nil {
		return 0, false
	}
	return *s.gameID, true
}

// ResolvedSubmission is the result of entity resolution. It hands out copies
// so later steps cannot change what was resolved.
type ResolvedSubmission struct {
	tournament models.Tournament
	category   models.ScoreCategory
	game       *models.Game
	target     models.Entry
	submitter  int
}

func (r *ResolvedSubmission) Tournament() models.Tournament  { return r.tournament }
func (r *ResolvedSubmission) Category() models.ScoreCategory { return r.category }
func (r *ResolvedSubmission) Target() models.Entry           { return r.target }

// SubmittedBy is the entrant id the client sent. It differs from Target for
// opponent-score categories.
func (r *ResolvedSubmission) SubmittedBy() int { return r.submitter }

func (r *ResolvedSubmission) Game() (models.Game, bool) {
	if r.game == nil {
		return models.Game{}, false
	}
	g := *r.game
	g.EntrantIDs = append([]int(nil), r.game.EntrantIDs...)
	return g, true
}

func (r *ResolvedSubmission) gameID() *int {
	if r.game == nil {
		return nil
	}
	id := r.game.ID
	return &id
}

func (r *ResolvedSubmission) scoreKey() models.ScoreKey {
	return models.ScoreKey{
		EntryID:      r.target.ID,
		CategoryID:   r.category.ID,
		GameID:       r.gameID(),
		TournamentID: r.tournament.ID,
	}
}

// scoreError fills the context fields from the resolved entities.
func (r *ResolvedSubmission) scoreError(kind error, score, detail string) *ScoreError {
	return &ScoreError{
		Kind:       kind,
		Tournament: r.tournament.Name,
		Category:   r.category.Name,
		GameID:     r.gameID(),
		EntryID:    r.target.ID,
		Score:      score,
		Detail:     detail,
	}
}

// ValidatedScore pairs a parsed, checked value with its resolution.
type ValidatedScore struct {
	submission *ResolvedSubmission
	value      int
}

func (v *ValidatedScore) Submission() *ResolvedSubmission { return v.submission }
func (v *ValidatedScore) Value() int                      { return v.value }
