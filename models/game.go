package models

type GameScoringStatus string

const (
	GameUnscored        GameScoringStatus = "unscored"
	GamePartiallyScored GameScoringStatus = "partially_scored"
	GameFullyScored     GameScoringStatus = "fully_scored"
)

// Game pairs up to two entries at a table in one round. A single entrant is a bye.
type Game struct {
	ID           int  `json:"id" db:"id"`
	TournamentID int  `json:"tournament_id" db:"tournament_id"`
	RoundID      int  `json:"round_id" db:"round_id"`
	RoundNumber  int  `json:"round" db:"-"`
	TableNumber  int  `json:"table_number" db:"table_number"`
	ScoreEntered bool `json:"score_entered" db:"score_entered"`

	// EntrantIDs keeps insertion order of the game_entrants rows.
	EntrantIDs []int `json:"entrant_ids" db:"-"`
}

func (g *Game) IsBye() bool {
	return len(g.EntrantIDs) < 2
}

func (g *Game) HasEntrant(entryID int) bool {
	for _, id := range g.EntrantIDs {
		if id == entryID {
			return true
		}
	}
	return false
}

// Opponent returns the first entrant that is not entryID.
func (g *Game) Opponent(entryID int) (int, bool) {
	for _, id := range g.EntrantIDs {
		if id != entryID {
			return id, true
		}
	}
	return 0, false
}
