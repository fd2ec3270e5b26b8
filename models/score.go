package models

// Score is written once and never updated. Exactly one of GameID and
// TournamentID is set, depending on the category kind.
type Score struct {
	ID              int  `json:"id" db:"id"`
	EntryID         int  `json:"entry_id" db:"entry_id"`
	ScoreCategoryID int  `json:"score_category_id" db:"score_category_id"`
	Value           int  `json:"value" db:"value"`
	GameID          *int `json:"game_id,omitempty" db:"-"`
	TournamentID    *int `json:"tournament_id,omitempty" db:"-"`

	CategoryName string `json:"category,omitempty" db:"-"`
}

// ScoreKey identifies the single slot a score may occupy.
type ScoreKey struct {
	EntryID      int
	CategoryID   int
	GameID       *int
	TournamentID int
}

func (k ScoreKey) PerGame() bool {
	return k.GameID != nil
}
