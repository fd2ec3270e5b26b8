package models

// Tournament is identified publicly by its unique name.
type Tournament struct {
	ID        int    `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	Date      Date   `json:"date" db:"date"`
	NumRounds int    `json:"rounds" db:"num_rounds"`
	CreatorID int    `json:"creator_id" db:"creator_id"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Creator         *User           `json:"creator,omitempty" db:"-"`
	Rounds          []Round         `json:"round_list,omitempty" db:"-"`
	ScoreCategories []ScoreCategory `json:"score_categories,omitempty" db:"-"`
	Entries         []Entry         `json:"entries,omitempty" db:"-"`
	Games           []Game          `json:"games,omitempty" db:"-"`
}

// Round is one ordinal position (1..N) of a tournament with its mission.
type Round struct {
	ID           int    `json:"id" db:"id"`
	TournamentID int    `json:"tournament_id" db:"tournament_id"`
	Ordering     int    `json:"ordering" db:"ordering"`
	Mission      string `json:"mission" db:"mission"`
}
