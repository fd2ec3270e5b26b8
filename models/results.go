package models

// EntryResult aggregates everything recorded for one entry.
type EntryResult struct {
	EntryID        int            `json:"entry_id"`
	Player         string         `json:"player"`
	CategoryTotals map[string]int `json:"category_totals"`
	Total          int            `json:"total"`
	// WeightedTotal applies each category's percentage to its total.
	WeightedTotal float64 `json:"weighted_total"`
	GamesPlayed   int     `json:"games_played"`
}

type TournamentResults struct {
	Tournament  string        `json:"tournament"`
	Date        Date          `json:"date"`
	GamesTotal  int           `json:"games_total"`
	GamesScored int           `json:"games_scored"`
	Entries     []EntryResult `json:"entries"`
}
