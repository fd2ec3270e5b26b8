package models

// Entry is a player's registration in one tournament.
type Entry struct {
	ID             int    `json:"id" db:"id"`
	TournamentID   int    `json:"tournament_id" db:"tournament_id"`
	UserID         int    `json:"user_id" db:"user_id"`
	PlayerUsername string `json:"player" db:"-"`
}
