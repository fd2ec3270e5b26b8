package models

// ScoreCategory defines one scoring dimension of a tournament.
//
// PerTournament scores attach to the tournament entry instead of a game.
// OpponentScore means the value entered by a player is recorded against the
// other player in the game. ZeroSum caps the total of both players' scores in
// a game at MaxVal.
type ScoreCategory struct {
	ID            int    `json:"id" db:"id"`
	TournamentID  int    `json:"tournament_id" db:"tournament_id"`
	Name          string `json:"name" db:"name"`
	Percentage    int    `json:"percentage" db:"percentage"`
	PerTournament bool   `json:"per_tournament" db:"per_tournament"`
	MinVal        int    `json:"min_val" db:"min_val"`
	MaxVal        int    `json:"max_val" db:"max_val"`
	OpponentScore bool   `json:"opponent_score" db:"opponent_score"`
	ZeroSum       bool   `json:"zero_sum" db:"zero_sum"`
}

func (c *ScoreCategory) InRange(score int) bool {
	return score >= c.MinVal && score <= c.MaxVal
}
