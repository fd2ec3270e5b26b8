package brackets

import (
	"context"
	"errors"
)

var ErrNotEnoughEntrants = errors.New("at least two entrants are required to pair a round")

// Pairing is one table of a round. A single entry id is a bye.
type Pairing struct {
	Table    int   `json:"table_number"`
	EntryIDs []int `json:"entry_ids"`
}

type PairRoundParams struct {
	// Round is 1-based.
	Round    int
	EntryIDs []int
}

type RoundPairer interface {
	PairRound(ctx context.Context, params PairRoundParams) ([]Pairing, error)

	GetName() string
}
