package brackets

import (
	"context"
	"fmt"
	"sort"
)

const bye = 0

type RoundRobinPairer struct{}

func NewRoundRobinPairer() RoundPairer {
	return &RoundRobinPairer{}
}

func (p *RoundRobinPairer) GetName() string {
	return "RoundRobin"
}

// PairRound pairs entrants with the circle method: the lowest id stays in
// place and the others rotate one seat per round, so every pair meets once
// every n-1 rounds. With an odd count one entrant per round gets a bye; bye
// tables come last.
func (p *RoundRobinPairer) PairRound(ctx context.Context, params PairRoundParams) ([]Pairing, error) {
	if params.Round < 1 {
		return nil, fmt.Errorf("RoundRobinPairer: round must be positive, got %d", params.Round)
	}
	if len(params.EntryIDs) < 2 {
		return nil, fmt.Errorf("RoundRobinPairer: %w (found %d)", ErrNotEnoughEntrants, len(params.EntryIDs))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seats := append([]int(nil), params.EntryIDs...)
	sort.Ints(seats)
	for i := 1; i < len(seats); i++ {
		if seats[i] == seats[i-1] {
			return nil, fmt.Errorf("RoundRobinPairer: entrant %d listed twice", seats[i])
		}
	}
	if len(seats)%2 == 1 {
		seats = append(seats, bye)
	}

	n := len(seats)
	shift := (params.Round - 1) % (n - 1)
	rotated := make([]int, n)
	rotated[0] = seats[0]
	for i := 1; i < n; i++ {
		// сдвиг по кругу всех, кроме первого
		rotated[1+(i-1+shift)%(n-1)] = seats[i]
	}

	games := make([]Pairing, 0, n/2)
	var byes []Pairing
	for i := 0; i < n/2; i++ {
		a, b := rotated[i], rotated[n-1-i]
		switch {
		case a == bye:
			byes = append(byes, Pairing{EntryIDs: []int{b}})
		case b == bye:
			byes = append(byes, Pairing{EntryIDs: []int{a}})
		default:
			games = append(games, Pairing{EntryIDs: []int{a, b}})
		}
	}
	games = append(games, byes...)
	for i := range games {
		games[i].Table = i + 1
	}
	return games, nil
}
