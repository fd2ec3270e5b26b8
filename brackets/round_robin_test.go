package brackets

import (
	"context"
	"errors"
	"testing"
)

func TestRoundRobinEveryPairMeetsOnce(t *testing.T) {
	pairer := NewRoundRobinPairer()
	entries := []int{11, 4, 7, 9, 2, 30}
	met := map[[2]int]int{}

	for round := 1; round <= len(entries)-1; round++ {
		pairings, err := pairer.PairRound(context.Background(), PairRoundParams{Round: round, EntryIDs: entries})
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		if len(pairings) != len(entries)/2 {
			t.Fatalf("round %d: expected %d tables, got %d", round, len(entries)/2, len(pairings))
		}
		seen := map[int]bool{}
		for i, p := range pairings {
			if p.Table != i+1 {
				t.Fatalf("round %d: expected table %d, got %d", round, i+1, p.Table)
			}
			if len(p.EntryIDs) != 2 {
				t.Fatalf("round %d: expected two entrants at table %d, got %v", round, p.Table, p.EntryIDs)
			}
			a, b := p.EntryIDs[0], p.EntryIDs[1]
			if seen[a] || seen[b] {
				t.Fatalf("round %d: entrant paired twice in %v", round, pairings)
			}
			seen[a], seen[b] = true, true
			if a > b {
				a, b = b, a
			}
			met[[2]int{a, b}]++
		}
	}

	expectedPairs := len(entries) * (len(entries) - 1) / 2
	if len(met) != expectedPairs {
		t.Fatalf("expected %d distinct pairs, got %d", expectedPairs, len(met))
	}
	for pair, count := range met {
		if count != 1 {
			t.Fatalf("expected pair %v to meet once, met %d times", pair, count)
		}
	}
}

func TestRoundRobinOddCountGivesOneByeLast(t *testing.T) {
	pairer := NewRoundRobinPairer()
	entries := []int{1, 2, 3, 4, 5}
	byes := map[int]bool{}

	for round := 1; round <= len(entries); round++ {
		pairings, err := pairer.PairRound(context.Background(), PairRoundParams{Round: round, EntryIDs: entries})
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		if len(pairings) != 3 {
			t.Fatalf("round %d: expected 3 tables, got %d", round, len(pairings))
		}
		last := pairings[len(pairings)-1]
		if len(last.EntryIDs) != 1 {
			t.Fatalf("round %d: expected bye on last table, got %v", round, last.EntryIDs)
		}
		for _, p := range pairings[:len(pairings)-1] {
			if len(p.EntryIDs) != 2 {
				t.Fatalf("round %d: expected one bye only, got %v", round, pairings)
			}
		}
		byes[last.EntryIDs[0]] = true
	}
	if len(byes) != len(entries) {
		t.Fatalf("expected every entrant to get one bye over %d rounds, got %v", len(entries), byes)
	}
}

func TestRoundRobinRejectsBadInput(t *testing.T) {
	pairer := NewRoundRobinPairer()

	_, err := pairer.PairRound(context.Background(), PairRoundParams{Round: 1, EntryIDs: []int{3}})
	if !errors.Is(err, ErrNotEnoughEntrants) {
		t.Fatalf("expected ErrNotEnoughEntrants, got %v", err)
	}
	if _, err := pairer.PairRound(context.Background(), PairRoundParams{Round: 0, EntryIDs: []int{1, 2}}); err == nil {
		t.Fatal("expected error for round 0")
	}
	if _, err := pairer.PairRound(context.Background(), PairRoundParams{Round: 1, EntryIDs: []int{1, 2, 2}}); err == nil {
		t.Fatal("expected error for duplicate entrant")
	}
}
