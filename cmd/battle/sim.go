package main

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/battlesim/internal/game/combat"
	"github.com/cory-johannsen/battlesim/internal/game/dice"
	"github.com/cory-johannsen/battlesim/internal/game/setup"
)

// tally counts results over many simulated battles.
type tally struct {
	Wins       []int
	Draws      int
	Unfinished int
}

// runSims plays n independent battles built from settings. With a non-zero
// seed, battle i uses seed+i so the tally is reproducible regardless of
// scheduling.
func runSims(ctx context.Context, settings setup.Settings, n, maxRounds int, seed uint64) (tally, error) {
	res := tally{Wins: make([]int, settings.NumSides)}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range n {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src := dice.NewCryptoSource()
			if seed != 0 {
				src = dice.NewSeededSource(seed + uint64(i))
			}
			out, err := simulate(settings, src, maxRounds)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			switch out.Status {
			case combat.Won:
				res.Wins[out.Winner]++
			case combat.Draw:
				res.Draws++
			default:
				res.Unfinished++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return tally{}, err
	}
	return res, nil
}

// simulate plays one battle to completion or maxRounds and returns its outcome.
func simulate(settings setup.Settings, src dice.Source, maxRounds int) (combat.Outcome, error) {
	sides, _, err := settings.Build()
	if err != nil {
		return combat.Outcome{}, err
	}
	out := combat.EvaluateOutcome(sides)
	for played := 0; out.Status == combat.Ongoing && (maxRounds == 0 || played < maxRounds); played++ {
		report, err := combat.RunRound(sides, src)
		if err != nil {
			return combat.Outcome{}, err
		}
		out = report.Outcome
	}
	return out, nil
}
