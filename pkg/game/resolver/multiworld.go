package resolver

import (
	"context"
	"fmt"

	"rando/pkg/engine/resource"
	"rando/pkg/game/patches"
	"rando/pkg/game/reach"
)

// MultiworldResult is the outcome of a joint check of several worlds.
type MultiworldResult struct {
	Completable bool
	Rounds      int
	Stuck       []int // players that did not reach victory
}

type worldRun struct {
	reach     *reach.Reach
	delivered map[int]bool
}

// ResolveMultiworld checks that all players can finish together. Each world
// advances greedily through safe collections and accepted lookaheads; a
// collected pickup that belongs to another player is handed to that player.
// When every world stalls, one harmless unsafe collection is forced. The
// check does not backtrack, so a false result means no greedy playthrough
// was found.
func ResolveMultiworld(ctx context.Context, all []*patches.Patches, static []map[*resource.Info]int, opts Options) (*MultiworldResult, error) {
	if len(static) != 0 && len(static) != len(all) {
		return nil, fmt.Errorf("got %d static resource sets for %d players", len(static), len(all))
	}
	runs := make([]*worldRun, len(all))
	for i, p := range all {
		if p.Player != i {
			return nil, fmt.Errorf("patches at position %d belong to player %d", i, p.Player)
		}
		var st map[*resource.Info]int
		if len(static) > 0 {
			st = static[i]
		}
		rctx := reach.NewContext(p.Game(), st, opts.Logger)
		runs[i] = &worldRun{
			reach:     reach.Calculate(rctx, rctx.InitialState(p)),
			delivered: make(map[int]bool),
		}
	}

	result := &MultiworldResult{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, contextError(err)
		}
		result.Rounds++
		before := fingerprints(runs)
		for i := range runs {
			runs[i].reach = reach.AdvanceWithPossibleUnsafeResources(runs[i].reach)
			deliver(runs, i)
		}
		if allVictorious(runs) {
			result.Completable = true
			return result, nil
		}
		if changed(before, fingerprints(runs)) {
			continue
		}
		if !forceOne(runs) {
			break
		}
	}

	for i, run := range runs {
		if !run.reach.VictorySatisfied() {
			result.Stuck = append(result.Stuck, i)
		}
	}
	if opts.Logger != nil {
		opts.Logger.Debug("multiworld check stalled", "rounds", result.Rounds, "stuck", result.Stuck)
	}
	return result, nil
}

// deliver hands pickups collected in world i to the players they belong to
func deliver(runs []*worldRun, i int) {
	run := runs[i]
	s := run.reach.State()
	for _, index := range s.CollectedPickupIndices() {
		if run.delivered[index] {
			continue
		}
		run.delivered[index] = true
		target, ok := s.Patches.PickupAt(index)
		if !ok || target.Player == i || target.Player >= len(runs) {
			continue
		}
		other := runs[target.Player]
		other.reach = other.reach.AdvanceTo(other.reach.State().ReceivePickup(target.Pickup))
	}
}

// forceOne collects the first collectable node that grants nothing
// dangerous in any world, returning false if there is none
func forceOne(runs []*worldRun) bool {
	for i, run := range runs {
		for _, n := range run.reach.CollectableResourceNodes() {
			if run.reach.GainsDangerous(n) {
				continue
			}
			run.reach = run.reach.AdvanceTo(run.reach.Collect(n))
			deliver(runs, i)
			return true
		}
	}
	return false
}

func fingerprints(runs []*worldRun) []uint64 {
	out := make([]uint64, len(runs))
	for i, run := range runs {
		out[i] = run.reach.State().Resources.Fingerprint()
	}
	return out
}

func changed(a, b []uint64) bool {
	for i := range a {
		if a[i] != b[i] {
			return true
		}
	}
	return false
}

func allVictorious(runs []*worldRun) bool {
	for _, run := range runs {
		if !run.reach.VictorySatisfied() {
			return false
		}
	}
	return true
}
