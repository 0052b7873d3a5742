// Package setup prepares what a generation attempt starts from: the base
// patches and the pool of pickups still to place.
package setup

import (
	"fmt"
	"math/rand"

	"rando/pkg/engine/world"
	"rando/pkg/game/layout"
	"rando/pkg/game/patches"
)

// BasePatches builds the patches every attempt starts with. The starting
// location comes from the configuration or the game; fixed pickups and
// junk for excluded locations are assigned; teleporters are shuffled when
// the configuration asks for it.
func BasePatches(rng *rand.Rand, g *world.Game, cfg layout.Configuration, player int) (*patches.Patches, error) {
	p := patches.New(g, player)

	if cfg.StartingLocation != "" {
		id, err := layout.ParseIdentifier(cfg.StartingLocation)
		if err != nil {
			return nil, err
		}
		start, ok := g.Node(id)
		if !ok {
			return nil, fmt.Errorf("starting location %s not found", id)
		}
		p = p.WithStartingLocation(start)
	}

	assignments := fixedAssignments(g, cfg, player)
	p, err := p.AssignPickups(assignments...)
	if err != nil {
		return nil, fmt.Errorf("fixed pickups: %w", err)
	}

	if cfg.ShuffleTeleporters {
		p, err = ShuffleTeleporters(rng, p)
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

// fixedAssignments returns the vanilla pickups the game pins in place and
// junk for every excluded location, in index order
func fixedAssignments(g *world.Game, cfg layout.Configuration, player int) []patches.Assignment {
	excluded := cfg.Excluded()
	var out []patches.Assignment
	for i := 0; i < g.PickupCount(); i++ {
		if pickup := g.Fixed[i]; pickup != nil {
			out = append(out, patches.Assignment{Index: i, Target: world.PickupTarget{Pickup: pickup, Player: player}})
			continue
		}
		if excluded[i] {
			out = append(out, patches.Assignment{Index: i, Target: world.PickupTarget{Pickup: g.Junk, Player: player}})
		}
	}
	return out
}

// Pool is what the generator has to place for one player.
type Pool struct {
	Progression []*world.PickupEntry
	Other       []*world.PickupEntry
}

// ItemPool splits the game's pool into progression pickups and the rest
func ItemPool(g *world.Game) Pool {
	var pool Pool
	for _, p := range g.Pool {
		if p.Progression {
			pool.Progression = append(pool.Progression, p)
		} else {
			pool.Other = append(pool.Other, p)
		}
	}
	return pool
}

// All returns every pickup of the pool, progression first
func (p Pool) All() []*world.PickupEntry {
	out := make([]*world.PickupEntry, 0, len(p.Progression)+len(p.Other))
	out = append(out, p.Progression...)
	return append(out, p.Other...)
}

// Size returns the number of pickups in the pool
func (p Pool) Size() int {
	return len(p.Progression) + len(p.Other)
}
