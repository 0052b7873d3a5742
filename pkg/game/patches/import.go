package patches

import (
	"fmt"

	"rando/pkg/engine/world"
)

// Import rebuilds a player's patches from an export. games holds the game of
// every player, indexed by player, so that pickups placed for other players
// resolve against their own pool.
func Import(games []*world.Game, e Export) (*Patches, error) {
	if e.Player < 0 || e.Player >= len(games) {
		return nil, fmt.Errorf("export for player %d but %d games given", e.Player, len(games))
	}
	g := games[e.Player]
	if g.Name != e.Game {
		return nil, fmt.Errorf("export is for game %q, not %q", e.Game, g.Name)
	}
	p := New(g, e.Player)

	start, err := nodeNamed(g, e.StartingLocation)
	if err != nil {
		return nil, fmt.Errorf("starting location: %w", err)
	}
	if start != g.StartNode() {
		p = p.WithStartingLocation(start)
	}
	for _, name := range e.StartingItems {
		pickup, err := pickupNamed(g, name)
		if err != nil {
			return nil, fmt.Errorf("starting items: %w", err)
		}
		p = p.WithStartingPickup(pickup)
	}

	assignments := make([]Assignment, 0, len(e.Pickups))
	for _, ep := range e.Pickups {
		n := g.PickupNode(ep.Index)
		if n == nil || n.String() != ep.Location {
			return nil, fmt.Errorf("pickup index %d is not %s", ep.Index, ep.Location)
		}
		if ep.Player < 0 || ep.Player >= len(games) {
			return nil, fmt.Errorf("pickup index %d: unknown player %d", ep.Index, ep.Player)
		}
		pickup, err := pickupNamed(games[ep.Player], ep.Pickup)
		if err != nil {
			return nil, fmt.Errorf("pickup index %d: %w", ep.Index, err)
		}
		assignments = append(assignments, Assignment{Index: ep.Index, Target: world.PickupTarget{Pickup: pickup, Player: ep.Player}})
	}
	if p, err = p.AssignPickups(assignments...); err != nil {
		return nil, err
	}

	for from, to := range e.Docks {
		a, err := nodeNamed(g, from)
		if err != nil {
			return nil, fmt.Errorf("docks: %w", err)
		}
		b, err := nodeNamed(g, to)
		if err != nil {
			return nil, fmt.Errorf("docks: %w", err)
		}
		if !a.IsDock() || !b.IsDock() {
			return nil, fmt.Errorf("docks: %s -> %s is not between docks", a, b)
		}
		p = p.WithDockConnection(a, b)
	}
	for node, name := range e.Weaknesses {
		n, err := nodeNamed(g, node)
		if err != nil {
			return nil, fmt.Errorf("weaknesses: %w", err)
		}
		w, ok := g.Weaknesses[name]
		if !ok {
			return nil, fmt.Errorf("weaknesses: unknown dock weakness %q", name)
		}
		p = p.WithDockWeakness(n, w)
	}
	for _, eh := range e.Hints {
		n, err := nodeNamed(g, eh.Asset)
		if err != nil {
			return nil, fmt.Errorf("hints: %w", err)
		}
		kind := HintLocation
		if eh.Kind == HintJoke.String() {
			kind = HintJoke
		}
		if p, err = p.AddHint(n, Hint{Kind: kind, Target: eh.Index, Player: eh.Player}); err != nil {
			return nil, fmt.Errorf("hints: %w", err)
		}
	}
	return p, nil
}

func nodeNamed(g *world.Game, name string) (*world.Node, error) {
	for _, n := range g.Nodes() {
		if n.String() == name {
			return n, nil
		}
	}
	return nil, fmt.Errorf("unknown node %q", name)
}

func pickupNamed(g *world.Game, name string) (*world.PickupEntry, error) {
	if g.Junk != nil && g.Junk.Name == name {
		return g.Junk, nil
	}
	for _, p := range g.Pool {
		if p.Name == name {
			return p, nil
		}
	}
	for _, p := range g.Fixed {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unknown pickup %q", name)
}
