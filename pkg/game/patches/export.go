package patches

import (
	"fmt"
	"sort"

	"rando/pkg/engine/world"
)

// ExportedPickup is one pickup location in an export
type ExportedPickup struct {
	Index    int    `yaml:"index"`
	Location string `yaml:"location"`
	Pickup   string `yaml:"pickup"`
	Player   int    `yaml:"player"`
}

// ExportedHint is one placed hint in an export
type ExportedHint struct {
	Asset    string `yaml:"asset"`
	Kind     string `yaml:"kind"`
	Location string `yaml:"location"`
	Index    int    `yaml:"index"`
	Player   int    `yaml:"player"`
}

// Export is the plain, serializable form of a player's patches, consumed by
// patch writers and spoiler logs.
type Export struct {
	Game             string            `yaml:"game"`
	Player           int               `yaml:"player"`
	StartingLocation string            `yaml:"starting_location"`
	StartingItems    []string          `yaml:"starting_items,omitempty"`
	Pickups          []ExportedPickup  `yaml:"pickups"`
	Docks            map[string]string `yaml:"docks,omitempty"`
	Weaknesses       map[string]string `yaml:"weaknesses,omitempty"`
	Hints            []ExportedHint    `yaml:"hints,omitempty"`
}

// DockOverride is a patched dock connection
type DockOverride struct {
	From, To *world.Node
}

// DockOverrides returns the patched dock connections, ordered by source node
func (p *Patches) DockOverrides() []DockOverride {
	var out []DockOverride
	p.docks.each(func(k int, to *world.Node) {
		out = append(out, DockOverride{From: p.game.Nodes()[k], To: to})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].From.Index < out[j].From.Index })
	return out
}

// Export flattens the patches. Unassigned locations export as the game's
// junk pickup for this player.
func (p *Patches) Export() Export {
	e := Export{
		Game:             p.game.Name,
		Player:           p.Player,
		StartingLocation: p.StartingLocation().String(),
		Pickups:          make([]ExportedPickup, 0, p.game.PickupCount()),
	}
	for _, pickup := range p.startingPickups {
		e.StartingItems = append(e.StartingItems, pickup.Name)
	}
	for i := 0; i < p.game.PickupCount(); i++ {
		target, ok := p.PickupAt(i)
		if !ok {
			target = world.PickupTarget{Pickup: p.game.Junk, Player: p.Player}
		}
		e.Pickups = append(e.Pickups, ExportedPickup{
			Index:    i,
			Location: p.game.PickupNode(i).String(),
			Pickup:   target.Pickup.Name,
			Player:   target.Player,
		})
	}
	for _, d := range p.DockOverrides() {
		if e.Docks == nil {
			e.Docks = make(map[string]string)
		}
		e.Docks[d.From.String()] = d.To.String()
	}
	p.weaknesses.each(func(k int, w *world.DockWeakness) {
		if e.Weaknesses == nil {
			e.Weaknesses = make(map[string]string)
		}
		e.Weaknesses[p.game.Nodes()[k].String()] = w.Name
	})
	for _, nh := range p.Hints() {
		location := fmt.Sprintf("pickup %d", nh.Hint.Target)
		if nh.Hint.Player == p.Player {
			location = p.game.PickupNode(nh.Hint.Target).String()
		}
		e.Hints = append(e.Hints, ExportedHint{
			Asset:    nh.Node.String(),
			Kind:     nh.Hint.Kind.String(),
			Location: location,
			Index:    nh.Hint.Target,
			Player:   nh.Hint.Player,
		})
	}
	return e
}
