// Package fixtures builds small in-memory games: the ones the tests share
// and the built-in demo games the CLI can run without a data file.
package fixtures

import (
	"fmt"
	"sort"

	"rando/pkg/engine/requirement"
	"rando/pkg/engine/resource"
	"rando/pkg/engine/world"
)

// Builder assembles a game one area at a time.
type Builder struct {
	Game *world.Game
	area *world.Area
}

// NewBuilder creates a builder with an empty database and a "Nothing" junk pickup
func NewBuilder(name string) *Builder {
	g := world.NewGame(name, resource.NewDatabase())
	g.Junk = world.NewPickup("Nothing", "junk", false)
	return &Builder{Game: g}
}

// Item registers an item resource
func (b *Builder) Item(short, long string, capacity int) *resource.Info {
	return b.Game.Resources.MustAdd(resource.KindItem, short, long, capacity)
}

// EventResource registers an event resource
func (b *Builder) EventResource(short, long string) *resource.Info {
	return b.Game.Resources.MustAdd(resource.KindEvent, short, long, 1)
}

// Pickup adds count copies of a pickup granting one of item to the pool
func (b *Builder) Pickup(item *resource.Info, progression bool, count int) *world.PickupEntry {
	p := world.NewPickup(item.LongName, "item", progression, resource.Amount{Resource: item, Amount: 1})
	for i := 0; i < count; i++ {
		b.Game.Pool = append(b.Game.Pool, p)
	}
	return p
}

// Area starts a new area; nodes added afterwards belong to it
func (b *Builder) Area(region, area, defaultNode string) *world.Area {
	r := b.Game.Region(region)
	if r == nil {
		r = b.Game.AddRegion(region)
	}
	b.area = r.AddArea(area, defaultNode)
	return b.area
}

func (b *Builder) add(name string, kind world.NodeKind) *world.Node {
	return b.area.AddNode(&world.Node{Identifier: world.Identifier{Node: name}, Kind: kind})
}

// Generic adds a plain node
func (b *Builder) Generic(name string) *world.Node {
	return b.add(name, world.NodeGeneric)
}

// Location adds a pickup node with the next free pickup index
func (b *Builder) Location(name string, major bool) *world.Node {
	n := b.add(name, world.NodePickup)
	n.PickupIndex = b.nextPickupIndex()
	n.Major = major
	return n
}

func (b *Builder) nextPickupIndex() int {
	count := 0
	for _, r := range b.Game.Regions {
		for _, a := range r.Areas {
			for _, n := range a.Nodes {
				if n.Kind == world.NodePickup {
					count++
				}
			}
		}
	}
	return count - 1
}

// Event adds an event node granting ev
func (b *Builder) Event(name string, ev *resource.Info) *world.Node {
	n := b.add(name, world.NodeEvent)
	n.Event = ev
	return n
}

// Hint adds a hint asset node
func (b *Builder) Hint(name string) *world.Node {
	n := b.add(name, world.NodeHint)
	n.HintMarker = b.Game.Resources.HintMarker(name)
	return n
}

// Dock adds a dock node leading to target
func (b *Builder) Dock(name string, target world.Identifier, weakness *world.DockWeakness) *world.Node {
	n := b.add(name, world.NodeDock)
	n.DockTarget = target
	n.DockWeakness = weakness
	return n
}

// Teleporter adds a teleporter node leading to target
func (b *Builder) Teleporter(name string, target world.Identifier) *world.Node {
	n := b.add(name, world.NodeTeleporter)
	n.DockTarget = target
	return n
}

// Link connects two nodes of the current area in one direction
func (b *Builder) Link(from, to *world.Node, req requirement.Requirement) {
	if req == nil {
		req = requirement.Trivial()
	}
	b.area.Connect(from, to, req)
}

// TwoWay connects two nodes of the current area in both directions
func (b *Builder) TwoWay(x, y *world.Node, req requirement.Requirement) {
	b.Link(x, y, req)
	b.Link(y, x, req)
}

// Finalize finalizes the game
func (b *Builder) Finalize() (*world.Game, error) {
	if err := b.Game.Finalize(); err != nil {
		return nil, fmt.Errorf("fixture %s: %w", b.Game.Name, err)
	}
	return b.Game, nil
}

// Has is shorthand for a single positive requirement
func Has(r *resource.Info, amount int) requirement.Requirement {
	return requirement.Resource{Resource: r, Amount: amount}
}

// Lacks is shorthand for a negated requirement
func Lacks(r *resource.Info, amount int) requirement.Requirement {
	return requirement.Resource{Resource: r, Amount: amount, Negate: true}
}

// All is shorthand for an And
func All(items ...requirement.Requirement) requirement.Requirement {
	return requirement.And{Items: items}
}

// Any is shorthand for an Or
func Any(items ...requirement.Requirement) requirement.Requirement {
	return requirement.Or{Items: items}
}

var registry = map[string]func() (*world.Game, error){
	"bomb":       BombGame,
	"power-bomb": PowerBombGame,
	"station":    StationGame,
}

// ByName builds one of the built-in games
func ByName(name string) (*world.Game, error) {
	build, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown built-in game %q", name)
	}
	return build()
}

// Names returns the names of the built-in games
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
