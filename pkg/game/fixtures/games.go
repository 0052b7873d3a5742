package fixtures

import (
	"rando/pkg/engine/requirement"
	"rando/pkg/engine/resource"
	"rando/pkg/engine/world"
)

// BombGame has two locations. L1 is open, L2 needs the bomb and reaching it
// wins. The pool holds only the bomb.
func BombGame() (*world.Game, error) {
	b := NewBuilder("bomb")
	bomb := b.Item("Bomb", "Morph Ball Bomb", 1)
	b.Pickup(bomb, true, 1)

	b.Area("Main", "Hall", "Start")
	start := b.Generic("Start")
	l1 := b.Location("L1", true)
	l2 := b.Location("L2", true)
	b.TwoWay(start, l1, nil)
	b.Link(start, l2, Has(bomb, 1))
	b.Link(l2, start, nil)

	b.Game.Start = start.Identifier
	b.Game.Victory = Has(b.Game.Resources.PickupIndex(l2.PickupIndex), 1)
	return b.Finalize()
}

// PowerBombGame has a shortcut to the vault that closes once a power bomb is
// held. The power bomb sits in the pool alongside a missile.
func PowerBombGame() (*world.Game, error) {
	b := NewBuilder("power-bomb")
	pb := b.Item("PowerBomb", "Power Bomb", 1)
	missile := b.Item("Missile", "Missile", 1)
	b.Pickup(pb, true, 1)
	b.Pickup(missile, true, 1)

	b.Area("Main", "Hub", "Start")
	start := b.Generic("Start")
	storage := b.Location("Storage", true)
	exit := b.Generic("Exit")
	vault := b.Location("Vault", true)
	b.TwoWay(start, storage, nil)
	b.Link(start, exit, Lacks(pb, 1))
	b.Link(exit, start, nil)
	b.TwoWay(exit, vault, nil)

	b.Game.Start = start.Identifier
	b.Game.Victory = Has(b.Game.Resources.PickupIndex(vault.PickupIndex), 1)
	return b.Finalize()
}

// Station resources, exported for tests that need to name them
const (
	RedKeycard  = "RedKeycard"
	BlueKeycard = "BlueKeycard"
	Battery     = "Battery"
	HazardSuit  = "HazardSuit"
	PowerCell   = "PowerCell"
	Flashlight  = "Flashlight"
	VentCrawl   = "VentCrawl"
	Radiation   = "Radiation"
	Generator   = "GeneratorOnline"
	Escaped     = "Escaped"
)

// StationGame is a two deck station with keycard doors, a battery powered
// generator, a radiation flooded reactor and two CCTV terminals that can
// hold hints. The cargo lift between the Lab and the Reactor needs the red
// keycard on the Reactor side, so the Lab is behind the red card both ways.
func StationGame() (*world.Game, error) {
	b := NewBuilder("station")
	db := b.Game.Resources

	red := b.Item(RedKeycard, "Red Keycard", 1)
	blue := b.Item(BlueKeycard, "Blue Keycard", 1)
	battery := b.Item(Battery, "Battery", 2)
	suit := b.Item(HazardSuit, "Hazard Suit", 1)
	cell := b.Item(PowerCell, "Power Cell", 2)
	light := b.Item(Flashlight, "Flashlight", 1)
	vent := db.MustAdd(resource.KindTrick, VentCrawl, "Vent Crawl", 2)
	rad := db.MustAdd(resource.KindDamage, Radiation, "Radiation", 0)
	online := b.EventResource(Generator, "Generator Online")
	escaped := b.EventResource(Escaped, "Escaped")

	db.Reductions[rad] = []resource.Reduction{{Inventory: suit, Multiplier: 0.25}}
	db.Energy.EnergyTank = cell

	for _, p := range []*world.PickupEntry{
		b.Pickup(red, true, 1),
		b.Pickup(blue, true, 1),
		b.Pickup(suit, true, 1),
		b.Pickup(light, true, 1),
	} {
		p.Category = "major"
	}
	b.Pickup(battery, false, 2).Category = "component"
	cells := b.Pickup(cell, false, 2)
	cells.Category = "energy"
	cells.Probability = world.Probability{Multiplier: 0.5}

	b.Game.Templates["Can Survive Reactor"] = Any(
		requirement.Resource{Resource: rad, Amount: 150},
	)

	open := b.Game.AddWeakness(&world.DockWeakness{Name: "Open", DockType: "door", Requirement: requirement.Trivial()})
	redDoor := b.Game.AddWeakness(&world.DockWeakness{Name: "Red Door", DockType: "door", Requirement: Has(red, 1)})
	blueDoor := b.Game.AddWeakness(&world.DockWeakness{Name: "Blue Door", DockType: "door", Requirement: Has(blue, 1)})
	b.Game.AddWeakness(&world.DockWeakness{Name: "Power Door", DockType: "door", Requirement: Has(online, 1)})

	id := func(region, area, node string) world.Identifier {
		return world.Identifier{Region: region, Area: area, Node: node}
	}

	// Deck 1
	b.Area("Deck 1", "Crew Quarters", "Bunk")
	bunk := b.Generic("Bunk")
	bunk.Heal = true
	locker := b.Location("Locker", true)
	termA := b.Hint("Terminal A")
	quartersDoor := b.Dock("Door to Corridor", id("Deck 1", "Corridor", "Door to Quarters"), open)
	b.TwoWay(bunk, locker, nil)
	b.TwoWay(bunk, termA, nil)
	b.TwoWay(bunk, quartersDoor, nil)

	b.Area("Deck 1", "Corridor", "Door to Quarters")
	corridorDoor := b.Dock("Door to Quarters", id("Deck 1", "Crew Quarters", "Door to Corridor"), open)
	shelf := b.Location("Supply Shelf", false)
	labDoor := b.Dock("Door to Lab", id("Deck 1", "Lab", "Door to Corridor"), redDoor)
	liftUp := b.Teleporter("Lift Up", id("Deck 2", "Lift Lobby", "Lift Down"))
	ventNode := b.Generic("Vent")
	ventCache := b.Location("Vent Cache", false)
	b.TwoWay(corridorDoor, shelf, nil)
	b.TwoWay(corridorDoor, labDoor, nil)
	b.TwoWay(corridorDoor, liftUp, nil)
	b.Link(corridorDoor, ventNode, Has(vent, 1))
	b.Link(ventNode, corridorDoor, nil)
	b.TwoWay(ventNode, ventCache, nil)

	b.Area("Deck 1", "Lab", "Door to Corridor")
	labSide := b.Dock("Door to Corridor", id("Deck 1", "Corridor", "Door to Lab"), redDoor)
	bench := b.Location("Bench", true)
	fridge := b.Location("Sample Fridge", false)
	cargoUp := b.Teleporter("Cargo Lift", id("Deck 2", "Reactor", "Cargo Lift"))
	b.TwoWay(labSide, bench, nil)
	b.TwoWay(bench, fridge, Has(light, 1))
	b.TwoWay(labSide, cargoUp, nil)

	// Deck 2
	b.Area("Deck 2", "Lift Lobby", "Lift Down")
	liftDown := b.Teleporter("Lift Down", id("Deck 1", "Corridor", "Lift Up"))
	crate := b.Location("Crate", false)
	reactorDoor := b.Dock("Door to Reactor", id("Deck 2", "Reactor", "Door to Lobby"), blueDoor)
	genDoor := b.Dock("Door to Generator Room", id("Deck 2", "Generator Room", "Door to Lobby"), open)
	b.TwoWay(liftDown, crate, nil)
	b.TwoWay(liftDown, reactorDoor, nil)
	b.TwoWay(liftDown, genDoor, nil)

	b.Area("Deck 2", "Generator Room", "Door to Lobby")
	genSide := b.Dock("Door to Lobby", id("Deck 2", "Lift Lobby", "Door to Generator Room"), open)
	gen := b.Event("Generator", online)
	gen.RequirementToCollect = Has(battery, 2)
	toolbox := b.Location("Toolbox", true)
	b.TwoWay(genSide, gen, nil)
	b.TwoWay(genSide, toolbox, nil)

	b.Area("Deck 2", "Reactor", "Door to Lobby")
	reactorSide := b.Dock("Door to Lobby", id("Deck 2", "Lift Lobby", "Door to Reactor"), blueDoor)
	cargoDown := b.Teleporter("Cargo Lift", id("Deck 1", "Lab", "Cargo Lift"))
	reactorShelf := b.Location("Reactor Shelf", true)
	termB := b.Hint("Terminal B")
	core := b.Generic("Core Access")
	pod := b.Event("Escape Pod", escaped)
	b.TwoWay(reactorSide, cargoDown, Has(red, 1))
	b.TwoWay(reactorSide, termB, nil)
	b.TwoWay(reactorSide, reactorShelf, requirement.Resource{Resource: rad, Amount: 50})
	b.Link(reactorSide, core, All(Has(online, 1), requirement.Template{Name: "Can Survive Reactor"}))
	b.Link(core, reactorSide, requirement.Resource{Resource: rad, Amount: 50})
	b.TwoWay(core, pod, nil)

	b.Game.Start = bunk.Identifier
	b.Game.Victory = Has(escaped, 1)
	return b.Finalize()
}
