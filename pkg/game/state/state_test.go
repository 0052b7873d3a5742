package state

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"rando/pkg/engine/resource"
	"rando/pkg/engine/world"
	"rando/pkg/game/fixtures"
	"rando/pkg/game/patches"
)

func bombGame(t *testing.T) (*world.Game, *world.PickupEntry) {
	t.Helper()
	g, err := fixtures.BombGame()
	if err != nil {
		t.Fatalf("BombGame: %v", err)
	}
	return g, g.Pool[0]
}

func TestInitial(t *testing.T) {
	g, _ := bombGame(t)
	s := Initial(patches.New(g, 0))
	if s.Node != g.StartNode() {
		t.Errorf("Node = %s, want %s", s.Node, g.StartNode())
	}
	if s.Energy != 99 {
		t.Errorf("Energy = %d, want 99", s.Energy)
	}
	if s.Previous != nil || !s.Safe {
		t.Error("initial state should be safe and have no parent")
	}
}

func TestActOnNode_CollectsAssignedPickup(t *testing.T) {
	g, bomb := bombGame(t)
	p, err := patches.New(g, 0).AssignPickups(patches.Assignment{Index: 0, Target: world.PickupTarget{Pickup: bomb}})
	if err != nil {
		t.Fatal(err)
	}
	s := Initial(p)
	l1 := g.PickupNode(0)
	if !s.CanCollect(l1) {
		t.Fatal("L1 should be collectable")
	}
	next := s.ActOnNode(l1, []*world.Node{s.Node, l1}, s.Energy)
	if next.CanCollect(l1) {
		t.Error("L1 should be collected")
	}
	bombInfo := bomb.Resources[0].Resource
	if !next.Resources.Has(bombInfo) {
		t.Error("bomb not granted")
	}
	if s.Resources.Has(bombInfo) {
		t.Error("parent state was modified")
	}
	if diff := cmp.Diff([]int{0}, next.CollectedPickupIndices()); diff != "" {
		t.Errorf("CollectedPickupIndices (-want +got):\n%s", diff)
	}
}

func TestAssignPickups_Retcon(t *testing.T) {
	g, bomb := bombGame(t)
	s := Initial(patches.New(g, 0))
	l1 := g.PickupNode(0)
	s = s.ActOnNode(l1, nil, s.Energy)

	bombInfo := bomb.Resources[0].Resource
	if s.Resources.Has(bombInfo) {
		t.Fatal("empty location should grant nothing")
	}
	assigned, err := s.AssignPickups(patches.Assignment{Index: 0, Target: world.PickupTarget{Pickup: bomb}})
	if err != nil {
		t.Fatalf("AssignPickups: %v", err)
	}
	if !assigned.Resources.Has(bombInfo) {
		t.Error("assigning to a collected index should grant the pickup")
	}
	if assigned.Previous != s.Previous {
		t.Error("retcon should not add a history step")
	}

	other, err := s.AssignPickups(patches.Assignment{Index: 1, Target: world.PickupTarget{Pickup: bomb}})
	if err != nil {
		t.Fatal(err)
	}
	if other.Resources.Has(bombInfo) {
		t.Error("assigning to an uncollected index should not grant the pickup")
	}

	foreign, err := s.AssignPickups(patches.Assignment{Index: 0, Target: world.PickupTarget{Pickup: bomb, Player: 1}})
	if err != nil {
		t.Fatal(err)
	}
	if foreign.Resources.Has(bombInfo) {
		t.Error("a pickup for another player should not be granted")
	}
	if !foreign.ReceivePickup(bomb).Resources.Has(bombInfo) {
		t.Error("ReceivePickup should grant the pickup")
	}
}

func TestEnergy_TanksAndHeal(t *testing.T) {
	g, err := fixtures.StationGame()
	if err != nil {
		t.Fatal(err)
	}
	var cell *world.PickupEntry
	for _, p := range g.Pool {
		if p.Category == "energy" {
			cell = p
		}
	}
	s := Initial(patches.New(g, 0))
	hurt := s.ActOnNode(g.PickupNode(1), nil, 40)
	if hurt.Energy != 40 {
		t.Errorf("Energy = %d, want 40", hurt.Energy)
	}
	tank := hurt.AssignPickupToStarting(cell)
	if tank.Energy != 140 || tank.MaximumEnergy() != 199 {
		t.Errorf("after tank Energy = %d max = %d, want 140 and 199", tank.Energy, tank.MaximumEnergy())
	}
	bunk := g.StartNode()
	healed := tank.ActOnNode(bunk, nil, 10)
	if healed.Energy != 199 {
		t.Errorf("heal Energy = %d, want 199", healed.Energy)
	}
}

func TestHistory(t *testing.T) {
	g, bomb := bombGame(t)
	p, _ := patches.New(g, 0).AssignPickups(
		patches.Assignment{Index: 0, Target: world.PickupTarget{Pickup: bomb}},
		patches.Assignment{Index: 1, Target: world.PickupTarget{Pickup: g.Junk}},
	)
	s := Initial(p)
	l1, l2 := g.PickupNode(0), g.PickupNode(1)
	s = s.ActOnNode(l1, []*world.Node{g.StartNode(), l1}, s.Energy)
	s = s.ActOnNode(l2, []*world.Node{l1, g.StartNode(), l2}, s.Energy)

	history := s.History()
	if len(history) != 2 {
		t.Fatalf("History len = %d, want 2", len(history))
	}
	if history[0].Node != l1 || history[1].Node != l2 {
		t.Errorf("History nodes = %s, %s", history[0].Node, history[1].Node)
	}
	want := []resource.Amount{
		{Resource: bomb.Resources[0].Resource, Amount: 1},
		{Resource: g.Resources.PickupIndex(0), Amount: 1},
	}
	if diff := cmp.Diff(want, history[0].Gained); diff != "" {
		t.Errorf("first step gained (-want +got):\n%s", diff)
	}
}
