package world

import (
	"fmt"

	"rando/pkg/engine/resource"
)

// Probability tunes how likely a pickup is to be chosen by the filler. The
// weight of an action is scaled by Multiplier and then shifted by Offset.
type Probability struct {
	Multiplier float64
	Offset     float64
}

// DefaultProbability leaves weights untouched
var DefaultProbability = Probability{Multiplier: 1}

// PickupEntry is an item that can be placed at a pickup location.
type PickupEntry struct {
	Name        string
	Category    string
	Resources   []resource.Amount
	Progression bool
	Probability Probability
}

// NewPickup creates a pickup with the default probability
func NewPickup(name, category string, progression bool, resources ...resource.Amount) *PickupEntry {
	return &PickupEntry{
		Name:        name,
		Category:    category,
		Resources:   resources,
		Progression: progression,
		Probability: DefaultProbability,
	}
}

// Grants returns true if the pickup gives some amount of r
func (p *PickupEntry) Grants(r *resource.Info) bool {
	for _, a := range p.Resources {
		if a.Resource == r && a.Amount > 0 {
			return true
		}
	}
	return false
}

func (p *PickupEntry) String() string {
	if p == nil {
		return "Nothing"
	}
	return p.Name
}

// PickupTarget is a pickup destined for a player.
type PickupTarget struct {
	Pickup *PickupEntry
	Player int
}

func (t PickupTarget) String() string {
	return fmt.Sprintf("%s for player %d", t.Pickup, t.Player+1)
}
