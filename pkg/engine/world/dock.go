package world

import "rando/pkg/engine/requirement"

// DockWeakness is the requirement to pass through a dock of a given type.
// Patches may replace the weakness of any dock with another one of the game.
type DockWeakness struct {
	Name        string
	DockType    string
	Requirement requirement.Requirement

	set requirement.Set
}

// Set returns the normalized requirement of the weakness
func (w *DockWeakness) Set() requirement.Set {
	return w.set
}

func (w *DockWeakness) String() string {
	return w.DockType + " " + w.Name
}
