package setup

import (
	"fmt"
	"math/rand"

	"rando/pkg/engine/world"
	"rando/pkg/game/patches"
)

// ShuffleTeleporters connects the game's teleporters in random pairs. Each
// pair is linked both ways and no teleporter is paired with itself.
func ShuffleTeleporters(rng *rand.Rand, p *patches.Patches) (*patches.Patches, error) {
	teleporters := p.Game().Teleporters()
	if len(teleporters)%2 != 0 {
		return nil, fmt.Errorf("cannot pair %d teleporters", len(teleporters))
	}

	candidates := make([]*world.Node, len(teleporters))
	copy(candidates, teleporters)
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	for i := 0; i < len(candidates); i += 2 {
		a, b := candidates[i], candidates[i+1]
		p = p.WithDockConnection(a, b).WithDockConnection(b, a)
	}
	return p, nil
}

// TeleporterPairs returns the destination of every teleporter with the
// patches applied
func TeleporterPairs(p *patches.Patches) map[*world.Node]*world.Node {
	out := make(map[*world.Node]*world.Node)
	for _, n := range p.Game().Teleporters() {
		if target, ok := p.DockConnectionFor(n); ok {
			out[n] = target
		} else {
			out[n] = n.DefaultDockTarget()
		}
	}
	return out
}
