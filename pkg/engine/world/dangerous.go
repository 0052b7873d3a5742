package world

import (
	"sort"

	"rando/pkg/engine/requirement"
	"rando/pkg/engine/resource"
)

// DangerousResources returns the resources that some requirement of the game
// needs negated. Collecting one of them may close a path that was open.
func (g *Game) DangerousResources() []*resource.Info {
	g.dangerOnce.Do(g.computeDangerous)
	return g.dangerous
}

// IsDangerous returns true if r is in DangerousResources
func (g *Game) IsDangerous(r *resource.Info) bool {
	g.dangerOnce.Do(g.computeDangerous)
	return g.dangerSet[r]
}

func (g *Game) computeDangerous() {
	g.dangerSet = make(map[*resource.Info]bool)
	add := func(s requirement.Set) {
		for _, r := range s.Dangerous() {
			g.dangerSet[r] = true
		}
	}
	for _, n := range g.nodes {
		add(n.collectSet)
		add(n.leaveSet)
		for _, c := range n.Area.ConnectionsFrom(n) {
			add(c.set)
		}
	}
	for _, w := range g.Weaknesses {
		add(w.set)
	}

	g.dangerous = make([]*resource.Info, 0, len(g.dangerSet))
	for r := range g.dangerSet {
		g.dangerous = append(g.dangerous, r)
	}
	sort.Slice(g.dangerous, func(i, j int) bool {
		return g.dangerous[i].Key().Less(g.dangerous[j].Key())
	})
}
