package requirement

// SAT check for requirement formulas. Each distinct threshold "held(r) ≥ n"
// becomes one variable; thresholds of the same resource are chained by
// implication so that "r ≥ 2" forces "r ≥ 1". Negated requirements are the
// negation of their threshold variable.

import (
	"sort"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"rando/pkg/engine/resource"
)

type threshold struct {
	res    *resource.Info
	amount int
}

type formulaBuilder struct {
	c         *logic.C
	templates Templates
	vars      map[threshold]z.Lit
}

func newFormulaBuilder(templates Templates) *formulaBuilder {
	return &formulaBuilder{
		c:         logic.NewC(),
		templates: templates,
		vars:      make(map[threshold]z.Lit),
	}
}

func (b *formulaBuilder) build(req Requirement, visiting []string) z.Lit {
	switch r := req.(type) {
	case Resource:
		// damage can always be survived by some amount of energy
		if r.IsDamage() {
			return b.c.T
		}
		if r.Amount <= 0 {
			if r.Negate {
				return b.c.F
			}
			return b.c.T
		}
		lit := b.variable(r.Resource, r.Amount)
		if r.Negate {
			return lit.Not()
		}
		return lit
	case And:
		if len(r.Items) == 0 {
			return b.c.T
		}
		lits := make([]z.Lit, 0, len(r.Items))
		for _, it := range r.Items {
			lits = append(lits, b.build(it, visiting))
		}
		return b.c.Ands(lits...)
	case Or:
		if len(r.Items) == 0 {
			return b.c.F
		}
		lits := make([]z.Lit, 0, len(r.Items))
		for _, it := range r.Items {
			lits = append(lits, b.build(it, visiting))
		}
		return b.c.Ors(lits...)
	case Template:
		for _, v := range visiting {
			if v == r.Name {
				return b.c.F
			}
		}
		target, ok := b.templates[r.Name]
		if !ok {
			return b.c.F
		}
		return b.build(target, append(visiting, r.Name))
	}
	return b.c.F
}

func (b *formulaBuilder) variable(res *resource.Info, amount int) z.Lit {
	key := threshold{res, amount}
	if lit, ok := b.vars[key]; ok {
		return lit
	}
	lit := b.c.Lit()
	b.vars[key] = lit
	return lit
}

// addThresholdClauses chains thresholds of each resource and forbids those
// above its capacity.
func (b *formulaBuilder) addThresholdClauses(g *gini.Gini) {
	byResource := make(map[*resource.Info][]int)
	for key := range b.vars {
		byResource[key.res] = append(byResource[key.res], key.amount)
	}
	for res, amounts := range byResource {
		sort.Ints(amounts)
		for i, amount := range amounts {
			lit := b.vars[threshold{res, amount}]
			if res.MaxCapacity > 0 && amount > res.MaxCapacity {
				g.Add(lit.Not())
				g.Add(0)
			}
			if i > 0 {
				// r ≥ amounts[i] implies r ≥ amounts[i-1]
				g.Add(lit.Not())
				g.Add(b.vars[threshold{res, amounts[i-1]}])
				g.Add(0)
			}
		}
	}
}

// Satisfiable reports whether some combination of resource amounts satisfies
// the requirement. It is a static check: it ignores energy and says nothing
// about whether the resources can be obtained.
func Satisfiable(req Requirement, templates Templates) bool {
	b := newFormulaBuilder(templates)
	formula := b.build(req, nil)

	g := gini.New()
	b.c.ToCnf(g)
	b.addThresholdClauses(g)
	g.Assume(formula)
	return g.Solve() == 1
}
