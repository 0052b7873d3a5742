package requirement

import (
	"testing"

	"rando/pkg/engine/resource"
)

type fixture struct {
	db      *resource.Database
	bomb    *resource.Info
	missile *resource.Info
	pb      *resource.Info
	varia   *resource.Info
	heat    *resource.Info
	trick   *resource.Info
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := resource.NewDatabase()
	f := &fixture{
		db:      db,
		bomb:    db.MustAdd(resource.KindItem, "Bomb", "Morph Ball Bomb", 1),
		missile: db.MustAdd(resource.KindItem, "Missile", "Missile", 10),
		pb:      db.MustAdd(resource.KindItem, "PowerBomb", "Power Bomb", 5),
		varia:   db.MustAdd(resource.KindItem, "Varia", "Varia Suit", 1),
		heat:    db.MustAdd(resource.KindDamage, "Heat", "Heat Damage", 0),
		trick:   db.MustAdd(resource.KindTrick, "BSJ", "Bomb Space Jump", 5),
	}
	db.Reductions[f.heat] = []resource.Reduction{{Inventory: f.varia, Multiplier: 0.1}}
	return f
}

func held(pairs ...any) resource.Collection {
	c := resource.NewCollection()
	for i := 0; i+1 < len(pairs); i += 2 {
		c.Add(pairs[i].(*resource.Info), pairs[i+1].(int))
	}
	return c
}

func TestSatisfied_ShortCircuitVariants(t *testing.T) {
	f := newFixture(t)
	req := Or{Items: []Requirement{
		Resource{Resource: f.bomb, Amount: 1},
		And{Items: []Requirement{
			Resource{Resource: f.missile, Amount: 5},
			Resource{Resource: f.pb, Amount: 1, Negate: true},
		}},
	}}

	tests := []struct {
		name string
		held resource.Collection
		want bool
	}{
		{"nothing", held(), false},
		{"bomb", held(f.bomb, 1), true},
		{"missiles", held(f.missile, 5), true},
		{"missiles with power bomb", held(f.missile, 5, f.pb, 1), false},
		{"too few missiles", held(f.missile, 4), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Satisfied(req, tt.held, 99, f.db); got != tt.want {
				t.Errorf("Satisfied = %v, want %v", got, tt.want)
			}
			if got := AsSet(req, nil).Satisfied(tt.held, 99, f.db); got != tt.want {
				t.Errorf("AsSet().Satisfied = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSatisfied_DamageUsesReductionAndEnergy(t *testing.T) {
	f := newFixture(t)
	req := Resource{Resource: f.heat, Amount: 150}

	if Satisfied(req, held(), 99, f.db) {
		t.Error("150 heat with 99 energy and no suit should fail")
	}
	if !Satisfied(req, held(f.varia, 1), 99, f.db) {
		t.Error("150 heat reduced to 15 should pass with 99 energy")
	}
	and := And{Items: []Requirement{
		Resource{Resource: f.heat, Amount: 60},
		Resource{Resource: f.heat, Amount: 60},
	}}
	if Satisfied(and, held(), 99, f.db) {
		t.Error("two 60 damage requirements must be paid in sequence with 99 energy")
	}
	if !Satisfied(and, held(), 150, f.db) {
		t.Error("two 60 damage requirements should pass with 150 energy")
	}
}

func TestTrivialAndImpossible(t *testing.T) {
	f := newFixture(t)
	for _, h := range []resource.Collection{held(), held(f.bomb, 1, f.pb, 5)} {
		if !Satisfied(Trivial(), h, 0, f.db) || !TrivialSet().Satisfied(h, 0, f.db) {
			t.Error("trivial not satisfied")
		}
		if Satisfied(Impossible(), h, 999, f.db) || ImpossibleSet().Satisfied(h, 999, f.db) {
			t.Error("impossible satisfied")
		}
	}
	if !AsSet(Trivial(), nil).IsTrivial() {
		t.Error("AsSet(Trivial) not trivial")
	}
	if !AsSet(Impossible(), nil).IsImpossible() {
		t.Error("AsSet(Impossible) not impossible")
	}
}

func TestExpand_TemplatesInlined(t *testing.T) {
	f := newFixture(t)
	templates := Templates{
		"Can Use Bombs": Resource{Resource: f.bomb, Amount: 1},
		"Can Lay Bomb Jump": And{Items: []Requirement{
			Template{Name: "Can Use Bombs"},
			Resource{Resource: f.trick, Amount: 2},
		}},
	}
	req := Template{Name: "Can Lay Bomb Jump"}
	if err := ValidateTemplates(templates); err != nil {
		t.Fatalf("ValidateTemplates: %v", err)
	}
	expanded := Expand(req, templates)
	if !Satisfied(expanded, held(f.bomb, 1, f.trick, 2), 99, f.db) {
		t.Error("expanded template not satisfied by bomb + trick 2")
	}
	if Satisfied(req, held(f.bomb, 1, f.trick, 2), 99, f.db) {
		t.Error("unexpanded template should never hold")
	}
	if got := AsSet(req, templates).String(); got != "Morph Ball Bomb, Bomb Space Jump ≥ 2" {
		t.Errorf("AsSet(template) = %q", got)
	}
}

func TestValidateTemplates_Cycle(t *testing.T) {
	templates := Templates{
		"A": Template{Name: "B"},
		"B": Or{Items: []Requirement{Template{Name: "A"}}},
	}
	if err := ValidateTemplates(templates); err == nil {
		t.Error("ValidateTemplates(cycle) = nil, want error")
	}
	if err := ValidateRefs(Template{Name: "missing"}, templates); err == nil {
		t.Error("ValidateRefs(missing) = nil, want error")
	}
	if !AsSet(Template{Name: "A"}, templates).IsImpossible() {
		t.Error("cyclic template should flatten to impossible")
	}
}

func TestKey_StructuralIdentity(t *testing.T) {
	f := newFixture(t)
	a := And{Items: []Requirement{Resource{Resource: f.bomb, Amount: 1}, Resource{Resource: f.missile, Amount: 2}}}
	b := And{Items: []Requirement{Resource{Resource: f.missile, Amount: 2}, Resource{Resource: f.bomb, Amount: 1}}}
	if a.Key() != b.Key() {
		t.Errorf("keys differ for reordered and: %q vs %q", a.Key(), b.Key())
	}
	o := Or{Items: a.Items}
	if a.Key() == o.Key() {
		t.Error("and/or share a key")
	}
}

func TestMemo_CachesBySetKey(t *testing.T) {
	f := newFixture(t)
	m := NewMemo(nil, 16)
	req := And{Items: []Requirement{Resource{Resource: f.bomb, Amount: 1}}}
	first := m.AsSet(req)
	second := m.AsSet(And{Items: []Requirement{Resource{Resource: f.bomb, Amount: 1}}})
	if first.Key() != second.Key() {
		t.Errorf("memo returned different sets: %q vs %q", first.Key(), second.Key())
	}
	hits, _ := m.Stats()
	if hits == 0 {
		t.Error("second AsSet of an equal formula did not hit the memo")
	}
}

func TestSatisfiable(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		req  Requirement
		want bool
	}{
		{"trivial", Trivial(), true},
		{"impossible", Impossible(), false},
		{"bomb", Resource{Resource: f.bomb, Amount: 1}, true},
		{"bomb and not bomb", And{Items: []Requirement{
			Resource{Resource: f.bomb, Amount: 1},
			Resource{Resource: f.bomb, Amount: 1, Negate: true},
		}}, false},
		{"two missiles and fewer than one", And{Items: []Requirement{
			Resource{Resource: f.missile, Amount: 2},
			Resource{Resource: f.missile, Amount: 1, Negate: true},
		}}, false},
		{"fewer than three and at least two", And{Items: []Requirement{
			Resource{Resource: f.missile, Amount: 2},
			Resource{Resource: f.missile, Amount: 3, Negate: true},
		}}, true},
		{"over capacity", Resource{Resource: f.bomb, Amount: 2}, false},
		{"or rescues contradiction", Or{Items: []Requirement{
			And{Items: []Requirement{
				Resource{Resource: f.bomb, Amount: 1},
				Resource{Resource: f.bomb, Amount: 1, Negate: true},
			}},
			Resource{Resource: f.heat, Amount: 50},
		}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Satisfiable(tt.req, nil); got != tt.want {
				t.Errorf("Satisfiable(%s) = %v, want %v", tt.req, got, tt.want)
			}
		})
	}
}
