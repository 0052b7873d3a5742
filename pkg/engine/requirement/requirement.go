// Package requirement provides boolean formulas over resource thresholds and
// their normalized disjunction-of-conjunctions form.
package requirement

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"rando/pkg/engine/resource"
)

// Requirement is a node of an immutable boolean formula. The set of variants
// is closed: Resource, And, Or and Template.
type Requirement interface {
	// Key returns a canonical string that identifies the formula structurally.
	Key() string
	String() string
	isRequirement()
}

// Templates maps template names to the formula they stand for.
type Templates map[string]Requirement

// Resource requires Amount of a resource. With Negate set the requirement
// holds while the amount held is below Amount. For damage resources Amount is
// the damage taken before reductions.
type Resource struct {
	Resource *resource.Info
	Amount   int
	Negate   bool
}

// And holds when every item holds.
type And struct {
	Items   []Requirement
	Comment string
}

// Or holds when any item holds.
type Or struct {
	Items   []Requirement
	Comment string
}

// Template refers to a named formula, inlined before solving.
type Template struct {
	Name string
}

func (Resource) isRequirement() {}
func (And) isRequirement()      {}
func (Or) isRequirement()       {}
func (Template) isRequirement() {}

// Trivial returns the requirement that always holds
func Trivial() Requirement { return And{} }

// Impossible returns the requirement that never holds
func Impossible() Requirement { return Or{} }

// IsDamage returns true for damage requirements
func (r Resource) IsDamage() bool {
	return r.Resource != nil && r.Resource.Kind == resource.KindDamage
}

// Damage returns the energy this requirement costs with the held resources
func (r Resource) Damage(held resource.Collection, db *resource.Database) int {
	if !r.IsDamage() {
		return 0
	}
	return db.ScaledDamage(r.Resource, r.Amount, held)
}

// Satisfied reports whether the requirement holds for the held resources and energy
func (r Resource) Satisfied(held resource.Collection, energy int, db *resource.Database) bool {
	if r.IsDamage() {
		return energy > r.Damage(held, db)
	}
	if r.Negate {
		return held.Get(r.Resource) < r.Amount
	}
	return held.Get(r.Resource) >= r.Amount
}

// Key implements Requirement
func (r Resource) Key() string {
	op := ">="
	if r.Negate {
		op = "<"
	}
	return strconv.Itoa(int(r.Resource.Kind)) + "/" + strconv.Itoa(r.Resource.Index) + op + strconv.Itoa(r.Amount)
}

func (r Resource) String() string {
	switch {
	case r.IsDamage():
		return fmt.Sprintf("%s %d", r.Resource, r.Amount)
	case r.Negate:
		return fmt.Sprintf("%s < %d", r.Resource, r.Amount)
	case r.Amount == 1:
		return r.Resource.String()
	default:
		return fmt.Sprintf("%s ≥ %d", r.Resource, r.Amount)
	}
}

func (r Resource) less(o Resource) bool {
	if r.Resource != o.Resource {
		return r.Resource.Key().Less(o.Resource.Key())
	}
	if r.Negate != o.Negate {
		return !r.Negate
	}
	return r.Amount < o.Amount
}

func joinKeys(op string, items []Requirement) string {
	keys := make([]string, len(items))
	for i, it := range items {
		keys[i] = it.Key()
	}
	sort.Strings(keys)
	return op + "(" + strings.Join(keys, ",") + ")"
}

func joinStrings(sep string, items []Requirement) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return strings.Join(parts, sep)
}

// Key implements Requirement
func (a And) Key() string { return joinKeys("and", a.Items) }

func (a And) String() string {
	if len(a.Items) == 0 {
		return "Trivial"
	}
	return "(" + joinStrings(" and ", a.Items) + ")"
}

// Key implements Requirement
func (o Or) Key() string { return joinKeys("or", o.Items) }

func (o Or) String() string {
	if len(o.Items) == 0 {
		return "Impossible"
	}
	return "(" + joinStrings(" or ", o.Items) + ")"
}

// Key implements Requirement
func (t Template) Key() string { return "tpl(" + t.Name + ")" }

func (t Template) String() string { return "Template " + t.Name }

// Satisfied evaluates an expanded requirement with short circuiting. Damage
// is deducted from the energy as the items of an And are checked. An
// unexpanded Template never holds.
func Satisfied(req Requirement, held resource.Collection, energy int, db *resource.Database) bool {
	_, ok := satisfied(req, held, energy, db)
	return ok
}

// satisfied returns the energy left after the requirement and whether it held
func satisfied(req Requirement, held resource.Collection, energy int, db *resource.Database) (int, bool) {
	switch r := req.(type) {
	case Resource:
		if !r.Satisfied(held, energy, db) {
			return energy, false
		}
		return energy - r.Damage(held, db), true
	case And:
		for _, item := range r.Items {
			var ok bool
			if energy, ok = satisfied(item, held, energy, db); !ok {
				return energy, false
			}
		}
		return energy, true
	case Or:
		for _, item := range r.Items {
			if left, ok := satisfied(item, held, energy, db); ok {
				return left, true
			}
		}
		return energy, false
	case Template:
		return energy, false
	default:
		panic(fmt.Sprintf("requirement: unknown variant %T", req))
	}
}

// Expand inlines every template reference. Unknown templates become Impossible.
func Expand(req Requirement, templates Templates) Requirement {
	return expand(req, templates, nil)
}

func expand(req Requirement, templates Templates, visiting []string) Requirement {
	switch r := req.(type) {
	case Resource:
		return r
	case And:
		items := make([]Requirement, len(r.Items))
		for i, it := range r.Items {
			items[i] = expand(it, templates, visiting)
		}
		return And{Items: items, Comment: r.Comment}
	case Or:
		items := make([]Requirement, len(r.Items))
		for i, it := range r.Items {
			items[i] = expand(it, templates, visiting)
		}
		return Or{Items: items, Comment: r.Comment}
	case Template:
		target, ok := templates[r.Name]
		if !ok {
			return Impossible()
		}
		for _, v := range visiting {
			if v == r.Name {
				return Impossible()
			}
		}
		return expand(target, templates, append(visiting, r.Name))
	default:
		panic(fmt.Sprintf("requirement: unknown variant %T", req))
	}
}

// ValidateTemplates checks that every template reference resolves and that
// no template refers back to itself.
func ValidateTemplates(templates Templates) error {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := validateRefs(templates[name], templates, []string{name}); err != nil {
			return fmt.Errorf("template %q: %w", name, err)
		}
	}
	return nil
}

// ValidateRefs checks that every template referenced by req exists and is acyclic
func ValidateRefs(req Requirement, templates Templates) error {
	return validateRefs(req, templates, nil)
}

func validateRefs(req Requirement, templates Templates, visiting []string) error {
	switch r := req.(type) {
	case Resource:
		if r.Resource == nil {
			return fmt.Errorf("resource requirement without resource")
		}
		return nil
	case And:
		for _, it := range r.Items {
			if err := validateRefs(it, templates, visiting); err != nil {
				return err
			}
		}
	case Or:
		for _, it := range r.Items {
			if err := validateRefs(it, templates, visiting); err != nil {
				return err
			}
		}
	case Template:
		for _, v := range visiting {
			if v == r.Name {
				return fmt.Errorf("template cycle through %q", r.Name)
			}
		}
		target, ok := templates[r.Name]
		if !ok {
			return fmt.Errorf("unknown template %q", r.Name)
		}
		return validateRefs(target, templates, append(visiting, r.Name))
	}
	return nil
}
