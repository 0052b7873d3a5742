package dataloader

import (
	"fmt"

	"rando/pkg/engine/requirement"
	"rando/pkg/engine/resource"
)

// optional converts a requirement that defaults to trivial when absent
func (l *loader) optional(path string, d *reqDoc) (requirement.Requirement, error) {
	if d == nil {
		return requirement.Trivial(), nil
	}
	return l.checked(path, *d)
}

// checked converts a requirement and rejects it when it can never hold.
// Requirements written as impossible are accepted as they are.
func (l *loader) checked(path string, d reqDoc) (requirement.Requirement, error) {
	req, err := l.requirement(path, d)
	if err != nil {
		return nil, err
	}
	if !d.Impossible && !requirement.Satisfiable(req, l.g.Templates) {
		return nil, &Error{Path: path, Err: ErrUnsatisfiable}
	}
	return req, nil
}

func (d reqDoc) forms() int {
	n := 0
	for _, set := range []bool{
		d.Resource != "",
		d.Damage != "",
		d.Not != nil,
		d.And != nil,
		d.Or != nil,
		d.Template != "",
		d.Trivial,
		d.Impossible,
	} {
		if set {
			n++
		}
	}
	return n
}

func (l *loader) requirement(path string, d reqDoc) (requirement.Requirement, error) {
	if n := d.forms(); n != 1 {
		return nil, errorAt(path, "requirement needs exactly one form, found %d", n)
	}
	switch {
	case d.Trivial:
		return requirement.Trivial(), nil
	case d.Impossible:
		return requirement.Impossible(), nil
	case d.Template != "":
		if _, ok := l.doc.Templates[d.Template]; !ok {
			return nil, errorAt(path, "unknown template %q", d.Template)
		}
		return requirement.Template{Name: d.Template}, nil
	case d.And != nil:
		items, err := l.items(path+".and", d.And)
		if err != nil {
			return nil, err
		}
		return requirement.And{Items: items, Comment: d.Comment}, nil
	case d.Or != nil:
		items, err := l.items(path+".or", d.Or)
		if err != nil {
			return nil, err
		}
		return requirement.Or{Items: items, Comment: d.Comment}, nil
	case d.Not != nil:
		inner, err := l.requirement(path+".not", *d.Not)
		if err != nil {
			return nil, err
		}
		r, ok := inner.(requirement.Resource)
		if !ok || r.IsDamage() {
			return nil, errorAt(path+".not", "only item resources can be negated")
		}
		r.Negate = !r.Negate
		return r, nil
	case d.Damage != "":
		res, err := l.g.Resources.Get(resource.KindDamage, d.Damage)
		if err != nil {
			return nil, &Error{Path: path, Err: err}
		}
		if d.Amount == nil || *d.Amount < 0 {
			return nil, errorAt(path, "damage %q needs a non-negative amount", d.Damage)
		}
		return requirement.Resource{Resource: res, Amount: *d.Amount}, nil
	}

	res, err := l.lookup(d)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	amount := 1
	if d.Amount != nil {
		amount = *d.Amount
	}
	if amount < 0 {
		return nil, errorAt(path, "negative amount %d", amount)
	}
	if res.Kind == resource.KindDamage {
		return nil, errorAt(path, "damage %q must use the damage form", d.Resource)
	}
	return requirement.Resource{Resource: res, Amount: amount, Negate: d.Negate}, nil
}

func (l *loader) items(path string, docs []reqDoc) ([]requirement.Requirement, error) {
	items := make([]requirement.Requirement, 0, len(docs))
	for i, d := range docs {
		req, err := l.requirement(fmt.Sprintf("%s[%d]", path, i), d)
		if err != nil {
			return nil, err
		}
		items = append(items, req)
	}
	return items, nil
}

// lookup finds the resource by short name, within one kind when given
func (l *loader) lookup(d reqDoc) (*resource.Info, error) {
	db := l.g.Resources
	if d.Kind != "" {
		kind, err := resource.ParseKind(d.Kind)
		if err != nil {
			return nil, err
		}
		if kind == resource.KindPickupIndex {
			return l.pickupIndex(d.Resource)
		}
		return db.Get(kind, d.Resource)
	}
	res, ok := db.Find(d.Resource)
	if !ok {
		return nil, fmt.Errorf("unknown resource %q", d.Resource)
	}
	return res, nil
}

// pickupIndex resolves "kind: pickup-index" references, written as the
// location's index
func (l *loader) pickupIndex(s string) (*resource.Info, error) {
	var index int
	if _, err := fmt.Sscanf(s, "%d", &index); err != nil || index < 0 {
		return nil, fmt.Errorf("invalid pickup index %q", s)
	}
	return l.g.Resources.PickupIndex(index), nil
}
