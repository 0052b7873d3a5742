// Package dataloader reads game descriptions from YAML and builds finalized
// world.Game values from them.
package dataloader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"rando/pkg/engine/requirement"
	"rando/pkg/engine/resource"
	"rando/pkg/engine/world"
)

// Error is a problem found at a location of the description, such as
// "regions[0].areas[2].connections[1]".
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return e.Path + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func errorAt(path string, format string, args ...any) error {
	return &Error{Path: path, Err: fmt.Errorf(format, args...)}
}

// ErrUnsatisfiable marks a requirement no combination of resources can meet
var ErrUnsatisfiable = errors.New("requirement can never be satisfied")

// LoadFile reads a game description from a file
func LoadFile(path string) (*world.Game, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Load reads a game description and returns the finalized game
func Load(r io.Reader) (*world.Game, error) {
	var doc gameDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding game: %w", err)
	}
	l := &loader{doc: doc}
	return l.build()
}

type loader struct {
	doc gameDoc
	g   *world.Game
}

func (l *loader) build() (*world.Game, error) {
	if l.doc.Name == "" {
		return nil, errorAt("name", "game has no name")
	}
	l.g = world.NewGame(l.doc.Name, resource.NewDatabase())

	steps := []func() error{
		l.resources,
		l.energy,
		l.reductions,
		l.templates,
		l.weaknesses,
		l.regions,
		l.pickups,
		l.starting,
		l.victory,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	if err := l.g.Finalize(); err != nil {
		return nil, fmt.Errorf("game %s: %w", l.g.Name, err)
	}
	return l.g, nil
}

func (l *loader) resources() error {
	db := l.g.Resources
	groups := []struct {
		kind resource.Kind
		path string
		docs []resourceDoc
	}{
		{resource.KindItem, "resources.items", l.doc.Resources.Items},
		{resource.KindEvent, "resources.events", l.doc.Resources.Events},
		{resource.KindTrick, "resources.tricks", l.doc.Resources.Tricks},
		{resource.KindDamage, "resources.damage", l.doc.Resources.Damage},
		{resource.KindVersion, "resources.version", l.doc.Resources.Version},
		{resource.KindMisc, "resources.misc", l.doc.Resources.Misc},
	}
	for _, group := range groups {
		for i, d := range group.docs {
			path := fmt.Sprintf("%s[%d]", group.path, i)
			if d.Short == "" {
				return errorAt(path, "resource has no short name")
			}
			capacity := d.Max
			if capacity == 0 && group.kind == resource.KindEvent {
				capacity = 1
			}
			if _, err := db.Add(group.kind, d.Short, d.Long, capacity); err != nil {
				return &Error{Path: path, Err: err}
			}
		}
	}
	return nil
}

func (l *loader) energy() error {
	db := l.g.Resources
	e := l.doc.Energy
	if e.Base != nil {
		db.Energy.Base = *e.Base
	}
	if e.PerTank != nil {
		db.Energy.PerTank = *e.PerTank
	}
	if e.Tank != "" {
		tank, err := db.Get(resource.KindItem, e.Tank)
		if err != nil {
			return &Error{Path: "energy.tank", Err: err}
		}
		db.Energy.EnergyTank = tank
	}
	return nil
}

func (l *loader) reductions() error {
	db := l.g.Resources
	for i, d := range l.doc.Reductions {
		path := fmt.Sprintf("reductions[%d]", i)
		damage, err := db.Get(resource.KindDamage, d.Damage)
		if err != nil {
			return &Error{Path: path, Err: err}
		}
		inventory, ok := db.Find(d.Inventory)
		if !ok {
			return errorAt(path, "unknown resource %q", d.Inventory)
		}
		if d.Multiplier < 0 {
			return errorAt(path, "negative multiplier %v", d.Multiplier)
		}
		db.Reductions[damage] = append(db.Reductions[damage], resource.Reduction{Inventory: inventory, Multiplier: d.Multiplier})
	}
	return nil
}

func (l *loader) templates() error {
	names := make([]string, 0, len(l.doc.Templates))
	for name := range l.doc.Templates {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		req, err := l.requirement("templates."+name, l.doc.Templates[name])
		if err != nil {
			return err
		}
		l.g.Templates[name] = req
	}
	if err := requirement.ValidateTemplates(l.g.Templates); err != nil {
		return &Error{Path: "templates", Err: err}
	}
	return nil
}

func (l *loader) weaknesses() error {
	for i, d := range l.doc.Weaknesses {
		path := fmt.Sprintf("weaknesses[%d]", i)
		if d.Name == "" {
			return errorAt(path, "weakness has no name")
		}
		if _, dup := l.g.Weaknesses[d.Name]; dup {
			return errorAt(path, "duplicate weakness %q", d.Name)
		}
		req, err := l.optional(path+".requirement", d.Requirement)
		if err != nil {
			return err
		}
		l.g.AddWeakness(&world.DockWeakness{Name: d.Name, DockType: d.Type, Requirement: req})
	}
	return nil
}

func (l *loader) regions() error {
	nextIndex := 0
	for ri, rd := range l.doc.Regions {
		rpath := fmt.Sprintf("regions[%d]", ri)
		if rd.Name == "" {
			return errorAt(rpath, "region has no name")
		}
		if l.g.Region(rd.Name) != nil {
			return errorAt(rpath, "duplicate region %q", rd.Name)
		}
		region := l.g.AddRegion(rd.Name)
		for ai, ad := range rd.Areas {
			apath := fmt.Sprintf("%s.areas[%d]", rpath, ai)
			if region.Area(ad.Name) != nil {
				return errorAt(apath, "duplicate area %q", ad.Name)
			}
			area := region.AddArea(ad.Name, ad.DefaultNode)
			for ni, nd := range ad.Nodes {
				npath := fmt.Sprintf("%s.nodes[%d]", apath, ni)
				if area.Node(nd.Name) != nil {
					return errorAt(npath, "duplicate node %q", nd.Name)
				}
				n, err := l.node(npath, nd, &nextIndex)
				if err != nil {
					return err
				}
				area.AddNode(n)
				if n.Kind == world.NodeHint {
					n.HintMarker = l.g.Resources.HintMarker(n.Identifier.String())
				}
			}
			for ci, cd := range ad.Connections {
				if err := l.connect(fmt.Sprintf("%s.connections[%d]", apath, ci), area, cd); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (l *loader) node(path string, d nodeDoc, nextIndex *int) (*world.Node, error) {
	if d.Name == "" {
		return nil, errorAt(path, "node has no name")
	}
	kind := world.NodeGeneric
	if d.Kind != "" {
		k, err := world.ParseNodeKind(d.Kind)
		if err != nil {
			return nil, &Error{Path: path, Err: err}
		}
		kind = k
	}
	n := &world.Node{Identifier: world.Identifier{Node: d.Name}, Kind: kind, Heal: d.Heal, Major: d.Major}

	switch kind {
	case world.NodePickup:
		if d.PickupIndex != nil {
			n.PickupIndex = *d.PickupIndex
		} else {
			n.PickupIndex = *nextIndex
		}
		*nextIndex = max(*nextIndex, n.PickupIndex+1)
	case world.NodeEvent:
		ev, err := l.g.Resources.Get(resource.KindEvent, d.Event)
		if err != nil {
			return nil, &Error{Path: path + ".event", Err: err}
		}
		n.Event = ev
	case world.NodeDock, world.NodeTeleporter:
		target, err := parseIdentifier(d.Target)
		if err != nil {
			return nil, &Error{Path: path + ".target", Err: err}
		}
		n.DockTarget = target
		if kind == world.NodeDock {
			w, ok := l.g.Weaknesses[d.Weakness]
			if !ok {
				return nil, errorAt(path+".weakness", "unknown dock weakness %q", d.Weakness)
			}
			n.DockWeakness = w
		}
	case world.NodeConfigurable:
		leave, err := l.optional(path+".leave", d.Leave)
		if err != nil {
			return nil, err
		}
		n.RequirementToLeave = leave
	}

	if d.Collect != nil {
		if kind != world.NodePickup && kind != world.NodeEvent {
			return nil, errorAt(path+".collect", "only pickup and event nodes have a collection requirement")
		}
		req, err := l.checked(path+".collect", *d.Collect)
		if err != nil {
			return nil, err
		}
		n.RequirementToCollect = req
	}
	return n, nil
}

func (l *loader) connect(path string, area *world.Area, d connectionDoc) error {
	from := area.Node(d.From)
	if from == nil {
		return errorAt(path+".from", "unknown node %q", d.From)
	}
	to := area.Node(d.To)
	if to == nil {
		return errorAt(path+".to", "unknown node %q", d.To)
	}
	if from == to {
		return errorAt(path, "node %q connects to itself", d.From)
	}
	req, err := l.optional(path+".requirement", d.Requirement)
	if err != nil {
		return err
	}
	area.Connect(from, to, req)
	if d.TwoWay {
		area.Connect(to, from, req)
	}
	return nil
}

func (l *loader) pickups() error {
	for i, d := range l.doc.Pickups {
		path := fmt.Sprintf("pickups[%d]", i)
		p, err := l.pickup(path, d)
		if err != nil {
			return err
		}
		count := 1
		if d.Count != nil {
			count = *d.Count
		}
		if count < 0 {
			return errorAt(path+".count", "negative count %d", count)
		}
		for i := 0; i < count; i++ {
			l.g.Pool = append(l.g.Pool, p)
		}
	}

	if l.doc.Junk.Name == "" {
		l.g.Junk = world.NewPickup("Nothing", "junk", false)
	} else {
		junk, err := l.pickup("junk", l.doc.Junk)
		if err != nil {
			return err
		}
		if junk.Progression {
			return errorAt("junk", "junk pickup cannot be progression")
		}
		l.g.Junk = junk
	}

	for i, d := range l.doc.Fixed {
		path := fmt.Sprintf("fixed[%d]", i)
		p := l.pickupNamed(d.Pickup)
		if p == nil {
			return errorAt(path+".pickup", "unknown pickup %q", d.Pickup)
		}
		if _, dup := l.g.Fixed[d.Index]; dup {
			return errorAt(path+".index", "pickup index %d fixed twice", d.Index)
		}
		l.g.Fixed[d.Index] = p
	}
	return nil
}

func (l *loader) pickupNamed(name string) *world.PickupEntry {
	if l.g.Junk != nil && l.g.Junk.Name == name {
		return l.g.Junk
	}
	for _, p := range l.g.Pool {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (l *loader) pickup(path string, d pickupDoc) (*world.PickupEntry, error) {
	if d.Name == "" {
		return nil, errorAt(path, "pickup has no name")
	}
	amounts, err := l.amounts(path+".resources", d.Resources)
	if err != nil {
		return nil, err
	}
	p := world.NewPickup(d.Name, d.Category, d.Progression, amounts...)
	if d.Probability.Multiplier != nil {
		p.Probability.Multiplier = *d.Probability.Multiplier
	}
	p.Probability.Offset = d.Probability.Offset
	return p, nil
}

func (l *loader) amounts(path string, docs []amountDoc) ([]resource.Amount, error) {
	var out []resource.Amount
	for i, d := range docs {
		r, ok := l.g.Resources.Find(d.Resource)
		if !ok {
			return nil, errorAt(fmt.Sprintf("%s[%d]", path, i), "unknown resource %q", d.Resource)
		}
		amount := 1
		if d.Amount != nil {
			amount = *d.Amount
		}
		if amount <= 0 {
			return nil, errorAt(fmt.Sprintf("%s[%d]", path, i), "amount must be positive, got %d", amount)
		}
		out = append(out, resource.Amount{Resource: r, Amount: amount})
	}
	return out, nil
}

func (l *loader) starting() error {
	amounts, err := l.amounts("starting_items", l.doc.Starting)
	if err != nil {
		return err
	}
	l.g.StartingResources = amounts

	start, err := parseIdentifier(l.doc.Start)
	if err != nil {
		return &Error{Path: "start", Err: err}
	}
	if !l.hasNode(start) {
		return errorAt("start", "unknown node %s", start)
	}
	l.g.Start = start
	return nil
}

func (l *loader) victory() error {
	if l.doc.Victory == nil {
		return errorAt("victory", "game has no victory condition")
	}
	req, err := l.checked("victory", *l.doc.Victory)
	if err != nil {
		return err
	}
	l.g.Victory = req
	return nil
}

func (l *loader) hasNode(id world.Identifier) bool {
	r := l.g.Region(id.Region)
	if r == nil {
		return false
	}
	a := r.Area(id.Area)
	return a != nil && a.Node(id.Node) != nil
}

func parseIdentifier(s string) (world.Identifier, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return world.Identifier{}, fmt.Errorf("identifier %q is not region/area/node", s)
	}
	return world.Identifier{Region: parts[0], Area: parts[1], Node: parts[2]}, nil
}
