package resource

import (
	"fmt"
	"math"
)

// Reduction lowers the damage of a damage resource while Inventory is held.
type Reduction struct {
	Inventory  *Info
	Multiplier float64
}

// EnergyConfig controls the energy (health) model used by damage requirements.
type EnergyConfig struct {
	Base       int   // energy with no tanks
	PerTank    int   // energy granted by each tank
	EnergyTank *Info // item counted as a tank, may be nil
}

// Database owns every resource of one game. It is only mutated while the game
// is being loaded; afterwards it is shared read-only between searches.
type Database struct {
	byKind     [kindCount][]*Info
	byName     [kindCount]map[string]*Info
	Reductions map[*Info][]Reduction
	Energy     EnergyConfig
}

// NewDatabase creates an empty database with a 99 energy base
func NewDatabase() *Database {
	db := &Database{
		Reductions: make(map[*Info][]Reduction),
		Energy:     EnergyConfig{Base: 99, PerTank: 100},
	}
	for i := range db.byName {
		db.byName[i] = make(map[string]*Info)
	}
	return db
}

// Add registers a new resource of the given kind. Short names are unique per kind.
func (db *Database) Add(kind Kind, shortName, longName string, maxCapacity int) (*Info, error) {
	if int(kind) >= kindCount {
		return nil, fmt.Errorf("invalid resource kind %d", kind)
	}
	if _, exists := db.byName[kind][shortName]; exists {
		return nil, fmt.Errorf("duplicate %s resource %q", kind, shortName)
	}
	r := &Info{
		Kind:        kind,
		Index:       len(db.byKind[kind]),
		ShortName:   shortName,
		LongName:    longName,
		MaxCapacity: maxCapacity,
	}
	db.byKind[kind] = append(db.byKind[kind], r)
	db.byName[kind][shortName] = r
	return r, nil
}

// MustAdd is Add for statically known resources; it panics on duplicates.
func (db *Database) MustAdd(kind Kind, shortName, longName string, maxCapacity int) *Info {
	r, err := db.Add(kind, shortName, longName, maxCapacity)
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns the resource of the given kind with the short name
func (db *Database) Get(kind Kind, shortName string) (*Info, error) {
	if int(kind) >= kindCount {
		return nil, fmt.Errorf("invalid resource kind %d", kind)
	}
	r, ok := db.byName[kind][shortName]
	if !ok {
		return nil, fmt.Errorf("unknown %s resource %q", kind, shortName)
	}
	return r, nil
}

// Find looks a short name up across all kinds, preferring earlier kinds.
func (db *Database) Find(shortName string) (*Info, bool) {
	for k := range db.byName {
		if r, ok := db.byName[k][shortName]; ok {
			return r, true
		}
	}
	return nil, false
}

// All returns the resources of a kind in index order
func (db *Database) All(kind Kind) []*Info {
	if int(kind) >= kindCount {
		return nil
	}
	return db.byKind[kind]
}

// PickupIndex returns the marker resource of a pickup location, creating it on first use.
func (db *Database) PickupIndex(index int) *Info {
	for len(db.byKind[KindPickupIndex]) <= index {
		n := len(db.byKind[KindPickupIndex])
		db.MustAdd(KindPickupIndex, fmt.Sprintf("pickup-%d", n), fmt.Sprintf("Pickup %d", n), 1)
	}
	return db.byKind[KindPickupIndex][index]
}

// HintMarker returns a new marker resource for a hint asset
func (db *Database) HintMarker(name string) *Info {
	if r, ok := db.byName[KindHintMarker][name]; ok {
		return r
	}
	return db.MustAdd(KindHintMarker, name, "Hint "+name, 1)
}

// DamageMultiplier returns the factor applied to damage of kind damage given
// the held resources. Multiple reductions compose multiplicatively.
func (db *Database) DamageMultiplier(damage *Info, held Collection) float64 {
	m := 1.0
	for _, red := range db.Reductions[damage] {
		if red.Inventory == nil || held.Has(red.Inventory) {
			m *= red.Multiplier
		}
	}
	return m
}

// ScaledDamage returns the damage dealt by amount units of the damage resource
func (db *Database) ScaledDamage(damage *Info, amount int, held Collection) int {
	return int(math.Ceil(float64(amount) * db.DamageMultiplier(damage, held)))
}

// MaximumEnergy returns the full energy for the held tanks
func (db *Database) MaximumEnergy(held Collection) int {
	e := db.Energy.Base
	if db.Energy.EnergyTank != nil {
		e += db.Energy.PerTank * held.Get(db.Energy.EnergyTank)
	}
	return e
}
