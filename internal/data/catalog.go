package data

import (
	"fmt"
	"os"
	"sort"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/fleetsim/fleetsim/internal/fleet"
)

// AmmoTemplate is one ammo type offered by the shop.
type AmmoTemplate struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	UnitPrice      uint   `yaml:"unit_price"`
	StoragePerUnit uint   `yaml:"storage_per_unit"`
	Loaded         uint   `yaml:"loaded"`  // units loaded on delivery
	Reserve        uint   `yaml:"reserve"` // units in reserve on delivery
}

// WeaponTemplate is one weapon model. Ammo references an AmmoTemplate id.
type WeaponTemplate struct {
	ID         string  `yaml:"id"`
	Name       string  `yaml:"name"`
	Class      string  `yaml:"class"` // heavy | light
	Ammo       string  `yaml:"ammo"`
	Damage     uint    `yaml:"damage"`
	MaxAmmo    uint    `yaml:"max_ammo"`
	Range      float64 `yaml:"range"`
	FireRate   uint    `yaml:"fire_rate"`
	ReloadTime uint    `yaml:"reload_time"`
	Price      uint    `yaml:"price"`

	class fleet.WeaponClass
}

// PlaneTemplate is one plane model. Ammo references an AmmoTemplate id.
type PlaneTemplate struct {
	ID              string  `yaml:"id"`
	Name            string  `yaml:"name"`
	Role            string  `yaml:"role"` // fighter | storm_trooper
	Ammo            string  `yaml:"ammo"`
	Damage          uint    `yaml:"damage"`
	Health          uint    `yaml:"health"`
	Speed           float64 `yaml:"speed"`
	MaxAmmo         uint    `yaml:"max_ammo"`
	FuelCapacity    uint    `yaml:"fuel_capacity"`
	FuelConsumption uint    `yaml:"fuel_consumption"`
	RefillFuel      uint    `yaml:"refill_fuel"`
	Range           float64 `yaml:"range"`
	Price           uint    `yaml:"price"`

	role fleet.PlaneRole
}

// ShipTemplate is one hull model with an optional factory loadout of weapon
// and plane template ids.
type ShipTemplate struct {
	ID           string        `yaml:"id"`
	Name         string        `yaml:"name"`
	Hull         string        `yaml:"hull"` // ship | cruiser | carrier | attack_carrier
	Captain      fleet.Captain `yaml:"captain"`
	Speed        float64       `yaml:"speed"`
	Health       uint          `yaml:"health"`
	Price        uint          `yaml:"price"`
	WeaponSlots  int           `yaml:"weapon_slots"`
	StorageSpace uint          `yaml:"storage_space"`
	PlaneSlots   int           `yaml:"plane_slots"`
	Weapons      []string      `yaml:"weapons"`
	Planes       []string      `yaml:"planes"`

	hull fleet.Hull
}

type catalogFile struct {
	Ammo    []*AmmoTemplate   `yaml:"ammo"`
	Weapons []*WeaponTemplate `yaml:"weapons"`
	Planes  []*PlaneTemplate  `yaml:"planes"`
	Ships   []*ShipTemplate   `yaml:"ships"`
}

// Catalog holds every unit template indexed by id.
type Catalog struct {
	ammo    map[string]*AmmoTemplate
	weapons map[string]*WeaponTemplate
	planes  map[string]*PlaneTemplate
	ships   map[string]*ShipTemplate
}

// LoadCatalog loads unit templates from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := ParseCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes and validates catalog YAML. Every problem found is
// reported, not only the first.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{
		ammo:    make(map[string]*AmmoTemplate, len(f.Ammo)),
		weapons: make(map[string]*WeaponTemplate, len(f.Weapons)),
		planes:  make(map[string]*PlaneTemplate, len(f.Planes)),
		ships:   make(map[string]*ShipTemplate, len(f.Ships)),
	}
	var errs error
	for _, a := range f.Ammo {
		errs = multierr.Append(errs, index(c.ammo, "ammo", a.ID, a))
		if a.Name == "" {
			a.Name = a.ID
		}
	}
	for _, w := range f.Weapons {
		errs = multierr.Append(errs, index(c.weapons, "weapon", w.ID, w))
		if w.Name == "" {
			w.Name = w.ID
		}
		cls, err := fleet.ParseWeaponClass(w.Class)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("weapon %s: %w", w.ID, err))
		}
		w.class = cls
	}
	for _, p := range f.Planes {
		errs = multierr.Append(errs, index(c.planes, "plane", p.ID, p))
		if p.Name == "" {
			p.Name = p.ID
		}
		role, err := fleet.ParsePlaneRole(p.Role)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("plane %s: %w", p.ID, err))
		}
		p.role = role
	}
	for _, s := range f.Ships {
		errs = multierr.Append(errs, index(c.ships, "ship", s.ID, s))
		if s.Name == "" {
			s.Name = s.ID
		}
		hull, err := fleet.ParseHull(s.Hull)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("ship %s: %w", s.ID, err))
		}
		s.hull = hull
	}
	if errs != nil {
		return nil, errs
	}
	if err := c.validateRefs(); err != nil {
		return nil, err
	}
	return c, nil
}

func index[T any](m map[string]*T, kind, id string, v *T) error {
	if id == "" {
		return fmt.Errorf("%s with empty id: %w", kind, fleet.ErrInvalidArgument)
	}
	if _, dup := m[id]; dup {
		return fmt.Errorf("%s %s: %w", kind, id, fleet.ErrDuplicateKey)
	}
	m[id] = v
	return nil
}

func (c *Catalog) validateRefs() error {
	var errs error
	for _, id := range sortedKeys(c.weapons) {
		w := c.weapons[id]
		if _, ok := c.ammo[w.Ammo]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("weapon %s: ammo %q: %w", id, w.Ammo, fleet.ErrNotFound))
		}
	}
	for _, id := range sortedKeys(c.planes) {
		p := c.planes[id]
		if _, ok := c.ammo[p.Ammo]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("plane %s: ammo %q: %w", id, p.Ammo, fleet.ErrNotFound))
		}
	}
	for _, id := range sortedKeys(c.ships) {
		s := c.ships[id]
		canWeapons := s.hull == fleet.HullCruiser || s.hull == fleet.HullAttackCarrier
		canPlanes := s.hull == fleet.HullCarrier || s.hull == fleet.HullAttackCarrier
		if len(s.Weapons) > 0 && !canWeapons {
			errs = multierr.Append(errs, fmt.Errorf("ship %s: %s cannot mount weapons: %w", id, s.hull, fleet.ErrCapabilityMismatch))
		}
		if len(s.Planes) > 0 && !canPlanes {
			errs = multierr.Append(errs, fmt.Errorf("ship %s: %s cannot carry planes: %w", id, s.hull, fleet.ErrCapabilityMismatch))
		}
		if s.WeaponSlots > 0 && len(s.Weapons) > s.WeaponSlots {
			errs = multierr.Append(errs, fmt.Errorf("ship %s: %d weapons for %d slots: %w", id, len(s.Weapons), s.WeaponSlots, fleet.ErrBayFull))
		}
		if s.PlaneSlots > 0 && len(s.Planes) > s.PlaneSlots {
			errs = multierr.Append(errs, fmt.Errorf("ship %s: %d planes for %d slots: %w", id, len(s.Planes), s.PlaneSlots, fleet.ErrBayFull))
		}
		for _, wid := range s.Weapons {
			w, ok := c.weapons[wid]
			if !ok {
				errs = multierr.Append(errs, fmt.Errorf("ship %s: weapon %q: %w", id, wid, fleet.ErrNotFound))
				continue
			}
			if w.class == fleet.Heavy && s.hull == fleet.HullAttackCarrier {
				errs = multierr.Append(errs, fmt.Errorf("ship %s: heavy weapon %s on %s: %w", id, wid, s.hull, fleet.ErrCapabilityMismatch))
			}
		}
		for _, pid := range s.Planes {
			if _, ok := c.planes[pid]; !ok {
				errs = multierr.Append(errs, fmt.Errorf("ship %s: plane %q: %w", id, pid, fleet.ErrNotFound))
			}
		}
	}
	return errs
}

func sortedKeys[T any](m map[string]*T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Ammo returns an ammo template by id, or nil if not found.
func (c *Catalog) Ammo(id string) *AmmoTemplate { return c.ammo[id] }

// Weapon returns a weapon template by id, or nil if not found.
func (c *Catalog) Weapon(id string) *WeaponTemplate { return c.weapons[id] }

// Plane returns a plane template by id, or nil if not found.
func (c *Catalog) Plane(id string) *PlaneTemplate { return c.planes[id] }

// Ship returns a ship template by id, or nil if not found.
func (c *Catalog) Ship(id string) *ShipTemplate { return c.ships[id] }

// Count returns the number of templates of each kind.
func (c *Catalog) Count() (ammo, weapons, planes, ships int) {
	return len(c.ammo), len(c.weapons), len(c.planes), len(c.ships)
}

// ShipIDs returns every ship template id in sorted order.
func (c *Catalog) ShipIDs() []string { return sortedKeys(c.ships) }
