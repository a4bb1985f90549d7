package fleet

import (
	"errors"
	"fmt"
	"sync"
)

// PlaneRole decides what a plane may attack.
type PlaneRole int

const (
	Fighter      PlaneRole = iota + 1 // planes only
	StormTrooper                      // ships only
)

func (r PlaneRole) String() string {
	switch r {
	case Fighter:
		return "fighter"
	case StormTrooper:
		return "storm_trooper"
	}
	return fmt.Sprintf("PlaneRole(%d)", int(r))
}

// ParsePlaneRole converts a catalog string to a PlaneRole.
func ParsePlaneRole(s string) (PlaneRole, error) {
	switch s {
	case "fighter":
		return Fighter, nil
	case "storm_trooper", "stormtrooper":
		return StormTrooper, nil
	}
	return 0, fmt.Errorf("plane role %q: %w", s, ErrInvalidArgument)
}

// Accepts reports whether the role may attack kind.
func (r PlaneRole) Accepts(kind TargetKind) bool {
	return (r == Fighter && kind == TargetPlane) || (r == StormTrooper && kind == TargetShip)
}

// PlaneSpec describes a plane at creation time.
type PlaneSpec struct {
	Name            string
	Role            PlaneRole
	Damage          uint
	Health          uint
	Speed           float64
	MaxAmmo         uint
	FuelCapacity    uint
	FuelCurrent     uint
	FuelConsumption uint // burned per sortie
	RefillFuel      uint // restored per refuel while embarked
	Position        Point
	Price           uint
	Range           float64
	Active          bool
}

// Plane is a mobile unit with its own ammo pool and fuel tank.
// Death (health 0) is terminal: the plane is deactivated and stays so.
type Plane struct {
	fireMu sync.Mutex // serializes this plane's attacks; taken before mu
	mu     sync.Mutex // guards health, activity, fuel, position

	name     string
	role     PlaneRole
	damage   uint
	speed    float64
	maxAmmo  uint
	price    uint
	rng      float64
	ammo     *Ammo
	fuelCap  uint
	fuelCons uint
	refill   uint

	health   uint
	active   bool
	fuel     uint
	position Point
}

// NewPlane binds a plane to its ammo pool.
func NewPlane(spec PlaneSpec, ammo *Ammo) (*Plane, error) {
	if ammo == nil {
		return nil, fmt.Errorf("plane %s: nil ammo: %w", spec.Name, ErrInvalidArgument)
	}
	if spec.Role != Fighter && spec.Role != StormTrooper {
		return nil, fmt.Errorf("plane %s: role %v: %w", spec.Name, spec.Role, ErrInvalidArgument)
	}
	return &Plane{
		name:     spec.Name,
		role:     spec.Role,
		damage:   spec.Damage,
		speed:    spec.Speed,
		maxAmmo:  spec.MaxAmmo,
		price:    spec.Price,
		rng:      spec.Range,
		ammo:     ammo,
		fuelCap:  spec.FuelCapacity,
		fuelCons: spec.FuelConsumption,
		refill:   spec.RefillFuel,
		health:   spec.Health,
		active:   spec.Active && spec.Health > 0,
		fuel:     min(spec.FuelCurrent, spec.FuelCapacity),
		position: spec.Position,
	}, nil
}

func (p *Plane) Name() string          { return p.name }
func (p *Plane) Role() PlaneRole       { return p.role }
func (p *Plane) Kind() TargetKind      { return TargetPlane }
func (p *Plane) Damage() uint          { return p.damage }
func (p *Plane) Speed() float64        { return p.speed }
func (p *Plane) MaxAmmo() uint         { return p.maxAmmo }
func (p *Plane) Price() uint           { return p.price }
func (p *Plane) Range() float64        { return p.rng }
func (p *Plane) Ammo() *Ammo           { return p.ammo }
func (p *Plane) FuelCapacity() uint    { return p.fuelCap }
func (p *Plane) FuelConsumption() uint { return p.fuelCons }
func (p *Plane) RefillFuel() uint      { return p.refill }

// Cost is the purchase price; loaded ammo is not included.
func (p *Plane) Cost() uint { return p.price }

func (p *Plane) Health() uint {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.health
}

func (p *Plane) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// SetActive toggles readiness. A destroyed plane cannot be re-activated.
func (p *Plane) SetActive(active bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.health == 0 {
		return
	}
	p.active = active
}

// Alive reports whether the plane still has health.
func (p *Plane) Alive() bool {
	return p.Health() > 0
}

func (p *Plane) FuelCurrent() uint {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fuel
}

func (p *Plane) Position() Point {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

func (p *Plane) SetPosition(pt Point) {
	p.mu.Lock()
	p.position = pt
	p.mu.Unlock()
}

// MoveTo steps toward pt by at most the plane's speed.
func (p *Plane) MoveTo(pt Point) {
	p.mu.Lock()
	p.position = Step(p.position, pt, p.speed)
	p.mu.Unlock()
}

// TakeDamage removes up to dmg health and returns what was removed.
func (p *Plane) TakeDamage(dmg uint) uint {
	p.mu.Lock()
	defer p.mu.Unlock()
	applied := subtractHealth(&p.health, dmg)
	if p.health == 0 {
		p.active = false
	}
	return applied
}

// BurnFuel takes one sortie's worth of fuel. Returns false, leaving the tank
// untouched, when there is not enough.
func (p *Plane) BurnFuel() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fuel < p.fuelCons {
		return false
	}
	p.fuel -= p.fuelCons
	return true
}

// Refuel adds RefillFuel up to capacity.
func (p *Plane) Refuel() {
	p.mu.Lock()
	p.fuel = min(p.fuel+p.refill, p.fuelCap)
	p.mu.Unlock()
}

// Reload tops the plane's magazine up to MaxAmmo and returns units loaded.
func (p *Plane) Reload() uint {
	return p.ammo.Reload(p.maxAmmo)
}

// Attack strikes target from distance away.
//
// A role/target mismatch is ErrUnsupportedTarget. Being inactive, out of range,
// or out of ammo yields a zero Shot and no error.
func (p *Plane) Attack(distance float64, target Target) (Shot, error) {
	if target == nil {
		return Shot{}, fmt.Errorf("plane %s: nil target: %w", p.name, ErrInvalidArgument)
	}
	if !p.role.Accepts(target.Kind()) {
		return Shot{}, fmt.Errorf("%s %s at %s %s: %w",
			p.role, p.name, target.Kind(), target.Name(), ErrUnsupportedTarget)
	}

	p.fireMu.Lock()
	defer p.fireMu.Unlock()
	if !p.Active() || distance > p.rng {
		return Shot{}, nil
	}
	freed, err := p.ammo.Consume()
	if err != nil {
		if errors.Is(err, ErrInsufficientAmmo) {
			return Shot{}, nil
		}
		return Shot{}, err
	}
	return Shot{Units: 1, Freed: freed, Damage: target.TakeDamage(p.damage)}, nil
}
