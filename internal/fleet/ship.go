package fleet

import (
	"fmt"
	"sync"
)

// Hull selects which bays a ship is built with.
type Hull int

const (
	HullPlain         Hull = iota // no bays
	HullCruiser                   // weapon bay
	HullCarrier                   // plane bay
	HullAttackCarrier             // light-only weapon bay + plane bay
)

func (h Hull) String() string {
	switch h {
	case HullPlain:
		return "ship"
	case HullCruiser:
		return "cruiser"
	case HullCarrier:
		return "carrier"
	case HullAttackCarrier:
		return "attack_carrier"
	}
	return fmt.Sprintf("Hull(%d)", int(h))
}

// ParseHull converts a catalog string to a Hull.
func ParseHull(s string) (Hull, error) {
	switch s {
	case "ship", "plain":
		return HullPlain, nil
	case "cruiser":
		return HullCruiser, nil
	case "carrier":
		return HullCarrier, nil
	case "attack_carrier":
		return HullAttackCarrier, nil
	}
	return 0, fmt.Errorf("hull %q: %w", s, ErrInvalidArgument)
}

// Captain commands a ship or a mission.
type Captain struct {
	Name string `yaml:"name"`
	Rank string `yaml:"rank"`
}

// ShipSpec describes a ship at creation time. Bay fields are ignored for
// hulls that lack the bay.
type ShipSpec struct {
	Name         string
	Captain      Captain
	Hull         Hull
	Speed        float64
	Health       uint
	Price        uint
	Position     Point
	Destination  Point
	WeaponSlots  int
	StorageSpace uint
	PlaneSlots   int
}

// Ship is a positioned, health-bearing hull with optional weapon and plane bays.
type Ship struct {
	mu          sync.Mutex // guards health, position, destination
	name        string
	captain     Captain
	hull        Hull
	speed       float64
	price       uint
	maxHealth   uint
	health      uint
	position    Point
	destination Point

	weapons *WeaponBay
	planes  *PlaneBay
}

func NewShip(spec ShipSpec) *Ship {
	s := &Ship{
		name:        spec.Name,
		captain:     spec.Captain,
		hull:        spec.Hull,
		speed:       spec.Speed,
		price:       spec.Price,
		maxHealth:   spec.Health,
		health:      spec.Health,
		position:    spec.Position,
		destination: spec.Destination,
	}
	switch spec.Hull {
	case HullCruiser:
		s.weapons = newWeaponBay(spec.WeaponSlots, spec.StorageSpace, true)
	case HullCarrier:
		s.planes = newPlaneBay(spec.PlaneSlots)
	case HullAttackCarrier:
		s.weapons = newWeaponBay(spec.WeaponSlots, spec.StorageSpace, false)
		s.planes = newPlaneBay(spec.PlaneSlots)
	}
	return s
}

func NewCruiser(spec ShipSpec) *Ship {
	spec.Hull = HullCruiser
	return NewShip(spec)
}

func NewCarrier(spec ShipSpec) *Ship {
	spec.Hull = HullCarrier
	return NewShip(spec)
}

func NewAttackCarrier(spec ShipSpec) *Ship {
	spec.Hull = HullAttackCarrier
	return NewShip(spec)
}

func (s *Ship) Name() string     { return s.name }
func (s *Ship) Captain() Captain { return s.captain }
func (s *Ship) Hull() Hull       { return s.hull }
func (s *Ship) Kind() TargetKind { return TargetShip }
func (s *Ship) Speed() float64   { return s.speed }
func (s *Ship) Price() uint      { return s.price }
func (s *Ship) MaxHealth() uint  { return s.maxHealth }

// WeaponBay returns the ship's weapon bay, if it has one.
func (s *Ship) WeaponBay() (*WeaponBay, bool) { return s.weapons, s.weapons != nil }

// PlaneBay returns the ship's plane bay, if it has one.
func (s *Ship) PlaneBay() (*PlaneBay, bool) { return s.planes, s.planes != nil }

func (s *Ship) Health() uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.health
}

func (s *Ship) SetHealth(h uint) {
	s.mu.Lock()
	s.health = h
	s.mu.Unlock()
}

// Alive reports whether the ship is still afloat.
func (s *Ship) Alive() bool { return s.Health() > 0 }

// Sunk is the negation of Alive.
func (s *Ship) Sunk() bool { return !s.Alive() }

func (s *Ship) Position() Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

func (s *Ship) SetPosition(p Point) {
	s.mu.Lock()
	s.position = p
	s.mu.Unlock()
}

func (s *Ship) Destination() Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destination
}

func (s *Ship) SetDestination(p Point) {
	s.mu.Lock()
	s.destination = p
	s.mu.Unlock()
}

// Move steps toward p by at most the ship's speed.
func (s *Ship) Move(p Point) {
	s.mu.Lock()
	s.position = Step(s.position, p, s.speed)
	s.mu.Unlock()
}

// Advance steps toward the destination. Sunk ships do not move.
// Reports whether the position changed.
func (s *Ship) Advance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.health == 0 {
		return false
	}
	next := Step(s.position, s.destination, s.speed)
	moved := next != s.position
	s.position = next
	return moved
}

// TakeDamage removes up to dmg health and returns what was removed.
func (s *Ship) TakeDamage(dmg uint) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return subtractHealth(&s.health, dmg)
}

// Cost is the ship's price plus everything mounted or embarked on it.
func (s *Ship) Cost() uint {
	total := s.price
	if s.weapons != nil {
		total += s.weapons.Cost()
	}
	if s.planes != nil {
		total += s.planes.Cost()
	}
	return total
}

func (s *Ship) weapon(name string) (*Weapon, error) {
	if s.weapons == nil {
		return nil, fmt.Errorf("ship %s (%s) has no weapon bay: %w", s.name, s.hull, ErrCapabilityMismatch)
	}
	return s.weapons.Get(name)
}

func (s *Ship) plane(name string) (*Plane, error) {
	if s.planes == nil {
		return nil, fmt.Errorf("ship %s (%s) has no plane bay: %w", s.name, s.hull, ErrCapabilityMismatch)
	}
	return s.planes.Get(name)
}

// Strike fires the named weapon at target and waits for the result.
func (s *Ship) Strike(weaponName string, target Target) (Shot, error) {
	w, err := s.weapon(weaponName)
	if err != nil {
		return Shot{}, err
	}
	if target == nil {
		return Shot{}, fmt.Errorf("ship %s strike: nil target: %w", s.name, ErrInvalidArgument)
	}
	return w.Fire(Distance(s.Position(), target.Position()), target)
}

// Attack looks up the named weapon and fires it on a new goroutine.
// Lookup failures are returned immediately; firing errors arrive via Wait.
func (s *Ship) Attack(weaponName string, target Target) (*Task, error) {
	w, err := s.weapon(weaponName)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("ship %s attack: nil target: %w", s.name, ErrInvalidArgument)
	}
	from := s.Position()
	return startTask(func() (Shot, error) {
		return w.Fire(Distance(from, target.Position()), target)
	}), nil
}

// Sortie launches the named plane at target and waits for the result.
// Distance is measured from the carrier.
func (s *Ship) Sortie(planeName string, target Target) (Shot, error) {
	p, err := s.plane(planeName)
	if err != nil {
		return Shot{}, err
	}
	if target == nil {
		return Shot{}, fmt.Errorf("ship %s sortie: nil target: %w", s.name, ErrInvalidArgument)
	}
	return p.Attack(Distance(s.Position(), target.Position()), target)
}

// Flight is the asynchronous form of Sortie.
func (s *Ship) Flight(planeName string, target Target) (*Task, error) {
	p, err := s.plane(planeName)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("ship %s flight: nil target: %w", s.name, ErrInvalidArgument)
	}
	from := s.Position()
	return startTask(func() (Shot, error) {
		return p.Attack(Distance(from, target.Position()), target)
	}), nil
}
