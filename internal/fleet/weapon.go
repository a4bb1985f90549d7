package fleet

import (
	"errors"
	"fmt"
	"sync"
)

// WeaponClass decides what a weapon may be aimed at.
type WeaponClass int

const (
	Heavy WeaponClass = iota + 1 // ships only
	Light                        // planes only
)

func (c WeaponClass) String() string {
	switch c {
	case Heavy:
		return "heavy"
	case Light:
		return "light"
	}
	return fmt.Sprintf("WeaponClass(%d)", int(c))
}

// ParseWeaponClass converts a catalog string to a WeaponClass.
func ParseWeaponClass(s string) (WeaponClass, error) {
	switch s {
	case "heavy":
		return Heavy, nil
	case "light":
		return Light, nil
	}
	return 0, fmt.Errorf("weapon class %q: %w", s, ErrInvalidArgument)
}

// Accepts reports whether the class may fire at kind.
func (c WeaponClass) Accepts(kind TargetKind) bool {
	return (c == Heavy && kind == TargetShip) || (c == Light && kind == TargetPlane)
}

// WeaponSpec describes a weapon at creation time.
type WeaponSpec struct {
	Name       string // unique within a bay
	Class      WeaponClass
	Damage     uint
	MaxAmmo    uint
	Range      float64
	FireRate   uint // shots per combat round, 0 treated as 1
	ReloadTime uint // ticks spent reloading
	Price      uint
	Active     bool
}

// Weapon is a reloadable device bound to one Ammo pool.
//
// States: ready (active) → Reload → reloading (inactive, reloadLeft ticks) →
// Tick until reloadLeft reaches 0 → ready.
type Weapon struct {
	mu         sync.Mutex // held for the whole fire-and-consume sequence
	name       string
	class      WeaponClass
	damage     uint
	maxAmmo    uint
	rng        float64
	fireRate   uint
	reloadTime uint
	reloadLeft uint
	price      uint
	active     bool
	ammo       *Ammo
}

// NewWeapon binds a weapon to its ammo pool.
func NewWeapon(spec WeaponSpec, ammo *Ammo) (*Weapon, error) {
	if ammo == nil {
		return nil, fmt.Errorf("weapon %s: nil ammo: %w", spec.Name, ErrInvalidArgument)
	}
	if spec.Class != Heavy && spec.Class != Light {
		return nil, fmt.Errorf("weapon %s: class %v: %w", spec.Name, spec.Class, ErrInvalidArgument)
	}
	rate := spec.FireRate
	if rate == 0 {
		rate = 1
	}
	return &Weapon{
		name:       spec.Name,
		class:      spec.Class,
		damage:     spec.Damage,
		maxAmmo:    spec.MaxAmmo,
		rng:        spec.Range,
		fireRate:   rate,
		reloadTime: spec.ReloadTime,
		price:      spec.Price,
		active:     spec.Active,
		ammo:       ammo,
	}, nil
}

func (w *Weapon) Name() string       { return w.name }
func (w *Weapon) Class() WeaponClass { return w.class }
func (w *Weapon) Damage() uint       { return w.damage }
func (w *Weapon) MaxAmmo() uint      { return w.maxAmmo }
func (w *Weapon) Range() float64     { return w.rng }
func (w *Weapon) FireRate() uint     { return w.fireRate }
func (w *Weapon) ReloadTime() uint   { return w.reloadTime }
func (w *Weapon) Price() uint        { return w.price }

// Cost is the purchase price; ammo value is not included.
func (w *Weapon) Cost() uint { return w.price }

func (w *Weapon) Ammo() *Ammo {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ammo
}

func (w *Weapon) bindAmmo(a *Ammo) {
	w.mu.Lock()
	w.ammo = a
	w.mu.Unlock()
}

func (w *Weapon) Active() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

func (w *Weapon) SetActive(active bool) {
	w.mu.Lock()
	w.active = active
	w.mu.Unlock()
}

func (w *Weapon) ReloadLeft() uint {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloadLeft
}

// Reloading reports whether the weapon is waiting out a reload.
func (w *Weapon) Reloading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.active && w.reloadLeft > 0
}

// Fire shoots once at target from distance away.
//
// A class/target mismatch is ErrUnsupportedTarget. Being inactive, out of range,
// or out of ammo yields a zero Shot and no error.
func (w *Weapon) Fire(distance float64, target Target) (Shot, error) {
	if target == nil {
		return Shot{}, fmt.Errorf("weapon %s: nil target: %w", w.name, ErrInvalidArgument)
	}
	if !w.class.Accepts(target.Kind()) {
		return Shot{}, fmt.Errorf("%s weapon %s at %s %s: %w",
			w.class, w.name, target.Kind(), target.Name(), ErrUnsupportedTarget)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.active || distance > w.rng {
		return Shot{}, nil
	}
	freed, err := w.ammo.Consume()
	if err != nil {
		if errors.Is(err, ErrInsufficientAmmo) {
			return Shot{}, nil
		}
		return Shot{}, err
	}
	return Shot{Units: 1, Freed: freed, Damage: target.TakeDamage(w.damage)}, nil
}

// Reload refills the magazine to MaxAmmo and starts the reload timer.
// Returns the storage space the reloaded units occupy; 0 when inactive.
func (w *Weapon) Reload() uint {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.active {
		return 0
	}
	units := w.ammo.Reload(w.maxAmmo)
	w.active = false
	w.reloadLeft = w.reloadTime
	return units * w.ammo.StoragePerUnit()
}

// Tick advances the reload timer by one and re-activates the weapon at zero.
func (w *Weapon) Tick() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.reloadLeft > 0 {
		w.reloadLeft--
	}
	if w.reloadLeft == 0 {
		w.active = true
	}
}
