package fleet

import (
	"fmt"
	"sort"
	"sync"

	"github.com/fleetsim/fleetsim/internal/core/registry"
)

// WeaponBay hosts weapons and the ship's ammo magazine. Weapons loading the
// same ammo name share a single pool.
type WeaponBay struct {
	mu         sync.RWMutex
	weapons    *registry.Table[string, *Weapon]
	ammo       *registry.Table[string, *Ammo]
	slots      int  // 0 = unlimited
	storage    uint // total magazine space
	allowHeavy bool
}

func newWeaponBay(slots int, storage uint, allowHeavy bool) *WeaponBay {
	return &WeaponBay{
		weapons:    registry.NewStrings[*Weapon](0),
		ammo:       registry.NewStrings[*Ammo](0),
		slots:      slots,
		storage:    storage,
		allowHeavy: allowHeavy,
	}
}

func (b *WeaponBay) Slots() int        { return b.slots }
func (b *WeaponBay) Storage() uint     { return b.storage }
func (b *WeaponBay) AllowsHeavy() bool { return b.allowHeavy }

// CanAccept checks w against the bay without mounting it.
func (b *WeaponBay) CanAccept(w *Weapon) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.canAccept(w)
}

func (b *WeaponBay) canAccept(w *Weapon) error {
	if w == nil {
		return fmt.Errorf("mount weapon: nil: %w", ErrInvalidArgument)
	}
	if w.Class() == Heavy && !b.allowHeavy {
		return fmt.Errorf("mount %s: heavy weapons not supported: %w", w.Name(), ErrCapabilityMismatch)
	}
	if b.weapons.Contains(w.Name()) {
		return fmt.Errorf("mount %s: %w", w.Name(), ErrDuplicateKey)
	}
	if b.slots > 0 && b.weapons.Len() >= b.slots {
		return fmt.Errorf("mount %s: %d/%d slots used: %w", w.Name(), b.weapons.Len(), b.slots, ErrBayFull)
	}
	return nil
}

// Set mounts w. If the magazine already holds ammo with the same name, w's own
// pool is merged into it and w is rebound to the shared pool.
func (b *WeaponBay) Set(w *Weapon) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.canAccept(w); err != nil {
		return err
	}
	own := w.Ammo()
	if pooled, ok := b.ammo.Find(own.Name()); ok {
		if pooled != own {
			pooled.absorb(own)
			w.bindAmmo(pooled)
		}
	} else if err := b.ammo.Insert(own.Name(), own); err != nil {
		return err
	}
	return b.weapons.Insert(w.Name(), w)
}

// Remove unmounts a weapon. If other weapons still share its ammo pool, the
// removed weapon leaves with an empty pool of the same type.
func (b *WeaponBay) Remove(name string) (*Weapon, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.weapons.Find(name)
	if !ok {
		return nil, fmt.Errorf("weapon %s: %w", name, ErrNotFound)
	}
	b.weapons.Erase(name)

	a := w.Ammo()
	shared := false
	for _, other := range b.weapons.All() {
		if other.Ammo() == a {
			shared = true
			break
		}
	}
	if shared {
		w.bindAmmo(a.emptyCopy())
	} else {
		b.ammo.Erase(a.Name())
	}
	return w, nil
}

// Get looks up a mounted weapon.
func (b *WeaponBay) Get(name string) (*Weapon, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	w, ok := b.weapons.Find(name)
	if !ok {
		return nil, fmt.Errorf("weapon %s: %w", name, ErrNotFound)
	}
	return w, nil
}

// Weapons returns mounted weapons ordered by name.
func (b *WeaponBay) Weapons() []*Weapon {
	b.mu.RLock()
	out := b.weapons.Values()
	b.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

func (b *WeaponBay) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.weapons.Len()
}

// Ammo looks up a magazine pool by ammo name.
func (b *WeaponBay) Ammo(name string) (*Ammo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	a, ok := b.ammo.Find(name)
	if !ok {
		return nil, fmt.Errorf("ammo %s: %w", name, ErrNotFound)
	}
	return a, nil
}

// StoreAmmo adds a pool that no weapon loads yet.
func (b *WeaponBay) StoreAmmo(a *Ammo) error {
	if a == nil {
		return fmt.Errorf("store ammo: nil: %w", ErrInvalidArgument)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ammo.Insert(a.Name(), a)
}

// Space is the free magazine storage: capacity minus what loaded ammo
// occupies, floored at zero.
func (b *WeaponBay) Space() uint {
	b.mu.RLock()
	defer b.mu.RUnlock()
	free := b.storage
	for _, a := range b.ammo.All() {
		occupied := a.Occupied()
		if free <= occupied {
			return 0
		}
		free -= occupied
	}
	return free
}

// Reload reloads one weapon and returns the storage the new rounds occupy.
func (b *WeaponBay) Reload(name string) (uint, error) {
	w, err := b.Get(name)
	if err != nil {
		return 0, err
	}
	return w.Reload(), nil
}

// Tick advances every weapon's reload timer.
func (b *WeaponBay) Tick() {
	for _, w := range b.Weapons() {
		w.Tick()
	}
}

// Cost sums the cost of mounted weapons.
func (b *WeaponBay) Cost() uint {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var total uint
	for _, w := range b.weapons.All() {
		total += w.Cost()
	}
	return total
}
