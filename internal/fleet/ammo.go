package fleet

import (
	"fmt"
	"sync"
)

// AmmoSpec describes an ammo pool at creation time.
type AmmoSpec struct {
	Name           string
	UnitPrice      uint
	StoragePerUnit uint // space one loaded unit occupies
	Loaded         uint
	Reserve        uint
}

// AmmoState is a point-in-time copy of an Ammo pool.
type AmmoState struct {
	Name           string
	UnitPrice      uint
	StoragePerUnit uint
	Loaded         uint
	Reserve        uint
}

// Ammo is a loaded/reserve counter pair. Every method is safe for concurrent use;
// Consume in particular is called from parallel attack tasks sharing one pool.
type Ammo struct {
	mu             sync.Mutex
	name           string
	unitPrice      uint
	storagePerUnit uint
	loaded         uint
	reserve        uint
}

func NewAmmo(spec AmmoSpec) *Ammo {
	return &Ammo{
		name:           spec.Name,
		unitPrice:      spec.UnitPrice,
		storagePerUnit: spec.StoragePerUnit,
		loaded:         spec.Loaded,
		reserve:        spec.Reserve,
	}
}

func (a *Ammo) Name() string         { return a.name }
func (a *Ammo) UnitPrice() uint      { return a.unitPrice }
func (a *Ammo) StoragePerUnit() uint { return a.storagePerUnit }

func (a *Ammo) Loaded() uint {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loaded
}

func (a *Ammo) Reserve() uint {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reserve
}

func (a *Ammo) SetLoaded(n uint) {
	a.mu.Lock()
	a.loaded = n
	a.mu.Unlock()
}

func (a *Ammo) SetReserve(n uint) {
	a.mu.Lock()
	a.reserve = n
	a.mu.Unlock()
}

// Snapshot returns a consistent copy of the pool.
func (a *Ammo) Snapshot() AmmoState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AmmoState{
		Name:           a.name,
		UnitPrice:      a.unitPrice,
		StoragePerUnit: a.storagePerUnit,
		Loaded:         a.loaded,
		Reserve:        a.reserve,
	}
}

// Reduce removes n loaded units.
func (a *Ammo) Reduce(n uint) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n > a.loaded {
		return fmt.Errorf("reduce %s by %d (loaded %d): %w", a.name, n, a.loaded, ErrInsufficientAmmo)
	}
	a.loaded -= n
	return nil
}

// Reload moves min(capacity-loaded, reserve) units from reserve into the loaded
// count and returns how many moved.
func (a *Ammo) Reload(capacity uint) uint {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loaded >= capacity {
		return 0
	}
	n := min(capacity-a.loaded, a.reserve)
	a.loaded += n
	a.reserve -= n
	return n
}

// Consume takes exactly one loaded unit and returns the storage space it freed.
func (a *Ammo) Consume() (uint, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loaded == 0 {
		return 0, fmt.Errorf("consume %s: %w", a.name, ErrInsufficientAmmo)
	}
	a.loaded--
	return a.storagePerUnit, nil
}

// Cost is loaded*price + reserve*loaded. The reserve term scales by the loaded
// count, not by the unit price.
func (a *Ammo) Cost() uint {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loaded*a.unitPrice + a.reserve*a.loaded
}

// Occupied is the bay storage taken by loaded units.
func (a *Ammo) Occupied() uint {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loaded * a.storagePerUnit
}

// absorb moves other's loaded and reserve units into this pool's reserve.
// Both pools must be distinct; other is left empty.
func (a *Ammo) absorb(other *Ammo) {
	other.mu.Lock()
	moved := other.loaded + other.reserve
	other.loaded, other.reserve = 0, 0
	other.mu.Unlock()

	a.mu.Lock()
	a.reserve += moved
	a.mu.Unlock()
}

// emptyCopy returns a pool with the same identity and pricing but no units.
func (a *Ammo) emptyCopy() *Ammo {
	return NewAmmo(AmmoSpec{Name: a.name, UnitPrice: a.unitPrice, StoragePerUnit: a.storagePerUnit})
}
