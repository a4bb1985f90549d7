package fleet

import (
	"fmt"
	"sort"
	"sync"

	"github.com/fleetsim/fleetsim/internal/core/registry"
)

// PlaneBay hosts a carrier's air wing.
type PlaneBay struct {
	mu     sync.RWMutex
	planes *registry.Table[string, *Plane]
	slots  int // 0 = unlimited
}

func newPlaneBay(slots int) *PlaneBay {
	return &PlaneBay{
		planes: registry.NewStrings[*Plane](0),
		slots:  slots,
	}
}

func (b *PlaneBay) Slots() int { return b.slots }

// CanAccept checks p against the bay without embarking it.
func (b *PlaneBay) CanAccept(p *Plane) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.canAccept(p)
}

func (b *PlaneBay) canAccept(p *Plane) error {
	if p == nil {
		return fmt.Errorf("embark plane: nil: %w", ErrInvalidArgument)
	}
	if b.planes.Contains(p.Name()) {
		return fmt.Errorf("embark %s: %w", p.Name(), ErrDuplicateKey)
	}
	if b.slots > 0 && b.planes.Len() >= b.slots {
		return fmt.Errorf("embark %s: %d/%d slots used: %w", p.Name(), b.planes.Len(), b.slots, ErrBayFull)
	}
	return nil
}

// Set embarks p.
func (b *PlaneBay) Set(p *Plane) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.canAccept(p); err != nil {
		return err
	}
	return b.planes.Insert(p.Name(), p)
}

// Erase disembarks a plane and returns it.
func (b *PlaneBay) Erase(name string) (*Plane, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.planes.Find(name)
	if !ok {
		return nil, fmt.Errorf("plane %s: %w", name, ErrNotFound)
	}
	b.planes.Erase(name)
	return p, nil
}

// Get looks up an embarked plane.
func (b *PlaneBay) Get(name string) (*Plane, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.planes.Find(name)
	if !ok {
		return nil, fmt.Errorf("plane %s: %w", name, ErrNotFound)
	}
	return p, nil
}

// Planes returns embarked planes ordered by name.
func (b *PlaneBay) Planes() []*Plane {
	b.mu.RLock()
	out := b.planes.Values()
	b.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

func (b *PlaneBay) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.planes.Len()
}

// Refuel tops up every embarked plane.
func (b *PlaneBay) Refuel() {
	for _, p := range b.Planes() {
		p.Refuel()
	}
}

// Cost sums the cost of embarked planes.
func (b *PlaneBay) Cost() uint {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var total uint
	for _, p := range b.planes.All() {
		total += p.Cost()
	}
	return total
}
