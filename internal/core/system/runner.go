package system

import (
	"context"
	"fmt"
	"sort"
)

// Runner executes systems in phase order each round.
type Runner struct {
	systems []System
	sorted  bool
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 8),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Len returns the number of registered systems.
func (r *Runner) Len() int { return len(r.systems) }

// Tick runs every system once. The first error stops the round.
func (r *Runner) Tick(ctx context.Context, round int) error {
	r.ensureSorted()
	for _, s := range r.systems {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Update(ctx, round); err != nil {
			return fmt.Errorf("round %d %s: %w", round, s.Phase(), err)
		}
	}
	return nil
}

// TickPhase runs only the systems registered for phase.
func (r *Runner) TickPhase(ctx context.Context, phase Phase, round int) error {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() != phase {
			continue
		}
		if err := s.Update(ctx, round); err != nil {
			return fmt.Errorf("round %d %s: %w", round, phase, err)
		}
	}
	return nil
}

// Stable so systems sharing a phase keep registration order.
func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
