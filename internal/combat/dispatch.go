package combat

import (
	"context"

	"github.com/fleetsim/fleetsim/internal/core/event"
	coresys "github.com/fleetsim/fleetsim/internal/core/system"
)

// DispatchSystem delivers the previous round's events at round start.
type DispatchSystem struct {
	bus *event.Bus
}

func NewDispatchSystem(bus *event.Bus) *DispatchSystem {
	return &DispatchSystem{bus: bus}
}

func (s *DispatchSystem) Phase() coresys.Phase { return coresys.PhaseDispatch }

func (s *DispatchSystem) Update(_ context.Context, _ int) error {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
	return nil
}
