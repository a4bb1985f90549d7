package combat

import (
	"context"

	coresys "github.com/fleetsim/fleetsim/internal/core/system"
)

// MoveSystem advances every live ship toward its destination. Embarked
// planes travel with their carrier.
type MoveSystem struct {
	b *Battle
}

func NewMoveSystem(b *Battle) *MoveSystem {
	return &MoveSystem{b: b}
}

func (s *MoveSystem) Phase() coresys.Phase { return coresys.PhaseMove }

func (s *MoveSystem) Update(_ context.Context, _ int) error {
	moved := false
	for _, sd := range s.b.sides() {
		for _, ship := range liveShips(sd) {
			if ship.Advance() {
				moved = true
			}
			if bay, ok := ship.PlaneBay(); ok {
				pos := ship.Position()
				for _, p := range bay.Planes() {
					p.SetPosition(pos)
				}
			}
		}
	}
	s.b.moved = moved
	return nil
}
