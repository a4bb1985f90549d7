package combat

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	coresys "github.com/fleetsim/fleetsim/internal/core/system"
	"github.com/fleetsim/fleetsim/internal/fleet"
)

// AttackSystem fires every weapon and launches every plane of both fleets at
// once. Heavy weapons and storm troopers aim at the enemy flagship; light
// weapons and fighters aim at the enemy's first live plane. All tasks are
// joined before Update returns, so no attack outlives its round.
type AttackSystem struct {
	b *Battle
}

func NewAttackSystem(b *Battle) *AttackSystem {
	return &AttackSystem{b: b}
}

func (s *AttackSystem) Phase() coresys.Phase { return coresys.PhaseAttack }

func (s *AttackSystem) Update(ctx context.Context, round int) error {
	g, gctx := errgroup.WithContext(ctx)
	s.launch(gctx, g, s.b.attackers, s.b.defenders)
	s.launch(gctx, g, s.b.defenders, s.b.attackers)
	if err := g.Wait(); err != nil {
		return fmt.Errorf("attack: %w", err)
	}
	return nil
}

// launch queues from's attacks on g. Targets are picked before any task runs.
func (s *AttackSystem) launch(ctx context.Context, g *errgroup.Group, from, to *side) {
	flagship := to.flagship()
	plane := to.firstPlane()
	if flagship == nil {
		return
	}
	var planeTarget fleet.Target
	if plane != nil {
		planeTarget = plane
	}

	for _, ship := range liveShips(from) {
		if bay, ok := ship.WeaponBay(); ok {
			for _, w := range bay.Weapons() {
				target := fleet.Target(flagship)
				if w.Class() == fleet.Light {
					target = planeTarget
				}
				if target == nil {
					continue
				}
				for range w.FireRate() {
					g.Go(func() error {
						if ctx.Err() != nil {
							return nil
						}
						shot, err := ship.Strike(w.Name(), target)
						if err != nil {
							return fmt.Errorf("%s %s: %w", ship.Name(), w.Name(), err)
						}
						from.dealt.Add(uint64(shot.Damage))
						return nil
					})
				}
			}
		}
		if bay, ok := ship.PlaneBay(); ok {
			for _, p := range bay.Planes() {
				target := fleet.Target(flagship)
				if p.Role() == fleet.Fighter {
					target = planeTarget
				}
				if target == nil || !p.Active() || !p.BurnFuel() {
					continue
				}
				g.Go(func() error {
					if ctx.Err() != nil {
						return nil
					}
					shot, err := ship.Sortie(p.Name(), target)
					if err != nil {
						return fmt.Errorf("%s %s: %w", ship.Name(), p.Name(), err)
					}
					from.dealt.Add(uint64(shot.Damage))
					return nil
				})
			}
		}
	}
}
