package combat

import (
	"context"

	"go.uber.org/zap"

	coresys "github.com/fleetsim/fleetsim/internal/core/system"
	"github.com/fleetsim/fleetsim/internal/fleet"
)

// ReloadSystem advances reload timers, refuels embarked planes, and with
// AutoReload starts a reload on every empty weapon that still has reserve.
type ReloadSystem struct {
	b *Battle
}

func NewReloadSystem(b *Battle) *ReloadSystem {
	return &ReloadSystem{b: b}
}

func (s *ReloadSystem) Phase() coresys.Phase { return coresys.PhaseReload }

func (s *ReloadSystem) Update(_ context.Context, round int) error {
	reloading := false
	for _, sd := range s.b.sides() {
		for _, ship := range liveShips(sd) {
			if bay, ok := ship.WeaponBay(); ok {
				bay.Tick()
				if s.b.cfg.AutoReload {
					s.reloadEmpty(round, ship, bay)
				}
				for _, w := range bay.Weapons() {
					if w.Reloading() {
						reloading = true
					}
				}
			}
			if bay, ok := ship.PlaneBay(); ok {
				bay.Refuel()
				if s.b.cfg.AutoReload {
					for _, p := range bay.Planes() {
						if p.Alive() && p.Ammo().Loaded() == 0 {
							p.Reload()
						}
					}
				}
			}
		}
	}
	s.b.reloading = reloading
	return nil
}

// reloadEmpty only touches weapons with reserve left, so every reload it
// starts draws down a finite supply.
func (s *ReloadSystem) reloadEmpty(round int, ship *fleet.Ship, bay *fleet.WeaponBay) {
	for _, w := range bay.Weapons() {
		if !w.Active() {
			continue
		}
		a := w.Ammo()
		if a.Loaded() > 0 || a.Reserve() == 0 {
			continue
		}
		used, err := bay.Reload(w.Name())
		if err != nil {
			continue
		}
		s.b.log.Debug("weapon reloading",
			zap.Int("round", round),
			zap.String("ship", ship.Name()),
			zap.String("weapon", w.Name()),
			zap.Uint("storage", used))
	}
}
