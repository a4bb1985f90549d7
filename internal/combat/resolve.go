package combat

import (
	"context"

	"go.uber.org/zap"

	"github.com/fleetsim/fleetsim/internal/core/event"
	coresys "github.com/fleetsim/fleetsim/internal/core/system"
)

// ResolveSystem tallies the round's damage, announces losses, and decides
// whether the battle is over.
type ResolveSystem struct {
	b *Battle
}

func NewResolveSystem(b *Battle) *ResolveSystem {
	return &ResolveSystem{b: b}
}

func (s *ResolveSystem) Phase() coresys.Phase { return coresys.PhaseResolve }

func (s *ResolveSystem) Update(_ context.Context, round int) error {
	b := s.b
	var dealt [2]uint
	for i, sd := range b.sides() {
		dealt[i] = uint(sd.dealt.Swap(0))
		sd.total += dealt[i]
		s.announceLosses(round, sd)
	}

	_, aAfloat := b.attackers.health()
	_, dAfloat := b.defenders.health()
	event.Emit(b.bus, event.RoundResolved{
		Round:           round,
		AttackerDamage:  dealt[0],
		DefenderDamage:  dealt[1],
		AttackersAfloat: aAfloat,
		DefendersAfloat: dAfloat,
		Moved:           b.moved,
		Reloading:       b.reloading,
	})
	b.log.Debug("round resolved",
		zap.Int("round", round),
		zap.Uint("attacker_damage", dealt[0]),
		zap.Uint("defender_damage", dealt[1]),
		zap.Int("attackers_afloat", aAfloat),
		zap.Int("defenders_afloat", dAfloat),
		zap.Bool("moved", b.moved),
		zap.Bool("reloading", b.reloading))

	if b.checkDestroyed() {
		return nil
	}
	if dealt[0]+dealt[1] > 0 || b.moved || b.reloading {
		b.stall = 0
	} else {
		b.stall++
	}
	switch {
	case round >= b.cfg.MaxRounds:
		b.log.Info("round limit reached", zap.Int("round", round))
		b.finish(Stalemate)
	case b.stall >= b.cfg.StallRounds:
		b.log.Info("no progress possible", zap.Int("round", round), zap.Int("stall", b.stall))
		b.finish(Stalemate)
	}
	return nil
}

func (s *ResolveSystem) announceLosses(round int, sd *side) {
	b := s.b
	for _, ship := range sd.ships {
		if !ship.Alive() && !b.sunk[ship] {
			b.sunk[ship] = true
			event.Emit(b.bus, event.ShipSunk{Round: round, Side: sd.name, Ship: ship.Name()})
			b.log.Info("ship sunk",
				zap.Int("round", round),
				zap.String("side", string(sd.name)),
				zap.String("ship", ship.Name()))
		}
		bay, ok := ship.PlaneBay()
		if !ok {
			continue
		}
		for _, p := range bay.Planes() {
			if !p.Alive() && !b.downed[p] {
				b.downed[p] = true
				event.Emit(b.bus, event.PlaneDowned{Round: round, Side: sd.name, Carrier: ship.Name(), Plane: p.Name()})
			}
		}
	}
}
