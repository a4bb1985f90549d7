// Package combat resolves a battle between two fleets as a sequence of rounds.
// Each round runs the dispatch, reload, move, attack and resolve systems in
// order; the attack system fans out one task per weapon shot and per plane
// sortie and joins them all before the round resolves.
package combat

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fleetsim/fleetsim/internal/core/event"
	coresys "github.com/fleetsim/fleetsim/internal/core/system"
	"github.com/fleetsim/fleetsim/internal/fleet"
)

const (
	DefaultMaxRounds   = 500
	DefaultStallRounds = 10
)

// Config bounds a battle.
type Config struct {
	MaxRounds   int  // hard cap; 0 = DefaultMaxRounds
	StallRounds int  // rounds without progress before a stalemate; 0 = DefaultStallRounds
	AutoReload  bool // reload empty weapons that still have reserve
}

func (c Config) normalized() Config {
	if c.MaxRounds <= 0 {
		c.MaxRounds = DefaultMaxRounds
	}
	if c.StallRounds <= 0 {
		c.StallRounds = DefaultStallRounds
	}
	return c
}

// Winner is the battle verdict.
type Winner string

const (
	WinnerAttackers Winner = Winner(event.Attackers)
	WinnerDefenders Winner = Winner(event.Defenders)
	Stalemate       Winner = "stalemate"
)

// Result summarizes a finished battle.
type Result struct {
	ID                uuid.UUID
	Rounds            int
	Winner            Winner
	DamageByAttackers uint
	DamageByDefenders uint
	AttackersAfloat   int
	DefendersAfloat   int
	StartedAt         time.Time
	FinishedAt        time.Time
}

type side struct {
	name  event.Side
	ships []*fleet.Ship // ordered by name; the first live one is the flagship
	dealt atomic.Uint64 // damage dealt this round, written by attack tasks
	total uint
}

func newSide(name event.Side, ships []*fleet.Ship) *side {
	sorted := make([]*fleet.Ship, 0, len(ships))
	for _, s := range ships {
		if s != nil {
			sorted = append(sorted, s)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name() < sorted[j].Name() })
	return &side{name: name, ships: sorted}
}

// flagship is the first live ship, or nil.
func (s *side) flagship() *fleet.Ship {
	for _, sh := range s.ships {
		if sh.Alive() {
			return sh
		}
	}
	return nil
}

// firstPlane is the first live plane aboard a live carrier, or nil.
func (s *side) firstPlane() *fleet.Plane {
	for _, sh := range s.ships {
		if !sh.Alive() {
			continue
		}
		bay, ok := sh.PlaneBay()
		if !ok {
			continue
		}
		for _, p := range bay.Planes() {
			if p.Alive() {
				return p
			}
		}
	}
	return nil
}

func (s *side) health() (total uint, afloat int) {
	for _, sh := range s.ships {
		h := sh.Health()
		total += h
		if h > 0 {
			afloat++
		}
	}
	return total, afloat
}

// Battle drives rounds until one side is destroyed, the round cap is hit, or
// nothing has changed for StallRounds rounds.
//
// Every round does at least one of: removes health, moves a ship closer to a
// fixed destination, or spends a reload tick drawn from a finite reserve.
// All three are bounded, so the stall counter always eventually fires.
type Battle struct {
	id     uuid.UUID
	cfg    Config
	log    *zap.Logger
	bus    *event.Bus
	runner *coresys.Runner

	attackers *side
	defenders *side

	round     int
	moved     bool
	reloading bool
	stall     int
	done      bool
	winner    Winner

	sunk   map[*fleet.Ship]bool
	downed map[*fleet.Plane]bool
}

// New prepares a battle. Ship order inside each fleet does not matter.
func New(cfg Config, attackers, defenders []*fleet.Ship, log *zap.Logger) *Battle {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.New()
	b := &Battle{
		id:        id,
		cfg:       cfg.normalized(),
		log:       log.With(zap.String("battle", id.String())),
		bus:       event.NewBus(),
		runner:    coresys.NewRunner(),
		attackers: newSide(event.Attackers, attackers),
		defenders: newSide(event.Defenders, defenders),
		sunk:      make(map[*fleet.Ship]bool),
		downed:    make(map[*fleet.Plane]bool),
	}
	b.runner.Register(NewDispatchSystem(b.bus))
	b.runner.Register(NewReloadSystem(b))
	b.runner.Register(NewMoveSystem(b))
	b.runner.Register(NewAttackSystem(b))
	b.runner.Register(NewResolveSystem(b))
	return b
}

func (b *Battle) ID() uuid.UUID   { return b.id }
func (b *Battle) Bus() *event.Bus { return b.bus }
func (b *Battle) Config() Config  { return b.cfg }
func (b *Battle) Round() int      { return b.round }
func (b *Battle) Done() bool      { return b.done }
func (b *Battle) Winner() Winner  { return b.winner }
func (b *Battle) sides() [2]*side { return [2]*side{b.attackers, b.defenders} }

func liveShips(s *side) []*fleet.Ship {
	out := make([]*fleet.Ship, 0, len(s.ships))
	for _, sh := range s.ships {
		if sh.Alive() {
			out = append(out, sh)
		}
	}
	return out
}

// Step runs one round. It is a no-op once the battle is over.
func (b *Battle) Step(ctx context.Context) error {
	if b.done {
		return nil
	}
	if b.checkDestroyed() {
		return nil
	}
	b.round++
	return b.runner.Tick(ctx, b.round)
}

// Run steps until the battle ends or ctx is done. On cancellation the partial
// result is returned together with ctx's error.
func (b *Battle) Run(ctx context.Context) (Result, error) {
	started := time.Now()
	a, _ := b.attackers.health()
	d, _ := b.defenders.health()
	b.log.Info("battle started",
		zap.Int("attackers", len(b.attackers.ships)),
		zap.Int("defenders", len(b.defenders.ships)),
		zap.Uint("attacker_health", a),
		zap.Uint("defender_health", d))

	var err error
	for !b.done {
		if err = ctx.Err(); err != nil {
			break
		}
		if err = b.Step(ctx); err != nil {
			break
		}
	}
	// flush the final round's events to subscribers
	b.bus.SwapBuffers()
	b.bus.DispatchAll()

	res := b.result(started)
	if err != nil {
		b.log.Warn("battle interrupted", zap.Int("round", b.round), zap.Error(err))
		return res, err
	}
	b.log.Info("battle finished",
		zap.Int("rounds", res.Rounds),
		zap.String("winner", string(res.Winner)),
		zap.Uint("damage_attackers", res.DamageByAttackers),
		zap.Uint("damage_defenders", res.DamageByDefenders))
	return res, nil
}

func (b *Battle) result(started time.Time) Result {
	_, aAfloat := b.attackers.health()
	_, dAfloat := b.defenders.health()
	return Result{
		ID:                b.id,
		Rounds:            b.round,
		Winner:            b.winner,
		DamageByAttackers: b.attackers.total,
		DamageByDefenders: b.defenders.total,
		AttackersAfloat:   aAfloat,
		DefendersAfloat:   dAfloat,
		StartedAt:         started,
		FinishedAt:        time.Now(),
	}
}

// checkDestroyed ends the battle if either side has no health left.
func (b *Battle) checkDestroyed() bool {
	a, _ := b.attackers.health()
	d, _ := b.defenders.health()
	switch {
	case a == 0 && d == 0:
		b.finish(Stalemate)
	case a == 0:
		b.finish(WinnerDefenders)
	case d == 0:
		b.finish(WinnerAttackers)
	default:
		return false
	}
	return true
}

func (b *Battle) finish(w Winner) {
	b.done = true
	b.winner = w
}
