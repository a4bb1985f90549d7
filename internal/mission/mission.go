// Package mission owns the two fleets of a scenario and the budget rules for
// buying, selling and rearranging the defending fleet.
package mission

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fleetsim/fleetsim/internal/core/registry"
	"github.com/fleetsim/fleetsim/internal/fleet"
)

// Settings are the scenario parameters supplied by the mission loader.
type Settings struct {
	Commander fleet.Captain
	MaxShips  int
	MaxSpend  uint
	WinPrice  uint
	PointA    fleet.Point // defenders start here
	PointB    fleet.Point // attackers start here
}

// Outcome is what a finished battle reports back to the mission.
type Outcome struct {
	DamageByAttackers uint
	DamageByDefenders uint
}

// Mission is the command surface over the attacker and defender fleets.
// Every failed command leaves the mission untouched.
//
// Not safe for concurrent use: commands come from one front end at a time and
// combat only reads the fleets between commands.
type Mission struct {
	id  uuid.UUID
	log *zap.Logger
	now func() time.Time

	attackers *registry.Table[string, *fleet.Ship]
	defenders *registry.Table[string, *fleet.Ship]

	commander      fleet.Captain
	maxShips       int
	maxSpend       uint
	spend          uint
	winThreshold   uint
	enemyFleetCost uint
	savedMoney     uint
	damageAttacker uint
	damageDefender uint
	pointA, pointB fleet.Point

	journal []JournalEntry
}

// New creates an empty mission. A nil logger is replaced by a no-op one.
func New(log *zap.Logger) *Mission {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.New()
	return &Mission{
		id:        id,
		log:       log.With(zap.String("mission", id.String())),
		now:       time.Now,
		attackers: registry.NewStrings[*fleet.Ship](registry.DefaultCapacity),
		defenders: registry.NewStrings[*fleet.Ship](registry.DefaultCapacity),
	}
}

// Configure applies scenario settings. WinPrice seeds the win threshold until
// the first purchase or sale recomputes it.
func (m *Mission) Configure(s Settings) {
	m.commander = s.Commander
	m.maxShips = s.MaxShips
	m.maxSpend = s.MaxSpend
	m.winThreshold = s.WinPrice
	m.pointA = s.PointA
	m.pointB = s.PointB
	m.log.Debug("mission configured",
		zap.String("commander", s.Commander.Name),
		zap.Int("max_ships", s.MaxShips),
		zap.Uint("max_spend", s.MaxSpend),
		zap.Uint("win_price", s.WinPrice))
}

func (m *Mission) ID() uuid.UUID                                   { return m.id }
func (m *Mission) Commander() fleet.Captain                        { return m.commander }
func (m *Mission) MaxShips() int                                   { return m.maxShips }
func (m *Mission) MaxSpend() uint                                  { return m.maxSpend }
func (m *Mission) Spend() uint                                     { return m.spend }
func (m *Mission) WinThreshold() uint                              { return m.winThreshold }
func (m *Mission) EnemyFleetCost() uint                            { return m.enemyFleetCost }
func (m *Mission) SavedMoney() uint                                { return m.savedMoney }
func (m *Mission) DamageAttacker() uint                            { return m.damageAttacker }
func (m *Mission) DamageDefender() uint                            { return m.damageDefender }
func (m *Mission) PointA() fleet.Point                             { return m.pointA }
func (m *Mission) PointB() fleet.Point                             { return m.pointB }
func (m *Mission) Attackers() *registry.Table[string, *fleet.Ship] { return m.attackers }
func (m *Mission) Defenders() *registry.Table[string, *fleet.Ship] { return m.defenders }

// AttackerShips returns the attacking fleet ordered by name.
func (m *Mission) AttackerShips() []*fleet.Ship { return sortedShips(m.attackers) }

// DefenderShips returns the defending fleet ordered by name.
func (m *Mission) DefenderShips() []*fleet.Ship { return sortedShips(m.defenders) }

func sortedShips(t *registry.Table[string, *fleet.Ship]) []*fleet.Ship {
	out := t.Values()
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// AddAttacker enlists an enemy ship. It starts at PointB heading for PointA.
// Enemy ships are not paid for.
func (m *Mission) AddAttacker(ship *fleet.Ship) error {
	if ship == nil {
		return fmt.Errorf("add attacker: nil ship: %w", fleet.ErrInvalidArgument)
	}
	if err := m.attackers.Insert(ship.Name(), ship); err != nil {
		return fmt.Errorf("add attacker: %w", err)
	}
	ship.SetPosition(m.pointB)
	ship.SetDestination(m.pointA)
	cost := ship.Cost()
	m.enemyFleetCost += cost
	m.record(KindEnemy, ship.Name(), "", int64(cost))
	m.log.Debug("attacker added", zap.String("ship", ship.Name()), zap.Uint("cost", cost))
	return nil
}

func (m *Mission) checkBudget(what string, cost uint) error {
	if m.spend+cost > m.maxSpend {
		return fmt.Errorf("%s: spend %d + %d > %d: %w", what, m.spend, cost, m.maxSpend, ErrBudgetExceeded)
	}
	return nil
}

func (m *Mission) charge(cost uint) {
	m.spend += cost
	m.rebalance()
}

func (m *Mission) refund(cost uint) {
	if cost > m.spend {
		cost = m.spend
	}
	m.spend -= cost
	m.rebalance()
}

// rebalance derives the win threshold and saved money from spend.
func (m *Mission) rebalance() {
	m.savedMoney = m.spend
	m.winThreshold = 80 * m.spend / 100
}

func (m *Mission) defender(name string) (*fleet.Ship, error) {
	s, ok := m.defenders.Find(name)
	if !ok {
		return nil, fmt.Errorf("ship %s: %w", name, fleet.ErrNotFound)
	}
	return s, nil
}

func (m *Mission) weaponBay(shipName string) (*fleet.WeaponBay, error) {
	s, err := m.defender(shipName)
	if err != nil {
		return nil, err
	}
	bay, ok := s.WeaponBay()
	if !ok {
		return nil, fmt.Errorf("ship %s (%s) cannot mount weapons: %w", shipName, s.Hull(), fleet.ErrCapabilityMismatch)
	}
	return bay, nil
}

func (m *Mission) planeBay(shipName string) (*fleet.Ship, *fleet.PlaneBay, error) {
	s, err := m.defender(shipName)
	if err != nil {
		return nil, nil, err
	}
	bay, ok := s.PlaneBay()
	if !ok {
		return nil, nil, fmt.Errorf("ship %s (%s) cannot carry planes: %w", shipName, s.Hull(), fleet.ErrCapabilityMismatch)
	}
	return s, bay, nil
}

// BuyShip adds ship to the defending fleet at its full cost, loadout included.
// The ship starts at PointA heading for PointB.
func (m *Mission) BuyShip(ship *fleet.Ship) error {
	if ship == nil {
		return fmt.Errorf("buy ship: nil ship: %w", fleet.ErrInvalidArgument)
	}
	cost := ship.Cost()
	if err := m.checkBudget("buy ship "+ship.Name(), cost); err != nil {
		return err
	}
	if m.defenders.Len() >= m.maxShips {
		return fmt.Errorf("buy ship %s: %d/%d ships: %w", ship.Name(), m.defenders.Len(), m.maxShips, ErrFleetFull)
	}
	if err := m.defenders.Insert(ship.Name(), ship); err != nil {
		return fmt.Errorf("buy ship: %w", err)
	}
	ship.SetPosition(m.pointA)
	ship.SetDestination(m.pointB)
	m.charge(cost)
	m.record(KindBuyShip, ship.Name(), "", int64(cost))
	m.log.Debug("ship bought", zap.String("ship", ship.Name()), zap.Uint("cost", cost), zap.Uint("spend", m.spend))
	return nil
}

// SellShip removes a defending ship and refunds its full cost.
func (m *Mission) SellShip(name string) (*fleet.Ship, error) {
	ship, err := m.defender(name)
	if err != nil {
		return nil, err
	}
	cost := ship.Cost()
	m.defenders.Erase(name)
	m.refund(cost)
	m.record(KindSellShip, name, "", -int64(cost))
	m.log.Debug("ship sold", zap.String("ship", name), zap.Uint("refund", cost), zap.Uint("spend", m.spend))
	return ship, nil
}

// BuyWeapon mounts w on a defending ship.
func (m *Mission) BuyWeapon(shipName string, w *fleet.Weapon) error {
	if w == nil {
		return fmt.Errorf("buy weapon: nil weapon: %w", fleet.ErrInvalidArgument)
	}
	bay, err := m.weaponBay(shipName)
	if err != nil {
		return err
	}
	cost := w.Cost()
	if err := m.checkBudget("buy weapon "+w.Name(), cost); err != nil {
		return err
	}
	if err := bay.CanAccept(w); err != nil {
		return fmt.Errorf("ship %s: %w", shipName, err)
	}
	if err := bay.Set(w); err != nil {
		return fmt.Errorf("ship %s: %w", shipName, err)
	}
	m.charge(cost)
	m.record(KindBuyWeapon, shipName, w.Name(), int64(cost))
	m.log.Debug("weapon bought",
		zap.String("ship", shipName), zap.String("weapon", w.Name()),
		zap.Uint("cost", cost), zap.Uint("spend", m.spend))
	return nil
}

// SellWeapon unmounts a weapon and refunds its cost.
func (m *Mission) SellWeapon(shipName, weaponName string) (*fleet.Weapon, error) {
	bay, err := m.weaponBay(shipName)
	if err != nil {
		return nil, err
	}
	w, err := bay.Remove(weaponName)
	if err != nil {
		return nil, fmt.Errorf("ship %s: %w", shipName, err)
	}
	cost := w.Cost()
	m.refund(cost)
	m.record(KindSellWeapon, shipName, weaponName, -int64(cost))
	m.log.Debug("weapon sold",
		zap.String("ship", shipName), zap.String("weapon", weaponName),
		zap.Uint("refund", cost), zap.Uint("spend", m.spend))
	return w, nil
}

// BuyPlane embarks p on a defending carrier.
func (m *Mission) BuyPlane(shipName string, p *fleet.Plane) error {
	if p == nil {
		return fmt.Errorf("buy plane: nil plane: %w", fleet.ErrInvalidArgument)
	}
	ship, bay, err := m.planeBay(shipName)
	if err != nil {
		return err
	}
	cost := p.Cost()
	if err := m.checkBudget("buy plane "+p.Name(), cost); err != nil {
		return err
	}
	if err := bay.Set(p); err != nil {
		return fmt.Errorf("ship %s: %w", shipName, err)
	}
	p.SetPosition(ship.Position())
	m.charge(cost)
	m.record(KindBuyPlane, shipName, p.Name(), int64(cost))
	m.log.Debug("plane bought",
		zap.String("ship", shipName), zap.String("plane", p.Name()),
		zap.Uint("cost", cost), zap.Uint("spend", m.spend))
	return nil
}

// SellPlane disembarks a plane and refunds its cost.
func (m *Mission) SellPlane(shipName, planeName string) (*fleet.Plane, error) {
	_, bay, err := m.planeBay(shipName)
	if err != nil {
		return nil, err
	}
	p, err := bay.Erase(planeName)
	if err != nil {
		return nil, fmt.Errorf("ship %s: %w", shipName, err)
	}
	cost := p.Cost()
	m.refund(cost)
	m.record(KindSellPlane, shipName, planeName, -int64(cost))
	m.log.Debug("plane sold",
		zap.String("ship", shipName), zap.String("plane", planeName),
		zap.Uint("refund", cost), zap.Uint("spend", m.spend))
	return p, nil
}

// MovePlane transfers a plane between two defending carriers. The destination
// is checked before the plane leaves the source, and a failed embark puts the
// plane back, so the plane is never lost. Spend is unchanged.
func (m *Mission) MovePlane(srcShip, planeName, dstShip string) error {
	_, src, err := m.planeBay(srcShip)
	if err != nil {
		return err
	}
	dst, dstBay, err := m.planeBay(dstShip)
	if err != nil {
		return err
	}
	p, err := src.Get(planeName)
	if err != nil {
		return fmt.Errorf("ship %s: %w", srcShip, err)
	}
	if err := dstBay.CanAccept(p); err != nil {
		return fmt.Errorf("move plane to %s: %w", dstShip, err)
	}
	if _, err := src.Erase(planeName); err != nil {
		return fmt.Errorf("ship %s: %w", srcShip, err)
	}
	if err := dstBay.Set(p); err != nil {
		if rerr := src.Set(p); rerr != nil {
			m.log.Error("plane restore failed", zap.String("plane", planeName), zap.Error(rerr))
		}
		return fmt.Errorf("move plane to %s: %w", dstShip, err)
	}
	p.SetPosition(dst.Position())
	m.record(KindMovePlane, dstShip, planeName, int64(p.Cost()))
	m.log.Debug("plane moved",
		zap.String("plane", planeName), zap.String("from", srcShip), zap.String("to", dstShip))
	return nil
}

// RecordBattle stores a battle's damage totals and revalues the surviving
// defenders as saved money.
func (m *Mission) RecordBattle(o Outcome) {
	m.damageAttacker = o.DamageByAttackers
	m.damageDefender = o.DamageByDefenders
	var saved uint
	for _, s := range m.defenders.All() {
		if s.Alive() {
			saved += s.Cost()
		}
	}
	m.savedMoney = saved
	m.log.Info("battle recorded",
		zap.Uint("damage_attacker", o.DamageByAttackers),
		zap.Uint("damage_defender", o.DamageByDefenders),
		zap.Uint("saved_money", saved),
		zap.Uint("win_threshold", m.winThreshold))
}

// Won reports whether at least one defender is afloat and the value it saved
// meets the win threshold.
func (m *Mission) Won() bool {
	afloat := false
	for _, s := range m.defenders.All() {
		if s.Alive() {
			afloat = true
			break
		}
	}
	return afloat && m.savedMoney >= m.winThreshold
}
