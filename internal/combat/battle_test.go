package combat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetsim/fleetsim/internal/core/event"
	"github.com/fleetsim/fleetsim/internal/fleet"
)

func gunship(t *testing.T, name string, loaded, reserve uint, reloadTime uint) *fleet.Ship {
	t.Helper()
	s := fleet.NewCruiser(fleet.ShipSpec{Name: name, Health: 100, StorageSpace: 10000})
	w, err := fleet.NewWeapon(fleet.WeaponSpec{
		Name:       "main",
		Class:      fleet.Heavy,
		Damage:     25,
		MaxAmmo:    1,
		Range:      100,
		ReloadTime: reloadTime,
		Active:     true,
	}, fleet.NewAmmo(fleet.AmmoSpec{Name: "shell", StoragePerUnit: 1, Loaded: loaded, Reserve: reserve}))
	require.NoError(t, err)
	bay, _ := s.WeaponBay()
	require.NoError(t, bay.Set(w))
	return s
}

func hulk(name string, health uint) *fleet.Ship {
	return fleet.NewShip(fleet.ShipSpec{Name: name, Health: health})
}

func airwing(t *testing.T, name string, role fleet.PlaneRole, damage, health uint) *fleet.Ship {
	t.Helper()
	s := fleet.NewCarrier(fleet.ShipSpec{Name: name, Health: 1000})
	p, err := fleet.NewPlane(fleet.PlaneSpec{
		Name:            name + "-1",
		Role:            role,
		Damage:          damage,
		Health:          health,
		MaxAmmo:         10,
		FuelCapacity:    100,
		FuelCurrent:     100,
		FuelConsumption: 10,
		RefillFuel:      10,
		Range:           60,
		Active:          true,
	}, fleet.NewAmmo(fleet.AmmoSpec{Name: "rounds", Loaded: 10}))
	require.NoError(t, err)
	bay, _ := s.PlaneBay()
	require.NoError(t, bay.Set(p))
	return s
}

func TestAttackersSinkDefender(t *testing.T) {
	attacker := gunship(t, "Hood", 10, 0, 0)
	defender := hulk("target", 100)
	b := New(Config{}, []*fleet.Ship{attacker}, []*fleet.Ship{defender}, nil)

	var sunk []event.ShipSunk
	event.Subscribe(b.Bus(), func(e event.ShipSunk) { sunk = append(sunk, e) })

	res, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, WinnerAttackers, res.Winner)
	assert.Equal(t, 4, res.Rounds)
	assert.Equal(t, uint(100), res.DamageByAttackers)
	assert.Equal(t, uint(0), res.DamageByDefenders)
	assert.Equal(t, 1, res.AttackersAfloat)
	assert.Equal(t, 0, res.DefendersAfloat)
	assert.Equal(t, b.ID(), res.ID)
	assert.Equal(t, []event.ShipSunk{{Round: 4, Side: event.Defenders, Ship: "target"}}, sunk)
}

func TestEmptySideEndsImmediately(t *testing.T) {
	b := New(Config{}, nil, []*fleet.Ship{hulk("d", 10)}, nil)
	res, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, WinnerDefenders, res.Winner)
	assert.Equal(t, 0, res.Rounds)
}

func TestStallEndsInStalemate(t *testing.T) {
	b := New(Config{StallRounds: 3}, []*fleet.Ship{hulk("a", 10)}, []*fleet.Ship{hulk("d", 10)}, nil)
	res, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stalemate, res.Winner)
	assert.Equal(t, 3, res.Rounds)
}

func TestRoundLimit(t *testing.T) {
	far := fleet.NewShip(fleet.ShipSpec{Name: "a", Health: 10, Speed: 1, Destination: fleet.Pt(1000, 0)})
	b := New(Config{MaxRounds: 5, StallRounds: 2}, []*fleet.Ship{far}, []*fleet.Ship{hulk("d", 10)}, nil)

	var rounds []event.RoundResolved
	event.Subscribe(b.Bus(), func(e event.RoundResolved) { rounds = append(rounds, e) })

	res, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stalemate, res.Winner)
	assert.Equal(t, 5, res.Rounds)
	assert.Equal(t, fleet.Pt(5, 0), far.Position())
	require.Len(t, rounds, 5)
	assert.True(t, rounds[4].Moved)
}

func TestAutoReload(t *testing.T) {
	b := New(Config{AutoReload: true}, []*fleet.Ship{gunship(t, "Hood", 1, 5, 1)}, []*fleet.Ship{hulk("d", 100)}, nil)
	res, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, WinnerAttackers, res.Winner)
	assert.Equal(t, 7, res.Rounds, "fire, reload, fire, ...")
}

func TestWithoutAutoReloadStalls(t *testing.T) {
	b := New(Config{StallRounds: 3}, []*fleet.Ship{gunship(t, "Hood", 1, 5, 1)}, []*fleet.Ship{hulk("d", 100)}, nil)
	res, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stalemate, res.Winner)
	assert.Equal(t, 4, res.Rounds)
	assert.Equal(t, uint(25), res.DamageByAttackers)
}

func TestOutOfRangeIsNotProgress(t *testing.T) {
	attacker := gunship(t, "Hood", 10, 0, 0)
	defender := fleet.NewShip(fleet.ShipSpec{Name: "d", Health: 100, Position: fleet.Pt(500, 0), Destination: fleet.Pt(500, 0)})
	b := New(Config{StallRounds: 2}, []*fleet.Ship{attacker}, []*fleet.Ship{defender}, nil)
	res, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stalemate, res.Winner)
	assert.Equal(t, uint(100), defender.Health())
	wb, _ := attacker.WeaponBay()
	w, _ := wb.Get("main")
	assert.Equal(t, uint(10), w.Ammo().Loaded())
}

func TestMutualFire(t *testing.T) {
	a := gunship(t, "a", 10, 0, 0)
	d := gunship(t, "d", 10, 0, 0)
	d.SetHealth(50)
	b := New(Config{}, []*fleet.Ship{a}, []*fleet.Ship{d}, nil)
	res, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, WinnerAttackers, res.Winner)
	assert.Equal(t, 2, res.Rounds)
	assert.Equal(t, uint(50), a.Health(), "both fire in the same round")
	assert.Equal(t, uint(50), res.DamageByDefenders)
}

func TestStormTrooperSortie(t *testing.T) {
	cv := airwing(t, "Akagi", fleet.StormTrooper, 15, 20)
	target := hulk("d", 30)
	b := New(Config{}, []*fleet.Ship{cv}, []*fleet.Ship{target}, nil)
	res, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, WinnerAttackers, res.Winner)
	assert.Equal(t, 2, res.Rounds)
}

func TestFighterDownsPlane(t *testing.T) {
	hunter := airwing(t, "Ark", fleet.Fighter, 50, 40)
	prey := airwing(t, "Zuikaku", fleet.StormTrooper, 1, 20)
	b := New(Config{StallRounds: 2}, []*fleet.Ship{hunter}, []*fleet.Ship{prey}, nil)

	var downed []event.PlaneDowned
	event.Subscribe(b.Bus(), func(e event.PlaneDowned) { downed = append(downed, e) })

	res, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stalemate, res.Winner)
	require.Len(t, downed, 1)
	assert.Equal(t, event.PlaneDowned{Round: 1, Side: event.Defenders, Carrier: "Zuikaku", Plane: "Zuikaku-1"}, downed[0])
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := New(Config{}, []*fleet.Ship{hulk("a", 1)}, []*fleet.Ship{hulk("d", 1)}, nil)
	res, err := b.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, res.Rounds)
	assert.False(t, b.Done())
}

func TestStepAfterDoneIsNoop(t *testing.T) {
	b := New(Config{StallRounds: 1}, []*fleet.Ship{hulk("a", 1)}, []*fleet.Ship{hulk("d", 1)}, nil)
	require.NoError(t, b.Step(context.Background()))
	require.True(t, b.Done())
	require.NoError(t, b.Step(context.Background()))
	assert.Equal(t, 1, b.Round())
}
