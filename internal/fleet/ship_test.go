package fleet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHullCapabilities(t *testing.T) {
	tests := []struct {
		hull        Hull
		wantWeapons bool
		wantPlanes  bool
	}{
		{HullPlain, false, false},
		{HullCruiser, true, false},
		{HullCarrier, false, true},
		{HullAttackCarrier, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.hull.String(), func(t *testing.T) {
			s := NewShip(ShipSpec{Name: "s", Hull: tt.hull})
			_, ok := s.WeaponBay()
			assert.Equal(t, tt.wantWeapons, ok)
			_, ok = s.PlaneBay()
			assert.Equal(t, tt.wantPlanes, ok)

			parsed, err := ParseHull(tt.hull.String())
			require.NoError(t, err)
			assert.Equal(t, tt.hull, parsed)
		})
	}
}

func TestShipTakeDamage(t *testing.T) {
	s := NewCruiser(ShipSpec{Name: "s", Health: 100})
	assert.Equal(t, uint(30), s.TakeDamage(30))
	assert.Equal(t, uint(70), s.Health())
	assert.Equal(t, uint(70), s.TakeDamage(70))
	assert.Equal(t, uint(0), s.Health())
	assert.True(t, s.Sunk())
	assert.Equal(t, uint(0), s.TakeDamage(5))
	assert.Equal(t, uint(0), s.Health())
}

func TestShipMoveAndAdvance(t *testing.T) {
	s := NewShip(ShipSpec{Name: "s", Health: 1, Speed: 2, Destination: Pt(0, 5)})

	s.Move(Pt(10, 0))
	assert.Equal(t, Pt(2, 0), s.Position())

	s.SetPosition(Pt(0, 0))
	assert.True(t, s.Advance())
	assert.True(t, s.Advance())
	assert.True(t, s.Advance())
	assert.Equal(t, Pt(0, 5), s.Position())
	assert.False(t, s.Advance())

	s.SetDestination(Pt(0, 0))
	s.TakeDamage(1)
	assert.False(t, s.Advance(), "sunk ships stay put")
}

func TestWeaponBaySetRemove(t *testing.T) {
	s := NewCruiser(ShipSpec{Name: "c", WeaponSlots: 2, StorageSpace: 1000})
	bay, ok := s.WeaponBay()
	require.True(t, ok)

	a := newTestWeapon(t, "a", Heavy, bullets(2, 0))
	b := newTestWeapon(t, "b", Light, NewAmmo(AmmoSpec{Name: "flak", StoragePerUnit: 5, Loaded: 4}))
	c := newTestWeapon(t, "c", Heavy, bullets(0, 0))

	require.NoError(t, bay.Set(a))
	assert.ErrorIs(t, bay.Set(newTestWeapon(t, "a", Heavy, bullets(0, 0))), ErrDuplicateKey)
	require.NoError(t, bay.Set(b))
	assert.ErrorIs(t, bay.Set(c), ErrBayFull)
	assert.ErrorIs(t, bay.Set(nil), ErrInvalidArgument)

	names := []string{}
	for _, w := range bay.Weapons() {
		names = append(names, w.Name())
	}
	assert.Equal(t, []string{"a", "b"}, names)

	got, err := bay.Get("b")
	require.NoError(t, err)
	assert.Same(t, b, got)

	removed, err := bay.Remove("a")
	require.NoError(t, err)
	assert.Same(t, a, removed)
	_, err = bay.Get("a")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = bay.Remove("a")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = bay.Ammo("bullets")
	assert.ErrorIs(t, err, ErrNotFound, "unshared pool leaves with its weapon")
}

func TestWeaponBaySharesAmmoByName(t *testing.T) {
	s := NewCruiser(ShipSpec{Name: "c", StorageSpace: 10000})
	bay, _ := s.WeaponBay()

	first := bullets(4, 10)
	second := bullets(3, 5)
	a := newTestWeapon(t, "a", Heavy, first)
	b := newTestWeapon(t, "b", Heavy, second)
	require.NoError(t, bay.Set(a))
	require.NoError(t, bay.Set(b))

	assert.Same(t, first, b.Ammo())
	assert.Equal(t, uint(4), first.Loaded())
	assert.Equal(t, uint(18), first.Reserve())

	removed, err := bay.Remove("b")
	require.NoError(t, err)
	assert.NotSame(t, first, removed.Ammo())
	assert.Equal(t, uint(0), removed.Ammo().Loaded())
	pooled, err := bay.Ammo("bullets")
	require.NoError(t, err)
	assert.Same(t, first, pooled)
}

func TestAttackCarrierRejectsHeavyWeapons(t *testing.T) {
	s := NewAttackCarrier(ShipSpec{Name: "ac"})
	bay, ok := s.WeaponBay()
	require.True(t, ok)

	err := bay.Set(newTestWeapon(t, "big", Heavy, bullets(0, 0)))
	assert.ErrorIs(t, err, ErrCapabilityMismatch)
	require.NoError(t, bay.Set(newTestWeapon(t, "small", Light, bullets(0, 0))))
}

func TestWeaponBaySpace(t *testing.T) {
	s := NewCruiser(ShipSpec{Name: "c", StorageSpace: 1000})
	bay, _ := s.WeaponBay()
	assert.Equal(t, uint(1000), bay.Space())

	require.NoError(t, bay.Set(newTestWeapon(t, "a", Heavy, bullets(4, 0))))
	assert.Equal(t, uint(800), bay.Space())

	require.NoError(t, bay.StoreAmmo(NewAmmo(AmmoSpec{Name: "shells", StoragePerUnit: 100, Loaded: 9})))
	assert.Equal(t, uint(0), bay.Space(), "overfull bay reports zero")
	assert.ErrorIs(t, bay.StoreAmmo(bullets(0, 0)), ErrDuplicateKey)
}

func TestWeaponBayReloadAndTick(t *testing.T) {
	s := NewCruiser(ShipSpec{Name: "c", StorageSpace: 1000})
	bay, _ := s.WeaponBay()
	w := newTestWeapon(t, "a", Heavy, bullets(0, 20))
	require.NoError(t, bay.Set(w))

	used, err := bay.Reload("a")
	require.NoError(t, err)
	assert.Equal(t, uint(500), used)
	assert.Equal(t, uint(500), bay.Space())

	_, err = bay.Reload("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	bay.Tick()
	bay.Tick()
	assert.True(t, w.Active())
}

func TestPlaneBay(t *testing.T) {
	s := NewCarrier(ShipSpec{Name: "cv", PlaneSlots: 1})
	bay, ok := s.PlaneBay()
	require.True(t, ok)

	p := newTestPlane(t, "p1", Fighter, bullets(0, 0))
	require.NoError(t, bay.Set(p))
	assert.ErrorIs(t, bay.CanAccept(newTestPlane(t, "p2", Fighter, bullets(0, 0))), ErrBayFull)
	assert.ErrorIs(t, bay.Set(p), ErrDuplicateKey)

	got, err := bay.Get("p1")
	require.NoError(t, err)
	assert.Same(t, p, got)

	p.BurnFuel()
	bay.Refuel()
	assert.Equal(t, uint(35), p.FuelCurrent())

	erased, err := bay.Erase("p1")
	require.NoError(t, err)
	assert.Same(t, p, erased)
	assert.Equal(t, 0, bay.Len())
	_, err = bay.Erase("p1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestShipCost(t *testing.T) {
	ac := NewAttackCarrier(ShipSpec{Name: "ac", Price: 1000})
	assert.Equal(t, uint(1000), ac.Cost())

	wb, _ := ac.WeaponBay()
	pb, _ := ac.PlaneBay()
	require.NoError(t, wb.Set(newTestWeapon(t, "aa", Light, bullets(5, 5))))
	require.NoError(t, pb.Set(newTestPlane(t, "p", Fighter, bullets(5, 5))))

	assert.Equal(t, uint(1000+300+120), ac.Cost())
}

func TestShipStrikeAndAttack(t *testing.T) {
	attacker := NewCruiser(ShipSpec{Name: "att", Position: Pt(0, 0)})
	bay, _ := attacker.WeaponBay()
	require.NoError(t, bay.Set(newTestWeapon(t, "gun", Heavy, bullets(5, 0))))
	near := NewShip(ShipSpec{Name: "near", Health: 100, Position: Pt(60, 80)})
	far := NewShip(ShipSpec{Name: "far", Health: 100, Position: Pt(600, 800)})

	shot, err := attacker.Strike("gun", near)
	require.NoError(t, err)
	assert.Equal(t, uint(25), shot.Damage)

	shot, err = attacker.Strike("gun", far)
	require.NoError(t, err)
	assert.Equal(t, Shot{}, shot)

	task, err := attacker.Attack("gun", near)
	require.NoError(t, err)
	<-task.Done()
	shot, err = task.Wait()
	require.NoError(t, err)
	assert.Equal(t, uint(25), shot.Damage)
	assert.Equal(t, uint(50), near.Health())

	_, err = attacker.Attack("missing", near)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = near.Strike("gun", attacker)
	assert.ErrorIs(t, err, ErrCapabilityMismatch)
}

func TestShipSortieAndFlight(t *testing.T) {
	carrier := NewCarrier(ShipSpec{Name: "cv"})
	bay, _ := carrier.PlaneBay()
	require.NoError(t, bay.Set(newTestPlane(t, "st", StormTrooper, bullets(2, 0))))
	target := NewShip(ShipSpec{Name: "t", Health: 100, Position: Pt(30, 40)})

	shot, err := carrier.Sortie("st", target)
	require.NoError(t, err)
	assert.Equal(t, uint(15), shot.Damage)

	task, err := carrier.Flight("st", target)
	require.NoError(t, err)
	shot, err = task.Wait()
	require.NoError(t, err)
	assert.Equal(t, uint(15), shot.Damage)
	assert.Equal(t, uint(70), target.Health())

	_, err = carrier.Flight("nope", target)
	assert.ErrorIs(t, err, ErrNotFound)

	cruiser := NewCruiser(ShipSpec{Name: "c"})
	_, err = cruiser.Sortie("st", target)
	assert.ErrorIs(t, err, ErrCapabilityMismatch)
}
