package fleet

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWeapon(t *testing.T, name string, class WeaponClass, ammo *Ammo) *Weapon {
	t.Helper()
	w, err := NewWeapon(WeaponSpec{
		Name:       name,
		Class:      class,
		Damage:     25,
		MaxAmmo:    10,
		Range:      100,
		ReloadTime: 2,
		Price:      300,
		Active:     true,
	}, ammo)
	require.NoError(t, err)
	return w
}

func newTestTarget(name string, health uint) *Ship {
	return NewShip(ShipSpec{Name: name, Health: health, Position: Pt(0, 0)})
}

func TestNewWeaponRequiresAmmo(t *testing.T) {
	_, err := NewWeapon(WeaponSpec{Name: "gun", Class: Heavy}, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewWeapon(WeaponSpec{Name: "gun"}, bullets(1, 0))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestWeaponFireHits(t *testing.T) {
	ammo := bullets(3, 0)
	w := newTestWeapon(t, "gun", Heavy, ammo)
	target := newTestTarget("target", 100)

	shot, err := w.Fire(50, target)
	require.NoError(t, err)
	assert.Equal(t, Shot{Units: 1, Freed: 50, Damage: 25}, shot)
	assert.Equal(t, uint(75), target.Health())
	assert.Equal(t, uint(2), ammo.Loaded())
}

func TestWeaponFireNoOps(t *testing.T) {
	tests := []struct {
		name     string
		active   bool
		loaded   uint
		distance float64
	}{
		{"out of range", true, 5, 100.5},
		{"inactive", false, 5, 10},
		{"empty", true, 0, 10},
		{"out of range and empty", true, 0, 500},
		{"out of range and inactive", false, 5, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ammo := bullets(tt.loaded, 10)
			w := newTestWeapon(t, "gun", Heavy, ammo)
			w.SetActive(tt.active)
			target := newTestTarget("target", 100)

			shot, err := w.Fire(tt.distance, target)
			require.NoError(t, err)
			assert.Equal(t, Shot{}, shot)
			assert.False(t, shot.Hit())
			assert.Equal(t, uint(100), target.Health())
			assert.Equal(t, tt.loaded, ammo.Loaded())
		})
	}
}

func TestWeaponFireUnsupportedTarget(t *testing.T) {
	heavy := newTestWeapon(t, "heavy", Heavy, bullets(5, 0))
	light := newTestWeapon(t, "light", Light, bullets(5, 0))
	plane := newTestPlane(t, "bird", Fighter, bullets(5, 0))
	ship := newTestTarget("hull", 100)

	_, err := heavy.Fire(1, plane)
	assert.ErrorIs(t, err, ErrUnsupportedTarget)
	_, err = light.Fire(1, ship)
	assert.ErrorIs(t, err, ErrUnsupportedTarget)

	shot, err := light.Fire(1, plane)
	require.NoError(t, err)
	assert.True(t, shot.Hit())

	_, err = heavy.Fire(1, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestWeaponsSharingAmmoNeverDoubleConsume(t *testing.T) {
	for i := 0; i < 50; i++ {
		ammo := bullets(1, 0)
		a := newTestWeapon(t, "a", Heavy, ammo)
		b := newTestWeapon(t, "b", Heavy, ammo)
		target := newTestTarget("target", 1000)

		var wg sync.WaitGroup
		shots := make([]Shot, 2)
		for j, w := range []*Weapon{a, b} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				shot, err := w.Fire(10, target)
				assert.NoError(t, err)
				shots[j] = shot
			}()
		}
		wg.Wait()

		assert.Equal(t, uint(1), shots[0].Units+shots[1].Units)
		assert.Equal(t, uint(975), target.Health())
		assert.Equal(t, uint(0), ammo.Loaded())
	}
}

func TestWeaponReloadCycle(t *testing.T) {
	ammo := bullets(0, 25)
	w := newTestWeapon(t, "gun", Heavy, ammo)

	space := w.Reload()
	assert.Equal(t, uint(10*50), space)
	assert.Equal(t, uint(10), ammo.Loaded())
	assert.Equal(t, uint(15), ammo.Reserve())
	assert.False(t, w.Active())
	assert.True(t, w.Reloading())
	assert.Equal(t, uint(2), w.ReloadLeft())

	// reloading weapons cannot fire or reload again
	shot, err := w.Fire(1, newTestTarget("t", 10))
	require.NoError(t, err)
	assert.Equal(t, Shot{}, shot)
	assert.Equal(t, uint(0), w.Reload())

	w.Tick()
	assert.False(t, w.Active())
	assert.Equal(t, uint(1), w.ReloadLeft())

	w.Tick()
	assert.True(t, w.Active())
	assert.False(t, w.Reloading())
	assert.Equal(t, uint(0), w.ReloadLeft())
}

func TestWeaponTickWithZeroReloadTime(t *testing.T) {
	w, err := NewWeapon(WeaponSpec{Name: "quick", Class: Light, MaxAmmo: 5, Active: true}, bullets(0, 5))
	require.NoError(t, err)

	w.Reload()
	assert.False(t, w.Active())
	w.Tick()
	assert.True(t, w.Active())
}

func TestWeaponDefaults(t *testing.T) {
	w := newTestWeapon(t, "gun", Light, bullets(0, 0))
	assert.Equal(t, uint(1), w.FireRate())
	assert.Equal(t, uint(300), w.Cost())
	assert.Equal(t, "light", w.Class().String())
}

func TestParseWeaponClass(t *testing.T) {
	c, err := ParseWeaponClass("heavy")
	require.NoError(t, err)
	assert.Equal(t, Heavy, c)
	c, err = ParseWeaponClass("light")
	require.NoError(t, err)
	assert.Equal(t, Light, c)
	_, err = ParseWeaponClass("medium")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
