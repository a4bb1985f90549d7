package data

import (
	"fmt"

	"github.com/fleetsim/fleetsim/internal/fleet"
)

// NewAmmo builds a fresh ammo pool from template id.
func (c *Catalog) NewAmmo(id string) (*fleet.Ammo, error) {
	t := c.ammo[id]
	if t == nil {
		return nil, fmt.Errorf("ammo template %q: %w", id, fleet.ErrNotFound)
	}
	return fleet.NewAmmo(fleet.AmmoSpec{
		Name:           t.Name,
		UnitPrice:      t.UnitPrice,
		StoragePerUnit: t.StoragePerUnit,
		Loaded:         t.Loaded,
		Reserve:        t.Reserve,
	}), nil
}

// NewWeapon builds a ready weapon with its own ammo pool. An empty name
// falls back to the template name.
func (c *Catalog) NewWeapon(id, name string) (*fleet.Weapon, error) {
	t := c.weapons[id]
	if t == nil {
		return nil, fmt.Errorf("weapon template %q: %w", id, fleet.ErrNotFound)
	}
	ammo, err := c.NewAmmo(t.Ammo)
	if err != nil {
		return nil, fmt.Errorf("weapon template %s: %w", id, err)
	}
	if name == "" {
		name = t.Name
	}
	return fleet.NewWeapon(fleet.WeaponSpec{
		Name:       name,
		Class:      t.class,
		Damage:     t.Damage,
		MaxAmmo:    t.MaxAmmo,
		Range:      t.Range,
		FireRate:   t.FireRate,
		ReloadTime: t.ReloadTime,
		Price:      t.Price,
		Active:     true,
	}, ammo)
}

// NewPlane builds a fueled, ready plane with its own ammo pool. An empty name
// falls back to the template name.
func (c *Catalog) NewPlane(id, name string) (*fleet.Plane, error) {
	t := c.planes[id]
	if t == nil {
		return nil, fmt.Errorf("plane template %q: %w", id, fleet.ErrNotFound)
	}
	ammo, err := c.NewAmmo(t.Ammo)
	if err != nil {
		return nil, fmt.Errorf("plane template %s: %w", id, err)
	}
	if name == "" {
		name = t.Name
	}
	return fleet.NewPlane(fleet.PlaneSpec{
		Name:            name,
		Role:            t.role,
		Damage:          t.Damage,
		Health:          t.Health,
		Speed:           t.Speed,
		MaxAmmo:         t.MaxAmmo,
		FuelCapacity:    t.FuelCapacity,
		FuelCurrent:     t.FuelCapacity,
		FuelConsumption: t.FuelConsumption,
		RefillFuel:      t.RefillFuel,
		Price:           t.Price,
		Range:           t.Range,
		Active:          true,
	}, ammo)
}

// NewShip builds a ship and installs its factory loadout. Loadout units are
// named "<ship>/<template>-<n>" so they stay unique within the bay.
func (c *Catalog) NewShip(id, name string) (*fleet.Ship, error) {
	t := c.ships[id]
	if t == nil {
		return nil, fmt.Errorf("ship template %q: %w", id, fleet.ErrNotFound)
	}
	if name == "" {
		name = t.Name
	}
	ship := fleet.NewShip(fleet.ShipSpec{
		Name:         name,
		Captain:      t.Captain,
		Hull:         t.hull,
		Speed:        t.Speed,
		Health:       t.Health,
		Price:        t.Price,
		WeaponSlots:  t.WeaponSlots,
		StorageSpace: t.StorageSpace,
		PlaneSlots:   t.PlaneSlots,
	})

	if len(t.Weapons) > 0 {
		bay, ok := ship.WeaponBay()
		if !ok {
			return nil, fmt.Errorf("ship template %s: %w", id, fleet.ErrCapabilityMismatch)
		}
		for i, wid := range t.Weapons {
			w, err := c.NewWeapon(wid, fmt.Sprintf("%s/%s-%d", name, wid, i+1))
			if err != nil {
				return nil, fmt.Errorf("ship template %s: %w", id, err)
			}
			if err := bay.Set(w); err != nil {
				return nil, fmt.Errorf("ship template %s: %w", id, err)
			}
		}
	}
	if len(t.Planes) > 0 {
		bay, ok := ship.PlaneBay()
		if !ok {
			return nil, fmt.Errorf("ship template %s: %w", id, fleet.ErrCapabilityMismatch)
		}
		for i, pid := range t.Planes {
			p, err := c.NewPlane(pid, fmt.Sprintf("%s/%s-%d", name, pid, i+1))
			if err != nil {
				return nil, fmt.Errorf("ship template %s: %w", id, err)
			}
			if err := bay.Set(p); err != nil {
				return nil, fmt.Errorf("ship template %s: %w", id, err)
			}
		}
	}
	return ship, nil
}
