package fleet

// TargetKind separates the two things a weapon or plane can be aimed at.
type TargetKind int

const (
	TargetShip TargetKind = iota
	TargetPlane
)

func (k TargetKind) String() string {
	switch k {
	case TargetShip:
		return "ship"
	case TargetPlane:
		return "plane"
	}
	return "unknown"
}

// Target is anything that can be fired upon. TakeDamage must serialize
// concurrent callers and return the damage actually applied.
type Target interface {
	Name() string
	Kind() TargetKind
	Position() Point
	Alive() bool
	TakeDamage(dmg uint) uint
}

// Shot is the outcome of one fire or attack attempt. The zero value is a no-op.
type Shot struct {
	Units  uint // ammo units consumed (0 or 1)
	Freed  uint // storage space released by the consumed unit
	Damage uint // health actually removed from the target
}

// Hit reports whether the attempt consumed ammo.
func (s Shot) Hit() bool { return s.Units > 0 }

// subtractHealth clamps health at zero and returns the damage applied.
func subtractHealth(health *uint, dmg uint) uint {
	if *health > dmg {
		*health -= dmg
		return dmg
	}
	applied := *health
	*health = 0
	return applied
}
