package event

// Side identifies which fleet an event concerns.
type Side string

const (
	Attackers Side = "attackers"
	Defenders Side = "defenders"
)

// ShipSunk fires the round a ship's health reaches zero.
type ShipSunk struct {
	Round int
	Side  Side
	Ship  string
}

// PlaneDowned fires the round a plane's health reaches zero.
type PlaneDowned struct {
	Round   int
	Side    Side
	Carrier string
	Plane   string
}

// RoundResolved summarizes one finished round.
type RoundResolved struct {
	Round           int
	AttackerDamage  uint // dealt by attackers
	DefenderDamage  uint // dealt by defenders
	AttackersAfloat int
	DefendersAfloat int
	Moved           bool
	Reloading       bool
}
