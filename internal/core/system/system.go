package system

import "context"

// Phase defines execution ordering within a single combat round.
type Phase int

const (
	PhaseDispatch Phase = iota // 0: deliver last round's events
	PhaseReload                // 1: reload timers, refuel embarked planes
	PhaseMove                  // 2: ships advance toward their destinations
	PhaseAttack                // 3: every weapon and plane fires in parallel
	PhaseResolve               // 4: tally damage, decide termination
)

func (p Phase) String() string {
	switch p {
	case PhaseDispatch:
		return "dispatch"
	case PhaseReload:
		return "reload"
	case PhaseMove:
		return "move"
	case PhaseAttack:
		return "attack"
	case PhaseResolve:
		return "resolve"
	}
	return "unknown"
}

// System is one step of a combat round.
type System interface {
	Phase() Phase
	Update(ctx context.Context, round int) error
}
