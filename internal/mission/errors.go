package mission

import "errors"

var (
	// ErrBudgetExceeded is returned when a purchase would take spend past MaxSpend.
	ErrBudgetExceeded = errors.New("budget exceeded")
	// ErrFleetFull is returned when buying a ship with MaxShips already afloat.
	ErrFleetFull = errors.New("fleet full")
)
