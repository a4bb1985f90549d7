package fleet

import (
	"errors"

	"github.com/fleetsim/fleetsim/internal/core/registry"
)

// Error taxonomy shared by fleet entities and their owners.
// Combat no-op conditions (out of range, reloading, empty ammo) are not errors.
var (
	ErrNotFound           = errors.New("not found")
	ErrInsufficientAmmo   = errors.New("insufficient ammo")
	ErrUnsupportedTarget  = errors.New("unsupported target")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrCapabilityMismatch = errors.New("capability mismatch")
	ErrBayFull            = errors.New("bay full")

	// ErrDuplicateKey is re-exported so callers only need one import for name clashes.
	ErrDuplicateKey = registry.ErrDuplicateKey
)
