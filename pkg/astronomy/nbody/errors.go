package nbody

import errorsmod "cosmossdk.io/errors"

const codespace = "nbody"

var (
	ErrEpochMismatch       = errorsmod.Register(codespace, 2, "body epoch does not match simulation epoch")
	ErrOriginMismatch      = errorsmod.Register(codespace, 3, "body origin is neither the simulation origin nor a body in the simulation")
	ErrParticleNotFound    = errorsmod.Register(codespace, 4, "particle not found")
	ErrDuplicateParticle   = errorsmod.Register(codespace, 5, "particle already in simulation")
	ErrConvergenceFailure  = errorsmod.Register(codespace, 6, "integrator did not converge")
	ErrCentralBodyNotFound = errorsmod.Register(codespace, 7, "central body not found")
	ErrInvalidTimestep     = errorsmod.Register(codespace, 8, "invalid timestep")
	ErrNoMass              = errorsmod.Register(codespace, 9, "simulation has no massive bodies")
	ErrSimulationNotEmpty  = errorsmod.Register(codespace, 10, "simulation already holds particles")
	ErrUnknownComponent    = errorsmod.Register(codespace, 11, "unknown integrator or force")
)
