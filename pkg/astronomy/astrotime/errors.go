package astrotime

import errorsmod "cosmossdk.io/errors"

const codespace = "astrotime"

var (
	ErrInvalidTimeScale  = errorsmod.Register(codespace, 2, "invalid timescale")
	ErrInvalidTimeFormat = errorsmod.Register(codespace, 3, "invalid time format")
	ErrInvalidTime       = errorsmod.Register(codespace, 4, "invalid time string")
)
