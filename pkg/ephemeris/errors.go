package ephemeris

import errorsmod "cosmossdk.io/errors"

const codespace = "ephemeris"

var (
	ErrUnsupportedPlane = errorsmod.Register(codespace, 2, "reference plane not served by provider")
	ErrNoData           = errorsmod.Register(codespace, 3, "no ephemeris data in response")
	ErrBodyNotFound     = errorsmod.Register(codespace, 4, "body not found")
	ErrRequestFailed    = errorsmod.Register(codespace, 5, "ephemeris request failed")
	ErrStateMismatch    = errorsmod.Register(codespace, 6, "stored state does not match request")
)
