package coordinates

import errorsmod "cosmossdk.io/errors"

const codespace = "coordinates"

var (
	ErrInvalidReferencePlane = errorsmod.Register(codespace, 2, "invalid reference plane")
	ErrInvalidOrigin         = errorsmod.Register(codespace, 3, "invalid origin")
	ErrSingularRotation      = errorsmod.Register(codespace, 4, "rotation matrix is not invertible")
)
