package scene

import "errors"

var (
	// ErrInvalidProjection reports an orthogonal projection whose bounds
	// are empty or inverted.
	ErrInvalidProjection = errors.New("invalid projection")
	// ErrProjectionSlot reports an orthogonal projection slot or slot
	// count outside [0, MaxOrthogonalProjections].
	ErrProjectionSlot   = errors.New("orthogonal projection slot out of range")
	ErrUnknownLightType = errors.New("unknown light type")
)
