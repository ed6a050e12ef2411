package deck

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTool indicates a tool name with no registered offset.
	ErrUnknownTool = errors.New("deck: unknown tool")
	// ErrUnknownWell indicates a well id not present on the plate.
	ErrUnknownWell = errors.New("deck: unknown well")
	// ErrOutOfBounds indicates a target outside the working volume.
	ErrOutOfBounds = errors.New("deck: target outside working volume")
	// ErrInvalidConfig indicates an unusable deck configuration value.
	ErrInvalidConfig = errors.New("deck: invalid configuration")
)

// OverfillError reports a volume update that would exceed a vessel's
// capacity. The vessel's volume is left unchanged.
type OverfillError struct {
	Vessel   string
	Volume   float64
	Delta    float64
	Capacity float64
}

func (e *OverfillError) Error() string {
	return fmt.Sprintf("deck: adding %g uL to %s exceeds capacity (%g of %g uL held)",
		e.Delta, e.Vessel, e.Volume, e.Capacity)
}

// OverdraftError reports a volume update that would drain a vessel below
// zero. The vessel's volume is left unchanged.
type OverdraftError struct {
	Vessel string
	Volume float64
	Delta  float64
}

func (e *OverdraftError) Error() string {
	return fmt.Sprintf("deck: removing %g uL from %s exceeds the %g uL held",
		-e.Delta, e.Vessel, e.Volume)
}
