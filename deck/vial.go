package deck

import (
	"fmt"
	"math"
	"sync"
)

// VialSpec describes a cylindrical vessel in the deck configuration.
type VialSpec struct {
	ID         string      `yaml:"id"`
	Position   Coordinates `yaml:"position"`
	Capacity   float64     `yaml:"capacity"`
	Volume     float64     `yaml:"volume"`
	Radius     float64     `yaml:"radius"`
	ZBottom    float64     `yaml:"z_bottom"`
	ZTop       float64     `yaml:"z_top"`
	DeadVolume float64     `yaml:"dead_volume"`
}

// Vial is a cylindrical vessel with liquid-height tracking. It implements
// Vessel; each vial guards its own volume with its own lock, so updates to
// different vials never contend.
type Vial struct {
	mu sync.Mutex

	id         string
	position   Coordinates
	capacity   float64
	volume     float64
	radius     float64
	zBottom    float64
	zTop       float64
	deadVolume float64
}

var _ Vessel = (*Vial)(nil)

// NewVial builds a vial from its spec, validating the geometry and the
// starting volume against the invariant.
func NewVial(spec VialSpec) (*Vial, error) {
	v := &Vial{}
	if err := initVial(v, spec); err != nil {
		return nil, err
	}
	return v, nil
}

func initVial(v *Vial, spec VialSpec) error {
	if spec.ID == "" {
		return fmt.Errorf("%w: vial id is empty", ErrInvalidConfig)
	}
	if spec.Capacity <= 0 {
		return fmt.Errorf("%w: vial %s capacity %g", ErrInvalidConfig, spec.ID, spec.Capacity)
	}
	if spec.Radius <= 0 {
		return fmt.Errorf("%w: vial %s radius %g", ErrInvalidConfig, spec.ID, spec.Radius)
	}
	if spec.Volume < 0 || spec.Volume > spec.Capacity {
		return fmt.Errorf("%w: vial %s volume %g outside 0..%g",
			ErrInvalidConfig, spec.ID, spec.Volume, spec.Capacity)
	}
	if spec.DeadVolume < 0 || spec.DeadVolume > spec.Capacity {
		return fmt.Errorf("%w: vial %s dead volume %g outside 0..%g",
			ErrInvalidConfig, spec.ID, spec.DeadVolume, spec.Capacity)
	}
	v.id = spec.ID
	v.position = spec.Position.Round()
	v.capacity = roundTo(spec.Capacity, volumePrecision)
	v.volume = roundTo(spec.Volume, volumePrecision)
	v.radius = spec.Radius
	v.zBottom = spec.ZBottom
	v.zTop = spec.ZTop
	v.deadVolume = roundTo(spec.DeadVolume, volumePrecision)
	return nil
}

func (v *Vial) ID() string               { return v.id }
func (v *Vial) Coordinates() Coordinates { return v.position }
func (v *Vial) Capacity() float64        { return v.capacity }

// Volume returns the currently recorded volume in microliters.
func (v *Vial) Volume() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.volume
}

// Depth returns the machine Z of the liquid surface. It rises strictly with
// the held volume and never drops below the vial bottom.
func (v *Vial) Depth() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.depthFor(v.volume)
}

// WithdrawalDepth returns the Z to aspirate from: one millimeter below the
// surface so the tip stays submerged, clamped so it never dips into the
// dead volume at the bottom.
func (v *Vial) WithdrawalDepth() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	depth := v.depthFor(v.volume) - 1
	if floor := v.depthFor(v.deadVolume); depth < floor {
		depth = floor
	}
	return roundTo(depth, coordPrecision)
}

// CheckVolume reports whether applying delta keeps 0 <= volume <= capacity.
func (v *Vial) CheckVolume(delta float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.checkLocked(delta)
}

// UpdateVolume applies delta as one atomic check-then-mutate step.
func (v *Vial) UpdateVolume(delta float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.checkLocked(delta); err != nil {
		return err
	}
	v.volume = roundTo(v.volume+delta, volumePrecision)
	return nil
}

func (v *Vial) checkLocked(delta float64) error {
	next := roundTo(v.volume+delta, volumePrecision)
	if next < 0 {
		return &OverdraftError{Vessel: v.id, Volume: v.volume, Delta: delta}
	}
	if next > v.capacity {
		return &OverfillError{Vessel: v.id, Volume: v.volume, Delta: delta, Capacity: v.capacity}
	}
	return nil
}

// depthFor converts a held volume into the surface Z. Callers hold v.mu or
// operate on immutable fields only.
func (v *Vial) depthFor(volume float64) float64 {
	surface := volume/(math.Pi*v.radius*v.radius) + v.zBottom
	return roundTo(math.Max(v.zBottom, surface), coordPrecision)
}
