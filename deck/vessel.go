package deck

// Vessel is a liquid container tracked on the deck. One microliter of
// contents occupies one cubic millimeter.
//
// Volume mutations are all-or-nothing: an update that would violate the
// 0 <= volume <= capacity invariant returns a typed error and leaves the
// recorded volume untouched.
type Vessel interface {
	// ID returns the vessel's deck-unique identifier.
	ID() string
	// Coordinates returns the vessel's XY center and reference Z.
	Coordinates() Coordinates
	// Capacity returns the maximum volume in microliters.
	Capacity() float64
	// Volume returns the currently recorded volume in microliters.
	Volume() float64
	// Depth returns the machine Z of the liquid surface, clamped at the
	// vessel bottom when empty.
	Depth() float64
	// CheckVolume reports whether applying delta (positive to add, negative
	// to remove) would keep the invariant, without mutating anything.
	CheckVolume(delta float64) error
	// UpdateVolume applies delta atomically, or returns the same error
	// CheckVolume would and changes nothing.
	UpdateVolume(delta float64) error
}
