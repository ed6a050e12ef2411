package deck

import (
	"fmt"
	"math"
)

const (
	// coordPrecision is the number of decimal places kept on coordinates.
	coordPrecision = 3
	// volumePrecision is the number of decimal places kept on volumes.
	volumePrecision = 6

	// boundsCeiling is the small positive slack allowed above machine zero
	// when checking the working volume.
	boundsCeiling = 1.0
)

// Coordinates is an absolute machine position in millimeters.
type Coordinates struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Round returns c with each axis rounded to 3 decimal places.
func (c Coordinates) Round() Coordinates {
	return Coordinates{
		X: roundTo(c.X, coordPrecision),
		Y: roundTo(c.Y, coordPrecision),
		Z: roundTo(c.Z, coordPrecision),
	}
}

// Add returns the axis-wise sum of c and o.
func (c Coordinates) Add(o Coordinates) Coordinates {
	return Coordinates{X: c.X + o.X, Y: c.Y + o.Y, Z: c.Z + o.Z}.Round()
}

// Sub returns the axis-wise difference of c and o.
func (c Coordinates) Sub(o Coordinates) Coordinates {
	return Coordinates{X: c.X - o.X, Y: c.Y - o.Y, Z: c.Z - o.Z}.Round()
}

// Equal reports whether c and o coincide at coordinate precision.
func (c Coordinates) Equal(o Coordinates) bool {
	return c.Round() == o.Round()
}

// XYEqual reports whether c and o share the same horizontal position.
func (c Coordinates) XYEqual(o Coordinates) bool {
	cr, or := c.Round(), o.Round()
	return cr.X == or.X && cr.Y == or.Y
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", c.X, c.Y, c.Z)
}

// WorkingVolume is the reachable machine envelope. Homed machine coordinates
// on this mill run from a negative per-axis travel limit up to zero, so each
// bound below is the most negative reachable value on its axis.
type WorkingVolume struct {
	XMax float64 `yaml:"x_max"`
	YMax float64 `yaml:"y_max"`
	ZMax float64 `yaml:"z_max"`
}

// Contains reports whether c lies inside the envelope. A small positive
// slack above machine zero is tolerated on every axis.
func (w WorkingVolume) Contains(c Coordinates) bool {
	return w.XMax <= c.X && c.X <= boundsCeiling &&
		w.YMax <= c.Y && c.Y <= boundsCeiling &&
		w.ZMax <= c.Z && c.Z <= boundsCeiling
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
