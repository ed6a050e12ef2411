package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoordinates_Round(t *testing.T) {
	c := Coordinates{X: 1.23456, Y: -2.0004, Z: 0.0005}
	r := c.Round()
	assert.Equal(t, 1.235, r.X)
	assert.Equal(t, -2.0, r.Y)
	assert.Equal(t, 0.001, r.Z)
}

func TestCoordinates_AddSub(t *testing.T) {
	a := Coordinates{X: 10, Y: 20, Z: 0}
	offset := Coordinates{X: -88}

	machine := a.Add(offset)
	assert.Equal(t, Coordinates{X: -78, Y: 20, Z: 0}, machine)

	back := machine.Sub(offset)
	assert.True(t, back.Equal(a))
}

func TestCoordinates_XYEqual(t *testing.T) {
	a := Coordinates{X: 1, Y: 2, Z: -50}
	b := Coordinates{X: 1, Y: 2, Z: 0}
	assert.True(t, a.XYEqual(b))
	assert.False(t, a.Equal(b))

	c := Coordinates{X: 1.0004, Y: 2, Z: -50}
	assert.True(t, a.XYEqual(c), "sub-precision differences collapse")
}

func TestWorkingVolume_Contains(t *testing.T) {
	wv := WorkingVolume{XMax: -200, YMax: -120, ZMax: -70}

	assert.True(t, wv.Contains(Coordinates{X: -78, Y: -20, Z: -50}))
	assert.True(t, wv.Contains(Coordinates{}), "machine zero is reachable")
	assert.True(t, wv.Contains(Coordinates{X: 0.5}), "small positive slack allowed")

	assert.False(t, wv.Contains(Coordinates{X: -201}))
	assert.False(t, wv.Contains(Coordinates{Y: -121}))
	assert.False(t, wv.Contains(Coordinates{Z: -70.5}))
	assert.False(t, wv.Contains(Coordinates{X: 2}))
}
