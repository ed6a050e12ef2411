package grbl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BU-KABlab/PANDA-BEAR-sub004/deck"
)

func TestMove_Command(t *testing.T) {
	m := Move{Target: deck.Coordinates{X: -78, Y: 20, Z: -50}, Axes: AxisAll}
	assert.Equal(t, "G0 X-78 Y20 Z-50", m.Command(), "trailing zeros are trimmed")

	m = Move{Target: deck.Coordinates{X: 1.2341, Y: -0.1, Z: 3}, Axes: AxisAll}
	assert.Equal(t, "G0 X1.234 Y-0.1 Z3", m.Command(), "coordinates render at 3 decimals")
}

func TestMove_PartialAxes(t *testing.T) {
	m := Move{Target: deck.Coordinates{X: 9, Y: 8, Z: -55}, Axes: AxisZ}
	assert.Equal(t, "G0 Z-55", m.Command())

	m = Move{Target: deck.Coordinates{X: 9, Y: 8}, Axes: AxisX | AxisY}
	assert.Equal(t, "G0 X9 Y8", m.Command())
}

func TestMove_FeedMove(t *testing.T) {
	m := Move{Target: deck.Coordinates{Z: -10}, Axes: AxisZ, Feed: true}
	assert.Equal(t, "G01 Z-10", m.Command())
}

func TestFeedRateCommand(t *testing.T) {
	assert.Equal(t, "F2000", FeedRateCommand(2000))
	assert.Equal(t, "F150.5", FeedRateCommand(150.5))
}

func TestIsMotion(t *testing.T) {
	assert.True(t, isMotion("G0 X1"))
	assert.True(t, isMotion("G01 Z-5"))
	assert.True(t, isMotion("$H"))
	assert.False(t, isMotion("F2000"))
	assert.False(t, isMotion("$X"))
	assert.False(t, isMotion("?"))
}

func TestCatalogs(t *testing.T) {
	assert.Equal(t, "feed rate has not yet been set or is undefined", ErrorDescription(22))
	assert.Equal(t, "unknown error code", ErrorDescription(999))

	assert.Contains(t, AlarmDescription(1), "hard limit")
	assert.Equal(t, "unknown alarm code", AlarmDescription(42))
}
