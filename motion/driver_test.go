package motion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BU-KABlab/PANDA-BEAR-sub004/deck"
	"github.com/BU-KABlab/PANDA-BEAR-sub004/grbl"
)

func testDriver(t *testing.T) (*Driver, *grbl.SimTransport) {
	t.Helper()

	cfg, err := grbl.NewConfig("sim",
		grbl.WithReadTimeout(10*time.Millisecond),
		grbl.WithPollInterval(time.Millisecond),
		grbl.WithCommandTimeout(time.Second),
		grbl.WithHomingTimeout(time.Second),
	)
	require.NoError(t, err)

	sim := grbl.NewSimTransport()
	ctrl := grbl.NewController(cfg, sim)
	require.NoError(t, ctrl.Connect())

	bath := deck.Coordinates{X: -150, Y: -30, Z: -55}
	deckCfg := &deck.DeckConfig{
		WorkingVolume: deck.WorkingVolume{XMax: -200, YMax: -120, ZMax: -70},
		SafeHeight:    -5,
		Tools: map[string]deck.ToolConfig{
			"pipette": {
				Offset: deck.Coordinates{X: -88},
				Rest:   deck.Coordinates{X: -10, Y: -10, Z: -5},
				Bath:   &bath,
			},
			"gantry": {},
		},
	}
	tools, err := deckCfg.ToolTable("")
	require.NoError(t, err)

	return NewDriver(ctrl, deckCfg, tools, nil), sim
}

// motionLines filters the command log down to G0/G01 lines.
func motionLines(sim *grbl.SimTransport) []string {
	var moves []string
	for _, line := range sim.Lines() {
		if len(line) > 1 && line[0] == 'G' {
			moves = append(moves, line)
		}
	}
	return moves
}

func TestDriver_MoveToResolvesToolOffset(t *testing.T) {
	driver, sim := testDriver(t)

	// Park the gantry where the scenario starts.
	require.NoError(t, driver.MoveTo("gantry", deck.Coordinates{X: 10, Y: 20}, Direct()))

	require.NoError(t, driver.MoveTo("pipette", deck.Coordinates{X: 10, Y: 20, Z: -50}))

	moves := motionLines(sim)
	require.NotEmpty(t, moves)
	assert.Equal(t, "G0 X-78 Y20 Z-50", moves[len(moves)-1],
		"final leg lands the pipette tip on the target")
	assert.Equal(t, deck.Coordinates{X: -78, Y: 20, Z: -50}, sim.Position())
}

func TestDriver_SafePathRaisesBeforeTravel(t *testing.T) {
	driver, sim := testDriver(t)

	// Start deep in a vessel.
	require.NoError(t, driver.MoveTo("gantry", deck.Coordinates{X: 10, Y: 20, Z: -50}, Direct()))

	require.NoError(t, driver.MoveTo("pipette", deck.Coordinates{X: 10, Y: 20, Z: -50}))

	moves := motionLines(sim)
	require.Len(t, moves, 4, "direct park plus three planned legs")
	assert.Equal(t, "G0 X10 Y20 Z-5", moves[1], "first leg raises to the safe height")
	assert.Equal(t, "G0 X-78 Y20 Z-5", moves[2])
	assert.Equal(t, "G0 X-78 Y20 Z-50", moves[3], "descent comes last")
}

func TestDriver_MoveToOutOfBounds(t *testing.T) {
	driver, _ := testDriver(t)

	err := driver.MoveTo("pipette", deck.Coordinates{X: -120, Y: 0, Z: 0})
	assert.ErrorIs(t, err, deck.ErrOutOfBounds, "offset pushes the machine past its travel")
}

func TestDriver_MoveToUnknownTool(t *testing.T) {
	driver, _ := testDriver(t)

	err := driver.MoveTo("electrode", deck.Coordinates{})
	assert.ErrorIs(t, err, deck.ErrUnknownTool)
}

func TestDriver_PositionInvertsOffset(t *testing.T) {
	driver, _ := testDriver(t)

	target := deck.Coordinates{X: 10, Y: 20, Z: -50}
	require.NoError(t, driver.MoveTo("pipette", target))

	pos, err := driver.Position("pipette")
	require.NoError(t, err)
	assert.True(t, pos.Equal(target))
}

func TestDriver_RinseDips(t *testing.T) {
	driver, sim := testDriver(t)

	require.NoError(t, driver.Rinse("pipette", 3))

	dips := 0
	for _, line := range motionLines(sim) {
		if line == "G0 Z-55" {
			dips++
		}
	}
	assert.Equal(t, 2, dips, "two Z-only dips back into the bath")

	err := driver.Rinse("gantry", 1)
	assert.ErrorIs(t, err, ErrNoBath)
}

func TestDriver_CloseParksActiveTool(t *testing.T) {
	driver, sim := testDriver(t)

	require.NoError(t, driver.MoveTo("pipette", deck.Coordinates{X: 10, Y: 20, Z: -50}))
	require.NoError(t, driver.Close())

	assert.Equal(t, deck.Coordinates{X: -10, Y: -10, Z: -5}, sim.Position(),
		"active tool parks at its rest position before the link closes")
}
