package deck

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSaver struct {
	calls int
	last  map[string]Coordinates
	err   error
}

func (s *recordingSaver) SaveTools(tools map[string]Coordinates) error {
	s.calls++
	s.last = tools
	return s.err
}

func TestToolTable_ResolveInverseRoundTrip(t *testing.T) {
	table := NewToolTable(nil)
	require.NoError(t, table.Set("pipette", Coordinates{X: -88}))

	logical := Coordinates{X: 10, Y: 20, Z: -50}
	machine, err := table.Resolve("pipette", logical)
	require.NoError(t, err)
	assert.Equal(t, Coordinates{X: -78, Y: 20, Z: -50}, machine)

	back, err := table.Inverse("pipette", machine)
	require.NoError(t, err)
	assert.True(t, back.Equal(logical))
}

func TestToolTable_UnknownTool(t *testing.T) {
	table := NewToolTable(nil)

	_, err := table.Get("electrode")
	assert.ErrorIs(t, err, ErrUnknownTool)

	_, err = table.Resolve("electrode", Coordinates{})
	assert.ErrorIs(t, err, ErrUnknownTool)

	err = table.Adjust("electrode", Coordinates{X: 1})
	assert.ErrorIs(t, err, ErrUnknownTool)

	err = table.Delete("electrode")
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestToolTable_Adjust(t *testing.T) {
	table := NewToolTable(nil)
	require.NoError(t, table.Set("electrode", Coordinates{X: -44, Y: 1}))
	require.NoError(t, table.Adjust("electrode", Coordinates{X: 0.5, Z: -0.25}))

	offset, err := table.Get("electrode")
	require.NoError(t, err)
	assert.Equal(t, Coordinates{X: -43.5, Y: 1, Z: -0.25}, offset)
}

func TestToolTable_SaverCalledOnEveryMutation(t *testing.T) {
	saver := &recordingSaver{}
	table := NewToolTable(saver)

	require.NoError(t, table.Set("pipette", Coordinates{X: -88}))
	require.NoError(t, table.Adjust("pipette", Coordinates{Y: 2}))
	require.NoError(t, table.Delete("pipette"))

	assert.Equal(t, 3, saver.calls)
	assert.Empty(t, saver.last)
}

func TestToolTable_SaverFailureSurfaces(t *testing.T) {
	saver := &recordingSaver{err: errors.New("disk full")}
	table := NewToolTable(saver)

	err := table.Set("pipette", Coordinates{X: -88})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persisting tool table")
}
