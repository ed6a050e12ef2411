package deck

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVial(t *testing.T, volume float64) *Vial {
	t.Helper()
	v, err := NewVial(VialSpec{
		ID:         "stock",
		Position:   Coordinates{X: -100, Y: -40},
		Capacity:   20000,
		Volume:     volume,
		Radius:     13.5,
		ZBottom:    -64,
		DeadVolume: 500,
	})
	require.NoError(t, err)
	return v
}

func TestNewVial_Validation(t *testing.T) {
	_, err := NewVial(VialSpec{ID: "v", Capacity: 0, Radius: 1})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewVial(VialSpec{ID: "v", Capacity: 100, Radius: 0})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewVial(VialSpec{ID: "v", Capacity: 100, Radius: 1, Volume: 150})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewVial(VialSpec{Capacity: 100, Radius: 1})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestVial_AddThenDepth(t *testing.T) {
	v := testVial(t, 5000)

	require.NoError(t, v.UpdateVolume(2000))
	assert.Equal(t, 7000.0, v.Volume())

	area := math.Pi * 13.5 * 13.5
	wantSurface := 7000/area - 64
	assert.InDelta(t, wantSurface, v.Depth(), 0.001)
	assert.InDelta(t, wantSurface-1, v.WithdrawalDepth(), 0.001)
}

func TestVial_OverdraftLeavesVolumeUnchanged(t *testing.T) {
	v := testVial(t, 5000)

	err := v.UpdateVolume(-6000)
	var overdraft *OverdraftError
	require.ErrorAs(t, err, &overdraft)
	assert.Equal(t, "stock", overdraft.Vessel)
	assert.Equal(t, 5000.0, overdraft.Volume)
	assert.Equal(t, -6000.0, overdraft.Delta)
	assert.Equal(t, 5000.0, v.Volume(), "failed update must not mutate")
}

func TestVial_OverfillLeavesVolumeUnchanged(t *testing.T) {
	v := testVial(t, 5000)

	err := v.UpdateVolume(16000)
	var overfill *OverfillError
	require.ErrorAs(t, err, &overfill)
	assert.Equal(t, 20000.0, overfill.Capacity)
	assert.Equal(t, 5000.0, v.Volume())
}

func TestVial_CheckVolumeIsPure(t *testing.T) {
	v := testVial(t, 5000)

	assert.NoError(t, v.CheckVolume(-5000))
	assert.Error(t, v.CheckVolume(-5001))
	assert.Equal(t, 5000.0, v.Volume())
}

func TestVial_UpdateSequenceHoldsInvariant(t *testing.T) {
	v := testVial(t, 0)

	deltas := []float64{4000, -1500, 2500, -5000, 100.000001}
	for _, d := range deltas {
		require.NoError(t, v.UpdateVolume(d))
		vol := v.Volume()
		assert.GreaterOrEqual(t, vol, 0.0)
		assert.LessOrEqual(t, vol, v.Capacity())
	}
	assert.InDelta(t, 100.000001, v.Volume(), 1e-9)
}

func TestVial_DepthMonotonicAndClamped(t *testing.T) {
	prev := math.Inf(-1)
	for _, vol := range []float64{0, 100, 1000, 5000, 12000, 20000} {
		v := testVial(t, vol)
		depth := v.Depth()
		assert.GreaterOrEqual(t, depth, -64.0, "never below the bottom")
		assert.GreaterOrEqual(t, depth, prev, "depth rises with volume")
		prev = depth
	}

	empty := testVial(t, 0)
	assert.Equal(t, -64.0, empty.Depth(), "empty vial reports its bottom")
}

func TestVial_WithdrawalDepthClampedAtDeadVolume(t *testing.T) {
	v := testVial(t, 600)

	area := math.Pi * 13.5 * 13.5
	deadFloor := 500/area - 64
	assert.InDelta(t, deadFloor, v.WithdrawalDepth(), 0.001,
		"tip must not dip into the dead volume")
}
