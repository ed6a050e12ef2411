package grbl

import (
	"math"
	"strconv"
	"strings"

	"github.com/BU-KABlab/PANDA-BEAR-sub004/deck"
)

// Command mnemonics and realtime bytes understood by GRBL v1.1.
const (
	cmdHome     = "$H"
	cmdStatus   = "?"
	cmdUnlock   = "$X"
	cmdFeedHold = "!"
	cmdSettings = "$$"

	softResetByte = 0x18
)

// Axis selects which axis words a Move renders.
type Axis uint8

const (
	AxisX Axis = 1 << iota
	AxisY
	AxisZ

	AxisAll = AxisX | AxisY | AxisZ
)

// Move is one point-to-point motion command. Target is an absolute machine
// position; only the axes selected by Axes are rendered, so a Z-only dip
// leaves X and Y untouched on the controller.
type Move struct {
	Target deck.Coordinates
	Axes   Axis
	// Feed selects a G01 feed move at the programmed feed rate instead of
	// a G0 rapid.
	Feed bool
}

// Command renders the move as a GRBL command line, e.g. "G0 X-78 Y20 Z-50".
// Coordinates are printed at 3 decimals with trailing zeros trimmed.
func (m Move) Command() string {
	var b strings.Builder
	if m.Feed {
		b.WriteString("G01")
	} else {
		b.WriteString("G0")
	}
	if m.Axes&AxisX != 0 {
		b.WriteString(" X")
		b.WriteString(formatCoord(m.Target.X))
	}
	if m.Axes&AxisY != 0 {
		b.WriteString(" Y")
		b.WriteString(formatCoord(m.Target.Y))
	}
	if m.Axes&AxisZ != 0 {
		b.WriteString(" Z")
		b.WriteString(formatCoord(m.Target.Z))
	}
	return b.String()
}

// FeedRateCommand renders an F word setting the modal feed rate.
func FeedRateCommand(rate float64) string {
	return "F" + formatCoord(rate)
}

func formatCoord(v float64) string {
	rounded := math.Round(v*1000) / 1000
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// isMotion reports whether line commands motion, and so must be followed by
// polling the controller back to Idle.
func isMotion(line string) bool {
	if line == cmdHome {
		return true
	}
	return strings.HasPrefix(line, "G0") || strings.HasPrefix(line, "G1") ||
		strings.HasPrefix(line, "G2") || strings.HasPrefix(line, "G3")
}
