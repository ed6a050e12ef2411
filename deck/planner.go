package deck

// Planner turns a point-to-point move into a sequence of single-axis legs
// that cannot drag a tool through labware. SafeHeight is the Z floor below
// which horizontal travel is forbidden.
type Planner struct {
	SafeHeight float64
}

// Legs plans the path from current to target. Each returned leg is an
// absolute waypoint changing one axis at a time:
//
//   - if the tool sits below the safe height and must travel horizontally,
//     the first leg raises Z to the safe height
//   - X travel, then Y travel, each as its own leg
//   - Z descent is always the final leg
//
// When current and target share the same XY position no horizontal legs are
// emitted and Z moves directly. Legs never interpolates all three axes in
// one leg.
func (p Planner) Legs(current, target Coordinates) []Coordinates {
	pos := current.Round()
	target = target.Round()

	var legs []Coordinates
	if !pos.XYEqual(target) && pos.Z < p.SafeHeight {
		pos.Z = p.SafeHeight
		legs = append(legs, pos)
	}
	if pos.X != target.X {
		pos.X = target.X
		legs = append(legs, pos)
	}
	if pos.Y != target.Y {
		pos.Y = target.Y
		legs = append(legs, pos)
	}
	if pos.Z != target.Z {
		pos.Z = target.Z
		legs = append(legs, pos)
	}
	return legs
}
