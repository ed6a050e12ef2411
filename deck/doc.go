// Package deck models the physical resources of the robot deck: machine
// coordinates and the reachable working volume, per-tool offsets, safe-path
// planning above labware, and liquid vessels (vials and well plates) with
// volume accounting.
//
// All positions are absolute machine coordinates in millimeters, rounded to
// 3 decimal places. Liquid volumes are microliters rounded to 6 decimal
// places; one microliter occupies one cubic millimeter, so liquid heights
// follow directly from vessel geometry.
package deck
