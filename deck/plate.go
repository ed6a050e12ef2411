package deck

import (
	"fmt"
	"strconv"
	"strings"
)

// PlateSpec describes a well plate in the deck configuration. The grid is
// generated from the A1 reference well, the row/column spacing, and the
// plate orientation on the deck.
type PlateSpec struct {
	ID          string      `yaml:"id"`
	A1          Coordinates `yaml:"a1"`
	Rows        int         `yaml:"rows"`
	Cols        int         `yaml:"cols"`
	XSpacing    float64     `yaml:"x_spacing"`
	YSpacing    float64     `yaml:"y_spacing"`
	Orientation int         `yaml:"orientation"`
	Radius      float64     `yaml:"radius"`
	ZBottom     float64     `yaml:"z_bottom"`
	ZTop        float64     `yaml:"z_top"`
	Capacity    float64     `yaml:"capacity"`
	Volume      float64     `yaml:"volume"`
	DeadVolume  float64     `yaml:"dead_volume"`
}

// Well is one cell of a Plate. It carries the full cylindrical vessel model,
// so per-well volume accounting is independent of every other well.
type Well struct {
	Vial

	row rune
	col int
}

// Row returns the well's row letter ('A'..).
func (w *Well) Row() rune { return w.row }

// Col returns the well's 1-based column number.
func (w *Well) Col() int { return w.col }

// Plate is a rectangular grid of wells laid out from a reference well.
type Plate struct {
	id    string
	spec  PlateSpec
	wells map[string]*Well
	order []string
}

// NewPlate generates the well grid from spec. Orientation selects one of
// four 90-degree placements of the plate relative to the machine axes.
func NewPlate(spec PlateSpec) (*Plate, error) {
	if spec.ID == "" {
		return nil, fmt.Errorf("%w: plate id is empty", ErrInvalidConfig)
	}
	if spec.Rows < 1 || spec.Rows > 26 || spec.Cols < 1 {
		return nil, fmt.Errorf("%w: plate %s grid %dx%d", ErrInvalidConfig, spec.ID, spec.Rows, spec.Cols)
	}
	if spec.Orientation < 0 || spec.Orientation > 3 {
		return nil, fmt.Errorf("%w: plate %s orientation %d, must be 0-3",
			ErrInvalidConfig, spec.ID, spec.Orientation)
	}

	p := &Plate{
		id:    spec.ID,
		spec:  spec,
		wells: make(map[string]*Well, spec.Rows*spec.Cols),
		order: make([]string, 0, spec.Rows*spec.Cols),
	}
	for r := 0; r < spec.Rows; r++ {
		row := rune('A' + r)
		for c := 1; c <= spec.Cols; c++ {
			id := string(row) + strconv.Itoa(c)
			x, y := orientWell(spec, float64(c-1)*spec.XSpacing, float64(r)*spec.YSpacing)
			well := &Well{row: row, col: c}
			err := initVial(&well.Vial, VialSpec{
				ID:         p.id + "_" + id,
				Position:   Coordinates{X: x, Y: y, Z: spec.A1.Z},
				Capacity:   spec.Capacity,
				Volume:     spec.Volume,
				Radius:     spec.Radius,
				ZBottom:    spec.ZBottom,
				ZTop:       spec.ZTop,
				DeadVolume: spec.DeadVolume,
			})
			if err != nil {
				return nil, err
			}
			p.wells[id] = well
			p.order = append(p.order, id)
		}
	}
	return p, nil
}

// ID returns the plate identifier.
func (p *Plate) ID() string { return p.id }

// Well returns the well with the given id, e.g. "A1" or "H12". Lookups are
// case-insensitive on the row letter.
func (p *Plate) Well(id string) (*Well, error) {
	well, ok := p.wells[strings.ToUpper(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %q on plate %s", ErrUnknownWell, id, p.id)
	}
	return well, nil
}

// Wells returns every well in row-major order (A1, A2, .., B1, ..).
func (p *Plate) Wells() []*Well {
	wells := make([]*Well, len(p.order))
	for i, id := range p.order {
		wells[i] = p.wells[id]
	}
	return wells
}

// orientWell maps a well's grid displacement from A1 into machine XY for
// the plate's orientation.
func orientWell(spec PlateSpec, dx, dy float64) (float64, float64) {
	switch spec.Orientation {
	case 1:
		return spec.A1.X + dx, spec.A1.Y + dy
	case 2:
		return spec.A1.X + dy, spec.A1.Y - dx
	case 3:
		return spec.A1.X - dy, spec.A1.Y + dx
	default:
		return spec.A1.X - dx, spec.A1.Y - dy
	}
}
