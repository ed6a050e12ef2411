// Package motion provides the tool-aware movement driver: it resolves
// logical deck positions through the tool-offset table, validates targets
// against the working volume, plans obstruction-safe paths and executes
// them on a GRBL controller.
package motion

import (
	"errors"
	"fmt"
	"sync"

	"github.com/BU-KABlab/PANDA-BEAR-sub004/deck"
	"github.com/BU-KABlab/PANDA-BEAR-sub004/grbl"
	"github.com/BU-KABlab/PANDA-BEAR-sub004/logger"
)

// ErrNoBath indicates a rinse request for a tool with no configured bath.
var ErrNoBath = errors.New("motion: no bath configured for tool")

// Controller is the capability surface the driver needs from a motion
// controller. *grbl.Controller satisfies it.
type Controller interface {
	Execute(line string) (string, error)
	ExecuteMove(m grbl.Move) error
	Status() (grbl.Status, error)
	Home() error
	Close() error
}

// Driver executes tool-aware moves. Targets are logical deck positions; the
// driver resolves them to machine positions with the active tool's offset
// and, unless told otherwise, routes them through single-axis legs that
// raise the tool to the safe height before any horizontal travel.
type Driver struct {
	ctrl    Controller
	tools   *deck.ToolTable
	planner deck.Planner
	bounds  deck.WorkingVolume
	config  map[string]deck.ToolConfig
	log     logger.Logger

	mu         sync.Mutex
	activeTool string
}

// NewDriver builds a driver over an already connected controller.
func NewDriver(ctrl Controller, cfg *deck.DeckConfig, tools *deck.ToolTable, log logger.Logger) *Driver {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Driver{
		ctrl:    ctrl,
		tools:   tools,
		planner: deck.Planner{SafeHeight: cfg.SafeHeight},
		bounds:  cfg.WorkingVolume,
		config:  cfg.Tools,
		log:     log,
	}
}

type moveOptions struct {
	direct bool
	feed   bool
}

// MoveOption adjusts how a single move executes.
type MoveOption func(*moveOptions)

// Direct skips safe-path planning and commands the target in one line.
// Only safe when the caller knows the straight path is clear.
func Direct() MoveOption {
	return func(o *moveOptions) { o.direct = true }
}

// AtFeedRate uses G01 feed moves instead of G0 rapids.
func AtFeedRate() MoveOption {
	return func(o *moveOptions) { o.feed = true }
}

// MoveTo places the named tool's tip at the logical deck target.
func (d *Driver) MoveTo(tool string, target deck.Coordinates, opts ...MoveOption) error {
	machine, err := d.tools.Resolve(tool, target)
	if err != nil {
		return err
	}
	if err := d.moveMachine(machine, opts...); err != nil {
		return err
	}

	d.mu.Lock()
	d.activeTool = tool
	d.mu.Unlock()

	return nil
}

// Position returns the named tool's tip position in logical deck
// coordinates, from a fresh status query.
func (d *Driver) Position(tool string) (deck.Coordinates, error) {
	status, err := d.ctrl.Status()
	if err != nil {
		return deck.Coordinates{}, err
	}
	return d.tools.Inverse(tool, status.Position)
}

// Home runs the controller's homing cycle.
func (d *Driver) Home() error {
	return d.ctrl.Home()
}

// Rest parks the named tool at its configured rest position.
func (d *Driver) Rest(tool string) error {
	cfg, ok := d.config[tool]
	if !ok {
		return fmt.Errorf("%w: %q", deck.ErrUnknownTool, tool)
	}
	d.log.Info("parking tool", "tool", tool, "rest", cfg.Rest.String())
	return d.moveMachine(cfg.Rest)
}

// Rinse dips the named tool into its bath the given number of cycles,
// raising back to the safe height between dips.
func (d *Driver) Rinse(tool string, cycles int) error {
	cfg, ok := d.config[tool]
	if !ok {
		return fmt.Errorf("%w: %q", deck.ErrUnknownTool, tool)
	}
	if cfg.Bath == nil {
		return fmt.Errorf("%w: %q", ErrNoBath, tool)
	}

	bath := *cfg.Bath
	d.log.Info("rinsing tool", "tool", tool, "bath", bath.String(), "cycles", cycles)
	if err := d.moveMachine(bath); err != nil {
		return err
	}
	for i := 1; i < cycles; i++ {
		up := grbl.Move{
			Target: deck.Coordinates{Z: d.planner.SafeHeight},
			Axes:   grbl.AxisZ,
		}
		if err := d.ctrl.ExecuteMove(up); err != nil {
			return err
		}
		down := grbl.Move{Target: bath, Axes: grbl.AxisZ}
		if err := d.ctrl.ExecuteMove(down); err != nil {
			return err
		}
	}
	return nil
}

// Close parks the active tool best-effort, then closes the controller.
// Parking failures are logged, never returned, so the link always closes.
func (d *Driver) Close() error {
	d.mu.Lock()
	tool := d.activeTool
	d.mu.Unlock()

	if tool != "" {
		if err := d.Rest(tool); err != nil {
			d.log.Error("parking before close failed", "tool", tool, "error", err)
		}
	}
	return d.ctrl.Close()
}

// moveMachine drives to an absolute machine target, planning safe legs
// unless Direct was requested.
func (d *Driver) moveMachine(machine deck.Coordinates, opts ...MoveOption) error {
	var o moveOptions
	for _, opt := range opts {
		opt(&o)
	}

	machine = machine.Round()
	if !d.bounds.Contains(machine) {
		return fmt.Errorf("%w: %s", deck.ErrOutOfBounds, machine.String())
	}

	status, err := d.ctrl.Status()
	if err != nil {
		return err
	}

	if o.direct {
		return d.ctrl.ExecuteMove(grbl.Move{Target: machine, Axes: grbl.AxisAll, Feed: o.feed})
	}

	legs := d.planner.Legs(status.Position, machine)
	d.log.Debug("move planned", "from", status.Position.String(),
		"to", machine.String(), "legs", len(legs))
	for _, leg := range legs {
		move := grbl.Move{Target: leg, Axes: grbl.AxisAll, Feed: o.feed}
		if err := d.ctrl.ExecuteMove(move); err != nil {
			return err
		}
	}
	return nil
}
