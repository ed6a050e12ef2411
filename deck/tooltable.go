package deck

import (
	"fmt"

	"github.com/puzpuzpuz/xsync/v3"
)

// Saver persists the tool-offset table after a mutation. Implementations
// receive a snapshot of every registered tool.
type Saver interface {
	SaveTools(tools map[string]Coordinates) error
}

// ToolTable maps tool names to their machine offsets. A tool's offset is the
// displacement from the gantry reference point to the tool tip, so resolving
// a logical deck position adds the offset and inverting a machine position
// subtracts it.
//
// The table is safe for concurrent use. Mutations are written through the
// optional Saver before they are considered complete.
type ToolTable struct {
	offsets *xsync.MapOf[string, Coordinates]
	saver   Saver
}

// NewToolTable creates an empty tool table. saver may be nil when
// calibration persistence is not needed.
func NewToolTable(saver Saver) *ToolTable {
	return &ToolTable{
		offsets: xsync.NewMapOf[string, Coordinates](),
		saver:   saver,
	}
}

// Get returns the offset registered for tool.
func (t *ToolTable) Get(tool string) (Coordinates, error) {
	offset, ok := t.offsets.Load(tool)
	if !ok {
		return Coordinates{}, fmt.Errorf("%w: %q", ErrUnknownTool, tool)
	}
	return offset, nil
}

// Set registers or replaces the offset for tool.
func (t *ToolTable) Set(tool string, offset Coordinates) error {
	t.offsets.Store(tool, offset.Round())
	return t.persist()
}

// Adjust shifts an existing tool's offset by delta, for incremental
// calibration nudges.
func (t *ToolTable) Adjust(tool string, delta Coordinates) error {
	offset, ok := t.offsets.Load(tool)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTool, tool)
	}
	t.offsets.Store(tool, offset.Add(delta))
	return t.persist()
}

// Delete removes tool from the table.
func (t *ToolTable) Delete(tool string) error {
	if _, ok := t.offsets.LoadAndDelete(tool); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTool, tool)
	}
	return t.persist()
}

// Tools returns a snapshot of every registered tool and its offset.
func (t *ToolTable) Tools() map[string]Coordinates {
	snapshot := make(map[string]Coordinates, t.offsets.Size())
	t.offsets.Range(func(name string, offset Coordinates) bool {
		snapshot[name] = offset
		return true
	})
	return snapshot
}

// Resolve converts a logical deck position into the machine position that
// places the named tool's tip there.
func (t *ToolTable) Resolve(tool string, logical Coordinates) (Coordinates, error) {
	offset, err := t.Get(tool)
	if err != nil {
		return Coordinates{}, err
	}
	return logical.Add(offset), nil
}

// Inverse converts a machine position back into the logical deck position of
// the named tool's tip. It is the round-trip inverse of Resolve at
// coordinate precision.
func (t *ToolTable) Inverse(tool string, machine Coordinates) (Coordinates, error) {
	offset, err := t.Get(tool)
	if err != nil {
		return Coordinates{}, err
	}
	return machine.Sub(offset), nil
}

func (t *ToolTable) persist() error {
	if t.saver == nil {
		return nil
	}
	if err := t.saver.SaveTools(t.Tools()); err != nil {
		return fmt.Errorf("deck: persisting tool table: %w", err)
	}
	return nil
}
