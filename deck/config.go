package deck

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// ToolConfig is one tool's calibration in the deck document: its tip offset
// from the gantry reference, its parking position, and optionally the rinse
// bath it uses.
type ToolConfig struct {
	Offset Coordinates  `yaml:"offset"`
	Rest   Coordinates  `yaml:"rest"`
	Bath   *Coordinates `yaml:"bath,omitempty"`
}

// DeckConfig is the on-disk description of the deck: the machine envelope,
// the safe travel height, tool calibrations, and the labware layout.
type DeckConfig struct {
	WorkingVolume WorkingVolume         `yaml:"working_volume"`
	SafeHeight    float64               `yaml:"safe_height"`
	Tools         map[string]ToolConfig `yaml:"tools"`
	Vials         []VialSpec            `yaml:"vials"`
	Plate         *PlateSpec            `yaml:"plate,omitempty"`
}

// LoadDeckConfig reads and parses a deck document.
func LoadDeckConfig(path string) (*DeckConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("deck: reading config: %w", err)
	}
	cfg := &DeckConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Save writes the document back to path.
func (c *DeckConfig) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("deck: encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("deck: writing config: %w", err)
	}
	return nil
}

// ToolTable builds a tool table from the configured tools. When path is
// non-empty, calibration mutations are written back to the document file.
func (c *DeckConfig) ToolTable(path string) (*ToolTable, error) {
	var saver Saver
	if path != "" {
		saver = &fileSaver{path: path, cfg: c}
	}
	table := NewToolTable(nil)
	for name, tool := range c.Tools {
		if err := table.Set(name, tool.Offset); err != nil {
			return nil, err
		}
	}
	table.saver = saver
	return table, nil
}

// Vessels instantiates every configured vial.
func (c *DeckConfig) Vessels() ([]*Vial, error) {
	vials := make([]*Vial, 0, len(c.Vials))
	for _, spec := range c.Vials {
		vial, err := NewVial(spec)
		if err != nil {
			return nil, err
		}
		vials = append(vials, vial)
	}
	return vials, nil
}

// fileSaver writes tool-offset mutations back into the deck document so
// calibration survives restarts.
type fileSaver struct {
	mu   sync.Mutex
	path string
	cfg  *DeckConfig
}

func (s *fileSaver) SaveTools(tools map[string]Coordinates) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.Tools == nil {
		s.cfg.Tools = make(map[string]ToolConfig, len(tools))
	}
	for name := range s.cfg.Tools {
		if _, ok := tools[name]; !ok {
			delete(s.cfg.Tools, name)
		}
	}
	for name, offset := range tools {
		tool := s.cfg.Tools[name]
		tool.Offset = offset
		s.cfg.Tools[name] = tool
	}
	return s.cfg.Save(s.path)
}
