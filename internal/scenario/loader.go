package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mitchelldurbincs/SquadMinimax/internal/game/core"
	"github.com/mitchelldurbincs/SquadMinimax/internal/game/world"
)

// File is the YAML layout of a scenario. Units either name an entry in
// Templates or carry their stats inline.
type File struct {
	Width       int                     `yaml:"width"`
	Height      int                     `yaml:"height"`
	AgentPlayer int                     `yaml:"agent_player"`
	Obstacles   []Point                 `yaml:"obstacles,omitempty"`
	Templates   map[string]TemplateSpec `yaml:"templates,omitempty"`
	Units       []UnitSpec              `yaml:"units"`
}

// Point is a cell position
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// TemplateSpec mirrors core.Template
type TemplateSpec struct {
	BasicAttack    int `yaml:"basic_attack"`
	PiercingAttack int `yaml:"piercing_attack"`
	Armor          int `yaml:"armor"`
	Range          int `yaml:"range"`
	MaxHealth      int `yaml:"max_health"`
}

// UnitSpec describes one observed unit
type UnitSpec struct {
	ID       int           `yaml:"id"`
	Owner    int           `yaml:"owner"`
	X        int           `yaml:"x"`
	Y        int           `yaml:"y"`
	Health   int           `yaml:"health"`
	Template string        `yaml:"template,omitempty"`
	Stats    *TemplateSpec `yaml:"stats,omitempty"`
}

// Load reads a scenario file
func Load(path string) (world.Observation, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return world.Observation{}, fmt.Errorf("reading scenario: %w", err)
	}
	obs, err := Parse(b)
	if err != nil {
		return world.Observation{}, fmt.Errorf("scenario %s: %w", path, err)
	}
	return obs, nil
}

// Parse decodes a scenario document into an observation
func Parse(data []byte) (world.Observation, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return world.Observation{}, fmt.Errorf("%w: %v", core.ErrInvalidObservation, err)
	}
	return f.Observation()
}

// Observation resolves templates and converts the file to an observation
func (f *File) Observation() (world.Observation, error) {
	obs := world.Observation{
		Width:       f.Width,
		Height:      f.Height,
		AgentPlayer: f.AgentPlayer,
		Obstacles:   make([]core.Coordinate, 0, len(f.Obstacles)),
		Units:       make([]world.ObservedUnit, 0, len(f.Units)),
	}
	for _, p := range f.Obstacles {
		obs.Obstacles = append(obs.Obstacles, core.NewCoordinate(p.X, p.Y))
	}
	for _, u := range f.Units {
		stats := u.Stats
		if stats == nil {
			tpl, ok := f.Templates[u.Template]
			if !ok {
				return world.Observation{}, fmt.Errorf("%w: unit %d references unknown template %q", core.ErrInvalidObservation, u.ID, u.Template)
			}
			stats = &tpl
		}
		obs.Units = append(obs.Units, world.ObservedUnit{
			ID:             u.ID,
			Owner:          u.Owner,
			X:              u.X,
			Y:              u.Y,
			Health:         u.Health,
			BasicAttack:    stats.BasicAttack,
			PiercingAttack: stats.PiercingAttack,
			Armor:          stats.Armor,
			Range:          stats.Range,
			MaxHealth:      stats.MaxHealth,
		})
	}
	return obs, nil
}

// Marshal encodes an observation with every unit's stats inline
func Marshal(obs world.Observation) ([]byte, error) {
	f := File{
		Width:       obs.Width,
		Height:      obs.Height,
		AgentPlayer: obs.AgentPlayer,
		Units:       make([]UnitSpec, 0, len(obs.Units)),
	}
	for _, c := range obs.Obstacles {
		f.Obstacles = append(f.Obstacles, Point{X: c.X, Y: c.Y})
	}
	for _, ou := range obs.Units {
		f.Units = append(f.Units, UnitSpec{
			ID:     ou.ID,
			Owner:  ou.Owner,
			X:      ou.X,
			Y:      ou.Y,
			Health: ou.Health,
			Stats: &TemplateSpec{
				BasicAttack:    ou.BasicAttack,
				PiercingAttack: ou.PiercingAttack,
				Armor:          ou.Armor,
				Range:          ou.Range,
				MaxHealth:      ou.MaxHealth,
			},
		})
	}
	return yaml.Marshal(&f)
}
