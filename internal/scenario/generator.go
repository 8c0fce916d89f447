package scenario

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/SquadMinimax/internal/game/core"
	"github.com/mitchelldurbincs/SquadMinimax/internal/game/world"
)

// Owner ids used by generated observations
const (
	AgentOwner = 0
	EnemyOwner = 1
)

// ErrNotEnoughCells is returned when obstacles and units cannot all fit on the map
var ErrNotEnoughCells = errors.New("not enough free cells")

// GeneratorConfig holds configuration for random scenario generation
type GeneratorConfig struct {
	Width        int
	Height       int
	Obstacles    int
	UnitsPerSide int
	Template     core.Template
	// DeadRatio is the chance in [0,1] that a generated unit starts dead
	DeadRatio float64
}

// DefaultGeneratorConfig returns a small skirmish with a melee template
func DefaultGeneratorConfig(w, h int) GeneratorConfig {
	return GeneratorConfig{
		Width:        w,
		Height:       h,
		Obstacles:    (w * h) / 8,
		UnitsPerSide: 2,
		Template: core.Template{
			BasicAttack: 5,
			Armor:       2,
			Range:       1,
			MaxHealth:   10,
		},
	}
}

// Generator builds observations with a deterministic RNG
type Generator struct {
	config GeneratorConfig
	rng    *rand.Rand
}

// NewGenerator creates a new scenario generator
func NewGenerator(config GeneratorConfig, rng *rand.Rand) *Generator {
	return &Generator{
		config: config,
		rng:    rng,
	}
}

// NewSeededGenerator creates a generator whose output depends only on seed
func NewSeededGenerator(config GeneratorConfig, seed uint64) *Generator {
	return NewGenerator(config, rand.New(rand.NewSource(seed)))
}

// Generate places obstacles and both squads on distinct cells. Player units
// get ids 1..n and enemy units n+1..2n.
func (g *Generator) Generate() (world.Observation, error) {
	cfg := g.config
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return world.Observation{}, fmt.Errorf("%w: %dx%d", core.ErrInvalidDimensions, cfg.Width, cfg.Height)
	}
	need := cfg.Obstacles + 2*cfg.UnitsPerSide
	if need > cfg.Width*cfg.Height {
		return world.Observation{}, fmt.Errorf("%w: need %d on a %dx%d map", ErrNotEnoughCells, need, cfg.Width, cfg.Height)
	}

	// a prefix of a random permutation gives distinct cells without retry loops
	cells := g.rng.Perm(cfg.Width * cfg.Height)[:need]
	at := func(i int) core.Coordinate {
		return core.NewCoordinate(cells[i]%cfg.Width, cells[i]/cfg.Width)
	}

	obs := world.Observation{
		Width:       cfg.Width,
		Height:      cfg.Height,
		AgentPlayer: AgentOwner,
		Obstacles:   make([]core.Coordinate, 0, cfg.Obstacles),
		Units:       make([]world.ObservedUnit, 0, 2*cfg.UnitsPerSide),
	}
	for i := 0; i < cfg.Obstacles; i++ {
		obs.Obstacles = append(obs.Obstacles, at(i))
	}
	for i := 0; i < 2*cfg.UnitsPerSide; i++ {
		owner := AgentOwner
		if i >= cfg.UnitsPerSide {
			owner = EnemyOwner
		}
		obs.Units = append(obs.Units, g.unit(i+1, owner, at(cfg.Obstacles+i)))
	}
	return obs, nil
}

func (g *Generator) unit(id, owner int, pos core.Coordinate) world.ObservedUnit {
	tpl := g.config.Template
	health := tpl.MaxHealth
	if health > 1 {
		health = 1 + g.rng.Intn(tpl.MaxHealth)
	}
	if g.config.DeadRatio > 0 && g.rng.Float64() < g.config.DeadRatio {
		health = 0
	}
	return world.ObservedUnit{
		ID:             id,
		Owner:          owner,
		X:              pos.X,
		Y:              pos.Y,
		Health:         health,
		BasicAttack:    tpl.BasicAttack,
		PiercingAttack: tpl.PiercingAttack,
		Armor:          tpl.Armor,
		Range:          tpl.Range,
		MaxHealth:      tpl.MaxHealth,
	}
}

// GenerateState generates an observation and builds its root state
func (g *Generator) GenerateState() (*world.State, error) {
	obs, err := g.Generate()
	if err != nil {
		return nil, err
	}
	return world.FromObservation(obs)
}
