package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mitchelldurbincs/SquadMinimax/internal/game/core"
	"github.com/mitchelldurbincs/SquadMinimax/internal/game/rules"
	"github.com/mitchelldurbincs/SquadMinimax/internal/scenario"
)

// Config holds all configuration for the application
type Config struct {
	Utility  UtilityConfig  `mapstructure:"utility"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Scenario ScenarioConfig `mapstructure:"scenario"`
	Inspect  InspectConfig  `mapstructure:"inspect"`
}

// UtilityConfig holds the evaluation function settings
type UtilityConfig struct {
	Weights WeightsConfig `mapstructure:"weights"`
}

// WeightsConfig holds one weight per utility feature
type WeightsConfig struct {
	PlayerHitpoints float64 `mapstructure:"player_hitpoints"`
	EnemyHitpoints  float64 `mapstructure:"enemy_hitpoints"`
	FriendliesAlive float64 `mapstructure:"friendlies_alive"`
	EnemiesAlive    float64 `mapstructure:"enemies_alive"`
	EnemyCornered   float64 `mapstructure:"enemy_cornered"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ScenarioConfig selects the starting observation
type ScenarioConfig struct {
	Path     string         `mapstructure:"path"` // YAML scenario; random generation when empty
	Random   RandomConfig   `mapstructure:"random"`
	Template TemplateConfig `mapstructure:"template"`
}

// RandomConfig holds random scenario generation settings
type RandomConfig struct {
	Width        int     `mapstructure:"width"`
	Height       int     `mapstructure:"height"`
	Obstacles    int     `mapstructure:"obstacles"`
	UnitsPerSide int     `mapstructure:"units_per_side"`
	DeadRatio    float64 `mapstructure:"dead_ratio"`
	Seed         uint64  `mapstructure:"seed"`
}

// TemplateConfig holds the stats given to generated units
type TemplateConfig struct {
	BasicAttack    int `mapstructure:"basic_attack"`
	PiercingAttack int `mapstructure:"piercing"`
	Armor          int `mapstructure:"armor"`
	Range          int `mapstructure:"range"`
	MaxHealth      int `mapstructure:"max_health"`
}

// InspectConfig holds tree inspection settings
type InspectConfig struct {
	Depth   int `mapstructure:"depth"`
	Workers int `mapstructure:"workers"`
	// ProgressInterval enables periodic progress logs during tree counts; 0 disables
	ProgressInterval time.Duration `mapstructure:"progress_interval"`
}

var (
	// Global config instance
	mu  sync.RWMutex
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Utility weights default to zero: every state scores 0 until tuned
	v.SetDefault("utility.weights.player_hitpoints", 0.0)
	v.SetDefault("utility.weights.enemy_hitpoints", 0.0)
	v.SetDefault("utility.weights.friendlies_alive", 0.0)
	v.SetDefault("utility.weights.enemies_alive", 0.0)
	v.SetDefault("utility.weights.enemy_cornered", 0.0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("scenario.path", "")
	v.SetDefault("scenario.random.width", 8)
	v.SetDefault("scenario.random.height", 8)
	v.SetDefault("scenario.random.obstacles", 8)
	v.SetDefault("scenario.random.units_per_side", 2)
	v.SetDefault("scenario.random.dead_ratio", 0.0)
	v.SetDefault("scenario.random.seed", 1)
	v.SetDefault("scenario.template.basic_attack", 5)
	v.SetDefault("scenario.template.piercing", 0)
	v.SetDefault("scenario.template.armor", 2)
	v.SetDefault("scenario.template.range", 1)
	v.SetDefault("scenario.template.max_health", 10)

	v.SetDefault("inspect.depth", 2)
	v.SetDefault("inspect.workers", 4)
	v.SetDefault("inspect.progress_interval", "0s")
}

// configMissing reports whether err only says that no config file exists.
// An explicit path that does not exist falls back to defaults; any other
// read or parse failure does not.
func configMissing(configPath string, err error) bool {
	if configPath != "" {
		return errors.Is(err, os.ErrNotExist)
	}
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound)
}

// Init initializes the configuration
func Init(configPath string) error {
	nv := viper.New()

	// Set defaults before loading any config
	setViperDefaults(nv)

	if configPath != "" {
		nv.SetConfigFile(configPath)
	} else {
		nv.SetConfigName("config")
		nv.SetConfigType("yaml")
		nv.AddConfigPath(".")
		nv.AddConfigPath("./config")
		nv.AddConfigPath("/etc/squad-minimax")
	}

	nv.SetEnvPrefix("SQM")
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()

	if err := nv.ReadInConfig(); err != nil && !configMissing(configPath, err) {
		return fmt.Errorf("error reading config file: %w", err)
	}

	c := &Config{}
	if err := nv.Unmarshal(c); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	v = nv
	cfg = c
	return nil
}

// Get returns the global config instance
func Get() *Config {
	mu.RLock()
	c := cfg
	mu.RUnlock()
	if c != nil {
		return c
	}
	// Initialize with defaults if not already initialized
	if err := Init(""); err != nil {
		panic("failed to initialize config with defaults: " + err.Error())
	}
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	mu.RLock()
	defer mu.RUnlock()
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// LoadEnvironmentConfig loads environment-specific config overlay
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	envFile := fmt.Sprintf("config.%s.yaml", env)
	vp := GetViper()
	vp.SetConfigFile(envFile)
	if err := vp.MergeInConfig(); err != nil && !configMissing(envFile, err) {
		return fmt.Errorf("error merging environment config %s: %w", envFile, err)
	}
	return reload()
}

// reload re-decodes the viper state and swaps the global config
func reload() error {
	c := &Config{}
	if err := GetViper().Unmarshal(c); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	mu.Lock()
	cfg = c
	mu.Unlock()
	return nil
}

// Set allows runtime config updates. An invalid value leaves the previous
// config in place and is reported.
func Set(key string, value interface{}) error {
	GetViper().Set(key, value)
	return reload()
}

// GetString gets a string value from config
func GetString(key string) string {
	return GetViper().GetString(key)
}

// GetInt gets an int value from config
func GetInt(key string) int {
	return GetViper().GetInt(key)
}

// GetFloat64 gets a float64 value from config
func GetFloat64(key string) float64 {
	return GetViper().GetFloat64(key)
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return GetViper().ConfigFileUsed()
}

// WatchConfig enables hot-reloading of the config file. onChange receives
// the reload error, nil when the new config was applied.
func WatchConfig(onChange func(error)) {
	vp := GetViper()
	vp.OnConfigChange(func(e fsnotify.Event) {
		err := reload()
		if onChange != nil {
			onChange(err)
		}
	})
	vp.WatchConfig()
}

// Weights converts the configured weights for the utility evaluator
func (c *Config) Weights() rules.Weights {
	w := c.Utility.Weights
	return rules.Weights{
		PlayerHitpoints: w.PlayerHitpoints,
		EnemyHitpoints:  w.EnemyHitpoints,
		FriendliesAlive: w.FriendliesAlive,
		EnemiesAlive:    w.EnemiesAlive,
		EnemyCornered:   w.EnemyCornered,
	}
}

// GeneratorConfig converts the random scenario settings
func (c *Config) GeneratorConfig() scenario.GeneratorConfig {
	r, t := c.Scenario.Random, c.Scenario.Template
	return scenario.GeneratorConfig{
		Width:        r.Width,
		Height:       r.Height,
		Obstacles:    r.Obstacles,
		UnitsPerSide: r.UnitsPerSide,
		DeadRatio:    r.DeadRatio,
		Template: core.Template{
			BasicAttack:    t.BasicAttack,
			PiercingAttack: t.PiercingAttack,
			Armor:          t.Armor,
			Range:          t.Range,
			MaxHealth:      t.MaxHealth,
		},
	}
}

// Validate validates the configuration values
func Validate(c *Config) error {
	weights := map[string]float64{
		"player_hitpoints": c.Utility.Weights.PlayerHitpoints,
		"enemy_hitpoints":  c.Utility.Weights.EnemyHitpoints,
		"friendlies_alive": c.Utility.Weights.FriendliesAlive,
		"enemies_alive":    c.Utility.Weights.EnemiesAlive,
		"enemy_cornered":   c.Utility.Weights.EnemyCornered,
	}
	for name, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("utility.weights.%s must be finite", name)
		}
	}

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}

	r := c.Scenario.Random
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("scenario.random dimensions must be positive")
	}
	if r.Obstacles < 0 || r.UnitsPerSide < 0 {
		return fmt.Errorf("scenario.random counts must be non-negative")
	}
	if r.Obstacles+2*r.UnitsPerSide > r.Width*r.Height {
		return fmt.Errorf("scenario.random does not fit %d obstacles and %d units per side on %dx%d", r.Obstacles, r.UnitsPerSide, r.Width, r.Height)
	}
	if r.DeadRatio < 0 || r.DeadRatio > 1 {
		return fmt.Errorf("scenario.random.dead_ratio must be between 0 and 1")
	}

	t := c.Scenario.Template
	if t.Armor < 0 || t.Range < 0 || t.MaxHealth < 0 || t.BasicAttack < 0 || t.PiercingAttack < 0 {
		return fmt.Errorf("scenario.template stats must be non-negative")
	}

	if c.Inspect.Depth < 0 {
		return fmt.Errorf("inspect.depth must be non-negative")
	}
	if c.Inspect.Workers < 1 {
		return fmt.Errorf("inspect.workers must be at least 1")
	}
	if c.Inspect.ProgressInterval < 0 {
		return fmt.Errorf("inspect.progress_interval must be non-negative")
	}
	return nil
}
