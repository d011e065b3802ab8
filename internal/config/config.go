package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultGravity     = 10.0
	DefaultDamping     = 0.99
	DefaultRestitution = 0.5
	DefaultRateHz      = 240.0
	DefaultDuration    = 10.0
	DefaultIntegrator  = "semi-implicit"
)

type Config struct {
	Scene   string         `yaml:"scene"`
	Physics PhysicsConfig  `yaml:"physics"`
	Run     RunConfig      `yaml:"run"`
	Bodies  []BodyConfig   `yaml:"bodies"`
	Springs []SpringConfig `yaml:"springs,omitempty"`
}

type PhysicsConfig struct {
	Gravity     float64    `yaml:"gravity"`
	Damping     float64    `yaml:"damping"`
	Restitution float64    `yaml:"restitution"`
	RateHz      float64    `yaml:"rate_hz"`
	Collisions  bool       `yaml:"collisions"`
	Drag        DragConfig `yaml:"drag"`
}

type DragConfig struct {
	K1 float64 `yaml:"k1"`
	K2 float64 `yaml:"k2"`
}

type RunConfig struct {
	Duration    float64 `yaml:"duration"`
	Integrator  string  `yaml:"integrator"`
	SampleEvery int     `yaml:"sample_every"`
}

type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type BodyConfig struct {
	Name        string   `yaml:"name"`
	Size        Point    `yaml:"size,flow"`
	Position    Point    `yaml:"position,flow"`
	Velocity    Point    `yaml:"velocity,flow"`
	InverseMass float64  `yaml:"inverse_mass"`
	Damping     float64  `yaml:"damping,omitempty"`
	Rotation    float64  `yaml:"rotation,omitempty"`
	Restitution *float64 `yaml:"restitution,omitempty"`
}

// SpringConfig links two bodies by name.
type SpringConfig struct {
	A          string  `yaml:"a"`
	B          string  `yaml:"b"`
	K          float64 `yaml:"k"`
	RestLength float64 `yaml:"rest_length"`
}

func DefaultConfig() *Config {
	return &Config{
		Scene: "custom",
		Physics: PhysicsConfig{
			Gravity:     DefaultGravity,
			Damping:     DefaultDamping,
			Restitution: DefaultRestitution,
			RateHz:      DefaultRateHz,
			Collisions:  true,
		},
		Run: RunConfig{
			Duration:   DefaultDuration,
			Integrator: DefaultIntegrator,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks what the physics layer cannot: body names and spring references.
func (c *Config) Validate() error {
	if c.Physics.RateHz <= 0 {
		return fmt.Errorf("physics.rate_hz must be positive, got %f", c.Physics.RateHz)
	}
	if c.Run.Duration <= 0 {
		return fmt.Errorf("run.duration must be positive, got %f", c.Run.Duration)
	}
	if c.Run.SampleEvery < 0 {
		return fmt.Errorf("run.sample_every must be non-negative, got %d", c.Run.SampleEvery)
	}

	names := make(map[string]bool, len(c.Bodies))
	for i, b := range c.Bodies {
		if b.Name == "" {
			continue
		}
		if names[b.Name] {
			return fmt.Errorf("bodies[%d]: duplicate name %q", i, b.Name)
		}
		names[b.Name] = true
	}
	for i, sp := range c.Springs {
		if !names[sp.A] {
			return fmt.Errorf("springs[%d]: unknown body %q", i, sp.A)
		}
		if !names[sp.B] {
			return fmt.Errorf("springs[%d]: unknown body %q", i, sp.B)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Bodies = make([]BodyConfig, len(c.Bodies))
	for i, b := range c.Bodies {
		if b.Restitution != nil {
			e := *b.Restitution
			b.Restitution = &e
		}
		out.Bodies[i] = b
	}
	out.Springs = append([]SpringConfig(nil), c.Springs...)
	return &out
}

// Dt is the fixed tick length.
func (c *Config) Dt() float64 { return 1 / c.Physics.RateHz }
