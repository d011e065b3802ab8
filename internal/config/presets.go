package config

import "sort"

func restitution(e float64) *float64 { return &e }

var Presets = map[string]*Config{
	// one anchor, one weight; settles 0.25 below rest length
	"spring": {
		Scene:   "spring",
		Physics: PhysicsConfig{Gravity: 1, Damping: DefaultDamping, Restitution: DefaultRestitution, RateHz: 480},
		Run:     RunConfig{Duration: 10, Integrator: DefaultIntegrator, SampleEvery: 8},
		Bodies: []BodyConfig{
			{Name: "anchor", Size: Point{10, 10}, Position: Point{400, 200}},
			{Name: "weight", Size: Point{10, 10}, Position: Point{400, 100}, InverseMass: 1, Damping: 0.05},
		},
		Springs: []SpringConfig{{A: "anchor", B: "weight", K: 4, RestLength: 2}},
	},
	"floor": {
		Scene:   "floor",
		Physics: PhysicsConfig{Gravity: 10, Damping: 1, Restitution: 0, RateHz: 240, Collisions: true},
		Run:     RunConfig{Duration: 5, Integrator: DefaultIntegrator, SampleEvery: 4},
		Bodies: []BodyConfig{
			{Name: "floor", Size: Point{200, 10}, Position: Point{0, 100}},
			{Name: "box", Size: Point{10, 10}, Position: Point{0, 60}, InverseMass: 1},
		},
	},
	"collide": {
		Scene:   "collide",
		Physics: PhysicsConfig{Gravity: 0, Damping: 1, Restitution: 1, RateHz: 240, Collisions: true},
		Run:     RunConfig{Duration: 4, Integrator: DefaultIntegrator, SampleEvery: 4},
		Bodies: []BodyConfig{
			{Name: "left", Size: Point{10, 10}, Position: Point{-40, 0}, Velocity: Point{20, 0}, InverseMass: 1},
			{Name: "right", Size: Point{10, 10}, Position: Point{40, 0}, Velocity: Point{-20, 0}, InverseMass: 1},
			{Name: "heavy", Size: Point{20, 20}, Position: Point{0, 60}, Velocity: Point{0, -10}, InverseMass: 0.25, Rotation: 0.4},
		},
	},
	"stack": {
		Scene:   "stack",
		Physics: PhysicsConfig{Gravity: 10, Damping: 0.98, Restitution: 0.1, RateHz: 240, Collisions: true},
		Run:     RunConfig{Duration: 8, Integrator: DefaultIntegrator, SampleEvery: 4},
		Bodies: []BodyConfig{
			{Name: "ground", Size: Point{300, 20}, Position: Point{0, 150}, Restitution: restitution(0)},
			{Name: "b1", Size: Point{20, 20}, Position: Point{0, 125}, InverseMass: 1},
			{Name: "b2", Size: Point{20, 20}, Position: Point{2, 100}, InverseMass: 1},
			{Name: "b3", Size: Point{20, 20}, Position: Point{-2, 70}, InverseMass: 1},
			{Name: "wedge", Size: Point{16, 16}, Position: Point{40, 40}, InverseMass: 2, Rotation: 0.785},
		},
	},
	// Per tick the stiffest chain mode (omega^2 = 2.62k) gains 1+omega^2*dt^2
	// and loses damping^dt; at k=100, 960 Hz and damping 0.6 the loss wins.
	"pendulum": {
		Scene:   "pendulum",
		Physics: PhysicsConfig{Gravity: 10, Damping: 0.6, Restitution: DefaultRestitution, RateHz: 960},
		Run:     RunConfig{Duration: 12, Integrator: DefaultIntegrator, SampleEvery: 16},
		Bodies: []BodyConfig{
			{Name: "pivot", Size: Point{4, 4}, Position: Point{0, 0}},
			{Name: "bob", Size: Point{6, 6}, Position: Point{30, 10}, InverseMass: 1},
			{Name: "tail", Size: Point{6, 6}, Position: Point{50, 30}, InverseMass: 1},
		},
		Springs: []SpringConfig{
			{A: "pivot", B: "bob", K: 100, RestLength: 30},
			{A: "bob", B: "tail", K: 100, RestLength: 25},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
