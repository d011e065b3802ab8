package integrators

import (
	"fmt"
	"sort"
)

// Default is the integrator name used when none is given.
const Default = "semi-implicit"

var registry = map[string]func() Integrator{
	"semi-implicit":  func() Integrator { return NewSemiImplicitEuler() },
	"symplectic":     func() Integrator { return NewSemiImplicitEuler() },
	"velocity-first": func() Integrator { return NewVelocityFirstEuler() },
}

// Get returns a fresh integrator by name. An empty name selects Default.
func Get(name string) (Integrator, error) {
	if name == "" {
		name = Default
	}
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

// Names lists the registered integrator names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
