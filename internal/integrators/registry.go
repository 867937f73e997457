package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/pidlab/internal/process"
)

var factories = map[string]func() process.Integrator{
	"euler": func() process.Integrator { return NewEuler() },
	"rk4":   func() process.Integrator { return NewRK4() },
}

// New returns a fresh integrator by name. An empty name selects rk4.
func New(name string) (process.Integrator, error) {
	if name == "" {
		name = "rk4"
	}
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return f(), nil
}

func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
