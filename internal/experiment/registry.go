package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/aerosim/internal/aero"
	"github.com/san-kum/aerosim/internal/quantity"
	"github.com/san-kum/aerosim/internal/sim"
)

// Chain names an ordered set of components wired into one problem.
type Chain string

const (
	// ChainStandard derives viscosity from the standard atmosphere.
	ChainStandard Chain = "standard"
	// ChainPowerLaw feeds the power-law Reynolds fit from the atmosphere.
	ChainPowerLaw Chain = "power-law"
)

// Stage is one component of a chain and the aliases it is added with.
type Stage struct {
	Component string
	Aliases   []sim.Alias
}

// CheckNodes is the node count of the derivative-check samples.
const CheckNodes = 2

type Registry struct {
	components map[string]func(gravity float64) sim.Component
	chains     map[Chain][]Stage
	checks     map[string]func() []sim.Vars
}

func NewRegistry() *Registry {
	r := &Registry{
		components: make(map[string]func(float64) sim.Component),
		chains:     make(map[Chain][]Stage),
		checks:     make(map[string]func() []sim.Vars),
	}

	r.components["atmosphere"] = func(float64) sim.Component { return aero.NewAtmosphere() }
	r.components["reynolds"] = func(float64) sim.Component { return aero.NewReynoldsNumber() }
	r.components["reynolds_power_law"] = func(float64) sim.Component { return aero.NewReynoldsPowerLaw() }
	r.components["dynamic_pressure"] = func(float64) sim.Component { return aero.NewDynamicPressure() }
	r.components["lift"] = func(float64) sim.Component { return aero.NewLift() }
	r.components["lift_from_weight"] = func(g float64) sim.Component {
		c := aero.NewLiftFromWeight()
		if g > 0 {
			c.Gravity = g
		}
		return c
	}
	r.components["skin_friction_drag"] = func(float64) sim.Component { return aero.NewSkinFrictionDrag() }

	// Lift balancing the weight is promoted as weight so it does not
	// collide with the lift recomputed from CL.
	tail := []Stage{
		{Component: "dynamic_pressure"},
		{Component: "lift_from_weight", Aliases: []sim.Alias{sim.Promote(quantity.Lift, quantity.Weight)}},
		{Component: "lift"},
		{Component: "skin_friction_drag"},
	}
	r.chains[ChainStandard] = append([]Stage{{Component: "reynolds"}}, tail...)
	r.chains[ChainPowerLaw] = append([]Stage{{Component: "atmosphere"}, {Component: "reynolds_power_law"}}, tail...)

	r.checks["skin_friction_drag"] = func() []sim.Vars {
		var out []sim.Vars
		grid(func(re, q, s float64) {
			out = append(out, sim.Vars{
				quantity.ReynoldsNumber:  {re, 1.5 * re},
				quantity.DynamicPressure: {q, 2 * q},
				quantity.WingArea:        {s},
			})
		})
		return out
	}
	r.checks["lift"] = func() []sim.Vars {
		var out []sim.Vars
		loadGrid(func(q, s float64) {
			out = append(out, sim.Vars{
				quantity.DynamicPressure: {q, 2 * q},
				quantity.LiftCoefficient: {0.3, 0.8},
				quantity.WingArea:        {s},
			})
		})
		return out
	}
	r.checks["lift_from_weight"] = func() []sim.Vars {
		var out []sim.Vars
		loadGrid(func(q, s float64) {
			out = append(out, sim.Vars{
				quantity.Mass:            {20, 25},
				quantity.DynamicPressure: {q, 2 * q},
				quantity.WingArea:        {s},
			})
		})
		return out
	}
	r.checks["dynamic_pressure"] = func() []sim.Vars {
		return []sim.Vars{
			{quantity.Density: {1.225, 0.9}, quantity.Velocity: {30, 100}},
			{quantity.Density: {0.4, 1.1}, quantity.Velocity: {250, 12}},
		}
	}
	r.checks["reynolds_power_law"] = func() []sim.Vars {
		return []sim.Vars{{
			quantity.Temperature:              {288.15, 250},
			quantity.Density:                  {1.225, 0.9},
			quantity.Velocity:                 {30, 60},
			quantity.WingCharacteristicLength: {1.5},
		}}
	}

	return r
}

// loadGrid visits q in {100, 1000} and S in {0.1, 10}.
func loadGrid(fn func(q, s float64)) {
	for _, q := range []float64{100, 1000} {
		for _, s := range []float64{0.1, 10} {
			fn(q, s)
		}
	}
}

// grid adds Re in {1e5, 1e6, 1e7} to loadGrid.
func grid(fn func(re, q, s float64)) {
	for _, re := range []float64{1e5, 1e6, 1e7} {
		loadGrid(func(q, s float64) { fn(re, q, s) })
	}
}

func (r *Registry) GetComponent(name string, gravity float64) (sim.Component, error) {
	fn, ok := r.components[name]
	if !ok {
		return nil, fmt.Errorf("unknown component: %s", name)
	}
	return fn(gravity), nil
}

func (r *Registry) GetChain(name Chain) ([]Stage, error) {
	stages, ok := r.chains[name]
	if !ok {
		return nil, fmt.Errorf("unknown chain: %s", name)
	}
	return stages, nil
}

func (r *Registry) ListComponents() []string {
	return sortedKeys(r.components)
}

func (r *Registry) ListChains() []string {
	names := make([]string, 0, len(r.chains))
	for name := range r.chains {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}

// CheckCases returns the input points at which the partials of a
// differentiable component are verified, each laid out on CheckNodes nodes.
func (r *Registry) CheckCases(name string) ([]sim.Vars, error) {
	fn, ok := r.checks[name]
	if !ok {
		return nil, fmt.Errorf("no derivative check for component: %s", name)
	}
	return fn(), nil
}

// Differentiable lists the components that supply analytic partials.
func (r *Registry) Differentiable() []string {
	var names []string
	for _, name := range r.ListComponents() {
		c, _ := r.GetComponent(name, 0)
		if _, ok := c.(sim.Differentiable); ok {
			names = append(names, name)
		}
	}
	return names
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
