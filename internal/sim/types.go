package sim

import (
	"math"

	"github.com/san-kum/aerosim/internal/quantity"
)

// Scalar is the shape of a quantity shared by every node.
const Scalar = 1

// Var declares one input or output of a component. Units come from the
// quantity catalog and are never declared per component.
type Var struct {
	Name    quantity.Name
	Shape   int
	Default []float64
}

// In declares a per-node or scalar variable.
func In(name quantity.Name, shape int) Var {
	return Var{Name: name, Shape: shape}
}

// InDefault declares a variable with a default value filled to its shape.
func InDefault(name quantity.Name, shape int, val float64) Var {
	d := make([]float64, shape)
	for i := range d {
		d[i] = val
	}
	return Var{Name: name, Shape: shape, Default: d}
}

// Out declares an output.
func Out(name quantity.Name, shape int) Var {
	return Var{Name: name, Shape: shape}
}

// Declaration is what a component exposes at setup time.
type Declaration struct {
	Inputs  []Var
	Outputs []Var
}

// Vars maps quantity names to values. Component inputs are read-only views;
// outputs are preallocated and must be written in place.
type Vars map[quantity.Name][]float64

// Scalar returns element 0 of name.
func (v Vars) Scalar(name quantity.Name) float64 {
	return v[name][0]
}

// At returns element i of name, broadcasting scalars.
func (v Vars) At(name quantity.Name, i int) float64 {
	s := v[name]
	if len(s) == 1 {
		return s[0]
	}
	return s[i]
}

// Clone deep-copies the map.
func (v Vars) Clone() Vars {
	c := make(Vars, len(v))
	for k, s := range v {
		c[k] = append([]float64(nil), s...)
	}
	return c
}

// IsFinite reports whether every value is free of NaN and Inf.
func IsFinite(s []float64) bool {
	for _, x := range s {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Component is a stateless unit mapping inputs to outputs.
type Component interface {
	Name() string
	Setup(nn int) Declaration
	Compute(in, out Vars) error
}

// Differentiable components supply analytic partial derivatives.
type Differentiable interface {
	Component
	DeclarePartials(nn int) []Partial
	ComputePartials(in Vars, jac *Jacobian) error
}

// Options tune Problem behaviour.
type Options struct {
	// ValidateOutputs rejects NaN/Inf outputs instead of passing them on.
	ValidateOutputs bool
}

func DefaultOptions() Options {
	return Options{ValidateOutputs: false}
}
