package aero

import (
	"github.com/san-kum/aerosim/internal/quantity"
	"github.com/san-kum/aerosim/internal/sim"
)

// DynamicPressure computes q = 0.5 rho V^2.
type DynamicPressure struct{}

func NewDynamicPressure() *DynamicPressure { return &DynamicPressure{} }

func (d *DynamicPressure) Name() string { return "dynamic_pressure" }

func (d *DynamicPressure) Setup(nn int) sim.Declaration {
	return sim.Declaration{
		Inputs: []sim.Var{
			sim.In(quantity.Density, nn),
			sim.In(quantity.Velocity, nn),
		},
		Outputs: []sim.Var{sim.Out(quantity.DynamicPressure, nn)},
	}
}

func (d *DynamicPressure) Compute(in, out sim.Vars) error {
	rho := in[quantity.Density]
	v := in[quantity.Velocity]
	q := out[quantity.DynamicPressure]
	for i := range q {
		q[i] = 0.5 * rho[i] * v[i] * v[i]
	}
	return nil
}

func (d *DynamicPressure) DeclarePartials(nn int) []sim.Partial {
	return []sim.Partial{
		sim.DiagonalPartial(quantity.DynamicPressure, quantity.Velocity, nn),
		sim.DiagonalPartial(quantity.DynamicPressure, quantity.Density, nn),
	}
}

func (d *DynamicPressure) ComputePartials(in sim.Vars, jac *sim.Jacobian) error {
	rho := in[quantity.Density]
	v := in[quantity.Velocity]

	dqV := make([]float64, len(v))
	dqRho := make([]float64, len(v))
	for i := range v {
		dqV[i] = rho[i] * v[i]
		dqRho[i] = 0.5 * v[i] * v[i]
	}

	return setAll(jac, []block{
		{quantity.DynamicPressure, quantity.Velocity, dqV},
		{quantity.DynamicPressure, quantity.Density, dqRho},
	})
}
