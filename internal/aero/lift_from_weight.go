package aero

import (
	"github.com/san-kum/aerosim/internal/quantity"
	"github.com/san-kum/aerosim/internal/sim"
)

// StandardGravity is the gravitational acceleration used when none is set.
const StandardGravity = 9.81

// LiftFromWeight gives the lift coefficient needed for lift to balance
// weight in non-accelerating flight: L = g m, CL = L / (q S).
type LiftFromWeight struct {
	Gravity float64
}

func NewLiftFromWeight() *LiftFromWeight {
	return &LiftFromWeight{Gravity: StandardGravity}
}

func (c *LiftFromWeight) Name() string { return "lift_from_weight" }

func (c *LiftFromWeight) Setup(nn int) sim.Declaration {
	return sim.Declaration{
		Inputs: []sim.Var{
			sim.In(quantity.Mass, nn),
			sim.In(quantity.WingArea, sim.Scalar),
			sim.In(quantity.DynamicPressure, nn),
		},
		Outputs: []sim.Var{
			sim.Out(quantity.Lift, nn),
			sim.Out(quantity.LiftCoefficient, nn),
		},
	}
}

func (c *LiftFromWeight) Compute(in, out sim.Vars) error {
	m := in[quantity.Mass]
	s := in.Scalar(quantity.WingArea)
	q := in[quantity.DynamicPressure]

	lift := out[quantity.Lift]
	cl := out[quantity.LiftCoefficient]
	for i := range m {
		w := c.Gravity * m[i]
		lift[i] = w
		cl[i] = w / (q[i] * s)
	}
	return nil
}

func (c *LiftFromWeight) DeclarePartials(nn int) []sim.Partial {
	return []sim.Partial{
		sim.DiagonalPartial(quantity.Lift, quantity.Mass, nn).WithConstant(c.Gravity),
		sim.IndependentPartial(quantity.Lift, quantity.WingArea, nn, sim.Scalar),
		sim.IndependentPartial(quantity.Lift, quantity.DynamicPressure, nn, nn),
		sim.DensePartial(quantity.LiftCoefficient, quantity.WingArea, nn, sim.Scalar),
		sim.DiagonalPartial(quantity.LiftCoefficient, quantity.Mass, nn),
		sim.DiagonalPartial(quantity.LiftCoefficient, quantity.DynamicPressure, nn),
	}
}

func (c *LiftFromWeight) ComputePartials(in sim.Vars, jac *sim.Jacobian) error {
	m := in[quantity.Mass]
	s := in.Scalar(quantity.WingArea)
	q := in[quantity.DynamicPressure]

	dS := make([]float64, len(m))
	dM := make([]float64, len(m))
	dQ := make([]float64, len(m))
	for i := range m {
		w := c.Gravity * m[i]
		dS[i] = -w / (q[i] * s * s)
		dM[i] = c.Gravity / (q[i] * s)
		dQ[i] = -w / (q[i] * q[i] * s)
	}

	return setAll(jac, []block{
		{quantity.LiftCoefficient, quantity.WingArea, dS},
		{quantity.LiftCoefficient, quantity.Mass, dM},
		{quantity.LiftCoefficient, quantity.DynamicPressure, dQ},
	})
}
